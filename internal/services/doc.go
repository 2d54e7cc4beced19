// Package services defines shared utilities consumed by the conversion engine
// and the application sessions it drives.
//
// Key responsibilities:
//   - Context helpers that stamp request IDs, application names, and
//     intermediate formats for logging.
//   - Structured failure markers plus the Wrap helper so every candidate
//     failure can be classified (start, open, export, missing artifact, no
//     reader, read) without string matching.
//
// Use these helpers when adding new application variants so failure handling
// and observability stay uniform across the engine.
package services
