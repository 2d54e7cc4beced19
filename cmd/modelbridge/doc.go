// Package main hosts the modelbridge CLI entrypoint and command graph.
//
// The Cobra-based command tree converts foreign model files through the
// bridge service, lists the configured applications and reader variants,
// runs preflight checks, and scaffolds configuration. It centralizes
// configuration resolution and structured logging setup so subcommands can
// focus on output instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
