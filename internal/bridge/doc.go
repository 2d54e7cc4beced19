// Package bridge assembles the conversion engine from configuration.
//
// A Service owns the process-wide pieces (conversion slot, scratch allocator,
// host reader registry, metrics) and one conversion.Orchestrator per
// configured reader variant. Convert routes a file to the variant claiming
// its extension.
package bridge
