// Package appsession defines the lifecycle contract every external
// application variant implements, plus the per-conversion request it operates
// on.
//
// One attempt walks Idle → Prepared → Started → SourceOpen → Exported →
// SourceClosed → Stopped. Prepare, Start, OpenSource and Export may fail and
// abort the attempt; CloseSource, Stop and Cleanup are always called
// afterwards by the orchestrator, in that order, whatever happened before.
// Implementations must therefore tolerate teardown calls on a session that
// never got past Prepare.
//
// Variants that do not support a capability embed Unimplemented; reaching such
// a method is a programmer error and aborts the conversion instead of moving
// on to the next candidate.
package appsession
