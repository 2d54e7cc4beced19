// Package conversion turns a foreign model file into scene nodes by driving
// external applications.
//
// An Orchestrator owns the candidate applications of one reader variant. For
// every Convert call it takes the shared conversion slot, then walks the
// applications in declared order and, within each application, the
// intermediate formats in fallback order. Each (application, format) attempt
// exports into a scratch file, checks the file exists, resolves a host reader
// by extension and parses it. The first attempt that yields nodes wins.
//
// Every failure kind from internal/services is recoverable: it is logged and
// the next candidate is tried. Exhausting every candidate returns an empty
// Result with a nil error. Only a capability missing from a session variant
// (appsession.ErrNotImplemented) aborts the conversion with an error.
//
// Regardless of outcome, CloseSource, Stop and Cleanup run once per
// application that was prepared, and every scratch file is removed before
// the next attempt starts.
package conversion
