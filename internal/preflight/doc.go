// Package preflight provides readiness checks for the filesystem paths and
// external applications modelbridge depends on.
//
// These checks run in two contexts:
//   - The CLI "modelbridge check" command runs RunAll and prints one line per
//     check, optionally probing each application.
//   - The CLI "modelbridge apps" command uses CheckApps to show which
//     configured applications are installed.
//
// A failing check never blocks a conversion; the orchestrator falls back to
// the next application on its own.
package preflight
