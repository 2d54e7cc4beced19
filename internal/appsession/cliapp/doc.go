// Package cliapp implements application sessions for exporters driven through
// their command line (FreeCAD's FreeCADCmd, Blender in background mode,
// assimp, …).
//
// Each configured app becomes one Session. The binary is resolved in Prepare,
// optionally probed in Start, and invoked once per Export with the app's
// argument template. Process execution goes through an Executor so tests can
// replace it.
package cliapp
