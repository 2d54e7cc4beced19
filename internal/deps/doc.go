// Package deps checks that the external application binaries named in the
// configuration can be found on PATH.
package deps
