// Package testsupport holds fixtures shared by package tests: temp-dir
// configurations, stub application binaries and small STL files.
package testsupport
