// Package meshio is the host reader registry: readers for the intermediate
// formats modelbridge can parse directly, keyed by format identifier.
//
// The registry answers the three questions the conversion engine asks of the
// host: which formats currently have a usable reader (in discovery order),
// whether a given format has one, and which reader handles a produced file.
// Built-in readers cover binary/ASCII STL and glTF/GLB.
package meshio
