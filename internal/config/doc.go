// Package config loads, normalizes, and validates modelbridge configuration data.
//
// It supplies repository defaults (including ready-made FreeCAD, Blender, and
// assimp application entries), expands user paths, reads TOML files, and
// honours the MODELBRIDGE_SCRATCH_DIR environment fallback. The Config type
// centralizes every knob the engine and CLI need so the reader variants and
// their applications are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, normalized format identifiers, and clear validation errors.
package config
