// Package model defines stable boundary types for API layers.
//
// A Run's identity is its canonical audit bytes and their CID; the JSON
// projections here never affect it. These structs are the only types
// intended for direct JSON serialization by consumers.
package model
