// Package geo provides great-circle distance helpers on a spherical Earth.
//
// Inputs are WGS84 degrees and outputs are kilometres. Functions are pure
// and safe for concurrent use.
package geo
