// Package merge holds the pure functions that fold a provider result, or a
// new point scale, into the board's sections.
//
// Every function returns a fresh slice and never changes the board's shape,
// cell ids, or (except Rescale) point values.
package merge
