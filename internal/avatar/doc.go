// Package avatar validates uploaded profile pictures and normalizes them to
// the single stored format: a 250x250 PNG.
package avatar
