// Package timefmt parses and formats the zero-padded duration strings used by
// the timing source ("00:01:02.5000000").
//
// Parse returns seconds, Format returns the stripped display form. Both are
// pure and total; malformed segments are treated as zero.
package timefmt
