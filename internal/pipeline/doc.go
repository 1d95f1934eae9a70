// Package pipeline runs one conversion from source video to PDF.
//
// The stages run sequentially on the calling goroutine:
//
//	probe -> sample keyframes -> luminance -> trim background -> fit to page width -> compose pages -> write
//
// Strips are collected in memory before composition, so a run that yields no
// keyframes fails with ErrNoKeyframes without creating an output file, and a
// strip trimmed to nothing fails with media.ErrDegenerateStrip before any
// page is written.
package pipeline
