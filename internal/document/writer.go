package document

import "errors"

// ErrWriterFailure wraps any error reported by the document writer.
var ErrWriterFailure = errors.New("document writer failure")

// Writer receives pages and image placements and produces the output file.
// Coordinates are in page units with the origin at the top-left corner.
type Writer interface {
	AddPage() error
	PlaceImage(path string, x, y, w, h float64) error
	Write(outputPath string) error
}
