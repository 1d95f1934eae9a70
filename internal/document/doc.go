// Package document lays trimmed strips out on fixed-size pages and writes
// the finished document.
//
// The Compositor stacks strips top to bottom at the left edge of the page,
// opening a new page whenever the next strip would run past the bottom.
// Each strip is staged as a JPEG in a scratch directory before it is handed
// to the Writer, and the scratch directory is released whether or not the
// document is written successfully. Compose encodes strips one at a time
// unless Config.Workers asks for a pool, and always places them in input
// order.
//
// The Writer interface keeps layout independent of the output format.
// PDFWriter is the production implementation, built on go-pdf/fpdf.
package document
