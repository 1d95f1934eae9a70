package document

import (
	"fmt"

	"vid2pdf/internal/logging"

	"github.com/go-pdf/fpdf"
)

// PDFWriter writes pages with a fixed size in points. One pixel of a placed
// image maps to one point.
type PDFWriter struct {
	pdf    *fpdf.Fpdf
	width  float64
	height float64
}

// NewPDFWriter creates a writer for pages of width x height points.
func NewPDFWriter(width, height float64, creator string) *PDFWriter {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	if creator != "" {
		pdf.SetCreator(creator, true)
	}
	return &PDFWriter{pdf: pdf, width: width, height: height}
}

// AddPage starts a new page.
func (w *PDFWriter) AddPage() error {
	w.pdf.AddPage()
	return w.pdf.Error()
}

// PlaceImage draws the JPEG at path on the current page.
func (w *PDFWriter) PlaceImage(path string, x, y, width, height float64) error {
	if w.pdf.PageNo() == 0 {
		return fmt.Errorf("place %s: no page open", path)
	}
	w.pdf.ImageOptions(path, x, y, width, height, false, fpdf.ImageOptions{ImageType: "JPG"}, 0, "")
	return w.pdf.Error()
}

// Write saves the document to outputPath and closes it.
func (w *PDFWriter) Write(outputPath string) error {
	logging.Debug("Writing %d pages to %s", w.PageCount(), outputPath)
	return w.pdf.OutputFileAndClose(outputPath)
}

// PageCount returns the number of pages added so far.
func (w *PDFWriter) PageCount() int {
	return w.pdf.PageCount()
}
