package pics2pdf

import (
	"fmt"
	"io"
	"os"

	"github.com/go-pdf/fpdf"
)

// documentAssembler abstracts paginated document output to enable
// testing the pipeline without producing real PDF bytes.
type documentAssembler interface {
	// AddPage appends one page of exactly width x height points and
	// draws the JPEG at jpegPath filling it.
	AddPage(width, height float64, jpegPath string) error
	// Finalize writes the complete document to w. The assembler must
	// not be used afterwards.
	Finalize(w io.Writer) error
}

// Compile-time interface check
var _ documentAssembler = (*fpdfAssembler)(nil)

// fpdfAssembler builds the document with go-pdf/fpdf. Image pixels map
// 1:1 to PDF points, matching the source image dimensions exactly.
type fpdfAssembler struct {
	pdf *fpdf.Fpdf
}

func newFpdfAssembler() documentAssembler {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: 595.28, Ht: 841.89}, // unused, every page sets its own size
	})
	return &fpdfAssembler{pdf: pdf}
}

// AddPage appends a page sized to the image and draws it at the origin.
// The image file is validated before the page is created so a vanished
// temp file cannot leave a blank page behind.
func (a *fpdfAssembler) AddPage(width, height float64, jpegPath string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: invalid page size %gx%g", ErrAssembly, width, height)
	}

	f, err := os.Open(jpegPath)
	if err != nil {
		return fmt.Errorf("%w: opening image: %v", ErrAssembly, err)
	}
	defer f.Close()

	opts := fpdf.ImageOptions{ImageType: "JPEG"}
	a.pdf.RegisterImageOptionsReader(jpegPath, opts, f)
	a.pdf.AddPageFormat("P", fpdf.SizeType{Wd: width, Ht: height})
	a.pdf.ImageOptions(jpegPath, 0, 0, width, height, false, opts, 0, "")

	if a.pdf.Err() {
		return fmt.Errorf("%w: %v", ErrAssembly, a.pdf.Error())
	}
	return nil
}

// Finalize flushes the document to w and closes the writer state.
func (a *fpdfAssembler) Finalize(w io.Writer) error {
	if err := a.pdf.Output(w); err != nil {
		return fmt.Errorf("%w: %v", ErrFinalize, err)
	}
	return nil
}
