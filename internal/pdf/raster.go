// Package pdf adapts a PDF byte stream into per-page raster surfaces for
// recognition. Rendering is delegated to MuPDF via go-fitz; this package only
// fixes the zoom factor and the encoding handed to the OCR engine.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// RenderDPI is the rasterization resolution. 144 DPI is a 2.0x zoom over the
// PDF-native 72 DPI, which measurably improves recognition accuracy on
// scanned documents.
const RenderDPI = 144

// ErrInvalidPDF is returned when the byte stream cannot be parsed as a PDF.
// Parsing failure fails the single file being processed, not the batch.
var ErrInvalidPDF = errors.New("invalid or corrupted PDF document")

// Document is a loaded PDF exposing page count and per-page rasterization.
type Document struct {
	doc   *fitz.Document
	pages int
}

// Load parses raw PDF bytes into a Document. The caller must Close it.
func Load(data []byte) (*Document, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("pdf: load: %w: %v", ErrInvalidPDF, err)
	}
	return &Document{doc: doc, pages: doc.NumPage()}, nil
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int { return d.pages }

// RenderPage rasterizes the given page (1-indexed, matching progress
// reporting) at the fixed zoom factor and returns it PNG-encoded.
func (d *Document) RenderPage(page int) ([]byte, error) {
	if page < 1 || page > d.pages {
		return nil, fmt.Errorf("pdf: render page %d: out of range (1..%d)", page, d.pages)
	}

	img, err := d.doc.ImageDPI(page-1, RenderDPI)
	if err != nil {
		return nil, fmt.Errorf("pdf: render page %d: %w", page, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("pdf: encode page %d: %w", page, err)
	}
	return buf.Bytes(), nil
}

// Close releases the underlying document resources.
func (d *Document) Close() error {
	if d.doc == nil {
		return nil
	}
	err := d.doc.Close()
	d.doc = nil
	return err
}
