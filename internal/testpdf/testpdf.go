// Package testpdf builds small PDFs whose page order can be read back, for use
// in tests.
//
// Page i of a generated document is BaseWidth+i*WidthStep points wide, so the
// source index of every page survives any reordering.
package testpdf

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const (
	BaseWidth  = 100
	WidthStep  = 10
	PageHeight = 80
)

// Build returns an n-page PDF. Each page holds one image and the page takes
// the image's dimensions.
func Build(tb testing.TB, n int) []byte {
	tb.Helper()

	imgs := make([]io.Reader, n)
	for i := 0; i < n; i++ {
		var buf bytes.Buffer
		img := image.NewGray(image.Rect(0, 0, BaseWidth+i*WidthStep, PageHeight))
		if err := png.Encode(&buf, img); err != nil {
			tb.Fatalf("encoding page image %d: %v", i, err)
		}
		imgs[i] = &buf
	}

	imp := pdfcpu.DefaultImportConfig()
	imp.Pos = types.Full

	var out bytes.Buffer
	if err := api.ImportImages(nil, &out, imgs, imp, model.NewDefaultConfiguration()); err != nil {
		tb.Fatalf("creating test PDF: %v", err)
	}
	return out.Bytes()
}

// BuildEmpty returns a minimal valid PDF whose page tree has no pages.
func BuildEmpty() []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [] /Count 0 >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

// WriteFile writes an n-page PDF to path.
func WriteFile(tb testing.TB, path string, n int) {
	tb.Helper()
	if err := os.WriteFile(path, Build(tb, n), 0o644); err != nil {
		tb.Fatalf("writing test PDF: %v", err)
	}
}

// PageOrder returns the source index of every page in data.
func PageOrder(tb testing.TB, data []byte) []int {
	tb.Helper()

	dims, err := api.PageDims(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		tb.Fatalf("reading page dimensions: %v", err)
	}
	order := make([]int, len(dims))
	for i, d := range dims {
		order[i] = (int(math.Round(d.Width)) - BaseWidth) / WidthStep
	}
	return order
}

// FilePageOrder is PageOrder for a file on disk.
func FilePageOrder(tb testing.TB, path string) []int {
	tb.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("reading %s: %v", path, err)
	}
	return PageOrder(tb, data)
}
