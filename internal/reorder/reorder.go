package reorder

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Result describes a completed reorder.
type Result struct {
	PageCount   int
	Permutation []int
}

// NewConfiguration returns the pdfcpu configuration used for reading scans.
// Validation is relaxed to accept imperfect scanner output.
func NewConfiguration() *model.Configuration {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return cfg
}

// Reorder reads a scanned PDF from rs and writes the document with its pages
// in reading order to w.
func Reorder(rs io.ReadSeeker, w io.Writer, conf *model.Configuration) (Result, error) {
	if conf == nil {
		conf = NewConfiguration()
	}

	pageCount, err := api.PageCount(rs, conf)
	if err != nil {
		return Result{}, fmt.Errorf("failed to get page count: %w", err)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return Result{}, fmt.Errorf("failed to rewind input: %w", err)
	}

	perm := Permutation(pageCount)
	if pageCount == 0 {
		// Nothing to collect; re-serialize the empty document as is.
		if err := api.Optimize(rs, w, conf); err != nil {
			return Result{}, fmt.Errorf("failed to write empty document: %w", err)
		}
		return Result{PageCount: 0, Permutation: perm}, nil
	}

	if err := api.Collect(rs, w, pageSelection(perm), conf); err != nil {
		return Result{}, fmt.Errorf("failed to assemble reordered document: %w", err)
	}
	return Result{PageCount: pageCount, Permutation: perm}, nil
}

// ReorderFile reorders the PDF at inPath and writes it to outPath.
//
// The input is read completely and the new document is assembled in memory,
// then written to a temporary file next to outPath and renamed over it. A bad
// input or a failed write leaves an existing outPath untouched, and inPath may
// equal outPath.
func ReorderFile(inPath, outPath string, conf *model.Configuration) (Result, error) {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read input %s: %w", inPath, err)
	}

	var buf bytes.Buffer
	res, err := Reorder(bytes.NewReader(data), &buf, conf)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", inPath, err)
	}

	if err := writeFileAtomically(outPath, buf.Bytes()); err != nil {
		return Result{}, err
	}
	return res, nil
}

func writeFileAtomically(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write output %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to set permissions on output %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace output %s: %w", path, err)
	}
	return nil
}
