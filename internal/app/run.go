// Package app implements the adf-reorder command: resolve locations, guard
// against overwriting, reorder, and write the result.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/adfpagecorrection/internal/gcp"
	"github.com/Lllllllleong/adfpagecorrection/internal/reorder"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrCancelled is returned when the user declines to overwrite the output.
var ErrCancelled = errors.New("operation cancelled")

// Confirmer asks whether an existing output may be overwritten.
type Confirmer interface {
	ConfirmOverwrite(path string) (bool, error)
}

// Options are the command-line inputs.
type Options struct {
	Input  string
	Output string
	// Yes skips the overwrite prompt.
	Yes bool
}

// Runner carries the dependencies of a single run.
type Runner struct {
	Confirmer Confirmer
	Logger    *slog.Logger
	// PDFConfig defaults to reorder.NewConfiguration.
	PDFConfig *model.Configuration
	// NewStorageClient is only called when a gs:// location is involved.
	NewStorageClient func(ctx context.Context) (*storage.Client, error)

	storageClient *storage.Client
}

// NewRunner returns a Runner wired to real GCS.
func NewRunner(confirmer Confirmer, logger *slog.Logger) *Runner {
	return &Runner{
		Confirmer: confirmer,
		Logger:    logger,
		NewStorageClient: func(ctx context.Context) (*storage.Client, error) {
			return storage.NewClient(ctx)
		},
	}
}

// Run reorders opts.Input into opts.Output and returns the output location.
// Declining the overwrite prompt yields ErrCancelled and writes nothing.
func (r *Runner) Run(ctx context.Context, opts Options) (string, error) {
	in, err := gcp.ParseLocation(opts.Input)
	if err != nil {
		return "", fmt.Errorf("invalid --input: %w", err)
	}
	out, err := gcp.ParseLocation(opts.Output)
	if err != nil {
		return "", fmt.Errorf("invalid --output: %w", err)
	}
	defer r.close()

	logCtx := r.logger().With("input", in.String(), "output", out.String())

	exists, err := r.exists(ctx, out)
	if err != nil {
		return "", err
	}
	if exists && !opts.Yes {
		ok, err := r.Confirmer.ConfirmOverwrite(out.String())
		if err != nil {
			return "", fmt.Errorf("failed to confirm overwrite: %w", err)
		}
		if !ok {
			logCtx.Debug("Overwrite declined.")
			return "", ErrCancelled
		}
	}

	tempDir, err := os.MkdirTemp("", "adf-reorder-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	inPath := in.Path
	if in.IsGCS() {
		inPath = filepath.Join(tempDir, "source.pdf")
		client, err := r.storage(ctx)
		if err != nil {
			return "", err
		}
		if err := gcp.DownloadObject(ctx, client, in, inPath); err != nil {
			return "", err
		}
		logCtx.Debug("Downloaded source PDF.", "path", inPath)
	}

	outPath := out.Path
	if out.IsGCS() {
		outPath = filepath.Join(tempDir, "reordered.pdf")
	}

	conf := r.PDFConfig
	if conf == nil {
		conf = reorder.NewConfiguration()
	}
	res, err := reorder.ReorderFile(inPath, outPath, conf)
	if err != nil {
		return "", err
	}
	logCtx.Info("Pages reordered.", "pageCount", res.PageCount, "permutation", res.Permutation)

	if out.IsGCS() {
		client, err := r.storage(ctx)
		if err != nil {
			return "", err
		}
		// Without a confirmed overwrite the upload must not clobber an object
		// that appeared after the existence check.
		if err := gcp.UploadFile(ctx, client, outPath, out, exists); err != nil {
			return "", err
		}
	}
	return out.String(), nil
}

func (r *Runner) exists(ctx context.Context, loc gcp.Location) (bool, error) {
	if loc.IsGCS() {
		client, err := r.storage(ctx)
		if err != nil {
			return false, err
		}
		return gcp.ObjectExists(ctx, client, loc)
	}
	_, err := os.Stat(loc.Path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", loc.Path, err)
}

func (r *Runner) storage(ctx context.Context) (*storage.Client, error) {
	if r.storageClient != nil {
		return r.storageClient, nil
	}
	if r.NewStorageClient == nil {
		return nil, fmt.Errorf("gs:// locations are not supported by this runner")
	}
	client, err := r.NewStorageClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}
	r.storageClient = client
	return client, nil
}

func (r *Runner) close() {
	if r.storageClient != nil {
		_ = r.storageClient.Close()
		r.storageClient = nil
	}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
