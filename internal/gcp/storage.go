package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// ErrObjectExists is returned when a create-only write finds the object already present.
var ErrObjectExists = errors.New("object already exists")

const (
	uploadMaxRetries     = 4
	uploadInitialBackoff = 1 * time.Second
	uploadAttemptTimeout = 50 * time.Second
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// ObjectExists reports whether the object named by loc is present.
func ObjectExists(ctx context.Context, client *storage.Client, loc Location) (bool, error) {
	_, err := client.Bucket(loc.Bucket).Object(loc.Object).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", loc, err)
	}
	return true, nil
}

// DownloadObject streams the object named by loc into a local file at destPath.
func DownloadObject(ctx context.Context, client *storage.Client, loc Location, destPath string) error {
	gcsReader, err := client.Bucket(loc.Bucket).Object(loc.Object).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("failed to get GCS object reader for %s: %w", loc, err)
	}
	defer gcsReader.Close()

	localFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file at %s: %w", destPath, err)
	}
	defer localFile.Close()

	if _, err := io.Copy(localFile, gcsReader); err != nil {
		return fmt.Errorf("failed to copy GCS object to local file: %w", err)
	}
	return localFile.Close()
}

// UploadFile copies a local file to the object named by loc, retrying with
// exponential backoff. Unless overwrite is set the write only succeeds if the
// object does not exist yet; otherwise ErrObjectExists is returned.
func UploadFile(ctx context.Context, client *storage.Client, localPath string, loc Location, overwrite bool) error {
	backoff := uploadInitialBackoff
	var lastErr error

	for i := 0; i < uploadMaxRetries; i++ {
		err := uploadOnce(ctx, client, localPath, loc, overwrite)
		if err == nil || errors.Is(err, ErrObjectExists) {
			return err
		}

		lastErr = err
		slog.Warn(
			"Upload failed, will retry.",
			"gcsObject", loc.String(),
			"attempt", i+1,
			"maxRetries", uploadMaxRetries,
			"backoff", backoff.String(),
			"error", err,
		)

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			slog.Error("Context cancelled during backoff. Aborting retries.", "gcsObject", loc.String(), "error", ctx.Err())
			return ctx.Err()
		}
	}
	slog.Error("Upload failed after all retries.", "gcsObject", loc.String(), "error", lastErr)
	return fmt.Errorf("upload for %s failed after all retries: %w", loc, lastErr)
}

func uploadOnce(ctx context.Context, client *storage.Client, localPath string, loc Location, overwrite bool) error {
	localFileReader, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("could not open local file %s: %w", localPath, err)
	}
	defer localFileReader.Close()

	writeCtx, cancel := context.WithTimeout(ctx, uploadAttemptTimeout)
	defer cancel()

	obj := client.Bucket(loc.Bucket).Object(loc.Object)
	if !overwrite {
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	}
	gcsWriter := obj.NewWriter(writeCtx)
	gcsWriter.ContentType = "application/pdf"

	if _, err := io.Copy(gcsWriter, localFileReader); err != nil {
		_ = gcsWriter.Close()
		return classifyWriteError(fmt.Errorf("io.Copy to GCS failed: %w", err))
	}
	if err := gcsWriter.Close(); err != nil {
		return classifyWriteError(fmt.Errorf("failed to close GCS writer (finalize upload): %w", err))
	}
	return nil
}

// classifyWriteError maps a failed precondition onto ErrObjectExists.
func classifyWriteError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
		return fmt.Errorf("%w: %v", ErrObjectExists, err)
	}
	return err
}
