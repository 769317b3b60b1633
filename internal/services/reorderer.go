package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	executions "cloud.google.com/go/workflows/executions/apiv1"
	"github.com/Lllllllleong/adfpagecorrection/internal/gcp"
	"github.com/Lllllllleong/adfpagecorrection/internal/models"
	"github.com/Lllllllleong/adfpagecorrection/internal/reorder"
	"golang.org/x/sync/errgroup"
)

type ReorderConfig struct {
	ProjectID        string
	OutputBucket     string
	OutputPrefix     string
	CollectionName   string
	WorkflowID       string
	WorkflowLocation string
	BatchConcurrency int
}

type ReorderFunction struct {
	storageClient    *storage.Client
	jobs             *gcp.JobStore
	executionsClient *executions.Client
	config           ReorderConfig
}

// GCSEvent is the payload of a GCS object finalize event.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// loadReorderConfig loads and validates the environment for the reorder functions.
func loadReorderConfig() (ReorderConfig, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return ReorderConfig{}, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	config := ReorderConfig{
		ProjectID:        projectID,
		OutputBucket:     gcp.GetEnv("OUTPUT_BUCKET", ""),
		OutputPrefix:     gcp.GetEnv("OUTPUT_PREFIX", ""),
		CollectionName:   gcp.GetEnv("FIRESTORE_COLLECTION", "reorder-jobs"),
		WorkflowID:       gcp.GetEnv("WORKFLOW_ID", ""),
		WorkflowLocation: gcp.GetEnv("WORKFLOW_LOCATION", "us-central1"),
	}
	if config.OutputBucket == "" {
		return ReorderConfig{}, fmt.Errorf("OUTPUT_BUCKET environment variable must be set")
	}

	concurrency, err := strconv.Atoi(gcp.GetEnv("BATCH_CONCURRENCY", "4"))
	if err != nil || concurrency < 1 {
		return ReorderConfig{}, fmt.Errorf("BATCH_CONCURRENCY must be a positive integer")
	}
	config.BatchConcurrency = concurrency
	return config, nil
}

func NewReorderer(ctx context.Context) (*ReorderFunction, error) {
	config, err := loadReorderConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}

	f := &ReorderFunction{
		storageClient: storageClient,
		jobs:          gcp.NewJobStore(firestoreClient, config.CollectionName),
		config:        config,
	}
	if config.WorkflowID != "" {
		f.executionsClient, err = executions.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create Workflows Executions client: %w", err)
		}
	}
	slog.Info("Reorder logic initialized.", "outputBucket", config.OutputBucket, "workflowId", config.WorkflowID)
	return f, nil
}

// Process reorders a PDF that was just uploaded to the intake bucket.
func (f *ReorderFunction) Process(ctx context.Context, e GCSEvent) error {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)

	if e.Bucket == f.config.OutputBucket {
		logCtx.Info("Object is in the output bucket. Skipping.")
		return nil
	}
	if !isPDF(e.Name) {
		logCtx.Info("Object is not a PDF. Skipping.")
		return nil
	}

	res, err := f.processObject(ctx, logCtx, gcp.Location{Bucket: e.Bucket, Object: e.Name})
	if err != nil {
		return err
	}
	if res.Status == models.ItemDuplicate {
		logCtx.Info("Duplicate file detected. Skipping.", "existingJobId", res.JobID)
	}
	return nil
}

// ProcessBatch reorders every source in req with bounded concurrency.
// A failing source is reported in its result and does not fail the batch.
func (f *ReorderFunction) ProcessBatch(ctx context.Context, req *models.ReorderBatchRequest) (*models.ReorderBatchResponse, error) {
	logCtx := slog.With("executionId", req.ExecutionID)
	logCtx.Info("Starting batch reorder.", "sourceCount", len(req.Sources))

	results := make([]models.ReorderItemResult, len(req.Sources))
	var eg errgroup.Group
	eg.SetLimit(f.config.BatchConcurrency)

	for i, source := range req.Sources {
		eg.Go(func() error {
			itemLog := logCtx.With("source", source)
			loc, err := gcp.ParseLocation(source)
			if err == nil && !loc.IsGCS() {
				err = fmt.Errorf("source %q is not a gs:// URI", source)
			}
			if err != nil {
				itemLog.Warn("Rejecting batch source.", "error", err)
				results[i] = models.ReorderItemResult{Source: source, Status: models.ItemFailed, Error: err.Error()}
				return nil
			}

			res, err := f.processObject(ctx, itemLog, loc)
			if err != nil {
				res = models.ReorderItemResult{Source: source, JobID: res.JobID, Status: models.ItemFailed, Error: err.Error()}
			}
			results[i] = res
			return nil
		})
	}
	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	status := "success"
	for _, r := range results {
		if r.Status == models.ItemFailed {
			status = "partial"
			break
		}
	}
	logCtx.Info("Batch reorder complete.", "status", status)
	return &models.ReorderBatchResponse{Status: status, Results: results}, nil
}

// processObject runs one source object through download, dedup, reorder and upload.
func (f *ReorderFunction) processObject(ctx context.Context, logCtx *slog.Logger, src gcp.Location) (models.ReorderItemResult, error) {
	result := models.ReorderItemResult{Source: src.String()}

	tempDir, err := os.MkdirTemp("", "adf-reorder-*")
	if err != nil {
		return result, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	sourcePdfPath := filepath.Join(tempDir, "source.pdf")
	if err := gcp.DownloadObject(ctx, f.storageClient, src, sourcePdfPath); err != nil {
		logCtx.Error("Failed to download source PDF", "error", err)
		return result, err
	}

	fileHash, err := calculateFileHash(sourcePdfPath)
	if err != nil {
		logCtx.Error("Failed to calculate file hash", "error", err)
		return result, fmt.Errorf("failed to calculate file hash: %w", err)
	}
	logCtx = logCtx.With("fileHash", fileHash)

	existingID, err := f.jobs.FindByHash(ctx, fileHash)
	if err != nil {
		logCtx.Error("Failed to check for duplicate", "error", err)
		return result, err
	}
	if existingID != "" {
		result.JobID = existingID
		result.Status = models.ItemDuplicate
		return result, nil
	}

	docRef, err := f.jobs.Create(ctx, fileHash, src.String())
	if err != nil {
		logCtx.Error("Failed to create job document", "error", err)
		return result, err
	}
	result.JobID = docRef.ID
	logCtx = logCtx.With("jobId", docRef.ID)
	logCtx.Info("Created job document in Firestore.")

	reorderedPath := filepath.Join(tempDir, "reordered.pdf")
	res, err := reorder.ReorderFile(sourcePdfPath, reorderedPath, reorder.NewConfiguration())
	if err != nil {
		return result, f.handleError(ctx, logCtx, docRef, "failed to reorder PDF", err)
	}
	logCtx.Info("Pages reordered.", "pageCount", res.PageCount)

	dest := gcp.Location{Bucket: f.config.OutputBucket, Object: outputObjectName(f.config.OutputPrefix, src.Object)}
	if err := gcp.UploadFile(ctx, f.storageClient, reorderedPath, dest, false); err != nil {
		if !errors.Is(err, gcp.ErrObjectExists) {
			return result, f.handleError(ctx, logCtx, docRef, "failed to upload reordered PDF", err)
		}
		logCtx.Info("SKIPPING: output object already exists.", "gcsDest", dest.String())
	}

	if err := f.jobs.Complete(ctx, docRef, dest.String(), res.PageCount, res.Permutation); err != nil {
		return result, f.handleError(ctx, logCtx, docRef, "failed to record completion", err)
	}

	if f.executionsClient != nil {
		if err := f.triggerWorkflow(ctx, logCtx, docRef, dest, res.PageCount); err != nil {
			return result, err
		}
	}

	result.Output = dest.String()
	result.PageCount = res.PageCount
	result.Status = models.ItemReordered
	logCtx.Info("Reorder complete.", "gcsDest", result.Output)
	return result, nil
}

func (f *ReorderFunction) triggerWorkflow(ctx context.Context, logCtx *slog.Logger, docRef *firestore.DocumentRef, dest gcp.Location, pageCount int) error {
	logCtx.Info("Triggering workflow.", "workflowId", f.config.WorkflowID)
	arg := models.WorkflowArgument{
		JobID:     docRef.ID,
		OutputURI: dest.String(),
		PageCount: pageCount,
	}
	execName, err := gcp.StartWorkflow(ctx, f.executionsClient, f.config.ProjectID, f.config.WorkflowLocation, f.config.WorkflowID, arg)
	if err != nil {
		return f.handleError(ctx, logCtx, docRef, "failed to hand off to workflow", err)
	}
	if err := f.jobs.SetWorkflowExecution(ctx, docRef, execName); err != nil {
		logCtx.Warn("Failed to record workflow execution.", "execution", execName, "error", err)
	}
	return nil
}

func (f *ReorderFunction) handleError(ctx context.Context, logCtx *slog.Logger, docRef *firestore.DocumentRef, message string, originalErr error) error {
	fullError := fmt.Sprintf("%s: %v", message, originalErr)
	logCtx.Error(message, "error", originalErr)
	if err := f.jobs.Fail(ctx, docRef, fullError); err != nil {
		logCtx.Error("CRITICAL: Failed to update Firestore status to FAILED after a processing error.", "updateError", err)
	}
	return fmt.Errorf("%s: %w", message, originalErr)
}

// outputObjectName places the reordered copy under prefix, keeping the source name.
func outputObjectName(prefix, sourceObject string) string {
	if prefix == "" {
		return sourceObject
	}
	return strings.TrimSuffix(prefix, "/") + "/" + sourceObject
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

func calculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
