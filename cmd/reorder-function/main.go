package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/adfpagecorrection/internal/services"
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

var (
	reordererInstance *services.ReorderFunction
	once              sync.Once
	initErr           error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("ReorderUploadedPDF", reorderUploadedPDF)
}

func main() {}

// reorderUploadedPDF is the Cloud Function entry point for GCS finalize events.
func reorderUploadedPDF(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		reordererInstance, initErr = services.NewReorderer(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent services.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	// Returning an error marks the invocation as failed so GCS retries it.
	return reordererInstance.Process(ctx, gcsEvent)
}
