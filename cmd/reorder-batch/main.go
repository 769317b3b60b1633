package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/adfpagecorrection/internal/models"
	"github.com/Lllllllleong/adfpagecorrection/internal/services"
)

var (
	reordererInstance *services.ReorderFunction
	once              sync.Once
	initErr           error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("HandleReorderBatch", handleReorderBatch)
}

func main() {}

// handleReorderBatch is the HTTP handler for the batch reorder service.
func handleReorderBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	once.Do(func() {
		reordererInstance, initErr = services.NewReorderer(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical: Reorderer initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	var req models.ReorderBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Could not decode request body", "error", err)
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}
	if len(req.Sources) == 0 {
		http.Error(w, "Bad Request: sources must not be empty", http.StatusBadRequest)
		return
	}

	res, err := reordererInstance.ProcessBatch(r.Context(), &req)
	if err != nil {
		slog.Error("Batch reorder aborted", "error", err, "executionId", req.ExecutionID)
		http.Error(w, "Internal Server Error: processing failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error(
			"Failed to write response",
			"error", err,
			"executionId", req.ExecutionID,
		)
	}
}
