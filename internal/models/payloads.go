package models

// These structs define the JSON payloads of the batch reorder HTTP function
// and the argument passed to the downstream workflow.

// Item status values in a ReorderBatchResponse.
const (
	ItemReordered = "reordered"
	ItemDuplicate = "duplicate"
	ItemFailed    = "failed"
)

// ReorderBatchRequest is the input for the reorder-batch function.
type ReorderBatchRequest struct {
	Sources     []string `json:"sources"`
	ExecutionID string   `json:"executionId"`
}

// ReorderItemResult reports the outcome for one source.
type ReorderItemResult struct {
	Source    string `json:"source"`
	Output    string `json:"output,omitempty"`
	JobID     string `json:"jobId,omitempty"`
	PageCount int    `json:"pageCount"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// ReorderBatchResponse is the output of the reorder-batch function.
type ReorderBatchResponse struct {
	Status  string              `json:"status"`
	Results []ReorderItemResult `json:"results"`
}

// WorkflowArgument is handed to the downstream workflow once a PDF is reordered.
type WorkflowArgument struct {
	JobID     string `json:"jobId"`
	OutputURI string `json:"outputUri"`
	PageCount int    `json:"pageCount"`
}
