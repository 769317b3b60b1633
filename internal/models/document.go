package models

import "time"

// Job status values stored in Firestore.
const (
	StatusReordering = "REORDERING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// Job represents the record of one reorder run in Firestore.
// FileHash is the SHA-256 of the source PDF and is used to skip re-uploads.
type Job struct {
	FileHash            string    `firestore:"fileHash,omitempty"`
	SourceURI           string    `firestore:"sourceUri,omitempty"`
	OutputURI           string    `firestore:"outputUri,omitempty"`
	Status              string    `firestore:"status,omitempty"`
	ErrorDetails        string    `firestore:"errorDetails,omitempty"`
	PageCount           int       `firestore:"pageCount,omitempty"`
	Permutation         []int     `firestore:"permutation,omitempty"`
	WorkflowExecutionID string    `firestore:"workflowExecutionId,omitempty"` // For traceability
	CreatedAt           time.Time `firestore:"createdAt,omitempty"`
}
