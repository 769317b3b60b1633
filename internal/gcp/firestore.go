package gcp

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/adfpagecorrection/internal/models"
)

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// JobStore keeps one Firestore document per reorder job.
type JobStore struct {
	client     *firestore.Client
	collection string
}

func NewJobStore(client *firestore.Client, collection string) *JobStore {
	return &JobStore{client: client, collection: collection}
}

// FindByHash returns the ID of an existing job for the file hash, or "" if none.
func (s *JobStore) FindByHash(ctx context.Context, fileHash string) (string, error) {
	docs, err := s.client.Collection(s.collection).Where("fileHash", "==", fileHash).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return "", fmt.Errorf("failed to query for duplicates: %w", err)
	}
	if len(docs) > 0 {
		return docs[0].Ref.ID, nil
	}
	return "", nil
}

// Create adds a job in the REORDERING state.
func (s *JobStore) Create(ctx context.Context, fileHash, sourceURI string) (*firestore.DocumentRef, error) {
	job := models.Job{
		FileHash:  fileHash,
		SourceURI: sourceURI,
		Status:    models.StatusReordering,
		CreatedAt: time.Now(),
	}
	docRef, _, err := s.client.Collection(s.collection).Add(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("failed to create job document: %w", err)
	}
	return docRef, nil
}

// Complete records a successful reorder.
func (s *JobStore) Complete(ctx context.Context, docRef *firestore.DocumentRef, outputURI string, pageCount int, permutation []int) error {
	updates := []firestore.Update{
		{Path: "status", Value: models.StatusCompleted},
		{Path: "outputUri", Value: outputURI},
		{Path: "pageCount", Value: pageCount},
		{Path: "permutation", Value: permutation},
	}
	if _, err := docRef.Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update status to %s: %w", models.StatusCompleted, err)
	}
	return nil
}

// SetWorkflowExecution records the downstream execution started for a job.
func (s *JobStore) SetWorkflowExecution(ctx context.Context, docRef *firestore.DocumentRef, executionID string) error {
	_, err := docRef.Update(ctx, []firestore.Update{{Path: "workflowExecutionId", Value: executionID}})
	return err
}

// Fail marks a job FAILED with the given details.
func (s *JobStore) Fail(ctx context.Context, docRef *firestore.DocumentRef, errDetails string) error {
	updates := []firestore.Update{
		{Path: "status", Value: models.StatusFailed},
	}
	if errDetails != "" {
		updates = append(updates, firestore.Update{Path: "errorDetails", Value: errDetails})
	}
	_, err := docRef.Update(ctx, updates)
	return err
}
