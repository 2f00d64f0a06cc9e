package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/Lllllllleong/studycardflow/internal/models"
)

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
// It centralizes client creation for all services.
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

// JobStore reads and writes card generation job documents in one collection.
type JobStore struct {
	client     *firestore.Client
	collection string
}

// NewJobStore returns a store over the named collection.
func NewJobStore(client *firestore.Client, collection string) *JobStore {
	return &JobStore{client: client, collection: collection}
}

// Ref returns the document reference for an existing job.
func (s *JobStore) Ref(id string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(id)
}

// FindByHash returns the ID of a job for the same file contents, or "" when none exists.
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

// Create adds a new job document.
func (s *JobStore) Create(ctx context.Context, doc models.Document) (*firestore.DocumentRef, error) {
	docRef, _, err := s.client.Collection(s.collection).Add(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create job document: %w", err)
	}
	return docRef, nil
}

// Update applies field updates to a job document.
func (s *JobStore) Update(ctx context.Context, docRef *firestore.DocumentRef, updates ...firestore.Update) error {
	if _, err := docRef.Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update job %s: %w", docRef.ID, err)
	}
	return nil
}
