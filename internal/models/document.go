package models

import "time"

// Job statuses recorded on the Firestore job document.
const (
	StatusValidating = "VALIDATING"
	StatusExtracting = "EXTRACTING"
	StatusGenerating = "GENERATING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// Document represents the main record for a card generation job in Firestore.
// It tracks the overall status, progress and output location of the file.
type Document struct {
	FileHash            string         `firestore:"fileHash,omitempty"`
	OriginalFilename    string         `firestore:"originalFilename,omitempty"`
	DeckName            string         `firestore:"deckName,omitempty"`
	Format              string         `firestore:"format,omitempty"`
	Status              string         `firestore:"status,omitempty"`
	ErrorDetails        string         `firestore:"errorDetails,omitempty"`
	PageCount           int            `firestore:"pageCount,omitempty"`
	PagesExtracted      int            `firestore:"pagesExtracted,omitempty"`
	ChunkCount          int            `firestore:"chunkCount,omitempty"`
	ChunksCompleted     int            `firestore:"chunksCompleted,omitempty"`
	CardCount           int            `firestore:"cardCount,omitempty"`
	CategoryCounts      map[string]int `firestore:"categoryCounts,omitempty"`
	CardsGCSUri         string         `firestore:"cardsGcsUri,omitempty"`
	WorkflowExecutionID string         `firestore:"workflowExecutionId,omitempty"` // For traceability
	CreatedAt           time.Time      `firestore:"createdAt,omitempty"`
}
