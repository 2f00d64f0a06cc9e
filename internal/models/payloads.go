package models

// These structs define the JSON payloads exchanged with Cloud Workflows and
// written to the cards bucket.

// GenerateCardsRequest is the input for the generate-cards HTTP function.
type GenerateCardsRequest struct {
	DocumentID  string `json:"documentId,omitempty"`
	GCSUri      string `json:"gcsUri"`
	ContentType string `json:"contentType,omitempty"`
	ChunkCount  int    `json:"chunkCount,omitempty"`
	Multimodal  *bool  `json:"multimodal,omitempty"`
	HandoutMode string `json:"handoutMode,omitempty"`
	ExecutionID string `json:"executionId,omitempty"`
}

// GenerateCardsResponse is the output of the generate-cards HTTP function.
type GenerateCardsResponse struct {
	Status       string `json:"status"`
	DocumentID   string `json:"documentId"`
	CardCount    int    `json:"cardCount"`
	CardsGCSUri  string `json:"cardsGcsUri"`
	SkippedAsDup bool   `json:"skippedAsDuplicate,omitempty"`
}

// CardSet is the artifact written for the scheduler: issued cards in pipeline order.
type CardSet struct {
	DocumentID string       `json:"documentId"`
	DeckName   string       `json:"deckName"`
	TotalPages int          `json:"totalPages"`
	Cards      []IssuedCard `json:"cards"`
}

// SchedulerHandoff is the argument of the workflow execution that schedules a card set.
type SchedulerHandoff struct {
	DocumentID  string `json:"documentId"`
	CardsGCSUri string `json:"cardsGcsUri"`
	CardCount   int    `json:"cardCount"`
}
