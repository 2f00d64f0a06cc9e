// Package generation talks to the card generation model and validates what it returns.
package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lllllllleong/studycardflow/internal/models"
)

// Sampling configuration shared by every backend.
const (
	DefaultModel     = "gemini-2.0-flash"
	Temperature      = 0.7
	MaxOutputTokens  = 8192
	ResponseMIMEType = "application/json"
)

var (
	// ErrEmptyResponse is returned when a successful response carries no text.
	ErrEmptyResponse = errors.New("generation service returned no text")

	// ErrUnparsableResponse is returned when the response text is not JSON.
	ErrUnparsableResponse = errors.New("generation response is not valid JSON")

	// ErrMalformedResponse is returned when the response JSON is not an array.
	ErrMalformedResponse = errors.New("generation response is not a JSON array")
)

// Generator sends one ordered list of parts and returns the raw response text.
// Implementations do not retry.
type Generator interface {
	Generate(ctx context.Context, parts []models.Part) (string, error)
}

// ServiceError is a non-success answer from the generation service.
type ServiceError struct {
	Status  int    // HTTP status, 0 when the transport has none
	Code    string // service status name, e.g. INVALID_ARGUMENT
	Message string
}

func (e *ServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("generation service error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("generation service error (%s): %s", e.Code, e.Message)
}
