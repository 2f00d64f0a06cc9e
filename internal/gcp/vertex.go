package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"

	"github.com/Lllllllleong/studycardflow/internal/generation"
	"github.com/Lllllllleong/studycardflow/internal/prompt"
)

// VertexClient holds the pre-configured generative models for our app.
type VertexClient struct {
	CardModel  *genai.GenerativeModel
	baseClient *genai.Client
}

// NewVertexClient creates a new client holding all necessary models. modelName
// defaults to generation.DefaultModel.
func NewVertexClient(ctx context.Context, projectID, region, modelName string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}
	if modelName == "" {
		modelName = generation.DefaultModel
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	// --- Configure the card model ---
	cardModel := baseClient.GenerativeModel(modelName)
	cardModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompt.SystemPrompt)},
	}
	cardModel.GenerationConfig = genai.GenerationConfig{
		// The response is parsed as a JSON array of cards.
		ResponseMIMEType: generation.ResponseMIMEType,
		Temperature:      genai.Ptr[float32](generation.Temperature),
		MaxOutputTokens:  genai.Ptr[int32](generation.MaxOutputTokens),
	}

	return &VertexClient{
		CardModel:  cardModel,
		baseClient: baseClient,
	}, nil
}

// Generator returns a generation.Generator backed by the card model.
func (c *VertexClient) Generator() *generation.VertexGenerator {
	return &generation.VertexGenerator{Model: c.CardModel}
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}
