package services

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/studycardflow/internal/extract"
	"github.com/Lllllllleong/studycardflow/internal/models"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("PROJECT_ID", "study-project")
	t.Setenv("CARDS_BUCKET", "study-cards")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "study-project", cfg.ProjectID)
	assert.Equal(t, "study-cards", cfg.CardsBucket)
	assert.Equal(t, "us-central1", cfg.VertexAIRegion)
	assert.Equal(t, "card_jobs", cfg.CollectionName)
	assert.Equal(t, BackendVertex, cfg.Backend)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, 0, cfg.ChunkCount)
	assert.False(t, cfg.Multimodal)
	assert.Equal(t, models.HandoutNormal, cfg.HandoutMode)
	assert.Equal(t, 1.5, cfg.RenderScale)
	assert.Empty(t, cfg.WorkflowID)
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GENERATOR_BACKEND", "REST")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("CHUNK_COUNT", "4")
	t.Setenv("MULTIMODAL", "true")
	t.Setenv("HANDOUT_MODE", "6")
	t.Setenv("RENDER_SCALE", "2")
	t.Setenv("WORKFLOW_ID", "card-scheduler")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, BackendREST, cfg.Backend)
	assert.Equal(t, 4, cfg.ChunkCount)
	assert.True(t, cfg.Multimodal)
	assert.Equal(t, models.Handout6Up, cfg.HandoutMode)
	assert.Equal(t, 2.0, cfg.RenderScale)
	assert.Equal(t, "card-scheduler", cfg.WorkflowID)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing project", map[string]string{"PROJECT_ID": ""}, "PROJECT_ID"},
		{"missing bucket", map[string]string{"CARDS_BUCKET": ""}, "CARDS_BUCKET"},
		{"rest without key", map[string]string{"GENERATOR_BACKEND": "rest"}, "GEMINI_API_KEY"},
		{"unknown backend", map[string]string{"GENERATOR_BACKEND": "openai"}, "GENERATOR_BACKEND"},
		{"bad chunk count", map[string]string{"CHUNK_COUNT": "many"}, "CHUNK_COUNT"},
		{"negative chunk count", map[string]string{"CHUNK_COUNT": "-1"}, "CHUNK_COUNT"},
		{"bad multimodal", map[string]string{"MULTIMODAL": "sometimes"}, "MULTIMODAL"},
		{"bad scale", map[string]string{"RENDER_SCALE": "0"}, "RENDER_SCALE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := loadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPipelineConfigRequestOverrides(t *testing.T) {
	f := &CardGeneratorFunction{config: CardGeneratorConfig{
		ChunkCount:  2,
		HandoutMode: models.HandoutNormal,
		RenderScale: 1.5,
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := f.pipelineConfig(&models.GenerateCardsRequest{}, logger)
	assert.Equal(t, 2, cfg.ChunkCount)
	assert.False(t, cfg.Multimodal)
	assert.Equal(t, models.HandoutNormal, cfg.HandoutMode)

	on := true
	cfg = f.pipelineConfig(&models.GenerateCardsRequest{ChunkCount: 5, Multimodal: &on, HandoutMode: "4-per-page"}, logger)
	assert.Equal(t, 5, cfg.ChunkCount)
	assert.True(t, cfg.Multimodal)
	assert.Equal(t, models.Handout4Up, cfg.HandoutMode)
	assert.Equal(t, 1.5, cfg.RenderScale)
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(fmt.Errorf("unsupported document: %w", extract.ErrUnsupportedFormat)))
	assert.True(t, IsClientError(fmt.Errorf("x: %w", extract.ErrNoSlidesFound)))
	assert.False(t, IsClientError(errors.New("firestore unavailable")))
}

func TestHashBytes(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", hashBytes(nil))
}
