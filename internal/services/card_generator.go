package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	executions "cloud.google.com/go/workflows/executions/apiv1"

	"github.com/Lllllllleong/studycardflow/internal/extract"
	"github.com/Lllllllleong/studycardflow/internal/gcp"
	"github.com/Lllllllleong/studycardflow/internal/generation"
	"github.com/Lllllllleong/studycardflow/internal/models"
	"github.com/Lllllllleong/studycardflow/internal/pipeline"
	"github.com/Lllllllleong/studycardflow/internal/prompt"
	"github.com/Lllllllleong/studycardflow/internal/render"
)

// Generator backends selectable with GENERATOR_BACKEND.
const (
	BackendVertex = "vertex"
	BackendREST   = "rest"
)

// CardGeneratorConfig holds all configuration for the card generator service.
type CardGeneratorConfig struct {
	ProjectID        string
	VertexAIRegion   string
	CardsBucket      string
	CollectionName   string
	Backend          string
	GeminiAPIKey     string
	GeminiModel      string
	ChunkCount       int
	Multimodal       bool
	HandoutMode      models.HandoutMode
	RenderScale      float64
	WorkflowID       string
	WorkflowLocation string
}

// CardGeneratorFunction holds the dependencies for the card generation logic.
type CardGeneratorFunction struct {
	storageClient    *storage.Client
	jobs             *gcp.JobStore
	executionsClient *executions.Client
	vertexClient     *gcp.VertexClient
	extractor        *extract.Extractor
	generator        generation.Generator
	renderer         render.Renderer
	config           CardGeneratorConfig
}

// GCSEvent is the payload of a storage object finalized event.
type GCSEvent struct {
	Bucket      string `json:"bucket"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
}

// loadConfig loads and validates all necessary environment variables for this service.
func loadConfig() (*CardGeneratorConfig, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	cardsBucket := gcp.GetEnv("CARDS_BUCKET", "")
	if cardsBucket == "" {
		return nil, fmt.Errorf("CARDS_BUCKET environment variable must be set")
	}

	config := &CardGeneratorConfig{
		ProjectID:        projectID,
		VertexAIRegion:   gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
		CardsBucket:      cardsBucket,
		CollectionName:   gcp.GetEnv("FIRESTORE_COLLECTION", "card_jobs"),
		Backend:          strings.ToLower(gcp.GetEnv("GENERATOR_BACKEND", BackendVertex)),
		GeminiAPIKey:     gcp.GetEnv("GEMINI_API_KEY", ""),
		GeminiModel:      gcp.GetEnv("GEMINI_MODEL", generation.DefaultModel),
		HandoutMode:      models.ParseHandoutMode(gcp.GetEnv("HANDOUT_MODE", "")),
		WorkflowID:       gcp.GetEnv("WORKFLOW_ID", ""),
		WorkflowLocation: gcp.GetEnv("WORKFLOW_LOCATION", "us-central1"),
	}

	switch config.Backend {
	case BackendVertex:
	case BackendREST:
		if config.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable must be set for the %s backend", BackendREST)
		}
	default:
		return nil, fmt.Errorf("GENERATOR_BACKEND must be %q or %q, got %q", BackendVertex, BackendREST, config.Backend)
	}

	var err error
	if config.ChunkCount, err = strconv.Atoi(gcp.GetEnv("CHUNK_COUNT", "0")); err != nil || config.ChunkCount < 0 {
		return nil, fmt.Errorf("CHUNK_COUNT must be a non-negative integer")
	}
	if config.Multimodal, err = strconv.ParseBool(gcp.GetEnv("MULTIMODAL", "false")); err != nil {
		return nil, fmt.Errorf("MULTIMODAL must be a boolean: %w", err)
	}
	if config.RenderScale, err = strconv.ParseFloat(gcp.GetEnv("RENDER_SCALE", "1.5"), 64); err != nil || config.RenderScale <= 0 {
		return nil, fmt.Errorf("RENDER_SCALE must be a positive number")
	}
	return config, nil
}

// NewCardGenerator creates a new CardGeneratorFunction instance.
func NewCardGenerator(ctx context.Context) (*CardGeneratorFunction, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}

	f := &CardGeneratorFunction{
		storageClient: storageClient,
		jobs:          gcp.NewJobStore(firestoreClient, config.CollectionName),
		extractor:     extract.New(extract.Config{Logger: slog.Default()}),
		renderer:      render.NewFitzRenderer(slog.Default()),
		config:        *config,
	}

	switch config.Backend {
	case BackendREST:
		f.generator, err = generation.NewRESTClient(generation.RESTConfig{
			APIKey:            config.GeminiAPIKey,
			Model:             config.GeminiModel,
			SystemInstruction: prompt.SystemPrompt,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create REST generator: %w", err)
		}
	default:
		f.vertexClient, err = gcp.NewVertexClient(ctx, config.ProjectID, config.VertexAIRegion, config.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create vertex client: %w", err)
		}
		f.generator = f.vertexClient.Generator()
	}

	if config.WorkflowID != "" {
		f.executionsClient, err = executions.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create Workflows Executions client: %w", err)
		}
	}

	slog.Info("Card generator logic initialized.", "backend", config.Backend, "model", config.GeminiModel, "workflowId", config.WorkflowID)
	return f, nil
}

// Process handles a storage upload event: the uploaded document becomes a new job.
func (f *CardGeneratorFunction) Process(ctx context.Context, e GCSEvent) error {
	_, err := f.Generate(ctx, &models.GenerateCardsRequest{
		GCSUri:      fmt.Sprintf("gs://%s/%s", e.Bucket, e.Name),
		ContentType: e.ContentType,
	})
	return err
}

// Generate runs the card pipeline for one object in GCS. Without a DocumentID the
// file is deduplicated by content hash and a new job document is created.
func (f *CardGeneratorFunction) Generate(ctx context.Context, req *models.GenerateCardsRequest) (*models.GenerateCardsResponse, error) {
	logCtx := slog.With("gcsUri", req.GCSUri, "executionId", req.ExecutionID)
	logCtx.Info("Processing card generation request.")

	bucket, object, err := gcp.ParseGCSURI(req.GCSUri)
	if err != nil {
		return nil, err
	}
	obj, err := gcp.ReadObject(ctx, f.storageClient, bucket, object)
	if err != nil {
		logCtx.Error("Failed to download source document", "error", err)
		return nil, err
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = obj.ContentType
	}
	fileName := path.Base(object)

	var docRef *firestore.DocumentRef
	if req.DocumentID != "" {
		docRef = f.jobs.Ref(req.DocumentID)
	} else {
		fileHash := hashBytes(obj.Data)
		logCtx = logCtx.With("fileHash", fileHash)

		existingID, err := f.jobs.FindByHash(ctx, fileHash)
		if err != nil {
			logCtx.Error("Failed to check for duplicate", "error", err)
			return nil, err
		}
		if existingID != "" {
			logCtx.Info("Duplicate file detected. Skipping.", "existingDocId", existingID)
			return &models.GenerateCardsResponse{Status: "SKIPPED", DocumentID: existingID, SkippedAsDup: true}, nil
		}

		docRef, err = f.jobs.Create(ctx, models.Document{
			FileHash:         fileHash,
			OriginalFilename: object,
			DeckName:         models.DeckName(fileName),
			Status:           models.StatusValidating,
			CreatedAt:        time.Now(),
		})
		if err != nil {
			logCtx.Error("Failed to create initial Firestore document", "error", err)
			return nil, err
		}
	}
	logCtx = logCtx.With("documentId", docRef.ID)

	kind, err := extract.Detect(fileName, contentType, obj.Data)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, docRef, "unsupported document", err)
	}
	if err := f.jobs.Update(ctx, docRef,
		firestore.Update{Path: "status", Value: models.StatusExtracting},
		firestore.Update{Path: "format", Value: string(kind)},
	); err != nil {
		return nil, f.handleError(ctx, logCtx, docRef, "failed to update status to EXTRACTING", err)
	}

	p := pipeline.New(f.pipelineConfig(req, logCtx), f.extractor, f.generator, f.renderer)
	doc := models.SourceDocument{Name: fileName, ContentType: contentType, Data: obj.Data}

	content, err := f.extractor.Extract(ctx, doc, f.progress(ctx, logCtx, docRef, "pagesExtracted", "pageCount"))
	if err != nil {
		return nil, f.handleError(ctx, logCtx, docRef, "failed to extract document", err)
	}
	if err := f.jobs.Update(ctx, docRef,
		firestore.Update{Path: "status", Value: models.StatusGenerating},
		firestore.Update{Path: "pageCount", Value: content.TotalPages},
	); err != nil {
		return nil, f.handleError(ctx, logCtx, docRef, "failed to update status to GENERATING", err)
	}

	cards, err := p.Generate(ctx, content, f.progress(ctx, logCtx, docRef, "chunksCompleted", "chunkCount"))
	if err != nil {
		return nil, f.handleError(ctx, logCtx, docRef, "failed to generate cards", err)
	}

	cardsURI, err := f.saveCards(ctx, docRef.ID, models.DeckName(fileName), content.TotalPages, cards)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, docRef, "failed to save cards", err)
	}

	tally := models.CountCategories(cards)
	categoryCounts := make(map[string]int, len(tally))
	for c, n := range tally {
		categoryCounts[string(c)] = n
	}
	if err := f.jobs.Update(ctx, docRef,
		firestore.Update{Path: "status", Value: models.StatusCompleted},
		firestore.Update{Path: "cardCount", Value: len(cards)},
		firestore.Update{Path: "categoryCounts", Value: categoryCounts},
		firestore.Update{Path: "cardsGcsUri", Value: cardsURI},
	); err != nil {
		return nil, f.handleError(ctx, logCtx, docRef, "failed to update status to COMPLETED", err)
	}
	logCtx.Info("Cards generated.", "cardCount", len(cards), "categories", categoryCounts, "cardsGcsUri", cardsURI)

	if err := f.handOff(ctx, logCtx, docRef, cardsURI, len(cards)); err != nil {
		return nil, err
	}

	return &models.GenerateCardsResponse{
		Status:      models.StatusCompleted,
		DocumentID:  docRef.ID,
		CardCount:   len(cards),
		CardsGCSUri: cardsURI,
	}, nil
}

func (f *CardGeneratorFunction) pipelineConfig(req *models.GenerateCardsRequest, logCtx *slog.Logger) pipeline.Config {
	cfg := pipeline.Config{
		ChunkCount:  f.config.ChunkCount,
		Multimodal:  f.config.Multimodal,
		HandoutMode: f.config.HandoutMode,
		RenderScale: f.config.RenderScale,
		Logger:      logCtx,
	}
	if req.ChunkCount > 0 {
		cfg.ChunkCount = req.ChunkCount
	}
	if req.Multimodal != nil {
		cfg.Multimodal = *req.Multimodal
	}
	if req.HandoutMode != "" {
		cfg.HandoutMode = models.ParseHandoutMode(req.HandoutMode)
	}
	return cfg
}

// progress records pipeline progress on the job document. Failed updates are logged
// and do not stop the run.
func (f *CardGeneratorFunction) progress(ctx context.Context, logCtx *slog.Logger, docRef *firestore.DocumentRef, doneField, totalField string) models.ProgressFunc {
	return func(done, total int) {
		logCtx.Info("Progress.", doneField, done, totalField, total)
		if err := f.jobs.Update(ctx, docRef,
			firestore.Update{Path: doneField, Value: done},
			firestore.Update{Path: totalField, Value: total},
		); err != nil {
			logCtx.Warn("Failed to record progress.", "error", err)
		}
	}
}

func (f *CardGeneratorFunction) saveCards(ctx context.Context, docID, deckName string, totalPages int, cards []models.CardCandidate) (string, error) {
	set := models.CardSet{
		DocumentID: docID,
		DeckName:   deckName,
		TotalPages: totalPages,
		Cards:      models.Issue(cards),
	}
	payload, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal card set: %w", err)
	}
	objectName := fmt.Sprintf("%s/cards.json", docID)
	if err := gcp.SaveToGCSAtomically(ctx, f.storageClient.Bucket(f.config.CardsBucket), objectName, "application/json", payload); err != nil {
		return "", err
	}
	return fmt.Sprintf("gs://%s/%s", f.config.CardsBucket, objectName), nil
}

// handOff starts the scheduler workflow for the saved card set, when one is configured.
func (f *CardGeneratorFunction) handOff(ctx context.Context, logCtx *slog.Logger, docRef *firestore.DocumentRef, cardsURI string, cardCount int) error {
	if f.executionsClient == nil {
		return nil
	}
	logCtx.Info("Triggering workflow.")
	execName, err := gcp.TriggerWorkflow(ctx, f.executionsClient, gcp.WorkflowRef{
		ProjectID: f.config.ProjectID,
		Location:  f.config.WorkflowLocation,
		ID:        f.config.WorkflowID,
	}, models.SchedulerHandoff{DocumentID: docRef.ID, CardsGCSUri: cardsURI, CardCount: cardCount})
	if err != nil {
		return f.handleError(ctx, logCtx, docRef, "failed to trigger workflow execution", err)
	}
	if err := f.jobs.Update(ctx, docRef, firestore.Update{Path: "workflowExecutionId", Value: execName}); err != nil {
		logCtx.Warn("Failed to record workflow execution.", "error", err)
	}
	logCtx.Info("Hand-off to workflow complete.", "execution", execName)
	return nil
}

func (f *CardGeneratorFunction) handleError(ctx context.Context, logCtx *slog.Logger, docRef *firestore.DocumentRef, message string, originalErr error) error {
	fullError := fmt.Sprintf("%s: %v", message, originalErr)
	logCtx.Error(message, "error", originalErr)
	if err := f.jobs.Update(ctx, docRef,
		firestore.Update{Path: "status", Value: models.StatusFailed},
		firestore.Update{Path: "errorDetails", Value: fullError},
	); err != nil {
		logCtx.Error("CRITICAL: Failed to update Firestore status to FAILED after a processing error.", "updateError", err)
	}
	return fmt.Errorf("%s: %w", message, originalErr)
}

// IsClientError reports whether err was caused by the document itself rather than
// by the service, so callers can answer with a 4xx.
func IsClientError(err error) bool {
	return errors.Is(err, extract.ErrUnsupportedFormat) || errors.Is(err, extract.ErrNoExtractableContent)
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
