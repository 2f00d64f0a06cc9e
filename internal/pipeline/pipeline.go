// Package pipeline drives a document from raw bytes to validated study cards.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/studycardflow/internal/chunk"
	"github.com/Lllllllleong/studycardflow/internal/extract"
	"github.com/Lllllllleong/studycardflow/internal/generation"
	"github.com/Lllllllleong/studycardflow/internal/models"
	"github.com/Lllllllleong/studycardflow/internal/prompt"
	"github.com/Lllllllleong/studycardflow/internal/render"
)

// Config configures a Pipeline.
type Config struct {
	// ChunkCount is the requested number of chunks; 0 uses chunk.SuggestCount.
	ChunkCount int `yaml:"chunk_count"`

	// Multimodal sends rendered page images along with the text.
	Multimodal bool `yaml:"multimodal"`

	// HandoutMode tells the model how slides are laid out on each image.
	HandoutMode models.HandoutMode `yaml:"handout_mode"`

	// RenderScale is the raster scale for page images (default: 1.5).
	RenderScale float64 `yaml:"render_scale"`

	Logger *slog.Logger `yaml:"-"`
}

func (c *Config) defaults() {
	if c.HandoutMode == "" {
		c.HandoutMode = models.HandoutNormal
	}
	if c.RenderScale <= 0 {
		c.RenderScale = render.DefaultScale
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Result is the outcome of one Run.
type Result struct {
	Content *models.ExtractedContent
	Cards   []models.CardCandidate
	Chunks  int
}

// Pipeline sequences extraction, chunking, prompting, generation and validation.
type Pipeline struct {
	cfg       Config
	extractor *extract.Extractor
	generator generation.Generator
	renderer  render.Renderer
	logger    *slog.Logger
}

// New creates a Pipeline. renderer may be nil when Multimodal is off.
func New(cfg Config, extractor *extract.Extractor, generator generation.Generator, renderer render.Renderer) *Pipeline {
	cfg.defaults()
	return &Pipeline{
		cfg:       cfg,
		extractor: extractor,
		generator: generator,
		renderer:  renderer,
		logger:    cfg.Logger,
	}
}

// Run extracts doc and generates cards from it. onExtract reports page batches,
// onGenerate reports completed chunks; both may be nil.
func (p *Pipeline) Run(ctx context.Context, doc models.SourceDocument, onExtract, onGenerate models.ProgressFunc) (*Result, error) {
	content, err := p.extractor.Extract(ctx, doc, onExtract)
	if err != nil {
		return nil, err
	}
	cards, chunks, err := p.generate(ctx, content, onGenerate)
	if err != nil {
		return nil, err
	}
	return &Result{Content: content, Cards: cards, Chunks: chunks}, nil
}

// Generate turns extracted content into cards. Chunks are processed one at a time
// in page order; the first failure aborts the run and no cards are returned.
func (p *Pipeline) Generate(ctx context.Context, content *models.ExtractedContent, onProgress models.ProgressFunc) ([]models.CardCandidate, error) {
	cards, _, err := p.generate(ctx, content, onProgress)
	return cards, err
}

func (p *Pipeline) generate(ctx context.Context, content *models.ExtractedContent, onProgress models.ProgressFunc) ([]models.CardCandidate, int, error) {
	canRender := p.cfg.Multimodal && p.renderer != nil && len(content.RenderSource) > 0
	if content.Blank() && !canRender {
		return nil, 0, fmt.Errorf("%w: document has no text (image-only documents need multimodal mode)", extract.ErrNoExtractableContent)
	}

	count := p.cfg.ChunkCount
	if count <= 0 {
		count = chunk.SuggestCount(content.TotalPages)
	}
	chunks := chunk.Plan(content, count)
	if p.cfg.Multimodal {
		chunks = chunk.Tile(content, chunks)
	}
	p.logger.Info("Generating cards.", "pages", content.TotalPages, "chunks", len(chunks), "multimodal", p.cfg.Multimodal)

	var renderer render.Renderer
	if canRender {
		renderer = render.Cached(p.renderer, render.NewCache())
	}

	var cards []models.CardCandidate
	for i, c := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		first, last := c.Span()
		logCtx := p.logger.With("chunk", i+1, "of", len(chunks), "firstPage", first, "lastPage", last)

		parts, err := p.buildParts(ctx, content, c, renderer)
		if err != nil {
			return nil, 0, fmt.Errorf("chunk %d (pages %d-%d): %w", i+1, first, last, err)
		}

		raw, err := p.generator.Generate(ctx, parts)
		if err != nil {
			logCtx.Error("Generation call failed.", "error", err)
			return nil, 0, fmt.Errorf("chunk %d (pages %d-%d): %w", i+1, first, last, err)
		}

		got, err := generation.ParseCandidates(raw)
		if err != nil {
			logCtx.Error("Generation response rejected.", "error", err, "bytes", len(raw))
			return nil, 0, fmt.Errorf("chunk %d (pages %d-%d): %w", i+1, first, last, err)
		}
		logCtx.Info("Chunk complete.", "cards", len(got))

		cards = append(cards, got...)
		if onProgress != nil {
			onProgress(i+1, len(chunks))
		}
	}
	return cards, len(chunks), nil
}

func (p *Pipeline) buildParts(ctx context.Context, content *models.ExtractedContent, c models.Chunk, renderer render.Renderer) ([]models.Part, error) {
	if !p.cfg.Multimodal {
		return prompt.BuildText(c), nil
	}

	var images map[int][]byte
	if renderer != nil {
		var err error
		images, err = renderer.Render(ctx, content.RenderSource, c.PageNumbers(), p.cfg.RenderScale)
		if err != nil {
			return nil, fmt.Errorf("render pages: %w", err)
		}
	}
	return prompt.BuildMultimodal(c, images, p.cfg.HandoutMode), nil
}
