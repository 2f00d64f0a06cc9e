// Package extract turns uploaded slide documents into canonical pages of styled text.
//
// Supported formats:
//   - .pdf        paginated documents (content streams replayed for fill color)
//   - .pptx/.ppt  slide decks (ppt/slides/slideN.xml runs)
//   - .goodnotes  notebook containers (embedded PDF, or text members as one page)
//
// Usage:
//
//	x := extract.New(extract.Config{})
//	content, err := x.Extract(ctx, doc, func(done, total int) { ... })
package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/studycardflow/internal/models"
)

// DefaultBatchSize is the number of pages extracted concurrently.
const DefaultBatchSize = 5

// Config configures the extractor.
type Config struct {
	// BatchSize bounds concurrent page extraction (default: 5).
	BatchSize int `yaml:"batch_size"`

	// MaxFileSize is the maximum document size to process (default: 200 MB).
	MaxFileSize int64 `yaml:"max_file_size"`

	// StrictPages aborts extraction on the first page decode failure instead of
	// degrading that page to empty content.
	StrictPages bool `yaml:"strict_pages"`

	// Logger for debug/warning messages.
	Logger *slog.Logger `yaml:"-"`
}

func (c *Config) defaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 200 * 1024 * 1024
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Extractor is the document extraction engine.
type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an Extractor with the given configuration.
func New(cfg Config) *Extractor {
	cfg.defaults()
	return &Extractor{cfg: cfg, logger: cfg.Logger}
}

// Extract detects the document kind and runs the matching adapter. onProgress is
// called after each page batch for paginated documents and once for other kinds.
func (x *Extractor) Extract(ctx context.Context, doc models.SourceDocument, onProgress models.ProgressFunc) (*models.ExtractedContent, error) {
	if int64(len(doc.Data)) > x.cfg.MaxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", len(doc.Data), x.cfg.MaxFileSize)
	}

	kind, err := Detect(doc.Name, doc.ContentType, doc.Data)
	if err != nil {
		return nil, err
	}
	x.logger.Debug("Extracting document.", "name", doc.Name, "kind", kind, "bytes", len(doc.Data))

	var content *models.ExtractedContent
	switch kind {
	case models.KindPDF:
		content, err = x.extractPDF(ctx, doc.Data, onProgress)
	case models.KindSlides:
		content, err = x.extractSlides(doc.Data)
	case models.KindNotebook:
		content, err = x.extractNotebook(ctx, doc.Data, onProgress)
	default:
		return nil, fmt.Errorf("%w: no adapter for %s", ErrUnsupportedFormat, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("extract %s (%s): %w", doc.Name, kind, err)
	}

	if kind != models.KindPDF && onProgress != nil {
		onProgress(content.TotalPages, content.TotalPages)
	}
	x.logger.Info("Extraction complete.", "name", doc.Name, "kind", kind, "pages", content.TotalPages, "emphasisSpans", len(content.Emphasis))
	return content, nil
}
