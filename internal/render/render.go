// Package render rasterizes PDF pages to PNG for multimodal requests.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"

	"github.com/gen2brain/go-fitz"
)

// DefaultScale matches a 108 DPI raster of a 72 DPI page.
const DefaultScale = 1.5

// Renderer rasterizes the given 1-based pages of a PDF. Pages outside the document
// are skipped; the result has no entry for them.
type Renderer interface {
	Render(ctx context.Context, doc []byte, pages []int, scale float64) (map[int][]byte, error)
}

// FitzRenderer renders with MuPDF.
type FitzRenderer struct {
	Logger *slog.Logger
}

// NewFitzRenderer creates a MuPDF-backed renderer.
func NewFitzRenderer(logger *slog.Logger) *FitzRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &FitzRenderer{Logger: logger}
}

// Render implements Renderer.
func (r *FitzRenderer) Render(ctx context.Context, doc []byte, pages []int, scale float64) (map[int][]byte, error) {
	if scale <= 0 {
		scale = DefaultScale
	}

	d, err := fitz.NewFromMemory(doc)
	if err != nil {
		return nil, fmt.Errorf("open document for rendering: %w", err)
	}
	defer d.Close()

	count := d.NumPage()
	dpi := 72 * scale
	out := make(map[int][]byte, len(pages))
	for _, n := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if n < 1 || n > count {
			continue
		}
		if _, done := out[n]; done {
			continue
		}

		img, err := d.ImageDPI(n-1, dpi)
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", n, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode page %d: %w", n, err)
		}
		out[n] = buf.Bytes()
	}
	r.Logger.Debug("Rendered pages.", "requested", len(pages), "rendered", len(out), "dpi", dpi)
	return out, nil
}
