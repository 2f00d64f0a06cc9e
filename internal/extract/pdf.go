package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"rsc.io/pdf"

	"github.com/Lllllllleong/studycardflow/internal/models"
)

// extractPDF extracts styled text from every page of a PDF.
func (x *Extractor) extractPDF(ctx context.Context, data []byte, onProgress models.ProgressFunc) (*models.ExtractedContent, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %v", ErrNoExtractableContent, err)
	}

	pageCount, err := preflightPDF(data)
	if err != nil {
		// pdfcpu is stricter than the content reader; fall back to the page tree count.
		x.logger.Warn("PDF preflight failed; using page tree count.", "error", err)
		pageCount = reader.NumPage()
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("%w: pdf has no pages", ErrNoExtractableContent)
	}
	x.logger.Debug("Extracting PDF pages.", "pageCount", pageCount, "batchSize", x.cfg.BatchSize)

	// The reader keeps no mutable cache, so batch goroutines can share it.
	results, err := extractPages(ctx, pageCount, x.cfg.BatchSize, func(_ context.Context, n int) (pageResult, error) {
		return readPDFPage(reader, n)
	}, onProgress, x.logger, x.cfg.StrictPages)
	if err != nil {
		return nil, err
	}

	pages, emphasis := assemble(results)
	return &models.ExtractedContent{
		Pages:        pages,
		TotalPages:   pageCount,
		Emphasis:     emphasis,
		Kind:         models.KindPDF,
		RenderSource: data,
	}, nil
}

// preflightPDF validates the document with pdfcpu and returns its page count.
func preflightPDF(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu read: %w", err)
	}
	return ctx.PageCount, nil
}

// fontFace is the per-page view of a font resource.
type fontFace struct {
	bold bool
	enc  pdf.TextEncoding
}

func (f fontFace) decode(pieces []textPiece) string {
	var sb strings.Builder
	for _, p := range pieces {
		if p.spaceBefore {
			sb.WriteByte(' ')
		}
		if f.enc != nil {
			sb.WriteString(f.enc.Decode(p.raw))
		} else {
			sb.WriteString(p.raw)
		}
	}
	return sb.String()
}

// readPDFPage turns one page into runs. Emphasis is classified on the unrounded
// color so that the 0-255 thresholds apply exactly.
func readPDFPage(r *pdf.Reader, number int) (res pageResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &PageDecodeError{Page: number, Err: fmt.Errorf("%v", rec)}
		}
	}()

	page := r.Page(number)
	if page.V.IsNull() {
		return res, &PageDecodeError{Page: number, Err: fmt.Errorf("page not found in page tree")}
	}

	// Fonts resolve in the active form's resources first, then the page's.
	faces := map[string]fontFace{}
	face := func(scope resourceScope, name string) fontFace {
		cacheKey := scope.key + "\x00" + name
		if f, ok := faces[cacheKey]; ok {
			return f
		}
		var f fontFace
		if name != "" {
			font := pdf.Font{V: scope.fonts.Key(name)}
			if font.V.IsNull() {
				font = page.Font(name)
			}
			if !font.V.IsNull() {
				f.bold = strings.Contains(strings.ToLower(font.BaseFont()), "bold")
				f.enc = font.Encoder()
			}
		}
		faces[cacheKey] = f
		return f
	}

	var runs []models.TextRun
	var spans []models.EmphasisSpan
	err = walkContent(page, func(st styledText, scope resourceScope) {
		f := face(scope, st.Style.Font)
		text := f.decode(st.Pieces)
		if strings.TrimSpace(text) == "" {
			return
		}
		fill := st.Style.Fill
		runs = append(runs, models.TextRun{
			Text:     text,
			Color:    models.RGBFromUnit(fill[0], fill[1], fill[2]),
			FontSize: st.Style.FontSize,
			Bold:     f.bold,
		})
		if models.IsEmphasisColor(fill[0]*255, fill[1]*255, fill[2]*255) {
			spans = append(spans, models.EmphasisSpan{Text: strings.TrimSpace(text), Page: number})
		}
	})
	if err != nil {
		return res, &PageDecodeError{Page: number, Err: err}
	}
	return pageResult{page: models.NewPage(number, runs), emphasis: spans}, nil
}
