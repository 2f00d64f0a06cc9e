package extract

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/studycardflow/internal/models"
)

// pageResult is the output of one page extraction.
type pageResult struct {
	page     models.Page
	emphasis []models.EmphasisSpan
}

// pageFunc extracts a single 1-based page.
type pageFunc func(ctx context.Context, number int) (pageResult, error)

// extractPages runs fn for pages 1..total in fixed-size batches. Pages inside a batch
// run concurrently; a batch finishes before the next one starts. Each goroutine
// writes only its own slot, so the result is ordered by page number. A failing page
// degrades to an empty page unless strict is set.
func extractPages(ctx context.Context, total, batchSize int, fn pageFunc, onProgress models.ProgressFunc, logger *slog.Logger, strict bool) ([]pageResult, error) {
	if batchSize < 1 {
		batchSize = 1
	}
	results := make([]pageResult, total)

	for start := 0; start < total; start += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+batchSize, total)

		eg, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			pageNumber := i + 1
			eg.Go(func() error {
				res, err := fn(gctx, pageNumber)
				if err != nil {
					var pde *PageDecodeError
					if !errors.As(err, &pde) {
						pde = &PageDecodeError{Page: pageNumber, Err: err}
					}
					if strict {
						return pde
					}
					logger.Warn("Page could not be decoded; continuing with an empty page.", "page", pageNumber, "error", err)
					res = pageResult{page: models.Page{Number: pageNumber}}
				}
				results[pageNumber-1] = res
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}

		if onProgress != nil {
			onProgress(end, total)
		}
	}
	return results, nil
}

// assemble flattens page results into pages plus the document-level emphasis list.
func assemble(results []pageResult) ([]models.Page, []models.EmphasisSpan) {
	pages := make([]models.Page, 0, len(results))
	var emphasis []models.EmphasisSpan
	for _, r := range results {
		pages = append(pages, r.page)
		emphasis = append(emphasis, r.emphasis...)
	}
	return pages, emphasis
}
