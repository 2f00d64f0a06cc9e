// Package chunk partitions extracted pages into ordered generation work units.
package chunk

import "github.com/Lllllllleong/studycardflow/internal/models"

const (
	pagesPerChunk = 5
	maxSuggested  = 10
)

// SuggestCount returns a page-proportional default chunk count: 1 for short
// documents, otherwise one chunk per five pages capped at 10.
func SuggestCount(totalPages int) int {
	if totalPages <= pagesPerChunk {
		return 1
	}
	return min(maxSuggested, ceilDiv(totalPages, pagesPerChunk))
}

// Plan splits the non-empty pages of content into min(count, n) contiguous chunks.
// Chunk sizes are ceil(n/actual) with a shorter tail; when that would leave fewer
// chunks than requested, sizes are balanced instead so the count always holds.
// A document without any text yields one chunk holding its first page.
func Plan(content *models.ExtractedContent, count int) []models.Chunk {
	if content == nil || len(content.Pages) == 0 {
		return nil
	}

	var pages []models.Page
	for _, p := range content.Pages {
		if !p.Blank() {
			pages = append(pages, p)
		}
	}
	if len(pages) == 0 {
		first := content.Pages[0]
		return []models.Chunk{{
			Pages:    []models.Page{first},
			Emphasis: emphasisFor(content.Emphasis, []models.Page{first}),
		}}
	}

	n := len(pages)
	actual := min(max(count, 1), n)

	chunks := make([]models.Chunk, 0, actual)
	for _, size := range sizes(n, actual) {
		slice := pages[:size:size]
		pages = pages[size:]
		chunks = append(chunks, models.Chunk{
			Pages:    slice,
			Emphasis: emphasisFor(content.Emphasis, slice),
		})
	}
	return chunks
}

// sizes returns the chunk lengths for n pages in k chunks.
func sizes(n, k int) []int {
	size := ceilDiv(n, k)
	if ceilDiv(n, size) == k {
		out := make([]int, 0, k)
		for rest := n; rest > 0; rest -= size {
			out = append(out, min(size, rest))
		}
		return out
	}

	// e.g. n=9, k=4: ceil sizing gives 3,3,3 so spread the remainder over the head.
	out := make([]int, k)
	base, extra := n/k, n%k
	for i := range out {
		out[i] = base
		if i < extra {
			out[i]++
		}
	}
	return out
}

// Tile widens planned chunks so that together they cover every page of content in
// order, blank pages included, for requests that send page images. Pages before
// the first chunk join the first chunk; pages between chunk k and chunk k+1 join
// chunk k; pages after the last chunk join the last.
func Tile(content *models.ExtractedContent, chunks []models.Chunk) []models.Chunk {
	if content == nil || len(chunks) == 0 {
		return chunks
	}

	tiled := make([]models.Chunk, len(chunks))
	for i, c := range chunks {
		lo, _ := c.Span()
		hi := 0 // unbounded
		if i+1 < len(chunks) {
			next, _ := chunks[i+1].Span()
			hi = next - 1
		}

		var pages []models.Page
		for _, p := range content.Pages {
			if (i > 0 && p.Number < lo) || (hi > 0 && p.Number > hi) {
				continue
			}
			pages = append(pages, p)
		}
		tiled[i] = models.Chunk{Pages: pages, Emphasis: emphasisFor(content.Emphasis, pages)}
	}
	return tiled
}

func emphasisFor(spans []models.EmphasisSpan, pages []models.Page) []models.EmphasisSpan {
	in := make(map[int]bool, len(pages))
	for _, p := range pages {
		in[p.Number] = true
	}
	var out []models.EmphasisSpan
	for _, s := range spans {
		if in[s.Page] {
			out = append(out, s)
		}
	}
	return out
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
