package models

import (
	"fmt"
	"math"
	"strings"
)

// Kind identifies the container format of a source document.
type Kind string

const (
	KindPDF      Kind = "pdf"
	KindSlides   Kind = "slides"
	KindNotebook Kind = "notebook"
	KindUnknown  Kind = "unknown"
)

// SourceDocument is the raw uploaded file. It is never modified after it is read.
type SourceDocument struct {
	Name        string
	ContentType string
	Data        []byte
}

// ProgressFunc reports completed units out of a total. Page extraction and chunk
// generation report through separate callbacks with separate counters.
type ProgressFunc func(completed, total int)

// RGB is a fill color with 8-bit components.
type RGB struct {
	R, G, B uint8
}

// Black is the initial fill color of every page.
var Black = RGB{}

// RGBFromUnit converts [0,1] float components to 8-bit, clamping out-of-range values.
func RGBFromUnit(r, g, b float64) RGB {
	return RGB{R: unitToByte(r), G: unitToByte(g), B: unitToByte(b)}
}

func unitToByte(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255))
}

// Hex renders the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// MarshalText encodes the color as its hex form.
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// Emphasized reports whether the color counts as red-like highlight text.
func (c RGB) Emphasized() bool {
	return IsEmphasisColor(float64(c.R), float64(c.G), float64(c.B))
}

// IsEmphasisColor applies the red-text rule to components scaled to 0-255.
// All three bounds are exclusive.
func IsEmphasisColor(r, g, b float64) bool {
	return r > 180 && g < 100 && b < 100
}

// TextRun is one styled fragment of page text.
type TextRun struct {
	Text     string  `json:"text"`
	Color    RGB     `json:"color"`
	FontSize float64 `json:"fontSize"`
	Bold     bool    `json:"bold"`
}

// Page holds the runs of a single page (or slide). FullText is always derived from Runs.
type Page struct {
	Number   int       `json:"pageNumber"`
	Runs     []TextRun `json:"runs,omitempty"`
	FullText string    `json:"fullText"`
}

// NewPage builds a page and derives its full text from runs.
func NewPage(number int, runs []TextRun) Page {
	return Page{Number: number, Runs: runs, FullText: JoinRuns(runs)}
}

// Blank reports whether the page has no extractable text.
func (p Page) Blank() bool {
	return p.FullText == ""
}

// JoinRuns concatenates run texts with single spaces and collapses whitespace.
func JoinRuns(runs []TextRun) string {
	parts := make([]string, 0, len(runs))
	for _, r := range runs {
		parts = append(parts, r.Text)
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// EmphasisSpan is a run classified as highlighted, tagged with its page.
type EmphasisSpan struct {
	Text string `json:"text"`
	Page int    `json:"page"`
}

// ExtractedContent is the canonical page set for one document.
type ExtractedContent struct {
	Pages      []Page         `json:"pages"`
	TotalPages int            `json:"totalPages"`
	Emphasis   []EmphasisSpan `json:"emphasisSpans"`
	Kind       Kind           `json:"kind"`

	// RenderSource is the PDF that page images can be rasterized from. Nil for slides
	// and for notebooks without an embedded PDF.
	RenderSource []byte `json:"-"`
}

// Blank reports whether no page carries text.
func (c *ExtractedContent) Blank() bool {
	for _, p := range c.Pages {
		if !p.Blank() {
			return false
		}
	}
	return true
}

// Page returns the page with the given number.
func (c *ExtractedContent) Page(number int) (Page, bool) {
	for _, p := range c.Pages {
		if p.Number == number {
			return p, true
		}
	}
	return Page{}, false
}

// Chunk is a contiguous run of pages submitted as one generation request.
type Chunk struct {
	Pages    []Page
	Emphasis []EmphasisSpan
}

// Span returns the first and last page numbers of the chunk, or 0, 0 when empty.
func (c Chunk) Span() (first, last int) {
	if len(c.Pages) == 0 {
		return 0, 0
	}
	return c.Pages[0].Number, c.Pages[len(c.Pages)-1].Number
}

// PageNumbers lists the page numbers in chunk order.
func (c Chunk) PageNumbers() []int {
	nums := make([]int, 0, len(c.Pages))
	for _, p := range c.Pages {
		nums = append(nums, p.Number)
	}
	return nums
}
