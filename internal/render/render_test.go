package render

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoPagePDF builds a minimal 200x100pt document with two text pages.
func twoPagePDF(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}
	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj("<< /Type /Pages /Kids [4 0 R 6 0 R] /Count 2 >>")
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	for i := 0; i < 2; i++ {
		content := fmt.Sprintf("BT /F1 24 Tf 20 40 Td (Slide %d) Tj ET", i+1)
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 100] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func TestFitzRendererRendersRequestedPages(t *testing.T) {
	r := NewFitzRenderer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	images, err := r.Render(context.Background(), twoPagePDF(t), []int{0, 2, 3, 2}, 1.5)
	require.NoError(t, err)
	require.Len(t, images, 1)

	img, err := png.Decode(bytes.NewReader(images[2]))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}

func TestFitzRendererRejectsGarbage(t *testing.T) {
	r := NewFitzRenderer(nil)
	_, err := r.Render(context.Background(), []byte(strings.Repeat("x", 64)), []int{1}, 1)
	assert.Error(t, err)
}

type countingRenderer struct {
	calls [][]int
}

func (c *countingRenderer) Render(_ context.Context, _ []byte, pages []int, _ float64) (map[int][]byte, error) {
	c.calls = append(c.calls, pages)
	out := map[int][]byte{}
	for _, n := range pages {
		if n <= 3 {
			out[n] = []byte(fmt.Sprintf("img%d", n))
		}
	}
	return out, nil
}

func TestCachedRenderer(t *testing.T) {
	inner := &countingRenderer{}
	cache := NewCache()
	r := Cached(inner, cache)
	doc := []byte("doc-a")

	got, err := r.Render(context.Background(), doc, []int{1, 2}, 1.5)
	require.NoError(t, err)
	assert.Equal(t, map[int][]byte{1: []byte("img1"), 2: []byte("img2")}, got)

	got, err = r.Render(context.Background(), doc, []int{2, 3, 9}, 1.5)
	require.NoError(t, err)
	assert.Equal(t, map[int][]byte{2: []byte("img2"), 3: []byte("img3")}, got)
	assert.Equal(t, [][]int{{1, 2}, {3, 9}}, inner.calls)
	assert.Equal(t, 3, cache.Len())

	// a different scale or document is a miss
	_, err = r.Render(context.Background(), doc, []int{1}, 2)
	require.NoError(t, err)
	_, err = r.Render(context.Background(), []byte("doc-b"), []int{1}, 1.5)
	require.NoError(t, err)
	assert.Len(t, inner.calls, 4)
}
