package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/studycardflow/internal/models"
)

func page(n int, text string) models.Page {
	if text == "" {
		return models.NewPage(n, nil)
	}
	return models.NewPage(n, []models.TextRun{{Text: text}})
}

func TestInstructionsCoverRequiredRules(t *testing.T) {
	for _, c := range models.Categories {
		assert.Contains(t, cardInstructions, `"`+string(c)+`"`)
	}
	for _, field := range []string{"question", "answer", "explanation", "category", "questionType", "choices", "correctChoiceIndex", "sourcePage", "figureDescription", "examInfo"} {
		assert.Contains(t, cardInstructions, `"`+field+`":`)
	}
	assert.Contains(t, cardInstructions, "30-50%")
	assert.Contains(t, cardInstructions, "Do not skip any page")
}

func TestBuildText(t *testing.T) {
	c := models.Chunk{
		Pages: []models.Page{page(3, "Mitochondria produce ATP"), page(4, ""), page(5, "Krebs cycle")},
		Emphasis: []models.EmphasisSpan{
			{Text: "ATP", Page: 3},
			{Text: "Krebs cycle", Page: 5},
		},
	}

	parts := BuildText(c)
	require.Len(t, parts, 1)
	assert.Equal(t, models.PartText, parts[0].Kind)

	text := parts[0].Text
	assert.True(t, strings.HasPrefix(text, cardInstructions))
	assert.Contains(t, text, "- [p.3] ATP\n- [p.5] Krebs cycle")
	assert.Contains(t, text, "--- Page 3 ---\nMitochondria produce ATP\n\n--- Page 5 ---\nKrebs cycle")
	assert.NotContains(t, text, "--- Page 4 ---")
	assert.NotContains(t, text, noEmphasis)
}

func TestBuildTextPlaceholder(t *testing.T) {
	parts := BuildText(models.Chunk{Pages: []models.Page{page(1, "Intro")}})
	require.Len(t, parts, 1)
	assert.Contains(t, parts[0].Text, emphasisHeading+"\n"+noEmphasis)
}

func TestBuildMultimodal(t *testing.T) {
	c := models.Chunk{
		Pages:    []models.Page{page(1, "Title"), page(2, ""), page(3, ""), page(4, "Summary")},
		Emphasis: []models.EmphasisSpan{{Text: "Title", Page: 1}},
	}
	images := map[int][]byte{1: []byte("png1"), 2: []byte("png2")}

	parts := BuildMultimodal(c, images, models.Handout4Up)
	require.Len(t, parts, 7)

	assert.Equal(t, models.PartText, parts[0].Kind)
	assert.Contains(t, parts[0].Text, layoutNotes[models.Handout4Up])
	assert.Equal(t, emphasisHeading+"\n- [p.1] Title", parts[1].Text)

	assert.Equal(t, models.ImagePart([]byte("png1"), "image/png"), parts[2])
	assert.Equal(t, "--- Page 1 ---\nTitle", parts[3].Text)
	assert.Equal(t, models.PartImage, parts[4].Kind)
	assert.Equal(t, "--- Page 2 ---\n"+noPageText, parts[5].Text)
	// page 3 has neither image nor text
	assert.Equal(t, "--- Page 4 ---\nSummary", parts[6].Text)
}

func TestBuildMultimodalWithoutEmphasisOrImages(t *testing.T) {
	c := models.Chunk{Pages: []models.Page{page(1, "Only text")}}
	parts := BuildMultimodal(c, nil, models.HandoutMode("unknown"))
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0].Text, layoutNotes[models.HandoutNormal])
	assert.Equal(t, "--- Page 1 ---\nOnly text", parts[1].Text)
}
