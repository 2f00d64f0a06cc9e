package generation

import (
	"testing"

	"cloud.google.com/go/vertexai/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/studycardflow/internal/models"
)

func TestToGenaiParts(t *testing.T) {
	parts := toGenaiParts([]models.Part{
		models.TextPart("hello"),
		models.ImagePart([]byte("img"), "image/png"),
	})
	require.Len(t, parts, 2)
	assert.Equal(t, genai.Text("hello"), parts[0])
	assert.Equal(t, genai.Blob{MIMEType: "image/png", Data: []byte("img")}, parts[1])
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(`[{"question":`), genai.Text(`"Q","answer":"A"}]`)}},
		}},
	}
	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, `[{"question":"Q","answer":"A"}]`, text)

	_, err = responseText(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = responseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{}}}})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
