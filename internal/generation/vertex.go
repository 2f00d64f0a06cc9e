package generation

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/grpc/status"

	"github.com/Lllllllleong/studycardflow/internal/models"
)

// VertexGenerator sends requests through a configured Vertex AI model.
type VertexGenerator struct {
	Model *genai.GenerativeModel
}

// Generate implements Generator.
func (g *VertexGenerator) Generate(ctx context.Context, parts []models.Part) (string, error) {
	resp, err := g.Model.GenerateContent(ctx, toGenaiParts(parts)...)
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return "", &ServiceError{Code: "BLOCKED", Message: blocked.Error()}
		}
		if st, ok := status.FromError(err); ok {
			return "", &ServiceError{Code: st.Code().String(), Message: st.Message()}
		}
		return "", err
	}
	return responseText(resp)
}

func toGenaiParts(parts []models.Part) []genai.Part {
	out := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		switch p.Kind {
		case models.PartImage:
			out = append(out, genai.Blob{MIMEType: p.MIMEType, Data: p.Data})
		default:
			out = append(out, genai.Text(p.Text))
		}
	}
	return out
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}
