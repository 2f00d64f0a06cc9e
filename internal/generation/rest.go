package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Lllllllleong/studycardflow/internal/models"
)

// DefaultBaseURL is the public Generative Language API.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// RESTConfig configures a RESTClient.
type RESTConfig struct {
	APIKey            string
	Model             string // default: gemini-2.0-flash
	BaseURL           string // default: DefaultBaseURL
	SystemInstruction string
	HTTPClient        *http.Client
	Logger            *slog.Logger
}

// RESTClient calls generateContent over HTTP with an API key.
type RESTClient struct {
	apiKey     string
	endpoint   string
	system     string
	httpClient *http.Client
	logger     *slog.Logger
}

type restPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"` // base64 on the wire
}

type restContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []restPart `json:"parts"`
}

type generationConfig struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int      `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string   `json:"responseMimeType,omitempty"`
}

type restRequest struct {
	Contents          []restContent     `json:"contents"`
	SystemInstruction *restContent      `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type restResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

type restError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewRESTClient creates a client for the given model.
func NewRESTClient(cfg RESTConfig) (*RESTClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("NewRESTClient: API key cannot be empty")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 5 * time.Minute}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &RESTClient{
		apiKey:     cfg.APIKey,
		endpoint:   strings.TrimRight(cfg.BaseURL, "/") + "/models/" + url.PathEscape(cfg.Model) + ":generateContent",
		system:     cfg.SystemInstruction,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}, nil
}

// Generate implements Generator.
func (c *RESTClient) Generate(ctx context.Context, parts []models.Part) (string, error) {
	temp := Temperature
	req := restRequest{
		Contents: []restContent{{Role: "user", Parts: toRESTParts(parts)}},
		GenerationConfig: &generationConfig{
			Temperature:      &temp,
			MaxOutputTokens:  MaxOutputTokens,
			ResponseMIMEType: ResponseMIMEType,
		},
	}
	if c.system != "" {
		req.SystemInstruction = &restContent{Parts: []restPart{{Text: c.system}}}
	}

	var resp restResponse
	if err := c.post(ctx, req, &resp); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	text := resp.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", ErrEmptyResponse
	}
	c.logger.Debug("Generation response received.", "bytes", len(text), "finishReason", resp.Candidates[0].FinishReason)
	return text, nil
}

// Ping sends a tiny request to check that the key and model are usable.
func (c *RESTClient) Ping(ctx context.Context) error {
	req := restRequest{
		Contents:         []restContent{{Role: "user", Parts: []restPart{{Text: `Reply with "OK" only.`}}}},
		GenerationConfig: &generationConfig{MaxOutputTokens: 10},
	}
	var resp restResponse
	return c.post(ctx, req, &resp)
}

func (c *RESTClient) post(ctx context.Context, body restRequest, out *restResponse) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"?key="+url.QueryEscape(c.apiKey), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to call generation service: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		svcErr := &ServiceError{Status: httpResp.StatusCode, Message: http.StatusText(httpResp.StatusCode)}
		var apiErr restError
		if json.Unmarshal(raw, &apiErr) == nil {
			svcErr.Code = apiErr.Error.Status
			if apiErr.Error.Message != "" {
				svcErr.Message = apiErr.Error.Message
			}
		}
		return svcErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func toRESTParts(parts []models.Part) []restPart {
	out := make([]restPart, 0, len(parts))
	for _, p := range parts {
		switch p.Kind {
		case models.PartImage:
			out = append(out, restPart{InlineData: &inlineData{MIMEType: p.MIMEType, Data: p.Data}})
		default:
			out = append(out, restPart{Text: p.Text})
		}
	}
	return out
}
