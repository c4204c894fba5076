package extract

import (
	"context"
	"errors"

	"google.golang.org/genai"
)

// GeminiClient generates content through the Gemini API. PDFs and images
// are sent as inline parts, so scanned documents need no local OCR.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("missing GOOGLE_API_KEY")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{client: c, model: model}, nil
}

func (g *GeminiClient) Name() string  { return "gemini" }
func (g *GeminiClient) Model() string { return g.model }

func (g *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	parts := make([]*genai.Part, 0, len(req.Attachments)+1)
	parts = append(parts, &genai.Part{Text: req.Prompt})
	for _, att := range req.Attachments {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: att.MediaType, Data: att.Data}})
	}

	cfg := &genai.GenerateContentConfig{}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.JSON != JSONNone {
		cfg.ResponseMIMEType = "application/json"
	}

	res, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		{Role: genai.RoleUser, Parts: parts},
	}, cfg)
	if err != nil {
		return "", unavailable(g.Name(), err)
	}
	text := res.Text()
	if text == "" {
		return "", &GeneratorUnavailableError{Provider: g.Name(), Message: "empty response"}
	}
	return text, nil
}
