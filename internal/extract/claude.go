package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const anthropicURL = "https://api.anthropic.com/v1/messages"

// ClaudeClient calls the Anthropic Messages API.
type ClaudeClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewClaudeClient(apiKey, model string) *ClaudeClient {
	return &ClaudeClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: anthropicURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// WithBaseURL points the client at a different endpoint (tests, proxies).
func (c *ClaudeClient) WithBaseURL(u string) *ClaudeClient {
	c.baseURL = u
	return c
}

func (c *ClaudeClient) Name() string  { return "anthropic" }
func (c *ClaudeClient) Model() string { return c.model }

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicBlock struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends the prompt and attachments as a single user turn.
func (c *ClaudeClient) Generate(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", &GeneratorUnavailableError{Provider: c.Name(), Message: "ANTHROPIC_API_KEY is not set"}
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	blocks := make([]anthropicBlock, 0, len(req.Attachments)+1)
	for _, att := range req.Attachments {
		kind := "image"
		if att.MediaType == "application/pdf" {
			kind = "document"
		}
		blocks = append(blocks, anthropicBlock{
			Type: kind,
			Source: &anthropicSource{
				Type:      "base64",
				MediaType: att.MediaType,
				Data:      base64.StdEncoding.EncodeToString(att.Data),
			},
		})
	}
	blocks = append(blocks, anthropicBlock{Type: "text", Text: req.Prompt})

	body, err := json.Marshal(anthropicRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: blocks}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", unavailable(c.Name(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", unavailable(c.Name(), fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
			RetryAfter: ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	}

	var apiResp anthropicResponse
	decodeErr := json.Unmarshal(respBody, &apiResp)
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(respBody))
		if decodeErr == nil && apiResp.Error != nil {
			msg = apiResp.Error.Message
		}
		return "", &GeneratorUnavailableError{
			Provider: c.Name(),
			Message:  fmt.Sprintf("status %d: %s", resp.StatusCode, Truncate(msg, 500)),
		}
	}
	if decodeErr != nil {
		return "", unavailable(c.Name(), fmt.Errorf("decode response: %w", decodeErr))
	}
	if apiResp.Error != nil {
		return "", &GeneratorUnavailableError{
			Provider: c.Name(),
			Message:  apiResp.Error.Type + ": " + apiResp.Error.Message,
		}
	}

	var sb strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", &GeneratorUnavailableError{Provider: c.Name(), Message: "empty response"}
	}
	return sb.String(), nil
}

// Close releases resources.
func (c *ClaudeClient) Close() {
	c.httpClient.CloseIdleConnections()
}
