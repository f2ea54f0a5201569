// Package claude implements the second vision fallback backend against
// the Anthropic messages API.
package claude

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/config"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/domain"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/extractor"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/port"
)

const (
	defaultEndpoint = "https://api.anthropic.com/v1/messages"
	apiVersion      = "2023-06-01"
)

// Parser extracts document fields by sending the file image to a Claude
// vision model.
type Parser struct {
	apiKey     string
	model      string
	maxRetries int
	endpoint   string
	client     *http.Client
	limiter    *extractor.RateLimiter
}

// NewParser creates a Claude vision parser from provider config.
func NewParser(cfg *config.ExtractorProviderConfig, limiter *extractor.RateLimiter) (*Parser, error) {
	return NewParserWithEndpoint(cfg, limiter, defaultEndpoint)
}

// NewParserWithEndpoint creates a parser against a custom endpoint (for
// testing).
func NewParserWithEndpoint(cfg *config.ExtractorProviderConfig, limiter *extractor.RateLimiter, endpoint string) (*Parser, error) {
	return &Parser{
		apiKey:     cfg.APIKey,
		model:      cfg.DefaultModel,
		maxRetries: cfg.MaxRetries,
		endpoint:   endpoint,
		client:     &http.Client{Timeout: time.Duration(cfg.TimeoutSecs) * time.Second},
		limiter:    limiter,
	}, nil
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Extract sends the document image with the type-specific field prompt
// and post-processes the model's JSON reply into a canonical field map.
func (p *Parser) Extract(ctx context.Context, input port.ExtractInput) (domain.FieldMap, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("claude: no API key: %w", domain.ErrBackendUnavailable)
	}

	content, err := p.complete(ctx, input)
	if err != nil {
		return nil, err
	}
	raw := extractor.ParseVisionReply("claude", content)
	return extractor.Finalize(raw, input.DocType), nil
}

func (p *Parser) complete(ctx context.Context, input port.ExtractInput) (string, error) {
	body, err := p.buildRequestBody(input)
	if err != nil {
		return "", err
	}

	backoff := time.Second
	var lastRateErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			wait := backoff + time.Duration(rand.Int63n(int64(time.Second)))
			backoff *= 2
			log.Printf("claude.Parser: rate limited, retry %d/%d in %s", attempt, p.maxRetries, wait)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		if err := p.limiter.Acquire(ctx); err != nil {
			return "", err
		}

		content, err := p.doRequest(ctx, body)
		if err == nil {
			return content, nil
		}
		var rateErr *extractor.RateLimitError
		if !errors.As(err, &rateErr) {
			return "", err
		}
		lastRateErr = err
		if rateErr.RetryAfter > backoff {
			backoff = rateErr.RetryAfter
		}
	}
	return "", lastRateErr
}

func (p *Parser) buildRequestBody(input port.ExtractInput) ([]byte, error) {
	mediaType := input.ContentType
	if mediaType == "" {
		mediaType = "image/jpeg"
	}

	req := messagesRequest{
		Model:     p.model,
		MaxTokens: 1024,
		System:    extractor.SystemPrompt,
		Messages: []message{{
			Role: "user",
			Content: []contentBlock{
				{Type: "image", Source: &imageSource{
					Type:      "base64",
					MediaType: mediaType,
					Data:      base64.StdEncoding.EncodeToString(input.FileBytes),
				}},
				{Type: "text", Text: extractor.BuildFieldPrompt(input.DocType)},
			},
		}},
	}
	return json.Marshal(req)
}

func (p *Parser) doRequest(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building claude request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling claude: %w: %v", domain.ErrExtractionFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading claude response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := extractor.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
		return "", extractor.NewRateLimitError("claude", fmt.Errorf("claude returned 429"), retryAfter)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("claude returned %d: %s: %w", resp.StatusCode,
			truncate(string(respBody), 200), domain.ErrExtractionFailed)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decoding claude response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("claude error: %s: %w", parsed.Error.Message, domain.ErrExtractionFailed)
	}
	for _, block := range parsed.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("claude returned no text content: %w", domain.ErrExtractionFailed)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
