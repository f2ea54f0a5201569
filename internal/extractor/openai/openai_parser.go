// Package openai implements the first vision fallback backend against
// the OpenAI chat completions API.
package openai

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

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

// Parser extracts document fields by sending the file image to an
// OpenAI vision model.
type Parser struct {
	apiKey     string
	model      string
	maxRetries int
	endpoint   string
	client     *http.Client
	limiter    *extractor.RateLimiter
}

// NewParser creates an OpenAI vision parser from provider config.
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

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentBlock struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Extract sends the document image with the type-specific field prompt
// and post-processes the model's JSON reply into a canonical field map.
func (p *Parser) Extract(ctx context.Context, input port.ExtractInput) (domain.FieldMap, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openai: no API key: %w", domain.ErrBackendUnavailable)
	}

	content, err := p.complete(ctx, input)
	if err != nil {
		return nil, err
	}
	raw := extractor.ParseVisionReply("openai", content)
	return extractor.Finalize(raw, input.DocType), nil
}

// complete runs the chat completion with rate limiting and exponential
// backoff on 429s.
func (p *Parser) complete(ctx context.Context, input port.ExtractInput) (string, error) {
	body, err := p.buildRequestBody(input)
	if err != nil {
		return "", err
	}

	backoff := time.Second
	var lastRateErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff with jitter before the retry.
			wait := backoff + time.Duration(rand.Int63n(int64(time.Second)))
			backoff *= 2
			log.Printf("openai.Parser: rate limited, retry %d/%d in %s", attempt, p.maxRetries, wait)
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
	dataURI := fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(input.FileBytes))

	req := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: extractor.SystemPrompt},
			{Role: "user", Content: []contentBlock{
				{Type: "text", Text: extractor.BuildFieldPrompt(input.DocType)},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURI}},
			}},
		},
		MaxTokens: 1024,
	}
	return json.Marshal(req)
}

func (p *Parser) doRequest(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building openai request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling openai: %w: %v", domain.ErrExtractionFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading openai response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := extractor.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
		return "", extractor.NewRateLimitError("openai", fmt.Errorf("openai returned 429"), retryAfter)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai returned %d: %s: %w", resp.StatusCode,
			truncate(string(respBody), 200), domain.ErrExtractionFailed)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decoding openai response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("openai error: %s: %w", parsed.Error.Message, domain.ErrExtractionFailed)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices: %w", domain.ErrExtractionFailed)
	}
	return parsed.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
