package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/config"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/domain"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/extractor"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/extractor/openai"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/port"
)

func testProviderConfig() *config.ExtractorProviderConfig {
	return &config.ExtractorProviderConfig{
		Provider:     "openai",
		APIKey:       "test-key",
		DefaultModel: "gpt-4o-mini",
		MaxRetries:   2,
		TimeoutSecs:  5,
	}
}

func testLimiter() *extractor.RateLimiter {
	// Generous budget with instant sleeps so retry tests do not stall.
	instantSleep := func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return extractor.NewRateLimiterWithClock(1000, 0, time.Now, instantSleep)
}

func chatReply(content string) string {
	reply := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	}
	b, _ := json.Marshal(reply)
	return string(b)
}

func TestExtractSuccess(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatReply(`{"passport_number": "A1234567", "surname": "SMITH", "given_names": "JOHN"}`)))
	}))
	defer srv.Close()

	p, err := openai.NewParserWithEndpoint(testProviderConfig(), testLimiter(), srv.URL)
	require.NoError(t, err)

	fm, err := p.Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("img"),
		ContentType: "image/jpeg",
		Filename:    "passport.jpg",
		DocType:     domain.DocTypePassport,
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "A1234567", fm["passport_number"])
	assert.Equal(t, "SMITH", fm["surname"])
	assert.Equal(t, domain.MissingValue, fm["nationality"])
}

func TestExtractRetriesOn429(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(chatReply(`{"passport_number": "A1234567"}`)))
	}))
	defer srv.Close()

	p, err := openai.NewParserWithEndpoint(testProviderConfig(), testLimiter(), srv.URL)
	require.NoError(t, err)

	fm, err := p.Extract(context.Background(), port.ExtractInput{
		FileBytes: []byte("img"),
		DocType:   domain.DocTypePassport,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "A1234567", fm["passport_number"])
}

func TestExtractRateLimitExhaustion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cfg := testProviderConfig()
	cfg.MaxRetries = 1
	p, err := openai.NewParserWithEndpoint(cfg, testLimiter(), srv.URL)
	require.NoError(t, err)

	_, err = p.Extract(context.Background(), port.ExtractInput{
		FileBytes: []byte("img"),
		DocType:   domain.DocTypePassport,
	})
	require.Error(t, err)
	var rateErr *extractor.RateLimitError
	assert.ErrorAs(t, err, &rateErr)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtractServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, err := openai.NewParserWithEndpoint(testProviderConfig(), testLimiter(), srv.URL)
	require.NoError(t, err)

	_, err = p.Extract(context.Background(), port.ExtractInput{
		FileBytes: []byte("img"),
		DocType:   domain.DocTypePassport,
	})
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtractWithoutAPIKey(t *testing.T) {
	cfg := testProviderConfig()
	cfg.APIKey = ""
	p, err := openai.NewParser(cfg, testLimiter())
	require.NoError(t, err)

	_, err = p.Extract(context.Background(), port.ExtractInput{
		FileBytes: []byte("img"),
		DocType:   domain.DocTypePassport,
	})
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}
