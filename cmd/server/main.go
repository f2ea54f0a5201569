package main

import (
	"fmt"
	"log"
	"time"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/config"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/extractor"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/extractor/claude"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/extractor/openai"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/extractor/textract"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/handler"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/port"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/router"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/service"
	s3storage "github.com/adit-suresh/MedicalBot-cV2-sub000/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	registerProviders()

	// Primary pattern-based backend, also the text detector for
	// classification.
	primary, err := textract.NewExtractor(&cfg.AWS)
	if err != nil {
		return fmt.Errorf("failed to initialize textract backend: %w", err)
	}

	limiter := extractor.NewRateLimiter(cfg.RateLimit.RequestsPerMinute,
		time.Duration(cfg.RateLimit.MinIntervalMS)*time.Millisecond)

	var fallbacks []port.DocumentExtractor
	var names []string
	for _, pc := range []*config.ExtractorProviderConfig{
		cfg.Extractor.SecondaryConfig(),
		cfg.Extractor.TertiaryConfig(),
	} {
		if pc == nil {
			continue
		}
		backend, err := extractor.NewExtractor(pc, limiter)
		if err != nil {
			return fmt.Errorf("failed to initialize %s backend: %w", pc.Provider, err)
		}
		fallbacks = append(fallbacks, backend)
		names = append(names, pc.Provider)
	}
	orchestrator := extractor.NewOrchestrator(primary, fallbacks, names)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.AWS, &cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize services and handlers
	submissionSvc := service.NewSubmissionService(orchestrator, primary)
	submissionH := handler.NewSubmissionHandler(submissionSvc, s3Client, &cfg.S3)
	healthH := handler.NewHealthHandler()

	r := router.Setup(cfg, submissionH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func registerProviders() {
	extractor.RegisterProvider("openai", func(cfg *config.ExtractorProviderConfig, limiter *extractor.RateLimiter) (port.DocumentExtractor, error) {
		return openai.NewParser(cfg, limiter)
	})
	extractor.RegisterProvider("claude", func(cfg *config.ExtractorProviderConfig, limiter *extractor.RateLimiter) (port.DocumentExtractor, error) {
		return claude.NewParser(cfg, limiter)
	})
}
