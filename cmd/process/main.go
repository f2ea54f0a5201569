// Command process runs the submission pipeline over a local folder of
// documents without the HTTP server: useful for batch reprocessing and
// pipeline debugging.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/config"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/domain"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/extractor"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/extractor/claude"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/extractor/openai"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/extractor/textract"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/port"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		docsDir      = flag.String("docs", "", "folder of identity documents (pdf/jpg/png)")
		workbookPath = flag.String("workbook", "", "optional data workbook (xlsx)")
		templatePath = flag.String("template", "", "optional destination template (xlsx)")
		outPath      = flag.String("out", "output.xlsx", "path for the populated template")
		timeout      = flag.Duration("timeout", 30*time.Minute, "overall processing timeout")
	)
	flag.Parse()

	if *docsDir == "" && *workbookPath == "" {
		return fmt.Errorf("at least one of -docs or -workbook is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	extractor.RegisterProvider("openai", func(pc *config.ExtractorProviderConfig, limiter *extractor.RateLimiter) (port.DocumentExtractor, error) {
		return openai.NewParser(pc, limiter)
	})
	extractor.RegisterProvider("claude", func(pc *config.ExtractorProviderConfig, limiter *extractor.RateLimiter) (port.DocumentExtractor, error) {
		return claude.NewParser(pc, limiter)
	})

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

	svc := service.NewSubmissionService(extractor.NewOrchestrator(primary, fallbacks, names), primary)

	input, err := buildInput(*docsDir, *workbookPath, *templatePath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := svc.Process(ctx, *input)
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	report, _ := json.MarshalIndent(struct {
		Records   []domain.ReconciledRecord `json:"records"`
		Unmatched []string                  `json:"unmatched"`
		Errors    []service.DocumentError   `json:"errors"`
	}{result.Records, result.Unmatched, result.Errors}, "", "  ")
	fmt.Println(string(report))

	if len(result.OutputWorkbook) > 0 {
		if err := os.WriteFile(*outPath, result.OutputWorkbook, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", *outPath, err)
		}
		log.Printf("wrote populated template to %s", *outPath)
	}
	return nil
}

// buildInput assembles a submission from local files.
func buildInput(docsDir, workbookPath, templatePath string) (*service.SubmissionInput, error) {
	input := &service.SubmissionInput{}

	if docsDir != "" {
		entries, err := os.ReadDir(docsDir)
		if err != nil {
			return nil, fmt.Errorf("reading docs folder: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(entry.Name())), ".")
			ft, ok := domain.AllowedExtensions[ext]
			if !ok {
				log.Printf("skipping %s: unsupported extension", entry.Name())
				continue
			}
			path := filepath.Join(docsDir, entry.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", path, err)
			}
			input.Documents = append(input.Documents, service.SubmissionDocument{
				Ref:          entry.Name(),
				Filename:     entry.Name(),
				ContentType:  domain.AllowedFileTypes[ft],
				Data:         data,
				DeclaredType: domain.DocTypeUnknown,
			})
		}
	}

	if workbookPath != "" {
		data, err := os.ReadFile(workbookPath)
		if err != nil {
			return nil, fmt.Errorf("reading workbook: %w", err)
		}
		input.WorkbookData = data
	}
	if templatePath != "" {
		data, err := os.ReadFile(templatePath)
		if err != nil {
			return nil, fmt.Errorf("reading template: %w", err)
		}
		input.TemplateData = data
	}
	return input, nil
}
