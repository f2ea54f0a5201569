// Package textract implements the pattern-based primary extraction
// backend on top of AWS Textract form analysis, with regex, MRZ, and
// loose-scan fallback chains for the fields form analysis misses.
package textract

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/config"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/domain"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/extractor"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/normalize"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/port"
)

// api is the subset of the Textract client the extractor uses.
type api interface {
	AnalyzeDocument(ctx context.Context, params *textract.AnalyzeDocumentInput, optFns ...func(*textract.Options)) (*textract.AnalyzeDocumentOutput, error)
	DetectDocumentText(ctx context.Context, params *textract.DetectDocumentTextInput, optFns ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error)
}

// Extractor implements port.DocumentExtractor and port.TextDetector
// using AWS Textract. A nil client marks the backend unavailable.
type Extractor struct {
	client api
}

// NewExtractor creates a Textract-backed extractor. Without static keys
// or an ambient AWS credential chain the backend is constructed in an
// unavailable state rather than failing, so the orchestrator can skip
// straight to the vision fallbacks.
func NewExtractor(cfg *config.AWSConfig) (*Extractor, error) {
	if cfg.AccessKey == "" && cfg.SecretKey == "" && os.Getenv("AWS_ACCESS_KEY_ID") == "" {
		log.Printf("textract.Extractor: no AWS credentials configured, backend unavailable")
		return &Extractor{}, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return &Extractor{client: textract.NewFromConfig(awsCfg)}, nil
}

// NewExtractorWithClient creates an extractor around an existing client
// (for testing).
func NewExtractorWithClient(client api) *Extractor {
	return &Extractor{client: client}
}

// Extract runs form analysis over the document, maps recognised form
// keys onto canonical field names, then walks the fallback chains
// (ordered regex alternatives, the machine-readable zone, loosened
// last-resort scans) for anything still missing.
func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (domain.FieldMap, error) {
	if e.client == nil {
		return nil, fmt.Errorf("textract: %w", domain.ErrBackendUnavailable)
	}

	out, err := e.client.AnalyzeDocument(ctx, &textract.AnalyzeDocumentInput{
		Document:     &types.Document{Bytes: input.FileBytes},
		FeatureTypes: []types.FeatureType{types.FeatureTypeForms, types.FeatureTypeTables},
	})
	if err != nil {
		return nil, fmt.Errorf("textract analyze %s: %w: %v", input.Filename, domain.ErrExtractionFailed, err)
	}

	raw := map[string]string{}
	for key, value := range keyValuePairs(out.Blocks) {
		field := mapFormKey(key, input.DocType)
		if value = strings.TrimSpace(value); value != "" {
			raw[field] = value
		}
	}

	text := normalize.CollapseWhitespace(strings.ToUpper(lineText(out.Blocks)))
	applyPatternChains(raw, text, input.DocType)

	if input.DocType == domain.DocTypePassport {
		applyMRZ(raw, lineText(out.Blocks))
	}
	applyLooseScans(raw, text, input.DocType)

	fm := extractor.Finalize(raw, input.DocType)
	log.Printf("textract.Extractor: %s extracted %d/%d fields", input.Filename,
		len(fm)-len(fm.MissingFields()), len(fm))
	return fm, nil
}

// DetectText returns the plain line text of the document, used by the
// service layer to classify files of unknown type.
func (e *Extractor) DetectText(ctx context.Context, input port.ExtractInput) (string, error) {
	if e.client == nil {
		return "", fmt.Errorf("textract: %w", domain.ErrBackendUnavailable)
	}
	out, err := e.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: input.FileBytes},
	})
	if err != nil {
		return "", fmt.Errorf("textract detect %s: %w: %v", input.Filename, domain.ErrExtractionFailed, err)
	}
	return lineText(out.Blocks), nil
}

// keyValuePairs resolves Textract KEY_VALUE_SET blocks into a flat
// key -> value map by following the VALUE and CHILD relationships.
func keyValuePairs(blocks []types.Block) map[string]string {
	byID := make(map[string]types.Block, len(blocks))
	for _, b := range blocks {
		if b.Id != nil {
			byID[*b.Id] = b
		}
	}

	pairs := map[string]string{}
	for _, b := range blocks {
		if b.BlockType != types.BlockTypeKeyValueSet || !hasEntityType(b, types.EntityTypeKey) {
			continue
		}
		key := blockText(b, byID)
		if key == "" {
			continue
		}
		for _, rel := range b.Relationships {
			if rel.Type != types.RelationshipTypeValue {
				continue
			}
			for _, id := range rel.Ids {
				if vb, ok := byID[id]; ok {
					if value := blockText(vb, byID); value != "" {
						pairs[strings.ToLower(key)] = value
					}
				}
			}
		}
	}
	return pairs
}

func hasEntityType(b types.Block, want types.EntityType) bool {
	for _, et := range b.EntityTypes {
		if et == want {
			return true
		}
	}
	return false
}

// blockText joins the text of a block's CHILD word blocks.
func blockText(b types.Block, byID map[string]types.Block) string {
	var parts []string
	for _, rel := range b.Relationships {
		if rel.Type != types.RelationshipTypeChild {
			continue
		}
		for _, id := range rel.Ids {
			if cb, ok := byID[id]; ok && cb.Text != nil {
				parts = append(parts, *cb.Text)
			}
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// lineText joins LINE blocks in reading order.
func lineText(blocks []types.Block) string {
	var lines []string
	for _, b := range blocks {
		if b.BlockType == types.BlockTypeLine && b.Text != nil {
			lines = append(lines, *b.Text)
		}
	}
	return strings.Join(lines, "\n")
}

// formKeyMappings translate the labels Textract reads off each document
// type into canonical field names.
var formKeyMappings = map[domain.DocumentType]map[string]string{
	domain.DocTypePassport: {
		"passport number": "passport_number",
		"passport no":     "passport_number",
		"surname":         "surname",
		"given names":     "given_names",
		"given name(s)":   "given_names",
		"nationality":     "nationality",
		"date of birth":   "date_of_birth",
		"place of birth":  "place_of_birth",
		"date of issue":   "date_of_issue",
		"date of expiry":  "date_of_expiry",
		"sex":             "gender",
	},
	domain.DocTypeEmiratesID: {
		"id number":     "emirates_id",
		"name":          "name_en",
		"nationality":   "nationality",
		"date of birth": "date_of_birth",
		"expiry date":   "expiry_date",
		"sex":           "gender",
	},
	domain.DocTypeVisa: {
		"permit no":    "entry_permit_no",
		"entry permit": "entry_permit_no",
		"u.i.d no":     "unified_no",
		"uid no":       "unified_no",
		"file":         "file",
		"file no":      "file",
		"full name":    "full_name",
		"nationality":  "nationality",
		"passport no":  "passport_number",
		"profession":   "profession",
		"sponsor":      "sponsor_name",
		"issue date":   "issue_date",
		"expiry date":  "expiry_date",
	},
}

// mapFormKey maps a raw form label to its canonical field name, keeping
// the cleaned label for fields the backend discovered beyond the
// canonical set.
func mapFormKey(key string, docType domain.DocumentType) string {
	key = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(key), ":")))
	if mapping, ok := formKeyMappings[docType]; ok {
		if field, ok := mapping[key]; ok {
			return field
		}
	}
	return strings.ReplaceAll(key, " ", "_")
}
