package extraction

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/supplesafe-backend/internal/clients/openai"
	svcerr "github.com/yungbote/supplesafe-backend/internal/pkg/errors"
	"github.com/yungbote/supplesafe-backend/internal/pkg/logger"
)

const Prompt = "Analyze this supplement label image. " +
	"1. Extract the active ingredients. " +
	"2. Return ONLY a JSON array of strings for the ingredients (e.g., [\"Vitamin C\", \"Zinc\"]). " +
	"3. Do not include markdown formatting."

// Image is a staged label photo.
type Image struct {
	Bytes    []byte
	MimeType string
}

type Adapter struct {
	log *logger.Logger
	ai  openai.Client
}

// NewAdapter returns an adapter; a nil client yields an unconfigured adapter.
func NewAdapter(log *logger.Logger, ai openai.Client) *Adapter {
	return &Adapter{log: log.With("service", "ExtractionAdapter"), ai: ai}
}

func (a *Adapter) Configured() bool {
	return a != nil && a.ai != nil
}

// ExtractIngredients makes exactly one model call and validates its output.
func (a *Adapter) ExtractIngredients(ctx context.Context, img Image) ([]string, error) {
	if !a.Configured() {
		return nil, fmt.Errorf("%w: extraction service not configured", svcerr.ErrExtraction)
	}
	if len(img.Bytes) == 0 {
		return nil, fmt.Errorf("%w: empty image", svcerr.ErrExtraction)
	}

	ctx, span := otel.Tracer("supplesafe/extraction").Start(ctx, "extraction.ExtractIngredients")
	defer span.End()
	span.SetAttributes(
		attribute.String("image.mime_type", img.MimeType),
		attribute.Int("image.bytes", len(img.Bytes)),
	)

	raw, err := a.ai.GenerateTextWithImages(ctx, "", Prompt, []openai.ImageInput{
		{ImageURL: DataURL(img), Detail: "high"},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "service call failed")
		a.log.Warn("extraction call failed", "error", err)
		return nil, fmt.Errorf("%w: %v", svcerr.ErrExtraction, err)
	}

	ingredients, err := ParseIngredients(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed output")
		a.log.Warn("extraction output rejected", "error", err, "response_chars", len(raw))
		return nil, err
	}
	span.SetAttributes(attribute.Int("ingredients.count", len(ingredients)))
	a.log.Debug("ingredients extracted", "count", len(ingredients))
	return ingredients, nil
}

// DataURL inlines the image as a base64 data URL.
func DataURL(img Image) string {
	mime := strings.TrimSpace(img.MimeType)
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Bytes)
}

// StripCodeFences removes markdown fence markers wherever they appear.
func StripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// ParseIngredients accepts only a JSON array of strings. An empty array is valid.
func ParseIngredients(raw string) ([]string, error) {
	cleaned := StripCodeFences(raw)
	var decoded any
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return nil, fmt.Errorf("%w: response is not valid json: %v", svcerr.ErrExtraction, err)
	}
	items, ok := decoded.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: response is not a json array", svcerr.ErrExtraction)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is not a string", svcerr.ErrExtraction, i)
		}
		out = append(out, s)
	}
	return out, nil
}
