package generativeAI

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/raiigauravv/WanderWhiz/internal/types"
)

const intentTemperature = 0.4

// ContentGenerator is the part of AIClient the intent service needs.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error)
}

type IntentService struct {
	generator ContentGenerator
	logger    *slog.Logger
}

func NewIntentService(generator ContentGenerator, logger *slog.Logger) *IntentService {
	return &IntentService{
		generator: generator,
		logger:    logger,
	}
}

func intentPrompt(userPrompt string) string {
	return fmt.Sprintf(`You are a travel planning assistant. Extract the city name and key interests
(like bookstores, parks, cozy cafes, hidden spots) from this request: %q.

Respond in this exact JSON format with no extra text:
{
    "city": "city_name",
    "interests": ["keyword1", "keyword2", "keyword3"]
}

Include 2-4 keywords that work well as place search queries.`, userPrompt)
}

// ExtractIntent asks the model for the city and interests in a free-text
// request.
func (s *IntentService) ExtractIntent(ctx context.Context, prompt string) (*types.TravelIntent, error) {
	ctx, span := otel.Tracer("IntentService").Start(ctx, "ExtractIntent", trace.WithAttributes(
		attribute.Int("prompt.length", len(prompt)),
	))
	defer span.End()

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](intentTemperature),
		ResponseMIMEType: "application/json",
	}
	response, err := s.generator.GenerateContent(ctx, intentPrompt(prompt), config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return nil, err
	}

	var intent types.TravelIntent
	cleaned := cleanJSONResponse(response)
	if err := json.Unmarshal([]byte(cleaned), &intent); err != nil {
		s.logger.WarnContext(ctx, "Model returned unparseable intent",
			slog.String("response", response),
			slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "unparseable response")
		return nil, fmt.Errorf("parse intent: %w", err)
	}

	span.SetAttributes(
		attribute.String("city", intent.City),
		attribute.StringSlice("interests", intent.Interests),
	)
	span.SetStatus(codes.Ok, "Intent extracted")
	s.logger.DebugContext(ctx, "Extracted travel intent",
		slog.String("city", intent.City),
		slog.Any("interests", intent.Interests))
	return &intent, nil
}

// cleanJSONResponse strips markdown fences and any prose around the first
// JSON object in a model reply.
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	firstBrace := strings.Index(response, "{")
	if firstBrace == -1 {
		return response
	}
	lastBrace := strings.LastIndex(response, "}")
	if lastBrace == -1 || lastBrace <= firstBrace {
		return response
	}
	return strings.TrimSpace(response[firstBrace : lastBrace+1])
}
