package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/DhivakarBS/Travel-Planning-Assistant-AI/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
)

const (
	callTimeout         = 30 * time.Second
	classifyMaxTokens   = 200
	generateMaxTokens   = 800
	defaultConfidence   = 0.5
	transientRetryDelay = 500 * time.Millisecond
)

// ProviderError marks a failure of the external model call. The API layer
// maps it to a 502 so callers can tell "try again" from their own bad input.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s failed: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Service talks to an OpenAI-compatible model endpoint.
type Service struct {
	llm    llms.Model
	logger *zap.Logger
}

func New(baseURL, token, model string, logger *zap.Logger) (*Service, error) {
	llm, err := openai.New(
		openai.WithToken(token),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	return &Service{llm: llm, logger: logger}, nil
}

// NewWithModel wires an existing model client, used by tests.
func NewWithModel(llm llms.Model, logger *zap.Logger) *Service {
	return &Service{llm: llm, logger: logger}
}

// ClassifyIntent asks the model which travel sub-topic the message concerns.
// A malformed or unparseable provider response degrades to general_travel
// rather than failing the whole turn; only a failed call is an error.
func (s *Service) ClassifyIntent(ctx context.Context, message string) (models.TravelIntent, error) {
	fallback := models.TravelIntent{
		Intent:     models.IntentGeneralTravel,
		Confidence: defaultConfidence,
	}

	msgs := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, classifierPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, message),
	}

	completion, err := s.generate(ctx, "classify", msgs,
		llms.WithMaxTokens(classifyMaxTokens),
		llms.WithJSONMode(),
	)
	if err != nil {
		return fallback, err
	}

	var intent models.TravelIntent
	if err := json.Unmarshal([]byte(completion), &intent); err != nil {
		s.logger.Warn("unparseable classifier response",
			zap.Error(err),
			zap.String("raw", completion))
		return fallback, nil
	}
	if intent.Intent == "" {
		intent.Intent = models.IntentGeneralTravel
	}
	if intent.Confidence == 0 {
		intent.Confidence = defaultConfidence
	}
	return intent, nil
}

// GenerateReply produces the assistant's answer for one turn, given the
// classified intent and the (already windowed) conversation history.
func (s *Service) GenerateReply(ctx context.Context, intent models.TravelIntent, history []models.Message, message string) (string, error) {
	msgs := make([]llms.MessageContent, 0, len(history)+2)
	msgs = append(msgs, llms.TextParts(schema.ChatMessageTypeSystem, systemPromptFor(intent.Intent)))
	for _, m := range history {
		role := schema.ChatMessageTypeHuman
		if m.Role == models.RoleAssistant {
			role = schema.ChatMessageTypeAI
		}
		msgs = append(msgs, llms.TextParts(role, m.Content))
	}
	msgs = append(msgs, llms.TextParts(schema.ChatMessageTypeHuman, message))

	completion, err := s.generate(ctx, "generate", msgs, llms.WithMaxTokens(generateMaxTokens))
	if err != nil {
		return "", err
	}

	reply := strings.TrimSpace(completion)
	if reply == "" {
		return "", &ProviderError{Op: "generate", Err: fmt.Errorf("empty completion")}
	}
	return reply, nil
}

// generate runs one model call with a bounded timeout and a single retry on
// transient failure. Context cancellation is never retried.
func (s *Service) generate(ctx context.Context, op string, msgs []llms.MessageContent, opts ...llms.CallOption) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			s.logger.Warn("retrying provider call",
				zap.String("op", op),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return "", &ProviderError{Op: op, Err: ctx.Err()}
			case <-time.After(transientRetryDelay):
			}
		}

		resp, err := s.llm.GenerateContent(ctx, msgs, opts...)
		if err != nil {
			if ctx.Err() != nil {
				return "", &ProviderError{Op: op, Err: err}
			}
			lastErr = err
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("no choices in response")
			continue
		}
		return resp.Choices[0].Content, nil
	}
	return "", &ProviderError{Op: op, Err: lastErr}
}
