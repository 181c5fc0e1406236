package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"vendora/internal/domain/entity"
	"vendora/internal/domain/service"
)

const systemInstruction = `You are the customer support assistant of an online multi-vendor marketplace.
Decide whether you can fully resolve the customer's message yourself.
You can resolve: questions about using the site, account and password help,
finding orders and tracking information, general product questions.
You must NOT resolve and must escalate to a human: refunds and returns,
damaged or defective items, payment or billing problems, shipping delays,
anything requiring access to private account data, or anything you are unsure about.

Reply ONLY with a JSON object of this shape:
{"canResolve": boolean, "response": string, "suggestedActions": [string],
 "escalationReason": string, "priority": "low"|"medium"|"high"|"urgent"}
"response" is the message shown to the customer. Omit escalationReason and
priority when canResolve is true.`

const historyTurns = 10

// Generator produces the raw model text for a conversation.
type Generator interface {
	Generate(ctx context.Context, contents []*genai.Content) (string, error)
}

type modelGenerator struct {
	client *genai.Client
	model  string
}

func (g *modelGenerator) Generate(ctx context.Context, contents []*genai.Content) (string, error) {
	temperature := float32(0.2)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		ResponseMIMEType:  "application/json",
		Temperature:       &temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// Assistant answers support queries with Gemini.
type Assistant struct {
	generator Generator
	timeout   time.Duration
	logger    *zap.Logger
}

func NewAssistant(ctx context.Context, apiKey, model string, timeout time.Duration, logger *zap.Logger) (*Assistant, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return NewAssistantWithGenerator(&modelGenerator{client: client, model: model}, timeout, logger), nil
}

func NewAssistantWithGenerator(generator Generator, timeout time.Duration, logger *zap.Logger) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{
		generator: generator,
		timeout:   timeout,
		logger:    logger,
	}
}

func (a *Assistant) Answer(ctx context.Context, query service.AssistantQuery) (*service.AssistantReply, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	started := time.Now()
	text, err := a.generator.Generate(ctx, BuildContents(query))
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	reply, err := service.ParseAssistantReply(text)
	if err != nil {
		a.logger.Warn("gemini returned an unusable reply", zap.Error(err), zap.Int("length", len(text)))
		return nil, err
	}

	a.logger.Debug("gemini reply",
		zap.Bool("canResolve", reply.CanResolve),
		zap.Duration("latency", time.Since(started)))
	return reply, nil
}

// BuildContents turns the recent history plus the new message into model turns.
func BuildContents(query service.AssistantQuery) []*genai.Content {
	history := query.History
	if len(history) > historyTurns {
		history = history[len(history)-historyTurns:]
	}

	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		role := "user"
		if turn.Role == entity.SenderAI {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: turn.Message}},
		})
	}

	var b strings.Builder
	if query.Role != "" {
		fmt.Fprintf(&b, "Customer role: %s\n", query.Role)
	}
	if query.Email != "" {
		fmt.Fprintf(&b, "Customer email: %s\n", query.Email)
	}
	b.WriteString("Message: ")
	b.WriteString(query.Message)

	contents = append(contents, &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: b.String()}},
	})
	return contents
}
