package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"vendora/internal/domain/entity"
)

var ErrMalformedReply = errors.New("assistant reply is not valid JSON")

type AssistantTurn struct {
	Role    string
	Message string
}

// AssistantQuery carries the customer's message plus the conversation so far.
type AssistantQuery struct {
	Message string
	UserID  string
	Email   string
	Role    string
	History []AssistantTurn
}

// AssistantReply is the decision returned for one customer message.
type AssistantReply struct {
	CanResolve       bool     `json:"canResolve"`
	Response         string   `json:"response"`
	SuggestedActions []string `json:"suggestedActions,omitempty"`
	EscalationReason string   `json:"escalationReason,omitempty"`
	Priority         string   `json:"priority,omitempty"`
}

// SupportAssistant answers a customer query or decides it needs a human.
type SupportAssistant interface {
	Answer(ctx context.Context, query AssistantQuery) (*AssistantReply, error)
}

// ParseAssistantReply decodes the model's JSON decision. Markdown code fences
// and text around the outermost object are ignored.
func ParseAssistantReply(raw string) (*AssistantReply, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, ErrMalformedReply
	}

	var reply AssistantReply
	if err := json.Unmarshal([]byte(text[start:end+1]), &reply); err != nil {
		return nil, errors.Join(ErrMalformedReply, err)
	}
	reply.Response = strings.TrimSpace(reply.Response)
	if reply.Response == "" {
		return nil, ErrMalformedReply
	}
	if reply.CanResolve {
		reply.EscalationReason = ""
		reply.Priority = ""
	} else {
		reply.Priority = entity.NormalizePriority(reply.Priority)
	}
	return &reply, nil
}
