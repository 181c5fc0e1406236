package service

import (
	"strings"

	"vendora/internal/domain/entity"
)

type keywordRule struct {
	keywords   []string
	requireAll bool
	reply      AssistantReply
}

var fallbackRules = []keywordRule{
	{
		keywords: []string{"refund", "return"},
		reply: AssistantReply{
			Response:         "I understand you'd like a refund or return. I'm connecting you with a support agent who can review your request.",
			EscalationReason: "Refund or return request requires refund policy review",
			Priority:         entity.PriorityHigh,
		},
	},
	{
		keywords: []string{"defective", "broken", "damaged"},
		reply: AssistantReply{
			Response:         "I'm sorry your item arrived in poor condition. A support agent will look into this for you.",
			EscalationReason: "Damaged or defective product report requires investigation",
			Priority:         entity.PriorityHigh,
		},
	},
	{
		keywords: []string{"payment", "billing", "charge"},
		reply: AssistantReply{
			Response:         "Payment questions need a quick account check. I'm handing you over to a support agent.",
			EscalationReason: "Payment or billing issue requires account verification",
			Priority:         entity.PriorityHigh,
		},
	},
	{
		keywords:   []string{"shipping", "delay"},
		requireAll: true,
		reply: AssistantReply{
			Response:         "I'm sorry your shipment is delayed. A support agent will follow up with the carrier.",
			EscalationReason: "Shipping delay requires carrier follow-up",
			Priority:         entity.PriorityMedium,
		},
	},
	{
		keywords: []string{"account", "login", "password"},
		reply: AssistantReply{
			CanResolve: true,
			Response:   "You can manage your account from the profile page. If you can't sign in, use the password reset link on the login screen.",
			SuggestedActions: []string{
				"Open your profile settings",
				"Use \"Forgot password\" on the login page",
				"Sign out and sign back in",
			},
		},
	},
	{
		keywords: []string{"order", "track"},
		reply: AssistantReply{
			CanResolve: true,
			Response:   "You can see the status of every order under My Orders. Each vendor ships their part of a checkout separately.",
			SuggestedActions: []string{
				"Open My Orders",
				"Check the status of each vendor order",
			},
		},
	},
}

var defaultFallback = AssistantReply{
	Response:         "Let me connect you with a support agent who can help with this.",
	EscalationReason: "Query requires human assistance",
	Priority:         entity.PriorityMedium,
}

// Classify answers a query from keywords alone. It is used whenever the
// model is unavailable or returns something unusable. Rules are checked in
// order and the first match wins.
func Classify(query string) AssistantReply {
	text := strings.ToLower(query)
	for _, rule := range fallbackRules {
		if rule.matches(text) {
			return rule.reply.clone()
		}
	}
	return defaultFallback.clone()
}

func (r keywordRule) matches(text string) bool {
	for _, kw := range r.keywords {
		found := strings.Contains(text, kw)
		if r.requireAll && !found {
			return false
		}
		if !r.requireAll && found {
			return true
		}
	}
	return r.requireAll
}

func (r AssistantReply) clone() AssistantReply {
	if r.SuggestedActions != nil {
		r.SuggestedActions = append([]string(nil), r.SuggestedActions...)
	}
	return r
}
