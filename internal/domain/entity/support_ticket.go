package entity

import "time"

const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in-progress"
	TicketStatusResolved   = "resolved"
	TicketStatusClosed     = "closed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// SenderAI marks messages written by the support assistant.
const SenderAI = "ai"

type TicketMessage struct {
	SenderID   string    `json:"sender_id" firestore:"senderId" validate:"required"`
	SenderRole string    `json:"sender_role" firestore:"senderRole" validate:"required,oneof=customer vendor csa admin ai"`
	Message    string    `json:"message" firestore:"message" validate:"required"`
	Timestamp  time.Time `json:"timestamp" firestore:"timestamp"`
}

type SupportTicket struct {
	ID          string          `json:"id" firestore:"id" validate:"required"`
	CustomerID  string          `json:"customer_id" firestore:"customerId" validate:"required"`
	VendorID    string          `json:"vendor_id,omitempty" firestore:"vendorId,omitempty"`
	SessionID   string          `json:"session_id,omitempty" firestore:"sessionId,omitempty"`
	Subject     string          `json:"subject" firestore:"subject" validate:"required"`
	Description string          `json:"description" firestore:"description"`
	Status      string          `json:"status" firestore:"status" validate:"required,oneof=open in-progress resolved closed"`
	Priority    string          `json:"priority" firestore:"priority" validate:"required,oneof=low medium high urgent"`
	Messages    []TicketMessage `json:"messages" firestore:"messages" validate:"dive"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

var ticketTransitions = map[string][]string{
	TicketStatusOpen:       {TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed},
	TicketStatusInProgress: {TicketStatusResolved, TicketStatusClosed},
	TicketStatusResolved:   {TicketStatusClosed},
}

func CanTransitionTicket(from, to string) bool {
	for _, next := range ticketTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NormalizePriority maps anything outside the known set to medium.
func NormalizePriority(priority string) string {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return priority
	}
	return PriorityMedium
}
