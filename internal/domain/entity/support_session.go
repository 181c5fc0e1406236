package entity

import "time"

const (
	SessionStateAIHandling = "ai-handling"
	SessionStateEscalated  = "escalated"
)

// SupportSession is one customer conversation with the support assistant.
// Once escalated it stays escalated.
type SupportSession struct {
	ID         string          `json:"id" firestore:"id" validate:"required"`
	CustomerID string          `json:"customer_id,omitempty" firestore:"customerId,omitempty"`
	State      string          `json:"state" firestore:"state" validate:"required,oneof=ai-handling escalated"`
	TicketID   string          `json:"ticket_id,omitempty" firestore:"ticketId,omitempty"`
	Messages   []TicketMessage `json:"messages" firestore:"messages" validate:"dive"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (s *SupportSession) Escalated() bool {
	return s.State == SessionStateEscalated
}

// RecentMessages returns at most n of the latest messages, oldest first.
func (s *SupportSession) RecentMessages(n int) []TicketMessage {
	if n <= 0 || len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}
