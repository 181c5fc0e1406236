package repository

import (
	"context"

	"vendora/internal/domain/entity"
)

type TicketFilter struct {
	CustomerID string
	VendorID   string
	Status     string
	Limit      int
}

type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.SupportTicket) error
	GetByID(ctx context.Context, id string) (*entity.SupportTicket, error)
	AppendMessage(ctx context.Context, id string, message entity.TicketMessage) error
	UpdateStatus(ctx context.Context, id, status string) error
	List(ctx context.Context, filter TicketFilter) ([]*entity.SupportTicket, error)
}

type SupportSessionRepository interface {
	Create(ctx context.Context, session *entity.SupportSession) error
	GetByID(ctx context.Context, id string) (*entity.SupportSession, error)
	AppendMessages(ctx context.Context, id string, messages ...entity.TicketMessage) error
	MarkEscalated(ctx context.Context, id, ticketID string) error
}
