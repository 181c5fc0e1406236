package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vendora/internal/domain/entity"
	"vendora/internal/domain/repository"
	"vendora/internal/infrastructure/websocket"
	"vendora/pkg/errors"
)

const staffLookupLimit = 200

type TicketUseCase struct {
	ticketRepo  repository.TicketRepository
	sessionRepo repository.SupportSessionRepository
	userRepo    repository.UserRepository
	notifier    *NotificationUseCase
	pusher      RealtimePusher
	logger      *zap.Logger
}

func NewTicketUseCase(
	ticketRepo repository.TicketRepository,
	sessionRepo repository.SupportSessionRepository,
	userRepo repository.UserRepository,
	notifier *NotificationUseCase,
	pusher RealtimePusher,
	logger *zap.Logger,
) *TicketUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketUseCase{
		ticketRepo:  ticketRepo,
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		pusher:      pusher,
		logger:      logger,
	}
}

type CreateTicketInput struct {
	Subject     string
	Description string
	VendorID    string
	Priority    string
}

// SupportMessageEvent is pushed to a customer when someone answers them.
type SupportMessageEvent struct {
	SessionID string               `json:"session_id,omitempty"`
	TicketID  string               `json:"ticket_id,omitempty"`
	Message   entity.TicketMessage `json:"message"`
}

func (uc *TicketUseCase) CreateTicket(ctx context.Context, customer *entity.User, input CreateTicketInput) (*entity.SupportTicket, error) {
	subject := strings.TrimSpace(input.Subject)
	description := strings.TrimSpace(input.Description)
	if subject == "" {
		return nil, errors.Validation("subject is required")
	}
	if description == "" {
		return nil, errors.Validation("description is required")
	}

	now := time.Now()
	ticket := &entity.SupportTicket{
		ID:          uuid.New().String(),
		CustomerID:  customer.ID,
		VendorID:    input.VendorID,
		Subject:     subject,
		Description: description,
		Status:      entity.TicketStatusOpen,
		Priority:    entity.NormalizePriority(input.Priority),
		Messages: []entity.TicketMessage{{
			SenderID:   customer.ID,
			SenderRole: senderRole(customer.Role),
			Message:    description,
			Timestamp:  now,
		}},
		CreatedAt: now,
	}
	if err := uc.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, err
	}

	uc.notifyStaff(ctx, ticket)
	if ticket.VendorID != "" {
		uc.notifier.Notify(ctx, ticket.VendorID, entity.NotificationTypeTicket,
			"A customer opened a ticket about your store", ticket.Subject, ticket.ID)
	}
	return ticket, nil
}

func (uc *TicketUseCase) ListCustomerTickets(ctx context.Context, customerID, status string, limit int) ([]*entity.SupportTicket, error) {
	return uc.ticketRepo.List(ctx, repository.TicketFilter{CustomerID: customerID, Status: status, Limit: limit})
}

func (uc *TicketUseCase) ListAllTickets(ctx context.Context, status string, limit int) ([]*entity.SupportTicket, error) {
	return uc.ticketRepo.List(ctx, repository.TicketFilter{Status: status, Limit: limit})
}

func (uc *TicketUseCase) GetTicket(ctx context.Context, actor *entity.User, id string) (*entity.SupportTicket, error) {
	ticket, err := uc.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canViewTicket(actor, ticket) {
		return nil, errors.Forbidden("You do not have access to this ticket", nil)
	}
	return ticket, nil
}

// Reply appends a message from actor. The first staff reply moves an open
// ticket to in-progress.
func (uc *TicketUseCase) Reply(ctx context.Context, actor *entity.User, id, text string) (*entity.SupportTicket, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.Validation("message is required")
	}

	ticket, err := uc.GetTicket(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if ticket.Status == entity.TicketStatusClosed {
		return nil, errors.Conflict("ticket is closed")
	}

	msg := entity.TicketMessage{
		SenderID:   actor.ID,
		SenderRole: senderRole(actor.Role),
		Message:    text,
		Timestamp:  time.Now(),
	}
	if err := uc.ticketRepo.AppendMessage(ctx, ticket.ID, msg); err != nil {
		return nil, err
	}
	ticket.Messages = append(ticket.Messages, msg)

	if actor.ID == ticket.CustomerID {
		if ticket.VendorID != "" {
			uc.notifier.Notify(ctx, ticket.VendorID, entity.NotificationTypeTicket,
				"New message on a support ticket", ticket.Subject, ticket.ID)
		}
		return ticket, nil
	}

	if actor.IsStaff() && ticket.Status == entity.TicketStatusOpen {
		if err := uc.ticketRepo.UpdateStatus(ctx, ticket.ID, entity.TicketStatusInProgress); err != nil {
			uc.logger.Warn("failed to move ticket to in-progress", zap.String("ticketId", ticket.ID), zap.Error(err))
		} else {
			ticket.Status = entity.TicketStatusInProgress
		}
	}

	uc.deliverToCustomer(ctx, ticket, msg)
	uc.notifier.Notify(ctx, ticket.CustomerID, entity.NotificationTypeTicket,
		"New reply on your support ticket", ticket.Subject, ticket.ID)
	return ticket, nil
}

// UpdateStatus is for staff; customers may only close their own ticket.
func (uc *TicketUseCase) UpdateStatus(ctx context.Context, actor *entity.User, id, status string) (*entity.SupportTicket, error) {
	ticket, err := uc.GetTicket(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && !(actor.ID == ticket.CustomerID && status == entity.TicketStatusClosed) {
		return nil, errors.Forbidden("You cannot change the status of this ticket", nil)
	}
	if !entity.CanTransitionTicket(ticket.Status, status) {
		return nil, errors.Conflict(fmt.Sprintf("cannot change ticket from %s to %s", ticket.Status, status))
	}

	if err := uc.ticketRepo.UpdateStatus(ctx, ticket.ID, status); err != nil {
		return nil, err
	}
	ticket.Status = status

	if actor.ID != ticket.CustomerID {
		uc.notifier.Notify(ctx, ticket.CustomerID, entity.NotificationTypeTicket,
			"Support ticket "+status, ticket.Subject, ticket.ID)
	}
	return ticket, nil
}

// deliverToCustomer mirrors a staff reply into the originating chat session
// and pushes it to the customer's open connections.
func (uc *TicketUseCase) deliverToCustomer(ctx context.Context, ticket *entity.SupportTicket, msg entity.TicketMessage) {
	if ticket.SessionID != "" {
		if err := uc.sessionRepo.AppendMessages(ctx, ticket.SessionID, msg); err != nil {
			uc.logger.Warn("failed to mirror reply into support session",
				zap.String("sessionId", ticket.SessionID), zap.Error(err))
		}
	}
	if uc.pusher == nil {
		return
	}
	event := SupportMessageEvent{SessionID: ticket.SessionID, TicketID: ticket.ID, Message: msg}
	if err := uc.pusher.Push(ticket.CustomerID, websocket.EventSupportMessage, event); err != nil {
		uc.logger.Warn("failed to push support reply", zap.String("ticketId", ticket.ID), zap.Error(err))
	}
}

// notifyStaff tells every admin and CSA about a new ticket.
func (uc *TicketUseCase) notifyStaff(ctx context.Context, ticket *entity.SupportTicket) {
	for _, role := range []string{entity.RoleAdmin, entity.RoleCSA} {
		staff, err := uc.userRepo.ListByRole(ctx, role, staffLookupLimit)
		if err != nil {
			uc.logger.Warn("failed to load staff for ticket notification",
				zap.String("role", role), zap.String("ticketId", ticket.ID), zap.Error(err))
			continue
		}
		for _, member := range staff {
			uc.notifier.Notify(ctx, member.ID, entity.NotificationTypeTicket,
				fmt.Sprintf("New %s priority support ticket", ticket.Priority),
				ticket.Subject, ticket.ID)
		}
	}
}

func canViewTicket(actor *entity.User, ticket *entity.SupportTicket) bool {
	return actor.IsStaff() ||
		ticket.CustomerID == actor.ID ||
		(ticket.VendorID != "" && ticket.VendorID == actor.ID)
}

func senderRole(role string) string {
	switch role {
	case entity.RoleVendor, entity.RoleCSA, entity.RoleAdmin:
		return role
	}
	return entity.RoleCustomer
}
