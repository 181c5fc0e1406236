package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"vendora/internal/domain/entity"
	"vendora/internal/domain/repository"
	"vendora/pkg/errors"
)

type firestoreTicketRepository struct {
	client *firestore.Client
}

func NewFirestoreTicketRepository(client *firestore.Client) repository.TicketRepository {
	return &firestoreTicketRepository{
		client: client,
	}
}

func (r *firestoreTicketRepository) Create(ctx context.Context, ticket *entity.SupportTicket) error {
	if ticket.ID == "" {
		ticket.ID = r.client.Collection(ticketsCollection).NewDoc().ID
	}
	now := time.Now()
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = now
	}
	ticket.UpdatedAt = now
	if ticket.Messages == nil {
		ticket.Messages = []entity.TicketMessage{}
	}

	if err := validateDocument("support ticket", ticket); err != nil {
		return err
	}

	if _, err := r.client.Collection(ticketsCollection).Doc(ticket.ID).Set(ctx, ticket); err != nil {
		return errors.Internal("Failed to create support ticket", err)
	}
	return nil
}

func (r *firestoreTicketRepository) GetByID(ctx context.Context, id string) (*entity.SupportTicket, error) {
	doc, err := r.client.Collection(ticketsCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, readError("Support ticket", err)
	}

	var ticket entity.SupportTicket
	if err := doc.DataTo(&ticket); err != nil {
		return nil, errors.Internal("Failed to parse support ticket data", err)
	}
	return &ticket, nil
}

func (r *firestoreTicketRepository) AppendMessage(ctx context.Context, id string, message entity.TicketMessage) error {
	if err := validateDocument("ticket message", &message); err != nil {
		return err
	}

	_, err := r.client.Collection(ticketsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "messages", Value: firestore.ArrayUnion(message)},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return writeError("append ticket message", err)
	}
	return nil
}

func (r *firestoreTicketRepository) UpdateStatus(ctx context.Context, id, ticketStatus string) error {
	switch ticketStatus {
	case entity.TicketStatusOpen, entity.TicketStatusInProgress, entity.TicketStatusResolved, entity.TicketStatusClosed:
	default:
		return errors.Validation(fmt.Sprintf("invalid ticket status %q", ticketStatus))
	}

	_, err := r.client.Collection(ticketsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: ticketStatus},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return writeError("update ticket status", err)
	}
	return nil
}

func (r *firestoreTicketRepository) List(ctx context.Context, filter repository.TicketFilter) ([]*entity.SupportTicket, error) {
	query := r.client.Collection(ticketsCollection).Query
	if filter.CustomerID != "" {
		query = query.Where("customerId", "==", filter.CustomerID)
	}
	if filter.VendorID != "" {
		query = query.Where("vendorId", "==", filter.VendorID)
	}
	if filter.Status != "" {
		query = query.Where("status", "==", filter.Status)
	}
	query = applyLimit(query.OrderBy("createdAt", firestore.Desc), filter.Limit)

	iter := query.Documents(ctx)
	defer iter.Stop()

	tickets := []*entity.SupportTicket{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate support tickets", err)
		}

		var ticket entity.SupportTicket
		if err := doc.DataTo(&ticket); err != nil {
			return nil, errors.Internal("Failed to parse support ticket data", err)
		}
		tickets = append(tickets, &ticket)
	}
	return tickets, nil
}

type firestoreSupportSessionRepository struct {
	client *firestore.Client
}

func NewFirestoreSupportSessionRepository(client *firestore.Client) repository.SupportSessionRepository {
	return &firestoreSupportSessionRepository{
		client: client,
	}
}

func (r *firestoreSupportSessionRepository) Create(ctx context.Context, session *entity.SupportSession) error {
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	if session.Messages == nil {
		session.Messages = []entity.TicketMessage{}
	}

	if err := validateDocument("support session", session); err != nil {
		return err
	}

	// Create, not Set: an existing conversation must never be replaced.
	if _, err := r.client.Collection(supportSessionsCollection).Doc(session.ID).Create(ctx, session); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errors.Conflict("Support session already exists")
		}
		return errors.Internal("Failed to create support session", err)
	}
	return nil
}

func (r *firestoreSupportSessionRepository) GetByID(ctx context.Context, id string) (*entity.SupportSession, error) {
	doc, err := r.client.Collection(supportSessionsCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, readError("Support session", err)
	}

	var session entity.SupportSession
	if err := doc.DataTo(&session); err != nil {
		return nil, errors.Internal("Failed to parse support session data", err)
	}
	return &session, nil
}

func (r *firestoreSupportSessionRepository) AppendMessages(ctx context.Context, id string, messages ...entity.TicketMessage) error {
	if len(messages) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(messages))
	for i := range messages {
		if err := validateDocument("session message", &messages[i]); err != nil {
			return err
		}
		values = append(values, messages[i])
	}

	_, err := r.client.Collection(supportSessionsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "messages", Value: firestore.ArrayUnion(values...)},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return writeError("append session messages", err)
	}
	return nil
}

// MarkEscalated moves an ai-handling session onto ticketID. A session that
// already points at another ticket is left alone and reported as a conflict.
func (r *firestoreSupportSessionRepository) MarkEscalated(ctx context.Context, id, ticketID string) error {
	ref := r.client.Collection(supportSessionsCollection).Doc(id)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return readError("Support session", err)
		}

		var session entity.SupportSession
		if err := snap.DataTo(&session); err != nil {
			return errors.Internal("Failed to parse support session data", err)
		}
		if session.Escalated() {
			if session.TicketID == ticketID {
				return nil
			}
			return errors.Conflict("Support session is already escalated")
		}

		return tx.Update(ref, []firestore.Update{
			{Path: "state", Value: entity.SessionStateEscalated},
			{Path: "ticketId", Value: ticketID},
			{Path: "updatedAt", Value: time.Now()},
		})
	})
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return appErr
		}
		return writeError("mark session escalated", err)
	}
	return nil
}
