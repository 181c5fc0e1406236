package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendora/internal/domain/entity"
	"vendora/internal/infrastructure/websocket"
	"vendora/pkg/errors"
)

type ticketFixture struct {
	uc            *TicketUseCase
	tickets       *memTickets
	sessions      *memSessions
	notifications *memNotifications
	pusher        *fakePusher
}

func newTicketFixture() *ticketFixture {
	users := newMemUsers(
		&entity.User{ID: "admin1", Role: entity.RoleAdmin},
		&entity.User{ID: "csa1", Role: entity.RoleCSA},
		&entity.User{ID: "csa2", Role: entity.RoleCSA},
	)
	tickets := newMemTickets()
	sessions := newMemSessions()
	notifications := &memNotifications{}
	pusher := &fakePusher{}
	notifier := NewNotificationUseCase(notifications, pusher, nil, nil)
	return &ticketFixture{
		uc:            NewTicketUseCase(tickets, sessions, users, notifier, pusher, nil),
		tickets:       tickets,
		sessions:      sessions,
		notifications: notifications,
		pusher:        pusher,
	}
}

var csa = &entity.User{ID: "csa1", Role: entity.RoleCSA}

func TestTicketUseCase_CreateNotifiesStaff(t *testing.T) {
	f := newTicketFixture()

	ticket, err := f.uc.CreateTicket(context.Background(), customer, CreateTicketInput{
		Subject:     "Wrong colour",
		Description: "I ordered blue and got green",
		VendorID:    "v1",
		Priority:    "bogus",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.TicketStatusOpen, ticket.Status)
	assert.Equal(t, entity.PriorityMedium, ticket.Priority)
	require.Len(t, ticket.Messages, 1)
	assert.Equal(t, "I ordered blue and got green", ticket.Messages[0].Message)

	for _, id := range []string{"admin1", "csa1", "csa2", "v1"} {
		assert.Len(t, f.notifications.forUser(id), 1, id)
	}

	_, err = f.uc.CreateTicket(context.Background(), customer, CreateTicketInput{Description: "no subject"})
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
}

func TestTicketUseCase_StaffReplyReachesCustomer(t *testing.T) {
	f := newTicketFixture()
	ctx := context.Background()
	require.NoError(t, f.sessions.Create(ctx, &entity.SupportSession{
		ID: "s1", CustomerID: "c1", State: entity.SessionStateEscalated, TicketID: "t1",
	}))
	require.NoError(t, f.tickets.Create(ctx, &entity.SupportTicket{
		ID: "t1", CustomerID: "c1", SessionID: "s1", Subject: "Refund",
		Status: entity.TicketStatusOpen, Priority: entity.PriorityHigh,
	}))

	ticket, err := f.uc.Reply(ctx, csa, "t1", "We have issued your refund.")
	require.NoError(t, err)
	assert.Equal(t, entity.TicketStatusInProgress, ticket.Status)

	stored, err := f.tickets.GetByID(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, stored.Messages, 1)
	assert.Equal(t, entity.RoleCSA, stored.Messages[0].SenderRole)

	session, err := f.sessions.GetByID(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, "We have issued your refund.", session.Messages[0].Message)

	pushed := f.pusher.ofType(websocket.EventSupportMessage)
	require.Len(t, pushed, 1)
	assert.Equal(t, "c1", pushed[0].UserID)
	assert.Len(t, f.notifications.forUser("c1"), 1)
}

func TestTicketUseCase_Access(t *testing.T) {
	f := newTicketFixture()
	ctx := context.Background()
	require.NoError(t, f.tickets.Create(ctx, &entity.SupportTicket{
		ID: "t1", CustomerID: "c1", Subject: "Help",
		Status: entity.TicketStatusOpen, Priority: entity.PriorityLow,
	}))

	_, err := f.uc.GetTicket(ctx, &entity.User{ID: "c2", Role: entity.RoleCustomer}, "t1")
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	_, err = f.uc.UpdateStatus(ctx, customer, "t1", entity.TicketStatusResolved)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	ticket, err := f.uc.UpdateStatus(ctx, customer, "t1", entity.TicketStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, entity.TicketStatusClosed, ticket.Status)

	_, err = f.uc.Reply(ctx, customer, "t1", "one more thing")
	assert.True(t, errors.Is(err, "CONFLICT"))
}

func TestTicketUseCase_StatusTransitions(t *testing.T) {
	tests := []struct {
		from, to string
		ok       bool
	}{
		{entity.TicketStatusOpen, entity.TicketStatusInProgress, true},
		{entity.TicketStatusOpen, entity.TicketStatusClosed, true},
		{entity.TicketStatusInProgress, entity.TicketStatusResolved, true},
		{entity.TicketStatusResolved, entity.TicketStatusClosed, true},
		{entity.TicketStatusResolved, entity.TicketStatusOpen, false},
		{entity.TicketStatusClosed, entity.TicketStatusInProgress, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			f := newTicketFixture()
			ctx := context.Background()
			require.NoError(t, f.tickets.Create(ctx, &entity.SupportTicket{
				ID: "t1", CustomerID: "c1", Subject: "Help",
				Status: tt.from, Priority: entity.PriorityLow,
			}))

			_, err := f.uc.UpdateStatus(ctx, csa, "t1", tt.to)
			if tt.ok {
				require.NoError(t, err)
				assert.Len(t, f.notifications.forUser("c1"), 1)
				return
			}
			assert.True(t, errors.Is(err, "CONFLICT"))
		})
	}
}
