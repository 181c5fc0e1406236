package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vendora/internal/domain/entity"
	"vendora/internal/domain/repository"
	"vendora/internal/domain/service"
	"vendora/internal/infrastructure/websocket"
	"vendora/pkg/errors"
)

const (
	AcknowledgementMessage = "Your message has been added to your support ticket. An agent will respond shortly."
	HandoffMessage         = "I've passed your conversation to our support team. A human agent will reply here as soon as possible."
	TicketFailureMessage   = "I'm connecting you to a human agent. If you don't hear back soon, please open a support ticket from the help page."
	defaultTicketSubject   = "Customer support request"
	assistantHistory       = 20
)

type SupportContext struct {
	UserID string
	Role   string
	Email  string
}

type SupportQuery struct {
	SessionID string
	Message   string
	Context   SupportContext
}

type SupportReply struct {
	SessionID        string                 `json:"session_id"`
	State            string                 `json:"state"`
	CanResolve       bool                   `json:"can_resolve"`
	Response         string                 `json:"response"`
	SuggestedActions []string               `json:"suggested_actions,omitempty"`
	EscalationReason string                 `json:"escalation_reason,omitempty"`
	Priority         string                 `json:"priority,omitempty"`
	TicketID         string                 `json:"ticket_id,omitempty"`
	Messages         []entity.TicketMessage `json:"messages"`
}

// SupportUseCase runs the support chat. A session starts with the assistant
// answering; once it escalates to a ticket it stays escalated and every
// further message goes to the ticket. Messages on one session are handled
// one at a time.
type SupportUseCase struct {
	sessionRepo  repository.SupportSessionRepository
	ticketRepo   repository.TicketRepository
	tickets      *TicketUseCase
	assistant    service.SupportAssistant
	pusher       RealtimePusher
	handoffDelay time.Duration
	logger       *zap.Logger
	now          func() time.Time
	pending      sync.WaitGroup

	locksMu sync.Mutex
	locks   map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewSupportUseCase(
	sessionRepo repository.SupportSessionRepository,
	ticketRepo repository.TicketRepository,
	tickets *TicketUseCase,
	assistant service.SupportAssistant,
	pusher RealtimePusher,
	handoffDelay time.Duration,
	logger *zap.Logger,
) *SupportUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupportUseCase{
		sessionRepo:  sessionRepo,
		ticketRepo:   ticketRepo,
		tickets:      tickets,
		assistant:    assistant,
		pusher:       pusher,
		handoffDelay: handoffDelay,
		logger:       logger,
		now:          time.Now,
		locks:        make(map[string]*sessionLock),
	}
}

// Ask handles one customer message. Apart from input validation, access
// checks and an unreadable session it always returns a usable reply; other
// backend failures are logged.
func (uc *SupportUseCase) Ask(ctx context.Context, query SupportQuery) (*SupportReply, error) {
	text := strings.TrimSpace(query.Message)
	if text == "" {
		return nil, errors.Validation("message is required")
	}

	id, fresh := query.SessionID, false
	if id == "" {
		id, fresh = uuid.New().String(), true
	}
	unlock := uc.lockSession(id)
	defer unlock()

	session, err := uc.loadSession(ctx, id, fresh, query.Context)
	if err != nil {
		return nil, err
	}

	customerMsg := entity.TicketMessage{
		SenderID:   senderID(query.Context, session),
		SenderRole: senderRole(query.Context.Role),
		Message:    text,
		Timestamp:  uc.now(),
	}

	if session.Escalated() {
		return uc.appendToTicket(ctx, session, customerMsg), nil
	}

	reply := uc.answer(ctx, session, text, query.Context)
	assistantMsg := uc.aiMessage(reply.Response)

	if !reply.CanResolve {
		return uc.escalate(ctx, session, query.Context, customerMsg, assistantMsg, reply), nil
	}

	out := []entity.TicketMessage{assistantMsg}
	if len(reply.SuggestedActions) > 0 {
		out = append(out, uc.aiMessage(formatActions(reply.SuggestedActions)))
	}
	uc.record(ctx, session, append([]entity.TicketMessage{customerMsg}, out...)...)

	return &SupportReply{
		SessionID:        session.ID,
		State:            session.State,
		CanResolve:       true,
		Response:         reply.Response,
		SuggestedActions: reply.SuggestedActions,
		Messages:         out,
	}, nil
}

// GetSession returns the conversation so far.
func (uc *SupportUseCase) GetSession(ctx context.Context, userID, id string) (*entity.SupportSession, error) {
	session, err := uc.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeSession(session, userID); err != nil {
		return nil, err
	}
	return session, nil
}

// Wait blocks until every scheduled hand-off message has been delivered.
func (uc *SupportUseCase) Wait() {
	uc.pending.Wait()
}

// lockSession serializes work on one session so a conversation cannot
// escalate twice. Locks are dropped once nobody holds or waits on them.
func (uc *SupportUseCase) lockSession(id string) func() {
	uc.locksMu.Lock()
	l, ok := uc.locks[id]
	if !ok {
		l = &sessionLock{}
		uc.locks[id] = l
	}
	l.refs++
	uc.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		uc.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(uc.locks, id)
		}
		uc.locksMu.Unlock()
	}
}

// loadSession returns the stored session or starts a new one. Only a
// confirmed miss starts a new session; any other read failure is returned so
// an escalated conversation is never replaced.
func (uc *SupportUseCase) loadSession(ctx context.Context, id string, fresh bool, sc SupportContext) (*entity.SupportSession, error) {
	if !fresh {
		session, err := uc.sessionRepo.GetByID(ctx, id)
		switch {
		case err == nil:
			return session, authorizeSession(session, sc.UserID)
		case !errors.Is(err, "NOT_FOUND"):
			uc.logger.Error("failed to load support session", zap.String("sessionId", id), zap.Error(err))
			return nil, errors.Internal("Support chat is temporarily unavailable, please try again", err)
		}
	}

	now := uc.now()
	session := &entity.SupportSession{
		ID:         id,
		CustomerID: sc.UserID,
		State:      entity.SessionStateAIHandling,
		Messages:   []entity.TicketMessage{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := uc.sessionRepo.Create(ctx, session)
	switch {
	case err == nil:
	case errors.Is(err, "CONFLICT"):
		// created elsewhere between our read and write
		existing, getErr := uc.sessionRepo.GetByID(ctx, id)
		if getErr != nil {
			uc.logger.Error("failed to load support session", zap.String("sessionId", id), zap.Error(getErr))
			return nil, errors.Internal("Support chat is temporarily unavailable, please try again", getErr)
		}
		return existing, authorizeSession(existing, sc.UserID)
	default:
		uc.logger.Warn("failed to persist support session", zap.String("sessionId", id), zap.Error(err))
	}
	return session, nil
}

func authorizeSession(session *entity.SupportSession, userID string) error {
	if session.CustomerID != "" && session.CustomerID != userID {
		return errors.Forbidden("You do not have access to this conversation", nil)
	}
	return nil
}

// answer asks the assistant and falls back to the keyword classifier when
// the assistant is missing, fails, or returns something unusable.
func (uc *SupportUseCase) answer(ctx context.Context, session *entity.SupportSession, text string, sc SupportContext) service.AssistantReply {
	if uc.assistant != nil {
		history := session.RecentMessages(assistantHistory)
		turns := make([]service.AssistantTurn, 0, len(history))
		for _, m := range history {
			turns = append(turns, service.AssistantTurn{Role: m.SenderRole, Message: m.Message})
		}

		reply, err := uc.assistant.Answer(ctx, service.AssistantQuery{
			Message: text,
			UserID:  sc.UserID,
			Email:   sc.Email,
			Role:    sc.Role,
			History: turns,
		})
		if err == nil && reply != nil && strings.TrimSpace(reply.Response) != "" {
			return *reply
		}
		uc.logger.Warn("assistant unavailable, using keyword fallback",
			zap.String("sessionId", session.ID), zap.Error(err))
	}
	return service.Classify(text)
}

func (uc *SupportUseCase) escalate(
	ctx context.Context,
	session *entity.SupportSession,
	sc SupportContext,
	customerMsg, assistantMsg entity.TicketMessage,
	reply service.AssistantReply,
) *SupportReply {
	uc.record(ctx, session, customerMsg, assistantMsg)

	subject := strings.TrimSpace(reply.EscalationReason)
	if subject == "" {
		subject = defaultTicketSubject
	}
	priority := entity.NormalizePriority(reply.Priority)

	ticket := &entity.SupportTicket{
		ID:          uuid.New().String(),
		CustomerID:  customerMsg.SenderID,
		SessionID:   session.ID,
		Subject:     subject,
		Description: customerMsg.Message,
		Status:      entity.TicketStatusOpen,
		Priority:    priority,
		Messages:    []entity.TicketMessage{customerMsg},
		CreatedAt:   uc.now(),
	}
	if err := uc.ticketRepo.Create(ctx, ticket); err != nil {
		uc.logger.Error("failed to create support ticket",
			zap.String("sessionId", session.ID), zap.Error(err))
		failure := uc.aiMessage(TicketFailureMessage)
		uc.record(ctx, session, failure)
		return &SupportReply{
			SessionID:        session.ID,
			State:            session.State,
			Response:         reply.Response,
			EscalationReason: subject,
			Priority:         priority,
			Messages:         []entity.TicketMessage{assistantMsg, failure},
		}
	}

	if err := uc.sessionRepo.MarkEscalated(ctx, session.ID, ticket.ID); err != nil {
		if errors.Is(err, "CONFLICT") {
			return uc.joinExistingTicket(ctx, session, ticket, customerMsg)
		}
		uc.logger.Warn("failed to mark support session escalated",
			zap.String("sessionId", session.ID), zap.String("ticketId", ticket.ID), zap.Error(err))
	}
	session.State = entity.SessionStateEscalated
	session.TicketID = ticket.ID

	uc.logger.Info("support session escalated",
		zap.String("sessionId", session.ID),
		zap.String("ticketId", ticket.ID),
		zap.String("priority", priority))
	uc.tickets.notifyStaff(ctx, ticket)

	out := &SupportReply{
		SessionID:        session.ID,
		State:            session.State,
		Response:         reply.Response,
		EscalationReason: subject,
		Priority:         priority,
		TicketID:         ticket.ID,
		Messages:         []entity.TicketMessage{assistantMsg},
	}

	if uc.handoffDelay <= 0 {
		handoff := uc.aiMessage(HandoffMessage)
		uc.deliverHandoff(ctx, session.ID, ticket.ID, handoff)
		out.Messages = append(out.Messages, handoff)
		return out
	}

	uc.scheduleHandoff(ctx, session.ID, ticket.ID, sc.UserID)
	return out
}

// joinExistingTicket handles a session that another server escalated while
// this one was answering: the duplicate ticket is closed and the message
// goes to the ticket the session already points at.
func (uc *SupportUseCase) joinExistingTicket(
	ctx context.Context,
	session *entity.SupportSession,
	duplicate *entity.SupportTicket,
	customerMsg entity.TicketMessage,
) *SupportReply {
	uc.logger.Warn("support session was escalated concurrently, closing duplicate ticket",
		zap.String("sessionId", session.ID), zap.String("ticketId", duplicate.ID))
	if err := uc.ticketRepo.UpdateStatus(ctx, duplicate.ID, entity.TicketStatusClosed); err != nil {
		uc.logger.Error("failed to close duplicate ticket", zap.String("ticketId", duplicate.ID), zap.Error(err))
	}

	current, err := uc.sessionRepo.GetByID(ctx, session.ID)
	if err != nil || current.TicketID == "" {
		uc.logger.Error("failed to reload escalated session", zap.String("sessionId", session.ID), zap.Error(err))
		failure := uc.aiMessage(TicketFailureMessage)
		uc.record(ctx, session, failure)
		return &SupportReply{
			SessionID: session.ID,
			State:     entity.SessionStateEscalated,
			Response:  TicketFailureMessage,
			Messages:  []entity.TicketMessage{failure},
		}
	}

	session.State = current.State
	session.TicketID = current.TicketID
	if err := uc.ticketRepo.AppendMessage(ctx, current.TicketID, customerMsg); err != nil {
		uc.logger.Error("failed to add message to ticket",
			zap.String("sessionId", session.ID), zap.String("ticketId", current.TicketID), zap.Error(err))
	}
	ack := uc.aiMessage(AcknowledgementMessage)
	uc.record(ctx, session, ack)

	return &SupportReply{
		SessionID: session.ID,
		State:     session.State,
		Response:  AcknowledgementMessage,
		TicketID:  current.TicketID,
		Messages:  []entity.TicketMessage{ack},
	}
}

func (uc *SupportUseCase) scheduleHandoff(ctx context.Context, sessionID, ticketID, userID string) {
	bg := context.WithoutCancel(ctx)
	uc.pending.Add(1)
	go func() {
		defer uc.pending.Done()
		time.Sleep(uc.handoffDelay)

		handoff := uc.aiMessage(HandoffMessage)
		uc.deliverHandoff(bg, sessionID, ticketID, handoff)

		if uc.pusher == nil || userID == "" {
			return
		}
		event := SupportMessageEvent{SessionID: sessionID, TicketID: ticketID, Message: handoff}
		if err := uc.pusher.Push(userID, websocket.EventSupportMessage, event); err != nil {
			uc.logger.Warn("failed to push hand-off message", zap.String("sessionId", sessionID), zap.Error(err))
		}
	}()
}

func (uc *SupportUseCase) deliverHandoff(ctx context.Context, sessionID, ticketID string, msg entity.TicketMessage) {
	if err := uc.sessionRepo.AppendMessages(ctx, sessionID, msg); err != nil {
		uc.logger.Warn("failed to record hand-off message", zap.String("sessionId", sessionID), zap.Error(err))
	}
	if err := uc.ticketRepo.AppendMessage(ctx, ticketID, msg); err != nil {
		uc.logger.Warn("failed to add hand-off message to ticket", zap.String("ticketId", ticketID), zap.Error(err))
	}
}

func (uc *SupportUseCase) appendToTicket(ctx context.Context, session *entity.SupportSession, customerMsg entity.TicketMessage) *SupportReply {
	ack := uc.aiMessage(AcknowledgementMessage)
	uc.record(ctx, session, customerMsg, ack)

	if err := uc.ticketRepo.AppendMessage(ctx, session.TicketID, customerMsg); err != nil {
		uc.logger.Error("failed to add message to ticket",
			zap.String("sessionId", session.ID), zap.String("ticketId", session.TicketID), zap.Error(err))
	}

	return &SupportReply{
		SessionID: session.ID,
		State:     session.State,
		Response:  AcknowledgementMessage,
		TicketID:  session.TicketID,
		Messages:  []entity.TicketMessage{ack},
	}
}

// record appends to the session history; failures only cost history.
func (uc *SupportUseCase) record(ctx context.Context, session *entity.SupportSession, msgs ...entity.TicketMessage) {
	session.Messages = append(session.Messages, msgs...)
	if err := uc.sessionRepo.AppendMessages(ctx, session.ID, msgs...); err != nil {
		uc.logger.Warn("failed to record support messages",
			zap.String("sessionId", session.ID), zap.Int("messages", len(msgs)), zap.Error(err))
	}
}

func (uc *SupportUseCase) aiMessage(text string) entity.TicketMessage {
	return entity.TicketMessage{
		SenderID:   entity.SenderAI,
		SenderRole: entity.SenderAI,
		Message:    text,
		Timestamp:  uc.now(),
	}
}

func senderID(sc SupportContext, session *entity.SupportSession) string {
	if sc.UserID != "" {
		return sc.UserID
	}
	return "guest:" + session.ID
}

func formatActions(actions []string) string {
	lines := make([]string, 0, len(actions))
	for _, a := range actions {
		if a = strings.TrimSpace(a); a != "" {
			lines = append(lines, "• "+a)
		}
	}
	return strings.Join(lines, "\n")
}
