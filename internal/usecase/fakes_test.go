package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"vendora/internal/domain/entity"
	"vendora/internal/domain/repository"
	"vendora/internal/domain/service"
	"vendora/pkg/errors"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemUsers(users ...*entity.User) *memUsers {
	m := &memUsers{users: map[string]*entity.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) Create(_ context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (m *memUsers) Update(ctx context.Context, user *entity.User) error {
	return m.Create(ctx, user)
}

func (m *memUsers) ListByRole(_ context.Context, role string, _ int) ([]*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.User
	for _, u := range m.users {
		if u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memProducts struct {
	mu       sync.Mutex
	products map[string]*entity.Product
}

func newMemProducts(products ...*entity.Product) *memProducts {
	m := &memProducts{products: map[string]*entity.Product{}}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *memProducts) Create(_ context.Context, product *entity.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	product.DeriveStatus()
	cp := *product
	m.products[product.ID] = &cp
	return nil
}

func (m *memProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, errors.NotFound("Product", nil)
	}
	cp := *p
	return &cp, nil
}

func (m *memProducts) Update(_ context.Context, product *entity.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[product.ID]; !ok {
		return errors.NotFound("Product", nil)
	}
	product.DeriveStatus()
	cp := *product
	m.products[product.ID] = &cp
	return nil
}

func (m *memProducts) List(_ context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Product
	for _, p := range m.products {
		if filter.VendorID != "" && p.VendorID != filter.VendorID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memProducts) stock(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Stock
}

func (m *memProducts) status(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Status
}

type memCarts struct {
	mu      sync.Mutex
	items   map[string][]entity.CartItem
	getErr  error
	saveErr error
	saves   int
}

func newMemCarts() *memCarts {
	return &memCarts{items: map[string][]entity.CartItem{}}
}

func (m *memCarts) GetItems(_ context.Context, ownerID string) ([]entity.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return append([]entity.CartItem(nil), m.items[ownerID]...), nil
}

func (m *memCarts) SaveItems(_ context.Context, ownerID string, items []entity.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.items[ownerID] = append([]entity.CartItem(nil), items...)
	return nil
}

func (m *memCarts) Delete(_ context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, ownerID)
	return nil
}

func (m *memCarts) stored(ownerID string) ([]entity.CartItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items, ok := m.items[ownerID]
	return items, ok
}

// memOrders is both the order store and the checkout committer. Commits
// check and decrement stock in products under one lock.
type memOrders struct {
	mu        sync.Mutex
	orders    map[string]*entity.Order
	products  *memProducts
	commitErr error
}

func newMemOrders(products *memProducts) *memOrders {
	return &memOrders{orders: map[string]*entity.Order{}, products: products}
}

func (m *memOrders) CommitCheckout(_ context.Context, orders []*entity.Order, reservations []repository.StockReservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commitErr != nil {
		return m.commitErr
	}

	m.products.mu.Lock()
	defer m.products.mu.Unlock()
	for _, r := range reservations {
		p, ok := m.products.products[r.ProductID]
		if !ok || !p.Purchasable() || p.Stock < r.Quantity {
			return errors.Conflict("insufficient stock for " + r.ProductID)
		}
	}
	for _, r := range reservations {
		p := m.products.products[r.ProductID]
		p.Stock -= r.Quantity
		p.DeriveStatus()
	}
	for _, o := range orders {
		cp := *o
		m.orders[o.ID] = &cp
	}
	return nil
}

func (m *memOrders) GetByID(_ context.Context, id string) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, errors.NotFound("Order", nil)
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) TransitionStatus(_ context.Context, id, status string, check func(order *entity.Order) error) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, errors.NotFound("Order", nil)
	}
	cp := *o
	if err := check(&cp); err != nil {
		return nil, err
	}

	if status == entity.OrderStatusCancelled {
		m.products.mu.Lock()
		for _, item := range o.LineItems {
			if p, ok := m.products.products[item.ProductID]; ok {
				p.Stock += item.Quantity
				p.DeriveStatus()
			}
		}
		m.products.mu.Unlock()
	}
	o.Status = status
	cp.Status = status
	return &cp, nil
}

func (m *memOrders) List(_ context.Context, filter repository.OrderFilter) ([]*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Order
	for _, o := range m.orders {
		if filter.CustomerID != "" && o.CustomerID != filter.CustomerID {
			continue
		}
		if filter.VendorID != "" && o.VendorID != filter.VendorID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memOrders) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

type memTickets struct {
	mu        sync.Mutex
	tickets   map[string]*entity.SupportTicket
	createErr error
}

func newMemTickets() *memTickets {
	return &memTickets{tickets: map[string]*entity.SupportTicket{}}
}

func (m *memTickets) Create(_ context.Context, ticket *entity.SupportTicket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *ticket
	cp.Messages = append([]entity.TicketMessage(nil), ticket.Messages...)
	m.tickets[ticket.ID] = &cp
	return nil
}

func (m *memTickets) GetByID(_ context.Context, id string) (*entity.SupportTicket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, errors.NotFound("Support ticket", nil)
	}
	cp := *t
	cp.Messages = append([]entity.TicketMessage(nil), t.Messages...)
	return &cp, nil
}

func (m *memTickets) AppendMessage(_ context.Context, id string, message entity.TicketMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return errors.NotFound("Support ticket", nil)
	}
	t.Messages = append(t.Messages, message)
	return nil
}

func (m *memTickets) UpdateStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return errors.NotFound("Support ticket", nil)
	}
	t.Status = status
	return nil
}

func (m *memTickets) List(_ context.Context, filter repository.TicketFilter) ([]*entity.SupportTicket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.SupportTicket
	for _, t := range m.tickets {
		if filter.CustomerID != "" && t.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memTickets) all() []*entity.SupportTicket {
	out, _ := m.List(context.Background(), repository.TicketFilter{})
	return out
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]*entity.SupportSession
	getErr   error
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: map[string]*entity.SupportSession{}}
}

func (m *memSessions) Create(_ context.Context, session *entity.SupportSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[session.ID]; ok {
		return errors.Conflict("Support session already exists")
	}
	cp := *session
	cp.Messages = append([]entity.TicketMessage(nil), session.Messages...)
	m.sessions[session.ID] = &cp
	return nil
}

func (m *memSessions) GetByID(_ context.Context, id string) (*entity.SupportSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, errors.NotFound("Support session", nil)
	}
	cp := *s
	cp.Messages = append([]entity.TicketMessage(nil), s.Messages...)
	return &cp, nil
}

func (m *memSessions) AppendMessages(_ context.Context, id string, messages ...entity.TicketMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return errors.NotFound("Support session", nil)
	}
	s.Messages = append(s.Messages, messages...)
	return nil
}

func (m *memSessions) MarkEscalated(_ context.Context, id, ticketID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return errors.NotFound("Support session", nil)
	}
	if s.Escalated() {
		if s.TicketID == ticketID {
			return nil
		}
		return errors.Conflict("Support session is already escalated")
	}
	s.State = entity.SessionStateEscalated
	s.TicketID = ticketID
	return nil
}

func (m *memSessions) stored(id string) *entity.SupportSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil
	}
	cp := *s
	cp.Messages = append([]entity.TicketMessage(nil), s.Messages...)
	return &cp
}

type memNotifications struct {
	mu            sync.Mutex
	notifications []*entity.Notification
}

func (m *memNotifications) Create(_ context.Context, n *entity.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = uuid.New().String()
	cp := *n
	m.notifications = append(m.notifications, &cp)
	return nil
}

func (m *memNotifications) GetByID(_ context.Context, id string) (*entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, errors.NotFound("Notification", nil)
}

func (m *memNotifications) ListByUser(_ context.Context, userID string, unreadOnly bool, _ int) ([]*entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Notification
	for _, n := range m.notifications {
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memNotifications) MarkRead(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.ID == id {
			n.Read = true
			return nil
		}
	}
	return errors.NotFound("Notification", nil)
}

func (m *memNotifications) MarkAllRead(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			count++
		}
	}
	return count, nil
}

func (m *memNotifications) forUser(userID string) []*entity.Notification {
	out, _ := m.ListByUser(context.Background(), userID, false, 0)
	return out
}

type fakePayments struct {
	mu           sync.Mutex
	authorizeErr error
	captureErr   error
	authorized   []service.PaymentRequest
	captured     []string
	voided       []string
}

func (f *fakePayments) Authorize(ctx context.Context, req service.PaymentRequest) (*service.PaymentAuthorization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.authorizeErr != nil {
		return nil, f.authorizeErr
	}
	f.authorized = append(f.authorized, req)
	return &service.PaymentAuthorization{
		ID:       "auth_" + req.Reference,
		Provider: "fake",
		Status:   service.PaymentStatusAuthorized,
		Amount:   req.Amount,
	}, nil
}

func (f *fakePayments) Capture(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.captureErr != nil {
		return f.captureErr
	}
	f.captured = append(f.captured, id)
	return nil
}

func (f *fakePayments) Void(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.voided = append(f.voided, id)
	return nil
}

type pushedEvent struct {
	UserID string
	Type   string
	Data   interface{}
}

type fakePusher struct {
	mu     sync.Mutex
	events []pushedEvent
}

func (f *fakePusher) Push(userID, eventType string, data interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, pushedEvent{UserID: userID, Type: eventType, Data: data})
	return nil
}

func (f *fakePusher) ofType(eventType string) []pushedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []pushedEvent
	for _, e := range f.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fakeAssistant struct {
	mu      sync.Mutex
	reply   *service.AssistantReply
	err     error
	delay   time.Duration
	before  func()
	queries []service.AssistantQuery
}

func (f *fakeAssistant) Answer(_ context.Context, query service.AssistantQuery) (*service.AssistantReply, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.before != nil {
		f.before()
	}
	if f.err != nil {
		return nil, f.err
	}
	reply := *f.reply
	return &reply, nil
}

func testProduct(id, vendorID string, price float64, stock int) *entity.Product {
	p := &entity.Product{
		ID:         id,
		Title:      "Product " + id,
		Price:      price,
		Category:   "general",
		VendorID:   vendorID,
		VendorName: "Store " + vendorID,
		Stock:      stock,
		Status:     entity.ProductStatusActive,
	}
	p.DeriveStatus()
	return p
}
