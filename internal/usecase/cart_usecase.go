package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vendora/internal/domain/entity"
	"vendora/internal/domain/repository"
	"vendora/pkg/errors"
)

const defaultCartSessionTTL = 30 * time.Minute

// CartOwner identifies whose cart an operation targets: a signed-in user or
// an anonymous guest session. UserID wins when both are set.
type CartOwner struct {
	UserID  string
	GuestID string
}

func (o CartOwner) IsGuest() bool {
	return o.UserID == ""
}

func (o CartOwner) ID() string {
	if o.IsGuest() {
		return o.GuestID
	}
	return o.UserID
}

func (o CartOwner) key() string {
	if o.IsGuest() {
		return "guest:" + o.GuestID
	}
	return "user:" + o.UserID
}

// NewGuestID issues the id of a new anonymous cart. Guest ids are random
// UUIDs so one guest cannot name another guest's cart.
func NewGuestID() string {
	return uuid.New().String()
}

// ValidGuestID reports whether id looks like an id from NewGuestID.
func ValidGuestID(id string) bool {
	parsed, err := uuid.Parse(id)
	return err == nil && parsed.Version() == 4 && parsed.String() == id
}

type cartSession struct {
	mu   sync.Mutex
	cart *entity.Cart
	// lastUsed is guarded by CartUseCase.mutex, not mu.
	lastUsed time.Time
}

// CartUseCase keeps an in-memory cart per owner as the source of truth and
// mirrors every change to the owner's store. Operations for one owner run
// one at a time, in arrival order.
type CartUseCase struct {
	userCarts   repository.CartRepository
	guestCarts  repository.CartRepository
	productRepo repository.ProductRepository

	sessions  map[string]*cartSession
	mutex     sync.Mutex
	lastSweep time.Time
	ttl       time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func NewCartUseCase(
	userCarts repository.CartRepository,
	guestCarts repository.CartRepository,
	productRepo repository.ProductRepository,
	ttl time.Duration,
	logger *zap.Logger,
) *CartUseCase {
	if ttl <= 0 {
		ttl = defaultCartSessionTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartUseCase{
		userCarts:   userCarts,
		guestCarts:  guestCarts,
		productRepo: productRepo,
		sessions:    make(map[string]*cartSession),
		ttl:         ttl,
		now:         time.Now,
		logger:      logger,
	}
}

func (uc *CartUseCase) GetCart(ctx context.Context, owner CartOwner) (*entity.Cart, error) {
	var view *entity.Cart
	err := uc.withCart(ctx, owner, false, func(cart *entity.Cart) {
		view = snapshot(cart)
	})
	return view, err
}

// AddProduct looks the product up and adds one unit of it.
func (uc *CartUseCase) AddProduct(ctx context.Context, owner CartOwner, productID string) (*entity.Cart, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.Purchasable() {
		return nil, errors.Validation("product is not available for purchase")
	}

	return uc.AddItem(ctx, owner, entity.CartItem{
		ProductID:  product.ID,
		Title:      product.Title,
		UnitPrice:  product.Price,
		ImageRef:   product.PrimaryImage(),
		VendorID:   product.VendorID,
		VendorName: product.VendorName,
		MaxStock:   product.Stock,
	})
}

func (uc *CartUseCase) AddItem(ctx context.Context, owner CartOwner, item entity.CartItem) (*entity.Cart, error) {
	var view *entity.Cart
	err := uc.withCart(ctx, owner, true, func(cart *entity.Cart) {
		cart.AddItem(item)
		view = snapshot(cart)
	})
	return view, err
}

func (uc *CartUseCase) UpdateQuantity(ctx context.Context, owner CartOwner, productID string, qty int) (*entity.Cart, error) {
	var view *entity.Cart
	err := uc.withCart(ctx, owner, true, func(cart *entity.Cart) {
		cart.UpdateQuantity(productID, qty)
		view = snapshot(cart)
	})
	return view, err
}

func (uc *CartUseCase) RemoveItem(ctx context.Context, owner CartOwner, productID string) (*entity.Cart, error) {
	var view *entity.Cart
	err := uc.withCart(ctx, owner, true, func(cart *entity.Cart) {
		cart.RemoveItem(productID)
		view = snapshot(cart)
	})
	return view, err
}

// ClearCart empties the cart and immediately overwrites the stored copy.
func (uc *CartUseCase) ClearCart(ctx context.Context, owner CartOwner) (*entity.Cart, error) {
	var view *entity.Cart
	err := uc.withCart(ctx, owner, true, func(cart *entity.Cart) {
		cart.Clear()
		view = snapshot(cart)
	})
	return view, err
}

// Merge folds a guest cart into the user's cart at sign-in. Lines already in
// the user's cart win; guest-only lines are appended. The guest cart is
// deleted afterwards, so a second call for the same guest is a no-op.
func (uc *CartUseCase) Merge(ctx context.Context, userID, guestID string) (*entity.Cart, error) {
	user := CartOwner{UserID: userID}
	if guestID == "" {
		return uc.GetCart(ctx, user)
	}
	if userID == "" {
		return nil, errors.BadRequest("user id is required to merge a cart", nil)
	}

	guest := CartOwner{GuestID: guestID}
	var guestItems []entity.CartItem
	err := uc.withCart(ctx, guest, false, func(cart *entity.Cart) {
		guestItems = cart.Snapshot()
	})
	if err != nil {
		return nil, err
	}

	var view *entity.Cart
	err = uc.withCart(ctx, user, true, func(cart *entity.Cart) {
		cart.Merge(guestItems)
		view = snapshot(cart)
	})
	if err != nil {
		// the guest cart is kept so the merge can be retried
		return nil, err
	}

	uc.forget(guest)
	if err := uc.guestCarts.Delete(ctx, guestID); err != nil {
		uc.logger.Warn("failed to delete guest cart after merge", zap.String("guestId", guestID), zap.Error(err))
	}

	uc.logger.Info("guest cart merged",
		zap.String("uid", userID),
		zap.Int("guestItems", len(guestItems)),
		zap.Int("items", len(view.Items)))
	return view, nil
}

func (uc *CartUseCase) forget(owner CartOwner) {
	uc.mutex.Lock()
	delete(uc.sessions, owner.key())
	uc.mutex.Unlock()
}

// withCart runs fn on the owner's cart while holding the owner's lock, and
// writes the result to the owner's store when persist is set. A cart that
// cannot be loaded is neither cached nor written, so a read failure never
// overwrites what is stored.
func (uc *CartUseCase) withCart(ctx context.Context, owner CartOwner, persist bool, fn func(cart *entity.Cart)) error {
	if owner.ID() == "" {
		return errors.BadRequest("cart owner is required", nil)
	}
	if owner.IsGuest() && !ValidGuestID(owner.GuestID) {
		return errors.BadRequest("Guest session id must be one issued by the server", nil)
	}

	session := uc.session(owner.key())
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.cart == nil {
		cart, err := uc.load(ctx, owner)
		if err != nil {
			return err
		}
		session.cart = cart
	}

	fn(session.cart)

	if persist {
		session.cart.UpdatedAt = uc.now()
		uc.persist(ctx, owner, session.cart.Snapshot())
	}
	return nil
}

func (uc *CartUseCase) session(key string) *cartSession {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	now := uc.now()
	if now.Sub(uc.lastSweep) > uc.ttl/2 {
		uc.sweep(now)
		uc.lastSweep = now
	}

	s, ok := uc.sessions[key]
	if !ok {
		s = &cartSession{}
		uc.sessions[key] = s
	}
	s.lastUsed = now
	return s
}

// sweep drops idle sessions. Sessions busy in another request are skipped.
// Caller holds uc.mutex.
func (uc *CartUseCase) sweep(now time.Time) {
	for key, s := range uc.sessions {
		if !s.mu.TryLock() {
			continue
		}
		if now.Sub(s.lastUsed) > uc.ttl {
			delete(uc.sessions, key)
		}
		s.mu.Unlock()
	}
}

func (uc *CartUseCase) store(owner CartOwner) repository.CartRepository {
	if owner.IsGuest() {
		return uc.guestCarts
	}
	return uc.userCarts
}

func (uc *CartUseCase) load(ctx context.Context, owner CartOwner) (*entity.Cart, error) {
	items, err := uc.store(owner).GetItems(ctx, owner.ID())
	if err != nil {
		uc.logger.Error("failed to load cart",
			zap.String("owner", owner.key()),
			zap.Error(err))
		return nil, errors.Internal("Failed to load cart", err)
	}
	return entity.NewCart(owner.ID(), items), nil
}

func (uc *CartUseCase) persist(ctx context.Context, owner CartOwner, items []entity.CartItem) {
	if err := uc.store(owner).SaveItems(ctx, owner.ID(), items); err != nil {
		uc.logger.Warn("failed to persist cart",
			zap.String("owner", owner.key()),
			zap.Int("items", len(items)),
			zap.Error(err))
	}
}

func snapshot(cart *entity.Cart) *entity.Cart {
	return &entity.Cart{
		OwnerID:   cart.OwnerID,
		Items:     cart.Snapshot(),
		UpdatedAt: cart.UpdatedAt,
	}
}
