package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang-cart-backend/internal/models"
	"golang-cart-backend/internal/repositories"
)

// CartMode is the engine's finite state per session:
// Uninitialized -> Anonymous -> Syncing -> Authenticated.
type CartMode int

const (
	ModeUninitialized CartMode = iota
	ModeAnonymous
	ModeSyncing
	ModeAuthenticated
)

func (m CartMode) String() string {
	switch m {
	case ModeAnonymous:
		return "anonymous"
	case ModeSyncing:
		return "syncing"
	case ModeAuthenticated:
		return "authenticated"
	}
	return "uninitialized"
}

var (
	// ErrSyncInProgress is returned for mutations attempted while the
	// one-shot merge-on-login transition is running.
	ErrSyncInProgress = errors.New("cart sync in progress")

	// ErrSessionNotReady is returned for operations against a session that
	// has not been hydrated yet.
	ErrSessionNotReady = errors.New("cart session not initialized")

	// ErrBlankCouponCode rejects an apply call before any state is touched.
	ErrBlankCouponCode = errors.New("coupon code is required")
)

// CartSession holds the live cart state for one browsing context. Exactly one
// representation contributes to it at a time: the anonymous (local) cart or
// the authenticated (remote) one, selected by the backend.
type CartSession struct {
	mu       sync.Mutex
	deviceID string
	userID   string
	mode     CartMode
	backend  CartBackend
	cart     *models.CartState
	coupon   *models.AppliedCoupon
	loading  bool
}

func (s *CartSession) Mode() CartMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *CartSession) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Cart returns a copy of the current cart state.
func (s *CartSession) Cart() models.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart == nil {
		return models.CartState{Items: []models.CartLine{}}
	}
	out := models.CartState{
		Items:       make([]models.CartLine, len(s.cart.Items)),
		LastUpdated: s.cart.LastUpdated,
	}
	copy(out.Items, s.cart.Items)
	return out
}

func (s *CartSession) AppliedCoupon() *models.AppliedCoupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.coupon == nil {
		return nil
	}
	c := *s.coupon
	return &c
}

// guard enforces the mode FSM on mutations: nothing interleaves with a
// running merge, nothing runs before hydration.
func (s *CartSession) guard() error {
	switch s.mode {
	case ModeSyncing:
		return ErrSyncInProgress
	case ModeUninitialized:
		return ErrSessionNotReady
	}
	return nil
}

// CartEngine owns cart state across the two storage domains and reconciles
// them: mode transitions, mutations, coupon lifecycle, merge-on-login and the
// price/stock drift refresh.
type CartEngine struct {
	localRepo repositories.LocalCartRepository
	remote    RemoteCartService
	snapshots SnapshotSource
	coupons   CouponGateway
	sink      NotificationSink
	freshness time.Duration

	mu       sync.Mutex
	sessions map[string]*CartSession
}

func NewCartEngine(
	localRepo repositories.LocalCartRepository,
	remote RemoteCartService,
	snapshots SnapshotSource,
	coupons CouponGateway,
	sink NotificationSink,
	freshness time.Duration,
) *CartEngine {
	return &CartEngine{
		localRepo: localRepo,
		remote:    remote,
		snapshots: snapshots,
		coupons:   coupons,
		sink:      sink,
		freshness: freshness,
		sessions:  make(map[string]*CartSession),
	}
}

func (e *CartEngine) session(deviceID string) *CartSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[deviceID]
	if !ok {
		s = &CartSession{deviceID: deviceID, mode: ModeUninitialized}
		e.sessions[deviceID] = s
	}
	return s
}

// Hydrate resolves the session for a device and settles its mode. An empty
// userID keeps (or makes) the session anonymous; a userID on a session that
// still holds a non-empty anonymous cart triggers the one-shot merge.
func (e *CartEngine) Hydrate(ctx context.Context, deviceID, userID string) (*CartSession, error) {
	s := e.session(deviceID)
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case userID == "":
		if s.mode == ModeUninitialized {
			return s, e.hydrateAnonymous(ctx, s)
		}
		return s, nil

	case s.mode == ModeUninitialized, s.mode == ModeAnonymous:
		return s, e.hydrateAuthenticated(ctx, s, userID)

	default:
		// Already authenticated (or mid-sync under this lock, which cannot
		// happen). Refresh the view from the server.
		return s, e.reload(ctx, s)
	}
}

func (e *CartEngine) hydrateAnonymous(ctx context.Context, s *CartSession) error {
	s.backend = newLocalCartBackend(e.localRepo, s.deviceID)
	cart, err := s.backend.Load(ctx)
	if err != nil {
		return err
	}

	// Freshness check happens exactly once, at hydration.
	if time.Since(cart.LastUpdated) > e.freshness {
		cart = e.refreshPass(ctx, s, cart)
	}
	s.cart = cart

	if coupon, err := e.localRepo.GetCoupon(ctx, s.deviceID); err == nil {
		s.coupon = coupon
	}

	s.mode = ModeAnonymous
	return nil
}

func (e *CartEngine) hydrateAuthenticated(ctx context.Context, s *CartSession, userID string) error {
	s.userID = userID

	local, err := e.localRepo.GetCart(ctx, s.deviceID)
	if err != nil {
		log.Printf("Failed to read local cart for %s: %v", s.deviceID, err)
	}

	if local != nil && len(local.Items) > 0 {
		// One-shot, non-reentrant: mutations are rejected until the merge
		// settles.
		s.mode = ModeSyncing
		e.syncLocalCart(ctx, s, local)
		return nil
	}

	s.mode = ModeAuthenticated
	s.backend = newRemoteCartBackend(e.remote, userID)
	return e.reload(ctx, s)
}

// reload re-reads the live representation into the session view.
func (e *CartEngine) reload(ctx context.Context, s *CartSession) error {
	cart, err := s.backend.Load(ctx)
	if err != nil {
		return err
	}
	s.cart = cart
	return nil
}

// AddItem adds a product to the live cart, summing quantities for a product
// already present. The stock ceiling is deliberately not enforced here: the
// remote service is authoritative for the authenticated path and the
// purchase-quantity UI guards the local one.
func (e *CartEngine) AddItem(ctx context.Context, s *CartSession, snapshot models.ProductSnapshot, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}

	s.loading = true
	defer func() { s.loading = false }()

	if err := s.backend.AddItem(ctx, snapshot, quantity); err != nil {
		e.fail(ctx, s, "Could not add item to cart", err)
		return err
	}
	if err := e.reload(ctx, s); err != nil {
		return err
	}

	e.notify(ctx, s, EventItemAdded, LevelSuccess, "Item added to cart", map[string]interface{}{
		"product_id": snapshot.ProductID,
		"quantity":   quantity,
	})
	return nil
}

// UpdateItemQuantity sets an absolute quantity on a cart line. Quantities
// below 1 are a no-op; callers remove lines through RemoveItem. The itemID is
// a productID for the anonymous representation and the remote row ID for the
// authenticated one.
func (e *CartEngine) UpdateItemQuantity(ctx context.Context, s *CartSession, itemID string, quantity int) error {
	if quantity < 1 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}

	s.loading = true
	defer func() { s.loading = false }()

	changed, err := s.backend.UpdateItemQuantity(ctx, itemID, quantity)
	if err != nil {
		e.fail(ctx, s, "Could not update item quantity", err)
		return err
	}
	if !changed {
		// Unknown line: nothing moved, nothing to announce.
		return nil
	}
	if err := e.reload(ctx, s); err != nil {
		return err
	}

	e.notify(ctx, s, EventItemUpdated, LevelSuccess, "Cart updated", map[string]interface{}{
		"item_id":  itemID,
		"quantity": quantity,
	})
	return nil
}

// RemoveItem removes a cart line. A missing line is a silent no-op.
func (e *CartEngine) RemoveItem(ctx context.Context, s *CartSession, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}

	s.loading = true
	defer func() { s.loading = false }()

	if err := s.backend.RemoveItem(ctx, itemID); err != nil {
		e.fail(ctx, s, "Could not remove item from cart", err)
		return err
	}
	if err := e.reload(ctx, s); err != nil {
		return err
	}

	e.notify(ctx, s, EventItemRemoved, LevelSuccess, "Item removed from cart", map[string]interface{}{
		"item_id": itemID,
	})
	return nil
}

// ClearCart empties the live cart and drops any applied coupon with it.
func (e *CartEngine) ClearCart(ctx context.Context, s *CartSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}

	s.loading = true
	defer func() { s.loading = false }()

	if err := s.backend.Clear(ctx); err != nil {
		e.fail(ctx, s, "Could not clear cart", err)
		return err
	}
	s.coupon = nil
	if err := e.reload(ctx, s); err != nil {
		return err
	}

	e.notify(ctx, s, EventCartCleared, LevelSuccess, "Cart cleared", nil)
	return nil
}

// ApplyCoupon runs the validate+apply round trip against the current
// discounted subtotal. Any failure after the blank-code check clears the
// previously active coupon; a failed apply does not restore the prior one.
func (e *CartEngine) ApplyCoupon(ctx context.Context, s *CartSession, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrBlankCouponCode
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}

	s.loading = true
	defer func() { s.loading = false }()

	var subtotal float64
	if s.cart != nil {
		subtotal = ComputeTotals(s.cart.Items, time.Now()).DiscountedSubtotal
	}

	validation, err := e.coupons.Validate(ctx, code)
	if err != nil {
		e.clearCoupon(ctx, s)
		e.fail(ctx, s, "Could not validate coupon", err)
		return err
	}
	if !validation.Valid {
		e.clearCoupon(ctx, s)
		err := errors.New(validation.Message)
		e.fail(ctx, s, "Coupon rejected", err)
		return err
	}

	applied, err := e.coupons.Apply(ctx, code, subtotal)
	if err != nil {
		e.clearCoupon(ctx, s)
		e.fail(ctx, s, "Could not apply coupon", err)
		return err
	}

	s.coupon = applied
	switch s.mode {
	case ModeAnonymous:
		if err := e.localRepo.SaveCoupon(ctx, s.deviceID, applied); err != nil {
			log.Printf("Failed to persist coupon for %s: %v", s.deviceID, err)
		}
	case ModeAuthenticated:
		if err := e.remote.SetCoupon(ctx, s.userID, &applied.ID); err != nil {
			log.Printf("Failed to attach coupon to server cart: %v", err)
		}
	}

	e.notify(ctx, s, EventCouponApplied, LevelSuccess, fmt.Sprintf("Coupon %s applied", applied.Code), map[string]interface{}{
		"coupon_id":      applied.ID,
		"discount_value": applied.DiscountValue,
	})
	return nil
}

// RemoveCoupon unconditionally clears the active coupon.
func (e *CartEngine) RemoveCoupon(ctx context.Context, s *CartSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}

	e.clearCoupon(ctx, s)
	e.notify(ctx, s, EventCouponCleared, LevelInfo, "Coupon removed", nil)
	return nil
}

// clearCoupon drops the active coupon from the session and from whichever
// store backs it. Best-effort: a store failure leaves the coupon cleared
// in-session, which is the safe direction.
func (e *CartEngine) clearCoupon(ctx context.Context, s *CartSession) {
	s.coupon = nil
	switch s.mode {
	case ModeAnonymous:
		if err := e.localRepo.DeleteCoupon(ctx, s.deviceID); err != nil {
			log.Printf("Failed to delete local coupon for %s: %v", s.deviceID, err)
		}
	case ModeAuthenticated:
		if err := e.remote.SetCoupon(ctx, s.userID, nil); err != nil {
			log.Printf("Failed to detach coupon from server cart: %v", err)
		}
	}
}

// GetCartTotals recomputes totals from the live item set.
func (e *CartEngine) GetCartTotals(s *CartSession) models.CartTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart == nil {
		return models.CartTotals{}
	}
	return ComputeTotals(s.cart.Items, time.Now())
}

func (e *CartEngine) notify(ctx context.Context, s *CartSession, t CartEventType, level, message string, data map[string]interface{}) {
	e.sink.Notify(ctx, CartEvent{
		Type:      t,
		SessionID: s.deviceID,
		Level:     level,
		Message:   message,
		Data:      data,
	})
}

func (e *CartEngine) fail(ctx context.Context, s *CartSession, message string, err error) {
	e.notify(ctx, s, EventOperationFailed, LevelError, message, map[string]interface{}{
		"error": err.Error(),
	})
}
