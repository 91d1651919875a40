package services

import (
	"context"
	"errors"
	"time"

	"golang-cart-backend/internal/models"
	"golang-cart-backend/internal/repositories"
)

// CartBackend is the single mutation surface over both storage domains.
// Exactly one backend is live per session: local (anonymous, device-keyed
// durable store) or remote (authenticated, server-owned). Mutation logic in
// the engine never branches on the mode beyond picking the backend.
//
// Item identifier spaces differ per backend: the local backend addresses
// lines by productID, the remote backend by the server-assigned item row ID.
//
// UpdateItemQuantity reports whether a line actually changed; an unknown
// itemID is a quiet no-op, mirroring RemoveItem's idempotence.
type CartBackend interface {
	Load(ctx context.Context) (*models.CartState, error)
	AddItem(ctx context.Context, snapshot models.ProductSnapshot, quantity int) error
	UpdateItemQuantity(ctx context.Context, itemID string, quantity int) (bool, error)
	RemoveItem(ctx context.Context, itemID string) error
	Clear(ctx context.Context) error
}

// SnapshotSource reads the current authoritative product record.
type SnapshotSource interface {
	GetSnapshot(ctx context.Context, productID string) (*models.ProductSnapshot, error)
}

// CouponGateway is the validate/apply contract of the coupon backend. Apply
// computes the discount against the supplied subtotal and returns the
// server-assigned coupon id plus the discount amount. Reapply recomputes a
// previously applied coupon without counting another use.
type CouponGateway interface {
	Validate(ctx context.Context, code string) (*CouponValidationResponse, error)
	Apply(ctx context.Context, code string, subtotal float64) (*models.AppliedCoupon, error)
	Reapply(ctx context.Context, code string, subtotal float64) (*models.AppliedCoupon, error)
}

// RemoteCartService is the authoritative cart storage for authenticated
// identities. AddItem carries the service's duplicate-productID summation
// semantics: adding a product already in the cart increments its quantity.
type RemoteCartService interface {
	GetCart(ctx context.Context, userID string) (*models.CartState, error)
	AddItem(ctx context.Context, userID string, snapshot models.ProductSnapshot, quantity int) error
	UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, userID, itemID string) error
	Clear(ctx context.Context, userID string) error
	SetCoupon(ctx context.Context, userID string, couponID *string) error
}

// localCartBackend mutates the in-store anonymous cart. Every mutation is a
// read-modify-write against the Persistent Local Store so the durable record
// and the engine's view never diverge.
type localCartBackend struct {
	repo     repositories.LocalCartRepository
	deviceID string
}

func newLocalCartBackend(repo repositories.LocalCartRepository, deviceID string) CartBackend {
	return &localCartBackend{repo: repo, deviceID: deviceID}
}

func (b *localCartBackend) Load(ctx context.Context) (*models.CartState, error) {
	cart, err := b.repo.GetCart(ctx, b.deviceID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = &models.CartState{Items: []models.CartLine{}, LastUpdated: time.Now()}
	}
	return cart, nil
}

func (b *localCartBackend) AddItem(ctx context.Context, snapshot models.ProductSnapshot, quantity int) error {
	cart, err := b.Load(ctx)
	if err != nil {
		return err
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == snapshot.ProductID {
			// Increment only; the stored snapshot stays as taken at first
			// add. The refresh pass owns snapshot staleness.
			cart.Items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, models.CartLine{
			ProductID: snapshot.ProductID,
			Quantity:  quantity,
			Product:   snapshot,
		})
	}

	cart.LastUpdated = time.Now()
	return b.repo.SaveCart(ctx, b.deviceID, cart)
}

func (b *localCartBackend) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) (bool, error) {
	cart, err := b.Load(ctx)
	if err != nil {
		return false, err
	}

	for i := range cart.Items {
		if cart.Items[i].ProductID == itemID {
			cart.Items[i].Quantity = quantity
			cart.LastUpdated = time.Now()
			return true, b.repo.SaveCart(ctx, b.deviceID, cart)
		}
	}
	return false, nil
}

func (b *localCartBackend) RemoveItem(ctx context.Context, itemID string) error {
	cart, err := b.Load(ctx)
	if err != nil {
		return err
	}

	for i := range cart.Items {
		if cart.Items[i].ProductID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			cart.LastUpdated = time.Now()
			return b.repo.SaveCart(ctx, b.deviceID, cart)
		}
	}
	// No matching row is a silent no-op.
	return nil
}

func (b *localCartBackend) Clear(ctx context.Context) error {
	if err := b.repo.DeleteCart(ctx, b.deviceID); err != nil {
		return err
	}
	return b.repo.DeleteCoupon(ctx, b.deviceID)
}

// remoteCartBackend forwards every mutation to the remote service and keeps
// no optimistic local echo: a failed call leaves the last known-good state
// untouched.
type remoteCartBackend struct {
	svc    RemoteCartService
	userID string
}

func newRemoteCartBackend(svc RemoteCartService, userID string) CartBackend {
	return &remoteCartBackend{svc: svc, userID: userID}
}

func (b *remoteCartBackend) Load(ctx context.Context) (*models.CartState, error) {
	return b.svc.GetCart(ctx, b.userID)
}

func (b *remoteCartBackend) AddItem(ctx context.Context, snapshot models.ProductSnapshot, quantity int) error {
	return b.svc.AddItem(ctx, b.userID, snapshot, quantity)
}

func (b *remoteCartBackend) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) (bool, error) {
	err := b.svc.UpdateItemQuantity(ctx, b.userID, itemID, quantity)
	if errors.Is(err, ErrCartItemNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (b *remoteCartBackend) RemoveItem(ctx context.Context, itemID string) error {
	return b.svc.RemoveItem(ctx, b.userID, itemID)
}

func (b *remoteCartBackend) Clear(ctx context.Context) error {
	return b.svc.Clear(ctx, b.userID)
}
