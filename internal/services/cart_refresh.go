package services

import (
	"context"
	"log"
	"time"

	"golang-cart-backend/internal/models"
)

// refreshPass re-validates a stale anonymous cart against the catalog before
// the cart is first exposed. Per item: a failed fetch keeps the stale
// snapshot (fail-open), a deactivated product drops the line (fail-closed),
// anything else gets its snapshot replaced. The reconciled cart is written
// back immediately so the pass is not repeated within the freshness window.
func (e *CartEngine) refreshPass(ctx context.Context, s *CartSession, cart *models.CartState) *models.CartState {
	now := time.Now()
	kept := make([]models.CartLine, 0, len(cart.Items))
	var pruned []string
	pricesChanged := false

	for _, item := range cart.Items {
		snap, err := e.snapshots.GetSnapshot(ctx, item.ProductID)
		if err != nil {
			log.Printf("Refresh: keeping stale snapshot for product %s: %v", item.ProductID, err)
			kept = append(kept, item)
			continue
		}
		if !snap.IsActive {
			pruned = append(pruned, item.Product.Name)
			continue
		}
		if DiscountedUnitPrice(item.Product, now) != DiscountedUnitPrice(*snap, now) {
			pricesChanged = true
		}
		item.Product = *snap
		kept = append(kept, item)
	}

	cart.Items = kept
	cart.LastUpdated = now
	if err := e.localRepo.SaveCart(ctx, s.deviceID, cart); err != nil {
		log.Printf("Refresh: failed to persist reconciled cart for %s: %v", s.deviceID, err)
	}

	if pricesChanged {
		e.notify(ctx, s, EventPricesUpdated, LevelInfo, "Some prices in your cart were updated", nil)
	}
	if len(pruned) > 0 {
		e.notify(ctx, s, EventItemsPruned, LevelInfo, "Some items are no longer available and were removed", map[string]interface{}{
			"removed": pruned,
		})
	}
	return cart
}

// RemoveInactiveProducts prunes deactivated products from whichever
// representation is live. The price-refresh half of the hydration pass is
// deliberately not repeated here; checkout-adjacent flows only need the
// availability check.
func (e *CartEngine) RemoveInactiveProducts(ctx context.Context, s *CartSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}

	s.loading = true
	defer func() { s.loading = false }()

	if s.cart == nil {
		return e.reload(ctx, s)
	}

	var pruned []string
	for _, item := range s.cart.Items {
		snap, err := e.snapshots.GetSnapshot(ctx, item.ProductID)
		if err != nil {
			// Fail-open, same as the hydration pass.
			continue
		}
		if snap.IsActive {
			continue
		}

		itemID := item.ProductID
		if s.mode == ModeAuthenticated {
			itemID = item.ItemID
		}
		if err := s.backend.RemoveItem(ctx, itemID); err != nil {
			log.Printf("Prune: failed to remove inactive product %s: %v", item.ProductID, err)
			continue
		}
		pruned = append(pruned, item.Product.Name)
	}

	if err := e.reload(ctx, s); err != nil {
		return err
	}

	if len(pruned) > 0 {
		e.notify(ctx, s, EventItemsPruned, LevelInfo, "Unavailable items were removed from your cart", map[string]interface{}{
			"removed": pruned,
		})
	}
	return nil
}
