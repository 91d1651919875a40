package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang-cart-backend/internal/models"
)

// syncLocalCart drains a non-empty anonymous cart into the remote service.
// Called with the session lock held and mode already set to Syncing.
//
// The merge is best-effort, not atomic: each item call is independent and a
// failure on one does not abort the rest. Items migrate sequentially so the
// remote side's duplicate-productID summation stays deterministic and
// partial-failure accounting stays simple. The coupon is re-applied after all
// items against the freshly computed subtotal; items win over coupon, so a
// coupon failure never rolls anything back. The local store is cleared on
// completion regardless.
func (e *CartEngine) syncLocalCart(ctx context.Context, s *CartSession, local *models.CartState) {
	migrated := 0
	failed := 0

	for _, line := range local.Items {
		if err := e.remote.AddItem(ctx, s.userID, line.Product, line.Quantity); err != nil {
			failed++
			log.Printf("Cart sync: failed to migrate product %s for user %s: %v", line.ProductID, s.userID, err)
			e.notify(ctx, s, EventOperationFailed, LevelError,
				fmt.Sprintf("Could not move %s to your cart", line.Product.Name),
				map[string]interface{}{"product_id": line.ProductID})
			continue
		}
		migrated++
	}

	if coupon, err := e.localRepo.GetCoupon(ctx, s.deviceID); err == nil && coupon != nil {
		e.reapplyCoupon(ctx, s, coupon.Code)
	}

	if err := e.localRepo.DeleteCart(ctx, s.deviceID); err != nil {
		log.Printf("Cart sync: failed to clear local cart for %s: %v", s.deviceID, err)
	}
	if err := e.localRepo.DeleteCoupon(ctx, s.deviceID); err != nil {
		log.Printf("Cart sync: failed to clear local coupon for %s: %v", s.deviceID, err)
	}

	// Settle regardless of per-item outcome. A failed reload leaves an empty
	// view rather than no view; the next successful operation repopulates it.
	s.mode = ModeAuthenticated
	s.backend = newRemoteCartBackend(e.remote, s.userID)
	if err := e.reload(ctx, s); err != nil {
		log.Printf("Cart sync: failed to load server cart for user %s: %v", s.userID, err)
		s.cart = &models.CartState{Items: []models.CartLine{}, LastUpdated: time.Now()}
	}

	e.notify(ctx, s, EventCartSynced, LevelSuccess, "Your cart has been synced", map[string]interface{}{
		"migrated": migrated,
		"failed":   failed,
	})
}

// reapplyCoupon re-runs coupon application server-side against the migrated
// cart's discounted subtotal. Failure is surfaced but never fatal to the
// sync; per the asymmetric policy the prior coupon is not restored.
func (e *CartEngine) reapplyCoupon(ctx context.Context, s *CartSession, code string) {
	state, err := e.remote.GetCart(ctx, s.userID)
	if err != nil {
		log.Printf("Cart sync: could not read server cart to re-apply coupon %s: %v", code, err)
		return
	}

	// The use was already recorded when the coupon was first applied
	// anonymously; re-application only recomputes against the merged cart.
	subtotal := ComputeTotals(state.Items, time.Now()).DiscountedSubtotal
	applied, err := e.coupons.Reapply(ctx, code, subtotal)
	if err != nil {
		log.Printf("Cart sync: failed to re-apply coupon %s for user %s: %v", code, s.userID, err)
		e.notify(ctx, s, EventOperationFailed, LevelError,
			fmt.Sprintf("Coupon %s could not be re-applied", code), nil)
		return
	}

	s.coupon = applied
	if err := e.remote.SetCoupon(ctx, s.userID, &applied.ID); err != nil {
		log.Printf("Cart sync: failed to attach coupon %s to server cart: %v", code, err)
	}
}
