package models

import "time"

// Discount types recognised on a product snapshot and on coupons.
const (
	DiscountTypeFixed      = "fixed"
	DiscountTypePercentage = "percentage"
)

// ProductSnapshot is a point-in-time copy of a product's commerce-relevant
// fields, taken when the product is added to a cart. It can go stale relative
// to the catalog; the refresh pass in the engine is what brings it back.
type ProductSnapshot struct {
	ProductID         string     `json:"product_id"`
	Name              string     `json:"name,omitempty"`
	SellingPrice      float64    `json:"selling_price"`
	DiscountType      string     `json:"discount_type,omitempty"` // fixed, percentage, empty for none
	DiscountValue     float64    `json:"discount_value,omitempty"`
	DiscountStartDate *time.Time `json:"discount_start_date,omitempty"`
	DiscountEndDate   *time.Time `json:"discount_end_date,omitempty"`
	Stock             int        `json:"stock"`
	IsActive          bool       `json:"is_active"`
}

// CartLine is one row of a cart, anonymous or authenticated.
//
// ItemID is the remote row identifier and is only set on lines loaded from
// the authenticated cart. Anonymous lines are addressed by ProductID; the
// two identifier spaces are not interchangeable.
type CartLine struct {
	ItemID    string          `json:"item_id,omitempty"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Product   ProductSnapshot `json:"product"`
}

// CartState is the engine's view of whichever cart representation is live.
type CartState struct {
	Items       []CartLine `json:"items"`
	LastUpdated time.Time  `json:"last_updated"`
}

// AppliedCoupon is the coupon record attached to a cart after a successful
// validate+apply round trip. At most one per cart.
type AppliedCoupon struct {
	ID            string  `json:"id"`
	Code          string  `json:"code"`
	DiscountValue float64 `json:"discount_value"`
}

// CartTotals is derived from the current item set on every read, never stored.
type CartTotals struct {
	ItemCount          int     `json:"item_count"`
	ProductCount       int     `json:"product_count"`
	OriginalSubtotal   float64 `json:"original_subtotal"`
	DiscountedSubtotal float64 `json:"discounted_subtotal"`
	ProductDiscounts   float64 `json:"product_discounts"`
}
