package services

import (
	"time"

	"golang-cart-backend/internal/models"
)

// DiscountedUnitPrice returns the effective per-unit price of a snapshot at
// the given instant. A product discount only applies when the type and value
// are set and now falls inside [DiscountStartDate, DiscountEndDate]
// inclusive; otherwise the list price stands.
func DiscountedUnitPrice(p models.ProductSnapshot, now time.Time) float64 {
	if p.DiscountType == "" || p.DiscountValue == 0 {
		return p.SellingPrice
	}
	if p.DiscountStartDate == nil || p.DiscountEndDate == nil {
		return p.SellingPrice
	}
	if now.Before(*p.DiscountStartDate) || now.After(*p.DiscountEndDate) {
		return p.SellingPrice
	}

	switch p.DiscountType {
	case models.DiscountTypeFixed:
		return p.SellingPrice - p.DiscountValue
	case models.DiscountTypePercentage:
		return p.SellingPrice * (1 - p.DiscountValue/100)
	}
	return p.SellingPrice
}

// ComputeTotals derives cart totals from the given item set. Items whose
// snapshot is inactive contribute nothing but are not removed here; pruning
// is the engine's job. Pure and side-effect-free, called on every read.
func ComputeTotals(items []models.CartLine, now time.Time) models.CartTotals {
	var totals models.CartTotals

	for _, item := range items {
		if !item.Product.IsActive {
			continue
		}

		qty := float64(item.Quantity)
		totals.ItemCount += item.Quantity
		totals.ProductCount++
		totals.OriginalSubtotal += item.Product.SellingPrice * qty
		totals.DiscountedSubtotal += DiscountedUnitPrice(item.Product, now) * qty
	}

	totals.ProductDiscounts = totals.OriginalSubtotal - totals.DiscountedSubtotal
	return totals
}
