package services

import (
	"context"
	"errors"
	"time"

	"golang-cart-backend/internal/models"
	"golang-cart-backend/internal/repositories"
)

// CouponService backs the validate/apply contract the cart engine consumes,
// plus the minimal catalog management behind it.
type CouponService struct {
	couponRepo repositories.CouponRepository
}

func NewCouponService(couponRepo repositories.CouponRepository) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
	}
}

// Request and Response types
type CreateCouponRequest struct {
	Code               string   `json:"code" binding:"required"`
	Description        string   `json:"description"`
	DiscountType       string   `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue      float64  `json:"discount_value" binding:"required,min=0"`
	MinimumOrderAmount *float64 `json:"minimum_order_amount"`
	MaximumDiscount    *float64 `json:"maximum_discount"`
	UsageLimit         *int     `json:"usage_limit"`
	ValidFrom          string   `json:"valid_from" binding:"required"`
	ValidUntil         string   `json:"valid_until" binding:"required"`
	IsActive           bool     `json:"is_active"`
}

type CouponListResponse struct {
	Coupons    []models.Coupon `json:"coupons"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
}

type CouponValidationResponse struct {
	Valid   bool           `json:"valid"`
	Message string         `json:"message,omitempty"`
	Coupon  *models.Coupon `json:"coupon,omitempty"`
}

func (s *CouponService) CreateCoupon(ctx context.Context, req *CreateCouponRequest) (*models.Coupon, error) {
	validFrom, err := time.Parse("2006-01-02", req.ValidFrom)
	if err != nil {
		return nil, errors.New("invalid valid_from date format")
	}

	validUntil, err := time.Parse("2006-01-02", req.ValidUntil)
	if err != nil {
		return nil, errors.New("invalid valid_until date format")
	}

	if validUntil.Before(validFrom) {
		return nil, errors.New("valid_until must be after valid_from")
	}

	coupon := &models.Coupon{
		Code:          req.Code,
		Description:   req.Description,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		ValidFrom:     validFrom,
		ValidTo:       validUntil,
		IsActive:      req.IsActive,
	}

	if req.MinimumOrderAmount != nil {
		coupon.MinOrderValue = *req.MinimumOrderAmount
	}
	if req.MaximumDiscount != nil {
		coupon.MaxDiscount = *req.MaximumDiscount
	}
	if req.UsageLimit != nil {
		coupon.UsageLimit = *req.UsageLimit
	} else {
		coupon.UsageLimit = -1 // unlimited
	}

	if err := s.couponRepo.Create(ctx, coupon); err != nil {
		return nil, err
	}

	return coupon, nil
}

func (s *CouponService) GetCoupons(ctx context.Context, page, limit int, active *bool) (*CouponListResponse, error) {
	offset := (page - 1) * limit

	coupons, total, err := s.couponRepo.List(ctx, offset, limit, active)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &CouponListResponse{
		Coupons:    coupons,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

// Validate checks a code without committing anything: existence, active flag,
// validity window and usage limit.
func (s *CouponService) Validate(ctx context.Context, code string) (*CouponValidationResponse, error) {
	coupon, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		return &CouponValidationResponse{
			Valid:   false,
			Message: "Coupon not found",
		}, nil
	}

	if !coupon.IsActive {
		return &CouponValidationResponse{
			Valid:   false,
			Message: "Coupon is not active",
		}, nil
	}

	now := time.Now()
	if now.Before(coupon.ValidFrom) || now.After(coupon.ValidTo) {
		return &CouponValidationResponse{
			Valid:   false,
			Message: "Coupon has expired or is not yet valid",
		}, nil
	}

	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return &CouponValidationResponse{
			Valid:   false,
			Message: "Coupon usage limit exceeded",
		}, nil
	}

	return &CouponValidationResponse{
		Valid:   true,
		Message: "Coupon is valid",
		Coupon:  coupon,
	}, nil
}

// Apply computes the discount for a code against the supplied subtotal and
// records the use. The returned DiscountValue is the amount subtracted from
// the subtotal, not the coupon's configured rate.
func (s *CouponService) Apply(ctx context.Context, code string, subtotal float64) (*models.AppliedCoupon, error) {
	return s.apply(ctx, code, subtotal, true)
}

// Reapply recomputes an already-counted coupon against a new subtotal without
// recording another use. The merge-on-login path goes through this so moving
// a cart across domains does not burn a second use of the same coupon.
func (s *CouponService) Reapply(ctx context.Context, code string, subtotal float64) (*models.AppliedCoupon, error) {
	return s.apply(ctx, code, subtotal, false)
}

func (s *CouponService) apply(ctx context.Context, code string, subtotal float64, recordUse bool) (*models.AppliedCoupon, error) {
	validation, err := s.Validate(ctx, code)
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		return nil, errors.New(validation.Message)
	}
	coupon := validation.Coupon

	if coupon.MinOrderValue > 0 && subtotal < coupon.MinOrderValue {
		return nil, errors.New("order amount is below the coupon's minimum")
	}

	var discountAmount float64
	if coupon.DiscountType == models.DiscountTypePercentage {
		discountAmount = subtotal * (coupon.DiscountValue / 100)
		if coupon.MaxDiscount > 0 && discountAmount > coupon.MaxDiscount {
			discountAmount = coupon.MaxDiscount
		}
	} else {
		discountAmount = coupon.DiscountValue
	}
	if discountAmount > subtotal {
		discountAmount = subtotal
	}

	if recordUse {
		coupon.UsedCount++
		if err := s.couponRepo.Update(ctx, coupon); err != nil {
			return nil, err
		}
	}

	return &models.AppliedCoupon{
		ID:            coupon.ID.String(),
		Code:          coupon.Code,
		DiscountValue: discountAmount,
	}, nil
}
