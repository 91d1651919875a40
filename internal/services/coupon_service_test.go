package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang-cart-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCouponRepo struct {
	byCode map[string]*models.Coupon
}

func newFakeCouponRepo(coupons ...*models.Coupon) *fakeCouponRepo {
	r := &fakeCouponRepo{byCode: make(map[string]*models.Coupon)}
	for _, c := range coupons {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		r.byCode[c.Code] = c
	}
	return r
}

func (r *fakeCouponRepo) Create(_ context.Context, coupon *models.Coupon) error {
	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}
	r.byCode[coupon.Code] = coupon
	return nil
}

func (r *fakeCouponRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Coupon, error) {
	for _, c := range r.byCode {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, errors.New("coupon not found")
}

func (r *fakeCouponRepo) GetByCode(_ context.Context, code string) (*models.Coupon, error) {
	c, ok := r.byCode[code]
	if !ok {
		return nil, errors.New("coupon not found")
	}
	return c, nil
}

func (r *fakeCouponRepo) Update(_ context.Context, coupon *models.Coupon) error {
	r.byCode[coupon.Code] = coupon
	return nil
}

func (r *fakeCouponRepo) Delete(_ context.Context, id uuid.UUID) error {
	for code, c := range r.byCode {
		if c.ID == id {
			delete(r.byCode, code)
			return nil
		}
	}
	return nil
}

func (r *fakeCouponRepo) List(_ context.Context, offset, limit int, active *bool) ([]models.Coupon, int64, error) {
	var out []models.Coupon
	for _, c := range r.byCode {
		if active != nil && c.IsActive != *active {
			continue
		}
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func validCoupon(code string) *models.Coupon {
	return &models.Coupon{
		ID:            uuid.New(),
		Code:          code,
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 50,
		ValidFrom:     time.Now().Add(-24 * time.Hour),
		ValidTo:       time.Now().Add(24 * time.Hour),
		UsageLimit:    -1,
		IsActive:      true,
	}
}

func TestCouponValidate(t *testing.T) {
	expired := validCoupon("EXPIRED")
	expired.ValidTo = time.Now().Add(-time.Hour)

	inactive := validCoupon("INACTIVE")
	inactive.IsActive = false

	exhausted := validCoupon("EXHAUSTED")
	exhausted.UsageLimit = 3
	exhausted.UsedCount = 3

	svc := NewCouponService(newFakeCouponRepo(validCoupon("GOOD"), expired, inactive, exhausted))
	ctx := context.Background()

	tests := []struct {
		code  string
		valid bool
	}{
		{"GOOD", true},
		{"NOPE", false},
		{"EXPIRED", false},
		{"INACTIVE", false},
		{"EXHAUSTED", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			resp, err := svc.Validate(ctx, tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, resp.Valid)
			if !tt.valid {
				assert.NotEmpty(t, resp.Message)
			}
		})
	}
}

func TestCouponApplyFixedDiscount(t *testing.T) {
	repo := newFakeCouponRepo(validCoupon("FLAT50"))
	svc := NewCouponService(repo)

	applied, err := svc.Apply(context.Background(), "FLAT50", 400)
	require.NoError(t, err)

	assert.Equal(t, "FLAT50", applied.Code)
	assert.InDelta(t, 50.0, applied.DiscountValue, 0.001)
	assert.Equal(t, 1, repo.byCode["FLAT50"].UsedCount)
}

func TestCouponApplyPercentageWithCap(t *testing.T) {
	pct := validCoupon("PCT20")
	pct.DiscountType = models.DiscountTypePercentage
	pct.DiscountValue = 20
	pct.MaxDiscount = 60
	svc := NewCouponService(newFakeCouponRepo(pct))
	ctx := context.Background()

	// 20% of 200 is under the cap.
	applied, err := svc.Apply(ctx, "PCT20", 200)
	require.NoError(t, err)
	assert.InDelta(t, 40.0, applied.DiscountValue, 0.001)

	// 20% of 500 would be 100; the cap wins.
	applied, err = svc.Apply(ctx, "PCT20", 500)
	require.NoError(t, err)
	assert.InDelta(t, 60.0, applied.DiscountValue, 0.001)
}

func TestCouponReapplyDoesNotCountUse(t *testing.T) {
	repo := newFakeCouponRepo(validCoupon("FLAT50"))
	svc := NewCouponService(repo)
	ctx := context.Background()

	_, err := svc.Apply(ctx, "FLAT50", 400)
	require.NoError(t, err)

	applied, err := svc.Reapply(ctx, "FLAT50", 600)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, applied.DiscountValue, 0.001)

	// One purchase, one use: the recompute does not burn a second one.
	assert.Equal(t, 1, repo.byCode["FLAT50"].UsedCount)
}

func TestCouponApplyClampsToSubtotal(t *testing.T) {
	svc := NewCouponService(newFakeCouponRepo(validCoupon("FLAT50")))

	applied, err := svc.Apply(context.Background(), "FLAT50", 30)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, applied.DiscountValue, 0.001)
}

func TestCouponApplyMinimumOrderValue(t *testing.T) {
	minOrder := validCoupon("MIN500")
	minOrder.MinOrderValue = 500
	svc := NewCouponService(newFakeCouponRepo(minOrder))
	ctx := context.Background()

	_, err := svc.Apply(ctx, "MIN500", 400)
	assert.Error(t, err)

	applied, err := svc.Apply(ctx, "MIN500", 600)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, applied.DiscountValue, 0.001)
}

func TestCouponApplyInvalidCode(t *testing.T) {
	svc := NewCouponService(newFakeCouponRepo())

	_, err := svc.Apply(context.Background(), "NOPE", 100)
	assert.Error(t, err)
}

func TestCreateCoupon(t *testing.T) {
	repo := newFakeCouponRepo()
	svc := NewCouponService(repo)
	ctx := context.Background()

	coupon, err := svc.CreateCoupon(ctx, &CreateCouponRequest{
		Code:          "NEW10",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 10,
		ValidFrom:     "2026-01-01",
		ValidUntil:    "2026-12-31",
		IsActive:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, "NEW10", coupon.Code)
	assert.Equal(t, -1, coupon.UsageLimit)
	assert.Contains(t, repo.byCode, "NEW10")

	_, err = svc.CreateCoupon(ctx, &CreateCouponRequest{
		Code:          "BACKWARDS",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 10,
		ValidFrom:     "2026-12-31",
		ValidUntil:    "2026-01-01",
	})
	assert.Error(t, err)
}
