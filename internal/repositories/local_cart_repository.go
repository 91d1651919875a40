package repositories

import (
	"context"
	"errors"
	"golang-cart-backend/internal/models"
	"golang-cart-backend/pkg/cache"

	"github.com/go-redis/redis/v8"
)

const (
	localCartPrefix   = "localcart"
	localCouponPrefix = "localcoupon"
)

// localCartRepository is the Redis-backed Persistent Local Store. Records are
// durable (no TTL) and survive until explicitly cleared or merged; the device
// ID is the single-writer key for one browsing context.
type localCartRepository struct {
	store *cache.RedisCache
}

func NewLocalCartRepository(store *cache.RedisCache) LocalCartRepository {
	return &localCartRepository{store: store}
}

func (r *localCartRepository) GetCart(ctx context.Context, deviceID string) (*models.CartState, error) {
	var cart models.CartState
	err := r.store.GetWithPrefix(ctx, localCartPrefix, deviceID, &cart)
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *localCartRepository) SaveCart(ctx context.Context, deviceID string, cart *models.CartState) error {
	return r.store.SetWithPrefix(ctx, localCartPrefix, deviceID, cart, 0)
}

func (r *localCartRepository) DeleteCart(ctx context.Context, deviceID string) error {
	return r.store.DeleteWithPrefix(ctx, localCartPrefix, deviceID)
}

func (r *localCartRepository) GetCoupon(ctx context.Context, deviceID string) (*models.AppliedCoupon, error) {
	var coupon models.AppliedCoupon
	err := r.store.GetWithPrefix(ctx, localCouponPrefix, deviceID, &coupon)
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *localCartRepository) SaveCoupon(ctx context.Context, deviceID string, coupon *models.AppliedCoupon) error {
	return r.store.SetWithPrefix(ctx, localCouponPrefix, deviceID, coupon, 0)
}

func (r *localCartRepository) DeleteCoupon(ctx context.Context, deviceID string) error {
	return r.store.DeleteWithPrefix(ctx, localCouponPrefix, deviceID)
}
