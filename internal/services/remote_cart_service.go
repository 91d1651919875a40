package services

import (
	"context"
	"errors"
	"time"

	"golang-cart-backend/internal/models"
	"golang-cart-backend/internal/repositories"
	"golang-cart-backend/pkg/cache"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const cartCacheTTL = 10 * time.Minute

// ErrCartItemNotFound reports an operation against a row that is not in the
// user's cart.
var ErrCartItemNotFound = errors.New("cart item not found")

// remoteCartService is the Postgres-backed authoritative cart store for
// authenticated identities. Reads go through a short-lived Redis cache;
// every mutation invalidates it.
type remoteCartService struct {
	cartRepo repositories.CartRepository
	itemRepo repositories.CartItemRepository
	cache    *cache.RedisCache
}

func NewRemoteCartService(
	cartRepo repositories.CartRepository,
	itemRepo repositories.CartItemRepository,
	cache *cache.RedisCache,
) RemoteCartService {
	return &remoteCartService{
		cartRepo: cartRepo,
		itemRepo: itemRepo,
		cache:    cache,
	}
}

func (s *remoteCartService) getOrCreateCart(ctx context.Context, userID string) (*models.Cart, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, errors.New("invalid user ID")
	}

	cart, err := s.cartRepo.GetByUserID(ctx, uid)
	if err != nil {
		cart = &models.Cart{
			UserID:    uid,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := s.cartRepo.Create(ctx, cart); err != nil {
			return nil, err
		}
	}
	return cart, nil
}

func (s *remoteCartService) GetCart(ctx context.Context, userID string) (*models.CartState, error) {
	cacheKey := "cart:" + userID
	if s.cache != nil {
		var cached models.CartState
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.itemRepo.GetByCartID(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	state := &models.CartState{
		Items:       make([]models.CartLine, 0, len(rows)),
		LastUpdated: cart.UpdatedAt,
	}
	for i := range rows {
		state.Items = append(state.Items, rows[i].Line())
	}

	if s.cache != nil {
		s.cache.Set(ctx, cacheKey, state, cartCacheTTL)
	}
	return state, nil
}

func (s *remoteCartService) AddItem(ctx context.Context, userID string, snapshot models.ProductSnapshot, quantity int) error {
	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return err
	}

	item, err := s.itemRepo.GetByCartAndProduct(ctx, cart.ID, snapshot.ProductID)
	switch {
	case err == nil:
		// Duplicate-productID summation: quantities add up, the stored
		// snapshot stays as first taken.
		item.Quantity += quantity
		if err := s.itemRepo.Update(ctx, item); err != nil {
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = &models.CartItem{
			CartID:    cart.ID,
			ProductID: snapshot.ProductID,
			Quantity:  quantity,
			Snapshot:  models.SnapshotJSON(snapshot),
		}
		if err := s.itemRepo.Create(ctx, item); err != nil {
			return err
		}
	default:
		return err
	}

	return s.touch(ctx, cart, userID)
}

func (s *remoteCartService) UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) error {
	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(itemID)
	if err != nil {
		return errors.New("invalid cart item ID")
	}

	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return ErrCartItemNotFound
	}
	if item.CartID != cart.ID {
		return ErrCartItemNotFound
	}

	item.Quantity = quantity
	if err := s.itemRepo.Update(ctx, item); err != nil {
		return err
	}
	return s.touch(ctx, cart, userID)
}

func (s *remoteCartService) RemoveItem(ctx context.Context, userID, itemID string) error {
	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(itemID)
	if err != nil {
		return errors.New("invalid cart item ID")
	}

	item, err := s.itemRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil // already gone, removal is idempotent
	}
	if err != nil {
		return err
	}
	if item.CartID != cart.ID {
		return nil
	}

	if err := s.itemRepo.Delete(ctx, id); err != nil {
		return err
	}
	return s.touch(ctx, cart, userID)
}

func (s *remoteCartService) Clear(ctx context.Context, userID string) error {
	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.itemRepo.DeleteByCartID(ctx, cart.ID); err != nil {
		return err
	}

	cart.CouponID = nil
	return s.touch(ctx, cart, userID)
}

func (s *remoteCartService) SetCoupon(ctx context.Context, userID string, couponID *string) error {
	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return err
	}

	if couponID == nil {
		cart.CouponID = nil
	} else {
		id, err := uuid.Parse(*couponID)
		if err != nil {
			return errors.New("invalid coupon ID")
		}
		cart.CouponID = &id
	}
	return s.touch(ctx, cart, userID)
}

func (s *remoteCartService) touch(ctx context.Context, cart *models.Cart, userID string) error {
	cart.UpdatedAt = time.Now()
	if err := s.cartRepo.Update(ctx, cart); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Delete(ctx, "cart:"+userID)
	}
	return nil
}
