package repositories

import (
	"context"
	"golang-cart-backend/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository interface for PostgreSQL user operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CartRepository interface for PostgreSQL cart operations. This is the
// authenticated cart's storage; item rows are managed through
// CartItemRepository.
type CartRepository interface {
	Create(ctx context.Context, cart *models.Cart) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Update(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CartItemRepository interface for PostgreSQL cart item rows
type CartItemRepository interface {
	Create(ctx context.Context, item *models.CartItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error)
	GetByCartAndProduct(ctx context.Context, cartID uuid.UUID, productID string) (*models.CartItem, error)
	GetByCartID(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error)
	Update(ctx context.Context, item *models.CartItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByCartID(ctx context.Context, cartID uuid.UUID) error
}

// CouponRepository interface for PostgreSQL coupon operations
type CouponRepository interface {
	Create(ctx context.Context, coupon *models.Coupon) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	Update(ctx context.Context, coupon *models.Coupon) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, offset, limit int, active *bool) ([]models.Coupon, int64, error)
}

// ProductRepository interface for MongoDB product operations
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]models.Product, error)
}

// LocalCartRepository is the Persistent Local Store: durable, device-keyed
// storage for the anonymous cart and its optionally-applied coupon. Cart and
// coupon are independently keyed records.
type LocalCartRepository interface {
	GetCart(ctx context.Context, deviceID string) (*models.CartState, error)
	SaveCart(ctx context.Context, deviceID string, cart *models.CartState) error
	DeleteCart(ctx context.Context, deviceID string) error
	GetCoupon(ctx context.Context, deviceID string) (*models.AppliedCoupon, error)
	SaveCoupon(ctx context.Context, deviceID string, coupon *models.AppliedCoupon) error
	DeleteCoupon(ctx context.Context, deviceID string) error
}
