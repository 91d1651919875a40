package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, j)
}

// SnapshotJSON stores a ProductSnapshot as a jsonb column on a cart item row.
type SnapshotJSON ProductSnapshot

func (s SnapshotJSON) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *SnapshotJSON) Scan(value interface{}) error {
	if value == nil {
		*s = SnapshotJSON{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, s)
}

// User model - PostgreSQL. Token issuance lives with the auth collaborator;
// this table only anchors cart ownership.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Status    string    `gorm:"default:active" json:"status"` // active, inactive, suspended
}

// Cart model - PostgreSQL. The authoritative cart for an authenticated
// identity; one active cart per user.
type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User      User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CouponID  *uuid.UUID `gorm:"type:uuid" json:"coupon_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem model - PostgreSQL. One row per product per cart; the composite
// unique index backs the per-productId uniqueness invariant.
type CartItem struct {
	ID        uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CartID    uuid.UUID    `gorm:"type:uuid;uniqueIndex:idx_cart_product;not null" json:"cart_id"`
	ProductID string       `gorm:"uniqueIndex:idx_cart_product;not null" json:"product_id"`
	Quantity  int          `gorm:"not null" json:"quantity"`
	Snapshot  SnapshotJSON `gorm:"type:jsonb" json:"snapshot"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Line converts a stored row into the engine's cart line shape.
func (ci *CartItem) Line() CartLine {
	return CartLine{
		ItemID:    ci.ID.String(),
		ProductID: ci.ProductID,
		Quantity:  ci.Quantity,
		Product:   ProductSnapshot(ci.Snapshot),
	}
}

// Coupon model - PostgreSQL
type Coupon struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code          string    `gorm:"uniqueIndex;not null" json:"code"`
	Description   string    `json:"description"`
	DiscountType  string    `gorm:"not null" json:"discount_type"` // fixed, percentage
	DiscountValue float64   `gorm:"not null" json:"discount_value"`
	MaxDiscount   float64   `json:"max_discount"`
	MinOrderValue float64   `json:"min_order_value"`
	ValidFrom     time.Time `json:"valid_from"`
	ValidTo       time.Time `json:"valid_to"`
	UsageLimit    int       `gorm:"default:-1" json:"usage_limit"` // -1 for unlimited
	UsedCount     int       `gorm:"default:0" json:"used_count"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
}
