package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product model - MongoDB (catalog, the authoritative product record)
type Product struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name              string             `bson:"name" json:"name"`
	Description       string             `bson:"description" json:"description"`
	SellingPrice      float64            `bson:"selling_price" json:"selling_price"`
	DiscountType      string             `bson:"discount_type,omitempty" json:"discount_type,omitempty"` // fixed, percentage
	DiscountValue     float64            `bson:"discount_value,omitempty" json:"discount_value,omitempty"`
	DiscountStartDate *time.Time         `bson:"discount_start_date,omitempty" json:"discount_start_date,omitempty"`
	DiscountEndDate   *time.Time         `bson:"discount_end_date,omitempty" json:"discount_end_date,omitempty"`
	Stock             int                `bson:"stock" json:"stock"`
	IsActive          bool               `bson:"is_active" json:"is_active"`
	ImageUrls         []string           `bson:"image_urls,omitempty" json:"image_urls,omitempty"`
	Tags              []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}

// Snapshot copies the commerce-relevant fields into the shape carts store.
func (p *Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ProductID:         p.ID.Hex(),
		Name:              p.Name,
		SellingPrice:      p.SellingPrice,
		DiscountType:      p.DiscountType,
		DiscountValue:     p.DiscountValue,
		DiscountStartDate: p.DiscountStartDate,
		DiscountEndDate:   p.DiscountEndDate,
		Stock:             p.Stock,
		IsActive:          p.IsActive,
	}
}
