package services

import (
	"context"
	"errors"
	"time"

	"golang-cart-backend/internal/models"
	"golang-cart-backend/internal/repositories"
	"golang-cart-backend/pkg/cache"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const productCacheTTL = 5 * time.Minute

// ProductService is the Product Snapshot Source: reads of the authoritative
// product record, with a short-lived cache in front for display reads.
type ProductService struct {
	productRepo repositories.ProductRepository
	cache       *cache.RedisCache
}

func NewProductService(productRepo repositories.ProductRepository, cache *cache.RedisCache) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		cache:       cache,
	}
}

type CreateProductRequest struct {
	Name              string     `json:"name" binding:"required"`
	Description       string     `json:"description"`
	SellingPrice      float64    `json:"selling_price" binding:"required,gt=0"`
	DiscountType      string     `json:"discount_type" binding:"omitempty,oneof=percentage fixed"`
	DiscountValue     float64    `json:"discount_value"`
	DiscountStartDate *time.Time `json:"discount_start_date"`
	DiscountEndDate   *time.Time `json:"discount_end_date"`
	Stock             int        `json:"stock"`
	IsActive          *bool      `json:"is_active"`
	ImageUrls         []string   `json:"image_urls"`
	Tags              []string   `json:"tags"`
}

func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	product := &models.Product{
		Name:              req.Name,
		Description:       req.Description,
		SellingPrice:      req.SellingPrice,
		DiscountType:      req.DiscountType,
		DiscountValue:     req.DiscountValue,
		DiscountStartDate: req.DiscountStartDate,
		DiscountEndDate:   req.DiscountEndDate,
		Stock:             req.Stock,
		IsActive:          true,
		ImageUrls:         req.ImageUrls,
		Tags:              req.Tags,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct serves display reads through the cache.
func (s *ProductService) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	cacheKey := "product:" + productID
	if s.cache != nil {
		var cached models.Product
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	product, err := s.fetch(ctx, productID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, cacheKey, product, productCacheTTL)
	}
	return product, nil
}

// GetSnapshot always bypasses the cache: drift correction needs the
// authoritative record, not a cached copy that may itself be stale.
func (s *ProductService) GetSnapshot(ctx context.Context, productID string) (*models.ProductSnapshot, error) {
	product, err := s.fetch(ctx, productID)
	if err != nil {
		return nil, err
	}
	snapshot := product.Snapshot()
	return &snapshot, nil
}

func (s *ProductService) ListProducts(ctx context.Context, activeOnly bool, limit, offset int) ([]models.Product, error) {
	return s.productRepo.List(ctx, activeOnly, limit, offset)
}

func (s *ProductService) UpdateProduct(ctx context.Context, product *models.Product) error {
	if err := s.productRepo.Update(ctx, product); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Delete(ctx, "product:"+product.ID.Hex())
	}
	return nil
}

func (s *ProductService) fetch(ctx context.Context, productID string) (*models.Product, error) {
	id, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, errors.New("invalid product ID")
	}
	return s.productRepo.GetByID(ctx, id)
}
