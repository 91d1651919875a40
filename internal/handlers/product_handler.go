package handlers

import (
	"net/http"
	"strconv"

	"golang-cart-backend/internal/middleware"
	"golang-cart-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productService *services.ProductService
}

func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// RegisterRoutes registers the routes for the product catalog
func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	products := router.Group("/products")

	products.GET("", h.ListProducts)
	products.GET("/:id", h.GetProduct)
	products.GET("/:id/snapshot", h.GetSnapshot)

	admin := products.Group("/", authMiddleware.AuthRequired())
	{
		admin.POST("", h.CreateProduct)
	}
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	activeOnly := c.DefaultQuery("active_only", "true") == "true"

	products, err := h.productService.ListProducts(c.Request.Context(), activeOnly, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to list products",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Product not found",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, product)
}

// GetSnapshot returns just the commerce-relevant fields, uncached, the way
// the cart engine's refresh pass reads them.
func (h *ProductHandler) GetSnapshot(c *gin.Context) {
	snapshot, err := h.productService.GetSnapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Product not found",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to create product",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusCreated, product)
}
