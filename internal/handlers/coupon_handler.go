package handlers

import (
	"net/http"
	"strconv"

	"golang-cart-backend/internal/middleware"
	"golang-cart-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type CouponHandler struct {
	couponService *services.CouponService
}

func NewCouponHandler(couponService *services.CouponService) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
	}
}

// RegisterRoutes registers the routes for coupon management
func (h *CouponHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	coupons := router.Group("/coupons")

	// Public routes
	coupons.GET("", h.GetCoupons)
	coupons.POST("/validate", h.ValidateCoupon)

	// Protected routes
	admin := coupons.Group("/", authMiddleware.AuthRequired())
	{
		admin.POST("", h.CreateCoupon)
	}
}

type ValidateCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *CouponHandler) GetCoupons(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var active *bool
	if raw := c.Query("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err == nil {
			active = &v
		}
	}

	resp, err := h.couponService.GetCoupons(c.Request.Context(), page, limit, active)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to list coupons",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	var req ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	resp, err := h.couponService.Validate(c.Request.Context(), req.Code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to validate coupon",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var req services.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	coupon, err := h.couponService.CreateCoupon(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to create coupon",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusCreated, coupon)
}
