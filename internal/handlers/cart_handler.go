package handlers

import (
	"errors"
	"net/http"

	"golang-cart-backend/internal/middleware"
	"golang-cart-backend/internal/models"
	"golang-cart-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	engine   *services.CartEngine
	products *services.ProductService
	users    *services.UserService
}

func NewCartHandler(engine *services.CartEngine, products *services.ProductService, users *services.UserService) *CartHandler {
	return &CartHandler{
		engine:   engine,
		products: products,
		users:    users,
	}
}

// RegisterRoutes registers the routes for the cart engine. Every route works
// for anonymous sessions (device ID header only); a bearer token switches the
// session to the authenticated cart, with /sync driving the merge-on-login.
func (h *CartHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	cart := router.Group("/cart", authMiddleware.AuthOptional())
	{
		cart.GET("", h.GetCart)
		cart.POST("/items", h.AddItem)
		cart.PATCH("/items/:item_id", h.UpdateItemQuantity)
		cart.DELETE("/items/:item_id", h.RemoveItem)
		cart.DELETE("", h.ClearCart)
		cart.POST("/coupons", h.ApplyCoupon)
		cart.DELETE("/coupons", h.RemoveCoupon)
		cart.GET("/totals", h.GetTotals)
		cart.POST("/prune-inactive", h.RemoveInactiveProducts)
	}

	router.POST("/cart/sync", authMiddleware.AuthOptional(), authMiddleware.AuthRequired(), h.SyncCart)
}

type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

type CartResponse struct {
	Mode          string                `json:"mode"`
	IsLoading     bool                  `json:"is_loading"`
	Cart          models.CartState      `json:"cart"`
	AppliedCoupon *models.AppliedCoupon `json:"applied_coupon,omitempty"`
	Totals        models.CartTotals     `json:"totals"`
	PayableTotal  float64               `json:"payable_total"`
}

// session resolves the engine session for this request: the durable device ID
// names the browsing context, the optional authenticated user switches the
// live representation.
func (h *CartHandler) session(c *gin.Context) (*services.CartSession, bool) {
	deviceID := c.GetHeader("X-Device-ID")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Device ID required",
			Message: "Provide the X-Device-ID header",
		})
		return nil, false
	}

	userID := c.GetString("user_id")
	if userID != "" {
		// First authenticated request for this identity creates its user row;
		// the server cart needs an owner before anything can attach to it.
		if _, err := h.users.Ensure(c.Request.Context(), userID, c.GetString("email")); err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "Failed to resolve user",
				Message: err.Error(),
			})
			return nil, false
		}
	}

	session, err := h.engine.Hydrate(c.Request.Context(), deviceID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to load cart",
			Message: err.Error(),
		})
		return nil, false
	}
	return session, true
}

func (h *CartHandler) respond(c *gin.Context, session *services.CartSession) {
	totals := h.engine.GetCartTotals(session)
	coupon := session.AppliedCoupon()

	payable := totals.DiscountedSubtotal
	if coupon != nil {
		payable -= coupon.DiscountValue
		if payable < 0 {
			payable = 0
		}
	}

	c.JSON(http.StatusOK, CartResponse{
		Mode:          session.Mode().String(),
		IsLoading:     session.IsLoading(),
		Cart:          session.Cart(),
		AppliedCoupon: coupon,
		Totals:        totals,
		PayableTotal:  payable,
	})
}

func (h *CartHandler) fail(c *gin.Context, what string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrSyncInProgress):
		status = http.StatusConflict
	case errors.Is(err, services.ErrBlankCouponCode):
		status = http.StatusBadRequest
	}
	c.JSON(status, ErrorResponse{Error: what, Message: err.Error()})
}

func (h *CartHandler) GetCart(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, session)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	session, ok := h.session(c)
	if !ok {
		return
	}

	// Fresh snapshot copy at add time; staleness from here on is owned by
	// the refresh pass.
	snapshot, err := h.products.GetSnapshot(c.Request.Context(), req.ProductID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Product not found",
			Message: err.Error(),
		})
		return
	}

	if err := h.engine.AddItem(c.Request.Context(), session, *snapshot, req.Quantity); err != nil {
		h.fail(c, "Failed to add item to cart", err)
		return
	}
	h.respond(c, session)
}

func (h *CartHandler) UpdateItemQuantity(c *gin.Context) {
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := h.engine.UpdateItemQuantity(c.Request.Context(), session, c.Param("item_id"), req.Quantity); err != nil {
		h.fail(c, "Failed to update cart item", err)
		return
	}
	h.respond(c, session)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := h.engine.RemoveItem(c.Request.Context(), session, c.Param("item_id")); err != nil {
		h.fail(c, "Failed to remove cart item", err)
		return
	}
	h.respond(c, session)
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := h.engine.ClearCart(c.Request.Context(), session); err != nil {
		h.fail(c, "Failed to clear cart", err)
		return
	}
	h.respond(c, session)
}

func (h *CartHandler) ApplyCoupon(c *gin.Context) {
	var req ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := h.engine.ApplyCoupon(c.Request.Context(), session, req.Code); err != nil {
		h.fail(c, "Failed to apply coupon", err)
		return
	}
	h.respond(c, session)
}

func (h *CartHandler) RemoveCoupon(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := h.engine.RemoveCoupon(c.Request.Context(), session); err != nil {
		h.fail(c, "Failed to remove coupon", err)
		return
	}
	h.respond(c, session)
}

func (h *CartHandler) GetTotals(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.engine.GetCartTotals(session))
}

func (h *CartHandler) RemoveInactiveProducts(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := h.engine.RemoveInactiveProducts(c.Request.Context(), session); err != nil {
		h.fail(c, "Failed to prune cart", err)
		return
	}
	h.respond(c, session)
}

// SyncCart is called by the host right after login; hydrating with the
// authenticated user drives the anonymous-to-authenticated merge.
func (h *CartHandler) SyncCart(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, session)
}
