package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/application"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/auth"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/middleware"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/response"
)

// CartHandler handles the authenticated cart endpoints.
type CartHandler struct {
	service *application.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *application.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// RegisterRoutes registers cart routes on the given router group.
func (h *CartHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	cart := r.Group("/cart")
	cart.Use(middleware.AuthMiddleware(jwtManager))
	{
		cart.GET("", h.GetCart)
		cart.POST("/items", h.AddItem)
		cart.PUT("/items/:productId", h.SetQuantity)
		cart.DELETE("/items/:productId", h.RemoveItem)
		cart.DELETE("", h.Clear)
	}
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	cart, err := h.service.GetCart(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, cart)
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.AddItem(c.Request.Context(), userID, req); err != nil {
		response.Error(c, err)
		return
	}

	cart, err := h.service.GetCart(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, cart)
}

// SetQuantity handles PUT /api/cart/items/:productId
func (h *CartHandler) SetQuantity(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		response.BadRequest(c, "invalid product ID")
		return
	}

	var req struct {
		Quantity int `json:"quantity" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.SetQuantity(c.Request.Context(), userID, productID, req.Quantity); err != nil {
		response.Error(c, err)
		return
	}

	cart, err := h.service.GetCart(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, cart)
}

// RemoveItem handles DELETE /api/cart/items/:productId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		response.BadRequest(c, "invalid product ID")
		return
	}

	if err := h.service.RemoveItem(c.Request.Context(), userID, productID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Clear handles DELETE /api/cart
func (h *CartHandler) Clear(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.service.Clear(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
