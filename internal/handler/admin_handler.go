package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/application"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/response"
)

// AdminHandler handles the admin catalog, order, user and stats endpoints.
type AdminHandler struct {
	catalog *application.CatalogService
	orders  *application.OrderService
	auth    *application.AuthService
	stats   *application.StatsService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	catalog *application.CatalogService,
	orders *application.OrderService,
	authService *application.AuthService,
	stats *application.StatsService,
) *AdminHandler {
	return &AdminHandler{
		catalog: catalog,
		orders:  orders,
		auth:    authService,
		stats:   stats,
	}
}

// RegisterRoutes registers admin routes on the given router group. The
// group is expected to already carry auth and admin-role middleware.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/categories", h.CreateCategory)
	r.PUT("/categories/:id", h.UpdateCategory)
	r.DELETE("/categories/:id", h.DeleteCategory)

	r.POST("/products", h.CreateProduct)
	r.PUT("/products/:id", h.UpdateProduct)
	r.DELETE("/products/:id", h.DeleteProduct)

	r.GET("/orders", h.ListOrders)
	r.PUT("/orders/:id/status", h.UpdateOrderStatus)

	r.GET("/users", h.ListUsers)
	r.GET("/stats", h.GetStats)
}

// CreateCategory handles POST /api/admin/categories
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req application.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	category, err := h.catalog.CreateCategory(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, category)
}

// UpdateCategory handles PUT /api/admin/categories/:id
func (h *AdminHandler) UpdateCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid category ID")
		return
	}

	var req application.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	category, err := h.catalog.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, category)
}

// DeleteCategory handles DELETE /api/admin/categories/:id
func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid category ID")
		return
	}

	if err := h.catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateProduct handles POST /api/admin/products
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	var req application.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, product)
}

// UpdateProduct handles PUT /api/admin/products/:id
func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid product ID")
		return
	}

	var req application.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, product)
}

// DeleteProduct handles DELETE /api/admin/products/:id
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid product ID")
		return
	}

	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListOrders handles GET /api/admin/orders
func (h *AdminHandler) ListOrders(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	limit := parseIntQuery(c, "limit", 20)

	orders, total, err := h.orders.ListAllOrders(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, orders, total, page, limit)
}

// UpdateOrderStatus handles PUT /api/admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order ID")
		return
	}

	var req application.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, order)
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.auth.ListUsers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, users)
}

// GetStats handles GET /api/admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.stats.GetStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}
