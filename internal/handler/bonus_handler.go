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

// BonusHandler handles the customer-facing loyalty program endpoints.
type BonusHandler struct {
	service *application.BonusService
}

// NewBonusHandler creates a new BonusHandler.
func NewBonusHandler(service *application.BonusService) *BonusHandler {
	return &BonusHandler{service: service}
}

// RegisterRoutes registers customer bonus routes on the given router group.
func (h *BonusHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	bonus := r.Group("/bonus")
	bonus.Use(middleware.AuthMiddleware(jwtManager))
	{
		bonus.GET("/programs", h.ListPrograms)
		bonus.POST("/request/:programId", h.RequestBonus)
		bonus.POST("/programs/:programId/redeem/:prizeId", h.RedeemPrize)
		bonus.GET("/history", h.MyHistory)
		bonus.GET("/redemptions", h.MyRedemptions)
	}
}

// ListPrograms handles GET /api/bonus/programs
func (h *BonusHandler) ListPrograms(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	programs, err := h.service.ListProgramsForUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, programs)
}

// RequestBonus handles POST /api/bonus/request/:programId
func (h *BonusHandler) RequestBonus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	programID, err := uuid.Parse(c.Param("programId"))
	if err != nil {
		response.BadRequest(c, "invalid program ID")
		return
	}

	program, err := h.service.RequestBonus(c.Request.Context(), userID, programID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, program)
}

// RedeemPrize handles POST /api/bonus/programs/:programId/redeem/:prizeId
func (h *BonusHandler) RedeemPrize(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	programID, err := uuid.Parse(c.Param("programId"))
	if err != nil {
		response.BadRequest(c, "invalid program ID")
		return
	}
	prizeID, err := uuid.Parse(c.Param("prizeId"))
	if err != nil {
		response.BadRequest(c, "invalid prize ID")
		return
	}

	redemption, err := h.service.RedeemPrize(c.Request.Context(), userID, programID, prizeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, redemption)
}

// MyHistory handles GET /api/bonus/history
func (h *BonusHandler) MyHistory(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	records, err := h.service.MyHistory(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, records)
}

// MyRedemptions handles GET /api/bonus/redemptions
func (h *BonusHandler) MyRedemptions(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	redemptions, err := h.service.MyRedemptions(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, redemptions)
}
