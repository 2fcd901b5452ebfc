package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/application"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/middleware"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/response"
)

// AdminBonusHandler handles the admin loyalty program endpoints.
type AdminBonusHandler struct {
	service *application.BonusService
}

// NewAdminBonusHandler creates a new AdminBonusHandler.
func NewAdminBonusHandler(service *application.BonusService) *AdminBonusHandler {
	return &AdminBonusHandler{service: service}
}

// RegisterRoutes registers admin bonus routes on the given router group.
// The group is expected to already carry auth and admin-role middleware.
func (h *AdminBonusHandler) RegisterRoutes(r *gin.RouterGroup) {
	bonus := r.Group("/bonus")
	{
		bonus.GET("/programs", h.ListPrograms)
		bonus.POST("/programs", h.CreateProgram)
		bonus.GET("/programs/:programId", h.GetProgram)
		bonus.PUT("/programs/:programId", h.UpdateProgram)
		bonus.DELETE("/programs/:programId", h.DeleteProgram)
		bonus.GET("/programs/:programId/users", h.ListParticipants)
		bonus.POST("/programs/:programId/issue/:userId", h.IssueBonus)
		bonus.GET("/history", h.AllHistory)
		bonus.GET("/redemptions", h.AllRedemptions)
		bonus.PUT("/redemptions/:redemptionId", h.UpdateRedemptionStatus)
	}
}

// ListPrograms handles GET /api/admin/bonus/programs
func (h *AdminBonusHandler) ListPrograms(c *gin.Context) {
	programs, err := h.service.ListPrograms(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, programs)
}

// CreateProgram handles POST /api/admin/bonus/programs
func (h *AdminBonusHandler) CreateProgram(c *gin.Context) {
	var req application.ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	program, err := h.service.CreateProgram(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, program)
}

// GetProgram handles GET /api/admin/bonus/programs/:programId
func (h *AdminBonusHandler) GetProgram(c *gin.Context) {
	programID, err := uuid.Parse(c.Param("programId"))
	if err != nil {
		response.BadRequest(c, "invalid program ID")
		return
	}

	program, err := h.service.GetProgram(c.Request.Context(), programID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, program)
}

// UpdateProgram handles PUT /api/admin/bonus/programs/:programId
func (h *AdminBonusHandler) UpdateProgram(c *gin.Context) {
	programID, err := uuid.Parse(c.Param("programId"))
	if err != nil {
		response.BadRequest(c, "invalid program ID")
		return
	}

	var req application.ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	program, err := h.service.UpdateProgram(c.Request.Context(), programID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, program)
}

// DeleteProgram handles DELETE /api/admin/bonus/programs/:programId
func (h *AdminBonusHandler) DeleteProgram(c *gin.Context) {
	programID, err := uuid.Parse(c.Param("programId"))
	if err != nil {
		response.BadRequest(c, "invalid program ID")
		return
	}

	if err := h.service.DeleteProgram(c.Request.Context(), programID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListParticipants handles GET /api/admin/bonus/programs/:programId/users
func (h *AdminBonusHandler) ListParticipants(c *gin.Context) {
	programID, err := uuid.Parse(c.Param("programId"))
	if err != nil {
		response.BadRequest(c, "invalid program ID")
		return
	}

	participants, err := h.service.ListProgramParticipants(c.Request.Context(), programID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, participants)
}

// IssueBonus handles POST /api/admin/bonus/programs/:programId/issue/:userId
func (h *AdminBonusHandler) IssueBonus(c *gin.Context) {
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	programID, err := uuid.Parse(c.Param("programId"))
	if err != nil {
		response.BadRequest(c, "invalid program ID")
		return
	}
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user ID")
		return
	}

	bonusCode := c.Query("bonus_code")
	if bonusCode == "" {
		response.BadRequest(c, "bonus_code is required")
		return
	}

	record, err := h.service.IssueBonus(c.Request.Context(), programID, userID, adminID, bonusCode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, record)
}

// AllHistory handles GET /api/admin/bonus/history
func (h *AdminBonusHandler) AllHistory(c *gin.Context) {
	records, err := h.service.AllHistory(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, records)
}

// AllRedemptions handles GET /api/admin/bonus/redemptions
func (h *AdminBonusHandler) AllRedemptions(c *gin.Context) {
	redemptions, err := h.service.AllRedemptions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, redemptions)
}

// UpdateRedemptionStatus handles PUT /api/admin/bonus/redemptions/:redemptionId
func (h *AdminBonusHandler) UpdateRedemptionStatus(c *gin.Context) {
	redemptionID, err := uuid.Parse(c.Param("redemptionId"))
	if err != nil {
		response.BadRequest(c, "invalid redemption ID")
		return
	}

	var req application.UpdateRedemptionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	redemption, err := h.service.UpdateRedemptionStatus(c.Request.Context(), redemptionID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, redemption)
}
