package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ashram-app-server/internal/middleware"
	"ashram-app-server/internal/models"
	"ashram-app-server/internal/services"
	"ashram-app-server/internal/utils"
)

// RemedyHandler handles remedy template CRUD and prescriptions.
type RemedyHandler struct {
	DB       *gorm.DB
	Remedies *services.RemedyService
	Sessions *services.SessionService
}

// NewRemedyHandler creates a new RemedyHandler.
func NewRemedyHandler(db *gorm.DB, remedies *services.RemedyService, sessions *services.SessionService) *RemedyHandler {
	return &RemedyHandler{DB: db, Remedies: remedies, Sessions: sessions}
}

// CreateTemplateRequest represents the request body for creating a remedy template.
type CreateTemplateRequest struct {
	Name            string `json:"name" binding:"required"`
	Type            string `json:"type" binding:"required,oneof=mantra ayurvedic ritual meditation lifestyle"`
	Category        string `json:"category"`
	Instructions    string `json:"instructions" binding:"required"`
	DefaultDosage   string `json:"defaultDosage"`
	DefaultDuration string `json:"defaultDuration"`
}

// CreateTemplate adds a remedy template to the catalog (admin, guruji).
func (h *RemedyHandler) CreateTemplate(c *gin.Context) {
	var req CreateTemplateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	template := models.RemedyTemplate{
		Name:            req.Name,
		Type:            models.RemedyType(req.Type),
		Category:        req.Category,
		Instructions:    req.Instructions,
		DefaultDosage:   req.DefaultDosage,
		DefaultDuration: req.DefaultDuration,
		IsActive:        true,
	}

	if err := h.DB.Create(&template).Error; err != nil {
		utils.InternalServerError(c, "Failed to create remedy template: "+err.Error())
		return
	}

	utils.Created(c, "Remedy template created successfully", template)
}

// GetTemplates lists active remedy templates.
func (h *RemedyHandler) GetTemplates(c *gin.Context) {
	var templates []models.RemedyTemplate
	query := h.DB.Where("is_active = ?", true).Order("name asc")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Find(&templates).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch remedy templates: "+err.Error())
		return
	}

	utils.Success(c, "Remedy templates fetched successfully", templates)
}

// UpdateTemplateRequest represents the request body for updating a template.
type UpdateTemplateRequest struct {
	Name            string `json:"name"`
	Category        string `json:"category"`
	Instructions    string `json:"instructions"`
	DefaultDosage   string `json:"defaultDosage"`
	DefaultDuration string `json:"defaultDuration"`
	IsActive        *bool  `json:"isActive"`
}

// UpdateTemplate edits a catalog entry. Existing prescriptions keep their
// snapshot and are unaffected.
func (h *RemedyHandler) UpdateTemplate(c *gin.Context) {
	templateID := c.Param("id")

	var template models.RemedyTemplate
	if err := h.DB.First(&template, "id = ?", templateID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Remedy template not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if req.Name != "" {
		template.Name = req.Name
	}
	if req.Category != "" {
		template.Category = req.Category
	}
	if req.Instructions != "" {
		template.Instructions = req.Instructions
	}
	if req.DefaultDosage != "" {
		template.DefaultDosage = req.DefaultDosage
	}
	if req.DefaultDuration != "" {
		template.DefaultDuration = req.DefaultDuration
	}
	if req.IsActive != nil {
		template.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&template).Error; err != nil {
		utils.InternalServerError(c, "Failed to update remedy template: "+err.Error())
		return
	}

	utils.Success(c, "Remedy template updated successfully", template)
}

// PrescribeRequest represents the request body for prescribing a remedy.
type PrescribeRequest struct {
	TemplateID         string `json:"templateId" binding:"required,uuid"`
	CustomInstructions string `json:"customInstructions"`
	CustomDosage       string `json:"customDosage"`
	CustomDuration     string `json:"customDuration"`
}

// Prescribe attaches a remedy to an active consultation session. Only the
// consulting guruji (or an admin) may prescribe.
func (h *RemedyHandler) Prescribe(c *gin.Context) {
	sessionID := c.Param("id")

	session, err := h.Sessions.GetByID(c.Request.Context(), sessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole != models.RoleAdmin && userID != session.GurujiID {
		utils.Forbidden(c, "Only the consulting guruji can prescribe remedies for this session")
		return
	}

	var req PrescribeRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	remedy, err := h.Remedies.Prescribe(c.Request.Context(), sessionID, req.TemplateID, services.PrescriptionOverrides{
		CustomInstructions: req.CustomInstructions,
		CustomDosage:       req.CustomDosage,
		CustomDuration:     req.CustomDuration,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Created(c, "Remedy prescribed successfully", remedy)
}

// GetRemediesForSession lists the remedies prescribed in a session.
func (h *RemedyHandler) GetRemediesForSession(c *gin.Context) {
	sessionID := c.Param("id")

	session, err := h.Sessions.GetByID(c.Request.Context(), sessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	isStaff := userRole == models.RoleAdmin || userRole == models.RoleCoordinator
	if !isStaff && userID != session.UserID && userID != session.GurujiID {
		utils.Forbidden(c, "You are not authorized to view these remedies")
		return
	}

	remedies, err := h.Remedies.ListForSession(c.Request.Context(), sessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Remedies fetched successfully", remedies)
}
