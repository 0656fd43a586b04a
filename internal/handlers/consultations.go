package handlers

import (
	"github.com/gin-gonic/gin"

	"ashram-app-server/internal/middleware"
	"ashram-app-server/internal/models"
	"ashram-app-server/internal/services"
	"ashram-app-server/internal/utils"
)

// ConsultationHandler handles consultation session reads and the details
// a guruji records during a session.
type ConsultationHandler struct {
	Sessions *services.SessionService
}

// NewConsultationHandler creates a new ConsultationHandler.
func NewConsultationHandler(sessions *services.SessionService) *ConsultationHandler {
	return &ConsultationHandler{Sessions: sessions}
}

// GetSessionsForUser lists sessions for the caller: a guruji sees their
// own consultations, a devotee sees the consultations they received,
// coordinators and admins use the guruji-scoped listing.
func (h *ConsultationHandler) GetSessionsForUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	var sessions []models.ConsultationSession
	var err error
	switch userRole {
	case models.RoleGuruji:
		activeOnly := c.Query("active") == "true"
		sessions, err = h.Sessions.ListForGuruji(c.Request.Context(), userID, activeOnly)
	default:
		sessions, err = h.Sessions.ListForUser(c.Request.Context(), userID)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Consultation sessions fetched successfully", sessions)
}

// GetSessionByID fetches a single session. Accessible to the devotee and
// guruji involved, coordinators, and admins.
func (h *ConsultationHandler) GetSessionByID(c *gin.Context) {
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
		utils.Forbidden(c, "You are not authorized to view this consultation")
		return
	}

	utils.Success(c, "Consultation session fetched successfully", session)
}

// UpdateSessionRequest represents the clinical details a guruji records
// during an active consultation.
type UpdateSessionRequest struct {
	Symptoms   string `json:"symptoms"`
	Diagnosis  string `json:"diagnosis"`
	Notes      string `json:"notes"`
	Recordings string `json:"recordings"`
}

// UpdateSession records details on an active session. Guruji only; the
// session must belong to the caller unless they are an admin.
func (h *ConsultationHandler) UpdateSession(c *gin.Context) {
	sessionID := c.Param("id")

	session, err := h.Sessions.GetByID(c.Request.Context(), sessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole != models.RoleAdmin && userID != session.GurujiID {
		utils.Forbidden(c, "Only the consulting guruji can update this session")
		return
	}

	var req UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	updated, err := h.Sessions.UpdateDetails(c.Request.Context(), sessionID, services.SessionDetails{
		Symptoms:   req.Symptoms,
		Diagnosis:  req.Diagnosis,
		Notes:      req.Notes,
		Recordings: req.Recordings,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Consultation session updated successfully", updated)
}
