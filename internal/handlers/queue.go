package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ashram-app-server/internal/middleware"
	"ashram-app-server/internal/models"
	"ashram-app-server/internal/services"
	"ashram-app-server/internal/utils"
)

// QueueHandler exposes the consultation queue operations.
type QueueHandler struct {
	DB    *gorm.DB
	Queue *services.QueueService
}

// NewQueueHandler creates a new QueueHandler.
func NewQueueHandler(db *gorm.DB, queue *services.QueueService) *QueueHandler {
	return &QueueHandler{DB: db, Queue: queue}
}

// GetStatus returns the live queue for a guruji. Side-effect free and
// safe for dashboards to poll on an interval.
func (h *QueueHandler) GetStatus(c *gin.Context) {
	gurujiID := c.Param("gurujiId")

	status, err := h.Queue.GetStatus(c.Request.Context(), gurujiID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Queue status fetched successfully", status)
}

// JoinQueueRequest represents the request body for a manual queue join
// (coordinator placing a devotee into the queue without a scan).
type JoinQueueRequest struct {
	AppointmentID string `json:"appointmentId" binding:"required,uuid"`
	Priority      string `json:"priority" binding:"omitempty,oneof=high normal low"`
}

// JoinQueue inserts an appointment into its guruji's queue.
func (h *QueueHandler) JoinQueue(c *gin.Context) {
	var req JoinQueueRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	entry, err := h.Queue.Join(c.Request.Context(), req.AppointmentID, models.Priority(req.Priority))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Created(c, "Joined the queue", entry)
}

// LeaveQueue removes a waiting entry. Leaving an entry that is already
// gone succeeds. Devotees may only remove their own entry; staff may
// remove any.
func (h *QueueHandler) LeaveQueue(c *gin.Context) {
	entryID := c.Param("id")

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole == models.RoleUser {
		var entry models.QueueEntry
		if err := h.DB.First(&entry, "id = ?", entryID).Error; err == nil && entry.UserID != userID {
			utils.Forbidden(c, "You can only leave your own queue entry.")
			return
		}
	}

	if err := h.Queue.Leave(c.Request.Context(), entryID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Left the queue", nil)
}

// StartConsultation begins the consultation for a waiting entry.
// Restricted to the entry's guruji, coordinators and admins.
func (h *QueueHandler) StartConsultation(c *gin.Context) {
	entryID := c.Param("id")

	if !h.authorizeTransition(c, entryID) {
		return
	}

	session, err := h.Queue.StartConsultation(c.Request.Context(), entryID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Consultation started", session)
}

// CompleteConsultationRequest represents the request body for completing a
// consultation. AllowSkipRemedy is the explicit "skip & complete" override.
type CompleteConsultationRequest struct {
	AllowSkipRemedy bool `json:"allowSkipRemedy"`
}

// CompleteConsultation closes an in-progress consultation.
func (h *QueueHandler) CompleteConsultation(c *gin.Context) {
	entryID := c.Param("id")

	if !h.authorizeTransition(c, entryID) {
		return
	}

	var req CompleteConsultationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequest(c, "Invalid request payload: "+err.Error())
			return
		}
	}

	if err := h.Queue.CompleteConsultation(c.Request.Context(), entryID, req.AllowSkipRemedy); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Consultation completed", nil)
}

// authorizeTransition checks that the caller may drive this entry's
// lifecycle: the entry's own guruji, a coordinator, or an admin.
func (h *QueueHandler) authorizeTransition(c *gin.Context, entryID string) bool {
	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	if userRole == models.RoleAdmin || userRole == models.RoleCoordinator {
		return true
	}
	if userRole == models.RoleGuruji {
		var entry models.QueueEntry
		if err := h.DB.First(&entry, "id = ?", entryID).Error; err == nil && entry.GurujiID == userID {
			return true
		}
	}

	utils.Forbidden(c, "You are not authorized to manage this queue entry.")
	return false
}
