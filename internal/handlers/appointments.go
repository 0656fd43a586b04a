package handlers

import (
	"ashram-app-server/internal/middleware"
	"ashram-app-server/internal/models"
	"ashram-app-server/internal/services"
	"ashram-app-server/internal/utils"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	DB    *gorm.DB
	Queue *services.QueueService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, queue *services.QueueService) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Queue: queue}
}

// CreateAppointmentRequest represents the request body for booking an appointment.
type CreateAppointmentRequest struct {
	GurujiID  string     `json:"gurujiId" binding:"required,uuid"`
	UserID    string     `json:"userId" binding:"required,uuid"`
	StartTime time.Time  `json:"startTime" binding:"required"`
	EndTime   *time.Time `json:"endTime"`
	Reason    string     `json:"reason" binding:"required"`
	Priority  string     `json:"priority" binding:"omitempty,oneof=high normal low"`
	Notes     string     `json:"notes"`
}

// CreateAppointment handles booking a new appointment.
// Typically initiated by a devotee; coordinators and admins may book on
// behalf of a devotee.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	requesterID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User ID not found in token")
		return
	}
	requesterRole, _ := middleware.GetUserRoleFromContext(c)
	if requesterRole == models.RoleUser && requesterID != req.UserID {
		utils.Forbidden(c, "Devotees can only book appointments for themselves.")
		return
	}

	if _, err := uuid.Parse(req.UserID); err != nil {
		utils.BadRequest(c, "Invalid User ID format")
		return
	}
	gurujiID, err := uuid.Parse(req.GurujiID)
	if err != nil {
		utils.BadRequest(c, "Invalid Guruji ID format")
		return
	}

	// Verify guruji exists and carries the guruji role
	var guruji models.User
	if err := h.DB.Where("id = ? AND role = ?", gurujiID, models.RoleGuruji).First(&guruji).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Guruji not found or user is not a guruji")
		} else {
			utils.InternalServerError(c, "Database error verifying guruji: "+err.Error())
		}
		return
	}
	// Verify devotee exists
	var devotee models.User
	if err := h.DB.Where("id = ? AND role = ?", req.UserID, models.RoleUser).First(&devotee).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Devotee not found")
		} else {
			utils.InternalServerError(c, "Database error verifying devotee: "+err.Error())
		}
		return
	}

	if req.StartTime.Before(time.Now()) {
		utils.BadRequest(c, "Appointment date must be in the future.")
		return
	}

	endTime := req.StartTime.Add(30 * time.Minute)
	if req.EndTime != nil {
		if !req.EndTime.After(req.StartTime) {
			utils.BadRequest(c, "Appointment end time must be after its start time.")
			return
		}
		endTime = *req.EndTime
	}

	priority := models.PriorityNormal
	if req.Priority != "" {
		priority = models.Priority(req.Priority)
	}

	appointment := models.Appointment{
		UserID:    req.UserID,
		GurujiID:  req.GurujiID,
		StartTime: req.StartTime,
		EndTime:   endTime,
		Reason:    req.Reason,
		Notes:     req.Notes,
		Priority:  priority,
		Status:    models.StatusBooked,
	}

	if err := h.DB.Create(&appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to create appointment: "+err.Error())
		return
	}

	utils.Created(c, "Appointment booked successfully", appointment)
}

// GetAppointmentsForUser handles fetching appointments for the logged-in user.
func (h *AppointmentHandler) GetAppointmentsForUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	userRole, _ := middleware.GetUserRoleFromContext(c)

	var appointments []models.Appointment
	var err error

	query := h.DB.Preload("User").Preload("Guruji").Order("start_time asc")

	switch userRole {
	case models.RoleUser:
		err = query.Where("user_id = ?", userID).Find(&appointments).Error
	case models.RoleGuruji:
		err = query.Where("guruji_id = ?", userID).Find(&appointments).Error
	case models.RoleCoordinator, models.RoleAdmin:
		err = query.Find(&appointments).Error
	default:
		utils.Forbidden(c, "User role not permitted to view appointments this way. Role: "+string(userRole))
		return
	}

	if err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentByID handles fetching a single appointment by its ID.
// Accessible by the devotee or guruji involved, coordinators, and admins.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid Appointment ID format")
		return
	}

	var appointment models.Appointment
	if err := h.DB.Preload("User").Preload("Guruji").First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	isDevoteeInvolved := userID == appointment.UserID
	isGurujiInvolved := userID == appointment.GurujiID
	isStaff := userRole == models.RoleAdmin || userRole == models.RoleCoordinator

	if !isStaff && !isDevoteeInvolved && !isGurujiInvolved {
		utils.Forbidden(c, "You are not authorized to view this appointment")
		return
	}

	utils.Success(c, "Appointment fetched successfully", appointment)
}

// UpdateAppointmentStatusRequest represents the request body for updating an appointment's status.
type UpdateAppointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required,oneof=booked confirmed cancelled"`
	Notes  string                   `json:"notes"`
}

// UpdateAppointmentStatus handles updating the status of an appointment.
// Only booking-level statuses can be set here; checked_in, in_progress and
// completed are owned by the check-in and queue flows.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid Appointment ID format")
		return
	}

	var req UpdateAppointmentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if appointment.Status == models.StatusInProgress || appointment.Status.IsTerminal() {
		utils.Conflict(c, "Appointment is "+string(appointment.Status)+" and its status can no longer be changed here.")
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	// Authorization logic:
	// - Devotees can cancel their own appointments (if status allows)
	// - Coordinators/admins can confirm or cancel any appointment
	canUpdate := false
	if userRole == models.RoleAdmin || userRole == models.RoleCoordinator {
		canUpdate = true
	} else if userRole == models.RoleGuruji && userID == appointment.GurujiID {
		canUpdate = true
	} else if userRole == models.RoleUser && userID == appointment.UserID {
		if req.Status == models.StatusCancelled &&
			(appointment.Status == models.StatusBooked || appointment.Status == models.StatusConfirmed) {
			canUpdate = true
		} else if req.Status != models.StatusCancelled {
			utils.Forbidden(c, "Devotees can only cancel appointments.")
			return
		}
	}

	if !canUpdate {
		utils.Forbidden(c, "You are not authorized to update this appointment's status or perform this status transition.")
		return
	}

	// Cancelling a checked-in appointment vacates its queue position first,
	// so the entry does not linger and inflate everyone's wait estimate.
	if req.Status == models.StatusCancelled && cancellationReleasesQueue(appointment.Status) {
		if err := h.Queue.ReleaseAppointment(c.Request.Context(), appointment.ID); err != nil {
			respondServiceError(c, err)
			return
		}
		appointment.CheckedInAt = nil
	}

	appointment.Status = req.Status
	if req.Notes != "" {
		appointment.Notes = req.Notes
	}

	if err := h.DB.Save(&appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to update appointment status: "+err.Error())
		return
	}

	utils.Success(c, "Appointment status updated successfully", appointment)
}

// cancellationReleasesQueue reports whether cancelling an appointment in
// this status must also vacate a queue entry. Only checked-in appointments
// hold one; in-progress and terminal statuses never reach the cancel path.
func cancellationReleasesQueue(status models.AppointmentStatus) bool {
	return status == models.StatusCheckedIn
}

// RescheduleAppointmentRequest represents the request body for rescheduling an appointment.
type RescheduleAppointmentRequest struct {
	NewStartTime time.Time `json:"newStartTime" binding:"required"`
	Notes        string    `json:"notes"`
}

// RescheduleAppointment handles rescheduling an appointment.
func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid Appointment ID format")
		return
	}

	var req RescheduleAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.NewStartTime.Before(time.Now()) {
		utils.BadRequest(c, "New appointment date must be in the future.")
		return
	}

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if appointment.Status != models.StatusBooked && appointment.Status != models.StatusConfirmed {
		utils.Conflict(c, "Only booked or confirmed appointments can be rescheduled.")
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	canReschedule := false
	if userRole == models.RoleAdmin || userRole == models.RoleCoordinator {
		canReschedule = true
	} else if userRole == models.RoleGuruji && userID == appointment.GurujiID {
		canReschedule = true
	} else if userRole == models.RoleUser && userID == appointment.UserID {
		canReschedule = true
	}

	if !canReschedule {
		utils.Forbidden(c, "You are not authorized to reschedule this appointment.")
		return
	}

	duration := appointment.EndTime.Sub(appointment.StartTime)
	appointment.StartTime = req.NewStartTime
	appointment.EndTime = req.NewStartTime.Add(duration)
	appointment.Status = models.StatusBooked

	if req.Notes != "" {
		appointment.Notes = req.Notes
	}

	if err := h.DB.Save(&appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to reschedule appointment: "+err.Error())
		return
	}

	utils.Success(c, "Appointment rescheduled successfully", appointment)
}
