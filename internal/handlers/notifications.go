package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ashram-app-server/internal/middleware"
	"ashram-app-server/internal/models"
	"ashram-app-server/internal/utils"
)

// NotificationHandler exposes the state-change notifications recorded by
// the queue and check-in flows.
type NotificationHandler struct {
	DB *gorm.DB
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{DB: db}
}

// GetNotificationsForUser lists the caller's notifications, newest first.
// Pass ?unread=true to fetch only unread ones.
func (h *NotificationHandler) GetNotificationsForUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	query := h.DB.Where("user_id = ?", userID).Order("created_at desc")
	if c.Query("unread") == "true" {
		query = query.Where("read_at IS NULL")
	}

	var notifications []models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch notifications: "+err.Error())
		return
	}

	utils.Success(c, "Notifications fetched successfully", notifications)
}

// MarkNotificationAsRead marks one of the caller's notifications as read.
func (h *NotificationHandler) MarkNotificationAsRead(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	notificationID := c.Param("id")

	var notification models.Notification
	if err := h.DB.First(&notification, "id = ? AND user_id = ?", notificationID, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Notification not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if notification.ReadAt == nil {
		now := time.Now()
		notification.ReadAt = &now
		if err := h.DB.Save(&notification).Error; err != nil {
			utils.InternalServerError(c, "Failed to mark notification as read: "+err.Error())
			return
		}
	}

	utils.Success(c, "Notification marked as read", notification)
}
