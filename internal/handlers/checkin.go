package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"ashram-app-server/internal/geo"
	"ashram-app-server/internal/middleware"
	"ashram-app-server/internal/services"
	"ashram-app-server/internal/utils"
)

// CheckInHandler handles QR and manual check-in requests.
type CheckInHandler struct {
	CheckIn *services.CheckInService
}

// NewCheckInHandler creates a new CheckInHandler.
func NewCheckInHandler(checkIn *services.CheckInService) *CheckInHandler {
	return &CheckInHandler{CheckIn: checkIn}
}

// CheckInRequest represents a scan attempt. Code is either the raw QR
// payload or a manually typed location code. Coordinates come from the
// device's geolocation API; Accuracy is informational. When the device
// failed to obtain a position, LocationError says why (denied, timeout,
// unavailable) so the rejection can carry targeted guidance.
type CheckInRequest struct {
	Code          string   `json:"code" binding:"required"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Accuracy      float64  `json:"accuracy"`
	LocationError string   `json:"locationError" binding:"omitempty,oneof=denied timeout unavailable"`
}

// ProcessCheckIn validates the scan and places the caller's appointment in
// the queue.
func (h *CheckInHandler) ProcessCheckIn(c *gin.Context) {
	var req CheckInRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var coords *geo.Coordinates
	if req.Latitude != nil && req.Longitude != nil {
		coords = &geo.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}
	} else if req.LocationError != "" {
		switch req.LocationError {
		case "denied":
			respondServiceError(c, services.NewServiceError(services.CodeLocationDenied,
				"Location permission was denied. Allow location access to check in."))
		case "timeout":
			respondServiceError(c, services.NewServiceError(services.CodeLocationTimeout,
				"Locating your device took too long. Move to an open area and try again."))
		default:
			respondServiceError(c, services.NewServiceError(services.CodeLocationUnavailable,
				"Your device could not determine its location."))
		}
		return
	}

	result, err := h.CheckIn.ProcessCheckIn(c.Request.Context(), userID, req.Code, coords, time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, result.Message, result)
}
