package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ashram-app-server/internal/services"
	"ashram-app-server/internal/utils"
)

// respondServiceError maps a service error to an HTTP response. Expected
// rejections keep their code and message so the client can render them
// directly; anything else is a 500.
func respondServiceError(c *gin.Context, err error) {
	svcErr, ok := services.AsServiceError(err)
	if !ok {
		utils.InternalServerError(c, err.Error())
		return
	}

	status := http.StatusBadRequest
	switch svcErr.Code {
	case services.CodeNotFound, services.CodeTemplateNotFound, services.CodeNoAppointmentToday:
		status = http.StatusNotFound
	case services.CodeInvalidState, services.CodeAlreadyCompleted, services.CodeSessionNotActive:
		status = http.StatusConflict
	case services.CodeOutOfRange, services.CodeOutsideTimeWindow, services.CodeRemedyRequired:
		status = http.StatusUnprocessableEntity
	}

	utils.ErrorWithCode(c, status, string(svcErr.Code), svcErr.Message, svcErr.Details)
}
