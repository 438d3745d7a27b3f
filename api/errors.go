package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/carebooking/internal/domain"
	"github.com/Domenick1991/carebooking/internal/hospitalapi"
	"github.com/Domenick1991/carebooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

// writeError maps service errors onto HTTP answers.
func writeError(c *gin.Context, err error) {
	var (
		verrs booking.ValidationErrors
		ext   *domain.ExternalCallError
	)
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "booking is incomplete", "fields": verrs})
	case errors.Is(err, booking.ErrSessionNotFound), errors.Is(err, booking.ErrNoConfirmation):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrSlotUnavailable), errors.Is(err, booking.ErrSubmitInProgress),
		errors.Is(err, booking.ErrSessionChanged):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, hospitalapi.ErrNoBearer):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sign in to continue"})
	case errors.Is(err, booking.ErrInvalidWeekShift):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &ext):
		c.JSON(http.StatusBadGateway, gin.H{"error": ext.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
