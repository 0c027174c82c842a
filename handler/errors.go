package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SVG-campus/ContractKit/middleware"
	"github.com/SVG-campus/ContractKit/model"
	"github.com/gin-gonic/gin"
)

// respondError maps domain errors onto HTTP status codes. Unclassified
// errors are logged and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	var ve *model.ValidationError
	var te *model.TransitionError
	var ee *model.ExternalError

	switch {
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, model.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
	case errors.Is(err, model.ErrSubscriptionRequired):
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error": "Active subscription required",
			"code":  "subscription_required",
		})
	case errors.Is(err, model.ErrAlreadySigned):
		c.JSON(http.StatusConflict, gin.H{"error": "Contract has already been signed"})
	case errors.Is(err, model.ErrNotReadyToSign):
		c.JSON(http.StatusConflict, gin.H{"error": "Contract has not been sent for signature"})
	case errors.Is(err, model.ErrContractCancelled):
		c.JSON(http.StatusConflict, gin.H{"error": "Contract has been cancelled"})
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "fields": ve.Fields})
	case errors.As(err, &te):
		c.JSON(http.StatusConflict, gin.H{"error": te.Error()})
	case errors.As(err, &ee):
		slog.ErrorContext(c.Request.Context(), "external service failed", "service", ee.Service, "error", ee.Err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream service unavailable", "service": ee.Service})
	default:
		slog.ErrorContext(c.Request.Context(), "request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// principalFrom reads the authenticated identity the middleware stored.
func principalFrom(c *gin.Context) model.Principal {
	return model.Principal{
		UserID: middleware.GetUserID(c),
		Email:  middleware.GetEmail(c),
	}
}
