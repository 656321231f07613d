package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kingfisher-trust/kingfisher-records/middleware"
	"github.com/kingfisher-trust/kingfisher-records/services"
	"github.com/kingfisher-trust/kingfisher-records/utils"
	"github.com/rs/zerolog/log"
)

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondFailure(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// respondError maps a service error onto a status code and error envelope
func respondError(c *gin.Context, err error) {
	var (
		validationErr *utils.ValidationError
		duplicateErr  *services.DuplicateKeyError
		referenceErr  *services.ReferentialIntegrityError
		stockErr      *services.StockUnavailableError
		authErr       *services.AuthError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    validationErr.Code,
				"message": validationErr.Message,
				"field":   validationErr.Field,
			},
		})
	case errors.As(err, &duplicateErr):
		respondFailure(c, http.StatusConflict, "DUPLICATE_KEY", "Record ID already in use, please try again")
	case errors.As(err, &referenceErr):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":         "RECORD_IN_USE",
				"message":      "Record is in use by other tables",
				"referencedBy": referenceErr.ReferencedBy,
			},
		})
	case errors.As(err, &stockErr):
		respondFailure(c, http.StatusConflict, "NOT_IN_STOCK", "Item "+stockErr.ItemID+" not in stock")
	case errors.As(err, &authErr):
		status := http.StatusUnauthorized
		if authErr.Code == services.AuthRevoked || authErr.Code == services.AuthInsufficientAccess {
			status = http.StatusForbidden
		}
		respondFailure(c, status, authErr.Code, authErr.UserMessage())
	case errors.Is(err, services.ErrNotFound):
		respondFailure(c, http.StatusNotFound, "NOT_FOUND", "Record not found")
	case errors.Is(err, services.ErrAlreadyRevoked):
		respondFailure(c, http.StatusConflict, "ALREADY_REMOVED", "Record Already Removed From System")
	case errors.Is(err, services.ErrAlreadyGivenAway):
		respondFailure(c, http.StatusConflict, "ALREADY_GIVEN_AWAY", "Food Item Already Given Away")
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		respondFailure(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong, please try again")
	}
}

// currentSession reads the caller's session, answering 401 itself when there is none
func currentSession(c *gin.Context) (services.Session, bool) {
	sess, err := middleware.GetSession(c)
	if err != nil {
		respondFailure(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract session information")
		return services.Session{}, false
	}
	return sess, true
}
