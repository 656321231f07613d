package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kingfisher-trust/kingfisher-records/services"
	"github.com/kingfisher-trust/kingfisher-records/utils"
	"github.com/stretchr/testify/assert"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"validation", utils.NewValidationError("contact", "Invalid phone number"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"invalid date", &utils.ValidationError{Code: "INVALID_DATE", Field: "start", Message: "bad"}, http.StatusBadRequest, "INVALID_DATE"},
		{"duplicate key", &services.DuplicateKeyError{Table: "donorTbl", Key: "DO1"}, http.StatusConflict, "DUPLICATE_KEY"},
		{"in use", &services.ReferentialIntegrityError{Table: "donorTbl", Key: "DO1", ReferencedBy: []string{"donationsTbl"}}, http.StatusConflict, "RECORD_IN_USE"},
		{"stock", &services.StockUnavailableError{ItemID: "IT1", Requested: 2, Available: 1}, http.StatusConflict, "NOT_IN_STOCK"},
		{"bad credential", services.ErrBadCredential, http.StatusUnauthorized, services.AuthBadCredential},
		{"revoked", services.ErrRevoked, http.StatusForbidden, services.AuthRevoked},
		{"insufficient", services.ErrInsufficientAccess, http.StatusForbidden, services.AuthInsufficientAccess},
		{"not found", services.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"already revoked", services.ErrAlreadyRevoked, http.StatusConflict, "ALREADY_REMOVED"},
		{"already given away", services.ErrAlreadyGivenAway, http.StatusConflict, "ALREADY_GIVEN_AWAY"},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestRespondErrorKeepsReferencingTables(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, &services.ReferentialIntegrityError{
		Table:        "staffTbl",
		Key:          "ST1",
		ReferencedBy: []string{"donationsTbl", "orderTbl"},
	})

	assert.Equal(t, []string{"donationsTbl", "orderTbl"}, decode(t, w).Error.ReferencedBy)
}
