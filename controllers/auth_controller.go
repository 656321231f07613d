package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kingfisher-trust/kingfisher-records/config"
	"github.com/kingfisher-trust/kingfisher-records/middleware"
	"github.com/kingfisher-trust/kingfisher-records/services"
)

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	StaffID  string `json:"staffID"`
	Password string `json:"password"`
}

// LoginResponse carries the new session and its bearer token
type LoginResponse struct {
	Session   services.Session `json:"session"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

// PasswordResetRequest represents an admin-approved password reset
type PasswordResetRequest struct {
	AdminID       string `json:"adminID" binding:"required"`
	AdminPassword string `json:"adminPassword" binding:"required"`
	StaffID       string `json:"staffID"`
	NewPassword   string `json:"newPassword"`
}

// SessionLoader reloads sessions from the shared database
type SessionLoader struct{}

// Session implements middleware.SessionLoader
func (SessionLoader) Session(ctx context.Context, staffID string) (services.Session, error) {
	return services.NewCredentials(config.GetDB()).Session(ctx, staffID)
}

// Login handles POST /api/v1/auth/login
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	staff, err := services.NewCredentials(config.GetDB()).Authenticate(c.Request.Context(), req.StaffID, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	sess := services.NewSession(*staff)
	token, expiresAt, err := middleware.IssueToken(config.GetConfig(), sess)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, LoginResponse{Session: sess, Token: token, ExpiresAt: expiresAt})
}

// ResetPassword handles POST /api/v1/auth/password-reset
func ResetPassword(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	err := services.NewCredentials(config.GetDB()).ResetPassword(
		c.Request.Context(), req.AdminID, req.AdminPassword, req.StaffID, req.NewPassword,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password Reset",
	})
}

// GetSession handles GET /api/v1/session
func GetSession(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	respondData(c, http.StatusOK, sess)
}

// CheckAccess handles GET /api/v1/access?required=N[&staffID=ID]. With a staff ID the
// answer includes the override that lets staff manage their own row.
func CheckAccess(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	required, err := strconv.Atoi(c.Query("required"))
	if err != nil || required < services.LevelRead || required > services.LevelDelete {
		respondFailure(c, http.StatusBadRequest, "VALIDATION_ERROR", "required must be 1, 2 or 3")
		return
	}

	allowed := sess.Can(required)
	if staffID := c.Query("staffID"); staffID != "" {
		allowed = allowed || sess.CanManageStaff(staffID)
	}
	respondData(c, http.StatusOK, gin.H{"allowed": allowed, "accessLevel": sess.AccessLevel})
}
