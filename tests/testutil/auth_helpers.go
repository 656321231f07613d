package testutil

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kingfisher-trust/kingfisher-records/config"
	"github.com/kingfisher-trust/kingfisher-records/middleware"
	"github.com/kingfisher-trust/kingfisher-records/services"
	"github.com/stretchr/testify/require"
)

// SessionToken signs a bearer token for sess
func SessionToken(t *testing.T, cfg *config.Config, sess services.Session) string {
	t.Helper()

	token, _, err := middleware.IssueToken(cfg, sess)
	require.NoError(t, err)
	return token
}

// Authorize adds a bearer token for sess to req
func Authorize(t *testing.T, req *http.Request, cfg *config.Config, sess services.Session) {
	t.Helper()
	req.Header.Set("Authorization", "Bearer "+SessionToken(t, cfg, sess))
}

// SetMockSessionContext sets up an authenticated context for handler unit tests
func SetMockSessionContext(c *gin.Context, sess services.Session) {
	c.Set(middleware.SessionKey, sess)
}

// CreateTestContext creates a test Gin context
func CreateTestContext() (*gin.Context, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	c, engine := gin.CreateTestContext(nil)
	return c, engine
}
