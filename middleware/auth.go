package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kingfisher-trust/kingfisher-records/config"
	"github.com/kingfisher-trust/kingfisher-records/observability"
	"github.com/kingfisher-trust/kingfisher-records/services"
	"github.com/rs/zerolog/log"
	jose "gopkg.in/go-jose/go-jose.v2"
	"gopkg.in/go-jose/go-jose.v2/jwt"
)

// SessionKey is the gin context key holding the services.Session of the caller
const SessionKey = "session"

// SessionClaims contains the session data carried in the token besides the subject.
type SessionClaims struct {
	Name        string `json:"name"`
	AccessLevel int    `json:"access_level"`
}

// Validate rejects claims with a clearance outside the known levels.
func (c SessionClaims) Validate(ctx context.Context) error {
	if c.AccessLevel < 0 || c.AccessLevel > services.LevelDelete {
		return fmt.Errorf("access level %d out of range", c.AccessLevel)
	}
	return nil
}

// SessionLoader re-reads the current clearance of a staff member
type SessionLoader interface {
	Session(ctx context.Context, staffID string) (services.Session, error)
}

// IssueToken signs a session token for sess, valid for the configured TTL
func IssueToken(cfg *config.Config, sess services.Session) (string, time.Time, error) {
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: []byte(cfg.SessionSecret)},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create token signer: %w", err)
	}

	now := time.Now()
	expires := now.Add(cfg.SessionTTL)
	registered := jwt.Claims{
		Issuer:    cfg.SessionIssuer,
		Subject:   sess.StaffID,
		Audience:  jwt.Audience{config.SessionAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Expiry:    jwt.NewNumericDate(expires),
	}
	custom := SessionClaims{Name: sess.FullName, AccessLevel: sess.AccessLevel}

	token, err := jwt.Signed(signer).Claims(registered).Claims(custom).CompactSerialize()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expires, nil
}

// EnsureValidSession is a middleware that checks the session token and reloads the
// caller's staff row, so a revoked or re-levelled login takes effect on its next request.
func EnsureValidSession(cfg *config.Config, loader SessionLoader) gin.HandlerFunc {
	secret := []byte(cfg.SessionSecret)
	keyFunc := func(ctx context.Context) (interface{}, error) {
		return secret, nil
	}

	jwtValidator, err := validator.New(
		keyFunc,
		validator.HS256,
		cfg.SessionIssuer,
		[]string{config.SessionAudience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &SessionClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up the session validator")
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		log.Debug().Err(err).Msg("rejected session token")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, writeErr := w.Write([]byte(`{"success":false,"error":{"code":"INVALID_TOKEN","message":"Session is missing or has expired."}}`)); writeErr != nil {
			log.Error().Err(writeErr).Msg("failed to write error response")
		}
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		validated := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			validated = true
			claims := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)

			sess, err := loader.Session(r.Context(), claims.RegisteredClaims.Subject)
			if err != nil {
				abortWithSessionError(c, err)
				return
			}

			c.Set(SessionKey, sess)
			c.Set(observability.StaffIDKey, sess.StaffID)
			c.Next()
		}

		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !validated {
			c.Abort()
		}
	}
}

func abortWithSessionError(c *gin.Context, err error) {
	var authErr *services.AuthError
	if !errors.As(err, &authErr) {
		log.Error().Err(err).Msg("failed to load session")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to load session",
			},
		})
		return
	}

	status := http.StatusUnauthorized
	if authErr.Code == services.AuthRevoked {
		status = http.StatusForbidden
	}
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    authErr.Code,
			"message": authErr.UserMessage(),
		},
	})
}

// GetSession extracts the caller's session from the Gin context
func GetSession(c *gin.Context) (services.Session, error) {
	value, exists := c.Get(SessionKey)
	if !exists {
		return services.Session{}, &AuthError{Code: "MISSING_SESSION", Message: "Session not found in context"}
	}

	sess, ok := value.(services.Session)
	if !ok {
		return services.Session{}, &AuthError{Code: "INVALID_SESSION", Message: "Session is not in the expected format"}
	}

	return sess, nil
}

// RequireAccess is a middleware that checks the caller clears the given level
func RequireAccess(level int) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := GetSession(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MISSING_SESSION",
					"message": "Could not retrieve session",
				},
			})
			c.Abort()
			return
		}

		if !sess.Can(level) {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    services.AuthInsufficientAccess,
					"message": services.ErrInsufficientAccess.UserMessage(),
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
