package acceptance

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kingfisher-trust/kingfisher-records/config"
	"github.com/kingfisher-trust/kingfisher-records/controllers"
	"github.com/kingfisher-trust/kingfisher-records/models"
	"github.com/kingfisher-trust/kingfisher-records/observability"
	"github.com/kingfisher-trust/kingfisher-records/tests/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// bridge is a running bridge server over an in-memory database
type bridge struct {
	server *httptest.Server
	db     *gorm.DB
	cfg    *config.Config
}

func startBridge(t *testing.T) *bridge {
	t.Helper()
	gin.SetMode(gin.TestMode)
	testutil.MustSetTestEnvironment(t)

	cfg := testutil.TestConfig()
	db := testutil.SetupTestDB(t, cfg)

	router := gin.New()
	router.Use(gin.Recovery(), observability.RequestLogger(zerolog.Nop()), observability.RequestMetricsMiddleware())
	controllers.RegisterRoutes(router.Group("/api/v1"), cfg)

	return &bridge{server: httptest.NewServer(router), db: db, cfg: cfg}
}

func (b *bridge) close() {
	b.server.Close()
}

// reset empties every table between tests
func (b *bridge) reset(t *testing.T) {
	t.Helper()
	for _, model := range models.All() {
		require.NoError(t, b.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error)
	}
}

// call sends a JSON request to the running server and decodes the envelope into out
func (b *bridge) call(t *testing.T, method, path, token string, body, out interface{}) (testutil.Envelope, int) {
	t.Helper()

	resp, err := http.DefaultClient.Do(testutil.NewJSONRequest(t, method, b.server.URL+path, token, body))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if resp.StatusCode >= 300 {
		out = nil
	}
	return testutil.Decode(t, raw, out), resp.StatusCode
}

func (b *bridge) login(t *testing.T, staffID, password string) string {
	t.Helper()

	var login controllers.LoginResponse
	_, status := b.call(t, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"staffID": staffID, "password": password}, &login)
	require.Equal(t, http.StatusOK, status)
	return login.Token
}
