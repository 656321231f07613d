package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kingfisher-trust/kingfisher-records/config"
	"github.com/kingfisher-trust/kingfisher-records/middleware"
	"github.com/kingfisher-trust/kingfisher-records/services"
	"github.com/kingfisher-trust/kingfisher-records/tests/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	adminSession  = services.Session{StaffID: "admin", FullName: "Admin", AccessLevel: 3}
	editorSession = services.Session{StaffID: "ST00000002", FullName: "Sam Tester", AccessLevel: 2}
	readerSession = services.Session{StaffID: "ST00000001", FullName: "Sam Tester", AccessLevel: 1}
)

// envelope is the JSON shape every handler answers with
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   int             `json:"count"`
	Message string          `json:"message"`
	Error   struct {
		Code         string   `json:"code"`
		Message      string   `json:"message"`
		Field        string   `json:"field"`
		ReferencedBy []string `json:"referencedBy"`
	} `json:"error"`
}

func setupControllerTest(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return testutil.SetupTestDB(t, testutil.TestConfig())
}

// performRequest serves one request through handler mounted at route. A nil session
// leaves the context unauthenticated.
func performRequest(t *testing.T, handler gin.HandlerFunc, sess *services.Session, method, route, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	router := gin.New()
	router.Handle(method, route, func(c *gin.Context) {
		if sess != nil {
			testutil.SetMockSessionContext(c, *sess)
		}
		c.Next()
	}, handler)

	return serve(router, newJSONRequest(t, method, path, body))
}

// newAuthRouter mounts GetSession behind the real session middleware
func newAuthRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.GET("/session", middleware.EnsureValidSession(cfg, SessionLoader{}), GetSession)
	return router
}

func newJSONRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(decode(t, w).Data, out), w.Body.String())
}
