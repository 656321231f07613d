package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/kingfisher-trust/kingfisher-records/config"
	"github.com/kingfisher-trust/kingfisher-records/middleware"
	"github.com/kingfisher-trust/kingfisher-records/services"
	"github.com/kingfisher-trust/kingfisher-records/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	db := setupControllerTest(t)
	testutil.CreateStaff(t, db, "ST00000001", "1", "Secret12")
	revoked := testutil.CreateStaff(t, db, "ST00000009", "2", "Secret12")
	require.NoError(t, db.Model(revoked).Update("accessLevel", "x").Error)

	tests := []struct {
		name           string
		body           map[string]interface{}
		expectedStatus int
		expectedCode   string
		expectedMsg    string
	}{
		{
			name:           "valid credentials",
			body:           map[string]interface{}{"staffID": "ST00000001", "password": "Secret12"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "wrong password",
			body:           map[string]interface{}{"staffID": "ST00000001", "password": "nope"},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   services.AuthBadCredential,
			expectedMsg:    "Incorrect username or password",
		},
		{
			name:           "unknown staff reads the same as a wrong password",
			body:           map[string]interface{}{"staffID": "ST00000404", "password": "Secret12"},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   services.AuthNotFound,
			expectedMsg:    "Incorrect username or password",
		},
		{
			name:           "revoked login",
			body:           map[string]interface{}{"staffID": "ST00000009", "password": "Secret12"},
			expectedStatus: http.StatusForbidden,
			expectedCode:   services.AuthRevoked,
			expectedMsg:    "User has no access rights",
		},
		{
			name:           "empty fields",
			body:           map[string]interface{}{"staffID": "", "password": ""},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
			expectedMsg:    "Please fill all fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(t, Login, nil, "POST", "/auth/login", "/auth/login", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())

			if tt.expectedStatus != http.StatusOK {
				resp := decode(t, w)
				assert.Equal(t, tt.expectedCode, resp.Error.Code)
				assert.Equal(t, tt.expectedMsg, resp.Error.Message)
				return
			}

			var login LoginResponse
			decodeData(t, w, &login)
			assert.Equal(t, "ST00000001", login.Session.StaffID)
			assert.Equal(t, 1, login.Session.AccessLevel)
			assert.NotEmpty(t, login.Token)
			assert.False(t, login.ExpiresAt.IsZero())
		})
	}
}

func TestLoginTokenOpensSession(t *testing.T) {
	db := setupControllerTest(t)
	testutil.CreateStaff(t, db, "ST00000002", "2", "Secret12")

	w := performRequest(t, Login, nil, "POST", "/auth/login", "/auth/login",
		map[string]interface{}{"staffID": "ST00000002", "password": "Secret12"})
	require.Equal(t, http.StatusOK, w.Code)
	var login LoginResponse
	decodeData(t, w, &login)

	cfg := config.GetConfig()
	router := newAuthRouter(cfg)
	req := newJSONRequest(t, "GET", "/session", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	w = serve(router, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var sess services.Session
	decodeData(t, w, &sess)
	assert.Equal(t, services.Session{StaffID: "ST00000002", FullName: "Sam Tester", AccessLevel: 2}, sess)
}

func TestResetPassword(t *testing.T) {
	db := setupControllerTest(t)
	testutil.CreateStaff(t, db, "ST00000003", "3", "AdminPass")
	testutil.CreateStaff(t, db, "ST00000001", "1", "Forgotten")

	tests := []struct {
		name           string
		body           map[string]interface{}
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "missing admin credentials",
			body:           map[string]interface{}{"staffID": "ST00000001", "newPassword": "Fresh123"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:           "admin password wrong",
			body:           map[string]interface{}{"adminID": "ST00000003", "adminPassword": "guess", "staffID": "ST00000001", "newPassword": "Fresh123"},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   services.AuthBadCredential,
		},
		{
			name:           "approver below level 3",
			body:           map[string]interface{}{"adminID": "ST00000001", "adminPassword": "Forgotten", "staffID": "ST00000001", "newPassword": "Fresh123"},
			expectedStatus: http.StatusForbidden,
			expectedCode:   services.AuthInsufficientAccess,
		},
		{
			name:           "unknown target",
			body:           map[string]interface{}{"adminID": "ST00000003", "adminPassword": "AdminPass", "staffID": "ST00000404", "newPassword": "Fresh123"},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name:           "reset",
			body:           map[string]interface{}{"adminID": "ST00000003", "adminPassword": "AdminPass", "staffID": "ST00000001", "newPassword": "Fresh123"},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(t, ResetPassword, nil, "POST", "/auth/password-reset", "/auth/password-reset", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())

			resp := decode(t, w)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "Password Reset", resp.Message)
				return
			}
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
		})
	}

	_, err := services.NewCredentials(db).Authenticate(context.Background(), "ST00000001", "Fresh123")
	assert.NoError(t, err, "new password should log in")
}

func TestCheckAccess(t *testing.T) {
	setupControllerTest(t)

	tests := []struct {
		name            string
		session         services.Session
		query           string
		expectedStatus  int
		expectedAllowed bool
	}{
		{"reader may read", readerSession, "?required=1", http.StatusOK, true},
		{"reader may not edit", readerSession, "?required=2", http.StatusOK, false},
		{"editor may not delete", editorSession, "?required=3", http.StatusOK, false},
		{"admin may delete", adminSession, "?required=3", http.StatusOK, true},
		{"own staff row overrides level", readerSession, "?required=3&staffID=ST00000001", http.StatusOK, true},
		{"someone else's row does not", readerSession, "?required=3&staffID=ST00000002", http.StatusOK, false},
		{"level out of range", adminSession, "?required=4", http.StatusBadRequest, false},
		{"level missing", adminSession, "", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := tt.session
			w := performRequest(t, CheckAccess, &sess, "GET", "/access", "/access"+tt.query, nil)
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var answer struct {
				Allowed     bool `json:"allowed"`
				AccessLevel int  `json:"accessLevel"`
			}
			decodeData(t, w, &answer)
			assert.Equal(t, tt.expectedAllowed, answer.Allowed)
			assert.Equal(t, sess.AccessLevel, answer.AccessLevel)
		})
	}
}

func TestGetSessionWithoutSession(t *testing.T) {
	setupControllerTest(t)

	w := performRequest(t, GetSession, nil, "GET", "/session", "/session", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", decode(t, w).Error.Code)
}

var _ middleware.SessionLoader = SessionLoader{}
