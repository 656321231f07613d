package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// Envelope is the JSON shape every bridge response uses
type Envelope struct {
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

// NewJSONRequest builds a request with body encoded as JSON and, when token is set, a bearer token
func NewJSONRequest(t *testing.T, method, url, token string, body interface{}) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// ServeJSON sends a JSON request straight to handler
func ServeJSON(t *testing.T, handler http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, NewJSONRequest(t, method, path, token, body))
	return w
}

// Decode parses a response envelope, unmarshalling its data into out when out is not nil
func Decode(t *testing.T, body []byte, out interface{}) Envelope {
	t.Helper()

	var env Envelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out), string(body))
	}
	return env
}
