package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yunshui/materials-api/middleware"
	"github.com/yunshui/materials-api/models"
)

// MockValidatedClaims creates ValidatedClaims shaped like the ones the JWT middleware produces
func MockValidatedClaims(subject string, role models.Role) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  "https://test.auth0.com/",
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Role: string(role),
		},
	}
}

// MockAuthMiddleware stands in for EnsureValidToken and authenticates every
// request as subject with role
func MockAuthMiddleware(subject string, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetAuthContext(c, MockValidatedClaims(subject, role))
		c.Next()
	}
}

// HeaderAuthMiddleware authenticates from X-Test-User and X-Test-Role headers,
// so one router can serve several callers. Requests without X-Test-User get 401.
func HeaderAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetHeader("X-Test-User")
		if subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "INVALID_TOKEN", "message": "Failed to validate JWT."},
			})
			return
		}
		middleware.SetAuthContext(c, MockValidatedClaims(subject, models.Role(c.GetHeader("X-Test-Role"))))
		c.Next()
	}
}

// Envelope is the decoded API response body
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

// ErrorCode returns the error code, or "" on success
func (e Envelope) ErrorCode() string {
	if e.Error == nil {
		return ""
	}
	return e.Error.Code
}

// DecodeData unmarshals the data field into v
func (e Envelope) DecodeData(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Data, v))
}

// Call sends a JSON request to handler as the given caller and decodes the envelope.
// An empty subject sends no test auth headers.
func Call(t *testing.T, handler http.Handler, method, path string, body interface{}, subject string, role models.Role) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if subject != "" {
		req.Header.Set("X-Test-User", subject)
		req.Header.Set("X-Test-Role", string(role))
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var env Envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" && bytes.HasPrefix(bytes.TrimSpace(w.Body.Bytes()), []byte("{")) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}
