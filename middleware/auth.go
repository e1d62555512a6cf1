package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/yunshui/materials-api/config"
	"github.com/yunshui/materials-api/logger"
	"github.com/yunshui/materials-api/models"
	"go.uber.org/zap"
)

// Gin context keys set by EnsureValidToken
const (
	UserIDKey = "user_id"
	RoleKey   = "user_role"
	ClaimsKey = "validated_claims"
)

// CustomClaims contains custom data we want from the token.
type CustomClaims struct {
	Role string `json:"role"`
}

// Validate rejects tokens carrying an unknown role. A missing role is allowed;
// RequireRole turns it away where a role matters.
func (c CustomClaims) Validate(ctx context.Context) error {
	if c.Role != "" && !models.Role(strings.ToUpper(c.Role)).Valid() {
		return fmt.Errorf("unknown role %q", c.Role)
	}
	return nil
}

// UserRole returns the normalized role
func (c CustomClaims) UserRole() models.Role {
	return models.Role(strings.ToUpper(c.Role))
}

// EnsureValidToken is a middleware that will check the validity of our JWT.
func EnsureValidToken(cfg *config.Config) (gin.HandlerFunc, error) {
	issuerURL, err := url.Parse("https://" + cfg.Auth0Domain + "/")
	if err != nil {
		return nil, fmt.Errorf("failed to parse the issuer url: %w", err)
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{cfg.Auth0Audience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up the jwt validator: %w", err)
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		logger.FromContext(r.Context()).Warn("encountered error while validating JWT", zap.Error(err))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, writeErr := w.Write([]byte(`{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`)); writeErr != nil {
			logger.FromContext(r.Context()).Warn("failed to write error response", zap.Error(writeErr))
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
			token := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
			SetAuthContext(c, token)
			c.Next()
		}

		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		// the error handler already wrote the 401
		if !validated {
			c.Abort()
		}
	}, nil
}

// SetAuthContext stores validated claims and the values derived from them in the Gin context
func SetAuthContext(c *gin.Context, claims *validator.ValidatedClaims) {
	c.Set(UserIDKey, claims.RegisteredClaims.Subject)
	c.Set(ClaimsKey, claims)
	if custom, ok := claims.CustomClaims.(*CustomClaims); ok && custom != nil {
		c.Set(RoleKey, custom.UserRole())
	}
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return "", &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	userIDStr, ok := userID.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a string"}
	}

	return userIDStr, nil
}

// GetUserRole extracts the caller's role from the Gin context
func GetUserRole(c *gin.Context) (models.Role, error) {
	role, exists := c.Get(RoleKey)
	if !exists {
		return "", &AuthError{Code: "MISSING_ROLE", Message: "Role not found in token"}
	}

	r, ok := role.(models.Role)
	if !ok || !r.Valid() {
		return "", &AuthError{Code: "INVALID_ROLE", Message: "Role in token is not recognized"}
	}

	return r, nil
}

// GetClaims extracts the validated JWT claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// RequireRole is a middleware that lets only the given roles through
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetUserRole(c)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    err.(*AuthError).Code,
					"message": err.Error(),
				},
			})
			c.Abort()
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INSUFFICIENT_ROLE",
				"message": "Insufficient permissions to access this resource",
			},
		})
		c.Abort()
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
