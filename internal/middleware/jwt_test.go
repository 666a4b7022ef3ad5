package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edustack/lms-api/internal/service"
	"github.com/edustack/lms-api/pkg/config"
)

func jwtTestRouter(tokens *service.TokenIssuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", JWT(tokens), func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "claims missing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"subject": claims.Subject, "email": claims.Email})
	})
	return r
}

func TestJWTMiddlewareAllowsValidToken(t *testing.T) {
	tokens := service.NewTokenIssuer(config.JWTConfig{Secret: "test-secret"})
	router := jwtTestRouter(tokens)

	token, err := tokens.Issue("u1", "ada@example.com")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u1")
}

func TestJWTMiddlewareRejectsMissingHeader(t *testing.T) {
	tokens := service.NewTokenIssuer(config.JWTConfig{Secret: "test-secret"})
	router := jwtTestRouter(tokens)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddlewareRejectsMalformedHeader(t *testing.T) {
	tokens := service.NewTokenIssuer(config.JWTConfig{Secret: "test-secret"})
	router := jwtTestRouter(tokens)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddlewareRejectsForeignToken(t *testing.T) {
	tokens := service.NewTokenIssuer(config.JWTConfig{Secret: "test-secret"})
	other := service.NewTokenIssuer(config.JWTConfig{Secret: "other-secret"})
	router := jwtTestRouter(tokens)

	token, err := other.Issue("u1", "ada@example.com")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
