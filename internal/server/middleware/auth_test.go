package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shwepos/internal/utils"
)

func authRouter(tokens *utils.TokenIssuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", JWTAuth(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"owner_id": OwnerID(c)})
	})
	return r
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	tokens := utils.NewTokenIssuer("test-secret", time.Hour)
	token, _, err := tokens.GenerateToken(42, "shopowner")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	authRouter(tokens).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"owner_id":42`)
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	tokens := utils.NewTokenIssuer("test-secret", time.Hour)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	authRouter(tokens).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthRejectsNonBearer(t *testing.T) {
	tokens := utils.NewTokenIssuer("test-secret", time.Hour)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic abc")
	authRouter(tokens).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthRejectsForgedToken(t *testing.T) {
	tokens := utils.NewTokenIssuer("test-secret", time.Hour)
	forger := utils.NewTokenIssuer("other-secret", time.Hour)
	token, _, err := forger.GenerateToken(42, "shopowner")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	authRouter(tokens).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
