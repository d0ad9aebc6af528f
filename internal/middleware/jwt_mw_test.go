package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jumakrk/IST-MOBILE-APP/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedRouter(jwtUtil *utils.JWTUtil) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", JWTAuthMiddleware(jwtUtil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user": c.GetString(AuthUserKey),
			"role": c.GetString(AuthRoleKey),
		})
	})
	return r
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	r := protectedRouter(utils.NewJWTUtil("test-secret", 1))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_MalformedHeader(t *testing.T) {
	r := protectedRouter(utils.NewJWTUtil("test-secret", 1))

	for _, header := range []string{"Bearer", "Token abc", "abc"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestJWTAuthMiddleware_InvalidToken(t *testing.T) {
	r := protectedRouter(utils.NewJWTUtil("test-secret", 1))

	// Signed with a different secret.
	other := utils.NewJWTUtil("other-secret", 1)
	token, err := other.GenerateToken("u1", "user")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_ValidTokenSetsClaims(t *testing.T) {
	jwtUtil := utils.NewJWTUtil("test-secret", 1)
	r := protectedRouter(jwtUtil)

	token, err := jwtUtil.GenerateToken("u1", "admin")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"u1","role":"admin"}`, w.Body.String())
}

func TestAdminMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", func(c *gin.Context) {
		c.Set(AuthRoleKey, c.Query("as"))
	}, AdminMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, tc := range []struct {
		role string
		want int
	}{
		{"admin", http.StatusOK},
		{"user", http.StatusForbidden},
		{"", http.StatusForbidden},
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin?as="+tc.role, nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, tc.want, w.Code, "role %q", tc.role)
	}
}
