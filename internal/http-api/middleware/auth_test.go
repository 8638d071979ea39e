package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"reviewhub/internal/http-api/access"
	"reviewhub/internal/http-api/service"
)

// stubAuthService validates exactly one known token.
type stubAuthService struct {
	token string
	actor access.Actor
}

func (s *stubAuthService) Signup(ctx context.Context, username, email string) error {
	return nil
}

func (s *stubAuthService) Token(ctx context.Context, username, confirmationCode string) (string, int64, error) {
	return "", 0, service.ErrInvalidCode
}

func (s *stubAuthService) ValidateToken(tokenString string) (access.Actor, error) {
	if tokenString == s.token {
		return s.actor, nil
	}
	return access.Anonymous, service.ErrInvalidToken
}

func newEchoRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/echo", mw, func(c *gin.Context) {
		actor := ActorFromContext(c)
		c.JSON(http.StatusOK, gin.H{
			"authenticated": actor.Authenticated,
			"id":            actor.ID,
		})
	})
	return r
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	svc := &stubAuthService{
		token: "good-token",
		actor: access.Actor{ID: "u1", Role: access.RoleUser, Authenticated: true},
	}
	router := newEchoRouter(AuthMiddleware(svc))

	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"u1"`)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	router := newEchoRouter(AuthMiddleware(&stubAuthService{}))

	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	router := newEchoRouter(AuthMiddleware(&stubAuthService{token: "good-token"}))

	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.Header.Set("Authorization", "NotBearer xyz")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuth_AnonymousPasses(t *testing.T) {
	router := newEchoRouter(OptionalAuth(&stubAuthService{}))

	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}

func TestOptionalAuth_BadTokenRejected(t *testing.T) {
	router := newEchoRouter(OptionalAuth(&stubAuthService{token: "good-token"}))

	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.Header.Set("Authorization", "Bearer forged")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestActorFromContext_Unset(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	actor := ActorFromContext(c)

	assert.False(t, actor.Authenticated)
	assert.Empty(t, actor.ID)
}
