package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

type stubAuthenticator struct {
	session *models.Session
	err     error
}

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*models.Session, error) {
	if token != "good" {
		return nil, apperrors.ErrUnauthorized
	}
	return s.session, s.err
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", append(handlers, func(c *gin.Context) { c.Status(http.StatusNoContent) })...)
	return r
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	staff := &models.Session{UserID: "u1", Role: models.RoleStaff}
	admin := &models.Session{UserID: "a1", Role: models.RoleAdmin}

	tests := []struct {
		name   string
		auth   stubAuthenticator
		extra  []gin.HandlerFunc
		header string
		status int
	}{
		{name: "missing header", auth: stubAuthenticator{session: staff}, status: http.StatusUnauthorized},
		{name: "bad token", auth: stubAuthenticator{session: staff}, header: "Bearer bad", status: http.StatusUnauthorized},
		{name: "revoked", auth: stubAuthenticator{err: apperrors.Unauthorized("revoked")}, header: "Bearer good", status: http.StatusUnauthorized},
		{name: "store down", auth: stubAuthenticator{err: apperrors.Transient("redis", errors.New("refused"))}, header: "Bearer good", status: http.StatusServiceUnavailable},
		{name: "staff ok", auth: stubAuthenticator{session: staff}, header: "Bearer good", status: http.StatusNoContent},
		{name: "staff on admin route", auth: stubAuthenticator{session: staff}, extra: []gin.HandlerFunc{RequireAdmin()}, header: "Bearer good", status: http.StatusForbidden},
		{name: "admin on admin route", auth: stubAuthenticator{session: admin}, extra: []gin.HandlerFunc{RequireAdmin()}, header: "Bearer good", status: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(append([]gin.HandlerFunc{Auth(tt.auth)}, tt.extra...)...)
			w := serve(r, tt.header)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	r := newRouter(RequestID(), func(c *gin.Context) {
		seen = RequestIDFromContext(c.Request.Context())
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", seen)
	assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))

	w = serve(r, "")
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}
