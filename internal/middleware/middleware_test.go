package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/nnptud/lms-backend/internal/model"
	"github.com/nnptud/lms-backend/internal/response"
	"github.com/nnptud/lms-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth map[string]*model.Actor

func (s stubAuth) Authenticate(token string) (*model.Actor, error) {
	switch token {
	case "":
		return nil, service.ErrTokenMissing
	case "expired":
		return nil, service.ErrTokenExpired
	}
	if a, ok := s[token]; ok {
		return a, nil
	}
	return nil, service.ErrTokenInvalid
}

var testActors = stubAuth{
	"admin":   {ID: 1, Role: model.RoleAdmin},
	"teacher": {ID: 2, Role: model.RoleTeacher},
	"student": {ID: 3, Role: model.RoleStudent},
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) response.ErrCode {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	if body.Error == nil {
		return ""
	}
	return body.Error.Code
}

func newAuthRouter(roles ...model.Role) *gin.Engine {
	r := gin.New()
	chain := []gin.HandlerFunc{RequireAuth(testActors)}
	if len(roles) > 0 {
		chain = append(chain, RequireRole(roles...))
	}
	chain = append(chain, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetActor(c).ID})
	})
	r.GET("/", chain...)
	return r
}

func TestRequireAuth(t *testing.T) {
	r := newAuthRouter()

	tests := []struct {
		name     string
		header   string
		query    string
		wantCode int
		wantErr  response.ErrCode
	}{
		{"missing", "", "", http.StatusUnauthorized, response.ErrTokenRequired},
		{"expired", "Bearer expired", "", http.StatusUnauthorized, response.ErrTokenExpired},
		{"garbage", "Bearer nope", "", http.StatusUnauthorized, response.ErrTokenInvalid},
		{"wrong scheme", "Basic teacher", "", http.StatusUnauthorized, response.ErrTokenRequired},
		{"bearer header", "Bearer teacher", "", http.StatusOK, ""},
		{"lowercase scheme", "bearer teacher", "", http.StatusOK, ""},
		{"query fallback", "", "student", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, errorCode(t, w))
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		roles    []model.Role
		token    string
		wantCode int
		wantErr  response.ErrCode
	}{
		{"admin only, admin", []model.Role{model.RoleAdmin}, "admin", http.StatusOK, ""},
		{"admin only, teacher", []model.Role{model.RoleAdmin}, "teacher", http.StatusForbidden, response.ErrAdminAccessOnly},
		{"student only, teacher", []model.Role{model.RoleStudent}, "teacher", http.StatusForbidden, response.ErrStudentAccessOnly},
		{"managers, teacher", []model.Role{model.RoleTeacher, model.RoleAdmin}, "teacher", http.StatusOK, ""},
		{"managers, student", []model.Role{model.RoleTeacher, model.RoleAdmin}, "student", http.StatusForbidden, response.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newAuthRouter(tt.roles...)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, errorCode(t, w))
			}
		})
	}
}

func TestRequireRole_WithoutAuth(t *testing.T) {
	r := gin.New()
	r.GET("/", RequireRole(model.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimiter_Allow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 3, time.Minute)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "request %d", i)
	}
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "buckets are per key")

	now = now.Add(30 * time.Second)
	assert.False(t, rl.Allow("10.0.0.1"), "partial intervals do not refill")

	now = now.Add(30 * time.Second)
	assert.True(t, rl.Allow("10.0.0.1"))

	now = now.Add(time.Hour)
	rl.cleanup()
	rl.mu.Lock()
	assert.Empty(t, rl.visitors)
	rl.mu.Unlock()
}

func TestRateLimiter_Middleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 1, time.Minute)
	r := gin.New()
	r.POST("/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, response.ErrRateLimitExceeded, errorCode(t, w))
}

func TestBrotli(t *testing.T) {
	large := strings.Repeat("assignment ", 500)
	r := gin.New()
	cfg := DefaultBrotliConfig
	cfg.ExcludedPrefixes = []string{"/uploads"}
	r.Use(BrotliWithConfig(cfg))
	r.GET("/large", func(c *gin.Context) { c.String(http.StatusOK, large) })
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/uploads/file", func(c *gin.Context) { c.String(http.StatusOK, large) })

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Accept-Encoding", "gzip, br;q=1.0")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := get("/large")
	require.Equal(t, "br", w.Header().Get("Content-Encoding"))
	body, err := io.ReadAll(brotli.NewReader(w.Body))
	require.NoError(t, err)
	assert.Equal(t, large, string(body))

	w = get("/small")
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "ok", w.Body.String())

	w = get("/uploads/file")
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, large, w.Body.String())
}

func TestCacheHeaders(t *testing.T) {
	r := gin.New()
	r.GET("/api", NoStore(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/static", CacheControl(3600), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api", nil))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static", nil))
	assert.Equal(t, "public, max-age=3600, immutable", w.Header().Get("Cache-Control"))
}
