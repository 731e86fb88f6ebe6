package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"inys-backend/internal/domain"
	"inys-backend/pkg/apperror"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRateLimitRejectsAfterLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(context.Background(), RateLimitConfig{Limit: 2, Window: time.Minute, KeyPrefix: "test:"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestMemoryStoreResetsAfterWindow(t *testing.T) {
	s := &memoryStore{window: time.Second}
	now := time.Now()

	count, _ := s.hit("k", now)
	assert.Equal(t, 1, count)
	count, _ = s.hit("k", now)
	assert.Equal(t, 2, count)

	count, _ = s.hit("k", now.Add(2*time.Second))
	assert.Equal(t, 1, count)

	s.sweep(now.Add(10 * time.Second))
	_, ok := s.buckets.Load("k")
	assert.False(t, ok)
}

func TestMemoryStoreSweepKeepsConcurrentHits(t *testing.T) {
	s := &memoryStore{window: time.Second}
	start := time.Now()
	s.hit("k", start)

	// Every hit below lands after the first window, racing a sweep that sees it expired
	later := start.Add(2 * time.Second)
	const hits = 50
	var wg sync.WaitGroup
	wg.Add(hits + 1)
	go func() {
		defer wg.Done()
		for i := 0; i < hits; i++ {
			s.sweep(later)
		}
	}()
	for i := 0; i < hits; i++ {
		go func() {
			defer wg.Done()
			s.hit("k", later)
		}()
	}
	wg.Wait()

	v, ok := s.buckets.Load("k")
	require.True(t, ok)
	assert.Equal(t, hits, v.(*memoryBucket).count)
}

func TestMemoryStoreSweepRetiresBucket(t *testing.T) {
	s := &memoryStore{window: time.Second}
	now := time.Now()
	s.hit("k", now)
	v, _ := s.buckets.Load("k")
	old := v.(*memoryBucket)

	s.sweep(now.Add(2 * time.Second))
	assert.True(t, old.dead)

	count, _ := s.hit("k", now.Add(2*time.Second))
	assert.Equal(t, 1, count)
	v, _ = s.buckets.Load("k")
	assert.NotSame(t, old, v.(*memoryBucket))
}

func TestSweepEveryStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweepEvery(ctx, &memoryStore{window: time.Second}, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

type stubAuth struct {
	user *domain.AdminUser
	err  error
}

func (s *stubAuth) Login(context.Context, string, string) (*domain.LoginResult, error) {
	return nil, errors.New("not used")
}

func (s *stubAuth) Authenticate(_ context.Context, token string) (*domain.AdminUser, error) {
	if token != "good" {
		return nil, apperror.Unauthorized("Invalid or expired token")
	}
	return s.user, s.err
}

func TestAuthMiddleware(t *testing.T) {
	auth := &stubAuth{user: &domain.AdminUser{ID: 5, Email: "a@b.c", Roles: []domain.Role{{Name: "Author"}}}}

	r := gin.New()
	r.Use(AuthMiddleware(auth))
	r.GET("/me", func(c *gin.Context) {
		id, _ := c.Request.Context().Value(domain.KeyUserID).(int64)
		c.JSON(http.StatusOK, gin.H{"id": id, "roles": c.GetStringSlice(string(domain.KeyUserRoles))})
	})

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer bad")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid or expired token", decode(t, w)["message"])
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, float64(5), body["id"])
		assert.Equal(t, []interface{}{"Author"}, body["roles"])
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: "good"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.GET("/app", func(c *gin.Context) { _ = c.Error(apperror.NotFound("Applicant not found")) })
	r.GET("/raw", func(c *gin.Context) { _ = c.Error(errors.New("pq: connection refused")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Applicant not found", body["message"])
	assert.NotEmpty(t, body["request_id"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/raw", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestRequestIDReusesValidHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.Request.Context().Value(domain.KeyRequestID).(string))
	})

	const id = "0b4a1d3e-3f0e-4a4f-9a9e-4a1c2d3e4f50"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", id)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, id, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "<script>")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "<script>", w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://inys.example"}, true))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := preflight("https://inys.example")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://inys.example", w.Header().Get("Access-Control-Allow-Origin"))

	// localhost is only trusted outside production
	w = preflight("http://localhost:3000")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
