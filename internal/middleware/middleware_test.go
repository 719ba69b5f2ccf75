package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/d60-Lab/warbler/internal/auth"
	"github.com/d60-Lab/warbler/internal/model"
	"github.com/d60-Lab/warbler/internal/repository"
	"github.com/d60-Lab/warbler/internal/session"
	"github.com/d60-Lab/warbler/pkg/logger"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeUsers map[uint]*model.User

func (f fakeUsers) GetByID(_ context.Context, id uint) (*model.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(NewIPRateLimiter(0.001, 2)))
	r.GET("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
		codes[i] = w.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestIPRateLimiter_SweepsIdleVisitors(t *testing.T) {
	l := NewIPRateLimiter(1, 1)
	l.idle = 10 * time.Millisecond

	l.Allow("10.0.0.1")
	time.Sleep(20 * time.Millisecond)
	l.Allow("10.0.0.2")
	// 未到清理间隔，空闲 IP 仍保留
	assert.Equal(t, 2, l.Len())

	l.sweepEvery = 0
	l.Allow("10.0.0.2")
	assert.Equal(t, 1, l.Len())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Header().Get(RequestIDHeader))
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(zap.NewNop()) })

	r := gin.New()
	r.Use(RequestID(), Logger())
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, int64(http.StatusNotFound), entries[0].ContextMap()["status"])
}

func TestSessionAndIdentity(t *testing.T) {
	store, err := session.NewCookieStore("test-secret", session.Options{})
	require.NoError(t, err)
	resolver := auth.NewResolver(fakeUsers{111: {ID: 111, Username: "tester1"}})

	r := gin.New()
	r.Use(Session(store), Identity(resolver))
	r.POST("/login/:id", func(c *gin.Context) {
		sess := CurrentSession(c)
		sess.Set(session.CurrUserKey, c.Param("id"))
		require.NoError(t, sess.Save(c.Request.Context(), c.Writer))
		c.Status(http.StatusNoContent)
	})
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, auth.FromContext(c.Request.Context()).Username)
	})

	login := func(id string) []*http.Cookie {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login/"+id, nil))
		return w.Result().Cookies()
	}
	whoami := func(cookies []*http.Cookie) string {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Body.String()
	}

	assert.Equal(t, "", whoami(nil))
	assert.Equal(t, "tester1", whoami(login("111")))
	// 会话里的用户已不存在，按匿名处理
	assert.Equal(t, "", whoami(login("99999999")))
}
