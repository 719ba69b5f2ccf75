package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, Options{CookieName: "sid", TTL: time.Hour}), mr
}

func newCookieStore(t *testing.T) *CookieStore {
	t.Helper()
	s, err := NewCookieStore("test-secret", Options{CookieName: "sid", TTL: time.Hour})
	require.NoError(t, err)
	return s
}

// roundTrip 保存会话，再用返回的 Cookie 构造下一个请求
func roundTrip(t *testing.T, store Store, sess *Session) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, sess.Save(context.Background(), rec))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestStores_PersistValues(t *testing.T) {
	redisStore, _ := newRedisStore(t)
	stores := map[string]Store{
		"redis":  redisStore,
		"cookie": newCookieStore(t),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sess, err := store.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.True(t, sess.IsNew())

			sess.Set(CurrUserKey, "111")
			sess.AddFlash("danger", "Access unauthorized.")

			next, err := store.Load(ctx, roundTrip(t, store, sess))
			require.NoError(t, err)
			assert.False(t, next.IsNew())
			assert.Equal(t, sess.ID(), next.ID())

			v, ok := next.Get(CurrUserKey)
			assert.True(t, ok)
			assert.Equal(t, "111", v)

			flashes := next.Flashes()
			require.Len(t, flashes, 1)
			assert.Equal(t, "Access unauthorized.", flashes[0].Message)
			assert.Empty(t, next.Flashes())
		})
	}
}

func TestStores_ClearExpiresCookie(t *testing.T) {
	redisStore, mr := newRedisStore(t)
	ctx := context.Background()

	sess, err := redisStore.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.Set(CurrUserKey, "111")
	loaded, err := redisStore.Load(ctx, roundTrip(t, redisStore, sess))
	require.NoError(t, err)
	require.True(t, mr.Exists("session:"+sess.ID()))

	loaded.Clear()
	rec := httptest.NewRecorder()
	require.NoError(t, loaded.Save(ctx, rec))

	assert.False(t, mr.Exists("session:"+sess.ID()))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestRedisStore_ExpiredSessionIsNew(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	sess, err := store.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.Set(CurrUserKey, "111")
	req := roundTrip(t, store, sess)

	mr.FastForward(2 * time.Hour)

	next, err := store.Load(ctx, req)
	require.NoError(t, err)
	assert.True(t, next.IsNew())
	assert.NotEqual(t, sess.ID(), next.ID())
	_, ok := next.Get(CurrUserKey)
	assert.False(t, ok)
}

func TestCookieStore_TamperedCookieIsNew(t *testing.T) {
	store := newCookieStore(t)
	other, err := NewCookieStore("another-secret", Options{CookieName: "sid"})
	require.NoError(t, err)
	ctx := context.Background()

	sess, err := other.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.Set(CurrUserKey, "111")

	next, err := store.Load(ctx, roundTrip(t, other, sess))
	require.NoError(t, err)
	assert.True(t, next.IsNew())
	_, ok := next.Get(CurrUserKey)
	assert.False(t, ok)
}

func TestNewCookieStore_RequiresSecret(t *testing.T) {
	_, err := NewCookieStore("", Options{})
	assert.Error(t, err)
}

func TestRedisStore_RegenerateRetiresOldID(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	// 登录前已存在的会话（例如只带了一条提示）
	pre, err := store.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	pre.AddFlash("info", "welcome")
	preReq := roundTrip(t, store, pre)
	oldID := pre.ID()

	sess, err := store.Load(ctx, preReq)
	require.NoError(t, err)
	require.Equal(t, oldID, sess.ID())

	sess.Regenerate()
	sess.Set(CurrUserKey, "111")
	postReq := roundTrip(t, store, sess)
	assert.NotEqual(t, oldID, sess.ID())
	assert.False(t, mr.Exists("session:"+oldID))

	// 旧 Cookie 不再对应任何会话
	replay, err := store.Load(ctx, preReq)
	require.NoError(t, err)
	assert.True(t, replay.IsNew())
	_, ok := replay.Get(CurrUserKey)
	assert.False(t, ok)

	next, err := store.Load(ctx, postReq)
	require.NoError(t, err)
	v, ok := next.Get(CurrUserKey)
	assert.True(t, ok)
	assert.Equal(t, "111", v)
	assert.Len(t, next.Flashes(), 1)
}

func TestCookieStore_RegenerateKeepsValues(t *testing.T) {
	store := newCookieStore(t)
	ctx := context.Background()

	sess, err := store.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.Set("k", "v")
	sess, err = store.Load(ctx, roundTrip(t, store, sess))
	require.NoError(t, err)
	oldID := sess.ID()

	sess.Regenerate()
	next, err := store.Load(ctx, roundTrip(t, store, sess))
	require.NoError(t, err)
	assert.NotEqual(t, oldID, next.ID())
	v, _ := next.Get("k")
	assert.Equal(t, "v", v)
}
