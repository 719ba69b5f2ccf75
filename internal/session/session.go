// Package session 提供按客户端隔离的会话存储（Redis 服务端存储或签名 Cookie）。
package session

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// CurrUserKey 会话中保存当前登录用户 ID 的键
const CurrUserKey = "curr_user"

const flashKey = "_flashes"

// Store 会话存储
type Store interface {
	// Load 读取请求携带的会话；无会话或会话无效时返回新的空会话
	Load(ctx context.Context, r *http.Request) (*Session, error)
	// Save 持久化会话并写回 Cookie；空会话会清除 Cookie
	Save(ctx context.Context, w http.ResponseWriter, s *Session) error
}

// Options Cookie 参数
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

func (o Options) withDefaults() Options {
	if o.CookieName == "" {
		o.CookieName = "warbler_session"
	}
	if o.TTL <= 0 {
		o.TTL = 7 * 24 * time.Hour
	}
	return o
}

func (o Options) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     o.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Flash 一次性提示消息
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Session 单个客户端的键值包，非并发安全（一个请求内使用）
type Session struct {
	id     string
	values map[string]string
	isNew  bool
	store  Store
	// prevID Regenerate 之前的 ID，保存时由 Store 作废
	prevID string
}

func newSession(store Store) *Session {
	return &Session{id: uuid.New().String(), values: map[string]string{}, isNew: true, store: store}
}

func (s *Session) ID() string { return s.id }

func (s *Session) IsNew() bool { return s.isNew }

// Regenerate 换一个新的会话 ID，保留现有值；登录等权限变化时调用
func (s *Session) Regenerate() {
	if !s.isNew && s.prevID == "" {
		s.prevID = s.id
	}
	s.id = uuid.New().String()
}

func (s *Session) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *Session) Set(key, value string) { s.values[key] = value }

func (s *Session) Delete(key string) { delete(s.values, key) }

// Clear 清空所有值（登出）
func (s *Session) Clear() { s.values = map[string]string{} }

func (s *Session) Len() int { return len(s.values) }

// AddFlash 追加一条提示，下一个读取 Flashes 的请求可见
func (s *Session) AddFlash(category, message string) {
	flashes := s.peekFlashes()
	flashes = append(flashes, Flash{Category: category, Message: message})
	data, _ := json.Marshal(flashes)
	s.values[flashKey] = string(data)
}

// Flashes 取出并清空提示
func (s *Session) Flashes() []Flash {
	flashes := s.peekFlashes()
	delete(s.values, flashKey)
	return flashes
}

func (s *Session) peekFlashes() []Flash {
	raw, ok := s.values[flashKey]
	if !ok {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal([]byte(raw), &flashes); err != nil {
		return nil
	}
	return flashes
}

// Save 通过所属 Store 保存
func (s *Session) Save(ctx context.Context, w http.ResponseWriter) error {
	return s.store.Save(ctx, w, s)
}
