package session

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore Cookie 中只保存会话 ID，值存放在 Redis hash，过期由 TTL 控制
type RedisStore struct {
	client *redis.Client
	opts   Options
}

func NewRedisStore(client *redis.Client, opts Options) *RedisStore {
	return &RedisStore{client: client, opts: opts.withDefaults()}
}

func (s *RedisStore) key(id string) string { return fmt.Sprintf("session:%s", id) }

func (s *RedisStore) Load(ctx context.Context, r *http.Request) (*Session, error) {
	c, err := r.Cookie(s.opts.CookieName)
	if err != nil {
		return newSession(s), nil
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return newSession(s), nil
	}
	vals, err := s.client.HGetAll(ctx, s.key(c.Value)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	// 不认识的 ID 不复用，防止会话固定
	if len(vals) == 0 {
		return newSession(s), nil
	}
	return &Session{id: c.Value, values: vals, store: s}, nil
}

func (s *RedisStore) Save(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	key := s.key(sess.id)
	stale := []string{key}
	if sess.prevID != "" {
		stale = append(stale, s.key(sess.prevID))
	}
	if sess.Len() == 0 {
		if err := s.client.Del(ctx, stale...).Err(); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		sess.prevID = ""
		if !sess.isNew {
			http.SetCookie(w, s.opts.cookie("", -1))
		}
		return nil
	}

	args := make([]interface{}, 0, sess.Len()*2)
	for k, v := range sess.values {
		args = append(args, k, v)
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, stale...)
		pipe.HSet(ctx, key, args...)
		pipe.Expire(ctx, key, s.opts.TTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	sess.prevID = ""
	http.SetCookie(w, s.opts.cookie(sess.id, int(s.opts.TTL.Seconds())))
	return nil
}
