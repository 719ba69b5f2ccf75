package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieStore 会话值整体签名（HS256 JWT）后放在 Cookie 中，服务端不保存状态
type CookieStore struct {
	secret []byte
	opts   Options
}

type sessionClaims struct {
	Values map[string]string `json:"v"`
	jwt.RegisteredClaims
}

func NewCookieStore(secret string, opts Options) (*CookieStore, error) {
	if secret == "" {
		return nil, errors.New("session secret must not be empty")
	}
	return &CookieStore{secret: []byte(secret), opts: opts.withDefaults()}, nil
}

func (s *CookieStore) Load(_ context.Context, r *http.Request) (*Session, error) {
	c, err := r.Cookie(s.opts.CookieName)
	if err != nil {
		return newSession(s), nil
	}
	claims := &sessionClaims{}
	_, err = jwt.ParseWithClaims(c.Value, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	// 篡改、过期都按新会话处理
	if err != nil || claims.ID == "" {
		return newSession(s), nil
	}
	if claims.Values == nil {
		claims.Values = map[string]string{}
	}
	return &Session{id: claims.ID, values: claims.Values, store: s}, nil
}

func (s *CookieStore) Save(_ context.Context, w http.ResponseWriter, sess *Session) error {
	if sess.Len() == 0 {
		if !sess.isNew {
			http.SetCookie(w, s.opts.cookie("", -1))
		}
		return nil
	}
	now := time.Now()
	claims := sessionClaims{
		Values: sess.values,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	sess.prevID = ""
	http.SetCookie(w, s.opts.cookie(token, int(s.opts.TTL.Seconds())))
	return nil
}
