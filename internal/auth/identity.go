// Package auth 负责请求身份解析、资源归属校验与凭证验证。
package auth

import "context"

// Identity 当前请求的已认证用户；零值表示匿名
type Identity struct {
	UserID   uint
	Username string
}

// Anonymous 匿名身份
var Anonymous = Identity{}

func (i Identity) Authenticated() bool { return i.UserID != 0 }

type identityKey struct{}

// WithIdentity 把解析后的身份挂到请求上下文，之后只读
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext 取出请求身份，未设置时为匿名
func FromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityKey{}).(Identity); ok {
		return id
	}
	return Anonymous
}
