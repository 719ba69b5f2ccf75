package auth

import (
	"context"
	"errors"
	"strconv"

	"github.com/d60-Lab/warbler/internal/model"
	"github.com/d60-Lab/warbler/internal/repository"
	"github.com/d60-Lab/warbler/internal/session"
)

// UserFinder 按 ID 查用户
type UserFinder interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
}

// Resolver 从会话解析当前用户
type Resolver struct {
	users UserFinder
}

func NewResolver(users UserFinder) *Resolver { return &Resolver{users: users} }

// Resolve 读取 curr_user；缺失、格式错误或用户已不存在时返回匿名身份。
// 只有存储故障才返回 error。
func (r *Resolver) Resolve(ctx context.Context, sess *session.Session) (Identity, error) {
	if sess == nil {
		return Anonymous, nil
	}
	raw, ok := sess.Get(session.CurrUserKey)
	if !ok {
		return Anonymous, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return Anonymous, nil
	}
	u, err := r.users.GetByID(ctx, uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Anonymous, nil
		}
		return Anonymous, err
	}
	return Identity{UserID: u.ID, Username: u.Username}, nil
}

// Login 轮换会话 ID 后把用户写入会话，登录前的 ID 随之失效
func Login(sess *session.Session, u *model.User) {
	sess.Regenerate()
	sess.Set(session.CurrUserKey, strconv.FormatUint(uint64(u.ID), 10))
}

// Logout 清空会话
func Logout(sess *session.Session) {
	sess.Clear()
}
