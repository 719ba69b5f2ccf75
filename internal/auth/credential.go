package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/warbler/internal/model"
	"github.com/d60-Lab/warbler/internal/repository"
)

// ErrInvalidCredentials 用户不存在与密码错误共用，避免泄露用户名是否存在
var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyHash 用户不存在时仍做一次比较，两种失败耗时接近
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("warbler-dummy-password"), bcrypt.DefaultCost)

// HashPassword bcrypt 哈希
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword 校验明文与哈希是否匹配
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type CredentialStore interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// Verifier 用户名 + 密码认证
type Verifier struct {
	users CredentialStore
}

func NewVerifier(users CredentialStore) *Verifier { return &Verifier{users: users} }

// Authenticate 成功返回用户；用户不存在或密码错误都返回 ErrInvalidCredentials
func (v *Verifier) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	u, err := v.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !CheckPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
