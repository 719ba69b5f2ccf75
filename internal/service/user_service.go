package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/d60-Lab/warbler/internal/auth"
	"github.com/d60-Lab/warbler/internal/cache"
	"github.com/d60-Lab/warbler/internal/model"
	"github.com/d60-Lab/warbler/internal/repository"
	"github.com/d60-Lab/warbler/pkg/logger"
	appvalidator "github.com/d60-Lab/warbler/pkg/validator"
)

// SignupInput 注册参数
type SignupInput struct {
	Username string `validate:"required,username,max=64"`
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,min=6,max=72"`
	ImageURL string `validate:"max=2048"`
}

// ProfileInput 修改资料，需要当前密码确认
type ProfileInput struct {
	Username       string `validate:"required,username,max=64"`
	Email          string `validate:"required,email,max=255"`
	ImageURL       string `validate:"max=2048"`
	HeaderImageURL string `validate:"max=2048"`
	Bio            string `validate:"max=512"`
	Location       string `validate:"max=128"`
	Password       string `validate:"required"`
}

// Profile 用户主页
type Profile struct {
	User     *model.User
	Stats    cache.ProfileStats
	Messages []*model.Message
	// ViewerFollows 当前访问者是否已关注该用户
	ViewerFollows bool
}

const (
	searchLimit  = 100
	profileLimit = 100
)

// UserService 用户服务
type UserService interface {
	// Signup 哈希密码并创建用户；缺少必填字段返回 ErrConstraintViolation，不落库
	Signup(ctx context.Context, in SignupInput) (*model.User, error)
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	Get(ctx context.Context, id uint) (*model.User, error)
	Search(ctx context.Context, q string) ([]*model.User, error)
	Profile(ctx context.Context, viewer auth.Identity, id uint) (*Profile, error)
	Stats(ctx context.Context, id uint) (cache.ProfileStats, error)
	UpdateProfile(ctx context.Context, actor auth.Identity, in ProfileInput) (*model.User, error)
	Delete(ctx context.Context, actor auth.Identity) error
	IsFollowing(ctx context.Context, userID, otherID uint) (bool, error)
	IsFollowedBy(ctx context.Context, userID, otherID uint) (bool, error)
}

type userService struct {
	users    repository.UserRepository
	messages repository.MessageRepository
	follows  repository.FollowRepository
	likes    repository.LikeRepository
	verifier *auth.Verifier
	stats    *cache.StatsCache
	validate *validator.Validate
}

func NewUserService(users repository.UserRepository, messages repository.MessageRepository, follows repository.FollowRepository, likes repository.LikeRepository, stats *cache.StatsCache) UserService {
	return &userService{
		users:    users,
		messages: messages,
		follows:  follows,
		likes:    likes,
		verifier: auth.NewVerifier(users),
		stats:    stats,
		validate: appvalidator.New(),
	}
}

func (s *userService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrConstraintViolation, err)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{
		Username:       in.Username,
		Email:          in.Email,
		Password:       hash,
		ImageURL:       in.ImageURL,
		HeaderImageURL: model.DefaultHeaderImageURL,
	}
	if u.ImageURL == "" {
		u.ImageURL = model.DefaultImageURL
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, s.classifyDuplicate(ctx, err, in.Username, 0)
	}
	return u, nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	return s.verifier.Authenticate(ctx, username, password)
}

func (s *userService) Get(ctx context.Context, id uint) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *userService) Search(ctx context.Context, q string) ([]*model.User, error) {
	return s.users.Search(ctx, q, 0, searchLimit)
}

func (s *userService) Profile(ctx context.Context, viewer auth.Identity, id uint) (*Profile, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stats, err := s.Stats(ctx, id)
	if err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByUser(ctx, id, profileLimit)
	if err != nil {
		return nil, err
	}
	p := &Profile{User: u, Stats: stats, Messages: msgs}
	if viewer.Authenticated() && viewer.UserID != id {
		if p.ViewerFollows, err = s.follows.Exists(ctx, viewer.UserID, id); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (s *userService) Stats(ctx context.Context, id uint) (cache.ProfileStats, error) {
	if st, ok := s.stats.Get(ctx, id); ok {
		return st, nil
	}
	var (
		st  cache.ProfileStats
		err error
	)
	if st.Messages, err = s.messages.CountByUser(ctx, id); err != nil {
		return st, err
	}
	if st.Following, err = s.follows.CountFollowings(ctx, id); err != nil {
		return st, err
	}
	if st.Followers, err = s.follows.CountFollowers(ctx, id); err != nil {
		return st, err
	}
	if st.Likes, err = s.likes.CountByUser(ctx, id); err != nil {
		return st, err
	}
	if err := s.stats.Set(ctx, id, st); err != nil {
		logger.Warn("cache profile stats", zap.Uint("user", id), zap.Error(err))
	}
	return st, nil
}

func (s *userService) UpdateProfile(ctx context.Context, actor auth.Identity, in ProfileInput) (*model.User, error) {
	if err := auth.Require(actor, 0, auth.AuthenticatedOnly); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	u, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(u.Password, in.Password) {
		return nil, auth.ErrInvalidCredentials
	}
	u.Username = in.Username
	u.Email = in.Email
	u.ImageURL = in.ImageURL
	if u.ImageURL == "" {
		u.ImageURL = model.DefaultImageURL
	}
	u.HeaderImageURL = in.HeaderImageURL
	if u.HeaderImageURL == "" {
		u.HeaderImageURL = model.DefaultHeaderImageURL
	}
	u.Bio = in.Bio
	u.Location = in.Location
	if err := s.users.Update(ctx, u); err != nil {
		return nil, s.classifyDuplicate(ctx, err, in.Username, u.ID)
	}
	return u, nil
}

func (s *userService) Delete(ctx context.Context, actor auth.Identity) error {
	if err := auth.Require(actor, 0, auth.AuthenticatedOnly); err != nil {
		return err
	}
	// 先记下关系另一端的用户，删除后其计数缓存失效
	related := []uint{actor.UserID}
	for _, list := range []func(context.Context, uint, int, int) ([]*model.Follow, error){s.follows.ListFollowings, s.follows.ListFollowers} {
		edges, err := list(ctx, actor.UserID, 0, -1)
		if err != nil {
			return err
		}
		for _, e := range edges {
			related = append(related, e.FollowerID, e.FolloweeID)
		}
	}
	likers, err := s.likes.LikerIDsByAuthor(ctx, actor.UserID)
	if err != nil {
		return err
	}
	related = append(related, likers...)
	if err := s.users.Delete(ctx, actor.UserID); err != nil {
		return err
	}
	if err := s.stats.Invalidate(ctx, related...); err != nil {
		logger.Warn("invalidate stats", zap.Uint("user", actor.UserID), zap.Error(err))
	}
	logger.Info("user deleted", zap.Uint("user", actor.UserID))
	return nil
}

// classifyDuplicate 区分唯一键冲突来自用户名还是邮箱；self 为正在修改的用户
func (s *userService) classifyDuplicate(ctx context.Context, err error, username string, self uint) error {
	if !repository.IsDuplicate(err) {
		return err
	}
	if other, lookupErr := s.users.GetByUsername(ctx, username); lookupErr == nil && other.ID != self {
		return fmt.Errorf("%w: %v", ErrUsernameTaken, err)
	}
	return fmt.Errorf("%w: %v", ErrEmailTaken, err)
}

func (s *userService) IsFollowing(ctx context.Context, userID, otherID uint) (bool, error) {
	return s.follows.Exists(ctx, userID, otherID)
}

func (s *userService) IsFollowedBy(ctx context.Context, userID, otherID uint) (bool, error) {
	return s.follows.Exists(ctx, otherID, userID)
}
