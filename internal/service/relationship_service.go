package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/d60-Lab/warbler/internal/auth"
	"github.com/d60-Lab/warbler/internal/cache"
	"github.com/d60-Lab/warbler/internal/model"
	"github.com/d60-Lab/warbler/internal/repository"
	"github.com/d60-Lab/warbler/pkg/logger"
)

// RelationshipService 关系链服务
type RelationshipService interface {
	Follow(ctx context.Context, actor auth.Identity, toUserID uint) error
	Unfollow(ctx context.Context, actor auth.Identity, toUserID uint) error
	// ToggleFollow 已关注则取关，否则关注
	ToggleFollow(ctx context.Context, actor auth.Identity, toUserID uint) (repository.ToggleResult, error)
	// ListFollowing / ListFollowers 需要登录，但不要求是 userID 本人
	ListFollowing(ctx context.Context, actor auth.Identity, userID uint, page, pageSize int) ([]*model.User, error)
	ListFollowers(ctx context.Context, actor auth.Identity, userID uint, page, pageSize int) ([]*model.User, error)
}

type relationshipService struct {
	users      repository.UserRepository
	followRepo repository.FollowRepository
	stats      *cache.StatsCache
}

func NewRelationshipService(users repository.UserRepository, followRepo repository.FollowRepository, stats *cache.StatsCache) RelationshipService {
	return &relationshipService{users: users, followRepo: followRepo, stats: stats}
}

// checkTarget 登录校验、禁止关注自己、目标用户必须存在
func (s *relationshipService) checkTarget(ctx context.Context, actor auth.Identity, toUserID uint) error {
	if err := auth.Require(actor, 0, auth.AuthenticatedOnly); err != nil {
		return err
	}
	if actor.UserID == toUserID {
		return ErrFollowSelf
	}
	_, err := s.users.GetByID(ctx, toUserID)
	return err
}

func (s *relationshipService) Follow(ctx context.Context, actor auth.Identity, toUserID uint) error {
	if err := s.checkTarget(ctx, actor, toUserID); err != nil {
		return err
	}
	if err := s.followRepo.Create(ctx, actor.UserID, toUserID); err != nil {
		return err
	}
	s.invalidate(ctx, actor.UserID, toUserID)
	return nil
}

func (s *relationshipService) Unfollow(ctx context.Context, actor auth.Identity, toUserID uint) error {
	if err := auth.Require(actor, 0, auth.AuthenticatedOnly); err != nil {
		return err
	}
	if err := s.followRepo.Delete(ctx, actor.UserID, toUserID); err != nil {
		return err
	}
	s.invalidate(ctx, actor.UserID, toUserID)
	return nil
}

func (s *relationshipService) ToggleFollow(ctx context.Context, actor auth.Identity, toUserID uint) (repository.ToggleResult, error) {
	if err := s.checkTarget(ctx, actor, toUserID); err != nil {
		return 0, err
	}
	res, err := s.followRepo.Toggle(ctx, actor.UserID, toUserID)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, actor.UserID, toUserID)
	logger.Debug("follow toggled", zap.Uint("from", actor.UserID), zap.Uint("to", toUserID), zap.Stringer("result", res))
	return res, nil
}

func (s *relationshipService) ListFollowing(ctx context.Context, actor auth.Identity, userID uint, page, pageSize int) ([]*model.User, error) {
	if err := auth.Require(actor, userID, auth.AuthenticatedOnly); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	offset, limit := paginate(page, pageSize)
	items, err := s.followRepo.ListFollowings(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(items))
	for i, it := range items {
		ids[i] = it.FolloweeID
	}
	return s.users.ListByIDs(ctx, ids)
}

func (s *relationshipService) ListFollowers(ctx context.Context, actor auth.Identity, userID uint, page, pageSize int) ([]*model.User, error) {
	if err := auth.Require(actor, userID, auth.AuthenticatedOnly); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	offset, limit := paginate(page, pageSize)
	items, err := s.followRepo.ListFollowers(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(items))
	for i, it := range items {
		ids[i] = it.FollowerID
	}
	return s.users.ListByIDs(ctx, ids)
}

func (s *relationshipService) invalidate(ctx context.Context, ids ...uint) {
	if err := s.stats.Invalidate(ctx, ids...); err != nil {
		logger.Warn("invalidate stats", zap.Uints("users", ids), zap.Error(err))
	}
}

func paginate(page, pageSize int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return (page - 1) * pageSize, pageSize
}
