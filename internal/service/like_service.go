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

// LikeService 点赞服务
type LikeService interface {
	// Toggle 匿名用户一律拒绝，不改变任何点赞
	Toggle(ctx context.Context, actor auth.Identity, messageID uint) (repository.ToggleResult, error)
	// LikedMessages userID 点赞过的消息，需要登录
	LikedMessages(ctx context.Context, actor auth.Identity, userID uint) ([]*model.Message, error)
	Likes(ctx context.Context, messageID uint) ([]*model.Like, error)
}

type likeService struct {
	users    repository.UserRepository
	messages repository.MessageRepository
	likes    repository.LikeRepository
	stats    *cache.StatsCache
}

func NewLikeService(users repository.UserRepository, messages repository.MessageRepository, likes repository.LikeRepository, stats *cache.StatsCache) LikeService {
	return &likeService{users: users, messages: messages, likes: likes, stats: stats}
}

func (s *likeService) Toggle(ctx context.Context, actor auth.Identity, messageID uint) (repository.ToggleResult, error) {
	if err := auth.Require(actor, 0, auth.AuthenticatedOnly); err != nil {
		return 0, err
	}
	if _, err := s.messages.GetByID(ctx, messageID); err != nil {
		return 0, err
	}
	res, err := s.likes.Toggle(ctx, actor.UserID, messageID)
	if err != nil {
		return 0, err
	}
	if err := s.stats.Invalidate(ctx, actor.UserID); err != nil {
		logger.Warn("invalidate stats", zap.Uint("user", actor.UserID), zap.Error(err))
	}
	logger.Debug("like toggled", zap.Uint("user", actor.UserID), zap.Uint("message", messageID), zap.Stringer("result", res))
	return res, nil
}

func (s *likeService) LikedMessages(ctx context.Context, actor auth.Identity, userID uint) ([]*model.Message, error) {
	if err := auth.Require(actor, userID, auth.AuthenticatedOnly); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := s.likes.LikedMessageIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.messages.ListByIDs(ctx, ids)
}

func (s *likeService) Likes(ctx context.Context, messageID uint) ([]*model.Like, error) {
	return s.likes.ListByMessage(ctx, messageID)
}
