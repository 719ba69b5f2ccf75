package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/warbler/internal/auth"
	"github.com/d60-Lab/warbler/internal/cache"
	"github.com/d60-Lab/warbler/internal/model"
	"github.com/d60-Lab/warbler/internal/repository"
	"github.com/d60-Lab/warbler/pkg/logger"
)

const timelineLimit = 100

// CreateMessageInput 发布消息；UserID 为请求中声明的作者，0 表示未声明
type CreateMessageInput struct {
	Text   string
	UserID uint
}

// MessageService 消息服务：只有作者本人能发布与删除
type MessageService interface {
	Create(ctx context.Context, actor auth.Identity, in CreateMessageInput) (*model.Message, error)
	Get(ctx context.Context, id uint) (*model.Message, error)
	Delete(ctx context.Context, actor auth.Identity, id uint) error
	// Timeline 自己与关注对象的最新消息
	Timeline(ctx context.Context, actor auth.Identity) ([]*model.Message, error)
}

type messageService struct {
	messages repository.MessageRepository
	follows  repository.FollowRepository
	likes    repository.LikeRepository
	stats    *cache.StatsCache
	now      func() time.Time
}

func NewMessageService(messages repository.MessageRepository, follows repository.FollowRepository, likes repository.LikeRepository, stats *cache.StatsCache) MessageService {
	return &messageService{messages: messages, follows: follows, likes: likes, stats: stats, now: time.Now}
}

func (s *messageService) Create(ctx context.Context, actor auth.Identity, in CreateMessageInput) (*model.Message, error) {
	if err := auth.Require(actor, 0, auth.AuthenticatedOnly); err != nil {
		return nil, err
	}
	// 不允许替他人发布
	if in.UserID != 0 {
		if err := auth.Require(actor, in.UserID, auth.OwnerOnly); err != nil {
			return nil, err
		}
	}
	text := strings.TrimSpace(in.Text)
	if text == "" || len([]rune(text)) > model.MaxMessageLength {
		return nil, fmt.Errorf("%w: text must be 1-%d characters", ErrInvalidInput, model.MaxMessageLength)
	}
	msg := &model.Message{Text: text, UserID: actor.UserID, Timestamp: s.now()}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	s.invalidate(ctx, actor.UserID)
	return msg, nil
}

func (s *messageService) Get(ctx context.Context, id uint) (*model.Message, error) {
	return s.messages.GetByID(ctx, id)
}

func (s *messageService) Delete(ctx context.Context, actor auth.Identity, id uint) error {
	if err := auth.Require(actor, 0, auth.AuthenticatedOnly); err != nil {
		return err
	}
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.Require(actor, msg.UserID, auth.OwnerOnly); err != nil {
		logger.Info("message delete denied", zap.Uint("message", id), zap.Uint("actor", actor.UserID))
		return err
	}
	// 消息的点赞随之删除，点赞者的计数也要失效
	likes, err := s.likes.ListByMessage(ctx, id)
	if err != nil {
		return err
	}
	if err := s.messages.Delete(ctx, id); err != nil {
		return err
	}
	related := []uint{actor.UserID}
	for _, l := range likes {
		related = append(related, l.UserID)
	}
	s.invalidate(ctx, related...)
	return nil
}

func (s *messageService) Timeline(ctx context.Context, actor auth.Identity) ([]*model.Message, error) {
	if err := auth.Require(actor, 0, auth.AuthenticatedOnly); err != nil {
		return nil, err
	}
	followings, err := s.follows.ListFollowings(ctx, actor.UserID, 0, -1)
	if err != nil {
		return nil, err
	}
	authors := make([]uint, 0, len(followings)+1)
	authors = append(authors, actor.UserID)
	for _, f := range followings {
		authors = append(authors, f.FolloweeID)
	}
	return s.messages.ListByUsers(ctx, authors, timelineLimit)
}

func (s *messageService) invalidate(ctx context.Context, ids ...uint) {
	if err := s.stats.Invalidate(ctx, ids...); err != nil {
		logger.Warn("invalidate stats", zap.Uints("users", ids), zap.Error(err))
	}
}
