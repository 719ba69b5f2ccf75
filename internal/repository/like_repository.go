package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/warbler/internal/model"
)

type LikeRepository interface {
	// Toggle 点赞/取消点赞切换，原子完成
	Toggle(ctx context.Context, userID, messageID uint) (ToggleResult, error)
	Exists(ctx context.Context, userID, messageID uint) (bool, error)
	ListByMessage(ctx context.Context, messageID uint) ([]*model.Like, error)
	// LikedMessageIDs 用户点赞过的消息，按点赞时间倒序
	LikedMessageIDs(ctx context.Context, userID uint) ([]uint, error)
	// LikerIDsByAuthor 给某作者的消息点过赞的用户（去重）
	LikerIDsByAuthor(ctx context.Context, authorID uint) ([]uint, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository { return &likeRepository{db: db} }

func (r *likeRepository) Toggle(ctx context.Context, userID, messageID uint) (ToggleResult, error) {
	row := &model.Like{ID: uuid.New().String(), UserID: userID, MessageID: messageID}
	return toggleEdge(ctx, r.db, row, "user_id = ? AND message_id = ?", userID, messageID)
}

func (r *likeRepository) Exists(ctx context.Context, userID, messageID uint) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Count(&cnt).Error
	return cnt > 0, translate(err)
}

func (r *likeRepository) ListByMessage(ctx context.Context, messageID uint) ([]*model.Like, error) {
	var res []*model.Like
	err := r.db.WithContext(ctx).Where("message_id = ?", messageID).Order("created_at").Find(&res).Error
	return res, translate(err)
}

func (r *likeRepository) LikedMessageIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("message_id", &ids).Error
	return ids, translate(err)
}

func (r *likeRepository) LikerIDsByAuthor(ctx context.Context, authorID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.Like{}).
		Joins("JOIN messages ON messages.id = likes.message_id").
		Where("messages.user_id = ?", authorID).
		Distinct().
		Pluck("likes.user_id", &ids).Error
	return ids, translate(err)
}

func (r *likeRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).Where("user_id = ?", userID).Count(&cnt).Error
	return cnt, translate(err)
}

func (r *likeRepository) Count(ctx context.Context) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).Count(&cnt).Error
	return cnt, translate(err)
}
