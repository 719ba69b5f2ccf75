package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/warbler/internal/model"
)

type FollowRepository interface {
	Create(ctx context.Context, followerID, followeeID uint) error
	Delete(ctx context.Context, followerID, followeeID uint) error
	// Toggle 关注/取关切换，原子完成
	Toggle(ctx context.Context, followerID, followeeID uint) (ToggleResult, error)
	Exists(ctx context.Context, followerID, followeeID uint) (bool, error)
	ListFollowings(ctx context.Context, followerID uint, offset, limit int) ([]*model.Follow, error)
	ListFollowers(ctx context.Context, followeeID uint, offset, limit int) ([]*model.Follow, error)
	CountFollowings(ctx context.Context, followerID uint) (int64, error)
	CountFollowers(ctx context.Context, followeeID uint) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func newFollow(followerID, followeeID uint) *model.Follow {
	return &model.Follow{ID: uuid.New().String(), FollowerID: followerID, FolloweeID: followeeID}
}

func (r *followRepository) Create(ctx context.Context, followerID, followeeID uint) error {
	// 幂等：重复关注不报错
	return translate(r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(newFollow(followerID, followeeID)).Error)
}

func (r *followRepository) Delete(ctx context.Context, followerID, followeeID uint) error {
	return translate(r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&model.Follow{}).Error)
}

func (r *followRepository) Toggle(ctx context.Context, followerID, followeeID uint) (ToggleResult, error) {
	return toggleEdge(ctx, r.db, newFollow(followerID, followeeID),
		"follower_id = ? AND followee_id = ?", followerID, followeeID)
}

func (r *followRepository) Exists(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&cnt).Error; err != nil {
		return false, translate(err)
	}
	return cnt > 0, nil
}

func (r *followRepository) ListFollowings(ctx context.Context, followerID uint, offset, limit int) ([]*model.Follow, error) {
	var res []*model.Follow
	err := r.db.WithContext(ctx).Where("follower_id = ?", followerID).Order("created_at DESC").Offset(offset).Limit(limit).Find(&res).Error
	return res, translate(err)
}

func (r *followRepository) ListFollowers(ctx context.Context, followeeID uint, offset, limit int) ([]*model.Follow, error) {
	var res []*model.Follow
	err := r.db.WithContext(ctx).Where("followee_id = ?", followeeID).Order("created_at DESC").Offset(offset).Limit(limit).Find(&res).Error
	return res, translate(err)
}

func (r *followRepository) CountFollowings(ctx context.Context, followerID uint) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("follower_id = ?", followerID).Count(&cnt).Error
	return cnt, translate(err)
}

func (r *followRepository) CountFollowers(ctx context.Context, followeeID uint) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("followee_id = ?", followeeID).Count(&cnt).Error
	return cnt, translate(err)
}
