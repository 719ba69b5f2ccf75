package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/warbler/internal/model"
)

// MessageRepository 消息仓储接口
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	GetByID(ctx context.Context, id uint) (*model.Message, error)
	// Delete 删除消息及其点赞；消息不存在时返回 ErrNotFound
	Delete(ctx context.Context, id uint) error
	ListByUser(ctx context.Context, userID uint, limit int) ([]*model.Message, error)
	// ListByUsers 时间线：多个作者的消息按时间倒序
	ListByUsers(ctx context.Context, userIDs []uint, limit int) ([]*model.Message, error)
	ListByIDs(ctx context.Context, ids []uint) ([]*model.Message, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository { return &messageRepository{db: db} }

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) error {
	return translate(r.db.WithContext(ctx).Create(msg).Error)
}

func (r *messageRepository) GetByID(ctx context.Context, id uint) (*model.Message, error) {
	var m model.Message
	if err := r.db.WithContext(ctx).Preload("User").First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&model.Like{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Message{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err)
}

func (r *messageRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]*model.Message, error) {
	return r.ListByUsers(ctx, []uint{userID}, limit)
}

func (r *messageRepository) ListByUsers(ctx context.Context, userIDs []uint, limit int) ([]*model.Message, error) {
	if len(userIDs) == 0 {
		return []*model.Message{}, nil
	}
	var res []*model.Message
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("timestamp DESC").
		Order("id DESC").
		Limit(limit).
		Find(&res).Error
	return res, translate(err)
}

func (r *messageRepository) ListByIDs(ctx context.Context, ids []uint) ([]*model.Message, error) {
	if len(ids) == 0 {
		return []*model.Message{}, nil
	}
	var res []*model.Message
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&res).Error; err != nil {
		return nil, translate(err)
	}
	return orderByIDs(ids, res, func(m *model.Message) uint { return m.ID }), nil
}

func (r *messageRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Message{}).Where("user_id = ?", userID).Count(&cnt).Error
	return cnt, translate(err)
}
