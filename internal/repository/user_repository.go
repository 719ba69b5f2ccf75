package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/warbler/internal/model"
)

// UserRepository 用户仓储接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// Search 按用户名模糊匹配，q 为空时返回全部
	Search(ctx context.Context, q string, offset, limit int) ([]*model.User, error)
	ListByIDs(ctx context.Context, ids []uint) ([]*model.User, error)
	// Delete 删除用户及其消息、点赞、关注关系
	Delete(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return translate(r.db.WithContext(ctx).Save(user).Error)
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepository) Search(ctx context.Context, q string, offset, limit int) ([]*model.User, error) {
	var res []*model.User
	tx := r.db.WithContext(ctx).Order("id")
	if q != "" {
		tx = tx.Where("username LIKE ?", "%"+q+"%")
	}
	err := tx.Offset(offset).Limit(limit).Find(&res).Error
	return res, translate(err)
}

func (r *userRepository) ListByIDs(ctx context.Context, ids []uint) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}
	var res []*model.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&res).Error; err != nil {
		return nil, translate(err)
	}
	return orderByIDs(ids, res, func(u *model.User) uint { return u.ID }), nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&model.Message{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("user_id = ? OR message_id IN (?)", id, owned).Delete(&model.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("follower_id = ? OR followee_id = ?", id, id).Delete(&model.Follow{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.User{}, id)
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
