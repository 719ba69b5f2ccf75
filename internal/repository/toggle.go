package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ToggleResult 关系切换后的状态
type ToggleResult int

const (
	Added ToggleResult = iota + 1
	Removed
)

func (r ToggleResult) String() string {
	switch r {
	case Added:
		return "added"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// toggleEdge 在一个事务内翻转 (actor, target) 边：存在则删除，不存在则插入。
// 并发插入被唯一索引拒绝时视为对方已添加，结果为 Added，不报错。
func toggleEdge[T any](ctx context.Context, db *gorm.DB, row *T, pair string, args ...interface{}) (ToggleResult, error) {
	var result ToggleResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where(pair, args...).Delete(new(T))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			result = Removed
			return nil
		}
		// 幂等：ON CONFLICT DO NOTHING 避免 postgres 事务因冲突被中止
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
			if IsDuplicate(translate(err)) {
				result = Added
				return nil
			}
			return err
		}
		result = Added
		return nil
	})
	if err != nil {
		return 0, translate(err)
	}
	return result, nil
}
