package model

import (
	"time"
)

// Follow 关注关系（A 关注 B）
// 复合唯一键 idx_follow_pair = (follower_id, followee_id)，避免重复关注
type Follow struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	FollowerID uint      `gorm:"index:idx_follow_follower;index:idx_follow_pair,unique;not null" json:"follower_id"`
	FolloweeID uint      `gorm:"index:idx_follow_followee;not null;index:idx_follow_pair,unique" json:"followee_id"`
	Follower   *User     `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Followee   *User     `gorm:"foreignKey:FolloweeID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Follow) TableName() string { return "follows" }
