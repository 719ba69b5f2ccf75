package model

import "time"

// Like 点赞关系（用户 U 喜欢消息 M），idx_like_pair = (user_id, message_id)
type Like struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    uint      `gorm:"index:idx_like_user;index:idx_like_pair,unique;not null" json:"user_id"`
	MessageID uint      `gorm:"index:idx_like_message;index:idx_like_pair,unique;not null" json:"message_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Message   *Message  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (Like) TableName() string { return "likes" }
