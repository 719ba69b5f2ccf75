package model

import "time"

// MaxMessageLength 消息正文最大长度
const MaxMessageLength = 140

// Message 用户发布的短消息
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:varchar(140);not null" json:"text"`
	UserID    uint      `gorm:"index:idx_message_user_ts;not null" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Timestamp time.Time `gorm:"index:idx_message_user_ts;not null" json:"timestamp"`
}

func (Message) TableName() string { return "messages" }
