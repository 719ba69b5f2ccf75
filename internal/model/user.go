package model

import (
	"fmt"
	"time"
)

// DefaultImageURL 用户未设置头像时使用
const (
	DefaultImageURL       = "/static/images/default-pic.png"
	DefaultHeaderImageURL = "/static/images/warbler-hero.jpg"
)

// User 用户
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"type:varchar(100);not null" json:"-"`
	ImageURL       string    `gorm:"type:text" json:"image_url"`
	HeaderImageURL string    `gorm:"type:text" json:"header_image_url"`
	Bio            string    `gorm:"type:text" json:"bio"`
	Location       string    `gorm:"type:varchar(128)" json:"location"`
	CreatedAt      time.Time `json:"created_at"`
}

func (User) TableName() string { return "users" }

// Handle 页面上展示的 @username
func (u *User) Handle() string { return "@" + u.Username }

func (u *User) String() string {
	return fmt.Sprintf("<User #%d: %s, %s>", u.ID, u.Username, u.Email)
}
