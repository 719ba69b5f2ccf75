package handler

import (
	"fmt"
	"time"

	"github.com/d60-Lab/warbler/internal/cache"
	"github.com/d60-Lab/warbler/internal/model"
)

type userView struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	Handle         string `json:"handle"`
	ImageURL       string `json:"image_url"`
	HeaderImageURL string `json:"header_image_url,omitempty"`
	Bio            string `json:"bio,omitempty"`
	Location       string `json:"location,omitempty"`
}

func newUserView(u *model.User) userView {
	return userView{
		ID:             u.ID,
		Username:       u.Username,
		Handle:         u.Handle(),
		ImageURL:       u.ImageURL,
		HeaderImageURL: u.HeaderImageURL,
		Bio:            u.Bio,
		Location:       u.Location,
	}
}

func newUserViews(users []*model.User) []userView {
	out := make([]userView, len(users))
	for i, u := range users {
		out[i] = newUserView(u)
	}
	return out
}

type messageView struct {
	ID        uint      `json:"id"`
	Text      string    `json:"text"`
	UserID    uint      `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

func newMessageViews(msgs []*model.Message) []messageView {
	out := make([]messageView, len(msgs))
	for i, m := range msgs {
		out[i] = messageView{ID: m.ID, Text: m.Text, UserID: m.UserID, Timestamp: m.Timestamp}
	}
	return out
}

type statsView struct {
	cache.ProfileStats
	FollowingURL string `json:"following_url"`
	FollowersURL string `json:"followers_url"`
	LikesURL     string `json:"likes_url"`
}

func newStatsView(userID uint, st cache.ProfileStats) statsView {
	return statsView{
		ProfileStats: st,
		FollowingURL: fmt.Sprintf("/users/%d/following", userID),
		FollowersURL: fmt.Sprintf("/users/%d/followers", userID),
		LikesURL:     fmt.Sprintf("/users/%d/likes", userID),
	}
}
