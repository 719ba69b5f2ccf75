package handler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/warbler/internal/auth"
	"github.com/d60-Lab/warbler/internal/middleware"
	"github.com/d60-Lab/warbler/internal/model"
	"github.com/d60-Lab/warbler/internal/service"
	"github.com/d60-Lab/warbler/pkg/response"
)

type profileRequest struct {
	Username       string `form:"username" json:"username"`
	Email          string `form:"email" json:"email"`
	ImageURL       string `form:"image_url" json:"image_url"`
	HeaderImageURL string `form:"header_image_url" json:"header_image_url"`
	Bio            string `form:"bio" json:"bio"`
	Location       string `form:"location" json:"location"`
	Password       string `form:"password" json:"password"`
}

func followingURL(id uint) string { return fmt.Sprintf("/users/%d/following", id) }

func profileURL(id uint) string { return fmt.Sprintf("/users/%d", id) }

// ListUsers 用户列表，q 为用户名子串
// @Summary 搜索用户
// @Tags 用户
// @Param q query string false "用户名包含"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.userService.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		fail(c, err)
		return
	}
	render(c, gin.H{"users": newUserViews(users)})
}

// ShowUser 用户主页
// @Summary 用户主页
// @Tags 用户
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *Handler) ShowUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.userService.Profile(c.Request.Context(), identity(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	render(c, gin.H{
		"user":           newUserView(p.User),
		"stats":          newStatsView(id, p.Stats),
		"messages":       newMessageViews(p.Messages),
		"viewer_follows": p.ViewerFollows,
	})
}

// ListFollowing 查询某用户关注的人
// @Summary 查询关注列表
// @Tags 关系链
// @Param id path int true "用户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /users/{id}/following [get]
func (h *Handler) ListFollowing(c *gin.Context) {
	h.listRelations(c, h.relService.ListFollowing)
}

// ListFollowers 查询某用户的粉丝
// @Summary 查询粉丝列表
// @Tags 关系链
// @Param id path int true "用户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /users/{id}/followers [get]
func (h *Handler) ListFollowers(c *gin.Context) {
	h.listRelations(c, h.relService.ListFollowers)
}

type relationLister func(ctx context.Context, actor auth.Identity, userID uint, page, pageSize int) ([]*model.User, error)

func (h *Handler) listRelations(c *gin.Context, list relationLister) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	users, err := list(c.Request.Context(), identity(c), id, page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	render(c, gin.H{"user_id": id, "page": page, "page_size": pageSize, "list": newUserViews(users)})
}

// ListLikes 某用户点赞过的消息
// @Summary 点赞列表
// @Tags 点赞
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /users/{id}/likes [get]
func (h *Handler) ListLikes(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	msgs, err := h.likeService.LikedMessages(c.Request.Context(), identity(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	render(c, gin.H{"user_id": id, "messages": newMessageViews(msgs)})
}

// ToggleFollow 已关注则取关，否则关注
// @Summary 切换关注
// @Tags 关系链
// @Param id path int true "目标用户ID"
// @Success 302
// @Router /users/{id}/follow [post]
func (h *Handler) ToggleFollow(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	actor := identity(c)
	if _, err := h.relService.ToggleFollow(c.Request.Context(), actor, id); err != nil {
		fail(c, err)
		return
	}
	redirect(c, followingURL(actor.UserID))
}

// Follow 建立关注，重复关注无副作用
// @Summary 关注用户
// @Tags 关系链
// @Param id path int true "目标用户ID"
// @Success 302
// @Router /users/follow/{id} [post]
func (h *Handler) Follow(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	actor := identity(c)
	if err := h.relService.Follow(c.Request.Context(), actor, id); err != nil {
		fail(c, err)
		return
	}
	redirect(c, followingURL(actor.UserID))
}

// Unfollow 取消关注
// @Summary 取消关注
// @Tags 关系链
// @Param id path int true "目标用户ID"
// @Success 302
// @Router /users/stop-following/{id} [post]
func (h *Handler) Unfollow(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	actor := identity(c)
	if err := h.relService.Unfollow(c.Request.Context(), actor, id); err != nil {
		fail(c, err)
		return
	}
	redirect(c, followingURL(actor.UserID))
}

// ToggleLike 对消息点赞或取消
// @Summary 切换点赞
// @Tags 点赞
// @Param id path int true "消息ID"
// @Success 302
// @Router /users/{id}/like [post]
func (h *Handler) ToggleLike(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, err := h.likeService.Toggle(c.Request.Context(), identity(c), id); err != nil {
		fail(c, err)
		return
	}
	redirect(c, "/")
}

// UpdateProfile 修改资料，需要当前密码
// @Summary 修改资料
// @Tags 用户
// @Accept x-www-form-urlencoded,json
// @Param request body profileRequest true "资料"
// @Success 302
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /users/profile [post]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.userService.UpdateProfile(c.Request.Context(), identity(c), service.ProfileInput{
		Username:       req.Username,
		Email:          req.Email,
		ImageURL:       req.ImageURL,
		HeaderImageURL: req.HeaderImageURL,
		Bio:            req.Bio,
		Location:       req.Location,
		Password:       req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	redirect(c, profileURL(u.ID))
}

// DeleteUser 注销当前用户，连同消息、关注与点赞
// @Summary 注销账号
// @Tags 用户
// @Success 302
// @Router /users/delete [post]
func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), identity(c)); err != nil {
		fail(c, err)
		return
	}
	if sess := middleware.CurrentSession(c); sess != nil {
		auth.Logout(sess)
	}
	redirect(c, "/signup")
}
