package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/warbler/internal/model"
	"github.com/d60-Lab/warbler/internal/service"
	"github.com/d60-Lab/warbler/pkg/response"
)

type messageRequest struct {
	Text string `form:"text" json:"text"`
	// UserID 可选；若提交则必须是当前用户
	UserID string `form:"user_id" json:"user_id"`
}

// NewMessage 发布消息
// @Summary 发布消息
// @Tags 消息
// @Accept x-www-form-urlencoded,json
// @Param request body messageRequest true "消息内容"
// @Success 302
// @Failure 400 {object} response.Response
// @Router /messages/new [post]
func (h *Handler) NewMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	in := service.CreateMessageInput{Text: req.Text}
	if req.UserID != "" {
		uid, err := strconv.ParseUint(req.UserID, 10, 64)
		if err != nil {
			response.BadRequest(c, "invalid user_id")
			return
		}
		in.UserID = uint(uid)
	}
	actor := identity(c)
	if _, err := h.messageService.Create(c.Request.Context(), actor, in); err != nil {
		fail(c, err)
		return
	}
	redirect(c, profileURL(actor.UserID))
}

// ShowMessage 查看单条消息
// @Summary 查看消息
// @Tags 消息
// @Param id path int true "消息ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 404 {object} response.Response
// @Router /messages/{id} [get]
func (h *Handler) ShowMessage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	m, err := h.messageService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	likes, err := h.likeService.Likes(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	data := gin.H{"message": newMessageViews([]*model.Message{m})[0], "likes": len(likes)}
	if m.User != nil {
		data["user"] = newUserView(m.User)
	}
	render(c, data)
}

// DeleteMessage 删除自己的消息
// @Summary 删除消息
// @Tags 消息
// @Param id path int true "消息ID"
// @Success 302
// @Failure 404 {object} response.Response
// @Router /messages/{id}/delete [post]
func (h *Handler) DeleteMessage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	actor := identity(c)
	if err := h.messageService.Delete(c.Request.Context(), actor, id); err != nil {
		fail(c, err)
		return
	}
	redirect(c, profileURL(actor.UserID))
}
