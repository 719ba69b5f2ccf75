package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/warbler/internal/auth"
	"github.com/d60-Lab/warbler/internal/middleware"
	"github.com/d60-Lab/warbler/internal/service"
	"github.com/d60-Lab/warbler/pkg/logger"
	"github.com/d60-Lab/warbler/pkg/response"
)

type signupRequest struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
	ImageURL string `form:"image_url" json:"image_url"`
}

type loginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// Signup 注册并登录
// @Summary 注册
// @Tags 认证
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param request body signupRequest true "注册信息"
// @Success 302
// @Failure 400 {object} response.Response
// @Router /signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.userService.Signup(c.Request.Context(), service.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		fail(c, err)
		return
	}
	sess := middleware.CurrentSession(c)
	if sess == nil {
		response.InternalError(c, errors.New("session middleware not installed"))
		return
	}
	auth.Login(sess, u)
	logger.Info("user signed up", zap.Uint("user", u.ID), zap.String("username", u.Username))
	flashRedirect(c, "success", fmt.Sprintf("Hello, %s!", u.Username), "/")
}

// Login 用户名密码登录
// @Summary 登录
// @Tags 认证
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param request body loginRequest true "登录信息"
// @Success 302
// @Failure 401 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.userService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	sess := middleware.CurrentSession(c)
	if sess == nil {
		response.InternalError(c, errors.New("session middleware not installed"))
		return
	}
	auth.Login(sess, u)
	flashRedirect(c, "success", fmt.Sprintf("Hello, %s!", u.Username), "/")
}

// Logout 清空会话
// @Summary 退出登录
// @Tags 认证
// @Success 302
// @Router /logout [post]
func (h *Handler) Logout(c *gin.Context) {
	if sess := middleware.CurrentSession(c); sess != nil {
		auth.Logout(sess)
	}
	redirect(c, "/login")
}

// Home 首页：匿名只返回提示，已登录返回时间线
// @Summary 首页时间线
// @Tags 消息
// @Produce json
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router / [get]
func (h *Handler) Home(c *gin.Context) {
	id := identity(c)
	if !id.Authenticated() {
		render(c, gin.H{"authenticated": false})
		return
	}
	msgs, err := h.messageService.Timeline(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	render(c, gin.H{
		"authenticated": true,
		"user":          gin.H{"id": id.UserID, "username": id.Username},
		"messages":      newMessageViews(msgs),
	})
}
