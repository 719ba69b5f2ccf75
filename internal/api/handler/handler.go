package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/warbler/internal/auth"
	"github.com/d60-Lab/warbler/internal/middleware"
	"github.com/d60-Lab/warbler/internal/repository"
	"github.com/d60-Lab/warbler/internal/service"
	"github.com/d60-Lab/warbler/pkg/logger"
	"github.com/d60-Lab/warbler/pkg/response"
)

// 提示消息
const (
	MsgUnauthorized       = "Access unauthorized."
	MsgInvalidCredentials = "Invalid credentials."
	MsgUsernameTaken      = "Username already taken"
	MsgEmailTaken         = "Email already taken"
)

// HealthChecker 健康检查依赖
type HealthChecker func(ctx context.Context) error

// Handler 聚合所有 HTTP 处理函数
type Handler struct {
	userService    service.UserService
	messageService service.MessageService
	relService     service.RelationshipService
	likeService    service.LikeService
	health         HealthChecker
}

func NewHandler(userService service.UserService, messageService service.MessageService, relService service.RelationshipService, likeService service.LikeService, health HealthChecker) *Handler {
	return &Handler{
		userService:    userService,
		messageService: messageService,
		relService:     relService,
		likeService:    likeService,
		health:         health,
	}
}

func identity(c *gin.Context) auth.Identity { return auth.FromContext(c.Request.Context()) }

// flashRedirect 写入提示并 302 跳转
func flashRedirect(c *gin.Context, category, msg, location string) {
	if sess := middleware.CurrentSession(c); sess != nil {
		sess.AddFlash(category, msg)
		if err := sess.Save(c.Request.Context(), c.Writer); err != nil {
			response.InternalError(c, err)
			return
		}
	}
	c.Redirect(http.StatusFound, location)
	c.Abort()
}

// redirect 保存会话后跳转
func redirect(c *gin.Context, location string) {
	if sess := middleware.CurrentSession(c); sess != nil {
		if err := sess.Save(c.Request.Context(), c.Writer); err != nil {
			response.InternalError(c, err)
			return
		}
	}
	c.Redirect(http.StatusFound, location)
}

// render 输出页面数据，并附带取出的提示消息
func render(c *gin.Context, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	flashes := []interface{}{}
	if sess := middleware.CurrentSession(c); sess != nil {
		for _, f := range sess.Flashes() {
			flashes = append(flashes, f)
		}
		if len(flashes) > 0 {
			if err := sess.Save(c.Request.Context(), c.Writer); err != nil {
				response.InternalError(c, err)
				return
			}
		}
	}
	data["flashes"] = flashes
	response.Success(c, data)
}

// fail 把服务层错误映射为响应
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		flashRedirect(c, "danger", MsgUnauthorized, "/")
	case errors.Is(err, repository.ErrNotFound):
		response.NotFound(c, "not found")
	case errors.Is(err, auth.ErrInvalidCredentials):
		response.Unauthorized(c, MsgInvalidCredentials)
	case errors.Is(err, service.ErrEmailTaken):
		response.BadRequest(c, MsgEmailTaken)
	case errors.Is(err, repository.ErrDuplicateKey):
		response.BadRequest(c, MsgUsernameTaken)
	case errors.Is(err, repository.ErrConstraintViolation),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrFollowSelf):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}

// parseID 路径参数必须是正整数，否则 404
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.NotFound(c, "not found")
		return 0, false
	}
	return uint(id), true
}

// Health 健康检查
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /healthz [get]
func (h *Handler) Health(c *gin.Context) {
	if h.health != nil {
		if err := h.health(c.Request.Context()); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			response.Error(c, http.StatusServiceUnavailable, "unhealthy")
			return
		}
	}
	response.Success(c, gin.H{"status": "ok"})
}
