package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/warbler/internal/auth"
	"github.com/d60-Lab/warbler/internal/session"
	"github.com/d60-Lab/warbler/pkg/logger"
	"github.com/d60-Lab/warbler/pkg/response"
)

const sessionCtxKey = "warbler.session"

// Session 为每个请求加载会话；存储不可用时返回 500
func Session(store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := store.Load(c.Request.Context(), c.Request)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		c.Set(sessionCtxKey, sess)
		c.Next()
	}
}

// CurrentSession 取出 Session 中间件加载的会话
func CurrentSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(sessionCtxKey); ok {
		if sess, ok := v.(*session.Session); ok {
			return sess
		}
	}
	return nil
}

// Identity 解析当前用户并写入请求上下文，须在 Session 之后
func Identity(resolver *auth.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := resolver.Resolve(c.Request.Context(), CurrentSession(c))
		if err != nil {
			logger.Error("resolve identity", zap.Error(err))
			response.InternalError(c, err)
			return
		}
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		if id.Authenticated() {
			c.Set("user_id", id.UserID)
		}
		c.Next()
	}
}
