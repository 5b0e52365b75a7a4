package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// requestIDMaxLen 限制外部传入的 Request-ID 最大长度，防止日志注入
const requestIDMaxLen = 64

// RequestID 请求追踪 ID 中间件
// 从请求头 X-Request-ID 读取，若不存在则自动生成 UUID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" || len(rid) > requestIDMaxLen {
			rid = uuid.New().String()
		}

		c.Set(requestIDKey, rid)
		c.Header("X-Request-ID", rid)

		c.Next()
	}
}

// SessionOptions 会话 Cookie 配置
type SessionOptions struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Session 会话中间件：每个浏览器会话对应一个计划缓存槽位。
// 依次读取请求头 X-Session-ID 与会话 Cookie，格式不是 UUID 时重新生成。
func Session(opts SessionOptions) gin.HandlerFunc {
	if opts.CookieName == "" {
		opts.CookieName = "lu_session"
	}
	return func(c *gin.Context) {
		sid := c.GetHeader("X-Session-ID")
		if sid == "" {
			sid, _ = c.Cookie(opts.CookieName)
		}
		if _, err := uuid.Parse(sid); err != nil {
			sid = uuid.New().String()
		}

		c.Set("session_id", sid)
		c.Header("X-Session-ID", sid)
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     opts.CookieName,
			Value:    sid,
			Path:     "/",
			MaxAge:   int(opts.TTL.Seconds()),
			HttpOnly: true,
			Secure:   opts.Secure,
			SameSite: http.SameSiteLaxMode,
		})

		c.Next()
	}
}
