package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"lost-university/backend/pkg/response"
)

// BodyLimit 全局请求体大小限制中间件
// 声明了 Content-Length 的超限请求直接返回 413；
// 分块传输的请求在读取超限时由 MaxBytesReader 截断，绑定失败后按 400 返回。
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.ErrorWithDetails(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大",
				fmt.Sprintf("上限 %d 字节", maxBytes))
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
