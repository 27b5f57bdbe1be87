package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Cors 允许前端跨域访问 API。
//
// 前端单独部署（开发时跑在 3000 端口），所有接口都需要带上 CORS 头；
// OPTIONS 预检请求直接返回 204，不进入业务逻辑。
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
		} else {
			c.Header("Access-Control-Allow-Origin", "*")
		}
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
