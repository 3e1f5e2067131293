package security

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"LSProject/tools/errs"
	"LSProject/tools/security"
)

// —— context key ——
// 后续模块统一用这俩 key 读取
const (
	LSCtxUserKey  = "lsUserID" // string
	LSCtxTokenKey = "lsToken"  // string
)

type Options struct {
	HeaderToken               string // 默认 "authorization"
	EnableAuthorizationBearer bool   // 默认 true
	JWT                       security.Options
}

func DefaultOptions(jwt security.Options) *Options {
	return &Options{
		HeaderToken:               "authorization",
		EnableAuthorizationBearer: true,
		JWT:                       jwt,
	}
}

// Middleware 校验 JWT，通过后把 user id 写入 gin context。
// 身份未就绪的请求一律 401，不放行到业务层。
func Middleware(opts *Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(opts.HeaderToken))

		// 兼容 Authorization: Bearer xxx
		if token == "" && opts.EnableAuthorizationBearer {
			if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" {
				if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
					token = strings.TrimSpace(authz[len("bearer "):])
				}
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errs.AuthRequiredError,
				"msg":  errs.ErrAuthRequired.Msg,
			})
			return
		}

		claims, err := security.Verify(opts.JWT, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errs.AuthRequiredError,
				"msg":  "invalid or expired token",
			})
			return
		}

		c.Set(LSCtxUserKey, claims.UserID())
		c.Set(LSCtxTokenKey, token)
		c.Next()
	}
}

// CurrentUserID 业务 handler 读取已认证的 user id
func CurrentUserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(LSCtxUserKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
