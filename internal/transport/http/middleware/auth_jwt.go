package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-signage-cms/internal/core/auth"
	"go-signage-cms/internal/domain"
	resp "go-signage-cms/internal/transport/http/response"
)

const (
	KeyUserID    = "userId"
	KeyRole      = "role"
	KeyPrincipal = "principal"
)

func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			c.AbortWithStatusJSON(http.StatusForbidden, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		c.Set(KeyUserID, claims.UID)
		c.Set(KeyRole, claims.Role)
		c.Set(KeyPrincipal, domain.Principal{ID: claims.UID, Role: claims.Role})
		c.Next()
	}
}

// PrincipalFrom 没有就是零值（公共路由不会用到）
func PrincipalFrom(c *gin.Context) domain.Principal {
	if v, ok := c.Get(KeyPrincipal); ok {
		if p, ok := v.(domain.Principal); ok {
			return p
		}
	}
	return domain.Principal{}
}
