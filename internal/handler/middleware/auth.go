package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"incentix/rewardhub/internal/config"
	"incentix/rewardhub/internal/service"
	"incentix/rewardhub/pkg/crypto"
	jwtpkg "incentix/rewardhub/pkg/jwt"
	"incentix/rewardhub/pkg/response"
)

const ContextKeyCaller = "caller"

// CallerAuth authenticates the invoker either with a Bearer service token or
// a pre-shared X-API-Key, and threads the resolved service.Caller through
// both the gin context and the request context.
func CallerAuth(jwtManager *jwtpkg.Manager, serviceKeys []config.ServiceKey) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := resolveCaller(c, jwtManager, serviceKeys)
		if !ok {
			c.Abort()
			return
		}

		c.Set(ContextKeyCaller, caller)
		c.Request = c.Request.WithContext(service.WithCaller(c.Request.Context(), caller))
		c.Next()
	}
}

func resolveCaller(c *gin.Context, jwtManager *jwtpkg.Manager, serviceKeys []config.ServiceKey) (service.Caller, bool) {
	if apiKey := c.GetHeader("X-API-Key"); apiKey != "" {
		for _, sk := range serviceKeys {
			if crypto.CheckAPIKey(apiKey, sk.KeyHash) {
				return service.Caller{Subject: sk.Subject, Role: service.RoleService}, true
			}
		}
		response.Unauthorized(c, "unknown api key")
		return service.Caller{}, false
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.Unauthorized(c, "missing credentials")
		return service.Caller{}, false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		response.Unauthorized(c, "invalid authorization format")
		return service.Caller{}, false
	}

	claims, err := jwtManager.Validate(parts[1])
	if err != nil {
		response.Unauthorized(c, "invalid or expired token")
		return service.Caller{}, false
	}

	role := service.Role(claims.Role)
	if role != service.RoleOperator && role != service.RoleService {
		response.Unauthorized(c, "invalid caller role")
		return service.Caller{}, false
	}
	return service.Caller{Subject: claims.Subject, Role: role}, true
}
