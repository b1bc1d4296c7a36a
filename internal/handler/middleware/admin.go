package middleware

import (
	"github.com/gin-gonic/gin"

	"incentix/rewardhub/internal/service"
	"incentix/rewardhub/pkg/response"
)

// OperatorAuth checks that the authenticated caller is a configured operator.
// Must be used after CallerAuth. The service layer re-checks capabilities;
// this keeps obvious non-operators out of the admin surface early.
func OperatorAuth(operators []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(operators))
	for _, id := range operators {
		allowed[id] = struct{}{}
	}

	return func(c *gin.Context) {
		callerVal, exists := c.Get(ContextKeyCaller)
		if !exists {
			response.Unauthorized(c, "missing authentication")
			c.Abort()
			return
		}
		caller, ok := callerVal.(service.Caller)
		if !ok {
			response.Unauthorized(c, "invalid caller context")
			c.Abort()
			return
		}

		if caller.Role != service.RoleOperator {
			response.Forbidden(c, "operator access required")
			c.Abort()
			return
		}
		if _, isOp := allowed[caller.Subject]; !isOp {
			response.Forbidden(c, "operator access required")
			c.Abort()
			return
		}

		c.Next()
	}
}
