package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/examdesk/examdesk-api/internal/models"
	appErrors "github.com/examdesk/examdesk-api/pkg/errors"
	"github.com/examdesk/examdesk-api/pkg/response"
)

// RequireMutator blocks roles that may not execute batch mutations.
// Viewers can browse and preview but never dispatch.
func RequireMutator() gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok || !claims.Role.CanMutate() {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
