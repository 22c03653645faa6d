package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/lunchorder/models"
	"github.com/yeremiapane/lunchorder/utils"
)

// AdminOnly must run after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Authentication required"))
			c.Abort()
			return
		}
		if role != string(models.RoleAdmin) {
			utils.RespondError(c, http.StatusForbidden, errors.New("Admin access required"))
			c.Abort()
			return
		}
		c.Next()
	}
}
