package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/carechain/carechain/internal/common"
	"github.com/carechain/carechain/internal/logging"
	"github.com/carechain/carechain/internal/server/models"
	"github.com/gin-gonic/gin"
)

const userContextKey = "currentUser"

// authRequired extracts the bearer token, resolves it to a user and stores
// the user in the request context. Any failure aborts with a 401.
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			c.Header("WWW-Authenticate", "Bearer")
			abortDetail(c, http.StatusUnauthorized, "Not authenticated")
			return
		}

		token := strings.TrimPrefix(header, common.BearerPrefix)
		user, err := h.users.Verify(c.Request.Context(), token)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			abortDetail(c, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	u, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	return u.(*models.User)
}

// requestLogger logs each request with method, path, status and latency.
func requestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
