package middleware

import (
	"github.com/gin-gonic/gin"

	"quarryflow/internal/core/appctx"
)

const (
	HeaderUserID    = "X-User-ID"
	HeaderUserEmail = "X-User-Email"
)

// Actor middleware propagates the authenticated caller identity set by the
// API gateway into the request context. Authentication itself happens
// upstream; the engine only records who asked for a ledger change.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(HeaderUserID)
		if userID == "" {
			c.Next()
			return
		}

		actor := &appctx.ActorContext{
			UserID: userID,
			Email:  c.GetHeader(HeaderUserEmail),
		}

		ctx := appctx.WithActor(c.Request.Context(), actor)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
