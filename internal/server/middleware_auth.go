package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/neoledsrlbolivia/neopos/internal/auditcontext"
	"github.com/neoledsrlbolivia/neopos/internal/authorization"
)

// AuthRequired resolves the bearer session token and stores the actor in
// the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := s.authSvc.Resolve(c.Request.Context(), parts[1])
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := auditcontext.WithActor(c.Request.Context(), "user", user.ID.String())
		ctx = auditcontext.WithActorRole(ctx, string(user.Role))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAction gates a route on the authorization service.
func (s *Server) RequireAction(action authorization.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := auditcontext.ActorRoleFromContext(c.Request.Context())
		if err := s.authzSvc.Authorize(c.Request.Context(), role, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}
