package mockbank

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/bankfront/internal/common"
	"github.com/dmitrijs2005/bankfront/internal/mockbank/auth"
	"github.com/dmitrijs2005/bankfront/internal/mockbank/response"
	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "user_id"
	ctxEmail  = "email"
	ctxRoles  = "roles"
	ctxJTI    = "jti"
)

func extractToken(c *gin.Context) string {
	h := c.GetHeader(common.AuthorizationHeaderName)
	if h == "" {
		return ""
	}
	token, ok := strings.CutPrefix(h, common.BearerPrefix)
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// requireAuth validates the bearer token and its session.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "missing authorization token")
			return
		}

		claims, err := auth.ParseToken(token, s.secret)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}

		if !s.bank.SessionActive(claims.ID, claims.UserID) {
			response.Unauthorized(c, "session has been revoked")
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Subject)
		c.Set(ctxRoles, claims.Roles)
		c.Set(ctxJTI, claims.ID)

		c.Next()
	}
}

// requireRole must follow requireAuth.
func (s *Server) requireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRoles := c.GetStringSlice(ctxRoles)

		for _, r := range userRoles {
			if slices.Contains(roles, r) {
				c.Next()
				return
			}
		}

		response.Error(c, http.StatusForbidden, "insufficient permissions", nil, gin.H{
			"required_roles": roles,
			"user_roles":     userRoles,
		})
	}
}

// requestLog echoes X-Request-ID and logs one line per request.
func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rid := c.GetHeader(common.RequestIDHeaderName)
		if rid != "" {
			c.Header(common.RequestIDHeaderName, rid)
		}

		c.Next()

		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"request_id", rid,
		)
	}
}
