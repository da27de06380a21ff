package server

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"helpdesk/internal/models"
)

const (
	requestIDKey = "request_id"
	userIDKey    = "user_id"
)

// requestID tags every request with an X-Request-ID, keeping one supplied
// by the client.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// requestLogger logs one line per API request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if !strings.HasPrefix(c.Request.URL.Path, "/api") {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.logger.Info("request",
			slog.String("method", c.Request.Method),
			slog.String("route", route),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("request_id", c.GetString(requestIDKey)),
		)
	}
}

// identify resolves the session token, if any, into the caller's user id.
// It never rejects a request; the guarded route groups and the service
// operations check the caller.
func (s *Server) identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token, _ = c.Cookie(s.opts.CookieName)
		}
		if token != "" && s.sessions != nil {
			claims, err := s.sessions.Parse(token)
			if err != nil {
				s.logger.Debug("ignoring session token", slog.String("error", err.Error()))
			} else {
				c.Set(userIDKey, claims.UserID())
			}
		}
		c.Next()
	}
}

// authenticated rejects requests without a resolvable caller.
func (s *Server) authenticated() gin.HandlerFunc {
	return s.guard(s.svc.Caller)
}

// adminOnly rejects requests whose caller is not an administrator.
func (s *Server) adminOnly() gin.HandlerFunc {
	return s.guard(s.svc.RequireAdmin)
}

func (s *Server) guard(resolve func(ctx context.Context, userID string) (models.User, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := resolve(c.Request.Context(), callerID(c)); err != nil {
			s.respondError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// callerID returns the user id of the session, or "" when anonymous.
func callerID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
