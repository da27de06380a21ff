package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"helpdesk/internal/auth"
	"helpdesk/internal/helpdesk"
)

// Options configures the HTTP surface.
type Options struct {
	// StaticDir holds a built frontend. Empty means API only.
	StaticDir    string
	CookieName   string
	CookieSecure bool
}

// Server provides HTTP handlers for the helpdesk API.
type Server struct {
	engine   *gin.Engine
	svc      *helpdesk.Service
	sessions *auth.Sessions
	logger   *slog.Logger
	metrics  *metrics
	opts     Options
}

// New constructs the HTTP server with routes and middleware configured.
func New(svc *helpdesk.Service, sessions *auth.Sessions, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.CookieName == "" {
		opts.CookieName = "session"
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	srv := &Server{
		engine:   router,
		svc:      svc,
		sessions: sessions,
		logger:   logger,
		metrics:  newMetrics(),
		opts:     opts,
	}

	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(srv.requestLogger())
	router.Use(srv.metrics.middleware())
	router.Use(srv.identify())

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together. Guarded
// groups resolve the caller before any handler parses its input.
func (s *Server) registerRoutes() {
	s.engine.GET("/metrics", s.metrics.handler())

	api := s.engine.Group("/api")
	api.GET("/healthz", s.handleHealth)
	api.POST("/register", s.handleRegister)
	api.POST("/login", s.handleLogin)
	api.POST("/logout", s.handleLogout)

	user := api.Group("", s.authenticated())
	admin := api.Group("", s.adminOnly())

	user.GET("/me", s.handleMe)

	for path, kind := range lookupPaths {
		api.GET(path, s.handleListLookups(kind))
		admin.POST(path, s.handleCreateLookup(kind))
		admin.PATCH(path+"/:id", s.handleUpdateLookup(kind))
		admin.DELETE(path+"/:id", s.handleDeleteLookup(kind))
	}

	user.GET("/tickets", s.handleListTickets)
	user.POST("/tickets", s.handleCreateTicket)
	admin.GET("/tickets/export", s.handleExportTickets)
	user.GET("/tickets/:id", s.handleGetTicket)
	admin.PATCH("/tickets/:id", s.handleUpdateTicket)
	admin.POST("/tickets/:id/complete", s.handleCompleteTicket)
	user.GET("/tickets/:id/comments", s.handleListComments)
	user.POST("/tickets/:id/comments", s.handleCreateComment)
	user.GET("/tickets/:id/operations", s.handleListOperations)
	admin.POST("/tickets/:id/operations", s.handleCreateOperation)

	user.PATCH("/comments/:id", s.handleUpdateComment)
	user.DELETE("/comments/:id", s.handleDeleteComment)
	admin.DELETE("/operations/:id", s.handleDeleteOperation)

	user.GET("/stats", s.handleStats)

	admin.GET("/users", s.handleListUsers)
	admin.POST("/users", s.handleCreateUser)
	admin.PATCH("/users/:id", s.handleUpdateUser)
	admin.DELETE("/users/:id", s.handleDeleteUser)

	s.mountStatic()
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}

// parseID validates a path identifier.
func parseID(c *gin.Context, name string) (string, bool) {
	raw := c.Param(name)
	if _, err := uuid.Parse(raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return "", false
	}
	return raw, true
}

// bindJSON decodes the request body and answers 400 on malformed input.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

// statusFor maps an error kind to its HTTP status. Zero means internal.
func statusFor(err error) int {
	switch {
	case errors.Is(err, helpdesk.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, helpdesk.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, helpdesk.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, helpdesk.ErrConflict), errors.Is(err, helpdesk.ErrInvalid):
		return http.StatusBadRequest
	}
	return 0
}

// respondError maps err to the error taxonomy. Internal failures are logged
// and answered with a generic message.
func (s *Server) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == 0 || !helpdesk.IsDomain(err) {
		s.logger.Error("request failed",
			slog.String("path", c.FullPath()),
			slog.String("request_id", c.GetString(requestIDKey)),
			slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondSuccess writes payload, or only the status when payload is nil.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}

var deleted = gin.H{"success": true}
