package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// frontend is a prebuilt single-page application on disk.
type frontend struct {
	index  string
	assets string
}

// loadFrontend checks dir for an index.html and an optional assets
// directory. It returns nil without error when dir is empty.
func loadFrontend(dir string) (*frontend, error) {
	if dir == "" {
		return nil, nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	fe := &frontend{index: filepath.Join(dir, "index.html")}
	if _, err := os.Stat(fe.index); err != nil {
		return nil, err
	}
	assets := filepath.Join(dir, "assets")
	if info, err := os.Stat(assets); err == nil && info.IsDir() {
		fe.assets = assets
	}
	return fe, nil
}

// mountStatic serves the configured frontend and installs the fallback for
// unmatched routes.
func (s *Server) mountStatic() {
	fe, err := loadFrontend(s.opts.StaticDir)
	switch {
	case err != nil:
		s.logger.Warn("static frontend disabled", "path", s.opts.StaticDir, "error", err)
	case fe == nil:
		s.logger.Info("static directory not configured; API only mode")
	default:
		s.engine.GET("/", func(c *gin.Context) { c.File(fe.index) })
		if fe.assets != "" {
			s.engine.StaticFS("/assets", gin.Dir(fe.assets, false))
		}
	}
	s.engine.NoRoute(notFound(fe))
}

// notFound answers API paths and non-GET requests with a JSON 404. Other
// paths belong to the client router and get index.html when a frontend is
// mounted.
func notFound(fe *frontend) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if fe == nil || isAPIPath(c.Request.URL.Path) || (method != http.MethodGet && method != http.MethodHead) {
			c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
			return
		}
		c.File(fe.index)
	}
}

func isAPIPath(p string) bool {
	return p == "/api" || strings.HasPrefix(p, "/api/")
}
