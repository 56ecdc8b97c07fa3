package ui

import (
	"aireliance/ui/middleware"

	"github.com/gin-gonic/gin"
)

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware(accessLog bool) {
	s.router.Use(gin.Recovery())
	if accessLog {
		s.router.Use(gin.Logger())
	}
	s.router.Use(middleware.CORS())
}
