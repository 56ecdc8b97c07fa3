package ui

import (
	"net/http"

	"aireliance/ui/middleware"

	"github.com/gin-gonic/gin"
)

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"sessions": s.manager.ActiveCount(),
		})
	})

	h := newSessionHandler(s.manager, s.logger)

	api := s.router.Group("/api/sessions")
	api.POST("", h.HandleCreate)

	session := api.Group("/:id", middleware.LoadSession(s.manager, s.logger))
	{
		session.GET("", h.HandleView)
		session.POST("/begin", h.HandleBegin)
		session.PUT("/answer", h.HandleAnswer)
		session.PUT("/confidence", h.HandleConfidence)
		session.POST("/reveal", h.HandleReveal)
		session.POST("/submit", h.HandleSubmit)
		session.GET("/summary", h.HandleSummary)
		session.GET("/results.xlsx", h.HandleWorkbook)
		session.DELETE("", h.HandleDiscard)
		if s.hub != nil {
			session.GET("/events", s.hub.HandleSSE) // SSE endpoint for AI answers and completion
		}
	}
}
