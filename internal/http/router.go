// README: HTTP route registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fria/internal/http/middleware"
)

func (s *Server) register(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api", middleware.Auth(s.verifier))

	sessions := api.Group("/intake/sessions")
	sessions.POST("", s.intake.Start)
	sessions.GET("/:id", s.intake.Get)
	sessions.POST("/:id/turns", s.intake.Turn)
	sessions.POST("/:id/audio", s.intake.Audio)
	sessions.POST("/:id/restart", s.intake.Restart)

	forms := api.Group("/forms")
	forms.GET("/required", s.forms.Required)
	forms.GET("/:id", s.forms.Get)
	forms.PUT("/:id/fields/:field", s.forms.SetField)
	forms.POST("/:id/reset", s.forms.Reset)

	api.POST("/location/reverse-geocode", s.location.ReverseGeocode)
	api.POST("/location/search", s.location.Search)

	api.GET("/tow-requests/:id", s.tows.Get)
	api.POST("/tow-requests/:id/status", s.tows.UpdateStatus)
}
