// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/http/handlers"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/http/middleware"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/matching"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/reliability"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/wizard"
)

const roleAdmin = "admin"

type ServerDeps struct {
	Wizard      *wizard.Manager
	Reliability *reliability.Service
	Matching    *matching.Service
	Logger      zerolog.Logger
}

type Server struct {
	wizard      *wizard.Manager
	reliability *reliability.Service
	matching    *matching.Service
	logger      zerolog.Logger
}

func NewServer(deps ServerDeps) *Server {
	return &Server{
		wizard:      deps.Wizard,
		reliability: deps.Reliability,
		matching:    deps.Matching,
		logger:      deps.Logger,
	}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(middleware.Logging(s.logger), middleware.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api", middleware.Auth())

	wh := handlers.NewWizardHandler(s.wizard)
	api.POST("/wizard", wh.Start)
	api.GET("/wizard/:id", wh.Get)
	api.PUT("/wizard/:id/address", wh.UpdateAddress)
	api.POST("/wizard/:id/location/validate", wh.ValidateLocation)
	api.PUT("/wizard/:id/category", wh.SelectCategory)
	api.PUT("/wizard/:id/configuration", wh.Configure)
	api.PUT("/wizard/:id/schedule", wh.SetSchedule)
	api.POST("/wizard/:id/advance", wh.Advance)
	api.POST("/wizard/:id/back", wh.Back)
	api.GET("/wizard/:id/validation", wh.Validation)
	api.GET("/wizard/:id/quote", wh.Quote)
	api.POST("/wizard/:id/submit", wh.Submit)
	api.DELETE("/wizard/:id", wh.Close)

	admin := api.Group("/admin", middleware.RequireRole(roleAdmin))
	ah := handlers.NewAdminHandler(s.reliability, s.matching)
	admin.GET("/providers/reliability", ah.Reliability)
	admin.PUT("/providers/:id/location", ah.UpsertProviderLocation)
	admin.DELETE("/providers/:id", ah.RemoveProvider)

	return r
}
