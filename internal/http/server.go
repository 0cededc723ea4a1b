// README: API gateway; holds the services behind the HTTP surface.
package http

import (
	"tripmate/internal/http/handlers"
	"tripmate/internal/infra"
	"tripmate/internal/logger"
	"tripmate/internal/metrics"
	"tripmate/internal/modules/history"
	"tripmate/internal/modules/quota"
	"tripmate/internal/modules/trips"
	"tripmate/internal/modules/weather"
)

// ServerDeps lists what the routes need. Everything except Planner and Trips is optional.
type ServerDeps struct {
	Planner  handlers.TurnRunner
	Trips    *trips.Service
	Weather  *weather.Service
	History  *history.Service
	Quota    *quota.Service
	Verifier infra.TokenVerifier
	Metrics  *metrics.Metrics
	Logger   *logger.Logger
}

type Server struct {
	planner  handlers.TurnRunner
	trips    *trips.Service
	weather  *weather.Service
	history  *history.Service
	quota    *quota.Service
	verifier infra.TokenVerifier
	metrics  *metrics.Metrics
	log      *logger.Logger
}

func NewServer(deps ServerDeps) *Server {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		planner:  deps.Planner,
		trips:    deps.Trips,
		weather:  deps.Weather,
		history:  deps.History,
		quota:    deps.Quota,
		verifier: deps.Verifier,
		metrics:  deps.Metrics,
		log:      log,
	}
}
