// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripmate/internal/http/handlers"
	"tripmate/internal/http/middleware"
)

// Routes builds the gin engine. Auth applies to every route except /health and /metrics.
func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(middleware.Logging(s.log), middleware.Recovery(s.log), middleware.Metrics(s.metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "Travel Planner AI API"})
	})
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := r.Group("/")
	if s.verifier != nil {
		api.Use(middleware.Auth(s.verifier))
	}

	// Typed nils must not reach the handlers as non-nil interfaces.
	var forecaster handlers.Forecaster
	if s.weather != nil {
		forecaster = s.weather
	}
	var tripContext handlers.TripContextSource
	if s.trips != nil {
		tripContext = s.trips
	}

	chat := handlers.NewChatHandler(s.planner, tripContext, s.history, s.quota, s.log)
	api.POST("/chat-trip", chat.Chat)

	weatherHandler := handlers.NewWeatherHandler(forecaster)
	api.POST("/trip-weather", weatherHandler.TripWeather)

	historyHandler := handlers.NewHistoryHandler(s.history)
	api.GET("/api/chat/messages", historyHandler.List)
	api.DELETE("/api/chat/messages", historyHandler.Clear)

	if s.trips != nil {
		tripsHandler := handlers.NewTripsHandler(s.trips)
		api.GET("/api/trips/calendar", tripsHandler.Calendar)
	}

	return r
}
