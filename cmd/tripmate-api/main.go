// README: Entry point; loads config, wires services, starts the HTTP server with graceful shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"tripmate/internal/ai"
	"tripmate/internal/config"
	httptransport "tripmate/internal/http"
	"tripmate/internal/infra"
	"tripmate/internal/logger"
	"tripmate/internal/maps"
	"tripmate/internal/metrics"
	"tripmate/internal/modules/extraction"
	"tripmate/internal/modules/history"
	"tripmate/internal/modules/quota"
	"tripmate/internal/modules/tools"
	"tripmate/internal/modules/trips"
	"tripmate/internal/modules/weather"
	"tripmate/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{}).Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable; using in-process geocode cache and no quotas")
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	var historySvc *history.Service
	if cfg.DB.DSN != "" {
		pool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Warn().Err(err).Msg("database unavailable; chat history disabled")
		} else {
			defer pool.Close()
			historySvc = history.NewService(history.NewStore(pool))
		}
	}

	var quotaSvc *quota.Service
	if rdb != nil && cfg.Quota.MonthlyTurns > 0 {
		quotaSvc = quota.NewService(quota.NewRedisStore(rdb), cfg.Quota.MonthlyTurns)
	}

	resolver := newResolver(cfg, rdb, log, m)
	engine := extraction.NewEngine(log, extraction.WithResolver(resolver))
	tripsSvc := trips.NewService(trips.NewClient(cfg.Trips.BaseURL, cfg.Trips.Timeout), resolver, log)

	var weatherSvc *weather.Service
	if cfg.Search.SerpAPIKey != "" {
		weatherSvc = weather.NewService(weather.NewSerpClient(cfg.Search.BaseURL, cfg.Search.SerpAPIKey, cfg.Search.Timeout), log)
	} else {
		log.Warn().Msg("SERPAPI_API_KEY not set; weather and web search tools disabled")
	}

	registry := tools.NewRegistry()
	if err := service.RegisterTools(registry, service.ToolDeps{Trips: tripsSvc, Weather: weatherSvc, Engine: engine}); err != nil {
		log.Error().Err(err).Msg("tool registration failed")
		os.Exit(1)
	}
	dispatcher := tools.NewDispatcher(registry, tools.DispatcherOptions{
		CallTimeout: cfg.Tools.CallTimeout,
		Parallelism: cfg.Tools.Parallelism,
		Logger:      log,
		Metrics:     m,
	})

	reasoner, closeReasoner, err := newReasoner(ctx, cfg.AI)
	if err != nil {
		log.Error().Err(err).Msg("llm provider init failed")
		os.Exit(1)
	}
	defer closeReasoner()

	planner := service.NewPlanner(reasoner, registry, dispatcher, service.NewContextBuilder(engine), service.PlannerOptions{
		StepTimeout: cfg.AI.StepTimeout,
		MaxRounds:   cfg.AI.MaxRounds,
		Logger:      log,
		Metrics:     m,
	})

	var verifier infra.TokenVerifier
	if cfg.Firebase.ProjectID != "" {
		verifier, err = infra.NewFirebaseVerifier(ctx, infra.FirebaseOptions{
			ProjectID:       cfg.Firebase.ProjectID,
			CredentialsFile: cfg.Firebase.CredentialsFile,
			CheckRevoked:    cfg.Firebase.CheckRevoked,
		})
		if err != nil {
			log.Error().Err(err).Msg("firebase init failed")
			os.Exit(1)
		}
	} else {
		log.Warn().Msg("TRIPMATE_FIREBASE_PROJECT_ID not set; API routes are unauthenticated")
	}

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Planner:  planner,
		Trips:    tripsSvc,
		Weather:  weatherSvc,
		History:  historySvc,
		Quota:    quotaSvc,
		Verifier: verifier,
		Metrics:  m,
		Logger:   log,
	})
	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes()}

	go func() {
		<-ctx.Done()
		log.LogServerShutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("graceful shutdown failed")
		}
	}()

	log.LogServerStart(cfg.HTTP.Addr, reasoner.Name())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("http server failed")
		os.Exit(1)
	}
}

// newResolver builds the geocoding chain: Google geocoder, then Redis or in-process cache.
// Without a maps key every extracted location stays unresolved.
func newResolver(cfg config.Config, rdb *redis.Client, log *logger.Logger, m *metrics.Metrics) *extraction.Resolver {
	if cfg.Maps.APIKey == "" {
		log.Warn().Msg("GOOGLE_MAPS_API_KEY not set; locations will not be geocoded")
		return extraction.NewResolver(nil, cfg.Maps.GeocodeTimeout, log, m)
	}
	timezones, err := maps.NewTimezoneFinder()
	if err != nil {
		log.Warn().Err(err).Msg("timezone finder unavailable")
	}
	geo, err := maps.NewGeocodeService(cfg.Maps.APIKey, timezones)
	if err != nil {
		log.Warn().Err(err).Msg("geocoder init failed; locations will not be geocoded")
		return extraction.NewResolver(nil, cfg.Maps.GeocodeTimeout, log, m)
	}

	var cache maps.Cache = maps.NewMemoryCache(cfg.Maps.CacheTTL)
	if rdb != nil {
		cache = maps.NewRedisCache(rdb, cfg.Maps.CacheTTL)
	}
	return extraction.NewResolver(maps.NewCachedGeocoder(geo, cache, log, m), cfg.Maps.GeocodeTimeout, log, m)
}

func newReasoner(ctx context.Context, cfg config.AIConfig) (ai.Reasoner, func(), error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return ai.NewOpenAIReasoner(cfg.OpenAIKey, cfg.Model, cfg.Temperature), func() {}, nil
	default:
		g, err := ai.NewGeminiReasoner(ctx, cfg.GeminiKey, cfg.Model, cfg.Temperature)
		if err != nil {
			return nil, nil, err
		}
		return g, func() { _ = g.Close() }, nil
	}
}
