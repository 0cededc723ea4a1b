// README: Config loader with env defaults for HTTP, storage, AI providers, and collaborator endpoints.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type AIConfig struct {
	Provider    string
	GeminiKey   string
	OpenAIKey   string
	Model       string
	Temperature float64
	StepTimeout time.Duration
	MaxRounds   int
}

type MapsConfig struct {
	APIKey         string
	GeocodeTimeout time.Duration
	CacheTTL       time.Duration
}

type SearchConfig struct {
	SerpAPIKey string
	BaseURL    string
	Timeout    time.Duration
}

type TripsConfig struct {
	BaseURL string
	Timeout time.Duration
}

type ToolsConfig struct {
	CallTimeout time.Duration
	Parallelism int
}

type Config struct {
	HTTP struct {
		Addr            string
		ShutdownTimeout time.Duration
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr string
	}
	AI     AIConfig
	Maps   MapsConfig
	Search SearchConfig
	Trips  TripsConfig
	Tools  ToolsConfig
	Quota  struct {
		MonthlyTurns int
	}
	Firebase struct {
		ProjectID       string
		CredentialsFile string
		CheckRevoked    bool
	}
	Log struct {
		Level  string
		Pretty bool
	}
}

func Load() (Config, error) {
	var cfg Config
	cfg.HTTP.Addr = envOrDefault("TRIPMATE_HTTP_ADDR", ":8000")
	cfg.HTTP.ShutdownTimeout = envOrDefaultDuration("TRIPMATE_SHUTDOWN_TIMEOUT", 10*time.Second)

	// Empty DSN / Redis address turn the backed features off instead of failing startup.
	cfg.DB.DSN = os.Getenv("TRIPMATE_DB_DSN")
	cfg.Redis.Addr = os.Getenv("TRIPMATE_REDIS_ADDR")

	cfg.AI.Provider = strings.ToLower(envOrDefault("TRIPMATE_LLM_PROVIDER", ProviderGemini))
	cfg.AI.GeminiKey = os.Getenv("GEMINI_API_KEY")
	cfg.AI.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	cfg.AI.Model = os.Getenv("TRIPMATE_LLM_MODEL")
	cfg.AI.Temperature = envOrDefaultFloat("TRIPMATE_LLM_TEMPERATURE", 0.4)
	cfg.AI.StepTimeout = envOrDefaultDuration("TRIPMATE_LLM_STEP_TIMEOUT", 60*time.Second)
	cfg.AI.MaxRounds = envOrDefaultInt("TRIPMATE_MAX_TOOL_ROUNDS", 8)

	cfg.Maps.APIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	cfg.Maps.GeocodeTimeout = envOrDefaultDuration("TRIPMATE_GEOCODE_TIMEOUT", 10*time.Second)
	cfg.Maps.CacheTTL = envOrDefaultDuration("TRIPMATE_GEOCODE_CACHE_TTL", 24*time.Hour)

	cfg.Search.SerpAPIKey = os.Getenv("SERPAPI_API_KEY")
	cfg.Search.BaseURL = envOrDefault("TRIPMATE_SEARCH_BASE_URL", "https://serpapi.com/search.json")
	cfg.Search.Timeout = envOrDefaultDuration("TRIPMATE_SEARCH_TIMEOUT", 15*time.Second)

	cfg.Trips.BaseURL = envOrDefault("TRIPMATE_TRIPS_API_BASE", "http://localhost:3000/api/ai")
	cfg.Trips.Timeout = envOrDefaultDuration("TRIPMATE_TRIPS_TIMEOUT", 5*time.Second)

	cfg.Tools.CallTimeout = envOrDefaultDuration("TRIPMATE_TOOL_TIMEOUT", 20*time.Second)
	cfg.Tools.Parallelism = envOrDefaultInt("TRIPMATE_TOOL_PARALLELISM", 4)

	cfg.Quota.MonthlyTurns = envOrDefaultInt("TRIPMATE_MONTHLY_TURNS", 0)

	cfg.Firebase.ProjectID = os.Getenv("TRIPMATE_FIREBASE_PROJECT_ID")
	cfg.Firebase.CredentialsFile = os.Getenv("TRIPMATE_FIREBASE_CREDENTIALS")
	cfg.Firebase.CheckRevoked = envOrDefaultBool("TRIPMATE_FIREBASE_CHECK_REVOKED", false)

	cfg.Log.Level = envOrDefault("TRIPMATE_LOG_LEVEL", "info")
	cfg.Log.Pretty = envOrDefaultBool("TRIPMATE_LOG_PRETTY", false)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.AI.Provider {
	case ProviderGemini:
		if c.AI.GeminiKey == "" {
			return fmt.Errorf("environment variable GEMINI_API_KEY is required for provider %q", c.AI.Provider)
		}
	case ProviderOpenAI:
		if c.AI.OpenAIKey == "" {
			return fmt.Errorf("environment variable OPENAI_API_KEY is required for provider %q", c.AI.Provider)
		}
	default:
		return fmt.Errorf("unknown TRIPMATE_LLM_PROVIDER %q", c.AI.Provider)
	}
	if c.AI.MaxRounds <= 0 {
		return fmt.Errorf("TRIPMATE_MAX_TOOL_ROUNDS must be positive, got %d", c.AI.MaxRounds)
	}
	if c.Tools.Parallelism <= 0 {
		return fmt.Errorf("TRIPMATE_TOOL_PARALLELISM must be positive, got %d", c.Tools.Parallelism)
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
