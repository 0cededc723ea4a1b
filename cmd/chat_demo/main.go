package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"tripmate/internal/ai"
	"tripmate/internal/config"
	"tripmate/internal/logger"
	"tripmate/internal/modules/extraction"
	"tripmate/internal/modules/tools"
	"tripmate/internal/modules/trips"
	"tripmate/internal/modules/weather"
	"tripmate/internal/service"
)

// Terminal chat against the planner. Trips go to TRIPMATE_TRIPS_API_BASE; weather needs SERPAPI_API_KEY.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()
	quiet := logger.New(logger.Config{Level: "warn", Pretty: true, Output: os.Stderr})

	var reasoner ai.Reasoner
	switch cfg.AI.Provider {
	case config.ProviderOpenAI:
		reasoner = ai.NewOpenAIReasoner(cfg.AI.OpenAIKey, cfg.AI.Model, cfg.AI.Temperature)
	default:
		g, err := ai.NewGeminiReasoner(ctx, cfg.AI.GeminiKey, cfg.AI.Model, cfg.AI.Temperature)
		if err != nil {
			log.Fatalf("Failed to initialize AI provider: %v", err)
		}
		defer g.Close()
		reasoner = g
	}

	resolver := extraction.NewResolver(nil, 0, quiet, nil)
	engine := extraction.NewEngine(quiet, extraction.WithResolver(resolver))
	deps := service.ToolDeps{
		Trips:  trips.NewService(trips.NewClient(cfg.Trips.BaseURL, cfg.Trips.Timeout), resolver, quiet),
		Engine: engine,
	}
	if cfg.Search.SerpAPIKey != "" {
		deps.Weather = weather.NewService(weather.NewSerpClient(cfg.Search.BaseURL, cfg.Search.SerpAPIKey, cfg.Search.Timeout), quiet)
	}
	registry := tools.NewRegistry()
	if err := service.RegisterTools(registry, deps); err != nil {
		log.Fatal(err)
	}
	dispatcher := tools.NewDispatcher(registry, tools.DispatcherOptions{CallTimeout: cfg.Tools.CallTimeout, Logger: quiet})
	planner := service.NewPlanner(reasoner, registry, dispatcher, service.NewContextBuilder(engine), service.PlannerOptions{
		StepTimeout: cfg.AI.StepTimeout,
		MaxRounds:   cfg.AI.MaxRounds,
		Logger:      quiet,
	})

	userID := os.Getenv("TRIPMATE_DEMO_USER")
	if userID == "" {
		userID = "demo-user"
	}
	state := service.NewConversationState(userID, nil, deps.Trips.Context(ctx, userID))

	fmt.Printf("Chatting as %s via %s. Empty line quits.\n", userID, reasoner.Name())
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYou: ")
		if !in.Scan() {
			return
		}
		text := strings.TrimSpace(in.Text())
		if text == "" {
			return
		}

		fmt.Print("AI: ")
		res, err := planner.RunTurn(ctx, state, text, func(ev service.Event) error {
			switch ev.Type {
			case service.EventToken, service.EventError:
				fmt.Print(ev.Text)
			case service.EventToolStart:
				fmt.Printf("\n  [calling %s]\n", ev.Tool)
			case service.EventToolDone:
				fmt.Printf("  [%s done, success=%t]\n", ev.Tool, ev.Success)
			}
			return nil
		})
		fmt.Println()
		if err != nil {
			fmt.Fprintf(os.Stderr, "turn ended with %s: %v\n", res.Status, err)
			continue
		}
		state = res.State
	}
}
