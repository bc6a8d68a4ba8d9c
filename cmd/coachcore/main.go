// Command coachcore runs an interactive coaching session against a local
// fitness database, one turn per input line.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/stridelabs/coachcore/ai"
	"github.com/stridelabs/coachcore/cache"
	"github.com/stridelabs/coachcore/classifier"
	"github.com/stridelabs/coachcore/coach"
	"github.com/stridelabs/coachcore/direct"
	"github.com/stridelabs/coachcore/health"
	"github.com/stridelabs/coachcore/internal/profile"
	"github.com/stridelabs/coachcore/metrics"
	"github.com/stridelabs/coachcore/session"
	"github.com/stridelabs/coachcore/store"
	"github.com/stridelabs/coachcore/store/db"
)

// stubTelemetry stands in for device telemetry, which arrives through the
// companion app and is not reachable from the CLI. Every fetch degrades to
// its default value.
type stubTelemetry struct{}

func (stubTelemetry) TodayActivity(context.Context) (health.ActivityMetrics, error) {
	return health.ActivityMetrics{}, nil
}
func (stubTelemetry) HeartHealth(context.Context) (health.HeartMetrics, error) {
	return health.HeartMetrics{}, nil
}
func (stubTelemetry) LatestBody(context.Context) (health.BodyMetrics, error) {
	return health.BodyMetrics{}, nil
}
func (stubTelemetry) LastNightSleep(context.Context) (health.SleepSession, error) {
	return health.SleepSession{}, nil
}

func main() {
	p := &profile.Profile{}
	p.FromEnv()
	if err := p.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	level := slog.LevelInfo
	if p.IsDev() {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if !p.IsAIEnabled() {
		log.Fatal("AI is not configured; set COACHCORE_AI_API_KEY")
	}

	policy := profile.DefaultPolicy()

	driver, err := db.NewDBDriver(p)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	appStore := store.New(driver, policy)
	defer appStore.Close()

	cacheSvc := cache.NewService(cache.ServiceConfig{})
	defer cacheSvc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracker := session.NewTracker(policy)
	cleanup := session.NewCleanupJob(tracker, session.DefaultCleanupInterval)
	cleanup.Start(ctx)
	defer cleanup.Stop()

	recorder := metrics.NewAggregator()
	llm := ai.NewOpenAIService(p)
	aggregator := health.NewAggregator(stubTelemetry{}, appStore, cacheSvc, policy)
	engine := coach.NewEngine(
		classifier.New(policy),
		tracker,
		aggregator,
		direct.NewExecutor(llm, policy),
		llm,
		policy,
		coach.WithMetrics(recorder),
	)

	sessionID := tracker.CreateSession("cli", session.ModeChat, session.DefaultContextWindow)
	defer engine.EndSession(sessionID)

	fmt.Println("coachcore", p.Version, "- type a message, ctrl-d to quit")

	var history []classifier.Message
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		utterance := strings.TrimSpace(scanner.Text())
		if utterance == "" {
			continue
		}

		turnCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		result, err := engine.ProcessTurn(turnCtx, sessionID, utterance, history)
		cancel()
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}

		fmt.Printf("[%s] %s\n", result.Route, result.Text)
		history = append(history,
			classifier.Message{Role: "user", Content: utterance},
			classifier.Message{Role: "assistant", Content: result.Text},
		)

		if ctx.Err() != nil {
			break
		}
	}

	for _, summary := range recorder.Summaries() {
		slog.Info("session stats",
			"route", summary.Route,
			"turns", summary.Turns,
			"p95_latency_ms", summary.P95LatencyMs,
			"tokens", summary.TotalTokens)
	}
}
