package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration for the coaching core and its collaborators.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Data is the data directory
	Data string
	// DSN points to where coachcore reads its fitness data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of the core
	Version string

	// AI configuration
	AIProvider    string  // COACHCORE_AI_PROVIDER (default: openai)
	AIModel       string  // COACHCORE_AI_MODEL (default: gpt-4o-mini)
	AIAPIKey      string  // COACHCORE_AI_API_KEY
	AIBaseURL     string  // COACHCORE_AI_BASE_URL (default: https://api.openai.com/v1)
	AIMaxTokens   int     // COACHCORE_AI_MAX_TOKENS (default: 2048)
	AITemperature float32 // COACHCORE_AI_TEMPERATURE (default: 0.7)
	// AIRequestsPerMinute bounds outbound provider calls (default: 60)
	AIRequestsPerMinute int
}

// Policy carries the behavioral tuning constants for classification, session
// staleness, caching, and nutrition validation. Defaults are the values the
// shipped coach uses; override individual fields only when a requirement
// explicitly changes them.
type Policy struct {
	// Session staleness.
	SessionStaleAfter   time.Duration // idle time before a session is stale
	SessionResetAfter   time.Duration // idle time before context should be rebuilt
	SessionCap          int           // maximum concurrently tracked sessions
	StaleHistoryCeiling int           // history limit granted to stale sessions

	// Chain detection.
	ChainWindow        time.Duration // recency window for the last tool call
	ChainProbLow       float64       // workflow-active floor
	ChainProbRecent    float64       // cutoff when last tool call is recent
	ChainProbMulti     float64       // cutoff with more than one recent tool
	ChainProbSingle    float64       // cutoff with any recent tool
	ClassifierMemoSize int           // bounded memoization capacity

	// Cache TTLs.
	SignalTTL   time.Duration // activity, heart, sleep buckets
	BodyTTL     time.Duration // body composition changes slowly
	SnapshotTTL time.Duration // merged snapshot bucket

	// Trend computation.
	TrendMinSampleDays int     // minimum valid days before a trend is emitted
	TrendClampPercent  float64 // absolute clamp on computed percentages

	// Nutrition validation.
	CalorieCeiling        int     // exclusive upper bound per item
	MacroCalorieTolerance float64 // allowed macro-vs-declared overshoot ratio
}

// DefaultPolicy returns the shipped policy constants.
func DefaultPolicy() Policy {
	return Policy{
		SessionStaleAfter:   30 * time.Minute,
		SessionResetAfter:   2 * time.Hour,
		SessionCap:          10,
		StaleHistoryCeiling: 30,

		ChainWindow:        5 * time.Minute,
		ChainProbLow:       0.3,
		ChainProbRecent:    0.5,
		ChainProbMulti:     0.7,
		ChainProbSingle:    0.8,
		ClassifierMemoSize: 100,

		SignalTTL:   5 * time.Minute,
		BodyTTL:     time.Hour,
		SnapshotTTL: 5 * time.Minute,

		TrendMinSampleDays: 7,
		TrendClampPercent:  500,

		CalorieCeiling:        10000,
		MacroCalorieTolerance: 0.3,
	}
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if a provider credential or endpoint is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIAPIKey != "" || p.AIBaseURL != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// FromEnv loads configuration from COACHCORE_* environment variables.
func (p *Profile) FromEnv() {
	p.Mode = getEnvOrDefault("COACHCORE_MODE", "dev")
	p.Data = os.Getenv("COACHCORE_DATA")
	p.DSN = os.Getenv("COACHCORE_DSN")
	p.Driver = getEnvOrDefault("COACHCORE_DRIVER", "sqlite")

	p.AIProvider = getEnvOrDefault("COACHCORE_AI_PROVIDER", "openai")
	p.AIModel = getEnvOrDefault("COACHCORE_AI_MODEL", "gpt-4o-mini")
	p.AIAPIKey = os.Getenv("COACHCORE_AI_API_KEY")
	p.AIBaseURL = getEnvOrDefault("COACHCORE_AI_BASE_URL", "https://api.openai.com/v1")
	p.AIMaxTokens = getIntEnvOrDefault("COACHCORE_AI_MAX_TOKENS", 2048)
	p.AIRequestsPerMinute = getIntEnvOrDefault("COACHCORE_AI_REQUESTS_PER_MINUTE", 60)
	if v := os.Getenv("COACHCORE_AI_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			p.AITemperature = float32(f)
		}
	}
	if p.AITemperature == 0 {
		p.AITemperature = 0.7
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported database driver %q", p.Driver)
	}

	if p.Data != "" {
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			return err
		}
		p.Data = dataDir
	}

	if p.Driver == "sqlite" && p.DSN == "" {
		if p.Data == "" {
			return errors.New("either COACHCORE_DSN or COACHCORE_DATA must be set for sqlite")
		}
		p.DSN = filepath.Join(p.Data, fmt.Sprintf("coachcore_%s.db", p.Mode))
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("COACHCORE_DSN must be set for postgres")
	}

	return nil
}
