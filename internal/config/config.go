// Package config loads assistant configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider identifies an LLM or embedding backend.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderBedrock   Provider = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// LLM completion
	LLMProvider     Provider
	LLMModel        string
	AnthropicAPIKey string
	OpenAIAPIKey    string
	OllamaHost      string
	CompleteTimeout time.Duration

	// Embedding
	EmbedProvider  Provider
	EmbedModel     string
	EmbedDimension int
	EmbedTimeout   time.Duration

	// Directory (external schedule/roster source)
	DirectoryBaseURL string
	DirectoryAppID   string
	DirectorySecret  string
	DirectoryTimeout time.Duration
	ThrottleEvery    int           // pause after this many requests
	ThrottleDelay    time.Duration // length of the pause
	LookupWindowDays int           // symmetric widening window on exact-date miss

	// Resolver
	MatchThreshold float64 // fuzzy similarity floor, false merges are worse than a question

	// Retrieval
	SimilarityFloor float64
	NoteSearchLimit int
	DocSearchLimit  int
	EvidenceBudget  int // characters

	// Dialogue
	ClarifyTurnLimit int // force-abandon pending ops after this many turns
	HistoryTurns     int
	SummaryThreshold int // turn count that switches history to the rolling summary
	PromptCeiling    int // characters

	// Logging
	LogFile  string
	LogLevel slog.Level

	// Domain tables, overridable from a YAML file
	ServiceTypes map[string]string  // keyword -> service type name
	Holidays     map[string]Holiday // lowercase name -> month/day
}

// Holiday is a fixed-date named day used by relative date parsing.
type Holiday struct {
	Month int `yaml:"month"`
	Day   int `yaml:"day"`
}

// fileOverlay is the optional YAML config file shape.
type fileOverlay struct {
	ServiceTypes map[string]string  `yaml:"service_types"`
	Holidays     map[string]Holiday `yaml:"holidays"`
}

// Load reads configuration from the environment. A .env file in the
// working directory is honored when present. SHEPHERD_CONFIG_FILE may
// name a YAML file overriding the service-type and holiday tables.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "shepherd"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "assistant"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		LLMProvider:     Provider(getEnv("SHEPHERD_LLM_PROVIDER", "anthropic")),
		LLMModel:        getEnv("SHEPHERD_LLM_MODEL", "claude-sonnet-4-20250514"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		CompleteTimeout: getDuration("SHEPHERD_COMPLETE_TIMEOUT", 60*time.Second),

		EmbedProvider:  Provider(getEnv("SHEPHERD_EMBED_PROVIDER", "openai")),
		EmbedModel:     getEnv("SHEPHERD_EMBED_MODEL", "text-embedding-3-small"),
		EmbedDimension: getInt("SHEPHERD_EMBED_DIMENSION", 1536),
		EmbedTimeout:   getDuration("SHEPHERD_EMBED_TIMEOUT", 30*time.Second),

		DirectoryBaseURL: getEnv("DIRECTORY_BASE_URL", "https://api.planningcenteronline.com"),
		DirectoryAppID:   os.Getenv("DIRECTORY_APP_ID"),
		DirectorySecret:  os.Getenv("DIRECTORY_SECRET"),
		DirectoryTimeout: getDuration("DIRECTORY_TIMEOUT", 30*time.Second),
		ThrottleEvery:    getInt("DIRECTORY_THROTTLE_EVERY", 10),
		ThrottleDelay:    getDuration("DIRECTORY_THROTTLE_DELAY", 2*time.Second),
		LookupWindowDays: getInt("DIRECTORY_LOOKUP_WINDOW_DAYS", 3),

		MatchThreshold: getFloat("SHEPHERD_MATCH_THRESHOLD", 0.8),

		SimilarityFloor: getFloat("SHEPHERD_SIMILARITY_FLOOR", 0.3),
		NoteSearchLimit: getInt("SHEPHERD_NOTE_SEARCH_LIMIT", 5),
		DocSearchLimit:  getInt("SHEPHERD_DOC_SEARCH_LIMIT", 5),
		EvidenceBudget:  getInt("SHEPHERD_EVIDENCE_BUDGET", 8000),

		ClarifyTurnLimit: getInt("SHEPHERD_CLARIFY_TURN_LIMIT", 3),
		HistoryTurns:     getInt("SHEPHERD_HISTORY_TURNS", 10),
		SummaryThreshold: getInt("SHEPHERD_SUMMARY_THRESHOLD", 20),
		PromptCeiling:    getInt("SHEPHERD_PROMPT_CEILING", 24000),

		LogFile:  getEnv("SHEPHERD_LOG_FILE", "/tmp/shepherd.log"),
		LogLevel: parseLogLevel(getEnv("SHEPHERD_LOG_LEVEL", "INFO")),

		ServiceTypes: DefaultServiceTypes(),
		Holidays:     DefaultHolidays(),
	}

	if path := os.Getenv("SHEPHERD_CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			slog.Warn("config file ignored", "path", path, "error", err)
		}
	}

	return cfg
}

// DefaultServiceTypes maps question keywords to directory service types.
func DefaultServiceTypes() map[string]string {
	return map[string]string{
		"hsm":           "HSM",
		"high school":   "HSM",
		"msm":           "MSM",
		"middle school": "MSM",
	}
}

// DefaultHolidays covers the fixed-date names the date parser accepts.
// Easter moves and is resolved separately.
func DefaultHolidays() map[string]Holiday {
	return map[string]Holiday{
		"christmas":     {Month: 12, Day: 25},
		"christmas eve": {Month: 12, Day: 24},
		"new year's":    {Month: 1, Day: 1},
		"new years":     {Month: 1, Day: 1},
		"new year":      {Month: 1, Day: 1},
		"thanksgiving":  {Month: 11, Day: 27}, // approximation, overridable per year
	}
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var overlay fileOverlay
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	for k, v := range overlay.ServiceTypes {
		c.ServiceTypes[strings.ToLower(k)] = v
	}
	for k, v := range overlay.Holidays {
		c.Holidays[strings.ToLower(k)] = v
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
