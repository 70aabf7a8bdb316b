// Package config provides configuration loading for interviewd.
//
// Configuration is loaded from a YAML file with environment variable
// overrides. See Load for precedence rules.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete interviewd configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	LLM       LLMConfig       `koanf:"llm"`
	Interview InterviewConfig `koanf:"interview"`
	AntiCheat AntiCheatConfig `koanf:"anticheat"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds zap logger configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json or console
	Caller bool   `koanf:"caller"`
}

// TelemetryConfig holds OpenTelemetry configuration.
type TelemetryConfig struct {
	Enabled         bool     `koanf:"enabled"`
	ServiceName     string   `koanf:"service_name"`
	Endpoint        string   `koanf:"endpoint"` // OTLP gRPC endpoint
	Insecure        bool     `koanf:"insecure"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// LLMConfig holds model gateway configuration.
type LLMConfig struct {
	// Provider selects the completion backend: "anthropic", "openai" or
	// "disabled". Disabled means every component runs on its heuristic path.
	Provider string   `koanf:"provider"`
	APIKey   Secret   `koanf:"api_key"`
	BaseURL  string   `koanf:"base_url"`
	Timeout  Duration `koanf:"timeout"`

	// MaxCallsPerSession is the per-session call budget. Exhaustion is a
	// normal operating mode, not a fault: callers degrade to heuristics.
	MaxCallsPerSession int `koanf:"max_calls_per_session"`

	// MinCallInterval is the minimum spacing between two calls charged to
	// the same session budget.
	MinCallInterval Duration `koanf:"min_call_interval"`

	Models ModelRoles `koanf:"models"`
}

// ModelRoles maps each engine role to a model identifier.
type ModelRoles struct {
	Interviewer string `koanf:"interviewer"`
	Evaluator   string `koanf:"evaluator"`
	AntiCheat   string `koanf:"anticheat"`
	Summary     string `koanf:"summary"`
	Analysis    string `koanf:"analysis"`
}

// InterviewConfig holds interview session tuning.
type InterviewConfig struct {
	// MaxTurnsForEval caps the transcript length; reaching it finishes
	// the session.
	MaxTurnsForEval int `koanf:"max_turns_for_eval"`

	// ShortAnswerChars is the length below which an answer is scored as
	// a short answer by the heuristic evaluator.
	ShortAnswerChars int `koanf:"short_answer_chars"`

	// InitialDifficulty is the difficulty assigned at session creation.
	InitialDifficulty int `koanf:"initial_difficulty"`

	SkillWeights SkillWeights `koanf:"skill_weights"`
}

// SkillWeights holds per-axis scoring weights passed to the evaluator prompt.
type SkillWeights struct {
	Communication float64 `koanf:"communication"`
	Reasoning     float64 `koanf:"reasoning"`
	Domain        float64 `koanf:"domain"`
}

// AntiCheatConfig holds integrity analysis configuration.
type AntiCheatConfig struct {
	// Enabled gates the model-backed analysis; the heuristic scan always runs.
	Enabled bool `koanf:"enabled"`

	// MinTurns is the transcript length below which the heuristic adds a
	// low-effort flag.
	MinTurns int `koanf:"min_turns"`

	// ToxicKeywords are case-insensitive markers scanned for in the
	// transcript by the heuristic path.
	ToxicKeywords []string `koanf:"toxic_keywords"`
}

// DefaultConfig returns configuration with production-ready defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8484,
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: true,
		},
		Telemetry: TelemetryConfig{
			Enabled:         false,
			ServiceName:     "interviewd",
			Endpoint:        "localhost:4317",
			Insecure:        true,
			ShutdownTimeout: Duration(5 * time.Second),
		},
		LLM: LLMConfig{
			Provider:           "anthropic",
			Timeout:            Duration(60 * time.Second),
			MaxCallsPerSession: 30,
			MinCallInterval:    Duration(time.Second),
			Models: ModelRoles{
				Interviewer: "claude-3-5-sonnet-20241022",
				Evaluator:   "claude-3-5-haiku-20241022",
				AntiCheat:   "claude-3-5-haiku-20241022",
				Summary:     "claude-3-5-sonnet-20241022",
				Analysis:    "claude-3-5-sonnet-20241022",
			},
		},
		Interview: InterviewConfig{
			MaxTurnsForEval:   10,
			ShortAnswerChars:  40,
			InitialDifficulty: 2,
			SkillWeights: SkillWeights{
				Communication: 0.3,
				Reasoning:     0.35,
				Domain:        0.35,
			},
		},
		AntiCheat: AntiCheatConfig{
			Enabled:  true,
			MinTurns: 4,
			ToxicKeywords: []string{
				"as an ai",
				"as a language model",
				"chatgpt",
				"i cannot assist",
				"copied from",
			},
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout.Duration() <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	switch c.LLM.Provider {
	case "anthropic", "openai", "disabled":
	default:
		return fmt.Errorf("unknown llm provider: %q", c.LLM.Provider)
	}
	if c.LLM.MaxCallsPerSession < 0 {
		return errors.New("max_calls_per_session cannot be negative")
	}

	if c.Interview.MaxTurnsForEval < 1 {
		return errors.New("max_turns_for_eval must be at least 1")
	}
	if c.Interview.ShortAnswerChars < 0 {
		return errors.New("short_answer_chars cannot be negative")
	}
	if c.Interview.InitialDifficulty < 1 || c.Interview.InitialDifficulty > 5 {
		return fmt.Errorf("initial difficulty %d out of range [1,5]", c.Interview.InitialDifficulty)
	}

	if c.Telemetry.Enabled && c.Telemetry.ServiceName == "" {
		return errors.New("service name required when telemetry is enabled")
	}

	return nil
}
