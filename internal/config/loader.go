package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// envPrefix namespaces every interviewd environment variable.
	envPrefix = "INTERVIEWD_"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// Load loads configuration from a YAML file, then overrides with
// environment variables.
//
// Precedence (highest to lowest):
//  1. Environment variables (INTERVIEWD_SERVER_PORT, INTERVIEWD_LLM_PROVIDER, ...)
//  2. YAML config file
//  3. Hardcoded defaults
//
// If configPath is empty the default path ~/.config/interviewd/config.yaml
// is used; a missing file is not an error.
//
// Environment variables map to config keys by section:
//
//	INTERVIEWD_SERVER_PORT                  -> server.port
//	INTERVIEWD_LLM_MAX_CALLS_PER_SESSION    -> llm.max_calls_per_session
//	INTERVIEWD_LLM_MODELS_INTERVIEWER       -> llm.models.interviewer
//	INTERVIEWD_INTERVIEW_SKILL_WEIGHTS_DOMAIN -> interview.skill_weights.domain
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "interviewd", "config.yaml")
	}

	if info, err := os.Stat(configPath); err == nil {
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file %s exceeds %d bytes", configPath, maxConfigFileSize)
		}

		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", transformEnvKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// transformEnvKey maps an environment variable name (prefix already
// stripped) onto a dotted config key. Section and nested-group names are
// matched explicitly because field names themselves contain underscores.
func transformEnvKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))

	sections := []string{"server", "logging", "telemetry", "llm", "interview", "anticheat"}
	groups := map[string]string{
		"llm_models":              "llm.models",
		"interview_skill_weights": "interview.skill_weights",
	}

	for prefix, dotted := range groups {
		if strings.HasPrefix(s, prefix+"_") {
			return dotted + "." + strings.TrimPrefix(s, prefix+"_")
		}
	}

	for _, section := range sections {
		if strings.HasPrefix(s, section+"_") {
			return section + "." + strings.TrimPrefix(s, section+"_")
		}
	}

	// Unknown variables are left as-is; koanf ignores keys that do not
	// match any config field.
	return s
}
