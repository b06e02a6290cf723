// Package config loads the agentdesk application configuration.
// Configuration lives in a single YAML file; every field has a usable
// default so the console runs with no config file at all.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	// Operator identifies the signed-in agent. Role and department feed
	// the search entitlement header; CanManageLayout gates layout writes.
	Operator OperatorConfig `yaml:"operator"`

	// Endpoints are the upstream HTTP collaborators.
	Endpoints EndpointsConfig `yaml:"endpoints"`

	// Storage holds durable client-side state (per-role layouts).
	Storage StorageConfig `yaml:"storage"`

	// Customer configures the simulated chat counterpart.
	Customer CustomerConfig `yaml:"customer"`

	// Logging controls the ambient zap logger.
	Logging LoggingConfig `yaml:"logging"`
}

// OperatorConfig describes the current operator.
type OperatorConfig struct {
	Role            string `yaml:"role"`
	Department      string `yaml:"department"`
	CanManageLayout bool   `yaml:"can_manage_layout"`
	CustomerTier    string `yaml:"customer_tier"`
}

// EndpointsConfig lists the upstream service URLs.
type EndpointsConfig struct {
	Search    string `yaml:"search"`
	AppSearch string `yaml:"app_search"`
	Templates string `yaml:"templates"`
	Intents   string `yaml:"intents"`
}

// StorageConfig locates durable client-side state.
type StorageConfig struct {
	Dir string `yaml:"dir"`
	// Key is the layout storage key prefix; the operator role is
	// appended to form the per-role persistence key.
	Key string `yaml:"key"`
}

// CustomerConfig selects the simulated customer.
type CustomerConfig struct {
	Personality   string `yaml:"personality"`
	IssueCategory string `yaml:"issue_category"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Debug bool   `yaml:"debug"`
	File  string `yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	stateDir := filepath.Join(home, ".agentdesk")
	return &Config{
		Operator: OperatorConfig{
			Role:            "chat_agent",
			Department:      "Retail Banking",
			CanManageLayout: true,
			CustomerTier:    "standard",
		},
		Endpoints: EndpointsConfig{
			Search:    "http://localhost:8980/api/kms/search",
			AppSearch: "http://localhost:8980/api/apps/search",
			Templates: "http://localhost:8980/api/config/templates",
			Intents:   "http://localhost:8980/api/config/intents",
		},
		Storage: StorageConfig{
			Dir: filepath.Join(stateDir, "state"),
			Key: "console-layout",
		},
		Customer: CustomerConfig{
			Personality:   "neutral",
			IssueCategory: "technical",
		},
		Logging: LoggingConfig{
			File: filepath.Join(stateDir, "logs", "agentdesk.log"),
		},
	}
}

// Load reads the YAML config at path, layered over defaults.
// A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
