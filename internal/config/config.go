package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Environment variables that override file values.
const (
	EnvWarrenBaseURL = "WARREN_BASE_URL"
	EnvWarrenAPIKey  = "WARREN_API_KEY"
	EnvWarrenAgentID = "WARREN_AGENT_ID"
	EnvTelegramToken = "TELEGRAM_BOT_TOKEN"
)

type Config struct {
	DataDir       string `json:"data_dir"`
	LogLevel      string `json:"log_level"`
	MaxConcurrent int    `json:"max_concurrent"`
	Warren        struct {
		BaseURL        string   `json:"base_url"`
		APIKey         string   `json:"api_key"`
		AgentID        string   `json:"agent_id"`
		TimeoutSeconds int      `json:"timeout_seconds"`
		MaxRetries     int      `json:"max_retries"`
		Kinds          []string `json:"kinds,omitempty"`
	} `json:"warren"`
	Telegram struct {
		Token string `json:"token"`
	} `json:"telegram"`
	HTTP struct {
		Enabled bool   `json:"enabled"`
		Listen  string `json:"listen"`
	} `json:"http"`
}

// Load reads the config file at path, writing defaults first if it does not
// exist. Precedence is defaults, then file, then environment.
func Load(path string) (*Config, error) {
	cfg := &Config{
		DataDir:       filepath.Join(os.Getenv("HOME"), ".hutch"),
		LogLevel:      "info",
		MaxConcurrent: 2,
	}
	cfg.Warren.BaseURL = "http://localhost:8283"
	cfg.Warren.TimeoutSeconds = 60
	cfg.Warren.MaxRetries = 3
	cfg.HTTP.Listen = "127.0.0.1:8787"

	// Load from file if exists, otherwise write defaults
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if os.IsNotExist(err) {
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	}

	// Override from env (highest precedence)
	if baseURL := os.Getenv(EnvWarrenBaseURL); baseURL != "" {
		cfg.Warren.BaseURL = baseURL
	}
	if apiKey := os.Getenv(EnvWarrenAPIKey); apiKey != "" {
		cfg.Warren.APIKey = apiKey
	}
	if agentID := os.Getenv(EnvWarrenAgentID); agentID != "" {
		cfg.Warren.AgentID = agentID
	}
	if tgToken := os.Getenv(EnvTelegramToken); tgToken != "" {
		cfg.Telegram.Token = tgToken
	}

	return cfg, nil
}

// Save writes the config to path atomically (temp file + rename).
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}
