package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents runtime configuration for the gateway.
type Config struct {
	BasicConfig BasicConfig    `json:"basic_config"`
	Upstreams   UpstreamConfig `json:"upstreams"`
	Redis       RedisConfig    `json:"redis"`
}

type BasicConfig struct {
	ServerAddress string `json:"server_address"`
	// RequestTimeoutSeconds bounds every upstream call. Unset (0) applies
	// the default; a negative value removes the bound entirely.
	RequestTimeoutSeconds int   `json:"request_timeout_seconds"`
	MaxStagedBytes        int64 `json:"max_staged_bytes"`
	SessionTTLMinutes     int   `json:"session_ttl_minutes"`
	SessionSweepMinutes   int   `json:"session_sweep_minutes"`
}

// ServiceConfig describes one external HTTP boundary.
type ServiceConfig struct {
	BaseURL string `json:"base_url"`
	Path    string `json:"path"`
}

type UpstreamConfig struct {
	Upload ServiceConfig `json:"upload"`
	Chat   ServiceConfig `json:"chat"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// Default endpoint paths match the documented Aurix backend contract.
const (
	DefaultUploadPath = "/api/data/upload"
	DefaultChatPath   = "/api/v1/chat"
)

// Load reads configuration from the provided path (defaults to config.json).
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.json"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", absPath, err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Upstreams.Upload.BaseURL == "" {
		return nil, fmt.Errorf("upstreams.upload.base_url must be configured")
	}
	if cfg.Upstreams.Chat.BaseURL == "" {
		return nil, fmt.Errorf("upstreams.chat.base_url must be configured")
	}
	if cfg.Upstreams.Upload.Path == "" {
		cfg.Upstreams.Upload.Path = DefaultUploadPath
	}
	if cfg.Upstreams.Chat.Path == "" {
		cfg.Upstreams.Chat.Path = DefaultChatPath
	}
	return &cfg, nil
}
