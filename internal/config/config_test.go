package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"basic_config": {"server_address": ":8090"},
		"upstreams": {
			"upload": {"base_url": "http://upload.internal"},
			"chat": {"base_url": "http://chat.internal"}
		}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Upstreams.Upload.Path != DefaultUploadPath {
		t.Fatalf("upload path = %q, want %q", cfg.Upstreams.Upload.Path, DefaultUploadPath)
	}
	if cfg.Upstreams.Chat.Path != DefaultChatPath {
		t.Fatalf("chat path = %q, want %q", cfg.Upstreams.Chat.Path, DefaultChatPath)
	}
	if cfg.BasicConfig.ServerAddress != ":8090" {
		t.Fatalf("server address = %q", cfg.BasicConfig.ServerAddress)
	}
}

func TestLoadRejectsMissingUpstreams(t *testing.T) {
	cases := map[string]string{
		"no upload": `{"upstreams": {"chat": {"base_url": "http://chat.internal"}}}`,
		"no chat":   `{"upstreams": {"upload": {"base_url": "http://upload.internal"}}}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, content)); err == nil {
				t.Fatalf("expected an error for %s", name)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}

func TestLoadCustomPaths(t *testing.T) {
	path := writeConfig(t, `{
		"basic_config": {"request_timeout_seconds": 5},
		"upstreams": {
			"upload": {"base_url": "http://upload.internal", "path": "/v2/ingest"},
			"chat": {"base_url": "http://chat.internal", "path": "/v2/chat"}
		}
	}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Upstreams.Upload.Path != "/v2/ingest" || cfg.Upstreams.Chat.Path != "/v2/chat" {
		t.Fatalf("custom paths not kept: %#v", cfg.Upstreams)
	}
	if cfg.BasicConfig.RequestTimeoutSeconds != 5 {
		t.Fatalf("timeout = %d, want 5", cfg.BasicConfig.RequestTimeoutSeconds)
	}
}
