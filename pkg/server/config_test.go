package server

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConf(t *testing.T) {
	conf := DefaultConf()
	if conf.Port != 4000 {
		t.Errorf("Port = %d", conf.Port)
	}
	if conf.MaxRetries != 3 || conf.AutosaveInterval != 300 {
		t.Errorf("unexpected defaults: %+v", conf)
	}
}

func TestLoadConfOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	yaml := `
mud_name: Bayou
port: 4100
world_file: worlds/bayou.yaml
web_enabled: true
web_cors_origins:
  - https://play.example.com
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	conf, err := LoadConf(path)
	if err != nil {
		t.Fatalf("LoadConf: %v", err)
	}
	if conf.MudName != "Bayou" || conf.Port != 4100 {
		t.Errorf("identity not loaded: %+v", conf)
	}
	if conf.WorldFile != "worlds/bayou.yaml" {
		t.Errorf("WorldFile = %q", conf.WorldFile)
	}
	if !conf.WebEnabled || len(conf.WebCORSOrigins) != 1 {
		t.Errorf("web settings not loaded: %+v", conf)
	}
	// Absent keys keep their defaults.
	if conf.IdleTimeout != 3600 || conf.StoreFile != "data/players.db" {
		t.Errorf("defaults lost: %+v", conf)
	}
}

func TestLoadConfRejectsBadPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	if err := os.WriteFile(path, []byte("port: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConf(path); err == nil {
		t.Error("expected error for negative port")
	}
}

func TestLoadConfMissingFile(t *testing.T) {
	if _, err := LoadConf(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
