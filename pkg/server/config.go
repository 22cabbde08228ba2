package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Conf holds server-level configuration parameters, loaded from YAML.
type Conf struct {
	// --- Identity ---
	MudName string `yaml:"mud_name"`
	Port    int    `yaml:"port"`

	// --- Connection handling ---
	IdleTimeout int `yaml:"idle_timeout"` // Seconds before an idle connection is dropped, 0 = never
	MaxRetries  int `yaml:"max_retries"`  // Failed login attempts before disconnect

	// --- Data files ---
	WorldFile   string `yaml:"world_file"`   // Path to the world YAML file
	StoreFile   string `yaml:"store_file"`   // Path to the bbolt player database
	TextDir     string `yaml:"text_dir"`     // Directory holding connect/motd/quit text files
	JournalFile string `yaml:"journal_file"` // Path to the SQLite command journal, empty = disabled

	// --- Persistence ---
	AutosaveInterval int `yaml:"autosave_interval"` // Seconds between autosaves, 0 = disabled

	// --- Archive/Backup ---
	ArchiveDir      string `yaml:"archive_dir"`      // Archive output directory
	ArchiveInterval int    `yaml:"archive_interval"` // Auto-archive interval in minutes, 0 = disabled
	ArchiveRetain   int    `yaml:"archive_retain"`   // Keep last N archives, 0 = unlimited

	// --- Web/WebSocket ---
	WebEnabled     bool     `yaml:"web_enabled"`      // Enable HTTP/WebSocket server
	WebPort        int      `yaml:"web_port"`         // HTTP port
	WebHost        string   `yaml:"web_host"`         // Bind address (empty = all interfaces)
	WebCORSOrigins []string `yaml:"web_cors_origins"` // Allowed WebSocket origins, empty = any
	JWTSecret      string   `yaml:"jwt_secret"`       // JWT signing secret (auto-generated if empty)
	JWTExpiry      int      `yaml:"jwt_expiry"`       // JWT expiry in seconds
}

// DefaultConf returns a Conf with usable defaults for a local server.
func DefaultConf() *Conf {
	return &Conf{
		MudName:          "SwampMUD",
		Port:             4000,
		IdleTimeout:      3600,
		MaxRetries:       3,
		WorldFile:        "data/world.yaml",
		StoreFile:        "data/players.db",
		TextDir:          "text",
		AutosaveInterval: 300,
		ArchiveDir:       "backups",
		ArchiveRetain:    10,
		WebEnabled:       false,
		WebPort:          8080,
		JWTExpiry:        86400,
	}
}

// LoadConf reads a YAML config file over the defaults, so absent keys
// keep their default values.
func LoadConf(path string) (*Conf, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	conf := DefaultConf()
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if conf.Port <= 0 || conf.Port > 65535 {
		return nil, fmt.Errorf("config: invalid port %d", conf.Port)
	}
	return conf, nil
}
