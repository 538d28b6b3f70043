// ABOUTME: ProGuard configuration management with backend selection.
// ABOUTME: Handles athlete constants, model and server settings, and the storage factory.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/proguard/internal/analysis"
	"github.com/harperreed/proguard/internal/charm"
	"github.com/harperreed/proguard/internal/load"
	"github.com/harperreed/proguard/internal/risk"
	"github.com/harperreed/proguard/internal/storage"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendCharm  = "charm"
)

// Video codecs for the highlight server.
const (
	CodecFFmpeg = "ffmpeg"
	CodecGoCV   = "gocv"
)

// Config stores proguard configuration. Zero values fall back to defaults.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default) or "charm".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for data storage.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/proguard.
	DataDir string `json:"data_dir,omitempty"`

	Athlete AthleteConfig `json:"athlete,omitzero"`
	Model   ModelConfig   `json:"model,omitzero"`
	Server  ServerConfig  `json:"server,omitzero"`
}

// AthleteConfig holds the heart-rate constants used by TRIMP.
type AthleteConfig struct {
	RestingHR float64 `json:"resting_hr,omitempty"`
	MaxHR     float64 `json:"max_hr,omitempty"`
}

// ModelConfig selects and tunes the risk estimator.
type ModelConfig struct {
	Kind         string  `json:"kind,omitempty"`
	Trees        int     `json:"trees,omitempty"`
	MaxDepth     int     `json:"max_depth,omitempty"`
	Seed         *uint64 `json:"seed,omitempty"`
	TestFraction float64 `json:"test_fraction,omitempty"`
}

// ServerConfig configures the highlight HTTP server.
type ServerConfig struct {
	Addr           string   `json:"addr,omitempty"`
	AllowedOrigins []string `json:"allowed_origins,omitempty"`
	PoseURL        string   `json:"pose_url,omitempty"`
	Codec          string   `json:"codec,omitempty"`
	MarkerRadius   int      `json:"marker_radius,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// Params returns the load calculator parameters.
func (c *Config) Params() load.Params {
	p := load.DefaultParams()
	if c.Athlete.RestingHR > 0 {
		p.RestingHR = c.Athlete.RestingHR
	}
	if c.Athlete.MaxHR > 0 {
		p.MaxHR = c.Athlete.MaxHR
	}
	return p
}

// AnalysisOptions returns the pipeline options derived from the config.
func (c *Config) AnalysisOptions() analysis.Options {
	opts := analysis.DefaultOptions()
	opts.Params = c.Params()
	if c.Model.Kind != "" {
		opts.ModelKind = c.Model.Kind
	}
	if c.Model.Trees > 0 {
		opts.Forest.Trees = c.Model.Trees
	}
	opts.Forest.MaxDepth = c.Model.MaxDepth
	if c.Model.Seed != nil {
		opts.Forest.Seed = *c.Model.Seed
		opts.Split.Seed = *c.Model.Seed
	}
	if c.Model.TestFraction > 0 {
		opts.Split.TestFraction = c.Model.TestFraction
	}
	return opts
}

// GetAddr returns the server listen address, defaulting to ":8000".
func (c *Config) GetAddr() string {
	if c.Server.Addr == "" {
		return ":8000"
	}
	return c.Server.Addr
}

// GetAllowedOrigins returns the CORS origins, defaulting to the local dev frontend.
func (c *Config) GetAllowedOrigins() []string {
	if len(c.Server.AllowedOrigins) == 0 {
		return []string{"http://localhost:5173"}
	}
	return c.Server.AllowedOrigins
}

// GetCodec returns the configured video codec, defaulting to ffmpeg.
func (c *Config) GetCodec() string {
	if c.Server.Codec == "" {
		return CodecFFmpeg
	}
	return c.Server.Codec
}

// GetMarkerRadius returns the keypoint marker radius in pixels.
func (c *Config) GetMarkerRadius() int {
	if c.Server.MarkerRadius <= 0 {
		return 10
	}
	return c.Server.MarkerRadius
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.GetBackend() {
	case BackendSQLite, BackendCharm:
	default:
		return fmt.Errorf("unknown backend: %q", c.Backend)
	}

	if err := c.Params().Validate(); err != nil {
		return err
	}

	switch c.Model.Kind {
	case "", risk.KindForest, risk.KindLinear:
	default:
		return fmt.Errorf("unknown model kind: %q", c.Model.Kind)
	}
	if c.Model.Trees < 0 {
		return fmt.Errorf("model.trees must be >= 1, got %d", c.Model.Trees)
	}
	if c.Model.MaxDepth < 0 {
		return fmt.Errorf("model.max_depth must be >= 0, got %d", c.Model.MaxDepth)
	}
	if c.Model.TestFraction < 0 || c.Model.TestFraction >= 1 {
		return fmt.Errorf("model.test_fraction must be in (0,1), got %v", c.Model.TestFraction)
	}

	switch c.GetCodec() {
	case CodecFFmpeg, CodecGoCV:
	default:
		return fmt.Errorf("unknown codec: %q", c.Server.Codec)
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage() (storage.Repository, error) {
	backend := c.GetBackend()

	switch backend {
	case BackendSQLite:
		db, err := storage.Open(filepath.Join(c.GetDataDir(), storage.DBFileName))
		if err != nil {
			return nil, err
		}
		return db, nil
	case BackendCharm:
		client, err := charm.InitClient()
		if err != nil {
			return nil, fmt.Errorf("open charm store: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "proguard", "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
