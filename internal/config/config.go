package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/callscope/internal/graph"
)

// EnvPrefix marks environment overrides. A double underscore separates
// sections: CALLSCOPE_SERVER__PORT sets server.port.
const EnvPrefix = "CALLSCOPE_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (CALLSCOPE_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validLogLevels = map[LogLevel]slog.Level{
	LogDebug: slog.LevelDebug,
	LogInfo:  slog.LevelInfo,
	LogWarn:  slog.LevelWarn,
	LogError: slog.LevelError,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Analysis.MaxFileSize < 0 {
		return fmt.Errorf("analysis.max_file_size must be non-negative")
	}
	if err := graph.CheckCallTreeDepth(c.Views.CallTreeDepth); err != nil {
		return fmt.Errorf("views.call_tree_depth: %w", err)
	}
	if c.Views.HeatmapSize <= 0 {
		return fmt.Errorf("views.heatmap_size must be positive")
	}
	if !graph.ValidThreshold(c.Views.ChordThreshold) {
		return fmt.Errorf("invalid views.chord_threshold %d: must be one of 25, 50, 100", c.Views.ChordThreshold)
	}
	if _, ok := validLogLevels[c.LogLevel]; !ok {
		return fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", c.LogLevel)
	}
	if c.Neo4j.BatchSize <= 0 {
		return fmt.Errorf("neo4j.batch_size must be positive")
	}
	return nil
}

// SlogLevel maps the configured level onto slog, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	if l, ok := validLogLevels[c.LogLevel]; ok {
		return l
	}
	return slog.LevelInfo
}

// Neo4jPassword prefers NEO4J_PASSWORD from the environment over the file.
func (c *Config) Neo4jPassword() string {
	if p := os.Getenv("NEO4J_PASSWORD"); p != "" {
		return p
	}
	return c.Neo4j.Password
}
