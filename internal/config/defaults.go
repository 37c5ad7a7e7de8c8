package config

import "github.com/ziadkadry99/callscope/internal/graph"

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = ".callscope.yml"

// DefaultExcludes are glob patterns excluded from analysis by default.
var DefaultExcludes = []string{
	"**/test/**",
	"**/*_test.go",
	"**/generated/**",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:*"},
		},
		Database: DatabaseConfig{Path: ".callscope/callscope.db"},
		Analysis: AnalysisConfig{
			Include:     []string{"**"},
			Exclude:     DefaultExcludes,
			MaxFileSize: 1 << 20,
			ActionsOnly: true,
		},
		Views: ViewsConfig{
			CallTreeDepth:  graph.DefaultCallTreeDepth,
			HeatmapSize:    graph.HeatmapSize,
			ChordThreshold: graph.DefaultChordThreshold,
		},
		LogLevel: LogInfo,
		Neo4j: Neo4jConfig{
			URI:       "neo4j://localhost:7687",
			Username:  "neo4j",
			Database:  "neo4j",
			BatchSize: 500,
		},
	}
}
