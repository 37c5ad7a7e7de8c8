package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ziadkadry99/callscope/internal/analyzer"
	"github.com/ziadkadry99/callscope/internal/config"
	"github.com/ziadkadry99/callscope/internal/db"
	"github.com/ziadkadry99/callscope/internal/graph"
	"github.com/ziadkadry99/callscope/internal/ingest"
	"github.com/ziadkadry99/callscope/internal/snapshots"
)

// loadConfig loads and validates the config and installs the logger it
// asks for.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `callscope init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	setupLogging(cfg)
	return cfg, nil
}

// setupLogging sends slog output to stderr; stdout stays free for command
// output and the MCP protocol.
func setupLogging(cfg *config.Config) {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// analysisOptions maps the analysis section onto analyzer options. extra
// names a blacklist file given on the command line; it is merged with the
// configured one.
func analysisOptions(cfg *config.Config, extra string) (analyzer.Options, error) {
	opts := analyzer.Options{
		Include:         cfg.Analysis.Include,
		Exclude:         cfg.Analysis.Exclude,
		MaxFileSize:     cfg.Analysis.MaxFileSize,
		ActionsOnly:     cfg.Analysis.ActionsOnly,
		IncludeExternal: cfg.Analysis.IncludeExternal,
	}
	var names []string
	for _, path := range []string{cfg.Analysis.BlacklistFile, extra} {
		if path == "" {
			continue
		}
		list, err := ingest.LoadBlacklistFile(path)
		if err != nil {
			return opts, err
		}
		names = append(names, list...)
	}
	opts.Blacklist = analyzer.NewBlacklist(names...)
	return opts, nil
}

func viewLimits(cfg *config.Config) snapshots.Limits {
	return snapshots.Limits{
		CallTreeDepth:  cfg.Views.CallTreeDepth,
		HeatmapSize:    cfg.Views.HeatmapSize,
		ChordThreshold: cfg.Views.ChordThreshold,
	}
}

func openDatabase(cfg *config.Config) (*db.DB, error) {
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return database, nil
}

// loadGraph reads a graph document from path.
func loadGraph(path string) (*graph.Graph, error) {
	g, err := ingest.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading graph: %w", err)
	}
	return g, nil
}
