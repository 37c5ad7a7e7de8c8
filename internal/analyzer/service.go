package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ziadkadry99/callscope/internal/graph"
	"github.com/ziadkadry99/callscope/internal/snapshots"
)

// NameLister supplies the stored blacklist.
type NameLister interface {
	List(ctx context.Context) ([]string, error)
}

// GraphSaver persists an analysed graph.
type GraphSaver interface {
	Save(ctx context.Context, source string, g *graph.Graph, meta snapshots.Meta) (*snapshots.Snapshot, error)
}

// Service runs analyses for the API and the MCP server. Each run merges
// the stored blacklist into the base options and, when Snapshots is set,
// saves the resulting graph.
type Service struct {
	Blacklist NameLister
	Snapshots GraphSaver
	Options   Options
}

// Run analyses path and returns the result with its snapshot, which is nil
// when no saver is configured.
func (s *Service) Run(ctx context.Context, path string) (*Result, *snapshots.Snapshot, error) {
	opts := s.Options
	names := opts.Blacklist.Names()
	if s.Blacklist != nil {
		stored, err := s.Blacklist.List(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("loading blacklist: %w", err)
		}
		names = append(names, stored...)
	}
	opts.Blacklist = NewBlacklist(names...)

	start := time.Now()
	res, err := Analyze(ctx, path, opts)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("analysis complete",
		"path", path,
		"language", res.Language,
		"functions", len(res.Nodes),
		"calls", len(res.Links),
		"blacklisted", len(opts.Blacklist),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if s.Snapshots == nil {
		return res, nil, nil
	}
	snap, err := s.Snapshots.Save(ctx, path, res.Graph(), snapshots.Meta{
		Language:  res.Language,
		Delimiter: res.Delimiter,
	})
	if err != nil {
		return nil, nil, err
	}
	return res, snap, nil
}
