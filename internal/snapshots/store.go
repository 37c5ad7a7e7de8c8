// Package snapshots stores analysed or uploaded call graphs and serves the
// derived views over HTTP.
package snapshots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/ziadkadry99/callscope/internal/db"
	"github.com/ziadkadry99/callscope/internal/graph"
)

// ErrNotFound is returned for unknown snapshot ids.
var ErrNotFound = errors.New("snapshot not found")

// Meta describes where a graph came from.
type Meta struct {
	Language  string
	Delimiter string
}

// Snapshot is a stored graph plus its metadata. Graph is nil in listings.
type Snapshot struct {
	ID        string       `json:"id"`
	Source    string       `json:"source"`
	Language  string       `json:"language,omitempty"`
	Delimiter string       `json:"delimiter"`
	NodeCount int          `json:"node_count"`
	LinkCount int          `json:"link_count"`
	CreatedAt time.Time    `json:"created_at"`
	Graph     *graph.Graph `json:"graph,omitempty"`
}

// Store provides CRUD operations for snapshots.
type Store struct {
	db *db.DB
}

// NewStore creates a new snapshot store.
func NewStore(d *db.DB) *Store {
	return &Store{db: d}
}

// Save persists g under a fresh id. An empty delimiter defaults to "/".
func (s *Store) Save(ctx context.Context, source string, g *graph.Graph, meta Meta) (*Snapshot, error) {
	if g == nil {
		return nil, fmt.Errorf("saving snapshot: nil graph")
	}
	if meta.Delimiter == "" {
		meta.Delimiter = graph.DefaultDelimiter
	}
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("marshaling graph: %w", err)
	}

	snap := &Snapshot{
		ID:        uuid.NewString(),
		Source:    source,
		Language:  meta.Language,
		Delimiter: meta.Delimiter,
		NodeCount: len(g.Nodes),
		LinkCount: len(g.Links),
		CreatedAt: time.Now().UTC(),
		Graph:     g,
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, source, language, delimiter, node_count, link_count, graph, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.Source, snap.Language, snap.Delimiter,
		snap.NodeCount, snap.LinkCount, string(data), snap.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}
	return snap, nil
}

// Get loads a snapshot with its graph.
func (s *Store) Get(ctx context.Context, id string) (*Snapshot, error) {
	snap := &Snapshot{}
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, language, delimiter, node_count, link_count, graph, created_at
		 FROM snapshots WHERE id = ?`, id,
	).Scan(&snap.ID, &snap.Source, &snap.Language, &snap.Delimiter,
		&snap.NodeCount, &snap.LinkCount, &data, &snap.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting snapshot: %w", err)
	}
	var g graph.Graph
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		return nil, fmt.Errorf("unmarshaling graph: %w", err)
	}
	snap.Graph = &g
	return snap, nil
}

// List returns every snapshot without its graph, newest first.
func (s *Store) List(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, language, delimiter, node_count, link_count, created_at
		 FROM snapshots ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	result := []Snapshot{}
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Source, &snap.Language, &snap.Delimiter,
			&snap.NodeCount, &snap.LinkCount, &snap.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		result = append(result, snap)
	}
	return result, rows.Err()
}

// Latest returns the most recent snapshot with its graph.
func (s *Store) Latest(ctx context.Context) (*Snapshot, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting latest snapshot: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete removes a snapshot.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
