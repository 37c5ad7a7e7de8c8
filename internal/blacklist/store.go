// Package blacklist persists the method names excluded from analysis.
package blacklist

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ziadkadry99/callscope/internal/db"
)

// Store keeps the current blacklist. The list is replaced as a whole.
type Store struct {
	db *db.DB
}

// NewStore creates a new blacklist store.
func NewStore(d *db.DB) *Store {
	return &Store{db: d}
}

// Replace swaps the stored list for names. Blank and duplicate names are
// dropped; an empty list clears the blacklist.
func (s *Store) Replace(ctx context.Context, names []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM blacklist`); err != nil {
		return fmt.Errorf("clearing blacklist: %w", err)
	}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO blacklist (method_name) VALUES (?)`, name); err != nil {
			return fmt.Errorf("inserting %q: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing blacklist: %w", err)
	}
	return nil
}

// List returns the blacklisted names in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT method_name FROM blacklist`)
	if err != nil {
		return nil, fmt.Errorf("listing blacklist: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning blacklist: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
