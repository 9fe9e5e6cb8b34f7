package wordlist

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/dictionary"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// BuildFromQuery builds a dictionary from the single text column returned
// by query. Rows are inserted in the order the database returns them.
func BuildFromQuery(ctx context.Context, db Querier, query string) (*dictionary.Dictionary, Stats, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("querying word list: %w", err)
	}
	defer rows.Close()

	d := dictionary.New()
	var stats Stats
	for rows.Next() {
		stats.Lines++
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, stats, fmt.Errorf("scanning row %d: %w", stats.Lines, err)
		}
		if err := add(d, word, &stats); err != nil {
			return nil, stats, &LineError{Line: stats.Lines, Word: word, Err: err}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, stats, fmt.Errorf("iterating word rows: %w", err)
	}
	return d, stats, nil
}
