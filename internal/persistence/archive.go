// Package persistence archives discovery runs to Postgres so candidate lists
// can be compared across time. The archive is optional: without a DSN the
// service simply never writes.
package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/chainmagnet/chainmagnet/internal/discovery"
)

const schema = `
CREATE TABLE IF NOT EXISTS discovery_tokens (
	id            BIGSERIAL PRIMARY KEY,
	run_at        TIMESTAMPTZ NOT NULL,
	rank          INT NOT NULL,
	token_id      TEXT NOT NULL,
	symbol        TEXT NOT NULL,
	name          TEXT NOT NULL,
	market_cap    DOUBLE PRECISION NOT NULL,
	volume_24h    DOUBLE PRECISION NOT NULL,
	change_7d     DOUBLE PRECISION NOT NULL,
	origin_chains TEXT NOT NULL,
	status        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS discovery_tokens_run_at_idx ON discovery_tokens (run_at);
`

const insertToken = `
INSERT INTO discovery_tokens
	(run_at, rank, token_id, symbol, name, market_cap, volume_24h, change_7d, origin_chains, status)
VALUES
	(:run_at, :rank, :token_id, :symbol, :name, :market_cap, :volume_24h, :change_7d, :origin_chains, :status)
`

type tokenRow struct {
	RunAt        time.Time `db:"run_at"`
	Rank         int       `db:"rank"`
	TokenID      string    `db:"token_id"`
	Symbol       string    `db:"symbol"`
	Name         string    `db:"name"`
	MarketCap    float64   `db:"market_cap"`
	Volume24h    float64   `db:"volume_24h"`
	Change7d     float64   `db:"change_7d"`
	OriginChains string    `db:"origin_chains"`
	Status       string    `db:"status"`
}

// Archive writes discovery runs to Postgres.
type Archive struct {
	db *sqlx.DB
}

// Open connects to Postgres and ensures the schema exists.
func Open(dsn string) (*Archive, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	a := NewArchive(db)
	if err := a.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

// NewArchive wraps an existing connection, mainly for tests.
func NewArchive(db *sqlx.DB) *Archive {
	return &Archive{db: db}
}

// EnsureSchema creates the archive table when missing.
func (a *Archive) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveDiscoveryRun inserts all tokens of one run in a single transaction.
func (a *Archive) SaveDiscoveryRun(ctx context.Context, runAt time.Time, tokens []discovery.Token) error {
	if len(tokens) == 0 {
		return nil
	}
	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, token := range tokens {
		row := tokenRow{
			RunAt:        runAt,
			Rank:         token.Rank,
			TokenID:      token.ID,
			Symbol:       token.Symbol,
			Name:         token.Name,
			MarketCap:    token.MarketCap,
			Volume24h:    token.Volume24h,
			Change7d:     token.Change7d,
			OriginChains: joinChains(token.OriginChains),
			Status:       string(token.PresenceStatus),
		}
		if _, err := tx.NamedExecContext(ctx, insertToken, row); err != nil {
			return fmt.Errorf("insert discovery token %s: %w", token.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (a *Archive) Close() error {
	return a.db.Close()
}

func joinChains(chains []string) string {
	return strings.Join(chains, ",")
}
