package subscribers

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shanehull/oslonotify/internal/types"
)

// listQuery returns one row per subscriber with its tickers aggregated.
const listQuery = `
	SELECT e.email, e.user_id::text,
	       COALESCE(array_agg(t.ticker_name) FILTER (WHERE t.ticker_name IS NOT NULL), '{}')
	FROM emails e
	LEFT JOIN tickers t ON t.user_id = e.user_id
	GROUP BY e.email, e.user_id
	ORDER BY e.user_id
`

// Postgres lists subscribers from the emails/tickers tables.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to dsn and checks the connection.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: parse database url: %w", types.ErrConfig, err)
	}
	poolCfg.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: create pool: %w", types.ErrDirectory, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping database: %w", types.ErrDirectory, err)
	}

	return &Postgres{pool: pool}, nil
}

func (p *Postgres) List(ctx context.Context) ([]types.Subscriber, error) {
	rows, err := p.pool.Query(ctx, listQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: query subscribers: %w", types.ErrDirectory, err)
	}
	defer rows.Close()

	var entries []rawSubscriber
	for rows.Next() {
		var e rawSubscriber
		if err := rows.Scan(&e.Address, &e.ID, &e.Tickers); err != nil {
			return nil, fmt.Errorf("%w: scan subscriber: %w", types.ErrDirectory, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate subscribers: %w", types.ErrDirectory, err)
	}

	return buildSubscribers(rowsToEntries(entries))
}

// rowsToEntries gives every (user_id, email) row its own subscriber id. A
// user may register several addresses, each tracked separately. Rows without
// an email are dropped.
func rowsToEntries(rows []rawSubscriber) []rawSubscriber {
	entries := make([]rawSubscriber, 0, len(rows))
	for _, r := range rows {
		address := strings.TrimSpace(r.Address)
		if address == "" {
			continue
		}
		r.ID = strings.TrimSpace(r.ID) + ":" + address
		entries = append(entries, r)
	}
	return entries
}

func (p *Postgres) Close() {
	p.pool.Close()
}
