package wishlist

import (
	"context"
	"errors"

	"storefront/internal/db"

	"github.com/jackc/pgx/v5"
)

const schema = `
CREATE TABLE IF NOT EXISTS wishlist_snapshots (
    namespace  TEXT PRIMARY KEY,
    items      JSONB NOT NULL DEFAULT '[]'::jsonb,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresPersister keeps one JSONB row per wishlist key.
type PostgresPersister struct {
	db db.Querier
}

func NewPostgresPersister(q db.Querier) *PostgresPersister {
	return &PostgresPersister{db: q}
}

// EnsureSchema creates the snapshot table when missing.
func (p *PostgresPersister) EnsureSchema(ctx context.Context) error {
	_, err := p.db.Exec(ctx, schema)
	return err
}

func (p *PostgresPersister) Load(ctx context.Context, key string) ([]Entry, error) {
	var raw []byte
	err := p.db.QueryRow(ctx, `
SELECT items
FROM wishlist_snapshots
WHERE namespace = $1
`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeEntries(raw)
}

func (p *PostgresPersister) Save(ctx context.Context, key string, entries []Entry) error {
	raw, err := encodeEntries(entries)
	if err != nil {
		return err
	}
	_, err = p.db.Exec(ctx, `
INSERT INTO wishlist_snapshots (namespace, items, updated_at)
VALUES ($1, $2::jsonb, now())
ON CONFLICT (namespace)
DO UPDATE SET items = EXCLUDED.items,
              updated_at = now()
`, key, string(raw))
	return err
}
