package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/clock"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/idempotency"
)

var errNilPool = errors.New("nil postgres pool")

// Store keeps idempotency records in the idempotency_keys table.
// Rows older than the TTL read as absent until Purge removes them.
type Store struct {
	pool  *pgxpool.Pool
	ttl   time.Duration
	clock clock.Clock
}

var _ idempotency.Store = (*Store)(nil)

// NewStore returns a store honoring idempotency.DefaultTTL.
func NewStore(pool *pgxpool.Pool) *Store {
	return NewStoreWithTTL(pool, idempotency.DefaultTTL, nil)
}

// NewStoreWithTTL returns a store whose records expire after ttl as measured
// by clk. A ttl <= 0 keeps records forever; a nil clk uses the system clock.
func NewStoreWithTTL(pool *pgxpool.Pool, ttl time.Duration, clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.System
	}
	return &Store{pool: pool, ttl: ttl, clock: clk}
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	if s.pool == nil {
		return idempotency.Record{}, false, errNilPool
	}
	var rec idempotency.Record
	err := s.pool.QueryRow(ctx, `
		SELECT status_code, content_type, body, created_at
		FROM idempotency_keys
		WHERE idempotency_key = $1
		  AND owner_id = $2
		  AND method = $3
		  AND route = $4
		  AND body_hash = $5
	`, string(fp.Key), string(fp.Owner), fp.Method, fp.Route, fp.BodyHash,
	).Scan(&rec.StatusCode, &rec.ContentType, &rec.Body, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return idempotency.Record{}, false, nil
	}
	if err != nil {
		return idempotency.Record{}, false, fmt.Errorf("get idempotency record: %w", err)
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	if rec.Expired(s.clock.Now(), s.ttl) {
		return idempotency.Record{}, false, nil
	}
	return rec, true, nil
}

// Put upserts rec. A later Put for the same fingerprint replaces the earlier one.
func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	if s.pool == nil {
		return errNilPool
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.clock.Now()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO idempotency_keys (
			idempotency_key, owner_id, method, route, body_hash,
			status_code, content_type, body, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (idempotency_key, owner_id, method, route, body_hash)
		DO UPDATE SET
			status_code = EXCLUDED.status_code,
			content_type = EXCLUDED.content_type,
			body = EXCLUDED.body,
			created_at = EXCLUDED.created_at
	`,
		string(fp.Key), string(fp.Owner), fp.Method, fp.Route, fp.BodyHash,
		rec.StatusCode, rec.ContentType, rec.Body, rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("put idempotency record: %w", err)
	}
	return nil
}

// Purge deletes expired rows and reports how many were removed.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	if s.pool == nil {
		return 0, errNilPool
	}
	if s.ttl <= 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE created_at < $1`, s.clock.Now().Add(-s.ttl).UTC())
	if err != nil {
		return 0, fmt.Errorf("purge idempotency records: %w", err)
	}
	return tag.RowsAffected(), nil
}
