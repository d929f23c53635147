package planstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/postgres"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/planstore"
)

// Store is a Postgres implementation of planstore.Store.
// Plans live in the plans table; their items in plan_items, one row per stub.
type Store struct {
	pool *pgxpool.Pool
}

var _ planstore.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var itemColumns = []string{
	"plan_id",
	"position",
	"item_type",
	"entity_id",
	"display_name",
	"city_id_for_grouping",
	"item_date",
	"item_time",
	"order_index",
	"pinned",
}

func (s *Store) Insert(ctx context.Context, owner domain.OwnerID, rec planstore.Record) (domain.PlanID, error) {
	if s.pool == nil {
		return "", errors.New("nil postgres pool")
	}
	planUUID, err := uuid.Parse(string(rec.ID))
	if err != nil {
		return "", fmt.Errorf("invalid plan id: %w", err)
	}

	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO plans (id, owner_id, title, start_date, end_date, created_at, updated_at, group_by)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`,
			planUUID,
			string(owner),
			rec.Title,
			datePtr(rec.StartDate),
			datePtr(rec.EndDate),
			rec.CreatedAt.UTC(),
			rec.UpdatedAt.UTC(),
			string(rec.GroupBy.OrDefault()),
		)
		if err != nil {
			if postgres.IsUniqueViolation(err) {
				return planstore.ErrAlreadyExists
			}
			return err
		}
		return insertItems(ctx, tx, planUUID, rec.Items)
	})
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (s *Store) Update(ctx context.Context, id domain.PlanID, owner domain.OwnerID, rec planstore.Record) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	planUUID, err := uuid.Parse(string(id))
	if err != nil {
		return planstore.ErrNotFound
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE plans
			SET title = $3,
			    start_date = $4,
			    end_date = $5,
			    updated_at = $6,
			    group_by = $7
			WHERE id = $1 AND owner_id = $2
		`,
			planUUID,
			string(owner),
			rec.Title,
			datePtr(rec.StartDate),
			datePtr(rec.EndDate),
			rec.UpdatedAt.UTC(),
			string(rec.GroupBy.OrDefault()),
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return planstore.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM plan_items WHERE plan_id = $1`, planUUID); err != nil {
			return err
		}
		return insertItems(ctx, tx, planUUID, rec.Items)
	})
}

func (s *Store) List(ctx context.Context, owner domain.OwnerID) ([]planstore.Summary, error) {
	if s.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.title, p.start_date, p.end_date, p.created_at, p.updated_at,
		       (SELECT count(*) FROM plan_items i WHERE i.plan_id = p.id)
		FROM plans p
		WHERE p.owner_id = $1
		ORDER BY p.created_at DESC, p.id ASC
	`, string(owner))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]planstore.Summary, 0)
	for rows.Next() {
		var (
			id        uuid.UUID
			sum       planstore.Summary
			startDate pgtype.Date
			endDate   pgtype.Date
		)
		if err := rows.Scan(&id, &sum.Title, &startDate, &endDate, &sum.CreatedAt, &sum.UpdatedAt, &sum.ItemCount); err != nil {
			return nil, err
		}
		sum.ID = domain.PlanID(id.String())
		sum.StartDate = dateToTimePtr(startDate)
		sum.EndDate = dateToTimePtr(endDate)
		sum.CreatedAt = sum.CreatedAt.UTC()
		sum.UpdatedAt = sum.UpdatedAt.UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id domain.PlanID, owner domain.OwnerID) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	planUUID, err := uuid.Parse(string(id))
	if err != nil {
		return planstore.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM plans WHERE id = $1 AND owner_id = $2`, planUUID, string(owner))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return planstore.ErrNotFound
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id domain.PlanID) (planstore.Record, error) {
	if s.pool == nil {
		return planstore.Record{}, errors.New("nil postgres pool")
	}
	planUUID, err := uuid.Parse(string(id))
	if err != nil {
		return planstore.Record{}, planstore.ErrNotFound
	}

	var (
		rec       planstore.Record
		owner     string
		groupBy   string
		startDate pgtype.Date
		endDate   pgtype.Date
	)
	err = s.pool.QueryRow(ctx, `
		SELECT owner_id, title, start_date, end_date, created_at, updated_at, group_by
		FROM plans
		WHERE id = $1
	`, planUUID).Scan(&owner, &rec.Title, &startDate, &endDate, &rec.CreatedAt, &rec.UpdatedAt, &groupBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return planstore.Record{}, planstore.ErrNotFound
		}
		return planstore.Record{}, err
	}
	rec.ID = id
	rec.OwnerID = domain.OwnerID(owner)
	rec.GroupBy = domain.GroupBy(groupBy)
	rec.StartDate = dateToTimePtr(startDate)
	rec.EndDate = dateToTimePtr(endDate)
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()

	rows, err := s.pool.Query(ctx, `
		SELECT item_type, entity_id, display_name, city_id_for_grouping, item_date, item_time, order_index, pinned
		FROM plan_items
		WHERE plan_id = $1
		ORDER BY position ASC
	`, planUUID)
	if err != nil {
		return planstore.Record{}, err
	}
	defer rows.Close()

	rec.Items = make([]planstore.StubItem, 0)
	for rows.Next() {
		var (
			it       planstore.StubItem
			itemType string
			entityID string
			cityKey  string
			date     pgtype.Date
		)
		if err := rows.Scan(&itemType, &entityID, &it.Data.Name, &cityKey, &date, &it.Time, &it.OrderIndex, &it.Pinned); err != nil {
			return planstore.Record{}, err
		}
		it.Type = domain.EntityKind(itemType)
		it.Data.ID = domain.EntityID(entityID)
		it.CityIDForGrouping = domain.EntityID(cityKey)
		it.Date = dateToTimePtr(date)
		rec.Items = append(rec.Items, it)
	}
	if err := rows.Err(); err != nil {
		return planstore.Record{}, err
	}
	return rec, nil
}

func insertItems(ctx context.Context, tx pgx.Tx, planUUID uuid.UUID, items []planstore.StubItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(items))
	for i, it := range items {
		rows = append(rows, []any{
			planUUID,
			i,
			string(it.Type),
			string(it.Data.ID),
			it.Data.Name,
			string(it.CityIDForGrouping),
			datePtr(it.Date),
			it.Time,
			it.OrderIndex,
			it.Pinned,
		})
	}
	_, err := tx.CopyFrom(ctx, pgx.Identifier{"plan_items"}, itemColumns, pgx.CopyFromRows(rows))
	return err
}

func datePtr(t *time.Time) pgtype.Date {
	var d pgtype.Date
	if t == nil {
		d.Valid = false
		return d
	}
	tt := t.UTC()
	d.Time = time.Date(tt.Year(), tt.Month(), tt.Day(), 0, 0, 0, 0, time.UTC)
	d.Valid = true
	return d
}

func dateToTimePtr(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
	return &t
}
