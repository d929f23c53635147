package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/catalog"
)

// Catalog is a Postgres implementation of catalog.Catalog backed by the
// catalog_* tables. Names are stored as jsonb objects keyed by language.
type Catalog struct {
	pool *pgxpool.Pool
}

var _ catalog.Catalog = (*Catalog)(nil)

func New(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

const (
	citySelect = `SELECT id, name, country, latitude, longitude FROM catalog_cities`
	cityOrder  = ` ORDER BY name->>'en', id`

	placeSelect = `SELECT id, name, city_id, place_type, rating, latitude, longitude FROM catalog_places`
	placeOrder  = ` ORDER BY rating DESC, name->>'en', id`

	routeSelect = `SELECT id, name, city_id, place_ids, distance_km FROM catalog_routes`
	routeOrder  = ` ORDER BY name->>'en', id`

	eventSelect = `SELECT id, name, city_id, event_type, culture, has_online_stream, has_translation, event_date, event_time FROM catalog_events`
	eventOrder  = ` ORDER BY event_date NULLS LAST, name->>'en', id`
)

func (c *Catalog) ListCities(ctx context.Context) ([]domain.City, error) {
	if c.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	out, err := queryAll(ctx, c.pool, citySelect+cityOrder, nil, scanCity)
	if err != nil {
		return nil, unavailable(err)
	}
	return out, nil
}

func (c *Catalog) ListPlacesByCity(ctx context.Context, cityID domain.EntityID) ([]domain.Place, error) {
	if c.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	out, err := queryAll(ctx, c.pool, placeSelect+` WHERE city_id = $1`+placeOrder, []any{string(cityID)}, scanPlace)
	if err != nil {
		return nil, unavailable(err)
	}
	return out, nil
}

func (c *Catalog) ListEventsAll(ctx context.Context) ([]domain.Event, error) {
	if c.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	out, err := queryAll(ctx, c.pool, eventSelect+eventOrder, nil, scanEvent)
	if err != nil {
		return nil, unavailable(err)
	}
	return out, nil
}

func (c *Catalog) ListRoutesAll(ctx context.Context) ([]domain.Route, error) {
	if c.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	out, err := queryAll(ctx, c.pool, routeSelect+routeOrder, nil, scanRoute)
	if err != nil {
		return nil, unavailable(err)
	}
	return out, nil
}

func (c *Catalog) GetEntitiesByIDs(ctx context.Context, kind domain.EntityKind, ids []domain.EntityID) ([]domain.Entity, error) {
	if c.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	if len(ids) == 0 {
		return []domain.Entity{}, nil
	}
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, string(id))
	}
	args := []any{raw}
	const byID = ` WHERE id = ANY($1)`

	var (
		out []domain.Entity
		err error
	)
	switch kind {
	case domain.KindCity:
		out, err = queryEntities(ctx, c.pool, citySelect+byID+cityOrder, args, scanCity)
	case domain.KindPlace:
		out, err = queryEntities(ctx, c.pool, placeSelect+byID+placeOrder, args, scanPlace)
	case domain.KindRoute:
		out, err = queryEntities(ctx, c.pool, routeSelect+byID+routeOrder, args, scanRoute)
	case domain.KindEvent:
		out, err = queryEntities(ctx, c.pool, eventSelect+byID+eventOrder, args, scanEvent)
	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return out, nil
}

// Search matches names in Go with domain.LocalizedText.Matches so case folding
// does not depend on the database collation.
func (c *Catalog) Search(ctx context.Context, query string, limit int) ([]domain.Entity, error) {
	if c.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	out := make([]domain.Entity, 0)
	keep := func(e domain.Entity) bool {
		if limit > 0 && len(out) >= limit {
			return false
		}
		if e.LocalizedName().Matches(query) {
			out = append(out, e)
		}
		return true
	}

	cities, err := c.ListCities(ctx)
	if err != nil {
		return nil, err
	}
	for i := range cities {
		if !keep(&cities[i]) {
			return out, nil
		}
	}
	places, err := queryAll(ctx, c.pool, placeSelect+placeOrder, nil, scanPlace)
	if err != nil {
		return nil, unavailable(err)
	}
	for i := range places {
		if !keep(&places[i]) {
			return out, nil
		}
	}
	routes, err := c.ListRoutesAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range routes {
		if !keep(&routes[i]) {
			return out, nil
		}
	}
	events, err := c.ListEventsAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range events {
		if !keep(&events[i]) {
			return out, nil
		}
	}
	return out, nil
}

// Replace swaps the whole catalog content in one transaction.
func (c *Catalog) Replace(ctx context.Context, cities []domain.City, places []domain.Place, routes []domain.Route, events []domain.Event) error {
	if c.pool == nil {
		return errors.New("nil postgres pool")
	}
	return pgx.BeginFunc(ctx, c.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `TRUNCATE catalog_cities, catalog_places, catalog_routes, catalog_events`); err != nil {
			return err
		}

		b := &pgx.Batch{}
		for _, ct := range cities {
			b.Queue(`INSERT INTO catalog_cities (id, name, country, latitude, longitude) VALUES ($1,$2,$3,$4,$5)`,
				string(ct.ID), nameJSON(ct.Name), ct.Country, ct.Latitude, ct.Longitude)
		}
		for _, p := range places {
			b.Queue(`INSERT INTO catalog_places (id, name, city_id, place_type, rating, latitude, longitude) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				string(p.ID), nameJSON(p.Name), string(p.CityID), string(p.Type), p.Rating, p.Latitude, p.Longitude)
		}
		for _, r := range routes {
			ids := make([]string, 0, len(r.PlaceIDs))
			for _, id := range r.PlaceIDs {
				ids = append(ids, string(id))
			}
			b.Queue(`INSERT INTO catalog_routes (id, name, city_id, place_ids, distance_km) VALUES ($1,$2,$3,$4,$5)`,
				string(r.ID), nameJSON(r.Name), string(r.CityID), ids, r.DistanceKm)
		}
		for _, e := range events {
			b.Queue(`INSERT INTO catalog_events (id, name, city_id, event_type, culture, has_online_stream, has_translation, event_date, event_time)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
				string(e.ID), nameJSON(e.Name), string(e.CityID), string(e.EventType), e.Culture,
				e.HasOnlineStream, e.HasTranslation, datePtr(e.Date), e.Time)
		}
		if b.Len() == 0 {
			return nil
		}
		return tx.SendBatch(ctx, b).Close()
	})
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", catalog.ErrUnavailable, err)
}

func nameJSON(t domain.LocalizedText) map[string]string {
	if t == nil {
		return map[string]string{}
	}
	return t
}

func queryAll[T any](ctx context.Context, pool *pgxpool.Pool, sql string, args []any, scan func(pgx.Row) (T, error)) ([]T, error) {
	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// queryEntities is queryAll for callers that need the Entity interface; the
// scanned values are addressed so each entity owns its copy.
func queryEntities[T any, PT interface {
	*T
	domain.Entity
}](ctx context.Context, pool *pgxpool.Pool, sql string, args []any, scan func(pgx.Row) (T, error)) ([]domain.Entity, error) {
	vs, err := queryAll(ctx, pool, sql, args, scan)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Entity, 0, len(vs))
	for i := range vs {
		out = append(out, PT(&vs[i]))
	}
	return out, nil
}

func scanCity(row pgx.Row) (domain.City, error) {
	var (
		c    domain.City
		id   string
		name map[string]string
	)
	if err := row.Scan(&id, &name, &c.Country, &c.Latitude, &c.Longitude); err != nil {
		return domain.City{}, err
	}
	c.ID = domain.EntityID(id)
	c.Name = domain.LocalizedText(name)
	return c, nil
}

func scanPlace(row pgx.Row) (domain.Place, error) {
	var (
		p         domain.Place
		id        string
		name      map[string]string
		cityID    string
		placeType string
	)
	if err := row.Scan(&id, &name, &cityID, &placeType, &p.Rating, &p.Latitude, &p.Longitude); err != nil {
		return domain.Place{}, err
	}
	p.ID = domain.EntityID(id)
	p.Name = domain.LocalizedText(name)
	p.CityID = domain.EntityID(cityID)
	p.Type = domain.PlaceType(placeType)
	return p, nil
}

func scanRoute(row pgx.Row) (domain.Route, error) {
	var (
		r        domain.Route
		id       string
		name     map[string]string
		cityID   string
		placeIDs []string
	)
	if err := row.Scan(&id, &name, &cityID, &placeIDs, &r.DistanceKm); err != nil {
		return domain.Route{}, err
	}
	r.ID = domain.EntityID(id)
	r.Name = domain.LocalizedText(name)
	r.CityID = domain.EntityID(cityID)
	r.PlaceIDs = make([]domain.EntityID, 0, len(placeIDs))
	for _, pid := range placeIDs {
		r.PlaceIDs = append(r.PlaceIDs, domain.EntityID(pid))
	}
	return r, nil
}

func scanEvent(row pgx.Row) (domain.Event, error) {
	var (
		e         domain.Event
		id        string
		name      map[string]string
		cityID    string
		eventType string
		date      pgtype.Date
	)
	if err := row.Scan(&id, &name, &cityID, &eventType, &e.Culture, &e.HasOnlineStream, &e.HasTranslation, &date, &e.Time); err != nil {
		return domain.Event{}, err
	}
	e.ID = domain.EntityID(id)
	e.Name = domain.LocalizedText(name)
	e.CityID = domain.EntityID(cityID)
	e.EventType = domain.EventType(eventType)
	e.Date = dateToTimePtr(date)
	return e, nil
}

func datePtr(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	tt := t.UTC()
	return pgtype.Date{Time: time.Date(tt.Year(), tt.Month(), tt.Day(), 0, 0, 0, 0, time.UTC), Valid: true}
}

func dateToTimePtr(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
	return &t
}
