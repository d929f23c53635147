package plans

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/app/planner"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/catalog"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/clock"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/planstore"
)

type Service struct {
	store   planstore.Store
	catalog catalog.Catalog
	clock   clock.Clock
	logger  *zap.Logger

	// lang is used to cache display names in stubs.
	lang string

	newPlanID func() domain.PlanID
}

func NewService(store planstore.Store, cat catalog.Catalog, clk clock.Clock, logger *zap.Logger, lang string) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if lang == "" {
		lang = domain.DefaultLanguage
	}
	return &Service{
		store:   store,
		catalog: cat,
		clock:   clk,
		logger:  logger.Named("plans-service"),
		lang:    lang,
		newPlanID: func() domain.PlanID {
			return domain.PlanID(uuid.NewString())
		},
	}
}

// SetNewPlanIDForTest overrides plan ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewPlanIDForTest(fn func() domain.PlanID) {
	if fn != nil {
		s.newPlanID = fn
	}
}

func (s *Service) ListPlans(ctx context.Context, owner domain.OwnerID) ([]domain.PlanSummary, error) {
	rs, err := s.store.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PlanSummary, 0, len(rs))
	for _, r := range rs {
		out = append(out, domain.PlanSummary{
			ID:        r.ID,
			Title:     r.Title,
			StartDate: domain.CloneTimePtr(r.StartDate),
			EndDate:   domain.CloneTimePtr(r.EndDate),
			ItemCount: r.ItemCount,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return out, nil
}

// GetPlan loads and rehydrates a plan. Plans of other owners are reported as not found.
func (s *Service) GetPlan(ctx context.Context, owner domain.OwnerID, id domain.PlanID) (domain.Plan, error) {
	rec, err := s.getOwned(ctx, owner, id)
	if err != nil {
		return domain.Plan{}, err
	}

	p, dropped, err := Deserialize(ctx, rec, s.catalog)
	if err != nil {
		s.logger.Error("Failed to rehydrate plan",
			zap.String("plan_id", string(id)),
			zap.Error(err))
		return domain.Plan{}, &Error{
			Status:  502,
			Code:    "PLAN_NOT_FULLY_LOADED",
			Message: "plan could not be fully loaded",
			cause:   err,
		}
	}
	for _, ref := range dropped {
		s.logger.Warn("Dropping plan item missing from catalog",
			zap.String("plan_id", string(id)),
			zap.String("item", ref.String()))
	}
	return p, nil
}

func (s *Service) CreatePlan(ctx context.Context, owner domain.OwnerID, in SavePlanInput) (domain.Plan, error) {
	p, err := s.validate(in)
	if err != nil {
		return domain.Plan{}, err
	}

	now := s.clock.Now().UTC()
	p.ID = s.newPlanID()
	p.OwnerID = owner
	p.CreatedAt = now
	p.UpdatedAt = now

	p.Items = planner.Canonicalize(p.Items, p.GroupBy)
	id, err := s.store.Insert(ctx, owner, Serialize(p, s.lang))
	if err != nil {
		if errors.Is(err, planstore.ErrAlreadyExists) {
			// Extremely unlikely (UUID collision); treat as conflict.
			return domain.Plan{}, &Error{Status: 409, Code: "PLAN_ID_CONFLICT", Message: "plan id conflict"}
		}
		return domain.Plan{}, err
	}
	p.ID = id
	return p, nil
}

// ReplacePlan overwrites title, dates and items of an existing plan.
func (s *Service) ReplacePlan(ctx context.Context, owner domain.OwnerID, id domain.PlanID, in SavePlanInput) (domain.Plan, error) {
	p, err := s.validate(in)
	if err != nil {
		return domain.Plan{}, err
	}
	existing, err := s.getOwned(ctx, owner, id)
	if err != nil {
		return domain.Plan{}, err
	}

	p.ID = id
	p.OwnerID = owner
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = s.clock.Now().UTC()

	p.Items = planner.Canonicalize(p.Items, p.GroupBy)
	if err := s.store.Update(ctx, id, owner, Serialize(p, s.lang)); err != nil {
		if errors.Is(err, planstore.ErrNotFound) {
			return domain.Plan{}, notFound()
		}
		return domain.Plan{}, err
	}
	return p, nil
}

// UpdatePlanMeta patches title and date range, keeping stored items as they are.
func (s *Service) UpdatePlanMeta(ctx context.Context, owner domain.OwnerID, id domain.PlanID, in UpdatePlanMetaInput) (domain.PlanSummary, error) {
	rec, err := s.getOwned(ctx, owner, id)
	if err != nil {
		return domain.PlanSummary{}, err
	}

	if in.Title.IsSpecified() {
		if in.Title.IsNull() {
			return domain.PlanSummary{}, validation("invalid title", map[string]any{"title": "cannot be null"})
		}
		title := domain.NormalizeHumanName(in.Title.Value())
		if title == "" {
			return domain.PlanSummary{}, validation("invalid title", map[string]any{"title": "must be non-empty"})
		}
		rec.Title = title
	}
	rec.StartDate = applyDate(rec.StartDate, in.StartDate)
	rec.EndDate = applyDate(rec.EndDate, in.EndDate)
	if err := validateRange(rec.StartDate, rec.EndDate); err != nil {
		return domain.PlanSummary{}, err
	}
	rec.UpdatedAt = s.clock.Now().UTC()

	if err := s.store.Update(ctx, id, owner, rec); err != nil {
		if errors.Is(err, planstore.ErrNotFound) {
			return domain.PlanSummary{}, notFound()
		}
		return domain.PlanSummary{}, err
	}
	sum := planstore.SummaryOf(rec)
	return domain.PlanSummary{
		ID:        sum.ID,
		Title:     sum.Title,
		StartDate: sum.StartDate,
		EndDate:   sum.EndDate,
		ItemCount: sum.ItemCount,
		CreatedAt: sum.CreatedAt,
		UpdatedAt: sum.UpdatedAt,
	}, nil
}

func (s *Service) DeletePlan(ctx context.Context, owner domain.OwnerID, id domain.PlanID) error {
	if err := s.store.Delete(ctx, id, owner); err != nil {
		if errors.Is(err, planstore.ErrNotFound) {
			return notFound()
		}
		return err
	}
	return nil
}

func (s *Service) getOwned(ctx context.Context, owner domain.OwnerID, id domain.PlanID) (planstore.Record, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, planstore.ErrNotFound) {
			return planstore.Record{}, notFound()
		}
		return planstore.Record{}, err
	}
	if rec.OwnerID != owner {
		// Do not reveal that the plan exists.
		return planstore.Record{}, notFound()
	}
	return rec, nil
}

func (s *Service) validate(in SavePlanInput) (domain.Plan, error) {
	title := domain.NormalizeHumanName(in.Title)
	if title == "" {
		return domain.Plan{}, validation("invalid title", map[string]any{"title": "must be non-empty"})
	}
	start, end := domain.DateOnlyPtr(in.StartDate), domain.DateOnlyPtr(in.EndDate)
	if err := validateRange(start, end); err != nil {
		return domain.Plan{}, err
	}
	if in.GroupBy != "" && !in.GroupBy.Valid() {
		return domain.Plan{}, validation("invalid groupBy", map[string]any{"groupBy": string(in.GroupBy)})
	}
	seen := make(map[domain.ItemRef]struct{}, len(in.Items))
	for i, it := range in.Items {
		if it.Data == nil || !it.Type.Valid() || it.Data.Kind() != it.Type {
			return domain.Plan{}, validation("invalid item", map[string]any{"index": i, "type": string(it.Type)})
		}
		if _, dup := seen[it.Ref()]; dup {
			return domain.Plan{}, validation("duplicate item", map[string]any{"index": i, "item": it.Ref().String()})
		}
		seen[it.Ref()] = struct{}{}
	}
	return domain.Plan{
		Title:     title,
		GroupBy:   in.GroupBy.OrDefault(),
		Items:     domain.CloneItems(in.Items),
		StartDate: start,
		EndDate:   end,
	}, nil
}

func validateRange(start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return validation("invalid date range", map[string]any{"endDate": "must not be before startDate"})
	}
	return nil
}

func applyDate(cur *time.Time, o Optional[time.Time]) *time.Time {
	if !o.IsSpecified() {
		return cur
	}
	if o.IsNull() {
		return nil
	}
	d := domain.DateOnly(o.Value())
	return &d
}
