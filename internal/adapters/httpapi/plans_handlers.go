package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/app/plans"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/idempotency"
)

const idempotencyKeyHeader = "Idempotency-Key"

func (s *Server) ListPlans(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	sums, err := s.plans.ListPlans(r.Context(), owner)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	out := make([]PlanSummary, 0, len(sums))
	for _, p := range sums {
		out = append(out, planSummaryFromDomain(p))
	}
	writeJSON(w, http.StatusOK, ListPlansResponse{Plans: out})
}

func (s *Server) GetPlan(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	p, err := s.plans.GetPlan(r.Context(), owner, planIDParam(r))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PlanResponse{Plan: planFromDomain(p, s.language(r))})
}

// CreatePlan saves a new plan. With an Idempotency-Key header, a retry with the
// same body replays the first response and a different body is rejected.
func (s *Server) CreatePlan(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	var req SavePlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var respFP idempotency.Fingerprint
	key := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
	useIdem := s.idem != nil && key != ""
	if useIdem {
		bodyHash, err := hashBody(req)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		fp := idempotency.Fingerprint{
			Key:    idempotency.Key(key),
			Owner:  owner,
			Method: http.MethodPost,
			Route:  "/plans",
		}
		if prev, found, err := s.idem.Get(r.Context(), fp.Payload()); err != nil {
			s.writeAppError(w, r, err)
			return
		} else if found {
			if string(prev.Body) != bodyHash {
				writeError(w, r, http.StatusConflict, "IDEMPOTENCY_KEY_REUSE", "idempotency key reuse with different payload", nil)
				return
			}
		} else {
			_ = s.idem.Put(r.Context(), fp.Payload(), idempotency.Record{
				ContentType: "text/plain",
				Body:        []byte(bodyHash),
				CreatedAt:   s.clock.Now().UTC(),
			})
		}

		respFP = fp.Response(bodyHash)
		if rec, found, err := s.idem.Get(r.Context(), respFP); err != nil {
			s.writeAppError(w, r, err)
			return
		} else if found && rec.StatusCode == http.StatusCreated && strings.HasPrefix(rec.ContentType, "application/json") {
			s.logger.Debug("Replaying idempotent create", zap.String("owner", string(owner)))
			w.Header().Set("Content-Type", rec.ContentType)
			w.WriteHeader(rec.StatusCode)
			_, _ = w.Write(rec.Body)
			return
		}
	}

	in, ok := s.savePlanInput(w, r, req)
	if !ok {
		return
	}
	created, err := s.plans.CreatePlan(r.Context(), owner, in)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	resp := PlanResponse{Plan: planFromDomain(created, s.language(r))}

	if useIdem {
		if b, err := json.Marshal(resp); err == nil {
			_ = s.idem.Put(r.Context(), respFP, idempotency.Record{
				StatusCode:  http.StatusCreated,
				ContentType: "application/json",
				Body:        b,
				CreatedAt:   s.clock.Now().UTC(),
			})
		}
	}
	w.Header().Set("Location", "/plans/"+string(created.ID))
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) ReplacePlan(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	var req SavePlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in, ok := s.savePlanInput(w, r, req)
	if !ok {
		return
	}
	p, err := s.plans.ReplacePlan(r.Context(), owner, planIDParam(r), in)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PlanResponse{Plan: planFromDomain(p, s.language(r))})
}

func (s *Server) UpdatePlanMeta(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	var req UpdatePlanMetaRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sum, err := s.plans.UpdatePlanMeta(r.Context(), owner, planIDParam(r), updatePlanMetaInputFromOAS(req))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PlanSummaryResponse{Plan: planSummaryFromDomain(sum)})
}

func (s *Server) DeletePlan(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	if err := s.plans.DeletePlan(r.Context(), owner, planIDParam(r)); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) savePlanInput(w http.ResponseWriter, r *http.Request, req SavePlanRequest) (plans.SavePlanInput, bool) {
	items, ok := s.resolveItems(w, r, req.Items)
	if !ok {
		return plans.SavePlanInput{}, false
	}
	return plans.SavePlanInput{
		Title:     req.Title,
		GroupBy:   domain.GroupBy(req.GroupBy),
		Items:     items,
		StartDate: datePtrFromOAS(req.StartDate),
		EndDate:   datePtrFromOAS(req.EndDate),
	}, true
}

func planIDParam(r *http.Request) domain.PlanID {
	return domain.PlanID(strings.TrimSpace(chi.URLParam(r, "planId")))
}

// hashBody hashes the decoded request so formatting differences do not matter.
func hashBody(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
