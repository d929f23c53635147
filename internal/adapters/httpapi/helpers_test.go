package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/contracttest"
	memcatalog "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/memory/catalog"
	memclock "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/memory/clock"
	memidempotency "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/memory/idempotency"
	memplanstore "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/memory/planstore"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/app/plans"
)

type testAPI struct {
	h     http.Handler
	cat   *memcatalog.Catalog
	store *memplanstore.Store
	clock *memclock.ManualClock
}

// newTestAPI wires the router over in-memory adapters with the dev auth shim,
// so requests pick their subject through X-Debug-Subject.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	fx := contracttest.DefaultCatalogFixture()
	cat := memcatalog.New()
	cat.Replace(fx.Cities, fx.Places, fx.Routes, fx.Events)

	clk := memclock.NewManualClock(time.Unix(100, 0).UTC())
	store := memplanstore.NewStore()
	svc := plans.NewService(store, cat, clk, zap.NewNop(), "en")

	api := NewServer(ServerOptions{
		Catalog: cat,
		Plans:   svc,
		Idem:    memidempotency.NewStore(),
		Clock:   clk,
		Logger:  zap.NewNop(),
	})
	h := NewRouterWithOptions(api, RouterOptions{AuthMiddleware: NewDevAuthMiddleware("sub-1")})
	return &testAPI{h: h, cat: cat, store: store, clock: clk}
}

type call struct {
	method  string
	path    string
	body    string
	subject string
	headers map[string]string
}

func (a *testAPI) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if c.body != "" {
		body = bytes.NewBufferString(c.body)
	} else {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(c.method, c.path, body)
	req.Header.Set("Content-Type", "application/json")
	if c.subject != "" {
		req.Header.Set("X-Debug-Subject", c.subject)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %T: %v body=%s", v, err, rec.Body.String())
	}
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[ErrorResponse](t, rec).Error.Code
}
