package itest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/contracttest"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/httpapi"
	memcatalog "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/memory/catalog"
	memclock "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/memory/clock"
	memidempotency "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/memory/idempotency"
	memplanstore "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/memory/planstore"
	mongoadapter "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/mongo"
	mongoplanstore "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/mongo/planstore"
	pgcatalog "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/postgres/catalog"
	pgidempotency "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/postgres/idempotency"
	pgplanstore "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/postgres/planstore"
	postgres_testutil "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/postgres/testutil"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/app/plans"
	catalogport "github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/catalog"
	idempotencyport "github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/idempotency"
	planstoreport "github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/planstore"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendPostgres backend = "postgres"
	backendMongo    backend = "mongo"
)

// backendsFromEnv reads ITEST_BACKEND (memory, postgres, mongo or all).
// Backends whose connection variables are unset skip themselves.
func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	sel := strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND")))
	switch backend(sel) {
	case "":
		return []backend{backendMemory}
	case backendMemory, backendPostgres, backendMongo:
		return []backend{backend(sel)}
	}
	require.Equal(t, "all", sel, "ITEST_BACKEND must be memory, postgres, mongo or all")
	return []backend{backendMemory, backendPostgres, backendMongo}
}

type testServer struct {
	baseURL string
	client  *http.Client
}

func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()

	clk := memclock.NewManualClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	fx := contracttest.DefaultCatalogFixture()

	var (
		cat       catalogport.Catalog
		store     planstoreport.Store
		idemStore idempotencyport.Store
	)

	switch b {
	case backendPostgres:
		pool := postgres_testutil.OpenMigratedPool(t)
		pc := pgcatalog.New(pool)
		require.NoError(t, pc.Replace(context.Background(), fx.Cities, fx.Places, fx.Routes, fx.Events), "seed catalog")
		cat = pc
		store = pgplanstore.NewStore(pool)
		idemStore = pgidempotency.NewStore(pool)
	case backendMongo:
		uri := os.Getenv("TEST_MONGO_URI")
		if uri == "" {
			t.Skip("TEST_MONGO_URI not set; skipping mongo itest")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		client, err := mongoadapter.Connect(ctx, uri)
		require.NoError(t, err, "connect mongo")
		db := client.Database("planner_itest_" + uuid.NewString()[:8])
		t.Cleanup(func() {
			_ = db.Drop(context.Background())
			_ = client.Disconnect(context.Background())
		})
		ms := mongoplanstore.NewStore(db.Collection(mongoplanstore.CollectionName))
		require.NoError(t, ms.EnsureIndexes(ctx))
		mc := memcatalog.New()
		mc.Replace(fx.Cities, fx.Places, fx.Routes, fx.Events)
		cat, store, idemStore = mc, ms, memidempotency.NewStore()
	case backendMemory:
		mc := memcatalog.New()
		mc.Replace(fx.Cities, fx.Places, fx.Routes, fx.Events)
		cat, store, idemStore = mc, memplanstore.NewStore(), memidempotency.NewStore()
	default:
		require.FailNow(t, "unknown backend", string(b))
	}

	api := httpapi.NewServer(httpapi.ServerOptions{
		Catalog: cat,
		Plans:   plans.NewService(store, cat, clk, zap.NewNop(), "en"),
		Idem:    idemStore,
		Clock:   clk,
		Logger:  zap.NewNop(),
	})

	// No default subject: every request must name one, so 401s are reachable.
	srv := httptest.NewServer(httpapi.NewRouterWithOptions(api, httpapi.RouterOptions{
		AuthMiddleware: httpapi.NewDevAuthMiddleware(""),
	}))
	t.Cleanup(srv.Close)

	return &testServer{baseURL: srv.URL, client: srv.Client()}
}

func (s *testServer) doJSON(t *testing.T, method, path, subject string, body any) (int, []byte, http.Header) {
	t.Helper()
	return s.doJSONWithHeaders(t, method, path, subject, body, nil)
}

// doJSONWithHeaders sends body as JSON (when non-nil) on behalf of subject and
// returns the status, raw body and headers of the response.
func (s *testServer) doJSONWithHeaders(t *testing.T, method, path, subject string, body any, headers map[string]string) (int, []byte, http.Header) {
	t.Helper()

	var payload io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err, "marshal request body")
		payload = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.baseURL+"/"+strings.TrimPrefix(path, "/"), payload)
	require.NoError(t, err)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if subject != "" {
		req.Header.Set("X-Debug-Subject", subject)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	require.NoError(t, err, "%s %s", method, path)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out, resp.Header
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(b, &out), "body=%s", b)
	return out
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	require.Equal(t, wantStatus, status, "body=%s", body)
	var er struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &er), "body=%s", body)
	require.Equal(t, wantCode, er.Error.Code, "body=%s", body)
}

func requireHeaderPresent(t *testing.T, h http.Header, key string) {
	t.Helper()
	require.NotEmpty(t, strings.TrimSpace(h.Get(key)), "header %s", key)
}
