package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memclock "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/memory/clock"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/idempotency"
)

func createPlanFingerprint(owner string) idempotency.Fingerprint {
	return idempotency.Fingerprint{Key: "k1", Owner: domain.OwnerID(owner), Method: "POST", Route: "/plans"}
}

func TestStore_PayloadAndResponseEntriesAreDistinct(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := NewStore()
	fp := createPlanFingerprint("sub-1")

	require.NoError(t, s.Put(ctx, fp.Payload(), idempotency.Record{ContentType: "text/plain", Body: []byte("abc123")}))
	_, ok, err := s.Get(ctx, fp.Response("abc123"))
	require.NoError(t, err)
	assert.False(t, ok, "response entry is not written by the payload entry")

	body := []byte(`{"plan":{"planId":"p1"}}`)
	require.NoError(t, s.Put(ctx, fp.Response("abc123"), idempotency.Record{
		StatusCode:  201,
		ContentType: "application/json",
		Body:        body,
	}))
	body[0] = 'X'

	got, ok, err := s.Get(ctx, fp.Response("abc123"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 201, got.StatusCode)
	assert.Equal(t, `{"plan":{"planId":"p1"}}`, string(got.Body), "stored body is a copy")
	assert.False(t, got.CreatedAt.IsZero())

	payload, ok, err := s.Get(ctx, fp.Payload())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc123", string(payload.Body))

	_, ok, err = s.Get(ctx, createPlanFingerprint("sub-2").Payload())
	require.NoError(t, err)
	assert.False(t, ok, "fingerprints are owner-scoped")
}

func TestStore_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	clk := memclock.NewManualClock(time.Unix(1000, 0))
	s := NewStoreWithTTL(time.Hour, clk.Now)
	fp := createPlanFingerprint("sub-1").Response("h")

	require.NoError(t, s.Put(ctx, fp, idempotency.Record{StatusCode: 201}))
	_, ok, _ := s.Get(ctx, fp)
	assert.True(t, ok, "before expiry")

	clk.Advance(2 * time.Hour)
	_, ok, _ = s.Get(ctx, fp)
	assert.False(t, ok, "after expiry")
}

func TestRecord_Expired(t *testing.T) {
	t.Parallel()

	created := time.Unix(1000, 0)
	rec := idempotency.Record{CreatedAt: created}
	assert.False(t, rec.Expired(created.Add(time.Hour), time.Hour))
	assert.True(t, rec.Expired(created.Add(time.Hour+time.Second), time.Hour))
	assert.False(t, rec.Expired(created.Add(1000*time.Hour), 0), "zero ttl never expires")
}
