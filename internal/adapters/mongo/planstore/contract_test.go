package planstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/contracttest"
	mongoadapter "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/mongo"
	planstoreport "github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/planstore"
)

func TestContract_MongoPlanStore(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set; skipping mongo test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongoadapter.Connect(ctx, uri)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	contracttest.RunPlanStore(t, func(t *testing.T) (planstoreport.Store, func()) {
		t.Helper()
		db := client.Database("planner_test_" + uuid.NewString()[:8])
		s := NewStore(db.Collection(CollectionName))
		if err := s.EnsureIndexes(ctx); err != nil {
			t.Fatalf("EnsureIndexes: %v", err)
		}
		return s, func() { _ = db.Drop(context.Background()) }
	})
}
