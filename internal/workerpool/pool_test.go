package workerpool

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"devarena/internal/logger"
	"devarena/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

type recordingSyncer struct {
	mu      sync.Mutex
	userIDs []int
}

func (r *recordingSyncer) SyncUserStats(ctx context.Context, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userIDs = append(r.userIDs, userID)
	return nil
}

func (r *recordingSyncer) synced() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.userIDs...)
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestWorkerProcessesSyncJob(t *testing.T) {
	rdb := newTestRedis(t)
	syncer := &recordingSyncer{}
	ctx := context.Background()

	worker := NewSyncWorker("test-worker", rdb, services.ProgressSyncStream, "stats_syncers", syncer)
	worker.processSyncJob(ctx, redis.XMessage{
		ID:     "1-1",
		Values: map[string]interface{}{"user_id": "7"},
	})

	got := syncer.synced()
	if len(got) != 1 || got[0] != 7 {
		t.Fatalf("synced = %v, want [7]", got)
	}
}

func TestWorkerSkipsMalformedJob(t *testing.T) {
	rdb := newTestRedis(t)
	syncer := &recordingSyncer{}
	ctx := context.Background()

	worker := NewSyncWorker("test-worker", rdb, services.ProgressSyncStream, "stats_syncers", syncer)
	worker.processSyncJob(ctx, redis.XMessage{
		ID:     "1-1",
		Values: map[string]interface{}{"user_id": "not-a-number"},
	})
	worker.processSyncJob(ctx, redis.XMessage{
		ID:     "1-2",
		Values: map[string]interface{}{"other": "field"},
	})

	if got := syncer.synced(); len(got) != 0 {
		t.Fatalf("synced = %v, want none", got)
	}
}

func TestPoolConsumesEnqueuedJobs(t *testing.T) {
	rdb := newTestRedis(t)
	syncer := &recordingSyncer{}
	ctx := context.Background()

	pool := NewSyncWorkerPool(2, rdb, services.ProgressSyncStream, "stats_syncers", syncer)
	if err := pool.Start(ctx); err != nil {
		t.Fatalf("pool start: %v", err)
	}
	defer pool.Stop()

	queue := services.NewProgressSyncQueue(rdb, services.ProgressSyncStream)
	if err := queue.EnqueueStatsSync(ctx, 42); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for {
		if got := syncer.synced(); len(got) == 1 && got[0] == 42 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("job was not consumed; synced = %v", syncer.synced())
		case <-time.After(20 * time.Millisecond):
		}
	}
}
