package services

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// ProgressSyncStream is consumed by the reconciliation worker pool.
const ProgressSyncStream = "progress_sync"

// ProgressSyncQueue enqueues user IDs whose counters need recomputing from
// the ledger onto a redis stream.
type ProgressSyncQueue struct {
	rdb    *redis.Client
	stream string
}

func NewProgressSyncQueue(rdb *redis.Client, stream string) *ProgressSyncQueue {
	if stream == "" {
		stream = ProgressSyncStream
	}
	return &ProgressSyncQueue{rdb: rdb, stream: stream}
}

func (q *ProgressSyncQueue) EnqueueStatsSync(ctx context.Context, userID int) error {
	return q.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		ID:     "*",
		Values: map[string]interface{}{
			"user_id": strconv.Itoa(userID),
		},
	}).Err()
}
