package workerpool

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"devarena/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StatsSyncer recomputes a user's counters from the progress ledger.
type StatsSyncer interface {
	SyncUserStats(ctx context.Context, userID int) error
}

// SyncWorker consumes stats reconciliation jobs from a redis stream.
type SyncWorker struct {
	id     string
	quit   chan bool
	rdb    *redis.Client
	stream string
	group  string
	syncer StatsSyncer
}

func NewSyncWorker(id string, rdb *redis.Client, stream, group string, syncer StatsSyncer) *SyncWorker {
	return &SyncWorker{
		id:     id,
		quit:   make(chan bool),
		rdb:    rdb,
		stream: stream,
		group:  group,
		syncer: syncer,
	}
}

// Start begins processing jobs from the stream
func (w *SyncWorker) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-w.quit:
				return
			default:
				entries, err := w.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
					Group:    w.group,
					Consumer: w.id,
					Streams:  []string{w.stream, ">"},
					Count:    1,
					Block:    5 * time.Second,
				}).Result()

				if err != nil {
					if err != redis.Nil {
						logger.Log.Error("Redis operation failed",
							zap.String("worker_id", w.id),
							zap.Error(err))
					}
					continue
				}

				for _, stream := range entries {
					for _, msg := range stream.Messages {
						w.processSyncJob(ctx, msg)
					}
				}
			}
		}
	}()
}

func (w *SyncWorker) Stop() {
	logger.Log.Info("Closing worker",
		zap.String("worker_id", w.id))
	w.quit <- true
	close(w.quit)
}

func (w *SyncWorker) processSyncJob(ctx context.Context, msg redis.XMessage) {
	logger.Log.Info("Processing stats sync job",
		zap.String("worker_id", w.id),
		zap.String("job_id", msg.ID))

	userIDStr, ok := msg.Values["user_id"].(string)
	if !ok {
		logger.Log.Error("Invalid user ID in message",
			zap.String("worker_id", w.id),
			zap.Any("values", msg.Values))
		w.ack(ctx, msg.ID)
		return
	}

	userID, err := strconv.Atoi(userIDStr)
	if err != nil {
		logger.Log.Error("Failed to parse user ID",
			zap.String("worker_id", w.id),
			zap.String("user_id", userIDStr),
			zap.Error(err))
		w.ack(ctx, msg.ID)
		return
	}

	// The sync is idempotent, so a job that fails here stays pending and
	// is retried on the next enqueue for the same user.
	if err := w.syncer.SyncUserStats(ctx, userID); err != nil {
		logger.Log.Error("Failed to sync user stats",
			zap.String("worker_id", w.id),
			zap.Int("user_id", userID),
			zap.Error(err))
		return
	}

	w.ack(ctx, msg.ID)

	logger.Log.Info("Finished stats sync job",
		zap.String("worker_id", w.id),
		zap.String("job_id", msg.ID),
		zap.Int("user_id", userID))
}

func (w *SyncWorker) ack(ctx context.Context, msgID string) {
	if err := w.rdb.XAck(ctx, w.stream, w.group, msgID).Err(); err != nil {
		logger.Log.Error("Failed to acknowledge job",
			zap.String("worker_id", w.id),
			zap.Error(err))
	}
}

type SyncWorkerPool struct {
	workers    []*SyncWorker
	numWorkers int
	rdb        *redis.Client
	stream     string
	group      string
	syncer     StatsSyncer
}

func NewSyncWorkerPool(numWorkers int, rdb *redis.Client, stream, group string, syncer StatsSyncer) *SyncWorkerPool {
	return &SyncWorkerPool{
		workers:    make([]*SyncWorker, numWorkers),
		numWorkers: numWorkers,
		rdb:        rdb,
		stream:     stream,
		group:      group,
		syncer:     syncer,
	}
}

func (p *SyncWorkerPool) Start(ctx context.Context) error {
	// Create consumer group if it doesn't exist
	_, err := p.rdb.XGroupCreateMkStream(ctx, p.stream, p.group, "$").Result()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for i := 0; i < p.numWorkers; i++ {
		worker := NewSyncWorker(
			fmt.Sprintf("SyncWorker-%d", i+1),
			p.rdb,
			p.stream,
			p.group,
			p.syncer,
		)

		worker.Start(ctx)
		p.workers[i] = worker

		logger.Log.Info("Starting sync worker",
			zap.String("worker_id", worker.id))
	}

	logger.Log.Info("Stats sync worker pool started",
		zap.Int("num_workers", p.numWorkers))

	return nil
}

// Stop terminates all workers in the pool
func (p *SyncWorkerPool) Stop() {
	for _, worker := range p.workers {
		worker.Stop()
	}
}
