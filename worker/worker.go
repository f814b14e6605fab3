package worker

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"travel-friend/api/logger"
	"travel-friend/api/mailer"
)

// WorkerPool delivers queued email jobs. Jobs for the same user hash to the
// same partition so one recipient's mail is delivered in order.
type WorkerPool struct {
	workers    int
	partitions []chan []byte
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc

	// Metrics
	mu               sync.RWMutex
	jobsDelivered    uint64
	deliveryDuration uint64
	bufferFillLevels []uint64
	jobsFailed       uint64
	jobsDropped      uint64
}

func NewWorkerPool(workers int) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	partitions := make([]chan []byte, workers)
	bufferLevels := make([]uint64, workers)
	for i := range partitions {
		partitions[i] = make(chan []byte, 100) // Buffer size of 100 per partition
	}
	return &WorkerPool{
		workers:          workers,
		partitions:       partitions,
		ctx:              ctx,
		cancelFunc:       cancel,
		bufferFillLevels: bufferLevels,
	}
}

func (wp *WorkerPool) Start() {
	logger.Get().Info("Starting worker pool", zap.Int("workers", wp.workers))
	for i := range wp.partitions {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

func (wp *WorkerPool) Stop() {
	logger.Get().Info("Stopping worker pool")
	wp.cancelFunc()
	for _, ch := range wp.partitions {
		close(ch)
	}
	wp.wg.Wait()
}

// PartitionFor maps a user id to a stable partition index.
func (wp *WorkerPool) PartitionFor(userID string) int {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return int(h.Sum32()) % wp.workers
}

func (wp *WorkerPool) Submit(job []byte, partition int) {
	if partition < 0 || partition >= len(wp.partitions) {
		wp.mu.Lock()
		wp.jobsDropped++
		wp.mu.Unlock()
		logger.Get().Error("Invalid partition number",
			zap.Int("partition", partition),
			zap.Int("max_partitions", len(wp.partitions)))
		return
	}

	wp.mu.Lock()
	wp.bufferFillLevels[partition]++
	wp.mu.Unlock()

	select {
	case wp.partitions[partition] <- job:
		logger.Get().Debug("Email job submitted to worker pool",
			zap.Int("partition", partition))
	case <-wp.ctx.Done():
		wp.mu.Lock()
		wp.jobsDropped++
		wp.mu.Unlock()
		logger.Get().Warn("Worker pool is stopped, job not submitted")
	}
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()
	logger.Get().Info("Worker started", zap.Int("worker_id", id))

	for {
		select {
		case job, ok := <-wp.partitions[id]:
			if !ok {
				logger.Get().Info("Worker stopping", zap.Int("worker_id", id))
				return
			}

			wp.mu.Lock()
			wp.bufferFillLevels[id]--
			wp.mu.Unlock()

			startTime := time.Now()

			var email mailer.EmailJob
			if err := json.Unmarshal(job, &email); err != nil {
				wp.mu.Lock()
				wp.jobsFailed++
				wp.mu.Unlock()
				logger.Get().Error("Failed to unmarshal email job",
					zap.Int("worker_id", id),
					zap.Error(err))
				continue
			}

			logger.Get().Debug("Delivering email",
				zap.Int("worker_id", id),
				zap.String("user_id", email.UserID))

			if err := mailer.Send(email); err != nil {
				// Best-effort only, no retry past the pool.
				wp.mu.Lock()
				wp.jobsFailed++
				wp.mu.Unlock()
				logger.Get().Warn("Email delivery failed",
					zap.Int("worker_id", id),
					zap.String("user_id", email.UserID),
					zap.Error(err))
				continue
			}

			wp.mu.Lock()
			wp.jobsDelivered++
			wp.deliveryDuration += uint64(time.Since(startTime).Milliseconds())
			wp.mu.Unlock()

		case <-wp.ctx.Done():
			logger.Get().Info("Worker stopping due to context cancellation",
				zap.Int("worker_id", id))
			return
		}
	}
}

// MetricsHandler returns the current metrics as JSON
func (wp *WorkerPool) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	var avgDeliveryTime float64
	if wp.jobsDelivered > 0 {
		avgDeliveryTime = float64(wp.deliveryDuration) / float64(wp.jobsDelivered)
	}

	metrics := map[string]any{
		"jobs_delivered":  wp.jobsDelivered,
		"jobs_failed":     wp.jobsFailed,
		"jobs_dropped":    wp.jobsDropped,
		"avg_delivery_ms": avgDeliveryTime,
		"buffer_levels":   wp.bufferFillLevels,
		"active_workers":  wp.workers,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metrics)
}
