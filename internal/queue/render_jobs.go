package queue

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warpgrid/warpgrid/internal/logger"
	"github.com/warpgrid/warpgrid/internal/metrics"
	"github.com/warpgrid/warpgrid/internal/pcm"
	"github.com/warpgrid/warpgrid/internal/store"
	"github.com/warpgrid/warpgrid/internal/stretch"
	"github.com/warpgrid/warpgrid/internal/timebase"
	"github.com/warpgrid/warpgrid/internal/warp"
)

// StretchJob represents one background time-stretch render
type StretchJob struct {
	ID           string            `json:"id"`
	SampleID     string            `json:"sample_id"`
	TargetID     string            `json:"target_id"` // Store key for the rendered buffer
	TargetBPM    float64           `json:"target_bpm"`
	Settings     *warp.Settings    `json:"settings,omitempty"`
	Status       string            `json:"status"` // pending, processing, complete, failed
	CreatedAt    time.Time         `json:"created_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
	ErrorMessage *string           `json:"error_message,omitempty"`
	Result       *StretchJobResult `json:"result,omitempty"`
}

// StretchJobResult contains the render result
type StretchJobResult struct {
	RenderedID string  `json:"rendered_id"`
	Frames     int     `json:"frames"`
	Duration   float64 `json:"duration"`
	Mode       string  `json:"mode"`
	Ratio      float64 `json:"ratio"`
}

// RenderQueue runs time-stretch renders on background workers so the
// scheduler tick never waits on DSP.
type RenderQueue struct {
	jobs       chan *StretchJob
	results    map[string]*StretchJob
	resultsMux sync.RWMutex
	workers    int
	ctx        context.Context
	cancel     context.CancelFunc

	samples store.Store

	// Callback for buffer hot-swapping (protected by callbackMux to prevent data races)
	callbackMux   sync.RWMutex
	onJobComplete func(jobID string)

	// For testing: channel to signal job completion
	jobCompleted chan string
}

// NewRenderQueue creates a render queue backed by the given sample store
func NewRenderQueue(samples store.Store) *RenderQueue {
	ctx, cancel := context.WithCancel(context.Background())

	// Use CPU count for worker pool size
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8 // Cap at 8 workers to avoid overwhelming
	}

	return &RenderQueue{
		jobs:         make(chan *StretchJob, 100), // Buffer 100 jobs
		results:      make(map[string]*StretchJob),
		workers:      workers,
		ctx:          ctx,
		cancel:       cancel,
		samples:      samples,
		jobCompleted: make(chan string, 100), // For testing
	}
}

// SetJobCompleteCallback sets a callback invoked after a render lands in
// the store, typically to swap the live playback buffer
func (q *RenderQueue) SetJobCompleteCallback(callback func(jobID string)) {
	q.callbackMux.Lock()
	defer q.callbackMux.Unlock()
	q.onJobComplete = callback
}

// Start begins processing jobs with worker pool
func (q *RenderQueue) Start() {
	logger.Info("Starting render queue", zap.Int("workers", q.workers))

	for i := 0; i < q.workers; i++ {
		go q.worker(i)
	}
}

// Stop gracefully shuts down the queue
func (q *RenderQueue) Stop() {
	q.cancel()
	close(q.jobs)
}

// Submit enqueues a stretch render. An empty targetID derives a store key
// from the source sample and target tempo.
func (q *RenderQueue) Submit(sampleID, targetID string, settings *warp.Settings, targetBPM float64) (*StretchJob, error) {
	if targetID == "" {
		targetID = fmt.Sprintf("%s@%gbpm", sampleID, timebase.ClampBPM(targetBPM))
	}

	job := &StretchJob{
		ID:        uuid.New().String(),
		SampleID:  sampleID,
		TargetID:  targetID,
		TargetBPM: targetBPM,
		Settings:  settings,
		Status:    "pending",
		CreatedAt: time.Now(),
	}

	// Store job in results map
	q.resultsMux.Lock()
	q.results[job.ID] = job
	q.resultsMux.Unlock()

	// Submit to worker pool
	select {
	case q.jobs <- job:
		metrics.Get().RenderQueueDepth.Inc()
		return job, nil
	default:
		return nil, fmt.Errorf("render queue is full")
	}
}

// GetJobStatus returns the current status of a job
func (q *RenderQueue) GetJobStatus(jobID string) (*StretchJob, error) {
	q.resultsMux.RLock()
	defer q.resultsMux.RUnlock()

	job, exists := q.results[jobID]
	if !exists {
		return nil, fmt.Errorf("job not found")
	}

	return job, nil
}

// WaitForJobCompletion waits for a specific job to complete (for testing)
func (q *RenderQueue) WaitForJobCompletion(jobID string, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case completedJobID := <-q.jobCompleted:
			if completedJobID == jobID {
				return nil
			}
		case <-timer.C:
			return fmt.Errorf("timeout waiting for job %s", jobID)
		case <-q.ctx.Done():
			return fmt.Errorf("queue stopped")
		}
	}
}

// worker processes stretch jobs from the queue
func (q *RenderQueue) worker(workerID int) {
	logger.Info("Render worker started", zap.Int("worker_id", workerID))

	for {
		select {
		case job := <-q.jobs:
			if job == nil {
				logger.Info("Render worker shutting down", zap.Int("worker_id", workerID))
				return
			}

			q.processJob(workerID, job)

		case <-q.ctx.Done():
			logger.Info("Render worker shutting down", zap.Int("worker_id", workerID))
			return
		}
	}
}

// processJob runs the stretch engine and registers the rendered buffer
func (q *RenderQueue) processJob(workerID int, job *StretchJob) {
	logger.Info("Worker processing stretch job",
		zap.Int("worker_id", workerID),
		logger.WithJobID(job.ID),
		logger.WithSample(job.SampleID))
	startTime := time.Now()
	defer metrics.Get().RenderQueueDepth.Dec()

	// Update job status to processing
	q.updateJobStatus(job.ID, "processing", nil, nil)

	if q.samples == nil {
		errMsg := "no sample store attached"
		logger.Error("Worker job failed", zap.Int("worker_id", workerID), logger.WithJobID(job.ID), zap.String("error", errMsg))
		q.updateJobStatus(job.ID, "failed", nil, &errMsg)
		metrics.Get().RenderJobsTotal.WithLabelValues("failed").Inc()
		q.signalCompletion(job.ID)
		return
	}

	settings := job.Settings
	if settings == nil {
		settings = warp.NewSettings(120)
	}

	// Tempo sets the target duration: material recorded at the original
	// tempo shortens when played faster and lengthens when played slower.
	targetBPM := timebase.ClampBPM(job.TargetBPM)
	ratio := timebase.ClampBPM(settings.OriginalBPM) / targetBPM

	// A previous render may already sit in the store under the target key.
	if cached, err := q.samples.Sample(job.TargetID); err == nil {
		q.finishCached(workerID, job, cached, ratio)
		return
	}

	src, err := q.samples.Sample(job.SampleID)
	if err != nil {
		errMsg := fmt.Sprintf("source sample unresolved: %v", err)
		logger.Error("Worker job failed", zap.Int("worker_id", workerID), logger.WithJobID(job.ID), zap.String("error", errMsg))
		q.updateJobStatus(job.ID, "failed", nil, &errMsg)
		metrics.Get().RenderJobsTotal.WithLabelValues("failed").Inc()
		q.signalCompletion(job.ID)
		return
	}

	targetDuration := timebase.Seconds(float64(src.Duration()) * ratio)

	engine := stretch.NewEngine(settings)
	engine.SetSource(src)
	out := engine.Process(targetDuration)
	if out != nil && out != src {
		// Freshly rendered buffers get boundary fades; the no-DSP modes
		// return the source itself, which must stay untouched.
		out.Declick(5)
	}
	if out == nil {
		errMsg := "stretch produced no audio"
		logger.Error("Worker job failed", zap.Int("worker_id", workerID), logger.WithJobID(job.ID), zap.String("error", errMsg))
		q.updateJobStatus(job.ID, "failed", nil, &errMsg)
		metrics.Get().RenderJobsTotal.WithLabelValues("failed").Inc()
		q.signalCompletion(job.ID)
		return
	}

	if err := q.samples.Register(job.TargetID, out); err != nil {
		errMsg := fmt.Sprintf("registering rendered buffer failed: %v", err)
		logger.Error("Worker job failed", zap.Int("worker_id", workerID), logger.WithJobID(job.ID), zap.String("error", errMsg))
		q.updateJobStatus(job.ID, "failed", nil, &errMsg)
		metrics.Get().RenderJobsTotal.WithLabelValues("failed").Inc()
		q.signalCompletion(job.ID)
		return
	}

	elapsed := time.Since(startTime)
	metrics.Get().StretchDuration.WithLabelValues(settings.Mode.String()).Observe(elapsed.Seconds())
	metrics.Get().RenderJobsTotal.WithLabelValues("complete").Inc()

	result := &StretchJobResult{
		RenderedID: job.TargetID,
		Frames:     out.Frames(),
		Duration:   float64(out.Duration()),
		Mode:       settings.Mode.String(),
		Ratio:      ratio,
	}
	q.updateJobStatus(job.ID, "complete", result, nil)

	logger.Info("Worker completed stretch job",
		zap.Int("worker_id", workerID),
		logger.WithJobID(job.ID),
		logger.WithMode(settings.Mode.String()),
		zap.Duration("elapsed", elapsed),
		zap.Int("frames", out.Frames()),
		zap.Float64("ratio", ratio))

	// Trigger buffer swap callback
	q.callbackMux.RLock()
	callback := q.onJobComplete
	q.callbackMux.RUnlock()
	if callback != nil {
		go callback(job.ID)
	}

	q.signalCompletion(job.ID)
}

// finishCached completes a job from an already-registered render without
// running the stretch engine again
func (q *RenderQueue) finishCached(workerID int, job *StretchJob, cached *pcm.Buffer, ratio float64) {
	result := &StretchJobResult{
		RenderedID: job.TargetID,
		Frames:     cached.Frames(),
		Duration:   float64(cached.Duration()),
		Mode:       "cached",
		Ratio:      ratio,
	}
	q.updateJobStatus(job.ID, "complete", result, nil)
	metrics.Get().RenderJobsTotal.WithLabelValues("cached").Inc()

	logger.Info("Render cache hit",
		zap.Int("worker_id", workerID),
		logger.WithJobID(job.ID),
		logger.WithSample(job.TargetID))

	q.callbackMux.RLock()
	callback := q.onJobComplete
	q.callbackMux.RUnlock()
	if callback != nil {
		go callback(job.ID)
	}

	q.signalCompletion(job.ID)
}

// updateJobStatus updates job status thread-safely
func (q *RenderQueue) updateJobStatus(jobID, status string, result *StretchJobResult, errorMessage *string) {
	q.resultsMux.Lock()
	defer q.resultsMux.Unlock()

	job, exists := q.results[jobID]
	if !exists {
		return
	}

	job.Status = status
	job.Result = result
	job.ErrorMessage = errorMessage

	if status == "complete" || status == "failed" {
		now := time.Now()
		job.CompletedAt = &now
	}
}

// signalCompletion signals that a job has completed (for testing)
func (q *RenderQueue) signalCompletion(jobID string) {
	select {
	case q.jobCompleted <- jobID:
	default:
		// Channel full, don't block
	}
}
