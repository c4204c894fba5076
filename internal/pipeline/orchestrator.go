package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dgallion1/docmap/internal/config"
	"github.com/dgallion1/docmap/internal/extract"
	"github.com/dgallion1/docmap/internal/session"
)

// ErrQueueFull is returned by Submit when no worker slot is available.
var ErrQueueFull = errors.New("job queue is full")

// Orchestrator runs generation jobs on a fixed pool of workers.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	gen      extract.Generator
	sessions *session.Store
	limiter  *rate.Limiter
	log      *slog.Logger
	cfg      config.Config

	mu      sync.RWMutex
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator creates the pipeline. sessions may be nil; when set, idle
// sessions are swept on the same ticker as finished jobs.
func NewOrchestrator(cfg config.Config, gen extract.Generator, sessions *session.Store, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		gen:      gen,
		sessions: sessions,
		limiter:  NewLimiter(cfg.GenerateRPM, cfg.MaxConcurrentGenerate),
		log:      log,
		cfg:      cfg,
	}
}

// NewLimiter spreads rpm generator calls per minute with the given burst.
// rpm <= 0 disables limiting.
func NewLimiter(rpm, burst int) *rate.Limiter {
	if rpm <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), burst)
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.gen, o.limiter, o.cfg, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.sweep()
			}
		}
	}()
}

func (o *Orchestrator) sweep() {
	jobs := o.jobs.Cleanup()
	sessions := 0
	if o.sessions != nil {
		sessions = o.sessions.Cleanup()
	}
	if jobs > 0 || sessions > 0 {
		o.log.Info("expired state removed", "jobs", jobs, "sessions", sessions)
	}
}

// Stop gracefully shuts down the pipeline. Queued jobs that have not started
// are dropped.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.mu.Unlock()
	o.wg.Wait()
}

// Submit queues job. The caller must have called Begin on the job's session
// for the job's kind; the pipeline calls End once the job finishes or is
// rejected here.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.RLock()
	defer o.mu.RUnlock()

	o.jobs.Put(job)
	if o.stopped {
		job.sess.End(session.Action(job.Kind))
		job.Fail(ErrQueueFull)
		return fmt.Errorf("%w: pipeline stopped", ErrQueueFull)
	}
	select {
	case o.queue <- job:
		return nil
	default:
		job.sess.End(session.Action(job.Kind))
		job.Fail(ErrQueueFull)
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
