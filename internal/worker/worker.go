// SPDX-License-Identifier: AGPL-3.0-only
package worker

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fluffyriot/profilescope/internal/database"
	"github.com/fluffyriot/profilescope/internal/fetcher"
	"github.com/fluffyriot/profilescope/internal/ingest"
)

const (
	JobTypeFetch   = "fetch"
	JobTypeAnalyze = "analyze"

	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusRetrying  = "retrying"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// orphanAge is how long a job may sit in running before a restarted
// dispatcher considers its worker dead and requeues it.
const orphanAge = 10 * time.Minute

// Fetcher retrieves a raw profile for one platform.
type Fetcher interface {
	Fetch(ctx context.Context, handle string) (*fetcher.RawFetchResult, error)
}

type Store interface {
	CreateFetchJob(ctx context.Context, arg database.CreateFetchJobParams) (database.FetchJob, error)
	ClaimDueJob(ctx context.Context) (database.FetchJob, error)
	UpdateFetchJobState(ctx context.Context, arg database.UpdateFetchJobStateParams) (database.FetchJob, error)
	RescueOrphanedJobs(ctx context.Context, olderThan time.Duration) (int64, error)
	GetProfileByHandleAndPlatform(ctx context.Context, arg database.GetProfileByHandleAndPlatformParams) (database.Profile, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, profileID uuid.UUID) (database.BehaviorAnalysis, error)
}

type Normalizer interface {
	Normalize(ctx context.Context, raw *fetcher.RawFetchResult, platform string) (*ingest.Result, error)
	WritePlaceholder(ctx context.Context, handle, platform string, private bool) (*database.Profile, error)
}

// Worker owns the job loop: it claims due jobs from the queue, runs them,
// and persists the resulting state transition. All waiting between retries
// lives in the database as next_eligible_at, never in process memory, so a
// restart loses nothing.
type Worker struct {
	store      Store
	normalizer Normalizer
	engine     Analyzer
	fetchers   map[string]Fetcher
	policies   map[string]RetryPolicy

	concurrency int
	interval    time.Duration

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func New(store Store, normalizer Normalizer, engine Analyzer, fetchers map[string]Fetcher, concurrency int, interval time.Duration) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Worker{
		store:       store,
		normalizer:  normalizer,
		engine:      engine,
		fetchers:    fetchers,
		policies:    defaultPolicies,
		concurrency: concurrency,
		interval:    interval,
	}
}

func (w *Worker) policy(platform string) RetryPolicy {
	if p, ok := w.policies[platform]; ok {
		return p
	}
	return fallbackPolicy
}

// Submit enqueues a fetch job for the given account. If an equivalent job
// is already pending, running or retrying, that job is returned instead of
// creating a second one.
func (w *Worker) Submit(ctx context.Context, handle, platform string) (database.FetchJob, error) {
	return w.store.CreateFetchJob(ctx, database.CreateFetchJobParams{
		ID:             uuid.New(),
		Handle:         handle,
		Platform:       platform,
		JobType:        JobTypeFetch,
		NextEligibleAt: time.Now().UTC(),
	})
}

// Start spins up the worker goroutines. Calling Start on a running Worker
// is a no-op.
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	w.stopChan = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	if n, err := w.store.RescueOrphanedJobs(ctx, orphanAge); err != nil {
		log.Printf("worker: rescuing orphaned jobs: %v", err)
	} else if n > 0 {
		log.Printf("worker: requeued %d orphaned jobs", n)
	}

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.loop(ctx)
	}
	log.Printf("worker: started %d workers, poll interval %s", w.concurrency, w.interval)
}

// Stop cancels in-flight jobs and waits for all workers to exit. Jobs left
// in running state are requeued by RescueOrphanedJobs on the next Start.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopChan)
	w.cancel()
	w.mu.Unlock()

	w.wg.Wait()
	log.Println("worker: stopped")
}

// Running reports whether the job loop is active.
func (w *Worker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Worker) loop(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.drain(ctx)
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
		}
	}
}

// drain claims and runs due jobs until the queue is empty.
func (w *Worker) drain(ctx context.Context) {
	for {
		select {
		case <-w.stopChan:
			return
		default:
		}
		job, err := w.store.ClaimDueJob(ctx)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) && ctx.Err() == nil {
				log.Printf("worker: claiming job: %v", err)
			}
			return
		}
		w.runJob(ctx, job)
	}
}

func (w *Worker) runJob(ctx context.Context, job database.FetchJob) {
	switch job.JobType {
	case JobTypeFetch:
		w.runFetch(ctx, job)
	case JobTypeAnalyze:
		w.runAnalyze(ctx, job)
	default:
		log.Printf("worker: job %s has unknown type %q", job.ID, job.JobType)
		w.finish(ctx, job, StatusFailed, "unknown job type "+job.JobType)
	}
}

func (w *Worker) runFetch(ctx context.Context, job database.FetchJob) {
	f, ok := w.fetchers[job.Platform]
	if !ok {
		w.writePlaceholder(ctx, job, false)
		w.finish(ctx, job, StatusFailed, "no fetcher registered for platform "+job.Platform)
		return
	}

	raw, err := f.Fetch(ctx, job.Handle)
	if err != nil {
		w.handleFetchError(ctx, job, err)
		return
	}

	res, err := w.normalizer.Normalize(ctx, raw, job.Platform)
	if err != nil {
		// Storage hiccups are transient; the raw fetch is repeated on retry.
		w.retryOrFail(ctx, job, fetcher.TransientErr("normalize: "+err.Error()), false)
		return
	}

	log.Printf("worker: fetched %s/%s via %s, %d posts upserted", job.Platform, job.Handle, raw.SourceLabel, res.PostsUpserted)
	w.finish(ctx, job, StatusSucceeded, "")

	// Analysis runs as its own job so a failure there retries independently
	// of the (already persisted) fetch.
	if _, err := w.store.CreateFetchJob(ctx, database.CreateFetchJobParams{
		ID:             uuid.New(),
		Handle:         job.Handle,
		Platform:       job.Platform,
		JobType:        JobTypeAnalyze,
		NextEligibleAt: time.Now().UTC(),
	}); err != nil {
		log.Printf("worker: enqueueing analysis for %s/%s: %v", job.Platform, job.Handle, err)
	}
}

func (w *Worker) runAnalyze(ctx context.Context, job database.FetchJob) {
	profile, err := w.store.GetProfileByHandleAndPlatform(ctx, database.GetProfileByHandleAndPlatformParams{
		Handle:   job.Handle,
		Platform: job.Platform,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			w.finish(ctx, job, StatusFailed, "profile not found")
			return
		}
		w.retryOrFail(ctx, job, fetcher.TransientErr("loading profile: "+err.Error()), false)
		return
	}
	if _, err := w.engine.Analyze(ctx, profile.ID); err != nil {
		w.retryOrFail(ctx, job, fetcher.TransientErr("analysis: "+err.Error()), false)
		return
	}
	log.Printf("worker: analyzed %s/%s", job.Platform, job.Handle)
	w.finish(ctx, job, StatusSucceeded, "")
}

func (w *Worker) handleFetchError(ctx context.Context, job database.FetchJob, err error) {
	fe := fetcher.Classify(err)
	if !fe.Retryable {
		// Terminal outcomes still leave a record behind so the account is
		// visible with whatever we know about it.
		w.writePlaceholder(ctx, job, fe.Kind == fetcher.KindPermanentBlocked)
		w.finish(ctx, job, StatusFailed, fe.Error())
		log.Printf("worker: job %s for %s/%s failed permanently: %v", job.ID, job.Platform, job.Handle, fe)
		return
	}
	w.retryOrFail(ctx, job, fe, fe.Kind == fetcher.KindRateLimited)
}

func (w *Worker) retryOrFail(ctx context.Context, job database.FetchJob, fe *fetcher.FetchError, rateLimited bool) {
	attempt := int(job.AttemptCount) + 1
	pol := w.policy(job.Platform)
	if attempt > pol.MaxAttempts {
		if job.JobType == JobTypeFetch {
			w.writePlaceholder(ctx, job, false)
		}
		w.finishAttempt(ctx, job, StatusFailed, "retries exhausted: "+fe.Error(), int32(attempt), time.Now().UTC())
		log.Printf("worker: job %s for %s/%s failed after %d attempts: %v", job.ID, job.Platform, job.Handle, attempt, fe)
		return
	}
	delay := pol.Delay(attempt, rateLimited)
	w.finishAttempt(ctx, job, StatusRetrying, fe.Error(), int32(attempt), time.Now().UTC().Add(delay))
	log.Printf("worker: job %s for %s/%s retrying in %s (attempt %d): %v", job.ID, job.Platform, job.Handle, delay, attempt, fe)
}

func (w *Worker) finish(ctx context.Context, job database.FetchJob, status, lastError string) {
	w.finishAttempt(ctx, job, status, lastError, job.AttemptCount, time.Now().UTC())
}

func (w *Worker) finishAttempt(ctx context.Context, job database.FetchJob, status, lastError string, attempts int32, nextEligible time.Time) {
	_, err := w.store.UpdateFetchJobState(ctx, database.UpdateFetchJobStateParams{
		ID:             job.ID,
		Status:         status,
		AttemptCount:   attempts,
		LastError:      lastError,
		NextEligibleAt: nextEligible,
	})
	if err != nil && ctx.Err() == nil {
		log.Printf("worker: updating job %s to %s: %v", job.ID, status, err)
	}
}

func (w *Worker) writePlaceholder(ctx context.Context, job database.FetchJob, private bool) {
	if _, err := w.normalizer.WritePlaceholder(ctx, job.Handle, job.Platform, private); err != nil {
		log.Printf("worker: writing placeholder for %s/%s: %v", job.Platform, job.Handle, err)
	}
}
