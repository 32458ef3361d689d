package worker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluffyriot/profilescope/internal/database"
	"github.com/fluffyriot/profilescope/internal/fetcher"
	"github.com/fluffyriot/profilescope/internal/ingest"
)

type fakeStore struct {
	created []database.CreateFetchJobParams
	updates []database.UpdateFetchJobStateParams
	profile database.Profile
}

func (f *fakeStore) CreateFetchJob(ctx context.Context, arg database.CreateFetchJobParams) (database.FetchJob, error) {
	f.created = append(f.created, arg)
	return database.FetchJob{
		ID: arg.ID, Handle: arg.Handle, Platform: arg.Platform,
		JobType: arg.JobType, Status: StatusPending, NextEligibleAt: arg.NextEligibleAt,
	}, nil
}

func (f *fakeStore) ClaimDueJob(ctx context.Context) (database.FetchJob, error) {
	return database.FetchJob{}, context.Canceled
}

func (f *fakeStore) UpdateFetchJobState(ctx context.Context, arg database.UpdateFetchJobStateParams) (database.FetchJob, error) {
	f.updates = append(f.updates, arg)
	return database.FetchJob{ID: arg.ID, Status: arg.Status, AttemptCount: arg.AttemptCount}, nil
}

func (f *fakeStore) RescueOrphanedJobs(ctx context.Context, olderThan time.Duration) (int64, error) {
	return 0, nil
}

func (f *fakeStore) GetProfileByHandleAndPlatform(ctx context.Context, arg database.GetProfileByHandleAndPlatformParams) (database.Profile, error) {
	return f.profile, nil
}

type fakeFetcher struct {
	res *fetcher.RawFetchResult
	err error
}

func (f *fakeFetcher) Fetch(ctx context.Context, handle string) (*fetcher.RawFetchResult, error) {
	return f.res, f.err
}

type fakeNormalizer struct {
	placeholders []bool
	normalized   int
	err          error
}

func (f *fakeNormalizer) Normalize(ctx context.Context, raw *fetcher.RawFetchResult, platform string) (*ingest.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.normalized++
	return &ingest.Result{Profile: database.Profile{Handle: "alice", Platform: platform}}, nil
}

func (f *fakeNormalizer) WritePlaceholder(ctx context.Context, handle, platform string, private bool) (*database.Profile, error) {
	f.placeholders = append(f.placeholders, private)
	return &database.Profile{Handle: handle, Platform: platform}, nil
}

type fakeAnalyzer struct {
	calls int
	err   error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, profileID uuid.UUID) (database.BehaviorAnalysis, error) {
	f.calls++
	return database.BehaviorAnalysis{ProfileID: profileID}, f.err
}

func newTestWorker(store *fakeStore, n *fakeNormalizer, a *fakeAnalyzer, f Fetcher) *Worker {
	return New(store, n, a, map[string]Fetcher{"Twitter": f}, 1, time.Second)
}

func fetchJob(attempts int32) database.FetchJob {
	return database.FetchJob{
		ID: uuid.New(), Handle: "alice", Platform: "Twitter",
		JobType: JobTypeFetch, Status: StatusRunning, AttemptCount: attempts,
	}
}

func TestPolicyDelayDoublesAndCaps(t *testing.T) {
	p := RetryPolicy{BaseDelay: 10 * time.Second, MaxDelay: 60 * time.Second, RateLimitDelay: 600 * time.Second}

	assert.Equal(t, 20*time.Second, p.Delay(1, false))
	assert.Equal(t, 40*time.Second, p.Delay(2, false))
	assert.Equal(t, 60*time.Second, p.Delay(3, false), "capped")
	assert.Equal(t, 60*time.Second, p.Delay(10, false))
}

func TestPolicyDelayStrictlyIncreasesUntilCap(t *testing.T) {
	p := defaultPolicies["Twitter"]
	prev := time.Duration(0)
	for attempt := 1; attempt <= 4; attempt++ {
		d := p.Delay(attempt, false)
		if d < p.MaxDelay {
			assert.Greater(t, d, prev, "attempt %d", attempt)
		}
		prev = d
	}
}

func TestPolicyRateLimitOverridesSchedule(t *testing.T) {
	p := defaultPolicies["Instagram"]
	assert.Equal(t, p.RateLimitDelay, p.Delay(1, true))
	assert.Equal(t, p.RateLimitDelay, p.Delay(3, true))
}

func TestRunFetchSuccessEnqueuesAnalysis(t *testing.T) {
	store := &fakeStore{}
	norm := &fakeNormalizer{}
	w := newTestWorker(store, norm, &fakeAnalyzer{}, &fakeFetcher{res: &fetcher.RawFetchResult{}})

	w.runJob(context.Background(), fetchJob(0))

	assert.Equal(t, 1, norm.normalized)
	require.Len(t, store.updates, 1)
	assert.Equal(t, StatusSucceeded, store.updates[0].Status)

	require.Len(t, store.created, 1)
	assert.Equal(t, JobTypeAnalyze, store.created[0].JobType)
	assert.Equal(t, "alice", store.created[0].Handle)
}

func TestRunFetchNotFoundFailsTerminallyWithPlaceholder(t *testing.T) {
	store := &fakeStore{}
	norm := &fakeNormalizer{}
	w := newTestWorker(store, norm, &fakeAnalyzer{}, &fakeFetcher{err: fetcher.NotFoundErr("gone")})

	w.runJob(context.Background(), fetchJob(0))

	require.Len(t, store.updates, 1)
	assert.Equal(t, StatusFailed, store.updates[0].Status)
	require.Len(t, norm.placeholders, 1)
	assert.False(t, norm.placeholders[0])
	assert.Empty(t, store.created, "terminal failure schedules no analysis")
}

func TestRunFetchBlockedMarksPlaceholderPrivate(t *testing.T) {
	store := &fakeStore{}
	norm := &fakeNormalizer{}
	w := newTestWorker(store, norm, &fakeAnalyzer{}, &fakeFetcher{err: fetcher.BlockedErr("private account")})

	w.runJob(context.Background(), fetchJob(0))

	require.Len(t, norm.placeholders, 1)
	assert.True(t, norm.placeholders[0])
}

func TestRunFetchTransientSchedulesRetryWithBackoff(t *testing.T) {
	store := &fakeStore{}
	w := newTestWorker(store, &fakeNormalizer{}, &fakeAnalyzer{}, &fakeFetcher{err: fetcher.TransientErr("flaky")})

	before := time.Now().UTC()
	w.runJob(context.Background(), fetchJob(0))

	require.Len(t, store.updates, 1)
	up := store.updates[0]
	assert.Equal(t, StatusRetrying, up.Status)
	assert.Equal(t, int32(1), up.AttemptCount)

	wantDelay := defaultPolicies["Twitter"].Delay(1, false)
	assert.WithinDuration(t, before.Add(wantDelay), up.NextEligibleAt, 2*time.Second)
}

func TestRunFetchRateLimitedUsesFixedDelay(t *testing.T) {
	store := &fakeStore{}
	w := newTestWorker(store, &fakeNormalizer{}, &fakeAnalyzer{}, &fakeFetcher{err: fetcher.RateLimitedErr("429")})

	before := time.Now().UTC()
	w.runJob(context.Background(), fetchJob(1))

	require.Len(t, store.updates, 1)
	up := store.updates[0]
	assert.Equal(t, StatusRetrying, up.Status)
	assert.WithinDuration(t, before.Add(defaultPolicies["Twitter"].RateLimitDelay), up.NextEligibleAt, 2*time.Second)
}

func TestRunFetchExhaustedRetriesFailWithPlaceholder(t *testing.T) {
	store := &fakeStore{}
	norm := &fakeNormalizer{}
	w := newTestWorker(store, norm, &fakeAnalyzer{}, &fakeFetcher{err: fetcher.TransientErr("still flaky")})

	maxAttempts := defaultPolicies["Twitter"].MaxAttempts
	w.runJob(context.Background(), fetchJob(int32(maxAttempts)))

	require.Len(t, store.updates, 1)
	assert.Equal(t, StatusFailed, store.updates[0].Status)
	assert.Contains(t, store.updates[0].LastError, "retries exhausted")
	assert.Len(t, norm.placeholders, 1)
}

func TestTransientFailuresRecordFullBackoffSchedule(t *testing.T) {
	store := &fakeStore{}
	norm := &fakeNormalizer{}
	w := newTestWorker(store, norm, &fakeAnalyzer{}, &fakeFetcher{err: fetcher.TransientErr("always down")})

	pol := defaultPolicies["Twitter"]
	job := fetchJob(0)

	var delays []time.Duration
	for i := 0; ; i++ {
		require.Less(t, i, pol.MaxAttempts+2, "job never reached a terminal state")

		before := time.Now().UTC()
		w.runJob(context.Background(), job)

		up := store.updates[len(store.updates)-1]
		if up.Status == StatusFailed {
			break
		}
		require.Equal(t, StatusRetrying, up.Status)
		delays = append(delays, up.NextEligibleAt.Sub(before).Round(time.Second))

		job.AttemptCount = up.AttemptCount
		job.Status = StatusRunning
	}

	want := make([]time.Duration, 0, pol.MaxAttempts)
	for attempt := 1; attempt <= pol.MaxAttempts; attempt++ {
		want = append(want, pol.Delay(attempt, false))
	}
	assert.Equal(t, want, delays, "every attempt up to the limit gets its doubled delay")

	last := store.updates[len(store.updates)-1]
	assert.Contains(t, last.LastError, "retries exhausted")
	assert.Len(t, norm.placeholders, 1)
}

func TestRunAnalyzeCallsEngine(t *testing.T) {
	store := &fakeStore{profile: database.Profile{ID: uuid.New(), Handle: "alice", Platform: "Twitter"}}
	engine := &fakeAnalyzer{}
	w := newTestWorker(store, &fakeNormalizer{}, engine, &fakeFetcher{})

	job := fetchJob(0)
	job.JobType = JobTypeAnalyze
	w.runJob(context.Background(), job)

	assert.Equal(t, 1, engine.calls)
	require.Len(t, store.updates, 1)
	assert.Equal(t, StatusSucceeded, store.updates[0].Status)
}

func TestUnknownFetcherFailsJob(t *testing.T) {
	store := &fakeStore{}
	norm := &fakeNormalizer{}
	w := newTestWorker(store, norm, &fakeAnalyzer{}, &fakeFetcher{})

	job := fetchJob(0)
	job.Platform = "Friendster"
	w.runJob(context.Background(), job)

	require.Len(t, store.updates, 1)
	assert.Equal(t, StatusFailed, store.updates[0].Status)
	assert.Len(t, norm.placeholders, 1)
}

func TestSubmitCreatesFetchJob(t *testing.T) {
	store := &fakeStore{}
	w := newTestWorker(store, &fakeNormalizer{}, &fakeAnalyzer{}, &fakeFetcher{})

	job, err := w.Submit(context.Background(), "alice", "Twitter")
	require.NoError(t, err)
	assert.Equal(t, JobTypeFetch, job.JobType)
	assert.Equal(t, StatusPending, job.Status)
	require.Len(t, store.created, 1)
	assert.NotEqual(t, uuid.Nil, store.created[0].ID)
}
