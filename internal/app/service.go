// Package service wires the planning engine to storage, caching and the
// background replan workers, and implements what the HTTP API needs.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/letokens/internal/adapters/cache"
	eventqueue "github.com/okian/letokens/internal/adapters/mq/queue"
	workerpool "github.com/okian/letokens/internal/adapters/mq/worker"
	"github.com/okian/letokens/internal/adapters/repository"
	"github.com/okian/letokens/internal/catalog"
	"github.com/okian/letokens/internal/domain/dedupe"
	"github.com/okian/letokens/internal/domain/model"
	"github.com/okian/letokens/internal/domain/projection"
	"github.com/okian/letokens/internal/domain/report"
	"github.com/okian/letokens/internal/domain/setcover"
	"github.com/okian/letokens/internal/domain/tokens"
	"github.com/okian/letokens/pkg/logger"
	"github.com/okian/letokens/pkg/metrics"
)

const planCacheName = "plan"

// Service implements the API dependencies of the token planner.
type Service struct {
	mu sync.RWMutex

	store     *repository.MemoryStore
	deduper   dedupe.Deduper
	queue     *eventqueue.InMemoryQueue
	pool      *workerpool.Pool
	plans     *cache.TTLCache[report.Report]
	catalog   *catalog.Catalog
	projector projection.Projector
	clock     tokens.Clock
	now       func() time.Time

	workerCount   int
	queueSize     int
	dedupeSize    int
	dedupeTTL     time.Duration
	planCacheSize int
	planCacheTTL  time.Duration

	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// Submission is the outcome of SubmitProgress.
type Submission struct {
	UserID    string
	Version   int64
	Duplicate bool
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU(),
		queueSize:     10_000,
		dedupeSize:    100_000,
		dedupeTTL:     10 * time.Minute,
		planCacheSize: 10_000,
		planCacheTTL:  time.Minute,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock.Stage == 0 {
		s.clock = tokens.New(s.now(), 1)
	}
	return s
}

// Start creates the components and starts the workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.catalog == nil {
		c, err := catalog.Default()
		if err != nil {
			return fmt.Errorf("start service: %w", err)
		}
		s.catalog = c
	}
	s.projector = projection.New(s.catalog.Tables)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.store = repository.NewMemoryStore(runCtx)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize), dedupe.WithTTL(s.dedupeTTL))
	s.plans = cache.New[report.Report](planCacheName, s.planCacheTTL, s.planCacheSize)
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s)
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "token planner service started",
		logger.String("catalog", s.catalog.Name),
		logger.Int("stage", s.clock.Stage),
		logger.String("stage_start", s.clock.Start.Format(time.RFC3339)),
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
	)
	return nil
}

// Stop drains the workers and releases background loops.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping token planner service")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	_ = s.store.Close()
	s.deduper.Close()
	s.plans.Close()
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "token planner service stopped")
}

func (s *Service) running() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// SubmitProgress stores the progress of a user and schedules a replan.
// A non-empty submissionID makes the call idempotent: a repeated ID is
// acknowledged as a duplicate without storing anything.
func (s *Service) SubmitProgress(ctx context.Context, submissionID string, snap report.Snapshot) (Submission, error) {
	if err := s.running(); err != nil {
		return Submission{}, err
	}
	if _, err := uuid.Parse(snap.UserID); err != nil {
		return Submission{}, fmt.Errorf("%w: %q", ErrInvalidUser, snap.UserID)
	}
	sub := Submission{UserID: snap.UserID}

	if submissionID != "" && s.deduper.SeenAndRecord(ctx, submissionID) {
		metrics.RecordProgressDuplicate()
		sub.Duplicate = true
		return sub, nil
	}

	snap.SubmittedAt = s.now()
	version, err := s.store.PutSnapshot(ctx, snap)
	if err != nil {
		s.forget(ctx, submissionID)
		return Submission{}, fmt.Errorf("store progress: %w", err)
	}
	sub.Version = version

	if err := s.queue.Enqueue(ctx, eventqueue.Job{UserID: snap.UserID, Version: version}); err != nil {
		s.forget(ctx, submissionID)
		s.logger.Warn(ctx, "replan not scheduled", logger.String("user_id", snap.UserID), logger.Error(err))
		return sub, fmt.Errorf("%w: %w", ErrBackpressure, err)
	}

	metrics.RecordProgressSubmitted()
	return sub, nil
}

func (s *Service) forget(ctx context.Context, submissionID string) {
	if submissionID != "" {
		s.deduper.Unrecord(ctx, submissionID)
	}
}

// Replan rebuilds the stored plan of job's user. Jobs for an outdated
// snapshot are skipped; the newer snapshot has its own job.
func (s *Service) Replan(ctx context.Context, job eventqueue.Job) error {
	snap, version, err := s.store.Snapshot(ctx, job.UserID)
	if err != nil {
		return err
	}
	if version > job.Version {
		s.logger.Debug(ctx, "skipping outdated replan",
			logger.String("user_id", job.UserID), logger.Any("version", job.Version))
		return nil
	}
	r := s.build(&snap, "worker")
	if _, err := s.store.PutReport(ctx, r); err != nil {
		metrics.RecordPlanError()
		return fmt.Errorf("store report: %w", err)
	}
	return nil
}

func (s *Service) build(snap *report.Snapshot, source string) report.Report {
	start := time.Now()
	r := report.Build(uuid.NewString(), snap, s.projector, s.clock, s.now())
	metrics.RecordPlanBuilt(source, float64(time.Since(start).Milliseconds()), len(r.Tokens))
	return r
}

// Report returns the latest plan of a stored user, building it on the spot
// when the workers have not got to it yet.
func (s *Service) Report(ctx context.Context, userID string) (report.Report, error) {
	if err := s.running(); err != nil {
		return report.Report{}, err
	}
	if _, err := uuid.Parse(userID); err != nil {
		return report.Report{}, fmt.Errorf("%w: %q", ErrInvalidUser, userID)
	}

	r, err := s.store.Report(ctx, userID)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return report.Report{}, err
	}

	snap, _, err := s.store.Snapshot(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return report.Report{}, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	if err != nil {
		return report.Report{}, err
	}
	r = s.build(&snap, "request")
	if _, err := s.store.PutReport(ctx, r); err != nil {
		s.logger.Warn(ctx, "on-demand report not stored", logger.String("user_id", userID), logger.Error(err))
	}
	return r, nil
}

// planKey identifies a stateless plan request. Budgets only change with
// the clock, so the minute is part of the key.
type planKey struct {
	Snapshot report.Snapshot
	Minute   int64
}

// BuildReport plans snap without storing it. Identical requests within
// the cache TTL share one result; cached reports whether it was reused.
func (s *Service) BuildReport(ctx context.Context, snap report.Snapshot) (r report.Report, cached bool, err error) {
	if err := s.running(); err != nil {
		return report.Report{}, false, err
	}
	snap.SubmittedAt = time.Time{}
	key, err := cache.Key(planKey{Snapshot: snap, Minute: s.now().Unix() / 60})
	if err != nil {
		return report.Report{}, false, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	r, created, err := cache.GetOrCreate(ctx, s.plans, key, func() (report.Report, error) {
		return s.build(&snap, "request"), nil
	})
	if err != nil {
		metrics.RecordPlanError()
		return report.Report{}, false, err
	}
	return r, !created, nil
}

// MinimumTokens returns the fewest tokens needed to fully clear a battle.
// When track is non-empty only the teams usable on that track and battle
// count; otherwise teams are taken as given.
func (s *Service) MinimumTokens(_ context.Context, teams []model.Team, track string, battle int) (int, bool) {
	if track != "" {
		teams = setcover.UsableTeams(track, battle, teams)
	}
	n, ok := setcover.MinimumTokensToClearBattle(teams)
	metrics.RecordSetCover(ok)
	return n, ok
}

// TokenSummary returns the token budget left at now.
func (s *Service) TokenSummary(premiums []bool) tokens.Summary {
	return s.clock.Summarize(s.now(), premiums)
}

// TokenIteration returns the zero-based iteration token number index
// falls into.
func (s *Service) TokenIteration(index, used int, premiums []bool) (int, bool) {
	return s.clock.IterationForToken(index, used, s.now(), premiums)
}

// Project runs the milestone cascade for in and the next goal beyond it.
func (s *Service) Project(in projection.Input, totalPoints int) (model.EventProgress, projection.Goal, error) {
	if err := s.running(); err != nil {
		return model.EventProgress{}, projection.Goal{}, err
	}
	if in.Points < 0 || in.MissionCurrency < 0 || in.BundleCurrency < 0 {
		return model.EventProgress{}, projection.Goal{}, fmt.Errorf("%w: negative amounts", ErrInvalidInput)
	}
	p := s.projector.Project(in)
	return p, s.projector.Goal(p, in, totalPoints), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"stage":       s.clock.Stage,
		"stageStart":  s.clock.Start.Format(time.RFC3339),
	}
	if s.started {
		ctx := context.Background()
		st := s.store.Stats()
		stats["catalog"] = s.catalog.Name
		stats["queueLength"] = s.queue.Len(ctx)
		stats["activeWorkers"] = s.pool.Active()
		stats["users"] = s.store.Count(ctx)
		stats["reports"] = st.Reports
		stats["stalePlans"] = st.Stale
		stats["cachedPlans"] = s.plans.Len()
		stats["dedupeSize"] = s.deduper.Size()
	}
	return stats
}

// QueueLen returns the number of pending replan jobs.
func (s *Service) QueueLen(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return 0
	}
	return s.queue.Len(ctx)
}
