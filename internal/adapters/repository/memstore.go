package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/letokens/internal/domain/model"
	"github.com/okian/letokens/internal/domain/report"
	"github.com/okian/letokens/pkg/metrics"
)

type userRecord struct {
	snapshot  report.Snapshot
	version   int64
	report    report.Report
	hasReport bool
	// snapshot version the report was requested for
	reportVersion int64
}

// MemoryStore is an in-memory Store. Reads of aggregate stats never take
// the write lock; they use the snapshot published by a background loop.
type MemoryStore struct {
	mu            sync.RWMutex
	byID          map[string]*userRecord
	statsInterval time.Duration

	stats atomic.Pointer[Stats]

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs a store and starts its stats loop, which ends
// with ctx or Close.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byID:          make(map[string]*userRecord),
		statsInterval: time.Second,
		stopChan:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.publishStats()
	s.startStatsLoop(ctx)
	return s
}

func (s *MemoryStore) startStatsLoop(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.statsInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.publishStats()
			}
		}
	}()
}

func (s *MemoryStore) publishStats() {
	s.mu.RLock()
	st := Stats{Users: len(s.byID), PublishedAt: time.Now()}
	for _, rec := range s.byID {
		if rec.hasReport {
			st.Reports++
			if rec.reportVersion < rec.version {
				st.Stale++
			}
		} else {
			st.Stale++
		}
	}
	s.mu.RUnlock()

	s.stats.Store(&st)
	metrics.UpdateStoredUsers(st.Users)
}

// Close stops the stats loop.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// PutSnapshot implements Store.PutSnapshot.
func (s *MemoryStore) PutSnapshot(_ context.Context, snap report.Snapshot) (int64, error) {
	if snap.UserID == "" {
		return 0, ErrInvalidUser
	}
	snap = cloneSnapshot(snap)

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[snap.UserID]
	if !ok {
		rec = &userRecord{}
		s.byID[snap.UserID] = rec
	}
	rec.snapshot = snap
	rec.version++
	return rec.version, nil
}

// Snapshot implements Store.Snapshot.
func (s *MemoryStore) Snapshot(_ context.Context, userID string) (report.Snapshot, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[userID]
	if !ok {
		return report.Snapshot{}, 0, ErrNotFound
	}
	return cloneSnapshot(rec.snapshot), rec.version, nil
}

// PutReport implements Store.PutReport.
func (s *MemoryStore) PutReport(_ context.Context, r report.Report) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[r.UserID]
	if !ok {
		return false, ErrNotFound
	}
	if rec.hasReport && rec.report.GeneratedAt.After(r.GeneratedAt) {
		return false, nil
	}
	rec.report = r
	rec.hasReport = true
	rec.reportVersion = rec.version
	return true, nil
}

// Report implements Store.Report.
func (s *MemoryStore) Report(_ context.Context, userID string) (report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[userID]
	if !ok || !rec.hasReport {
		return report.Report{}, ErrNotFound
	}
	return rec.report, nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Stats returns the last published stats.
func (s *MemoryStore) Stats() Stats {
	return *s.stats.Load()
}

func cloneSnapshot(snap report.Snapshot) report.Snapshot {
	snap.Tracks = model.CloneTracks(snap.Tracks)
	teams := make([]model.Team, len(snap.Teams))
	for i, t := range snap.Teams {
		t.Restrictions = append([]string(nil), t.Restrictions...)
		teams[i] = t
	}
	snap.Teams = teams
	snap.Premiums = append([]bool(nil), snap.Premiums...)
	return snap
}
