// Package repository keeps the latest progress snapshot and plan report of
// every user.
package repository

import (
	"context"
	"time"

	"github.com/okian/letokens/internal/domain/report"
)

// Stats is a periodically published view of the store.
type Stats struct {
	Users       int
	Reports     int
	Stale       int // users whose report predates their snapshot
	PublishedAt time.Time
}

// Store provides read/write access to user progress and plans.
type Store interface {
	// PutSnapshot stores a copy of snap and returns its version, starting at 1.
	PutSnapshot(ctx context.Context, snap report.Snapshot) (int64, error)
	// Snapshot returns the latest snapshot of a user and its version.
	// Returns ErrNotFound if the user is unknown.
	Snapshot(ctx context.Context, userID string) (report.Snapshot, int64, error)

	// PutReport stores r unless a report generated later is already held.
	// Returns true if r was stored.
	PutReport(ctx context.Context, r report.Report) (bool, error)
	// Report returns the latest report of a user.
	// Returns ErrNotFound if no report was built yet.
	Report(ctx context.Context, userID string) (report.Report, error)

	// Count returns the number of users with a snapshot.
	Count(ctx context.Context) int

	Stats() Stats
}
