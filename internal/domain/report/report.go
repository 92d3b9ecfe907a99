// Package report composes the planner, the token clock, the set-cover
// solver and the milestone projector into one plan for a player.
package report

import (
	"time"

	"github.com/okian/letokens/internal/domain/model"
	"github.com/okian/letokens/internal/domain/planner"
	"github.com/okian/letokens/internal/domain/progress"
	"github.com/okian/letokens/internal/domain/projection"
	"github.com/okian/letokens/internal/domain/setcover"
	"github.com/okian/letokens/internal/domain/tokens"
)

// Snapshot is the player state a report is built from.
type Snapshot struct {
	UserID   string
	Tracks   []model.Track
	Teams    []model.Team
	Premiums []bool // premium missions bought, per stage
	// Currency already owned from missions and bundles.
	MissionCurrency int
	BundleCurrency  int
	// UsedThisIteration is how many tokens were already spent in the
	// current iteration.
	UsedThisIteration int
	SubmittedAt       time.Time
}

// Input returns the projection input of the snapshot at points.
func (s *Snapshot) Input(points int) projection.Input {
	return projection.Input{
		Points:           points,
		PremiumPurchased: anyPurchased(s.Premiums),
		MissionCurrency:  s.MissionCurrency,
		BundleCurrency:   s.BundleCurrency,
	}
}

// anyPurchased reports whether any premium mission track was bought; the
// premium currency bonus applies to all milestones once one is.
func anyPurchased(premiums []bool) bool {
	for _, p := range premiums {
		if p {
			return true
		}
	}
	return false
}

// TrackSummary describes one track of the snapshot.
type TrackSummary struct {
	Name          string
	Points        int
	MaxPoints     int
	LowestBattle  int // progress.NoBattle when cleared
	HighestBattle int
	// MinimumTokens to clear LowestBattle with the usable teams;
	// MinimumKnown is false when no combination of teams covers it.
	MinimumTokens int
	MinimumKnown  bool
}

// PlannedToken is one token of the plan with its consequences.
type PlannedToken struct {
	Index        int
	Iteration    int // zero-based event iteration the token falls in
	Team         string
	Track        string
	Battle       int
	Points       int
	Requirements []string
	// Cumulative points and newly crossed milestones after this token.
	TotalPoints        int
	NewPointMilestones int
	NewChests          int
	NewTier            string
}

// Report is a complete plan for one snapshot.
type Report struct {
	ID          string
	UserID      string
	GeneratedAt time.Time
	Tracks      []TrackSummary
	Budget      tokens.Summary
	Tokens      []PlannedToken
	// Unfunded counts worthwhile tokens beyond the remaining budget.
	Unfunded  int
	Current   model.EventProgress
	Projected model.EventProgress
	Goal      projection.Goal
}

// Build plans snap. Tokens are capped at what the clock says is still
// available in the event.
func Build(id string, snap *Snapshot, p projection.Projector, clock tokens.Clock, now time.Time) Report {
	r := Report{
		ID:          id,
		UserID:      snap.UserID,
		GeneratedAt: now,
		Budget:      clock.Summarize(now, snap.Premiums),
		Tracks:      make([]TrackSummary, 0, len(snap.Tracks)),
	}

	points, maxPoints := 0, 0
	for i := range snap.Tracks {
		ts := summarizeTrack(&snap.Tracks[i], snap.Teams)
		points += ts.Points
		maxPoints += ts.MaxPoints
		r.Tracks = append(r.Tracks, ts)
	}

	uses := planner.AllTokenUsage(snap.Tracks, snap.Teams)
	if len(uses) > r.Budget.TotalInEvent {
		r.Unfunded = len(uses) - r.Budget.TotalInEvent
		uses = uses[:r.Budget.TotalInEvent]
	}

	in := snap.Input(points)
	r.Current = p.Project(in)
	r.Projected = r.Current
	r.Tokens = make([]PlannedToken, 0, len(uses))
	for i, tp := range p.ProjectTokens(in, uses) {
		u := uses[i]
		// ordinals count from the start of the iteration, after the tokens
		// already spent in it
		iteration, _ := clock.IterationForToken(snap.UsedThisIteration+i, snap.UsedThisIteration, now, snap.Premiums)
		r.Tokens = append(r.Tokens, PlannedToken{
			Index:              i,
			Iteration:          iteration,
			Team:               u.Team.Name,
			Track:              u.Track,
			Battle:             u.Battle,
			Points:             u.IncrementalPoints,
			Requirements:       u.RequirementsCleared,
			TotalPoints:        tp.Progress.Points,
			NewPointMilestones: tp.NewPointMilestones,
			NewChests:          tp.NewChests,
			NewTier:            tp.NewTier,
		})
		r.Projected = tp.Progress
	}

	r.Goal = p.Goal(r.Projected, in, maxPoints)
	return r
}

func summarizeTrack(t *model.Track, teams []model.Team) TrackSummary {
	ts := TrackSummary{
		Name:          t.Name,
		Points:        progress.CurrentPoints(t),
		MaxPoints:     progress.TotalPoints(t),
		LowestBattle:  progress.LowestAvailableBattle(t),
		HighestBattle: progress.HighestAvailableBattle(t),
	}
	if ts.LowestBattle != progress.NoBattle {
		ts.MinimumTokens, ts.MinimumKnown = setcover.MinimumTokensToClearBattle(
			setcover.UsableTeams(t.Name, ts.LowestBattle, teams))
	}
	return ts
}
