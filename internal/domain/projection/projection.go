// Package projection cascades cumulative points through the event's
// milestone tables: points to currency, currency to chests and shards,
// shards to ascension tiers.
package projection

import (
	"fmt"
	"math"

	"github.com/okian/letokens/internal/domain/model"
)

// Tables holds the static milestone tables of one event. Every table is
// ordered by its threshold and consulted in that order.
type Tables struct {
	Points    []model.PointMilestone
	Chests    []model.ChestMilestone
	Ascension []model.AscensionMilestone
	// PremiumBonus is added to every point milestone payout once a premium
	// mission track was bought.
	PremiumBonus int
}

// Input is what the projection starts from.
type Input struct {
	Points           int
	PremiumPurchased bool
	MissionCurrency  int
	BundleCurrency   int
}

// Projector evaluates milestone tables. It holds no mutable state.
type Projector struct {
	tables Tables
}

// New returns a projector over tables.
func New(tables Tables) Projector {
	return Projector{tables: tables}
}

// Tables returns the tables the projector was built with.
func (p Projector) Tables() Tables {
	return p.tables
}

func (p Projector) payout(m model.PointMilestone, premium bool) int {
	if premium {
		return m.Currency + p.tables.PremiumBonus
	}
	return m.Currency
}

// Project computes the event progress reached with in.
func (p Projector) Project(in Input) model.EventProgress {
	out := model.EventProgress{Points: in.Points, LastClaimedChest: -1}

	for _, m := range p.tables.Points {
		if m.Points > in.Points {
			break
		}
		out.Currency += p.payout(m, in.PremiumPurchased)
		out.PointMilestones++
	}
	out.Currency += in.MissionCurrency + in.BundleCurrency

	available := out.Currency
	for i, c := range p.tables.Chests {
		if c.EngramCost > available {
			break
		}
		available -= c.EngramCost
		out.Shards += c.Shards
		out.Chests++
		out.LastClaimedChest = i
	}

	shards := float64(out.Shards)
	for _, a := range p.tables.Ascension {
		if a.IncrementalShards > shards {
			break
		}
		shards -= a.IncrementalShards
		out.Tier++
		out.TierName = a.Goal
		out.Rarity = a.Rarity
		out.Stars = a.Stars
	}
	return out
}

// Goal is the next ascension target and what it takes to get there.
type Goal struct {
	Name string
	// Cumulative amounts required to reach the goal. Shards, chests and
	// currency are zero for a full clear.
	Shards   float64
	Chests   int
	Currency int
	Points   int
	// Reachable is false when the tables or the track totals cannot
	// provide the goal.
	Reachable bool
}

// Goal returns the next unmet ascension tier after progress. An unknown
// tier requirement, or having reached the top tier, makes the goal a full
// clear worth totalPoints.
func (p Projector) Goal(progress model.EventProgress, in Input, totalPoints int) Goal {
	asc := p.tables.Ascension
	if progress.Tier >= len(asc) || math.IsInf(asc[progress.Tier].IncrementalShards, 1) {
		return Goal{Name: model.GoalFullClear, Points: totalPoints, Reachable: true}
	}

	g := Goal{Name: asc[progress.Tier].Goal, Reachable: true}
	for _, a := range asc[:progress.Tier+1] {
		g.Shards += a.IncrementalShards
	}

	shards := 0
	for _, c := range p.tables.Chests {
		if float64(shards) >= g.Shards {
			break
		}
		shards += c.Shards
		g.Currency += c.EngramCost
		g.Chests++
	}
	if float64(shards) < g.Shards {
		g.Reachable = false
		return g
	}

	need := g.Currency - in.MissionCurrency - in.BundleCurrency
	currency := 0
	for _, m := range p.tables.Points {
		if currency >= need {
			break
		}
		currency += p.payout(m, in.PremiumPurchased)
		g.Points = m.Points
	}
	if currency < need || (totalPoints > 0 && g.Points > totalPoints) {
		g.Reachable = false
	}
	return g
}

// TokenProjection reports the state after one planned token.
type TokenProjection struct {
	Progress model.EventProgress
	// Milestones newly crossed by this token.
	NewPointMilestones int
	NewChests          int
	// NewTier is the highest tier newly reached, empty when none.
	NewTier string
}

// ProjectTokens replays uses on top of in and reports, per token, which
// milestones it crosses.
func (p Projector) ProjectTokens(in Input, uses []model.TokenUse) []TokenProjection {
	out := make([]TokenProjection, 0, len(uses))
	prev := p.Project(in)
	for _, u := range uses {
		in.Points += u.IncrementalPoints
		cur := p.Project(in)
		tp := TokenProjection{
			Progress:           cur,
			NewPointMilestones: cur.PointMilestones - prev.PointMilestones,
			NewChests:          cur.Chests - prev.Chests,
		}
		if cur.Tier > prev.Tier {
			tp.NewTier = cur.TierName
		}
		out = append(out, tp)
		prev = cur
	}
	return out
}

// Validate checks that every table is strictly increasing.
func Validate(t Tables) error {
	if t.PremiumBonus < 0 {
		return fmt.Errorf("%w: negative premium bonus", ErrInvalidTables)
	}
	for i, m := range t.Points {
		if m.Currency < 0 {
			return fmt.Errorf("%w: point milestone %d pays negative currency", ErrInvalidTables, i)
		}
		if i > 0 && m.Points <= t.Points[i-1].Points {
			return fmt.Errorf("%w: point milestone %d is not above milestone %d", ErrInvalidTables, i, i-1)
		}
	}
	for i, c := range t.Chests {
		if c.EngramCost <= 0 || c.Shards < 0 {
			return fmt.Errorf("%w: chest %d needs a positive cost", ErrInvalidTables, i)
		}
	}
	for i, a := range t.Ascension {
		if a.Goal == "" {
			return fmt.Errorf("%w: ascension tier %d has no goal", ErrInvalidTables, i)
		}
		if math.IsNaN(a.IncrementalShards) || a.IncrementalShards <= 0 {
			return fmt.Errorf("%w: ascension tier %d needs positive shards", ErrInvalidTables, i)
		}
	}
	return nil
}
