// Package tokens computes how many event tokens a player still receives,
// per iteration and across the whole three-stage event.
//
// All functions take "now" explicitly; the package never reads the wall
// clock.
package tokens

import "time"

// Event timing constants.
const (
	IterationLength = 7 * 24 * time.Hour
	FreeRegen       = 3 * time.Hour
	AdRegen         = 24 * time.Hour
	FreeBonus       = 6
	PremiumTokens   = 6
	Stages          = 3
)

// Full per-iteration allotments.
var (
	FreeTokensPerIteration = int(IterationLength/FreeRegen) - 1 + FreeBonus
	AdTokensPerIteration   = int(IterationLength/AdRegen) - 1
	// MaxTokensPerIteration is the most a player can spend in one iteration.
	MaxTokensPerIteration = FreeTokensPerIteration + AdTokensPerIteration + PremiumTokens
)

type phase int

const (
	phaseBefore phase = iota
	phaseDuring
	phaseAfter
)

// Clock describes one iteration of the event: when it starts and which of
// the three stages it is (1-based).
type Clock struct {
	Start time.Time
	Stage int
}

// New returns a clock for the given iteration start and stage.
func New(start time.Time, stage int) Clock {
	return Clock{Start: start, Stage: stage}
}

// End returns the end of the iteration.
func (c Clock) End() time.Time {
	return c.Start.Add(IterationLength)
}

func (c Clock) validStage() bool {
	return c.Stage >= 1 && c.Stage <= Stages
}

func (c Clock) phase(now time.Time) phase {
	switch {
	case now.Before(c.Start):
		return phaseBefore
	case now.Before(c.End()):
		return phaseDuring
	default:
		return phaseAfter
	}
}

func (c Clock) remaining(now time.Time, regen time.Duration, full int) int {
	switch c.phase(now) {
	case phaseBefore:
		return full
	case phaseDuring:
		return int(c.End().Sub(now) / regen)
	default:
		return 0
	}
}

// FreeTokensRemainingInIteration returns the free tokens still to regenerate
// in this iteration.
func (c Clock) FreeTokensRemainingInIteration(now time.Time) int {
	return c.remaining(now, FreeRegen, FreeTokensPerIteration)
}

// AdTokensRemainingInIteration returns the ad tokens still available in this
// iteration.
func (c Clock) AdTokensRemainingInIteration(now time.Time) int {
	return c.remaining(now, AdRegen, AdTokensPerIteration)
}

// PremiumTokensRemainingInIteration returns the premium lump, granted only
// when the premium track was bought and the iteration has not started.
func (c Clock) PremiumTokensRemainingInIteration(now time.Time, premium bool) int {
	if premium && c.phase(now) == phaseBefore {
		return PremiumTokens
	}
	return 0
}

func (c Clock) futureStages() int {
	return Stages - c.Stage
}

// FreeTokensRemainingInEvent adds full allotments for every future stage.
func (c Clock) FreeTokensRemainingInEvent(now time.Time) int {
	if !c.validStage() {
		return 0
	}
	return c.FreeTokensRemainingInIteration(now) + c.futureStages()*FreeTokensPerIteration
}

// AdTokensRemainingInEvent adds full allotments for every future stage.
func (c Clock) AdTokensRemainingInEvent(now time.Time) int {
	if !c.validStage() {
		return 0
	}
	return c.AdTokensRemainingInIteration(now) + c.futureStages()*AdTokensPerIteration
}

// PremiumTokensRemainingInEvent sums the premium lumps still to be granted.
// premiums[i] reports whether stage i+1 was pre-purchased.
func (c Clock) PremiumTokensRemainingInEvent(now time.Time, premiums []bool) int {
	if !c.validStage() {
		return 0
	}
	total := c.PremiumTokensRemainingInIteration(now, purchased(premiums, c.Stage-1))
	for stage := c.Stage + 1; stage <= Stages; stage++ {
		if purchased(premiums, stage-1) {
			total += PremiumTokens
		}
	}
	return total
}

// IterationForToken returns the zero-based iteration in which the player
// spends token number tokenIndex. The ordinal counts from the start of the
// current iteration, so usedThisIteration tokens are already behind it.
// ok is false when the ordinal lies beyond every stage. usedThisIteration
// is clamped to MaxTokensPerIteration.
//
// The current iteration reads premiums[Stage-1] while later iterations read
// premiums by their one-based stage number. The mismatch is kept as is.
func (c Clock) IterationForToken(tokenIndex, usedThisIteration int, now time.Time, premiums []bool) (int, bool) {
	if !c.validStage() || tokenIndex < 0 {
		return 0, false
	}
	usedThisIteration = min(max(usedThisIteration, 0), MaxTokensPerIteration)

	available := usedThisIteration +
		c.FreeTokensRemainingInIteration(now) +
		c.AdTokensRemainingInIteration(now) +
		c.PremiumTokensRemainingInIteration(now, purchased(premiums, c.Stage-1))
	if tokenIndex < available {
		return c.Stage - 1, true
	}

	for iteration := c.Stage; iteration < Stages; iteration++ {
		available += FreeTokensPerIteration + AdTokensPerIteration
		if purchased(premiums, iteration+1) {
			available += PremiumTokens
		}
		if tokenIndex < available {
			return iteration, true
		}
	}
	return 0, false
}

func purchased(premiums []bool, i int) bool {
	return i >= 0 && i < len(premiums) && premiums[i]
}

// Summary is the token budget at a point in time.
type Summary struct {
	FreeInIteration    int `json:"free_in_iteration"`
	AdInIteration      int `json:"ad_in_iteration"`
	PremiumInIteration int `json:"premium_in_iteration"`
	FreeInEvent        int `json:"free_in_event"`
	AdInEvent          int `json:"ad_in_event"`
	PremiumInEvent     int `json:"premium_in_event"`
	TotalInEvent       int `json:"total_in_event"`
}

// Summarize computes every counter for now.
func (c Clock) Summarize(now time.Time, premiums []bool) Summary {
	s := Summary{
		FreeInEvent:    c.FreeTokensRemainingInEvent(now),
		AdInEvent:      c.AdTokensRemainingInEvent(now),
		PremiumInEvent: c.PremiumTokensRemainingInEvent(now, premiums),
	}
	if c.validStage() {
		s.FreeInIteration = c.FreeTokensRemainingInIteration(now)
		s.AdInIteration = c.AdTokensRemainingInIteration(now)
		s.PremiumInIteration = c.PremiumTokensRemainingInIteration(now, purchased(premiums, c.Stage-1))
	}
	s.TotalInEvent = s.FreeInEvent + s.AdInEvent + s.PremiumInEvent
	return s
}
