// Package progress aggregates requirement state per track and locates the
// battles a player can currently attempt.
package progress

import (
	"github.com/okian/letokens/internal/domain/model"
	"github.com/okian/letokens/internal/domain/requirement"
)

// NoBattle is returned when a track has nothing left to attempt.
const NoBattle = -1

// CurrentPoints sums the points earned in every battle of the track.
func CurrentPoints(t *model.Track) int {
	total := 0
	for i := range t.Battles {
		total += BattlePoints(&t.Battles[i])
	}
	return total
}

// BattlePoints sums the points earned in one battle.
func BattlePoints(b *model.Battle) int {
	total := 0
	for _, r := range b.Requirements {
		total += requirement.Points(r)
	}
	return total
}

// TotalPoints returns the points a full clear of the track is worth.
func TotalPoints(t *model.Track) int {
	total := 0
	for _, b := range t.Battles {
		for _, r := range b.Requirements {
			total += r.Points
		}
	}
	return total
}

// LowestAvailableBattle returns the first battle number, counted from the
// playable end, that is not fully completed.
func LowestAvailableBattle(t *model.Track) int {
	for n := 0; n < t.Len(); n++ {
		if !t.Battle(n).Completed() {
			return n
		}
	}
	return NoBattle
}

// HighestAvailableBattle returns the furthest battle the player can reach.
// Clearing kill score unlocks the next battle, so this is the first battle
// whose kill score is still open; when every kill score is cleared it falls
// back to the last incomplete battle.
func HighestAvailableBattle(t *model.Track) int {
	for n := 0; n < t.Len(); n++ {
		kill := t.Battle(n).Requirement(model.KillPointsID)
		if kill != nil && kill.Status != model.Cleared {
			return n
		}
	}
	for n := t.Len() - 1; n >= 0; n-- {
		if !t.Battle(n).Completed() {
			return n
		}
	}
	return NoBattle
}
