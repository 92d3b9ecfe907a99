// Package setcover estimates how many tokens a battle costs: the smallest
// number of teams whose restrictions together cover every restriction.
package setcover

import (
	"math/bits"
	"slices"

	"github.com/okian/letokens/internal/domain/model"
)

// RestrictionsPerBattle is the number of restrictions a full clear needs.
const RestrictionsPerBattle = 5

// UsableTeams returns the teams on track that are expected to win battle n.
func UsableTeams(track string, n int, teams []model.Team) []model.Team {
	var out []model.Team
	for i := range teams {
		if teams[i].Track == track && teams[i].CanPlay(n) {
			out = append(out, teams[i])
		}
	}
	return out
}

// MinimumTokensToClearBattle returns the fewest teams needed to cover every
// restriction claimed by teams. ok is false when the teams together cover
// fewer than RestrictionsPerBattle restrictions, i.e. the battle cannot be
// fully cleared.
func MinimumTokensToClearBattle(teams []model.Team) (tokens int, ok bool) {
	index := make(map[string]int)
	masks := make([]uint64, 0, len(teams))
	for _, t := range teams {
		var m uint64
		for _, r := range t.Restrictions {
			bit, seen := index[r]
			if !seen {
				bit = len(index)
				index[r] = bit
			}
			if bit < 64 {
				m |= 1 << uint(bit)
			}
		}
		masks = append(masks, m)
	}
	if len(index) < RestrictionsPerBattle {
		return 0, false
	}
	// more than 64 distinct restrictions never happens in practice
	if len(index) > 64 {
		return 0, false
	}

	masks = undominated(masks)
	s := &search{masks: masks, full: fullMask(len(index)), best: len(masks) + 1}
	s.cover(0, 0)
	return s.best, true
}

func fullMask(n int) uint64 {
	if n == 64 {
		return ^uint64(0)
	}
	return 1<<uint(n) - 1
}

// undominated drops empty masks, duplicates and masks contained in another
// one. A minimum cover never needs them.
func undominated(masks []uint64) []uint64 {
	sorted := slices.Clone(masks)
	slices.SortFunc(sorted, func(a, b uint64) int {
		return bits.OnesCount64(b) - bits.OnesCount64(a)
	})
	out := make([]uint64, 0, len(sorted))
	for _, m := range sorted {
		if m == 0 {
			continue
		}
		dominated := false
		for _, k := range out {
			if m&k == m {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, m)
		}
	}
	return out
}

type search struct {
	masks []uint64
	full  uint64
	best  int
}

// cover branches on the lowest uncovered restriction: one of the teams
// claiming it must be part of any cover. Branches stop once they cannot
// beat best.
func (s *search) cover(covered uint64, count int) {
	if covered == s.full {
		s.best = min(s.best, count)
		return
	}
	if count+1 >= s.best {
		return
	}
	need := uint64(1) << uint(bits.TrailingZeros64(s.full&^covered))
	for _, m := range s.masks {
		if m&need != 0 {
			s.cover(covered|m, count+1)
		}
	}
}
