// Package planner greedily allocates tokens to (track, battle, team)
// combinations and simulates a full sequence of token spends.
//
// The planner is greedy: each step takes the best next token, and the
// resulting sequence is not guaranteed to be globally optimal.
package planner

import (
	"github.com/okian/letokens/internal/domain/model"
	"github.com/okian/letokens/internal/domain/progress"
	"github.com/okian/letokens/internal/domain/requirement"
)

// candidate is one evaluated (track, battle, team) combination.
type candidate struct {
	team    *model.Team
	track   string
	battle  int
	points  int
	cleared []string
}

func (c candidate) use() model.TokenUse {
	return model.TokenUse{
		Team:                c.team,
		Track:               c.track,
		Battle:              c.battle,
		IncrementalPoints:   c.points,
		RequirementsCleared: c.cleared,
	}
}

// NextToken returns the single best next token use, or the empty sentinel
// when no combination gains points. last is the previously planned token
// and may be empty.
//
// Ties are broken by, in order: continuing last's team on the next battle
// of the same track, the lexicographically smaller track name, the higher
// battle number.
func NextToken(tracks []model.Track, teams []model.Team, last model.TokenUse) model.TokenUse {
	var best *candidate
	for ti := range tracks {
		track := &tracks[ti]
		low := progress.LowestAvailableBattle(track)
		if low == progress.NoBattle {
			continue
		}
		high := progress.HighestAvailableBattle(track)
		for n := low; n <= high; n++ {
			b := track.Battle(n)
			for i := range teams {
				t := &teams[i]
				if t.Track != track.Name || !t.CanPlay(n) {
					continue
				}
				c := evaluate(b, t)
				if c.points <= 0 {
					continue
				}
				c.track = track.Name
				c.battle = n
				if best == nil || better(c, *best, last) {
					best = &c
				}
			}
		}
	}
	if best == nil {
		return model.TokenUse{}
	}
	return best.use()
}

// evaluate computes what t would newly clear in b.
func evaluate(b *model.Battle, t *model.Team) candidate {
	c := candidate{team: t}
	ids := make([]string, 0, len(t.Restrictions)+3)
	ids = append(ids, model.KillPointsID, model.HighScoreID, model.DefeatAllID)
	ids = append(ids, t.Restrictions...)

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		r := b.Requirement(id)
		if r == nil || r.Status == model.Cleared {
			continue
		}
		c.points += requirement.Remaining(*r)
		c.cleared = append(c.cleared, id)
	}
	return c
}

func better(c, best candidate, last model.TokenUse) bool {
	if c.points != best.points {
		return c.points > best.points
	}
	cm, bm := continues(c, last), continues(best, last)
	if cm != bm {
		return cm
	}
	// NOTE: comparing track names looks like an artifact of iteration order
	// but existing plans depend on it.
	if c.track != best.track {
		return c.track < best.track
	}
	return c.battle > best.battle
}

func continues(c candidate, last model.TokenUse) bool {
	if last.Empty() {
		return false
	}
	return c.track == last.Track &&
		c.battle == last.Battle+1 &&
		c.team.Name == last.Team.Name &&
		c.team.SameRestrictions(last.Team)
}

// AllTokenUsage simulates spending tokens until no team gains points and
// returns the uses in order. tracks is never modified.
func AllTokenUsage(tracks []model.Track, teams []model.Team) []model.TokenUse {
	return AllTokenUsageLimit(tracks, teams, 0)
}

// AllTokenUsageLimit is AllTokenUsage stopping after limit tokens. A limit
// of zero or less means no limit.
func AllTokenUsageLimit(tracks []model.Track, teams []model.Team, limit int) []model.TokenUse {
	work := model.CloneTracks(tracks)
	var (
		uses []model.TokenUse
		last model.TokenUse
	)
	for limit <= 0 || len(uses) < limit {
		next := NextToken(work, teams, last)
		if next.Empty() {
			break
		}
		apply(work, next)
		uses = append(uses, next)
		last = next
	}
	return uses
}

// apply marks the requirements of u cleared in the working copy.
func apply(tracks []model.Track, u model.TokenUse) {
	for i := range tracks {
		if tracks[i].Name != u.Track {
			continue
		}
		b := tracks[i].Battle(u.Battle)
		if b == nil {
			return
		}
		for _, id := range u.RequirementsCleared {
			requirement.SetStatus(b, id, model.Cleared)
		}
		return
	}
}
