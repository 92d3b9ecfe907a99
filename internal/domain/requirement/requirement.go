// Package requirement implements the per-requirement status rules: the
// legacy status mapping, point contribution and auto-promotion on clear.
package requirement

import "github.com/okian/letokens/internal/domain/model"

// ResolveStatus maps stored progress to a single status. An explicit status
// wins; records written by older clients only carry the completed/blocked
// pair.
func ResolveStatus(status *model.RequirementStatus, completed, blocked bool) model.RequirementStatus {
	if status != nil && status.Valid() {
		return *status
	}
	switch {
	case completed:
		return model.Cleared
	case blocked:
		return model.StopHere
	default:
		return model.NotCleared
	}
}

// Points returns the points a requirement currently contributes.
func Points(p model.RequirementProgress) int {
	switch p.Status {
	case model.Cleared:
		return p.Points
	case model.PartiallyCleared:
		return partialPoints(p)
	default:
		return 0
	}
}

func partialPoints(p model.RequirementProgress) int {
	var score int
	switch p.ID {
	case model.KillPointsID:
		score = p.KillScore
	case model.HighScoreID:
		score = p.HighScore
	default:
		return 0
	}
	if score < 0 {
		return 0
	}
	return min(score, p.Points)
}

// Remaining returns the points still obtainable by clearing p.
func Remaining(p model.RequirementProgress) int {
	return max(p.Points-Points(p), 0)
}

// SetStatus sets the status of requirement id in b.
//
// Clearing a restriction implies the battle was won, so kill score, high
// score and defeat-all are promoted too. Clearing defeat-all promotes only
// the two score requirements. Returns false when b has no such requirement.
func SetStatus(b *model.Battle, id string, status model.RequirementStatus) bool {
	req := b.Requirement(id)
	if req == nil {
		return false
	}
	req.Status = status
	if status != model.Cleared {
		return true
	}

	switch {
	case id == model.DefeatAllID:
		promote(b, model.KillPointsID, model.HighScoreID)
	case !model.IsAutoRequirement(id):
		promote(b, model.KillPointsID, model.HighScoreID, model.DefeatAllID)
	}
	return true
}

func promote(b *model.Battle, ids ...string) {
	for _, id := range ids {
		if r := b.Requirement(id); r != nil {
			r.Status = model.Cleared
		}
	}
}
