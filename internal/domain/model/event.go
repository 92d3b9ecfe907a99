// Package model contains domain models passed between layers.
package model

// Requirement IDs present in every battle of every track.
const (
	KillPointsID = "_killPoints"
	HighScoreID  = "_highScore"
	DefeatAllID  = "_defeatAll"
)

// RequirementStatus is the clearance state of one requirement in one battle.
type RequirementStatus int

// Requirement statuses. Values are part of the wire format.
const (
	NotCleared RequirementStatus = iota
	Cleared
	MaybeClear
	StopHere
	PartiallyCleared
)

// String returns the status name.
func (s RequirementStatus) String() string {
	switch s {
	case NotCleared:
		return "not_cleared"
	case Cleared:
		return "cleared"
	case MaybeClear:
		return "maybe_clear"
	case StopHere:
		return "stop_here"
	case PartiallyCleared:
		return "partially_cleared"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the known statuses.
func (s RequirementStatus) Valid() bool {
	return s >= NotCleared && s <= PartiallyCleared
}

// IsAutoRequirement reports whether id is one of the always-active requirements.
func IsAutoRequirement(id string) bool {
	return id == KillPointsID || id == HighScoreID || id == DefeatAllID
}

// IsScoreRequirement reports whether id accepts a partial score.
func IsScoreRequirement(id string) bool {
	return id == KillPointsID || id == HighScoreID
}

// RequirementProgress is the clearance record of one requirement in one battle.
type RequirementProgress struct {
	ID     string            // requirement id, e.g. "_killPoints" or a restriction name
	Points int               // full point value in this battle
	Status RequirementStatus // current status

	// Partial scores entered by the user, only read for PartiallyCleared
	// score requirements.
	KillScore int
	HighScore int
}

// Battle owns one RequirementProgress per requirement definition of its track.
type Battle struct {
	Requirements []RequirementProgress
}

// Completed reports whether every requirement of the battle is cleared.
func (b *Battle) Completed() bool {
	for i := range b.Requirements {
		if b.Requirements[i].Status != Cleared {
			return false
		}
	}
	return true
}

// Requirement returns the requirement with the given id or nil.
func (b *Battle) Requirement(id string) *RequirementProgress {
	for i := range b.Requirements {
		if b.Requirements[i].ID == id {
			return &b.Requirements[i]
		}
	}
	return nil
}

// Track is one of the parallel battle sequences of the event.
//
// Battles are stored hardest first: index 0 is the final battle. Battle
// numbers used by the planner count from the playable end instead, see
// Battle.
type Track struct {
	Name    string
	Battles []Battle
}

// Len returns the number of battles in the track.
func (t *Track) Len() int {
	return len(t.Battles)
}

// Battle returns battle number n counted from the playable end, or nil when
// n is out of range.
func (t *Track) Battle(n int) *Battle {
	if n < 0 || n >= len(t.Battles) {
		return nil
	}
	return &t.Battles[len(t.Battles)-1-n]
}

// Clone returns a deep copy of the track.
func (t *Track) Clone() Track {
	out := Track{Name: t.Name, Battles: make([]Battle, len(t.Battles))}
	for i, b := range t.Battles {
		out.Battles[i] = Battle{Requirements: append([]RequirementProgress(nil), b.Requirements...)}
	}
	return out
}

// CloneTracks deep-copies tracks so simulations never touch caller state.
func CloneTracks(tracks []Track) []Track {
	out := make([]Track, len(tracks))
	for i := range tracks {
		out[i] = tracks[i].Clone()
	}
	return out
}
