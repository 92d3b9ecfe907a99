package model

// Team is a roster assignment to one track, read-only to the engine.
type Team struct {
	Name  string
	Track string
	// Restrictions lists the restriction ids the team is claimed to clear.
	Restrictions []string
	// ExpectedBattleClears is how many battles deep, from the playable end,
	// the team can still win.
	ExpectedBattleClears int
}

// CanPlay reports whether the team is expected to win battle number n.
func (t *Team) CanPlay(n int) bool {
	return n >= 0 && n < t.ExpectedBattleClears
}

// SameRestrictions reports whether both teams claim the same restriction set.
func (t *Team) SameRestrictions(other *Team) bool {
	if len(t.Restrictions) != len(other.Restrictions) {
		return false
	}
	set := make(map[string]struct{}, len(t.Restrictions))
	for _, r := range t.Restrictions {
		set[r] = struct{}{}
	}
	for _, r := range other.Restrictions {
		if _, ok := set[r]; !ok {
			return false
		}
	}
	return true
}

// TokenUse is one simulated token expenditure produced by the planner.
// A TokenUse with a nil Team means no token is worth spending.
type TokenUse struct {
	Team                *Team
	Track               string
	Battle              int
	IncrementalPoints   int
	RequirementsCleared []string
}

// Empty reports whether the token use is the "no team" sentinel.
func (u TokenUse) Empty() bool {
	return u.Team == nil
}
