package model

// Rarity of the event character.
type Rarity int

// Rarities in ascending order.
const (
	Common Rarity = iota
	Uncommon
	Rare
	Epic
	Legendary
	Mythic
)

// String returns the rarity name.
func (r Rarity) String() string {
	switch r {
	case Common:
		return "common"
	case Uncommon:
		return "uncommon"
	case Rare:
		return "rare"
	case Epic:
		return "epic"
	case Legendary:
		return "legendary"
	case Mythic:
		return "mythic"
	default:
		return "unknown"
	}
}

// ParseRarity maps a rarity name back to its value.
func ParseRarity(s string) (Rarity, bool) {
	for r := Common; r <= Mythic; r++ {
		if r.String() == s {
			return r, true
		}
	}
	return Common, false
}

// Ascension goal names, in the order they are reached.
const (
	GoalUnlock       = "unlock"
	GoalFourStars    = "4 stars"
	GoalFiveStars    = "5 stars"
	GoalBlueStar     = "blue star"
	GoalMythic       = "mythic"
	GoalTwoBlueStars = "two blue stars"
	GoalFullClear    = "full clear"
)

// PointMilestone pays out currency once cumulative points reach Points.
type PointMilestone struct {
	Points   int
	Currency int
}

// ChestMilestone is one chest: opening it costs EngramCost currency and
// yields Shards.
type ChestMilestone struct {
	EngramCost int
	Shards     int
}

// AscensionMilestone is one ascension tier. IncrementalShards is +Inf when
// the requirement is unknown.
type AscensionMilestone struct {
	Goal              string
	Rarity            Rarity
	Stars             int
	IncrementalShards float64
}

// EventProgress is a projected snapshot derived from cumulative points.
type EventProgress struct {
	Points           int
	Currency         int
	PointMilestones  int // point milestones reached
	Chests           int // chests opened
	LastClaimedChest int // index of the last opened chest, -1 when none
	Shards           int
	Rarity           Rarity
	Stars            int
	Tier             int    // ascension tiers reached
	TierName         string // last reached tier, empty when none
}
