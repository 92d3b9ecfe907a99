package report_test

import (
	"math"
	"testing"
	"time"

	"github.com/okian/letokens/internal/domain/model"
	"github.com/okian/letokens/internal/domain/progress"
	"github.com/okian/letokens/internal/domain/projection"
	"github.com/okian/letokens/internal/domain/report"
	"github.com/okian/letokens/internal/domain/tokens"
	. "github.com/smartystreets/goconvey/convey"
)

var restrictions = []string{"r1", "r2", "r3", "r4", "r5"}

func battle() model.Battle {
	reqs := []model.RequirementProgress{
		{ID: model.KillPointsID, Points: 45},
		{ID: model.HighScoreID, Points: 45},
		{ID: model.DefeatAllID, Points: 60},
	}
	for _, r := range restrictions {
		reqs = append(reqs, model.RequirementProgress{ID: r, Points: 10})
	}
	return model.Battle{Requirements: reqs}
}

func snapshot() *report.Snapshot {
	return &report.Snapshot{
		UserID: "u1",
		Tracks: []model.Track{{Name: "alpha", Battles: []model.Battle{battle(), battle()}}},
		Teams: []model.Team{
			{Name: "all", Track: "alpha", Restrictions: restrictions, ExpectedBattleClears: 2},
		},
	}
}

func projector() projection.Projector {
	return projection.New(projection.Tables{
		Points: []model.PointMilestone{{Points: 100, Currency: 10}, {Points: 300, Currency: 10}},
		Chests: []model.ChestMilestone{{EngramCost: 10, Shards: 50}, {EngramCost: 10, Shards: 50}},
		Ascension: []model.AscensionMilestone{
			{Goal: model.GoalUnlock, Rarity: model.Legendary, Stars: 3, IncrementalShards: 50},
			{Goal: model.GoalFourStars, Rarity: model.Legendary, Stars: 4, IncrementalShards: 50},
			{Goal: model.GoalMythic, Rarity: model.Mythic, Stars: 4, IncrementalShards: math.Inf(1)},
		},
		PremiumBonus: 5,
	})
}

func TestBuild(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	Convey("Given a player with one team able to clear both battles", t, func() {
		snap := snapshot()

		Convey("When the event has not started", func() {
			clock := tokens.New(start, 1)
			r := report.Build("r1", snap, projector(), clock, start.Add(-time.Hour))

			Convey("Then both battles are planned with their milestones", func() {
				So(r.ID, ShouldEqual, "r1")
				So(r.UserID, ShouldEqual, "u1")
				So(r.Unfunded, ShouldEqual, 0)
				So(len(r.Tokens), ShouldEqual, 2)

				So(r.Tokens[0].Battle, ShouldEqual, 0)
				So(r.Tokens[0].Points, ShouldEqual, 200)
				So(r.Tokens[0].Iteration, ShouldEqual, 0)
				So(r.Tokens[0].NewPointMilestones, ShouldEqual, 1)
				So(r.Tokens[0].NewChests, ShouldEqual, 1)
				So(r.Tokens[0].NewTier, ShouldEqual, model.GoalUnlock)

				So(r.Tokens[1].Battle, ShouldEqual, 1)
				So(r.Tokens[1].TotalPoints, ShouldEqual, 400)
				So(r.Tokens[1].NewTier, ShouldEqual, model.GoalFourStars)
			})

			Convey("Then the end state and goal follow the plan", func() {
				So(r.Current.Points, ShouldEqual, 0)
				So(r.Projected.Points, ShouldEqual, 400)
				So(r.Projected.Tier, ShouldEqual, 2)
				So(r.Goal.Name, ShouldEqual, model.GoalFullClear)
				So(r.Goal.Points, ShouldEqual, 400)
			})

			Convey("Then the track summary reports the set cover", func() {
				So(r.Tracks, ShouldHaveLength, 1)
				ts := r.Tracks[0]
				So(ts.Points, ShouldEqual, 0)
				So(ts.MaxPoints, ShouldEqual, 400)
				So(ts.LowestBattle, ShouldEqual, 0)
				So(ts.MinimumKnown, ShouldBeTrue)
				So(ts.MinimumTokens, ShouldEqual, 1)
			})

			Convey("Then the budget is the full event", func() {
				So(r.Budget.TotalInEvent, ShouldEqual, 3*(tokens.FreeTokensPerIteration+tokens.AdTokensPerIteration))
			})

			Convey("Then the snapshot is untouched", func() {
				So(snap.Tracks, ShouldResemble, snapshot().Tracks)
			})
		})

		Convey("When the event is over", func() {
			clock := tokens.New(start, 3)
			r := report.Build("r2", snap, projector(), clock, start.Add(8*24*time.Hour))

			Convey("Then no token is funded", func() {
				So(r.Budget.TotalInEvent, ShouldEqual, 0)
				So(r.Tokens, ShouldBeEmpty)
				So(r.Unfunded, ShouldEqual, 2)
				So(r.Projected, ShouldResemble, r.Current)
				So(r.Goal.Name, ShouldEqual, model.GoalUnlock)
			})
		})

		Convey("When the track is already cleared", func() {
			for i := range snap.Tracks[0].Battles {
				for j := range snap.Tracks[0].Battles[i].Requirements {
					snap.Tracks[0].Battles[i].Requirements[j].Status = model.Cleared
				}
			}
			r := report.Build("r3", snap, projector(), tokens.New(start, 1), start)

			Convey("Then nothing is planned and the set cover is skipped", func() {
				So(r.Tokens, ShouldBeEmpty)
				So(r.Tracks[0].Points, ShouldEqual, 400)
				So(r.Tracks[0].LowestBattle, ShouldEqual, progress.NoBattle)
				So(r.Tracks[0].MinimumKnown, ShouldBeFalse)
				So(r.Current.TierName, ShouldEqual, model.GoalFourStars)
			})
		})
	})
}

func TestBuildIterations(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	Convey("Given ten battles and tokens already spent this iteration", t, func() {
		battles := make([]model.Battle, 10)
		for i := range battles {
			battles[i] = battle()
		}
		snap := &report.Snapshot{
			UserID: "u1",
			Tracks: []model.Track{{Name: "alpha", Battles: battles}},
			Teams: []model.Team{
				{Name: "all", Track: "alpha", Restrictions: restrictions, ExpectedBattleClears: 10},
			},
			UsedThisIteration: 5,
		}
		clock := tokens.New(start, 1)

		Convey("When only one free token is left in the iteration", func() {
			now := clock.End().Add(-4 * time.Hour)
			So(clock.FreeTokensRemainingInIteration(now), ShouldEqual, 1)
			So(clock.AdTokensRemainingInIteration(now), ShouldEqual, 0)

			r := report.Build("r1", snap, projector(), clock, now)

			Convey("Then only the first planned token falls in the current iteration", func() {
				So(len(r.Tokens), ShouldEqual, 10)
				So(r.Tokens[0].Iteration, ShouldEqual, 0)
				for _, tok := range r.Tokens[1:] {
					So(tok.Iteration, ShouldEqual, 1)
				}
			})
		})
	})
}

func TestSnapshotInput(t *testing.T) {
	Convey("Any purchased premium track enables the bonus", t, func() {
		s := &report.Snapshot{Premiums: []bool{false, true}, MissionCurrency: 3, BundleCurrency: 4}
		in := s.Input(120)
		So(in, ShouldResemble, projection.Input{Points: 120, PremiumPurchased: true, MissionCurrency: 3, BundleCurrency: 4})
		So((&report.Snapshot{}).Input(0).PremiumPurchased, ShouldBeFalse)
	})
}
