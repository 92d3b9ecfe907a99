package progress_test

import (
	"testing"

	"github.com/okian/letokens/internal/domain/model"
	"github.com/okian/letokens/internal/domain/progress"
	. "github.com/smartystreets/goconvey/convey"
)

// newTrack builds a track of n battles with kill/high/defeat-all and one
// restriction. Battle values grow with the battle number.
func newTrack(name string, n int) model.Track {
	t := model.Track{Name: name, Battles: make([]model.Battle, n)}
	for i := 0; i < n; i++ {
		bonus := 5 * i
		*t.Battle(i) = model.Battle{Requirements: []model.RequirementProgress{
			{ID: model.KillPointsID, Points: 45 + bonus},
			{ID: model.HighScoreID, Points: 45 + bonus},
			{ID: model.DefeatAllID, Points: 60 + bonus},
			{ID: "no_summons", Points: 60 + bonus},
		}}
	}
	return t
}

func clearBattle(b *model.Battle) {
	for i := range b.Requirements {
		b.Requirements[i].Status = model.Cleared
	}
}

func TestCurrentPoints(t *testing.T) {
	Convey("Given a track with mixed progress", t, func() {
		track := newTrack("alpha", 4)
		clearBattle(track.Battle(0))
		b1 := track.Battle(1)
		b1.Requirement(model.KillPointsID).Status = model.Cleared
		b1.Requirement(model.HighScoreID).Status = model.PartiallyCleared
		b1.Requirement(model.HighScoreID).HighScore = 20
		b1.Requirement(model.DefeatAllID).Status = model.MaybeClear

		Convey("When aggregating", func() {
			got := progress.CurrentPoints(&track)

			Convey("Then only cleared and partial score requirements count", func() {
				So(got, ShouldEqual, 45+45+60+60+50+20)
			})
		})

		Convey("When the battles are split into two groups", func() {
			left := model.Track{Name: "alpha", Battles: track.Battles[:2]}
			right := model.Track{Name: "alpha", Battles: track.Battles[2:]}

			Convey("Then the sums add up to the whole", func() {
				So(progress.CurrentPoints(&left)+progress.CurrentPoints(&right), ShouldEqual, progress.CurrentPoints(&track))
			})
		})

		Convey("When computing the full clear value", func() {
			Convey("Then every requirement counts", func() {
				So(progress.TotalPoints(&track), ShouldEqual, 4*210+4*6*5)
			})
		})
	})
}

func TestAvailableBattles(t *testing.T) {
	Convey("Given a fresh track", t, func() {
		track := newTrack("alpha", 3)

		Convey("Then only battle zero is available", func() {
			So(progress.LowestAvailableBattle(&track), ShouldEqual, 0)
			So(progress.HighestAvailableBattle(&track), ShouldEqual, 0)
		})

		Convey("When kill score of battle zero is cleared", func() {
			track.Battle(0).Requirement(model.KillPointsID).Status = model.Cleared

			Convey("Then battle one unlocks while battle zero stays lowest", func() {
				So(progress.LowestAvailableBattle(&track), ShouldEqual, 0)
				So(progress.HighestAvailableBattle(&track), ShouldEqual, 1)
			})
		})

		Convey("When battle zero is fully cleared", func() {
			clearBattle(track.Battle(0))

			Convey("Then battle one is both lowest and highest", func() {
				So(progress.LowestAvailableBattle(&track), ShouldEqual, 1)
				So(progress.HighestAvailableBattle(&track), ShouldEqual, 1)
			})
		})

		Convey("When every kill score is cleared but restrictions remain", func() {
			for n := 0; n < track.Len(); n++ {
				track.Battle(n).Requirement(model.KillPointsID).Status = model.Cleared
			}
			clearBattle(track.Battle(2))

			Convey("Then highest falls back to the last incomplete battle", func() {
				So(progress.LowestAvailableBattle(&track), ShouldEqual, 0)
				So(progress.HighestAvailableBattle(&track), ShouldEqual, 1)
			})
		})

		Convey("When the whole track is cleared", func() {
			for n := 0; n < track.Len(); n++ {
				clearBattle(track.Battle(n))
			}

			Convey("Then both report no battle", func() {
				So(progress.LowestAvailableBattle(&track), ShouldEqual, progress.NoBattle)
				So(progress.HighestAvailableBattle(&track), ShouldEqual, progress.NoBattle)
			})
		})

		Convey("When battles are stored hardest first", func() {
			Convey("Then battle zero is the last stored battle", func() {
				So(track.Battle(0), ShouldEqual, &track.Battles[2])
				So(track.Battle(2), ShouldEqual, &track.Battles[0])
				So(track.Battle(3), ShouldBeNil)
			})
		})
	})
}
