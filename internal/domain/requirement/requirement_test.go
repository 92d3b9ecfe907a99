package requirement_test

import (
	"testing"

	"github.com/okian/letokens/internal/domain/model"
	"github.com/okian/letokens/internal/domain/requirement"
	. "github.com/smartystreets/goconvey/convey"
)

func statusPtr(s model.RequirementStatus) *model.RequirementStatus { return &s }

func battle() *model.Battle {
	return &model.Battle{Requirements: []model.RequirementProgress{
		{ID: model.KillPointsID, Points: 45},
		{ID: model.HighScoreID, Points: 45},
		{ID: model.DefeatAllID, Points: 60},
		{ID: "no_psykers", Points: 60},
		{ID: "mechanical_only", Points: 80},
	}}
}

func TestResolveStatus(t *testing.T) {
	Convey("Given stored requirement progress", t, func() {
		Convey("When an explicit status is present", func() {
			Convey("Then it wins over the legacy booleans", func() {
				So(requirement.ResolveStatus(statusPtr(model.MaybeClear), true, true), ShouldEqual, model.MaybeClear)
				So(requirement.ResolveStatus(statusPtr(model.NotCleared), true, false), ShouldEqual, model.NotCleared)
			})
		})

		Convey("When only the legacy booleans are present", func() {
			Convey("Then completed maps to cleared and blocked to stop here", func() {
				So(requirement.ResolveStatus(nil, true, false), ShouldEqual, model.Cleared)
				So(requirement.ResolveStatus(nil, true, true), ShouldEqual, model.Cleared)
				So(requirement.ResolveStatus(nil, false, true), ShouldEqual, model.StopHere)
				So(requirement.ResolveStatus(nil, false, false), ShouldEqual, model.NotCleared)
			})
		})

		Convey("When the explicit status is out of range", func() {
			Convey("Then the legacy booleans are used", func() {
				So(requirement.ResolveStatus(statusPtr(model.RequirementStatus(9)), true, false), ShouldEqual, model.Cleared)
			})
		})
	})
}

func TestPoints(t *testing.T) {
	Convey("Given every status for score and non-score requirements", t, func() {
		statuses := []model.RequirementStatus{
			model.NotCleared, model.Cleared, model.MaybeClear, model.StopHere, model.PartiallyCleared,
		}
		ids := []string{model.KillPointsID, model.HighScoreID, model.DefeatAllID, "no_psykers"}

		for _, id := range ids {
			for _, s := range statuses {
				p := model.RequirementProgress{ID: id, Points: 50, Status: s, KillScore: 20, HighScore: 30}
				got := requirement.Points(p)

				switch {
				case s == model.Cleared:
					So(got, ShouldEqual, 50)
				case s == model.PartiallyCleared && id == model.KillPointsID:
					So(got, ShouldEqual, 20)
				case s == model.PartiallyCleared && id == model.HighScoreID:
					So(got, ShouldEqual, 30)
				default:
					So(got, ShouldEqual, 0)
				}
			}
		}

		Convey("When a partial score exceeds the maximum", func() {
			p := model.RequirementProgress{ID: model.HighScoreID, Points: 45, Status: model.PartiallyCleared, HighScore: 400}

			Convey("Then it is capped", func() {
				So(requirement.Points(p), ShouldEqual, 45)
				So(requirement.Remaining(p), ShouldEqual, 0)
			})
		})

		Convey("When a partial score is negative", func() {
			p := model.RequirementProgress{ID: model.KillPointsID, Points: 45, Status: model.PartiallyCleared, KillScore: -5}

			Convey("Then it contributes nothing", func() {
				So(requirement.Points(p), ShouldEqual, 0)
				So(requirement.Remaining(p), ShouldEqual, 45)
			})
		})
	})
}

func TestSetStatus(t *testing.T) {
	Convey("Given a battle with nothing cleared", t, func() {
		b := battle()

		Convey("When a restriction is cleared", func() {
			ok := requirement.SetStatus(b, "no_psykers", model.Cleared)

			Convey("Then all three always-active requirements are promoted", func() {
				So(ok, ShouldBeTrue)
				So(b.Requirement(model.KillPointsID).Status, ShouldEqual, model.Cleared)
				So(b.Requirement(model.HighScoreID).Status, ShouldEqual, model.Cleared)
				So(b.Requirement(model.DefeatAllID).Status, ShouldEqual, model.Cleared)
				So(b.Requirement("mechanical_only").Status, ShouldEqual, model.NotCleared)
			})
		})

		Convey("When defeat-all is cleared", func() {
			requirement.SetStatus(b, model.DefeatAllID, model.Cleared)

			Convey("Then only the score requirements are promoted", func() {
				So(b.Requirement(model.KillPointsID).Status, ShouldEqual, model.Cleared)
				So(b.Requirement(model.HighScoreID).Status, ShouldEqual, model.Cleared)
				So(b.Requirement("no_psykers").Status, ShouldEqual, model.NotCleared)
				So(b.Requirement("mechanical_only").Status, ShouldEqual, model.NotCleared)
			})
		})

		Convey("When kill score is cleared", func() {
			requirement.SetStatus(b, model.KillPointsID, model.Cleared)

			Convey("Then nothing else changes", func() {
				So(b.Requirement(model.HighScoreID).Status, ShouldEqual, model.NotCleared)
				So(b.Requirement(model.DefeatAllID).Status, ShouldEqual, model.NotCleared)
			})
		})

		Convey("When a restriction is only marked maybe clear", func() {
			requirement.SetStatus(b, "no_psykers", model.MaybeClear)

			Convey("Then nothing is promoted", func() {
				So(b.Requirement("no_psykers").Status, ShouldEqual, model.MaybeClear)
				So(b.Requirement(model.DefeatAllID).Status, ShouldEqual, model.NotCleared)
			})
		})

		Convey("When a cleared requirement is reset", func() {
			requirement.SetStatus(b, "no_psykers", model.Cleared)
			requirement.SetStatus(b, "no_psykers", model.NotCleared)

			Convey("Then only that requirement goes back", func() {
				So(b.Requirement("no_psykers").Status, ShouldEqual, model.NotCleared)
				So(b.Requirement(model.DefeatAllID).Status, ShouldEqual, model.Cleared)
			})
		})

		Convey("When the requirement does not exist", func() {
			Convey("Then it reports false", func() {
				So(requirement.SetStatus(b, "missing", model.Cleared), ShouldBeFalse)
			})
		})
	})
}
