package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/letokens/internal/domain/model"
	"github.com/okian/letokens/internal/domain/report"
	. "github.com/smartystreets/goconvey/convey"
)

func snapshotFor(user string) report.Snapshot {
	return report.Snapshot{
		UserID: user,
		Tracks: []model.Track{{Name: "alpha", Battles: []model.Battle{{Requirements: []model.RequirementProgress{
			{ID: model.KillPointsID, Points: 45},
		}}}}},
		Teams:    []model.Team{{Name: "t", Track: "alpha", Restrictions: []string{"r1"}, ExpectedBattleClears: 1}},
		Premiums: []bool{true},
	}
}

func TestMemoryStore_Snapshots(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		s := NewMemoryStore(ctx)
		defer s.Close()

		Convey("When a user is unknown", func() {
			_, _, err := s.Snapshot(ctx, "nobody")

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				So(s.Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When a snapshot without user is stored", func() {
			_, err := s.PutSnapshot(ctx, report.Snapshot{})

			Convey("Then it is rejected", func() {
				So(errors.Is(err, ErrInvalidUser), ShouldBeTrue)
			})
		})

		Convey("When snapshots are stored twice", func() {
			v1, err1 := s.PutSnapshot(ctx, snapshotFor("u1"))
			v2, err2 := s.PutSnapshot(ctx, snapshotFor("u1"))
			got, version, err := s.Snapshot(ctx, "u1")

			Convey("Then the version grows", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(err, ShouldBeNil)
				So(v1, ShouldEqual, 1)
				So(v2, ShouldEqual, 2)
				So(version, ShouldEqual, 2)
				So(got.UserID, ShouldEqual, "u1")
				So(s.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When the caller mutates a stored or returned snapshot", func() {
			in := snapshotFor("u1")
			_, _ = s.PutSnapshot(ctx, in)
			in.Tracks[0].Battles[0].Requirements[0].Status = model.Cleared
			in.Teams[0].Restrictions[0] = "changed"

			out, _, _ := s.Snapshot(ctx, "u1")
			out.Premiums[0] = false

			Convey("Then the stored copy is unaffected", func() {
				again, _, _ := s.Snapshot(ctx, "u1")
				So(again.Tracks[0].Battles[0].Requirements[0].Status, ShouldEqual, model.NotCleared)
				So(again.Teams[0].Restrictions, ShouldResemble, []string{"r1"})
				So(again.Premiums, ShouldResemble, []bool{true})
			})
		})
	})
}

func TestMemoryStore_Reports(t *testing.T) {
	Convey("Given a store with one user", t, func() {
		ctx := context.Background()
		s := NewMemoryStore(ctx)
		defer s.Close()
		_, _ = s.PutSnapshot(ctx, snapshotFor("u1"))
		now := time.Now()

		Convey("When no report was built", func() {
			_, err := s.Report(ctx, "u1")

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When a report is stored for an unknown user", func() {
			_, err := s.PutReport(ctx, report.Report{UserID: "ghost"})

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When reports arrive out of order", func() {
			stored1, _ := s.PutReport(ctx, report.Report{ID: "new", UserID: "u1", GeneratedAt: now})
			stored2, _ := s.PutReport(ctx, report.Report{ID: "old", UserID: "u1", GeneratedAt: now.Add(-time.Second)})
			got, err := s.Report(ctx, "u1")

			Convey("Then the newest one is kept", func() {
				So(err, ShouldBeNil)
				So(stored1, ShouldBeTrue)
				So(stored2, ShouldBeFalse)
				So(got.ID, ShouldEqual, "new")
			})
		})
	})
}

func TestMemoryStore_Stats(t *testing.T) {
	Convey("Given a store with a fast stats loop", t, func() {
		ctx := context.Background()
		s := NewMemoryStore(ctx, WithStatsInterval(10*time.Millisecond))
		defer s.Close()

		_, _ = s.PutSnapshot(ctx, snapshotFor("u1"))
		_, _ = s.PutSnapshot(ctx, snapshotFor("u2"))
		_, _ = s.PutReport(ctx, report.Report{UserID: "u1", GeneratedAt: time.Now()})
		time.Sleep(50 * time.Millisecond)

		Convey("Then the published stats count users, reports and stale plans", func() {
			st := s.Stats()
			So(st.Users, ShouldEqual, 2)
			So(st.Reports, ShouldEqual, 1)
			So(st.Stale, ShouldEqual, 1)
			So(st.PublishedAt.IsZero(), ShouldBeFalse)
		})

		Convey("Then Close is idempotent", func() {
			So(s.Close(), ShouldBeNil)
			So(s.Close(), ShouldBeNil)
		})
	})
}

func TestMemoryStore_Concurrent(t *testing.T) {
	Convey("Given concurrent writers", t, func() {
		ctx := context.Background()
		s := NewMemoryStore(ctx)
		defer s.Close()

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				user := fmt.Sprintf("u%d", i%5)
				_, _ = s.PutSnapshot(ctx, snapshotFor(user))
				_, _ = s.PutReport(ctx, report.Report{UserID: user, GeneratedAt: time.Now()})
			}(i)
		}
		wg.Wait()

		Convey("Then every user is stored once with all versions counted", func() {
			So(s.Count(ctx), ShouldEqual, 5)
			_, version, err := s.Snapshot(ctx, "u0")
			So(err, ShouldBeNil)
			So(version, ShouldEqual, 4)
		})
	})
}
