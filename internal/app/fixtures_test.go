package service_test

import (
	"time"

	"github.com/okian/letokens/internal/domain/model"
	"github.com/okian/letokens/internal/domain/report"
	"github.com/okian/letokens/pkg/logger"
)

const (
	userA = "6f1c2b9e-0d3a-4c57-9a51-2f3e8b7d1c40"
	userB = "0b6f3d1e-8a2c-4e0f-b7c9-5d4a3e2f1a10"
)

var stageStart = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// beforeStart is an hour before the stage opens, so every budget is full.
func beforeStart() time.Time { return stageStart.Add(-time.Hour) }

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

func snapshot(user string) report.Snapshot {
	return report.Snapshot{
		UserID: user,
		Tracks: []model.Track{{Name: "alpha", Battles: []model.Battle{battle(), battle()}}},
		Teams: []model.Team{
			{Name: "all", Track: "alpha", Restrictions: restrictions, ExpectedBattleClears: 2},
		},
	}
}
