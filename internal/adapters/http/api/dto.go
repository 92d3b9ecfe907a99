package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/letokens/internal/domain/model"
	"github.com/okian/letokens/internal/domain/projection"
	"github.com/okian/letokens/internal/domain/report"
	"github.com/okian/letokens/internal/domain/requirement"
	"github.com/okian/letokens/internal/domain/tokens"
)

// maxTeams bounds the teams of one request.
const maxTeams = 20

// requirementDTO carries either an explicit status or the older
// completed/blocked flags.
type requirementDTO struct {
	ID        string `json:"id"`
	Points    int    `json:"points"`
	Status    *int   `json:"status,omitempty"`
	Completed bool   `json:"completed,omitempty"`
	Blocked   bool   `json:"blocked,omitempty"`
	KillScore int    `json:"kill_score,omitempty"`
	HighScore int    `json:"high_score,omitempty"`
}

type battleDTO struct {
	Requirements []requirementDTO `json:"requirements"`
}

// trackDTO lists battles as stored: the first one is the final battle.
type trackDTO struct {
	Name    string      `json:"name"`
	Battles []battleDTO `json:"battles"`
}

type teamDTO struct {
	Name                 string   `json:"name"`
	Track                string   `json:"track"`
	Restrictions         []string `json:"restrictions"`
	ExpectedBattleClears int      `json:"expected_battle_clears"`
}

// progressRequest is the body of POST /progress and POST /plan.
type progressRequest struct {
	SubmissionID      string     `json:"submission_id,omitempty"`
	UserID            string     `json:"user_id"`
	Tracks            []trackDTO `json:"tracks"`
	Teams             []teamDTO  `json:"teams"`
	Premiums          []bool     `json:"premiums,omitempty"`
	MissionCurrency   int        `json:"mission_currency,omitempty"`
	BundleCurrency    int        `json:"bundle_currency,omitempty"`
	UsedThisIteration int        `json:"used_this_iteration,omitempty"`
}

func (p *progressRequest) snapshot() (report.Snapshot, error) {
	if len(p.Premiums) > tokens.Stages {
		return report.Snapshot{}, fmt.Errorf("%w: at most %d premium flags", ErrBadRequest, tokens.Stages)
	}
	if p.MissionCurrency < 0 || p.BundleCurrency < 0 || p.UsedThisIteration < 0 {
		return report.Snapshot{}, fmt.Errorf("%w: negative amounts", ErrBadRequest)
	}
	if p.UsedThisIteration > tokens.MaxTokensPerIteration {
		return report.Snapshot{}, fmt.Errorf("%w: used_this_iteration above %d", ErrBadRequest, tokens.MaxTokensPerIteration)
	}
	tracks, err := toTracks(p.Tracks)
	if err != nil {
		return report.Snapshot{}, err
	}
	teams, err := toTeams(p.Teams)
	if err != nil {
		return report.Snapshot{}, err
	}
	return report.Snapshot{
		UserID:            strings.TrimSpace(p.UserID),
		Tracks:            tracks,
		Teams:             teams,
		Premiums:          p.Premiums,
		MissionCurrency:   p.MissionCurrency,
		BundleCurrency:    p.BundleCurrency,
		UsedThisIteration: p.UsedThisIteration,
	}, nil
}

func toTracks(in []trackDTO) ([]model.Track, error) {
	seen := make(map[string]struct{}, len(in))
	out := make([]model.Track, 0, len(in))
	for _, t := range in {
		if strings.TrimSpace(t.Name) == "" {
			return nil, fmt.Errorf("%w: track without name", ErrBadRequest)
		}
		if _, dup := seen[t.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate track %q", ErrBadRequest, t.Name)
		}
		seen[t.Name] = struct{}{}

		track := model.Track{Name: t.Name, Battles: make([]model.Battle, 0, len(t.Battles))}
		for i, b := range t.Battles {
			battle, err := toBattle(b)
			if err != nil {
				return nil, fmt.Errorf("track %q battle %d: %w", t.Name, i, err)
			}
			track.Battles = append(track.Battles, battle)
		}
		out = append(out, track)
	}
	return out, nil
}

func toBattle(in battleDTO) (model.Battle, error) {
	b := model.Battle{Requirements: make([]model.RequirementProgress, 0, len(in.Requirements))}
	seen := make(map[string]struct{}, len(in.Requirements))
	for _, r := range in.Requirements {
		if r.ID == "" {
			return model.Battle{}, fmt.Errorf("%w: requirement without id", ErrBadRequest)
		}
		if _, dup := seen[r.ID]; dup {
			return model.Battle{}, fmt.Errorf("%w: duplicate requirement %q", ErrBadRequest, r.ID)
		}
		seen[r.ID] = struct{}{}
		if r.Points < 0 {
			return model.Battle{}, fmt.Errorf("%w: requirement %q has negative points", ErrBadRequest, r.ID)
		}

		var explicit *model.RequirementStatus
		if r.Status != nil {
			st := model.RequirementStatus(*r.Status)
			if !st.Valid() {
				return model.Battle{}, fmt.Errorf("%w: requirement %q has unknown status %d", ErrBadRequest, r.ID, *r.Status)
			}
			explicit = &st
		}
		b.Requirements = append(b.Requirements, model.RequirementProgress{
			ID:        r.ID,
			Points:    r.Points,
			Status:    requirement.ResolveStatus(explicit, r.Completed, r.Blocked),
			KillScore: r.KillScore,
			HighScore: r.HighScore,
		})
	}
	return b, nil
}

func toTeams(in []teamDTO) ([]model.Team, error) {
	if len(in) > maxTeams {
		return nil, fmt.Errorf("%w: at most %d teams", ErrBadRequest, maxTeams)
	}
	out := make([]model.Team, 0, len(in))
	for _, t := range in {
		if strings.TrimSpace(t.Name) == "" {
			return nil, fmt.Errorf("%w: team without name", ErrBadRequest)
		}
		if t.ExpectedBattleClears < 0 {
			return nil, fmt.Errorf("%w: team %q has negative expected_battle_clears", ErrBadRequest, t.Name)
		}
		out = append(out, model.Team{
			Name:                 t.Name,
			Track:                t.Track,
			Restrictions:         append([]string(nil), t.Restrictions...),
			ExpectedBattleClears: t.ExpectedBattleClears,
		})
	}
	return out, nil
}

type progressDTO struct {
	Points          int    `json:"points"`
	Currency        int    `json:"currency"`
	PointMilestones int    `json:"point_milestones"`
	Chests          int    `json:"chests"`
	Shards          int    `json:"shards"`
	Rarity          string `json:"rarity"`
	Stars           int    `json:"stars"`
	Tier            int    `json:"tier"`
	TierName        string `json:"tier_name,omitempty"`
}

func fromProgress(p model.EventProgress) progressDTO {
	return progressDTO{
		Points:          p.Points,
		Currency:        p.Currency,
		PointMilestones: p.PointMilestones,
		Chests:          p.Chests,
		Shards:          p.Shards,
		Rarity:          p.Rarity.String(),
		Stars:           p.Stars,
		Tier:            p.Tier,
		TierName:        p.TierName,
	}
}

type goalDTO struct {
	Name      string  `json:"name"`
	Shards    float64 `json:"shards"`
	Chests    int     `json:"chests"`
	Currency  int     `json:"currency"`
	Points    int     `json:"points"`
	Reachable bool    `json:"reachable"`
}

func fromGoal(g projection.Goal) goalDTO {
	return goalDTO(g)
}

type trackSummaryDTO struct {
	Name          string `json:"name"`
	Points        int    `json:"points"`
	MaxPoints     int    `json:"max_points"`
	LowestBattle  int    `json:"lowest_battle"`
	HighestBattle int    `json:"highest_battle"`
	MinimumTokens *int   `json:"minimum_tokens,omitempty"`
}

type plannedTokenDTO struct {
	Index              int      `json:"index"`
	Iteration          int      `json:"iteration"`
	Team               string   `json:"team"`
	Track              string   `json:"track"`
	Battle             int      `json:"battle"`
	Points             int      `json:"points"`
	Requirements       []string `json:"requirements"`
	TotalPoints        int      `json:"total_points"`
	NewPointMilestones int      `json:"new_point_milestones,omitempty"`
	NewChests          int      `json:"new_chests,omitempty"`
	NewTier            string   `json:"new_tier,omitempty"`
}

type reportResponse struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
	Tracks      []trackSummaryDTO `json:"tracks"`
	Budget      tokens.Summary    `json:"budget"`
	Tokens      []plannedTokenDTO `json:"tokens"`
	Unfunded    int               `json:"unfunded"`
	Current     progressDTO       `json:"current"`
	Projected   progressDTO       `json:"projected"`
	Goal        goalDTO           `json:"goal"`
}

func fromReport(r *report.Report) reportResponse {
	out := reportResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		GeneratedAt: r.GeneratedAt,
		Tracks:      make([]trackSummaryDTO, 0, len(r.Tracks)),
		Budget:      r.Budget,
		Tokens:      make([]plannedTokenDTO, 0, len(r.Tokens)),
		Unfunded:    r.Unfunded,
		Current:     fromProgress(r.Current),
		Projected:   fromProgress(r.Projected),
		Goal:        fromGoal(r.Goal),
	}
	for _, t := range r.Tracks {
		ts := trackSummaryDTO{
			Name:          t.Name,
			Points:        t.Points,
			MaxPoints:     t.MaxPoints,
			LowestBattle:  t.LowestBattle,
			HighestBattle: t.HighestBattle,
		}
		if t.MinimumKnown {
			n := t.MinimumTokens
			ts.MinimumTokens = &n
		}
		out.Tracks = append(out.Tracks, ts)
	}
	for _, t := range r.Tokens {
		out.Tokens = append(out.Tokens, plannedTokenDTO(t))
	}
	return out
}
