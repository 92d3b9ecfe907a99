package api

import (
	"fmt"
	"net/http"
)

// BattleHandler answers minimum-token questions for a single battle.
type BattleHandler struct {
	deps BattleDependencies
}

// NewBattleHandler creates a new battle handler.
func NewBattleHandler(deps BattleDependencies) *BattleHandler {
	return &BattleHandler{deps: deps}
}

// minimumTokensRequest restricts Teams to those usable on Track's Battle
// when Track is set; otherwise every team is considered.
type minimumTokensRequest struct {
	Teams  []teamDTO `json:"teams"`
	Track  string    `json:"track,omitempty"`
	Battle int       `json:"battle,omitempty"`
}

type minimumTokensResponse struct {
	Tokens    int  `json:"tokens"`
	Clearable bool `json:"clearable"`
}

// HandleMinimumTokens handles POST /battles/minimum-tokens requests.
func (h *BattleHandler) HandleMinimumTokens(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req minimumTokensRequest
	if err := decode(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	if req.Battle < 0 {
		writeServiceError(w, fmt.Errorf("%w: negative battle", ErrBadRequest))
		return
	}
	teams, err := toTeams(req.Teams)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	n, ok := h.deps.MinimumTokens(r.Context(), teams, req.Track, req.Battle)
	writeJSON(w, http.StatusOK, minimumTokensResponse{Tokens: n, Clearable: ok})
}
