package api

import (
	"net/http"

	"github.com/okian/letokens/internal/domain/projection"
)

// ProjectionHandler runs the milestone cascade for arbitrary inputs.
type ProjectionHandler struct {
	deps ProjectionDependencies
}

// NewProjectionHandler creates a new projection handler.
func NewProjectionHandler(deps ProjectionDependencies) *ProjectionHandler {
	return &ProjectionHandler{deps: deps}
}

type projectionRequest struct {
	Points           int  `json:"points"`
	PremiumPurchased bool `json:"premium_purchased"`
	MissionCurrency  int  `json:"mission_currency"`
	BundleCurrency   int  `json:"bundle_currency"`
	// TotalPoints is what a full clear is worth; zero skips the check.
	TotalPoints int `json:"total_points"`
}

type projectionResponse struct {
	Progress progressDTO `json:"progress"`
	Goal     goalDTO     `json:"goal"`
}

// HandlePostProjection handles POST /projection requests.
func (h *ProjectionHandler) HandlePostProjection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req projectionRequest
	if err := decode(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	in := projection.Input{
		Points:           req.Points,
		PremiumPurchased: req.PremiumPurchased,
		MissionCurrency:  req.MissionCurrency,
		BundleCurrency:   req.BundleCurrency,
	}
	progress, goal, err := h.deps.Project(in, req.TotalPoints)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projectionResponse{Progress: fromProgress(progress), Goal: fromGoal(goal)})
}
