package api

import (
	"net/http"
	"strings"
)

// PlanHandler serves token plans.
type PlanHandler struct {
	deps PlanDependencies
}

// NewPlanHandler creates a new plan handler.
func NewPlanHandler(deps PlanDependencies) *PlanHandler {
	return &PlanHandler{deps: deps}
}

// HandleGetPlan handles GET /plan/{user_id} requests.
func (h *PlanHandler) HandleGetPlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID := strings.TrimPrefix(r.URL.Path, "/plan/")
	if userID == "" || strings.Contains(userID, "/") {
		http.NotFound(w, r)
		return
	}

	rep, err := h.deps.Report(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fromReport(&rep))
}

// HandlePostPlan handles POST /plan requests: the body is planned directly
// without being stored. X-Cache tells whether an identical request was
// answered recently.
func (h *PlanHandler) HandlePostPlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req progressRequest
	if err := decode(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	snap, err := req.snapshot()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	rep, cached, err := h.deps.BuildReport(r.Context(), snap)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if cached {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	writeJSON(w, http.StatusOK, fromReport(&rep))
}
