package api

import (
	"net/http"
)

// ProgressHandler accepts roster and battle progress submissions.
type ProgressHandler struct {
	deps ProgressDependencies
}

// NewProgressHandler creates a new progress handler.
func NewProgressHandler(deps ProgressDependencies) *ProgressHandler {
	return &ProgressHandler{deps: deps}
}

type progressResponse struct {
	Status  string `json:"status"`
	UserID  string `json:"user_id"`
	Version int64  `json:"version,omitempty"`
}

// HandlePostProgress handles POST /progress requests. New submissions are
// stored and queued for planning (202); a repeated submission_id is
// acknowledged without effect (200).
func (h *ProgressHandler) HandlePostProgress(w http.ResponseWriter, r *http.Request) {
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

	sub, err := h.deps.SubmitProgress(r.Context(), req.SubmissionID, snap)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if sub.Duplicate {
		writeJSON(w, http.StatusOK, progressResponse{Status: "duplicate", UserID: sub.UserID})
		return
	}
	writeJSON(w, http.StatusAccepted, progressResponse{Status: "accepted", UserID: sub.UserID, Version: sub.Version})
}
