package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/letokens/internal/domain/tokens"
)

// TokensHandler reports the token budget.
type TokensHandler struct {
	deps TokenDependencies
}

// NewTokensHandler creates a new tokens handler.
func NewTokensHandler(deps TokenDependencies) *TokensHandler {
	return &TokensHandler{deps: deps}
}

type tokensResponse struct {
	tokens.Summary
	Index     *int  `json:"index,omitempty"`
	Iteration *int  `json:"iteration,omitempty"`
	InEvent   *bool `json:"in_event,omitempty"`
}

// HandleGetTokens handles GET /tokens?premium=true,false,true requests.
// With index (and optionally used) it also reports the iteration that
// token ordinal falls in.
func (h *TokensHandler) HandleGetTokens(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	premiums, err := parsePremiums(q.Get("premium"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := tokensResponse{Summary: h.deps.TokenSummary(premiums)}
	if raw := q.Get("index"); raw != "" {
		index, err := nonNegative("index", raw)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		used := 0
		if raw := q.Get("used"); raw != "" {
			if used, err = nonNegative("used", raw); err != nil {
				writeServiceError(w, err)
				return
			}
			if used > tokens.MaxTokensPerIteration {
				writeServiceError(w, fmt.Errorf("%w: used must be at most %d", ErrBadRequest, tokens.MaxTokensPerIteration))
				return
			}
		}
		iteration, ok := h.deps.TokenIteration(index, used, premiums)
		resp.Index = &index
		resp.InEvent = &ok
		if ok {
			resp.Iteration = &iteration
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func parsePremiums(raw string) ([]bool, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	if len(parts) > tokens.Stages {
		return nil, fmt.Errorf("%w: at most %d premium flags", ErrBadRequest, tokens.Stages)
	}
	out := make([]bool, 0, len(parts))
	for _, p := range parts {
		b, err := strconv.ParseBool(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: premium: %w", ErrBadRequest, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func nonNegative(name, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", ErrBadRequest, name)
	}
	return n, nil
}
