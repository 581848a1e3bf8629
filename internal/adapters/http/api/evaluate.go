package api

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/orientbot/internal/domain/advisory"
	"github.com/okian/orientbot/internal/domain/track"
)

// Evaluator checks a track choice against scores.
type Evaluator interface {
	Evaluate(ctx context.Context, track string, scores ...float64) (advisory.Result, error)
}

// evaluateRequest mirrors the OpenAPI schema for POST /evaluate. Scores are
// kept raw so that non-numeric values reach the evaluator as out of range.
type evaluateRequest struct {
	Track  string            `json:"track"`
	Scores []json.RawMessage `json:"scores"`
}

type evaluateResponse struct {
	Verdict  string    `json:"verdict"`
	Message  string    `json:"message"`
	Track    string    `json:"track"`
	Subjects [4]string `json:"subjects"`
	Average  *float64  `json:"average,omitempty"`
}

// EvaluateHandler handles evaluation requests.
type EvaluateHandler struct {
	deps    Evaluator
	maxBody int64
}

// NewEvaluateHandler creates a new evaluate handler.
func NewEvaluateHandler(deps Evaluator, maxBody int64) *EvaluateHandler {
	return &EvaluateHandler{deps: deps, maxBody: maxBody}
}

// HandleEvaluate handles POST /evaluate requests.
func (h *EvaluateHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "api.evaluate"
	var req evaluateRequest
	if err := decodeBody(w, r, h.maxBody, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	scores := make([]float64, len(req.Scores))
	for i, raw := range req.Scores {
		scores[i] = parseScore(raw)
	}

	res, err := h.deps.Evaluate(r.Context(), req.Track, scores...)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}

	resp := evaluateResponse{
		Verdict:  string(res.Verdict),
		Message:  res.Message,
		Track:    req.Track,
		Subjects: track.SubjectsFor(req.Track),
	}
	if res.Evaluated() {
		avg := res.Average
		resp.Average = &avg
	}
	writeJSON(w, http.StatusOK, resp)
}

// parseScore accepts a JSON number or a string holding one. Anything else
// yields NaN, which the evaluator reports as out of range.
func parseScore(raw json.RawMessage) float64 {
	// null decodes without error and leaves the target untouched.
	var f *float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if f == nil {
			return math.NaN()
		}
		return *f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	}
	return math.NaN()
}
