package api

import (
	"context"
	"net/http"

	"github.com/okian/orientbot/internal/domain/feedback"
)

// Classifier classifies free-text feedback.
type Classifier interface {
	Classify(ctx context.Context, text string) (feedback.Result, error)
}

type feedbackRequest struct {
	Text string `json:"text"`
}

type feedbackResponse struct {
	Class      string   `json:"class"`
	Message    string   `json:"message"`
	Polarity   *float64 `json:"polarity,omitempty"`
	Language   string   `json:"language,omitempty"`
	Translated bool     `json:"translated"`
	Degraded   bool     `json:"degraded"`
	Empty      bool     `json:"empty"`
}

// FeedbackHandler handles feedback requests.
type FeedbackHandler struct {
	deps    Classifier
	maxBody int64
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(deps Classifier, maxBody int64) *FeedbackHandler {
	return &FeedbackHandler{deps: deps, maxBody: maxBody}
}

// HandleFeedback handles POST /feedback requests. A missing text field is
// treated like blank input.
func (h *FeedbackHandler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	const op = "api.feedback"
	var req feedbackRequest
	if err := decodeBody(w, r, h.maxBody, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.Classify(r.Context(), req.Text)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}

	resp := feedbackResponse{
		Class:      string(res.Class),
		Message:    res.Message,
		Language:   res.Language,
		Translated: res.Translated,
		Degraded:   res.Degraded,
		Empty:      res.Empty,
	}
	if !res.Empty && !res.Degraded {
		p := res.Polarity
		resp.Polarity = &p
	}
	writeJSON(w, http.StatusOK, resp)
}
