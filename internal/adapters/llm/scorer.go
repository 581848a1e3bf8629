package llm

import "context"

const polarityPrompt = "Rate the sentiment of the user's English text as a polarity " +
	"between -1 (very negative) and 1 (very positive), 0 being neutral. " +
	"Answer in the \"polarity\" field."

// Scorer rates sentiment polarity with a chat model.
type Scorer struct {
	client *Client
}

// NewScorer creates a Scorer backed by client.
func NewScorer(client *Client) *Scorer {
	return &Scorer{client: client}
}

// Polarity returns a value in [-1, 1].
func (s *Scorer) Polarity(ctx context.Context, text string) (float64, error) {
	var out struct {
		Polarity float64 `json:"polarity"`
	}
	if err := s.client.complete(ctx, polarityPrompt, text, polaritySchema, &out); err != nil {
		return 0, err
	}
	return out.Polarity, nil
}
