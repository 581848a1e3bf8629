package llm

import (
	"context"
	"fmt"
	"strings"
)

const (
	detectPrompt = "Identify the language of the user's text. " +
		"Answer with its ISO 639-1 code in the \"language\" field."
	translatePrompt = "Translate the user's text into the language with ISO 639-1 code %q. " +
		"Keep the meaning and tone. Answer in the \"translation\" field only."
)

// Translator detects languages and translates text with a chat model.
type Translator struct {
	client *Client
}

// NewTranslator creates a Translator backed by client.
func NewTranslator(client *Client) *Translator {
	return &Translator{client: client}
}

// Detect returns the lower-cased language code of text.
func (t *Translator) Detect(ctx context.Context, text string) (string, error) {
	var out struct {
		Language string `json:"language"`
	}
	if err := t.client.complete(ctx, detectPrompt, text, detectSchema, &out); err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(out.Language)), nil
}

// Translate returns text translated into target.
func (t *Translator) Translate(ctx context.Context, text, target string) (string, error) {
	var out struct {
		Translation string `json:"translation"`
	}
	system := fmt.Sprintf(translatePrompt, target)
	if err := t.client.complete(ctx, system, text, translateSchema, &out); err != nil {
		return "", err
	}
	return out.Translation, nil
}
