package smoke

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Scenario is one request and the checks applied to its response.
type Scenario struct {
	Name   string
	Method string
	Path   string
	Body   string
	Status int
	Check  func(body []byte) error
}

// Scenarios returns the built-in checks. They hold for any collaborator
// configuration: feedback outcomes are only checked for shape.
func Scenarios() []Scenario {
	return []Scenario{
		{
			Name: "health", Method: http.MethodGet, Path: "/healthz", Status: http.StatusOK,
			Check: field("status", "ok"),
		},
		{
			Name: "list tracks", Method: http.MethodGet, Path: "/tracks", Status: http.StatusOK,
			Check: func(body []byte) error {
				var tracks []map[string]any
				if err := json.Unmarshal(body, &tracks); err != nil {
					return err
				}
				if len(tracks) != 4 {
					return fmt.Errorf("expected 4 tracks, got %d", len(tracks))
				}
				return nil
			},
		},
		{
			Name: "fallback subjects", Method: http.MethodGet, Path: "/tracks/Inconnue/subjects", Status: http.StatusOK,
			Check: field("known", false),
		},
		{
			Name: "good choice", Method: http.MethodPost, Path: "/evaluate", Status: http.StatusOK,
			Body:  `{"track":"Sciences","scores":[12,14,10,16]}`,
			Check: field("message", "Félicitations ! Votre moyenne de 13.00 montre que vous avez fait un bon choix en Sciences."),
		},
		{
			Name: "threshold average", Method: http.MethodPost, Path: "/evaluate", Status: http.StatusOK,
			Body:  `{"track":"Lettres","scores":[10,10,10,10]}`,
			Check: field("verdict", "good_choice"),
		},
		{
			Name: "reconsider", Method: http.MethodPost, Path: "/evaluate", Status: http.StatusOK,
			Body:  `{"track":"Lettres","scores":[9,9.5,10,10.5]}`,
			Check: field("message", "Votre moyenne de 9.75 est en dessous de 10. Peut-être devriez-vous réfléchir à votre choix de Lettres."),
		},
		{
			Name: "invalid track first", Method: http.MethodPost, Path: "/evaluate", Status: http.StatusOK,
			Body:  `{"track":"Arts","scores":[25,-1,0,0]}`,
			Check: field("message", "Branche invalide"),
		},
		{
			Name: "out of range", Method: http.MethodPost, Path: "/evaluate", Status: http.StatusOK,
			Body:  `{"track":"Sciences","scores":[25,10,10,10]}`,
			Check: field("verdict", "out_of_range"),
		},
		{
			Name: "non-numeric score", Method: http.MethodPost, Path: "/evaluate", Status: http.StatusOK,
			Body:  `{"track":"Sciences","scores":[12,"abc",10,16]}`,
			Check: field("verdict", "out_of_range"),
		},
		{
			Name: "null score", Method: http.MethodPost, Path: "/evaluate", Status: http.StatusOK,
			Body:  `{"track":"Sciences","scores":[20,20,20,null]}`,
			Check: field("verdict", "out_of_range"),
		},
		{
			Name: "malformed body", Method: http.MethodPost, Path: "/evaluate", Status: http.StatusBadRequest,
			Body: `{"track":`,
		},
		{
			Name: "blank feedback", Method: http.MethodPost, Path: "/feedback", Status: http.StatusOK,
			Body:  `{"text":"   "}`,
			Check: field("message", "Veuillez écrire votre avis."),
		},
		{
			Name: "feedback shape", Method: http.MethodPost, Path: "/feedback", Status: http.StatusOK,
			Body: `{"text":"The guidance was really helpful"}`,
			Check: func(body []byte) error {
				var out struct {
					Class   string `json:"class"`
					Message string `json:"message"`
				}
				if err := json.Unmarshal(body, &out); err != nil {
					return err
				}
				switch out.Class {
				case "positive", "negative", "neutral":
				default:
					return fmt.Errorf("unexpected class %q", out.Class)
				}
				if out.Message == "" {
					return errors.New("empty message")
				}
				return nil
			},
		},
	}
}

// field checks that a top-level JSON field equals want.
func field(name string, want any) func([]byte) error {
	return func(body []byte) error {
		var out map[string]any
		if err := json.Unmarshal(body, &out); err != nil {
			return err
		}
		got, ok := out[name]
		if !ok {
			return fmt.Errorf("missing field %q", name)
		}
		if got != want {
			return fmt.Errorf("field %q: got %v, want %v", name, got, want)
		}
		return nil
	}
}
