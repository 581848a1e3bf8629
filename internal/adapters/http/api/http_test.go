package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/okian/orientbot/internal/adapters/http/api"
	service "github.com/okian/orientbot/internal/app"
	"github.com/okian/orientbot/internal/domain/advisory"
	"github.com/okian/orientbot/internal/domain/feedback"
	"github.com/okian/orientbot/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// stoppedDeps reports the service as not started.
type stoppedDeps struct{}

func (stoppedDeps) Evaluate(context.Context, string, ...float64) (advisory.Result, error) {
	return advisory.Result{}, service.ErrNotStarted
}

func (stoppedDeps) Classify(context.Context, string) (feedback.Result, error) {
	return feedback.Result{}, service.ErrNotStarted
}

func (stoppedDeps) Tracks() []service.TrackInfo { return nil }

func (stoppedDeps) GetStats() map[string]interface{} { return map[string]interface{}{"started": false} }

func newHandler(ctx context.Context, deps api.Dependencies, stats api.StatsProvider, opts ...api.Option) http.Handler {
	srv := api.NewServer(deps, stats, opts...)
	router := httprouter.New()
	srv.Register(router)
	return srv.Handler(ctx, router)
}

func newServiceHandler(ctx context.Context, opts ...api.Option) http.Handler {
	svc := service.New()
	So(svc.Start(ctx), ShouldBeNil)
	return newHandler(ctx, svc, svc, opts...)
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	So(json.Unmarshal(rec.Body.Bytes(), &out), ShouldBeNil)
	return out
}

func TestTracksEndpoints(t *testing.T) {
	Convey("Given the API", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		h := newServiceHandler(ctx)

		Convey("GET /tracks lists four tracks with subjects", func() {
			rec := do(h, http.MethodGet, "/tracks", "")
			So(rec.Code, ShouldEqual, http.StatusOK)

			var out []struct {
				Track    string   `json:"track"`
				Subjects []string `json:"subjects"`
			}
			So(json.Unmarshal(rec.Body.Bytes(), &out), ShouldBeNil)
			So(len(out), ShouldEqual, 4)
			So(out[0].Track, ShouldEqual, "Sciences")
			So(out[3].Subjects, ShouldResemble, []string{"Mathématiques", "Informatique", "Physique", "Technique"})
		})

		Convey("GET /tracks/:track/subjects returns the subjects of a known track", func() {
			rec := do(h, http.MethodGet, "/tracks/Lettres/subjects", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			out := decode(rec)
			So(out["known"], ShouldEqual, true)
			So(out["subjects"], ShouldResemble, []any{"Français", "Arabe", "Histoire", "Géographie"})
		})

		Convey("GET /tracks/:track/subjects falls back for unknown tracks", func() {
			rec := do(h, http.MethodGet, "/tracks/Arts/subjects", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			out := decode(rec)
			So(out["known"], ShouldEqual, false)
			So(out["subjects"], ShouldResemble, []any{"Matière 1", "Matière 2", "Matière 3", "Matière 4"})
		})
	})
}

func TestEvaluateEndpoint(t *testing.T) {
	Convey("Given the API", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		h := newServiceHandler(ctx)

		Convey("A passing average gets the congratulatory message", func() {
			rec := do(h, http.MethodPost, "/evaluate", `{"track":"Sciences","scores":[12,14,10,16]}`)
			So(rec.Code, ShouldEqual, http.StatusOK)
			out := decode(rec)
			So(out["verdict"], ShouldEqual, "good_choice")
			So(out["average"], ShouldEqual, 13.0)
			So(out["message"], ShouldEqual, "Félicitations ! Votre moyenne de 13.00 montre que vous avez fait un bon choix en Sciences.")
		})

		Convey("An average just below 10 gets the cautionary message", func() {
			rec := do(h, http.MethodPost, "/evaluate", `{"track":"Lettres","scores":[9,9.5,10,10.5]}`)
			out := decode(rec)
			So(out["verdict"], ShouldEqual, "reconsider")
			So(out["message"], ShouldEqual, "Votre moyenne de 9.75 est en dessous de 10. Peut-être devriez-vous réfléchir à votre choix de Lettres.")
		})

		Convey("An unknown track is reported before the scores", func() {
			rec := do(h, http.MethodPost, "/evaluate", `{"track":"Arts","scores":[25,-3,"x",null]}`)
			So(rec.Code, ShouldEqual, http.StatusOK)
			out := decode(rec)
			So(out["verdict"], ShouldEqual, "invalid_track")
			So(out["message"], ShouldEqual, "Branche invalide")
			_, hasAvg := out["average"]
			So(hasAvg, ShouldBeFalse)
		})

		Convey("Non-numeric scores are out of range", func() {
			rec := do(h, http.MethodPost, "/evaluate", `{"track":"Sciences","scores":[12,"abc",10,16]}`)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec)["verdict"], ShouldEqual, "out_of_range")
		})

		Convey("Null scores are out of range", func() {
			for _, body := range []string{
				`{"track":"Sciences","scores":[null,null,null,null]}`,
				`{"track":"Sciences","scores":[20,20,20,null]}`,
				`{"track":"Sciences","scores":[20,20,20," null "]}`,
			} {
				rec := do(h, http.MethodPost, "/evaluate", body)
				So(rec.Code, ShouldEqual, http.StatusOK)
				out := decode(rec)
				So(out["verdict"], ShouldEqual, "out_of_range")
				So(out["message"], ShouldEqual, "Les notes doivent être comprises entre 0 et 20.")
				_, hasAvg := out["average"]
				So(hasAvg, ShouldBeFalse)
			}
		})

		Convey("Numeric strings are accepted", func() {
			rec := do(h, http.MethodPost, "/evaluate", `{"track":"Sciences","scores":["12","14,5",10,16]}`)
			So(decode(rec)["verdict"], ShouldEqual, "good_choice")
		})

		Convey("A wrong score count is out of range", func() {
			rec := do(h, http.MethodPost, "/evaluate", `{"track":"Sciences","scores":[12,14,10]}`)
			So(decode(rec)["message"], ShouldEqual, "Les notes doivent être comprises entre 0 et 20.")
		})

		Convey("Malformed JSON is a bad request", func() {
			rec := do(h, http.MethodPost, "/evaluate", `{"track":`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(rec)["code"], ShouldEqual, "bad_request")
		})

		Convey("GET is not allowed", func() {
			rec := do(h, http.MethodGet, "/evaluate", "")
			So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestFeedbackEndpoint(t *testing.T) {
	Convey("Given the API with offline collaborators", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		h := newServiceHandler(ctx)

		Convey("Positive text is classified positive", func() {
			rec := do(h, http.MethodPost, "/feedback", `{"text":"great advice"}`)
			So(rec.Code, ShouldEqual, http.StatusOK)
			out := decode(rec)
			So(out["class"], ShouldEqual, "positive")
			So(out["degraded"], ShouldEqual, false)
			So(out["polarity"], ShouldBeGreaterThan, 0.0)
		})

		Convey("Blank text gets the prompt", func() {
			rec := do(h, http.MethodPost, "/feedback", `{"text":"  "}`)
			out := decode(rec)
			So(out["empty"], ShouldEqual, true)
			So(out["message"], ShouldEqual, "Veuillez écrire votre avis.")
			_, hasPolarity := out["polarity"]
			So(hasPolarity, ShouldBeFalse)
		})

		Convey("A missing text field is treated as blank", func() {
			rec := do(h, http.MethodPost, "/feedback", `{}`)
			So(decode(rec)["empty"], ShouldEqual, true)
		})

		Convey("Trailing data after the body is rejected", func() {
			rec := do(h, http.MethodPost, "/feedback", `{"text":"a"} {"text":"b"}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})

	Convey("Given a small body limit", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		h := newServiceHandler(ctx, api.WithMaxBodyBytes(16))

		Convey("Oversized bodies are rejected", func() {
			rec := do(h, http.MethodPost, "/feedback", `{"text":"this body is far too long"}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestServiceUnavailable(t *testing.T) {
	Convey("Given a service that is not started", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		h := newHandler(ctx, stoppedDeps{}, stoppedDeps{})

		Convey("Operations answer 503", func() {
			rec := do(h, http.MethodPost, "/evaluate", `{"track":"Sciences","scores":[1,2,3,4]}`)
			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
			rec = do(h, http.MethodPost, "/feedback", `{"text":"ok"}`)
			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestOperationalEndpoints(t *testing.T) {
	Convey("Given the API", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		h := newServiceHandler(ctx)

		Convey("GET /healthz is ok", func() {
			rec := do(h, http.MethodGet, "/healthz", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec)["status"], ShouldEqual, "ok")
		})

		Convey("GET /metrics exposes the registry", func() {
			_ = do(h, http.MethodGet, "/healthz", "")
			rec := do(h, http.MethodGet, "/metrics", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "orientbot_advisor_http_requests_total")
		})

		Convey("GET /stats reports counters", func() {
			_ = do(h, http.MethodPost, "/evaluate", `{"track":"Sciences","scores":[12,14,10,16]}`)
			rec := do(h, http.MethodGet, "/stats", "")
			out := decode(rec)
			So(out["started"], ShouldEqual, true)
			So(out["evaluations"], ShouldEqual, 1.0)
		})

		Convey("Unknown routes are JSON 404s", func() {
			rec := do(h, http.MethodGet, "/nope", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(decode(rec)["code"], ShouldEqual, "not_found")
		})
	})
}

func TestRequestID(t *testing.T) {
	Convey("Given the API", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		h := newServiceHandler(ctx)

		Convey("A request id is generated when absent", func() {
			rec := do(h, http.MethodGet, "/healthz", "")
			So(len(rec.Header().Get(api.HeaderRequestID)), ShouldEqual, 36)
		})

		Convey("An incoming request id is echoed", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set(api.HeaderRequestID, "abc-123")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			So(rec.Header().Get(api.HeaderRequestID), ShouldEqual, "abc-123")
		})
	})
}

func TestRateLimit(t *testing.T) {
	Convey("Given a limit of one request per client", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		h := newServiceHandler(ctx, api.WithRateLimit(0.001, 1))

		Convey("The second request from the same address is rejected", func() {
			So(do(h, http.MethodGet, "/healthz", "").Code, ShouldEqual, http.StatusOK)

			rec := do(h, http.MethodGet, "/healthz", "")
			So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
			So(decode(rec)["code"], ShouldEqual, "rate_limited")
			So(rec.Header().Get("Retry-After"), ShouldNotBeEmpty)
		})

		Convey("Other addresses have their own bucket", func() {
			So(do(h, http.MethodGet, "/healthz", "").Code, ShouldEqual, http.StatusOK)

			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.RemoteAddr = "10.0.0.9:4000"
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusOK)
		})
	})
}
