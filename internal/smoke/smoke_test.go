package smoke_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/okian/orientbot/internal/adapters/http/api"
	service "github.com/okian/orientbot/internal/app"
	"github.com/okian/orientbot/internal/smoke"
	"github.com/okian/orientbot/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newAPIServer(ctx context.Context) *httptest.Server {
	svc := service.New()
	if err := svc.Start(ctx); err != nil {
		panic(err)
	}
	srv := api.NewServer(svc, svc)
	router := httprouter.New()
	srv.Register(router)
	return httptest.NewServer(srv.Handler(ctx, router))
}

func TestRun(t *testing.T) {
	Convey("Given a running offline API", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		ts := newAPIServer(ctx)
		defer ts.Close()

		Convey("Every built-in scenario passes", func() {
			report, err := smoke.Run(ctx, smoke.Config{BaseURL: ts.URL, Concurrency: 3}, smoke.Scenarios())
			So(err, ShouldBeNil)
			So(report.Failed, ShouldEqual, 0)
			So(report.Passed, ShouldEqual, len(smoke.Scenarios()))
			So(report.Outcomes[0].Name, ShouldEqual, "health")
		})
	})

	Convey("Given a server that always fails", t, func() {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer ts.Close()

		Convey("The report lists the failures", func() {
			scenarios := smoke.Scenarios()[:2]
			report, err := smoke.Run(context.Background(), smoke.Config{BaseURL: ts.URL}, scenarios)
			So(errors.Is(err, smoke.ErrFailed), ShouldBeTrue)
			So(report.Failed, ShouldEqual, 2)
			So(report.Outcomes[1].Err, ShouldNotBeNil)
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("Run returns the context error", func() {
			_, err := smoke.Run(ctx, smoke.Config{BaseURL: "http://127.0.0.1:1"}, smoke.Scenarios()[:1])
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestScenarioChecks(t *testing.T) {
	Convey("Scenario checks reject wrong bodies", t, func() {
		for _, sc := range smoke.Scenarios() {
			if sc.Check == nil {
				continue
			}
			So(sc.Check([]byte(`{}`)), ShouldNotBeNil)
		}
	})
}
