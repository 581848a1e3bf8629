package advisory_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/okian/orientbot/internal/domain/advisory"
	"github.com/okian/orientbot/internal/domain/track"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEvaluator_Evaluate(t *testing.T) {
	Convey("Given a default evaluator", t, func() {
		e := advisory.New()
		msgs := advisory.DefaultMessages()

		Convey("When the track is unknown", func() {
			r := e.Evaluate("Sport", 12, 12, 12, 12)

			Convey("Then it returns exactly the invalid track message", func() {
				So(r.Verdict, ShouldEqual, advisory.VerdictInvalidTrack)
				So(r.Message, ShouldEqual, "Branche invalide")
				So(r.Evaluated(), ShouldBeFalse)
			})

			Convey("And the scores are not looked at", func() {
				r := e.Evaluate("Sport", 99, -4, math.NaN())
				So(r.Message, ShouldEqual, msgs.InvalidTrack)
			})
		})

		Convey("When a score is out of range", func() {
			cases := [][]float64{
				{21, 10, 10, 10},
				{10, -1, 10, 10},
				{10, 10, 20.0001, 10},
				{10, 10, 10, math.NaN()},
				{10, 10, 10, math.Inf(1)},
				{10, 10, 10},
				{10, 10, 10, 10, 10},
			}
			for _, c := range cases {
				r := e.Evaluate(string(track.Lettres), c...)
				So(r.Verdict, ShouldEqual, advisory.VerdictOutOfRange)
				So(r.Message, ShouldEqual, "Les notes doivent être comprises entre 0 et 20.")
			}
		})

		Convey("When the average is exactly the threshold", func() {
			r := e.Evaluate(string(track.Sciences), 10, 10, 10, 10)

			Convey("Then the congratulatory branch is taken", func() {
				So(r.Verdict, ShouldEqual, advisory.VerdictGoodChoice)
				So(r.Average, ShouldEqual, 10)
				So(r.Message, ShouldEqual, "Félicitations ! Votre moyenne de 10.00 montre que vous avez fait un bon choix en Sciences.")
			})
		})

		Convey("When the average is below the threshold", func() {
			r := e.Evaluate(string(track.Economie), 9, 9.5, 10, 10.5)

			Convey("Then the cautionary branch is taken", func() {
				So(r.Verdict, ShouldEqual, advisory.VerdictReconsider)
				So(r.Average, ShouldEqual, 9.75)
				So(r.Message, ShouldEqual, "Votre moyenne de 9.75 est en dessous de 10. Peut-être devriez-vous réfléchir à votre choix de Économie et services.")
			})
		})

		Convey("When bounds are hit exactly", func() {
			So(e.Evaluate(string(track.Technology), 0, 0, 0, 0).Verdict, ShouldEqual, advisory.VerdictReconsider)
			So(e.Evaluate(string(track.Technology), 20, 20, 20, 20).Verdict, ShouldEqual, advisory.VerdictGoodChoice)
		})

		Convey("When the same input is evaluated twice", func() {
			a := e.Evaluate(string(track.Lettres), 14.25, 8, 11, 13)
			b := e.Evaluate(string(track.Lettres), 14.25, 8, 11, 13)
			So(a, ShouldResemble, b)
		})
	})

	Convey("Given every valid score grid", t, func() {
		e := advisory.New()
		steps := []float64{0, 5, 9.5, 10, 12.75, 20}
		for _, a := range steps {
			for _, b := range steps {
				avg := advisory.Average(a, b, a, b)
				r := e.Evaluate(string(track.Sciences), a, b, a, b)
				if avg >= advisory.PassThreshold {
					So(r.Verdict, ShouldEqual, advisory.VerdictGoodChoice)
				} else {
					So(r.Verdict, ShouldEqual, advisory.VerdictReconsider)
				}
				So(r.Message, ShouldContainSubstring, fmt.Sprintf("%.2f", avg))
			}
		}
	})
}

func TestWithMessages(t *testing.T) {
	Convey("Given custom messages", t, func() {
		e := advisory.New(advisory.WithMessages(advisory.Messages{
			InvalidTrack: "unknown track",
			GoodChoice:   "ok %.1f %s",
		}))

		So(e.Evaluate("nope").Message, ShouldEqual, "unknown track")
		So(e.Evaluate(string(track.Lettres), 12, 12, 12, 12).Message, ShouldEqual, "ok 12.0 Lettres")

		Convey("Then unset messages keep their defaults", func() {
			So(e.Evaluate(string(track.Lettres), 30, 12, 12, 12).Message, ShouldEqual, advisory.DefaultMessages().OutOfRange)
		})
	})
}

func TestValidateMessages(t *testing.T) {
	Convey("Given message overrides", t, func() {
		Convey("The defaults and empty overrides are valid", func() {
			So(advisory.ValidateMessages(advisory.DefaultMessages()), ShouldBeNil)
			So(advisory.ValidateMessages(advisory.Messages{}), ShouldBeNil)
		})

		Convey("A float verb then a string verb is valid", func() {
			So(advisory.ValidateMessages(advisory.Messages{
				GoodChoice: "Bravo: %.1f%% en %s",
				Reconsider: "%6.2f / 20 pour %v",
			}), ShouldBeNil)
		})

		Convey("Wrong or missing verbs are rejected", func() {
			for _, format := range []string{
				"Bravo %s pour %.2f",
				"Bravo %d en %s",
				"Bravo en %s",
				"Bravo",
				"%.2f %s %s",
				"%[2]s %[1]f",
				"trailing %",
			} {
				err := advisory.ValidateMessages(advisory.Messages{Reconsider: format})
				So(errors.Is(err, advisory.ErrInvalidMessage), ShouldBeTrue)
			}
		})
	})
}
