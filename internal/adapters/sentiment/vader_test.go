package sentiment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/orientbot/internal/adapters/sentiment"
	. "github.com/smartystreets/goconvey/convey"
)

func TestVader_Polarity(t *testing.T) {
	Convey("Given the default scorer", t, func() {
		v := sentiment.NewVader()
		ctx := context.Background()

		score := func(text string) float64 {
			p, err := v.Polarity(ctx, text)
			So(err, ShouldBeNil)
			So(p, ShouldBeBetweenOrEqual, -1, 1)
			return p
		}

		Convey("When the text carries a single sentiment word", func() {
			So(score("Everything was great"), ShouldBeGreaterThan, 0.5)
			So(score("That was BAD."), ShouldBeLessThan, -0.5)
		})

		Convey("When the text carries no sentiment word", func() {
			So(score("It was a Tuesday"), ShouldEqual, 0)
		})

		Convey("When the sentiment word is less common", func() {
			So(score("I was dissatisfied"), ShouldBeLessThan, 0)
			So(score("It was alright"), ShouldBeGreaterThan, 0)
		})

		Convey("When a negation precedes a sentiment word", func() {
			So(score("not good"), ShouldBeLessThan, 0)
			So(score("I didn't love it"), ShouldBeLessThan, 0)
		})

		Convey("When a booster precedes a sentiment word", func() {
			So(score("very good"), ShouldBeGreaterThan, score("good"))
		})

		Convey("When scoring twice", func() {
			So(score("nice and helpful"), ShouldEqual, score("nice and helpful"))
		})
	})

	Convey("Given custom words", t, func() {
		ctx := context.Background()
		custom := sentiment.NewVader(sentiment.WithWords(map[string]float64{"Orientastic": 2.5}))

		p, err := custom.Polarity(ctx, "orientastic")
		So(err, ShouldBeNil)
		So(p, ShouldBeGreaterThan, 0)

		Convey("The default scorer is left untouched", func() {
			p, err := sentiment.NewVader().Polarity(ctx, "orientastic")
			So(err, ShouldBeNil)
			So(p, ShouldEqual, 0)
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := sentiment.NewVader().Polarity(ctx, "good")
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}
