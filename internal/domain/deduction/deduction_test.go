package deduction_test

import (
	"errors"
	"testing"

	"github.com/okian/tally/internal/domain/deduction"
	"github.com/okian/tally/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRadioSchedule(t *testing.T) {
	Convey("Given the radio schedule", t, func() {
		s := deduction.Radio()

		Convey("Then performances within the limit should cost nothing", func() {
			for _, elapsed := range []int{-10, 0, 1, 150, 299, 300} {
				So(s.Penalty(elapsed), ShouldEqual, 0)
			}
		})

		Convey("Then each tier boundary should step the penalty", func() {
			cases := []struct {
				elapsed int
				want    float64
			}{
				{301, 1}, {303, 1},
				{304, 2}, {320, 2},
				{321, 3}, {340, 3},
				{341, 5}, {1000, 5},
			}
			for _, c := range cases {
				So(s.Penalty(c.elapsed), ShouldEqual, c.want)
			}
		})

		Convey("Then a 325 second run should cost 3 points", func() {
			So(s.Penalty(325), ShouldEqual, 3)
		})
	})
}

func TestVideoSchedule(t *testing.T) {
	Convey("Given the video schedule", t, func() {
		s := deduction.Video()

		Convey("Then each tier boundary should step the penalty", func() {
			cases := []struct {
				elapsed int
				want    float64
			}{
				{360, 0},
				{361, 1}, {375, 1},
				{376, 2}, {405, 2},
				{406, 3}, {435, 3},
				{436, 5},
			}
			for _, c := range cases {
				So(s.Penalty(c.elapsed), ShouldEqual, c.want)
			}
		})
	})
}

func TestScheduleValidate(t *testing.T) {
	Convey("Given schedules to validate", t, func() {
		Convey("The built-in schedules should be valid", func() {
			So(deduction.Radio().Validate(), ShouldBeNil)
			So(deduction.Video().Validate(), ShouldBeNil)
		})

		Convey("Tiers out of order should be rejected", func() {
			s := deduction.Schedule{Name: "bad", LimitSeconds: 60, Tiers: []deduction.Tier{{UpTo: 10, Penalty: 1}, {UpTo: 5, Penalty: 2}}, OverPenalty: 3}
			So(errors.Is(s.Validate(), deduction.ErrInvalidSchedule), ShouldBeTrue)
		})

		Convey("Decreasing penalties should be rejected", func() {
			s := deduction.Schedule{Name: "bad", LimitSeconds: 60, Tiers: []deduction.Tier{{UpTo: 5, Penalty: 2}, {UpTo: 10, Penalty: 1}}, OverPenalty: 3}
			So(errors.Is(s.Validate(), deduction.ErrInvalidSchedule), ShouldBeTrue)
		})

		Convey("An over penalty below the last tier should be rejected", func() {
			s := deduction.Schedule{Name: "bad", LimitSeconds: 60, Tiers: []deduction.Tier{{UpTo: 5, Penalty: 2}}, OverPenalty: 1}
			So(errors.Is(s.Validate(), deduction.ErrInvalidSchedule), ShouldBeTrue)
		})
	})
}

func TestCalculator(t *testing.T) {
	Convey("Given a default calculator", t, func() {
		c, err := deduction.NewCalculator()
		So(err, ShouldBeNil)

		Convey("When computing a radio deduction", func() {
			d, err := c.Deduction(model.RadioBroadcast, 325)

			Convey("Then the radio schedule should apply", func() {
				So(err, ShouldBeNil)
				So(d, ShouldEqual, 3)
			})
		})

		Convey("When computing a TV deduction", func() {
			d, err := c.Deduction(model.TVBroadcast, 436)
			So(err, ShouldBeNil)
			So(d, ShouldEqual, 5)
		})

		Convey("When the category is untimed", func() {
			d, err := c.Deduction(model.NewsWriting, 9999)

			Convey("Then no deduction should apply", func() {
				So(err, ShouldBeNil)
				So(d, ShouldEqual, 0)
				So(c.Timed(model.NewsWriting), ShouldBeFalse)
			})
		})

		Convey("When the category is unknown", func() {
			_, err := c.Deduction("Poetry", 10)

			Convey("Then a configuration error should be returned", func() {
				So(errors.Is(err, model.ErrUnknownCategory), ShouldBeTrue)
			})
		})
	})

	Convey("Given a calculator bound to a missing schedule", t, func() {
		_, err := deduction.NewCalculator(deduction.WithCategorySchedule("Podcast", "audio"))

		Convey("Then construction should fail", func() {
			So(errors.Is(err, deduction.ErrUnknownSchedule), ShouldBeTrue)
		})
	})

	Convey("Given a calculator with a custom schedule", t, func() {
		custom := deduction.Schedule{Name: "podcast", LimitSeconds: 600, Tiers: []deduction.Tier{{UpTo: 30, Penalty: 0.5}}, OverPenalty: 2}
		c, err := deduction.NewCalculator(
			deduction.WithCategories(model.NewsWriting, "Podcast"),
			deduction.WithSchedule(custom),
			deduction.WithCategorySchedule("Podcast", "podcast"),
		)
		So(err, ShouldBeNil)

		Convey("Then the bound category should be recognized", func() {
			d, err := c.Deduction("Podcast", 620)
			So(err, ShouldBeNil)
			So(d, ShouldEqual, 0.5)
		})

		Convey("Then categories outside the configured set should be unknown", func() {
			_, err := c.Deduction(model.SportsWriting, 10)
			So(errors.Is(err, model.ErrUnknownCategory), ShouldBeTrue)
		})
	})

	Convey("Given a calculator whose categories exclude broadcasting", t, func() {
		c, err := deduction.NewCalculator(deduction.WithCategories(model.NewsWriting))
		So(err, ShouldBeNil)

		Convey("Then the default bindings should not make broadcasting known", func() {
			_, err := c.Deduction(model.RadioBroadcast, 500)
			So(errors.Is(err, model.ErrUnknownCategory), ShouldBeTrue)
			So(c.Timed(model.TVBroadcast), ShouldBeFalse)
		})
	})

	Convey("Given a binding for a category outside the configured set", t, func() {
		_, err := deduction.NewCalculator(
			deduction.WithCategories(model.NewsWriting),
			deduction.WithCategorySchedule(model.RadioBroadcast, deduction.RadioSchedule),
		)

		Convey("Then construction should fail with an unknown category", func() {
			So(errors.Is(err, model.ErrUnknownCategory), ShouldBeTrue)
		})
	})

	Convey("Given explicit bindings that only time radio", t, func() {
		c, err := deduction.NewCalculator(deduction.WithCategorySchedules(map[model.Category]string{
			model.RadioBroadcast: deduction.RadioSchedule,
		}))
		So(err, ShouldBeNil)

		Convey("Then TV should be untimed", func() {
			d, err := c.Deduction(model.TVBroadcast, 500)
			So(err, ShouldBeNil)
			So(d, ShouldEqual, 0)
			So(c.Timed(model.TVBroadcast), ShouldBeFalse)
		})

		Convey("Then radio should keep its schedule", func() {
			d, err := c.Deduction(model.RadioBroadcast, 325)
			So(err, ShouldBeNil)
			So(d, ShouldEqual, 3)
		})
	})

	Convey("Given an empty binding set", t, func() {
		c, err := deduction.NewCalculator(deduction.WithCategorySchedules(map[model.Category]string{}))
		So(err, ShouldBeNil)

		Convey("Then no category should be timed", func() {
			So(c.Timed(model.RadioBroadcast), ShouldBeFalse)
			So(c.Timed(model.TVBroadcast), ShouldBeFalse)
		})
	})
}
