package scoring_test

import (
	"errors"
	"testing"

	"github.com/okian/tally/internal/domain/deduction"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/rubric"
	scoring "github.com/okian/tally/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSheet_Score(t *testing.T) {
	Convey("Given a default score sheet", t, func() {
		sheet, err := scoring.NewSheet()
		So(err, ShouldBeNil)

		Convey("When scoring a radio entry that ran 325 seconds", func() {
			res, err := sheet.Score(scoring.Input{
				Category:       model.RadioBroadcast,
				RawScores:      map[string]float64{"anchor": 18, "presenter": 19, "technical": 28, "script": 30},
				ElapsedSeconds: 325,
			})

			Convey("Then the annex deduction should be subtracted", func() {
				So(err, ShouldBeNil)
				So(res.Total, ShouldEqual, 95)
				So(res.Deduction, ShouldEqual, 3)
				So(res.Final, ShouldEqual, 92)
			})
		})

		Convey("When scoring a writing entry with elapsed time", func() {
			res, err := sheet.Score(scoring.Input{
				Category:       model.NewsWriting,
				RawScores:      map[string]float64{"form": 35, "content": 45, "ethics": 9},
				ElapsedSeconds: 5000,
			})

			Convey("Then no deduction should apply", func() {
				So(err, ShouldBeNil)
				So(res.Deduction, ShouldEqual, 0)
				So(res.Final, ShouldEqual, 89)
			})
		})

		Convey("When a value exceeds its maximum", func() {
			res, err := sheet.Score(scoring.Input{
				Category:  model.ColumnWriting,
				RawScores: map[string]float64{"voice": 31, "insight": 50, "impact": 20},
			})

			Convey("Then it should be clamped", func() {
				So(err, ShouldBeNil)
				So(res.Total, ShouldEqual, 100)
				So(res.Clamped, ShouldResemble, []string{"voice"})
			})
		})

		Convey("When the category has no rubric", func() {
			_, err := sheet.Score(scoring.Input{Category: "Poetry"})
			So(errors.Is(err, model.ErrUnknownCategory), ShouldBeTrue)
		})

		Convey("When a criterion is missing", func() {
			_, err := sheet.Score(scoring.Input{Category: model.FeatureWriting, RawScores: map[string]float64{"content": 10}})
			So(errors.Is(err, rubric.ErrMissingCriterion), ShouldBeTrue)
		})
	})

	Convey("Given a sheet with a custom rubric and no bound schedule", t, func() {
		book, err := rubric.NewBook(rubric.Rubric{Category: "Podcast", Criteria: []rubric.Criterion{{ID: "audio", MaxScore: 10}}})
		So(err, ShouldBeNil)
		calc, err := deduction.NewCalculator(deduction.WithCategories("Podcast"))
		So(err, ShouldBeNil)
		sheet, err := scoring.NewSheet(scoring.WithRubrics(book), scoring.WithDeductions(calc))
		So(err, ShouldBeNil)

		Convey("Then the custom rubric should grade submissions", func() {
			res, err := sheet.Score(scoring.Input{Category: "Podcast", RawScores: map[string]float64{"audio": 7}})
			So(err, ShouldBeNil)
			So(res.Final, ShouldEqual, 7)
		})
	})
}

func TestFinalScore(t *testing.T) {
	Convey("Given totals and deductions", t, func() {
		So(scoring.FinalScore(95, 3), ShouldEqual, 92)
		So(scoring.FinalScore(2, 5), ShouldEqual, 0)
		So(scoring.FinalScore(0, 0), ShouldEqual, 0)
	})
}
