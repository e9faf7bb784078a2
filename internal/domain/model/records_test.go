package model_test

import (
	"testing"

	model "github.com/okian/tally/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestClassification(t *testing.T) {
	convey.Convey("Given a classification triple", t, func() {
		c := model.Classification{Category: model.RadioBroadcast, Level: model.Secondary, Medium: model.Filipino}

		convey.Convey("Then it should render as category/level/medium", func() {
			convey.So(c.String(), convey.ShouldEqual, "Radio Broadcasting/Secondary/Filipino")
			convey.So(c.IsZero(), convey.ShouldBeFalse)
		})

		convey.Convey("When a part is missing", func() {
			c.Medium = ""

			convey.Convey("Then it should be reported as zero", func() {
				convey.So(c.IsZero(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given the default enumerations", t, func() {
		convey.So(model.Categories(), convey.ShouldHaveLength, 8)
		convey.So(model.Levels(), convey.ShouldResemble, []model.Level{model.Elementary, model.Secondary})
		convey.So(model.Mediums(), convey.ShouldResemble, []model.Medium{model.English, model.Filipino})
	})
}

func TestContestant(t *testing.T) {
	convey.Convey("Given a contestant", t, func() {
		c := model.Contestant{
			ID:       "c-1",
			Code:     "NW-E-001",
			Division: "East",
			Category: model.NewsWriting,
			Level:    model.Elementary,
			Medium:   model.English,
		}

		convey.Convey("Then its classification should mirror its fields", func() {
			convey.So(c.Classification(), convey.ShouldResemble, model.Classification{
				Category: model.NewsWriting,
				Level:    model.Elementary,
				Medium:   model.English,
			})
		})
	})
}

func TestScoreEntryClone(t *testing.T) {
	convey.Convey("Given a score entry with raw scores", t, func() {
		e := model.ScoreEntry{ContestantID: "c-1", JudgeID: "j-1", RawScores: map[string]float64{"form": 30}}

		convey.Convey("When it is cloned and the clone is modified", func() {
			clone := e.Clone()
			clone.RawScores["form"] = 10

			convey.Convey("Then the original should be unchanged", func() {
				convey.So(e.RawScores["form"], convey.ShouldEqual, 30)
				convey.So(clone.ContestantID, convey.ShouldEqual, "c-1")
			})
		})

		convey.Convey("When an entry without raw scores is cloned", func() {
			clone := model.ScoreEntry{}.Clone()

			convey.Convey("Then the map should stay nil", func() {
				convey.So(clone.RawScores, convey.ShouldBeNil)
			})
		})
	})
}
