package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/tally/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScoreSubmission(t *testing.T) {
	Convey("Given a submission decoded from JSON", t, func() {
		Convey("When is_final is omitted", func() {
			var s types.ScoreSubmission
			err := json.Unmarshal([]byte(`{"contestant_id":"c1","judge_id":"j1","raw_scores":{"form":30}}`), &s)

			Convey("Then it should default to final", func() {
				So(err, ShouldBeNil)
				So(s.Final(), ShouldBeTrue)
				So(s.RawScores["form"], ShouldEqual, 30)
			})
		})

		Convey("When is_final is false", func() {
			var s types.ScoreSubmission
			err := json.Unmarshal([]byte(`{"contestant_id":"c1","judge_id":"j1","raw_scores":{"form":30},"is_final":false}`), &s)

			Convey("Then it should be a draft", func() {
				So(err, ShouldBeNil)
				So(s.Final(), ShouldBeFalse)
			})
		})
	})
}
