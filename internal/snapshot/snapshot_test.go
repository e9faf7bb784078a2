package snapshot_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/snapshot"
	. "github.com/smartystreets/goconvey/convey"
)

const yamlSnapshot = `
contestants:
  - id: c1
    code: RB-001
    division: East
    category: Radio Broadcasting
    level: Secondary
    medium: Filipino
  - id: c2
    code: RB-002
    division: West
    category: Radio Broadcasting
    level: Secondary
    medium: Filipino
scores:
  - contestant_id: c1
    judge_id: j1
    raw_scores: {anchor: 18, presenter: 19, technical: 28, script: 30}
    total_score: 95
    time_deduction: 3
    final_score: 92
    elapsed_seconds: 325
    is_final: true
`

const jsonSnapshot = `{
  "contestants": [
    {"id": "c1", "code": "NW-001", "division": "East", "category": "News Writing", "level": "Elementary", "medium": "English"}
  ],
  "scores": [
    {"contestant_id": "c1", "judge_id": "j1", "category": "News Writing", "level": "Elementary", "medium": "English",
     "raw_scores": {"form": 35, "content": 45, "ethics": 9}, "total_score": 89, "time_deduction": 0, "final_score": 89, "is_final": true}
  ]
}`

func TestDecode(t *testing.T) {
	Convey("Given snapshot documents", t, func() {
		Convey("When decoding YAML", func() {
			snap, err := snapshot.Decode(strings.NewReader(yamlSnapshot), snapshot.FormatYAML)

			Convey("Then contestants and scores should be read", func() {
				So(err, ShouldBeNil)
				So(snap.Contestants, ShouldHaveLength, 2)
				So(snap.Contestants[0].Category, ShouldEqual, model.RadioBroadcast)
				So(snap.Scores, ShouldHaveLength, 1)
				So(snap.Scores[0].RawScores["script"], ShouldEqual, 30)
				So(snap.Scores[0].FinalScore, ShouldEqual, 92)
			})
		})

		Convey("When decoding JSON", func() {
			snap, err := snapshot.Decode(strings.NewReader(jsonSnapshot), snapshot.FormatJSON)
			So(err, ShouldBeNil)
			So(snap.Scores[0].Category, ShouldEqual, model.NewsWriting)
		})

		Convey("When a document has unknown fields", func() {
			_, err := snapshot.Decode(strings.NewReader(`{"contestants": [], "judges": []}`), snapshot.FormatJSON)
			So(err, ShouldNotBeNil)
		})

		Convey("When the format is unknown", func() {
			_, err := snapshot.Decode(strings.NewReader(""), "toml")
			So(errors.Is(err, snapshot.ErrUnsupportedFormat), ShouldBeTrue)
		})
	})
}

func TestLoadAndSeed(t *testing.T) {
	Convey("Given a YAML snapshot on disk", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "event.yml")
		So(os.WriteFile(path, []byte(yamlSnapshot), 0o600), ShouldBeNil)

		snap, err := snapshot.Load(path)
		So(err, ShouldBeNil)

		Convey("When seeding a store", func() {
			ctx := context.Background()
			store := repository.NewMemoryStore()
			So(snapshot.Seed(ctx, store, snap), ShouldBeNil)

			Convey("Then scores should inherit their contestant's classification", func() {
				scores, err := store.ListScores(ctx, repository.Filter{Category: model.RadioBroadcast})
				So(err, ShouldBeNil)
				So(scores, ShouldHaveLength, 1)
				So(scores[0].Medium, ShouldEqual, model.Filipino)
			})

			Convey("Then capturing should round-trip the records", func() {
				captured, err := snapshot.Capture(ctx, store)
				So(err, ShouldBeNil)
				So(captured.Contestants, ShouldHaveLength, 2)
				So(captured.Scores, ShouldHaveLength, 1)
			})
		})
	})

	Convey("Given a file with an unknown extension", t, func() {
		_, err := snapshot.Load("event.csv")
		So(errors.Is(err, snapshot.ErrUnsupportedFormat), ShouldBeTrue)
	})

	Convey("Given a snapshot whose score references a missing contestant", t, func() {
		snap := snapshot.Snapshot{Scores: []model.ScoreEntry{{ContestantID: "ghost", JudgeID: "j1"}}}
		err := snapshot.Seed(context.Background(), repository.NewMemoryStore(), snap)
		So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
	})
}
