package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/okian/tally/internal/adapters/repository"
	service "github.com/okian/tally/internal/app"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/rubric"
	"github.com/okian/tally/internal/domain/types"
	"github.com/okian/tally/internal/snapshot"
	"github.com/okian/tally/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

var (
	news  = model.Classification{Category: model.NewsWriting, Level: model.Elementary, Medium: model.English}
	radio = model.Classification{Category: model.RadioBroadcast, Level: model.Secondary, Medium: model.Filipino}
)

func fixture() snapshot.Snapshot {
	mk := func(id, code, division string, c model.Classification) model.Contestant {
		return model.Contestant{
			ID: id, Code: code, Name: "Student " + code, School: division + " School", Division: division,
			Category: c.Category, Level: c.Level, Medium: c.Medium,
		}
	}
	return snapshot.Snapshot{Contestants: []model.Contestant{
		mk("a", "NW-01", "North", news),
		mk("b", "NW-02", "South", news),
		mk("r", "RB-01", "East", radio),
	}}
}

func newService(opts ...service.Option) *service.Service {
	svc, err := service.New(append([]service.Option{service.WithLogger(logger.Nop())}, opts...)...)
	So(err, ShouldBeNil)
	So(svc.Seed(context.Background(), fixture()), ShouldBeNil)
	return svc
}

func submit(svc *service.Service, contestant, judge string, raw map[string]float64) types.ScoreReceipt {
	r, err := svc.SubmitScore(context.Background(), types.ScoreSubmission{
		ContestantID: contestant,
		JudgeID:      judge,
		RawScores:    raw,
	})
	So(err, ShouldBeNil)
	return r
}

func newsSheet(form, content, ethics float64) map[string]float64 {
	return map[string]float64{"form": form, "content": content, "ethics": ethics}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc, err := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(err, ShouldBeNil)
			So(svc, ShouldNotBeNil)
			So(svc.Classifications(), ShouldHaveLength, 32)
			So(svc.Rubrics(), ShouldHaveLength, 8)
		})
	})

	Convey("Given a rubric book missing a configured category", t, func() {
		book, err := rubric.NewBook(rubric.DefaultRubrics()[0])
		So(err, ShouldBeNil)

		Convey("Then construction should fail", func() {
			_, err := service.New(service.WithRubrics(book))
			So(errors.Is(err, model.ErrUnknownCategory), ShouldBeTrue)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a seeded service", t, func() {
		svc := newService()
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx := context.Background()
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then stats should reflect the store", func() {
				stats, err := svc.GetStats(ctx)
				So(err, ShouldBeNil)
				So(stats.Contestants, ShouldEqual, 3)
				So(stats.Scores, ShouldEqual, 0)
				So(stats.Store, ShouldEqual, repository.BackendMemory)
				So(stats.Uptime, ShouldNotBeEmpty)
			})

			Convey("And starting twice is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})
	})
}

func TestService_StartDuringRequests(t *testing.T) {
	Convey("Given a service built without an explicit logger", t, func() {
		ctx := context.Background()
		svc, err := service.New()
		So(err, ShouldBeNil)
		So(svc.Seed(ctx, fixture()), ShouldBeNil)
		defer svc.Stop()

		Convey("When it starts while judges submit scores", func() {
			judges := []string{"j1", "j2", "j3", "j4"}
			errs := make(chan error, len(judges)+1)
			var wg sync.WaitGroup
			wg.Add(len(judges) + 1)
			go func() {
				defer wg.Done()
				errs <- svc.Start(ctx)
			}()
			for _, judge := range judges {
				go func() {
					defer wg.Done()
					_, err := svc.SubmitScore(ctx, types.ScoreSubmission{
						ContestantID: "a",
						JudgeID:      judge,
						RawScores:    newsSheet(30, 45, 5),
					})
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)

			Convey("Then every call should succeed", func() {
				for err := range errs {
					So(err, ShouldBeNil)
				}
				scores, err := svc.Scores(ctx, repository.Filter{ContestantID: "a"})
				So(err, ShouldBeNil)
				So(scores, ShouldHaveLength, len(judges))
			})
		})
	})
}

func TestService_Seed(t *testing.T) {
	Convey("Given a snapshot with an unconfigured classification", t, func() {
		svc, err := service.New(
			service.WithLogger(logger.Nop()),
			service.WithClassifications(nil, []model.Level{model.Secondary}, nil),
		)
		So(err, ShouldBeNil)

		Convey("Then seeding should be rejected", func() {
			err := svc.Seed(context.Background(), fixture())
			So(errors.Is(err, types.ErrInvalidRequest), ShouldBeTrue)
			So(errors.Is(err, model.ErrUnknownClassification), ShouldBeTrue)
		})
	})
}

func TestService_SubmitScore(t *testing.T) {
	Convey("Given a seeded service", t, func() {
		svc := newService()
		ctx := context.Background()

		Convey("When a judge submits a valid sheet", func() {
			r := submit(svc, "a", "j1", newsSheet(40, 50, 4))

			Convey("Then the entry is stored with the contestant's classification", func() {
				So(r.Replaced, ShouldBeFalse)
				So(r.Entry.ID, ShouldNotBeEmpty)
				So(r.Entry.Classification(), ShouldResemble, news)
				So(r.Entry.TotalScore, ShouldEqual, 94)
				So(r.Entry.FinalScore, ShouldEqual, 94)
				So(r.Entry.IsFinal, ShouldBeTrue)
			})

			Convey("And a resubmission replaces it", func() {
				again := submit(svc, "a", "j1", newsSheet(30, 40, 5))
				So(again.Replaced, ShouldBeTrue)
				So(again.Entry.ID, ShouldEqual, r.Entry.ID)

				scores, err := svc.Scores(ctx, repository.Filter{ContestantID: "a"})
				So(err, ShouldBeNil)
				So(scores, ShouldHaveLength, 1)
				So(scores[0].FinalScore, ShouldEqual, 75)
			})
		})

		Convey("When a value exceeds its criterion maximum", func() {
			r := submit(svc, "a", "j1", newsSheet(45, 50, 10))

			Convey("Then it is clamped and reported", func() {
				So(r.Clamped, ShouldResemble, []string{"form"})
				So(r.Entry.RawScores["form"], ShouldEqual, 40)
				So(r.Entry.TotalScore, ShouldEqual, 100)
			})
		})

		Convey("When a radio performance runs over time", func() {
			timed, err := svc.SubmitScore(ctx, types.ScoreSubmission{
				ContestantID:   "r",
				JudgeID:        "j2",
				RawScores:      map[string]float64{"anchor": 20, "presenter": 20, "technical": 30, "script": 30},
				ElapsedSeconds: 302,
			})

			Convey("Then the deduction is subtracted from the total", func() {
				So(err, ShouldBeNil)
				So(timed.Entry.TimeDeduction, ShouldEqual, 1)
				So(timed.Entry.FinalScore, ShouldEqual, 99)
			})
		})

		Convey("When the request is malformed", func() {
			_, err := svc.SubmitScore(ctx, types.ScoreSubmission{ContestantID: "a"})

			Convey("Then it is an invalid request", func() {
				So(errors.Is(err, types.ErrInvalidRequest), ShouldBeTrue)
			})
		})

		Convey("When the sheet names an unknown criterion", func() {
			raw := newsSheet(40, 50, 10)
			raw["bonus"] = 5
			_, err := svc.SubmitScore(ctx, types.ScoreSubmission{ContestantID: "a", JudgeID: "j1", RawScores: raw})

			Convey("Then it is an invalid request", func() {
				So(errors.Is(err, types.ErrInvalidRequest), ShouldBeTrue)
				So(errors.Is(err, rubric.ErrUnknownCriterion), ShouldBeTrue)
			})
		})

		Convey("When the contestant does not exist", func() {
			_, err := svc.SubmitScore(ctx, types.ScoreSubmission{ContestantID: "zz", JudgeID: "j1", RawScores: newsSheet(1, 1, 1)})

			Convey("Then it is not found", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_Rankings(t *testing.T) {
	Convey("Given two contestants tied on average", t, func() {
		svc := newService()
		ctx := context.Background()
		submit(svc, "a", "j1", newsSheet(40, 50, 4))  // 94
		submit(svc, "a", "j2", newsSheet(30, 40, 8))  // 78
		submit(svc, "b", "j1", newsSheet(30, 40, 10)) // 80
		submit(svc, "b", "j2", newsSheet(38, 45, 9))  // 92

		Convey("When ranking the classification", func() {
			report, err := svc.Rankings(ctx, news)
			So(err, ShouldBeNil)

			Convey("Then the higher individual score breaks the tie", func() {
				So(report.Judges, ShouldResemble, []string{"j1", "j2"})
				So(report.Results, ShouldHaveLength, 2)
				So(report.Results[0].ContestantID, ShouldEqual, "a")
				So(report.Results[0].FinalRank, ShouldEqual, 1)
				So(report.Results[0].MaxIndividualScore, ShouldEqual, 94)
				So(report.Results[1].ContestantID, ShouldEqual, "b")
				So(report.Results[1].SumOfRanks, ShouldEqual, 3)
			})

			Convey("And division points follow the ranks", func() {
				So(report.DivisionPoints, ShouldResemble, map[string]int{"North": 1, "South": 2})
			})
		})

		Convey("When computing standings", func() {
			report, err := svc.Standings(ctx)
			So(err, ShouldBeNil)

			Convey("Then every populated combination contributes", func() {
				So(report.Combinations, ShouldHaveLength, 2)
				So(report.Totals, ShouldResemble, map[string]int{"North": 1, "South": 2, "East": 1})
				So(report.Standings[0].Division, ShouldEqual, "East")
				So(report.Standings[0].Place, ShouldEqual, 1)
				So(report.Standings[2].Division, ShouldEqual, "South")
			})
		})
	})

	Convey("Given a points cutoff of one", t, func() {
		svc := newService(service.WithPointsCutoff(1))
		submit(svc, "a", "j1", newsSheet(40, 50, 10))
		submit(svc, "b", "j1", newsSheet(30, 40, 10))

		Convey("Then only the winner's division scores", func() {
			report, err := svc.Rankings(context.Background(), news)
			So(err, ShouldBeNil)
			So(report.PointsCutoff, ShouldEqual, 1)
			So(report.DivisionPoints, ShouldResemble, map[string]int{"North": 1})
		})
	})

	Convey("Given an incomplete or unknown classification", t, func() {
		svc := newService()

		Convey("Then ranking is an invalid request", func() {
			_, err := svc.Rankings(context.Background(), model.Classification{Category: model.NewsWriting})
			So(errors.Is(err, types.ErrInvalidRequest), ShouldBeTrue)

			_, err = svc.Rankings(context.Background(), model.Classification{Category: "Poetry", Level: model.Elementary, Medium: model.English})
			So(errors.Is(err, model.ErrUnknownClassification), ShouldBeTrue)
		})
	})
}

func TestService_Lookups(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := newService()

		Convey("Then rubrics resolve by category", func() {
			r, err := svc.Rubric(model.RadioBroadcast)
			So(err, ShouldBeNil)
			So(r.MaxTotal(), ShouldEqual, 100)

			_, err = svc.Rubric("Poetry")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("Then deductions are quoted per category", func() {
			q, err := svc.Deduction(model.TVBroadcast, 400)
			So(err, ShouldBeNil)
			So(q.Schedule, ShouldEqual, "video")
			So(q.LimitSeconds, ShouldEqual, 360)
			So(q.Deduction, ShouldEqual, 2)

			q, err = svc.Deduction(model.NewsWriting, 9999)
			So(err, ShouldBeNil)
			So(q.Deduction, ShouldEqual, 0)
			So(q.Schedule, ShouldBeEmpty)

			_, err = svc.Deduction(model.NewsWriting, -1)
			So(errors.Is(err, types.ErrInvalidRequest), ShouldBeTrue)
		})

		Convey("Then contestants can be filtered", func() {
			cs, err := svc.Contestants(context.Background(), repository.Filter{Division: "East"})
			So(err, ShouldBeNil)
			So(cs, ShouldHaveLength, 1)
			So(cs[0].ID, ShouldEqual, "r")
		})
	})
}
