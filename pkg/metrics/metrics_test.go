package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then the collectors should be registered", func() {
				So(manager, ShouldNotBeNil)
				manager.RecordTabulation("ranking", 0.01)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("event"),
				WithSubsystem("judging"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.RecordTabulation("standings", 0.2)

			Convey("Then metric names and labels should follow the options", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["event_judging_runs_total"], ShouldBeTrue)
				So(testutil.ToFloat64(manager.tabulationRuns.WithLabelValues("standings")), ShouldEqual, 1)
			})
		})
	})
}

func TestManagerRecording(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When recording score intake", func() {
			manager.RecordScoreSubmitted(false)
			manager.RecordScoreSubmitted(true)
			manager.RecordScoreRejected("invalid")

			Convey("Then the counters should move", func() {
				So(testutil.ToFloat64(manager.scoresSubmitted), ShouldEqual, 2)
				So(testutil.ToFloat64(manager.scoresReplaced), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.scoresRejected.WithLabelValues("invalid")), ShouldEqual, 1)
			})
		})

		Convey("When updating gauges", func() {
			manager.UpdateStoreTotals(12, 30)
			manager.UpdateSystem(2048, 7)

			Convey("Then the gauges should hold the values", func() {
				So(testutil.ToFloat64(manager.contestantsTotal), ShouldEqual, 12)
				So(testutil.ToFloat64(manager.scoresTotal), ShouldEqual, 30)
				So(testutil.ToFloat64(manager.systemMemoryUsage), ShouldEqual, 2048)
				So(testutil.ToFloat64(manager.systemGoroutineCount), ShouldEqual, 7)
			})
		})

		Convey("When recording warnings and errors", func() {
			manager.RecordTabulationWarning("clamped")
			manager.RecordErrorByComponent("api", "not_found")

			Convey("Then the labelled counters should move", func() {
				So(testutil.ToFloat64(manager.tabulationWarnings.WithLabelValues("clamped")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.errorRateByComponent.WithLabelValues("api", "not_found")), ShouldEqual, 1)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then the helpers should not panic", func() {
			So(func() {
				RecordTabulation("ranking", 0.001)
				RecordTabulationWarning("orphan_entry")
				RecordScoreSubmitted(true)
				RecordScoreRejected("not_found")
				UpdateStoreTotals(1, 2)
				RecordStoreLatency("memory", "list_scores", 0.0001)
				RecordHTTPRequest("/rankings", "GET", "200", 0.002)
				RecordErrorByComponent("store", "timeout")
				UpdateSystem(1, 1)
			}, ShouldNotPanic)
		})

		Convey("Then the registry should expose them", func() {
			So(GetRegistry(), ShouldNotBeNil)
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
