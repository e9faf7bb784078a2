package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/config"
	"github.com/okian/tally/internal/snapshot"
	"github.com/okian/tally/pkg/logger"
)

const seed = `
contestants:
  - {id: a, code: NW-01, division: North, category: News Writing, level: Elementary, medium: English}
  - {id: b, code: NW-02, division: South, category: News Writing, level: Elementary, medium: English}
scores:
  - {contestant_id: a, judge_id: j1, total_score: 90, final_score: 90, is_final: true}
  - {contestant_id: b, judge_id: j1, total_score: 80, final_score: 80, is_final: true}
`

func TestMainWiring(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		ctx := context.Background()
		cfg := config.New()

		convey.Convey("When opening the store", func() {
			store, closeStore, err := openStore(ctx, cfg)

			convey.Convey("Then the memory backend is used", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(store.Backend(), convey.ShouldEqual, repository.BackendMemory)
				convey.So(closeStore(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the backend is unknown", func() {
			cfg.Store = "sqlite"
			_, _, err := openStore(ctx, cfg)

			convey.Convey("Then opening fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When serving a seeded service", func() {
			path := filepath.Join(t.TempDir(), "seed.yaml")
			convey.So(os.WriteFile(path, []byte(seed), 0o600), convey.ShouldBeNil)
			snap, err := snapshot.Load(path)
			convey.So(err, convey.ShouldBeNil)

			store, _, err := openStore(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			svc, err := newService(cfg, store, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc.Seed(ctx, snap), convey.ShouldBeNil)
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			h := newRouter(ctx, svc)

			convey.Convey("Then the API and docs share one router", func() {
				for _, path := range []string{"/healthz", "/openapi.yaml", "/api-docs", "/standings"} {
					w := httptest.NewRecorder()
					h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
					convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				}
			})

			convey.Convey("And the metrics refresh does not fail", func() {
				convey.So(func() { updateMetrics(ctx, svc) }, convey.ShouldNotPanic)
			})
		})
	})
}
