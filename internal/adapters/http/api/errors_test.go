package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Given errors from the service layer", t, func() {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{NewKind("op", ErrBadRequest), http.StatusBadRequest, "bad_request"},
			{fmt.Errorf("%w: %w", types.ErrInvalidRequest, model.ErrUnknownClassification), http.StatusBadRequest, "bad_request"},
			{fmt.Errorf("%w: %w", repository.ErrNotFound, model.ErrUnknownCategory), http.StatusNotFound, "not_found"},
			{Wrap("op", model.ErrUnknownCategory), http.StatusInternalServerError, "configuration_error"},
			{Wrap("op", context.DeadlineExceeded), http.StatusGatewayTimeout, "timeout"},
			{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
		}

		Convey("Then each maps to its status and code", func() {
			for _, c := range cases {
				status, code := classify(c.err)
				So(status, ShouldEqual, c.status)
				So(code, ShouldEqual, c.code)
			}
		})
	})

	Convey("Given a wrapped kind", t, func() {
		cause := errors.New("unexpected EOF")
		err := WrapKind("api.post_score", ErrBadRequest, cause)

		Convey("Then both the kind and the cause are reachable", func() {
			So(errors.Is(err, ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.post_score: bad request: unexpected EOF")
		})
	})
}

func TestFailureKind(t *testing.T) {
	Convey("Given response statuses", t, func() {
		So(failureKind(http.StatusOK), ShouldEqual, "")
		So(failureKind(http.StatusCreated), ShouldEqual, "")
		So(failureKind(http.StatusBadRequest), ShouldEqual, "client_error")
		So(failureKind(http.StatusNotFound), ShouldEqual, "not_found")
		So(failureKind(http.StatusGatewayTimeout), ShouldEqual, "timeout")
		So(failureKind(http.StatusInternalServerError), ShouldEqual, "server_error")
	})
}
