package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSignInLimiter(t *testing.T) {
	Convey("Given a limiter of one attempt per second with a burst of two", t, func() {
		now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		l := NewSignInLimiter(60, 2)
		l.now = func() time.Time { return now }

		req := func(addr string) *http.Request {
			r := httptest.NewRequest(http.MethodPost, "/api/signin", http.NoBody)
			r.RemoteAddr = addr
			return r
		}

		Convey("When the burst is spent", func() {
			ok1, _ := l.Allow(req("10.0.0.1:1000"))
			ok2, _ := l.Allow(req("10.0.0.1:1001"))
			ok3, wait := l.Allow(req("10.0.0.1:1002"))

			Convey("Then the next attempt waits for a token", func() {
				So(ok1, ShouldBeTrue)
				So(ok2, ShouldBeTrue)
				So(ok3, ShouldBeFalse)
				So(wait, ShouldEqual, time.Second)
			})

			Convey("Then other clients are unaffected", func() {
				ok, _ := l.Allow(req("10.0.0.2:1000"))
				So(ok, ShouldBeTrue)
			})

			Convey("Then the budget refills over time", func() {
				now = now.Add(time.Second)
				ok, _ := l.Allow(req("10.0.0.1:1003"))
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When clients go quiet", func() {
			_, _ = l.Allow(req("10.0.0.1:1000"))
			_, _ = l.Allow(req("10.0.0.2:1000"))
			now = now.Add(visitorTTL + time.Minute)
			_, _ = l.Allow(req("10.0.0.3:1000"))

			Convey("Then their state is pruned", func() {
				So(l.visitors, ShouldHaveLength, 1)
				So(l.visitors, ShouldContainKey, "10.0.0.3")
			})
		})
	})

	Convey("Given limiting is disabled", t, func() {
		l := NewSignInLimiter(0, 5)

		Convey("Then every attempt is allowed", func() {
			So(l, ShouldBeNil)
			ok, _ := l.Allow(httptest.NewRequest(http.MethodPost, "/", http.NoBody))
			So(ok, ShouldBeTrue)
		})
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	Convey("Given a handler behind a one-attempt limiter", t, func() {
		l := NewSignInLimiter(1, 1)
		calls := 0
		h := RateLimitMiddleware(l, func(w http.ResponseWriter, _ *http.Request) {
			calls++
			w.WriteHeader(http.StatusNoContent)
		})
		serve := func(method string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			h(w, httptest.NewRequest(method, "/api/signin", http.NoBody))
			return w
		}

		Convey("When a client posts twice", func() {
			first := serve(http.MethodPost)
			second := serve(http.MethodPost)

			Convey("Then the second is rejected with Retry-After", func() {
				So(first.Code, ShouldEqual, http.StatusNoContent)
				So(second.Code, ShouldEqual, http.StatusTooManyRequests)
				So(second.Header().Get("Retry-After"), ShouldNotBeEmpty)
				var body errorResponse
				So(json.Unmarshal(second.Body.Bytes(), &body), ShouldBeNil)
				So(body.Code, ShouldEqual, "rate_limited")
				So(calls, ShouldEqual, 1)
			})
		})

		Convey("When a client only reads", func() {
			serve(http.MethodPost)
			w := serve(http.MethodGet)

			Convey("Then reads are never limited", func() {
				So(w.Code, ShouldEqual, http.StatusNoContent)
			})
		})
	})
}

func TestRateLimitHelpers(t *testing.T) {
	Convey("RetryAfter rounds up to whole seconds", t, func() {
		So(RetryAfter(1500*time.Millisecond), ShouldEqual, "2")
		So(RetryAfter(time.Second), ShouldEqual, "1")
	})

	Convey("ClientIP strips the port", t, func() {
		r := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		r.RemoteAddr = "10.1.2.3:4567"
		So(ClientIP(r), ShouldEqual, "10.1.2.3")
		r.RemoteAddr = "pipe"
		So(ClientIP(r), ShouldEqual, "pipe")
	})
}
