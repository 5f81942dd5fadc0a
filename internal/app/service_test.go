package service_test

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/okian/skillboard/internal/adapters/platform"
	service "github.com/okian/skillboard/internal/app"
	"github.com/okian/skillboard/internal/domain/model"
	"github.com/okian/skillboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func signedToken(exp time.Time) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": exp.Unix(),
		"https://hasura.io/jwt/claims": map[string]any{
			"x-hasura-user-id": "42",
		},
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		panic(err)
	}
	return s
}

func ts(s string) model.Timestamp {
	return model.ParseTimestamp(s)
}

type fakePlatform struct {
	token     string
	signinErr error
	fetchErr  error
	calls     atomic.Int32
	audits    []model.Transaction
	skills    []model.Transaction
	latest    *model.Progress
}

func (f *fakePlatform) SignIn(_ context.Context, _, _ string) (string, error) {
	return f.token, f.signinErr
}

func (f *fakePlatform) FetchUser(_ context.Context, _ string) (model.User, error) {
	f.calls.Add(1)
	return model.User{ID: 42, Login: "alice", Email: "alice@example.com", CreatedAt: ts("2023-05-01T10:00:00Z")}, nil
}

func (f *fakePlatform) FetchAuditTransactions(_ context.Context, _ string) ([]model.Transaction, error) {
	f.calls.Add(1)
	return f.audits, nil
}

func (f *fakePlatform) FetchSkillTransactions(_ context.Context, _ string) ([]model.Transaction, error) {
	f.calls.Add(1)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.skills, nil
}

func (f *fakePlatform) FetchLatestProgress(_ context.Context, _ string) (*model.Progress, error) {
	f.calls.Add(1)
	return f.latest, nil
}

func newFake() *fakePlatform {
	return &fakePlatform{
		token: signedToken(fixedNow.Add(time.Hour)),
		audits: []model.Transaction{
			{ID: 1, Type: "up", Amount: 1_500_000},
			{ID: 2, Type: "down", Amount: 1_000_000},
			{ID: 3, Type: "xp", Amount: 99},
		},
		skills: []model.Transaction{
			{ID: 4, Type: "skill_go", Amount: 30, CreatedAt: ts("2024-01-01T00:00:00Z")},
			{ID: 5, Type: "skill_go", Amount: 55, CreatedAt: ts("2024-03-01T00:00:00Z")},
			{ID: 6, Type: "skill_js", Amount: 40, CreatedAt: ts("2024-02-01T00:00:00Z")},
			{ID: 7, Type: "skill_docker", Amount: 20, CreatedAt: ts("2024-02-01T00:00:00Z")},
		},
		latest: &model.Progress{Path: "/bahrain/bh-module/graphql", CreatedAt: ts("2024-05-20T09:15:00Z")},
	}
}

func newService(p service.Platform) *service.Service {
	return service.New(
		service.WithPlatform(p),
		service.WithClock(func() time.Time { return fixedNow }),
		service.WithSkillGroup("overview", "Best skills", []string{"go", "js", "html"}),
		service.WithSkillGroup("technology", "Technology Skills", []string{"go", "docker"}),
		service.WithViews([]string{"overview"}, []string{"technology"}),
	)
}

func TestService_SignIn(t *testing.T) {
	Convey("Given a service backed by a fake platform", t, func() {
		fake := newFake()
		svc := newService(fake)
		ctx := context.Background()

		Convey("When the platform accepts the credentials", func() {
			sess, err := svc.SignIn(ctx, "alice", "pw")

			Convey("Then the session carries the decoded claims", func() {
				So(err, ShouldBeNil)
				So(sess.Token, ShouldEqual, fake.token)
				So(sess.Claims.UserID, ShouldEqual, int64(42))
				So(sess.Claims.ExpiresAt.Equal(fixedNow.Add(time.Hour).Truncate(time.Second)), ShouldBeTrue)
			})
		})

		Convey("When the platform rejects the credentials", func() {
			fake.signinErr = &platform.CredentialsError{Message: platform.MsgIncorrectCredentials}
			_, err := svc.SignIn(ctx, "alice", "bad")

			Convey("Then the credentials error is returned", func() {
				So(errors.Is(err, platform.ErrInvalidCredentials), ShouldBeTrue)
			})
		})

		Convey("When the platform returns a token that is not a JWT", func() {
			fake.token = "not-a-jwt"
			_, err := svc.SignIn(ctx, "alice", "pw")

			Convey("Then sign-in fails as unauthorized", func() {
				So(errors.Is(err, platform.ErrUnauthorized), ShouldBeTrue)
			})
		})

		Convey("When no platform is configured", func() {
			_, err := service.New().SignIn(ctx, "a", "b")

			Convey("Then it fails fast", func() {
				So(errors.Is(err, service.ErrNoPlatform), ShouldBeTrue)
			})
		})
	})
}

func TestService_Profile(t *testing.T) {
	Convey("Given a service backed by a fake platform", t, func() {
		fake := newFake()
		svc := newService(fake)
		ctx := context.Background()

		Convey("When building the default view", func() {
			p, err := svc.Profile(ctx, fake.token, service.ProfileRequest{})

			Convey("Then every fetch ran and the overview group is charted", func() {
				So(err, ShouldBeNil)
				So(fake.calls.Load(), ShouldEqual, int32(4))
				So(p.User.Login, ShouldEqual, "alice")
				So(p.User.CreatedAt, ShouldEqual, "01/05/2023 10:00")
				So(p.Audit.DisplayRatio, ShouldEqual, "1.5")
				So(p.Audit.Status, ShouldEqual, "excellent")
				So(p.Audit.DoneDisplay, ShouldEqual, "1.50 MB")
				So(p.Skills, ShouldHaveLength, 1)
				So(p.Skills[0].Key, ShouldEqual, "overview")
				So(p.Skills[0].Skills, ShouldHaveLength, 2)
				So(p.Skills[0].Skills[0].Name, ShouldEqual, "go")
				So(p.Skills[0].Skills[0].Level, ShouldEqual, 55.0)
				So(p.Latest.Name, ShouldEqual, "graphql")
				So(p.Latest.UpdatedAt, ShouldEqual, "20/05/2024 09:15")
			})
		})

		Convey("When building the expanded view", func() {
			p, err := svc.Profile(ctx, fake.token, service.ProfileRequest{View: service.ViewExpanded})

			Convey("Then the expanded groups are charted", func() {
				So(err, ShouldBeNil)
				So(p.Skills, ShouldHaveLength, 1)
				So(p.Skills[0].Key, ShouldEqual, "technology")
				So(p.Skills[0].Skills[1].DisplayName, ShouldEqual, "Docker")
			})
		})

		Convey("When asking for an explicit skill list", func() {
			p, err := svc.Profile(ctx, fake.token, service.ProfileRequest{Group: "technology", Skills: []string{"js"}})

			Convey("Then the skill list wins over the group", func() {
				So(err, ShouldBeNil)
				So(p.Skills[0].Key, ShouldEqual, service.CustomChartKey)
				So(p.Skills[0].Skills, ShouldHaveLength, 1)
			})
		})

		Convey("When asking for the top chart with a limit", func() {
			p, err := svc.Profile(ctx, fake.token, service.ProfileRequest{Group: "top", Limit: 2})

			Convey("Then the best two skills are returned", func() {
				So(err, ShouldBeNil)
				So(p.Skills[0].Key, ShouldEqual, "top")
				So(p.Skills[0].Skills, ShouldHaveLength, 2)
				So(p.Skills[0].Skills[1].Name, ShouldEqual, "js")
			})
		})

		Convey("When asking for an unknown group or view", func() {
			_, errGroup := svc.Profile(ctx, fake.token, service.ProfileRequest{Group: "design"})
			_, errView := svc.Profile(ctx, fake.token, service.ProfileRequest{View: "compact"})

			Convey("Then request errors are returned before any fetch", func() {
				So(errors.Is(errGroup, service.ErrUnknownGroup), ShouldBeTrue)
				So(errors.Is(errView, service.ErrUnknownView), ShouldBeTrue)
				So(service.IsRequestError(errGroup), ShouldBeTrue)
				So(errGroup.Error(), ShouldContainSubstring, `"design" (known: top, overview, technology)`)
				So(fake.calls.Load(), ShouldEqual, int32(0))
			})
		})

		Convey("When the token has expired", func() {
			_, err := svc.Profile(ctx, signedToken(fixedNow.Add(-time.Minute)), service.ProfileRequest{})

			Convey("Then it is unauthorized and nothing is fetched", func() {
				So(errors.Is(err, platform.ErrUnauthorized), ShouldBeTrue)
				So(platform.StatusCode(err), ShouldEqual, 401)
				So(fake.calls.Load(), ShouldEqual, int32(0))
			})
		})

		Convey("When one fetch fails", func() {
			fake.fetchErr = platform.ErrNotFound
			_, err := svc.Profile(ctx, fake.token, service.ProfileRequest{})

			Convey("Then the whole profile fails with that error", func() {
				So(errors.Is(err, platform.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the user has no data at all", func() {
			fake.audits, fake.skills, fake.latest = nil, nil, nil
			p, err := svc.Profile(ctx, fake.token, service.ProfileRequest{})

			Convey("Then the profile degrades to empty values", func() {
				So(err, ShouldBeNil)
				So(p.Audit.Ratio, ShouldEqual, 0.0)
				So(p.Audit.Status, ShouldEqual, "needs improvement")
				So(p.Skills[0].Skills, ShouldBeEmpty)
				So(p.Latest, ShouldBeNil)
			})
		})
	})
}
