package config_test

import (
	"testing"
	"time"

	"github.com/okian/skillboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.GraphQLURL, convey.ShouldEqual, "https://learn.reboot01.com/api/graphql-engine/v1/graphql")
			convey.So(cfg.SigninURL, convey.ShouldEqual, "https://learn.reboot01.com/api/auth/signin")
			convey.So(cfg.RequestTimeout(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.TopSkills, convey.ShouldEqual, 8)
			convey.So(cfg.SigninRatePerMinute, convey.ShouldEqual, 10)
			convey.So(cfg.SigninBurst, convey.ShouldEqual, 5)
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			convey.So(cfg.MetricsRefresh(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.MetricsBuckets, convey.ShouldBeEmpty)
			convey.So(cfg.ProjectPathPrefix, convey.ShouldEqual, "/bahrain/bh-module/")
			convey.So(cfg.OverviewGroups, convey.ShouldResemble, []string{"overview"})
			convey.So(cfg.ExpandedGroups, convey.ShouldResemble, []string{"programming", "technology"})
			convey.So(cfg.SkillGroups["technology"].Skills, convey.ShouldContain, "docker")
		})

		convey.Convey("And the defaults should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
			loc, err := cfg.Location()
			convey.So(err, convey.ShouldBeNil)
			convey.So(loc, convey.ShouldEqual, time.UTC)
		})
	})
}
