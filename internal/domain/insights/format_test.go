package insights_test

import (
	"testing"
	"time"

	"github.com/okian/skillboard/internal/domain/insights"
	"github.com/okian/skillboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFormatBytes(t *testing.T) {
	Convey("Given byte amounts around the unit thresholds", t, func() {
		So(insights.FormatBytes(0), ShouldEqual, "0.00 B")
		So(insights.FormatBytes(999), ShouldEqual, "999.00 B")
		So(insights.FormatBytes(1000), ShouldEqual, "1.00 KB")
		So(insights.FormatBytes(1500), ShouldEqual, "1.50 KB")
		So(insights.FormatBytes(999999), ShouldEqual, "1000.00 KB")
		So(insights.FormatBytes(1000000), ShouldEqual, "1.00 MB")
		So(insights.FormatBytes(2_345_678), ShouldEqual, "2.35 MB")
	})
}

func TestFormatDate(t *testing.T) {
	Convey("Given timestamps to display", t, func() {
		ts := model.NewTimestamp(time.Date(2023, 8, 27, 13, 8, 0, 0, time.UTC))

		Convey("When formatting in UTC", func() {
			Convey("Then it should be day/month/year hour:minute", func() {
				So(insights.FormatDate(ts, nil), ShouldEqual, "27/08/2023 13:08")
			})
		})

		Convey("When formatting in a fixed-offset zone", func() {
			loc := time.FixedZone("AST", 3*60*60)

			Convey("Then the wall clock should shift", func() {
				So(insights.FormatDate(ts, loc), ShouldEqual, "27/08/2023 16:08")
			})
		})

		Convey("When the timestamp is missing", func() {
			Convey("Then it should render empty", func() {
				So(insights.FormatDate(model.Timestamp{}, time.UTC), ShouldEqual, "")
			})
		})
	})
}

func TestFormatProjectPath(t *testing.T) {
	Convey("Given progress paths", t, func() {
		prefix := insights.DefaultProjectPrefix

		Convey("When the path carries the module prefix", func() {
			So(insights.FormatProjectPath("/bahrain/bh-module/forum", prefix), ShouldEqual, "forum")
			So(insights.FormatProjectPath("/bahrain/bh-module/piscine-js/quest-01", prefix), ShouldEqual, "piscine-js/quest-01")
		})

		Convey("When the path is rooted at the campus without a slash", func() {
			So(insights.FormatProjectPath(`bahrain\bh-module\lem-in`, prefix), ShouldEqual, "lem-in")
			So(insights.FormatProjectPath("bahrain/bh-piscine/quad", prefix), ShouldEqual, "quad")
		})

		Convey("When a campus rooted path ends in a separator", func() {
			So(insights.FormatProjectPath("bahrain/a/b/", prefix), ShouldEqual, "b")
			So(insights.FormatProjectPath(`bahrain\a\b\`, prefix), ShouldEqual, "b")
		})

		Convey("When the path is unrelated or empty", func() {
			So(insights.FormatProjectPath("/other/place/x", prefix), ShouldEqual, "/other/place/x")
			So(insights.FormatProjectPath("", prefix), ShouldEqual, "")
		})

		Convey("When no prefix is configured", func() {
			So(insights.FormatProjectPath("/bahrain/bh-module/forum", ""), ShouldEqual, "/bahrain/bh-module/forum")
		})
	})
}
