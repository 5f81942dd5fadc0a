package insights

import (
	"strconv"
	"strings"
	"time"

	"github.com/okian/skillboard/internal/domain/model"
)

// Byte scale thresholds (decimal units).
const (
	kilo = 1_000
	mega = 1_000_000
)

// DateLayout is day/month/year plus 24-hour time, no separator comma.
const DateLayout = "02/01/2006 15:04"

// DefaultProjectPrefix is the campus module prefix stripped from project paths.
const DefaultProjectPrefix = "/bahrain/bh-module/"

// FormatBytes renders v with two decimals and a B, KB or MB suffix.
func FormatBytes(v float64) string {
	switch {
	case v >= mega:
		return formatFixed2(v/mega) + " MB"
	case v >= kilo:
		return formatFixed2(v/kilo) + " KB"
	default:
		return formatFixed2(v) + " B"
	}
}

func formatFixed2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatDate renders ts in loc using DateLayout. A zero timestamp renders as
// the empty string. A nil loc means UTC.
func FormatDate(ts model.Timestamp, loc *time.Location) string {
	if ts.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return ts.In(loc).Format(DateLayout)
}

// FormatProjectPath shortens a progress path for display. The first
// occurrence of prefix is removed; paths rooted at the campus (the first
// segment of prefix, e.g. "bahrain/...") are reduced to their last segment.
func FormatProjectPath(path, prefix string) string {
	if path == "" {
		return ""
	}
	formatted := path
	if prefix != "" {
		formatted = strings.Replace(path, prefix, "", 1)
	}
	if campus := campusRoot(prefix); campus != "" {
		if strings.HasPrefix(path, campus+"/") || strings.HasPrefix(path, campus+`\`) {
			// Empty segments are skipped, so a trailing separator still
			// yields the last named segment.
			parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' })
			if len(parts) > 0 {
				formatted = parts[len(parts)-1]
			}
		}
	}
	return formatted
}

func campusRoot(prefix string) string {
	for _, seg := range strings.Split(prefix, "/") {
		if seg != "" {
			return seg
		}
	}
	return ""
}
