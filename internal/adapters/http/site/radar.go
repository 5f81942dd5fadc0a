package site

import (
	"math"
	"strconv"
	"strings"

	"github.com/okian/skillboard/internal/domain/types"
)

// Radar geometry, in SVG user units.
const (
	radarSize    = 320.0
	radarRadius  = 110.0
	radarLabelAt = 132.0
	radarRings   = 5
	maxLevel     = 100.0
)

// Radar is a precomputed SVG radar chart.
type Radar struct {
	Size   float64
	Center float64
	Rings  []string // polygon points per grid ring, innermost first
	Axes   []RadarAxis
	Shape  string // polygon points of the skill levels
	Empty  bool
}

// RadarAxis is one spoke with its label.
type RadarAxis struct {
	X, Y           float64 // spoke end
	LabelX, LabelY float64
	Anchor         string // text-anchor
	Label          string
	Level          float64
	DotX, DotY     float64
}

// NewRadar lays out entries clockwise from twelve o'clock. Levels are
// clamped to [0, 100].
func NewRadar(entries []types.SkillEntry) Radar {
	c := radarSize / 2
	r := Radar{Size: radarSize, Center: c, Empty: len(entries) == 0}
	if r.Empty {
		return r
	}

	n := len(entries)
	for ring := 1; ring <= radarRings; ring++ {
		frac := float64(ring) / radarRings
		pts := make([]string, n)
		for i := range entries {
			x, y := polar(c, radarRadius*frac, i, n)
			pts[i] = point(x, y)
		}
		r.Rings = append(r.Rings, strings.Join(pts, " "))
	}

	shape := make([]string, n)
	r.Axes = make([]RadarAxis, n)
	for i, e := range entries {
		level := math.Max(0, math.Min(e.Level, maxLevel))
		x, y := polar(c, radarRadius, i, n)
		lx, ly := polar(c, radarLabelAt, i, n)
		dx, dy := polar(c, radarRadius*level/maxLevel, i, n)
		shape[i] = point(dx, dy)
		r.Axes[i] = RadarAxis{
			X: x, Y: y,
			LabelX: lx, LabelY: ly,
			Anchor: anchor(lx, c),
			Label:  e.DisplayName,
			Level:  e.Level,
			DotX:   dx, DotY: dy,
		}
	}
	r.Shape = strings.Join(shape, " ")
	return r
}

func polar(c, radius float64, i, n int) (float64, float64) {
	angle := -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
	return round2(c + radius*math.Cos(angle)), round2(c + radius*math.Sin(angle))
}

func anchor(x, c float64) string {
	switch {
	case math.Abs(x-c) < 1:
		return "middle"
	case x < c:
		return "end"
	default:
		return "start"
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func point(x, y float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64) + "," + strconv.FormatFloat(y, 'f', -1, 64)
}
