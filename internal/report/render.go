package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/okian/skillboard/internal/domain/types"
)

// RenderJSON writes the profile as indented JSON, the same shape the API
// serves.
func RenderJSON(w io.Writer, p types.Profile) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// RenderText writes a plain-text report. now anchors the relative skill
// ages.
func RenderText(w io.Writer, p types.Profile, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "User\t%s (#%d)\n", p.User.Login, p.User.ID)
	if p.User.Email != "" {
		fmt.Fprintf(tw, "Email\t%s\n", p.User.Email)
	}
	if p.User.CreatedAt != "" {
		fmt.Fprintf(tw, "Joined\t%s\n", p.User.CreatedAt)
	}

	a := p.Audit
	fmt.Fprintf(tw, "\nAudit ratio\t%s (%s)\n", a.DisplayRatio, a.Status)
	fmt.Fprintf(tw, "  Done\t%s\t%.1f%%\n", a.DoneDisplay, a.DonePercentage)
	fmt.Fprintf(tw, "  Received\t%s\t%.1f%%\n", a.ReceivedDisplay, a.ReceivedPercentage)

	if l := p.Latest; l != nil {
		fmt.Fprintf(tw, "\nWhat's up\t%s (%s)\n", l.Name, l.Path)
		fmt.Fprintf(tw, "  Status\t%s\n", l.Outcome())
		if l.UpdatedAt != "" {
			fmt.Fprintf(tw, "  Updated\t%s\n", l.UpdatedAt)
		}
	}

	for _, c := range p.Skills {
		fmt.Fprintf(tw, "\n%s\n", c.Title)
		if len(c.Skills) == 0 {
			fmt.Fprintln(tw, "  no skills recorded")
			continue
		}
		for _, e := range c.Skills {
			fmt.Fprintf(tw, "  %s\t%s\t%g%%\t%s\n", humanize.Ordinal(e.Rank), e.DisplayName, e.Level, age(e.CreatedAt, now))
		}
	}
	return tw.Flush()
}

func age(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
