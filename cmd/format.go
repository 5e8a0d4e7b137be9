package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/skilltrack/skilltrack/internal/model"
	"github.com/skilltrack/skilltrack/internal/service"
	"github.com/skilltrack/skilltrack/internal/storage"
	"github.com/skilltrack/skilltrack/internal/timeutil"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
)

// timeLayout is the timestamp format accepted and shown by the CLI
const timeLayout = "2006-01-02 15:04"

// dateLayout is the date-only format accepted for report ranges
const dateLayout = "2006-01-02"

// formatTotal formats a report total as "3h 30m 0s"
func formatTotal(rep model.Report) string {
	return fmt.Sprintf("%dh %dm %ds", rep.Hours, rep.Minutes, rep.Seconds)
}

// formatSession renders one session line with the entity label resolved
// against the current entity list. Deleted entities fall back to
// "Entity {id}".
func formatSession(s model.Session, entities []model.Entity) string {
	label := model.EntityLabel(entities, s.EntityID)
	if s.EndTime == nil {
		return fmt.Sprintf("[%d] %s  %s  (running since %s)",
			s.ID, label, s.StartTime.Format(timeLayout),
			s.StartTime.Format("15:04"))
	}
	d := s.Duration()
	line := fmt.Sprintf("[%d] %s  %s - %s  (%s)",
		s.ID, label,
		s.StartTime.Format(timeLayout), s.EndTime.Format("15:04"),
		formatDuration(d))
	if s.Deleted {
		line += dimStyle.Render("  [deleted]")
	}
	return line
}

// formatDuration formats a duration as a compact h/m/s string
func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	mins := (total / 60) % 60
	secs := total % 60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	case mins > 0:
		return fmt.Sprintf("%dm %ds", mins, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// printWarnings reports corrupted storage rows to stderr. Corrupt rows are
// skipped during load, never fatal.
func printWarnings(warnings []storage.ParseWarning) {
	if len(warnings) == 0 {
		return
	}
	_, _ = fmt.Fprintf(deps.Stderr, "Warning: %d corrupted line(s) in storage were skipped:\n", len(warnings))
	for _, w := range warnings {
		content := w.Content
		if len(content) > 50 {
			content = content[:47] + "..."
		}
		_, _ = fmt.Fprintf(deps.Stderr, "  Line %d: %s (error: %s)\n", w.LineNumber, content, w.Error)
	}
}

// parseID parses a numeric record ID argument
func parseID(arg string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

// parseWhen parses a timestamp in "2006-01-02 15:04", date-only, or
// RFC3339 form. Date-only values resolve to midnight local time.
func parseWhen(arg string) (time.Time, error) {
	for _, layout := range []string{timeLayout, dateLayout, time.RFC3339} {
		if t, err := time.ParseInLocation(layout, arg, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (expected %q or %q)", arg, timeLayout, dateLayout)
}

// reportRange resolves the --from/--to flags to a concrete window. An
// empty --from defaults to default_range_days ago; an empty --to defaults
// to the end of today.
func reportRange(from, to string) (time.Time, time.Time, error) {
	now := time.Now()

	end := timeutil.EndOfDay(now)
	if to != "" {
		t, err := parseWhen(to)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		// Date-only bounds cover the whole end day
		end = timeutil.EndOfDay(t)
	}

	start := timeutil.StartOfDay(end.AddDate(0, 0, -deps.Config.DefaultRangeDays))
	if from != "" {
		t, err := parseWhen(from)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = timeutil.StartOfDay(t)
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s is before start date %s",
			end.Format(dateLayout), start.Format(dateLayout))
	}

	return start, end, nil
}

// mustServices builds the service layer or exits with a hint
func mustServices() *service.Services {
	services, err := deps.Services()
	if err != nil {
		_, _ = fmt.Fprintln(deps.Stderr, "Error: Failed to open data directory")
		_, _ = fmt.Fprintf(deps.Stderr, "Details: %v\n", err)
		deps.Exit(1)
		return nil
	}
	return services
}

// fail prints an error with an optional hint and exits
func fail(err error, hint string) {
	_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
	if hint != "" {
		_, _ = fmt.Fprintln(deps.Stderr, "Hint: "+hint)
	}
	deps.Exit(1)
}

// divider renders a horizontal rule for list output
func divider() string {
	return dimStyle.Render(strings.Repeat("-", 50))
}
