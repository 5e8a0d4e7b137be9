package cmd

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/skilltrack/skilltrack/internal/model"
	"github.com/skilltrack/skilltrack/internal/report"
	"github.com/skilltrack/skilltrack/internal/service"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Aggregate tracked time over a date range",
	Long: `Aggregate tracked time over a date range. Only completed,
non-trashed sessions lying entirely within the range count.

Without --from, the range covers the configured default (last 7 days);
without --to, it ends today.`,
}

var reportTotalCmd = &cobra.Command{
	Use:   "total <entity-id>",
	Short: "Total time for one entity",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		entityID, err := parseID(args[0])
		if err != nil {
			fail(err, "list entities with 'skilltrack entity list'")
			return
		}

		start, end, err := rangeFlags(cmd)
		if err != nil {
			fail(err, "")
			return
		}

		services := mustServices()
		if services == nil {
			return
		}

		rep, err := services.Report.Total(entityID, start, end)
		if err != nil {
			failReport(err)
			return
		}

		entities, _ := services.Entity.List()
		_, _ = fmt.Fprintf(deps.Stdout, "%s: %s  %s\n",
			model.EntityLabel(entities, entityID),
			headerStyle.Render(formatTotal(*rep)),
			dimStyle.Render(fmt.Sprintf("(%s to %s)", start.Format(dateLayout), end.Format(dateLayout))))
	},
}

var reportAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Totals for every entity",
	Run: func(cmd *cobra.Command, args []string) {
		start, end, err := rangeFlags(cmd)
		if err != nil {
			fail(err, "")
			return
		}

		services := mustServices()
		if services == nil {
			return
		}

		entities, err := services.Entity.List()
		if err != nil {
			failReport(err)
			return
		}
		if len(entities) == 0 {
			_, _ = fmt.Fprintln(deps.Stdout, "No entities yet")
			return
		}

		reports, err := services.Report.TotalAll(entities, start, end)
		if err != nil {
			failReport(err)
			return
		}

		_, _ = fmt.Fprintf(deps.Stdout, "%s %s\n",
			headerStyle.Render("Totals"),
			dimStyle.Render(fmt.Sprintf("(%s to %s)", start.Format(dateLayout), end.Format(dateLayout))))
		_, _ = fmt.Fprintln(deps.Stdout, divider())
		for i, rep := range reports {
			_, _ = fmt.Fprintf(deps.Stdout, "%s: %s\n", entities[i].Name, formatTotal(rep))
		}
	},
}

var reportSeriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Bucketed time series for charting",
	Long: `Bucket tracked time into day, week, or month periods per entity.
Sessions bucket into the period containing their start time; week
periods start on the ISO Monday, month periods on the first.

The axis starts at the earliest tracked session (never before --from)
and ends at --to clipped to today, so charts skip long empty lead-ins.

By default all entities are included; narrow with --entities 1,3.
Per-period hours are shown unless --cumulative is given. With --csv the
series is written to a file instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		start, end, err := rangeFlags(cmd)
		if err != nil {
			fail(err, "")
			return
		}

		granularity, _ := cmd.Flags().GetString("granularity")
		cumulative, _ := cmd.Flags().GetBool("cumulative")
		csvPath, _ := cmd.Flags().GetString("csv")
		entitiesFlag, _ := cmd.Flags().GetString("entities")

		services := mustServices()
		if services == nil {
			return
		}

		entities, err := services.Entity.List()
		if err != nil {
			failReport(err)
			return
		}

		selected, err := selectEntities(entities, entitiesFlag)
		if err != nil {
			fail(err, "list entities with 'skilltrack entity list'")
			return
		}
		if len(selected) == 0 {
			_, _ = fmt.Fprintln(deps.Stdout, "No entities to report on")
			return
		}

		ids := make([]uint64, len(selected))
		for i, e := range selected {
			ids[i] = e.ID
		}

		result, err := services.Report.Series(ids, start, end, report.Granularity(granularity))
		if err != nil {
			failReport(err)
			return
		}

		if csvPath != "" {
			if err := writeSeriesCSV(csvPath, selected, result, cumulative); err != nil {
				fail(err, "")
				return
			}
			_, _ = fmt.Fprintf(deps.Stdout, "Wrote %s\n", csvPath)
			return
		}

		printSeries(selected, result, cumulative)
	},
}

func init() {
	reportCmd.AddCommand(reportTotalCmd)
	reportCmd.AddCommand(reportAllCmd)
	reportCmd.AddCommand(reportSeriesCmd)

	for _, c := range []*cobra.Command{reportTotalCmd, reportAllCmd, reportSeriesCmd} {
		c.Flags().String("from", "", "Range start date (2006-01-02)")
		c.Flags().String("to", "", "Range end date (2006-01-02)")
	}

	reportSeriesCmd.Flags().String("granularity", "day", "Bucket size: day, week, or month")
	reportSeriesCmd.Flags().Bool("cumulative", false, "Show running totals instead of per-period hours")
	reportSeriesCmd.Flags().String("csv", "", "Write the series to a CSV file")
	reportSeriesCmd.Flags().String("entities", "", "Comma-separated entity ids (default: all)")
}

// rangeFlags reads --from/--to and resolves them to a concrete window
func rangeFlags(cmd *cobra.Command) (time.Time, time.Time, error) {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	return reportRange(from, to)
}

// selectEntities narrows the entity list to the --entities flag selection
func selectEntities(entities []model.Entity, flag string) ([]model.Entity, error) {
	if flag == "" {
		return entities, nil
	}

	var selected []model.Entity
	for _, part := range strings.Split(flag, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid entity id %q", part)
		}
		found := false
		for _, e := range entities {
			if e.ID == id {
				selected = append(selected, e)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("entity %d not found", id)
		}
	}
	return selected, nil
}

// printSeries renders the series as one block per entity
func printSeries(entities []model.Entity, result *service.SeriesResult, cumulative bool) {
	if len(result.Axis) == 0 {
		_, _ = fmt.Fprintln(deps.Stdout, "No periods in range")
		return
	}

	mode := "per-period hours"
	if cumulative {
		mode = "cumulative hours"
	}
	_, _ = fmt.Fprintf(deps.Stdout, "%s %s\n",
		headerStyle.Render("Series"),
		dimStyle.Render(fmt.Sprintf("(%s, %s)", result.Granularity, mode)))

	for _, e := range entities {
		values := result.PerPeriodHours[e.ID]
		if cumulative {
			values = result.CumulativeHours[e.ID]
		}
		_, _ = fmt.Fprintln(deps.Stdout, divider())
		_, _ = fmt.Fprintln(deps.Stdout, headerStyle.Render(e.Name))
		for i, key := range result.Axis {
			_, _ = fmt.Fprintf(deps.Stdout, "  %s  %.2fh\n", key, values[i])
		}
	}
}

// writeSeriesCSV exports the series with one period per row and one
// column per entity.
func writeSeriesCSV(path string, entities []model.Entity, result *service.SeriesResult, cumulative bool) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	w := csv.NewWriter(file)

	header := []string{"Period"}
	for _, e := range entities {
		header = append(header, e.Name)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, key := range result.Axis {
		row := []string{key}
		for _, e := range entities {
			values := result.PerPeriodHours[e.ID]
			if cumulative {
				values = result.CumulativeHours[e.ID]
			}
			row = append(row, strconv.FormatFloat(values[i], 'f', 3, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// failReport maps common service errors to actionable messages
func failReport(err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		fail(err, "log in first with 'skilltrack login <username>'")
	case errors.Is(err, service.ErrValidation):
		fail(err, "")
	default:
		fail(err, "")
	}
}
