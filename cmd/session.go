package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/skilltrack/skilltrack/internal/model"
	"github.com/skilltrack/skilltrack/internal/service"
	"github.com/skilltrack/skilltrack/internal/tui"
)

var startCmd = &cobra.Command{
	Use:   "start <entity-id>",
	Short: "Start a timed session against an entity",
	Long: `Start a timed session against an entity. Each entity can have at most
one running session; stop it before starting another.

With --watch, shows a live timer; press s to stop the session or q to
detach and leave it running.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		entityID, err := parseID(args[0])
		if err != nil {
			fail(err, "list entities with 'skilltrack entity list'")
			return
		}

		services := mustServices()
		if services == nil {
			return
		}

		session, err := services.Session.Start(entityID)
		if err != nil {
			failSession(err)
			return
		}

		entities, _ := services.Entity.List()
		label := model.EntityLabel(entities, entityID)

		watch, _ := cmd.Flags().GetBool("watch")
		if watch {
			final, err := tui.RunTimer(services, *session, label)
			if err != nil {
				fail(err, "")
				return
			}
			if final.Stopped() {
				_, _ = fmt.Fprintf(deps.Stdout, "Stopped session %d for %s\n", session.ID, label)
				return
			}
			_, _ = fmt.Fprintf(deps.Stdout, "Session %d for %s is still running\n", session.ID, label)
			return
		}

		_, _ = fmt.Fprintf(deps.Stdout, "Started session %d for %s at %s\n",
			session.ID, label, session.StartTime.Format("15:04:05"))
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop <session-id>",
	Short: "Stop a running session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sessionID, err := parseID(args[0])
		if err != nil {
			fail(err, "list running sessions with 'skilltrack status'")
			return
		}

		services := mustServices()
		if services == nil {
			return
		}

		session, err := services.Session.Stop(sessionID)
		if err != nil {
			failSession(err)
			return
		}

		entities, _ := services.Entity.List()
		_, _ = fmt.Fprintf(deps.Stdout, "Stopped session %d for %s (%s)\n",
			session.ID,
			model.EntityLabel(entities, session.EntityID),
			formatDuration(session.Duration()))
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show running sessions",
	Run: func(cmd *cobra.Command, args []string) {
		services := mustServices()
		if services == nil {
			return
		}

		result, err := services.Session.ListStarted()
		if err != nil {
			failSession(err)
			return
		}
		printWarnings(result.Warnings)

		if len(result.Sessions) == 0 {
			_, _ = fmt.Fprintln(deps.Stdout, "No running sessions")
			return
		}

		entities, _ := services.Entity.List()
		_, _ = fmt.Fprintln(deps.Stdout, headerStyle.Render("Running sessions:"))
		for _, s := range result.Sessions {
			_, _ = fmt.Fprintf(deps.Stdout, "[%d] %s  started %s  (%s elapsed)\n",
				s.ID,
				model.EntityLabel(entities, s.EntityID),
				s.StartTime.Format(timeLayout),
				formatDuration(time.Since(s.StartTime)))
		}
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List and correct completed sessions",
	Run: func(cmd *cobra.Command, args []string) {
		includeDeleted, _ := cmd.Flags().GetBool("all")

		services := mustServices()
		if services == nil {
			return
		}

		result, err := services.Session.ListCompleted(includeDeleted)
		if err != nil {
			failSession(err)
			return
		}
		printWarnings(result.Warnings)

		if len(result.Sessions) == 0 {
			_, _ = fmt.Fprintln(deps.Stdout, "No completed sessions")
			return
		}

		entities, _ := services.Entity.List()
		_, _ = fmt.Fprintln(deps.Stdout, headerStyle.Render("Completed sessions:"))
		_, _ = fmt.Fprintln(deps.Stdout, divider())
		for _, s := range result.Sessions {
			_, _ = fmt.Fprintln(deps.Stdout, formatSession(s, entities))
		}
	},
}

var sessionsTrashCmd = &cobra.Command{
	Use:   "trash",
	Short: "List deleted sessions",
	Run: func(cmd *cobra.Command, args []string) {
		services := mustServices()
		if services == nil {
			return
		}

		result, err := services.Session.ListTrash()
		if err != nil {
			failSession(err)
			return
		}
		printWarnings(result.Warnings)

		if len(result.Sessions) == 0 {
			_, _ = fmt.Fprintln(deps.Stdout, "Trash is empty")
			return
		}

		entities, _ := services.Entity.List()
		_, _ = fmt.Fprintln(deps.Stdout, headerStyle.Render("Deleted sessions:"))
		_, _ = fmt.Fprintln(deps.Stdout, divider())
		for _, s := range result.Sessions {
			_, _ = fmt.Fprintln(deps.Stdout, formatSession(s, entities))
		}
		_, _ = fmt.Fprintln(deps.Stdout, dimStyle.Render("Recover with: skilltrack sessions recover <id>"))
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Move a completed session to the trash",
	Long: `Move a completed session to the trash. Trashed sessions are excluded
from listings and reports but can be recovered. Running sessions cannot
be trashed; stop them first.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sessionID, err := parseID(args[0])
		if err != nil {
			fail(err, "list sessions with 'skilltrack sessions'")
			return
		}

		services := mustServices()
		if services == nil {
			return
		}

		if err := services.Session.SoftDelete(sessionID); err != nil {
			failSession(err)
			return
		}

		_, _ = fmt.Fprintf(deps.Stdout, "Moved session %d to trash\n", sessionID)
	},
}

var sessionsRecoverCmd = &cobra.Command{
	Use:   "recover <session-id>",
	Short: "Recover a session from the trash",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sessionID, err := parseID(args[0])
		if err != nil {
			fail(err, "list trashed sessions with 'skilltrack sessions trash'")
			return
		}

		services := mustServices()
		if services == nil {
			return
		}

		if err := services.Session.Recover(sessionID); err != nil {
			failSession(err)
			return
		}

		_, _ = fmt.Fprintf(deps.Stdout, "Recovered session %d\n", sessionID)
	},
}

var sessionsEditCmd = &cobra.Command{
	Use:   "edit <session-id>",
	Short: "Correct a session's entity and times",
	Long: `Administrative correction of a recorded session. Times use the
"2006-01-02 15:04" format; the end time must not precede the start.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sessionID, err := parseID(args[0])
		if err != nil {
			fail(err, "list sessions with 'skilltrack sessions'")
			return
		}

		entityArg, _ := cmd.Flags().GetString("entity")
		startArg, _ := cmd.Flags().GetString("start")
		endArg, _ := cmd.Flags().GetString("end")
		if entityArg == "" || startArg == "" || endArg == "" {
			fail(errors.New("--entity, --start, and --end are all required"), "")
			return
		}

		entityID, err := parseID(entityArg)
		if err != nil {
			fail(err, "list entities with 'skilltrack entity list'")
			return
		}
		start, err := parseWhen(startArg)
		if err != nil {
			fail(err, "")
			return
		}
		end, err := parseWhen(endArg)
		if err != nil {
			fail(err, "")
			return
		}

		services := mustServices()
		if services == nil {
			return
		}

		if err := services.Session.Update(sessionID, entityID, start, &end); err != nil {
			failSession(err)
			return
		}

		_, _ = fmt.Fprintf(deps.Stdout, "Updated session %d\n", sessionID)
	},
}

func init() {
	startCmd.Flags().Bool("watch", false, "Show a live timer for the session")
	sessionsCmd.Flags().Bool("all", false, "Include trashed sessions")

	sessionsCmd.AddCommand(sessionsTrashCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsCmd.AddCommand(sessionsRecoverCmd)
	sessionsCmd.AddCommand(sessionsEditCmd)
}

// failSession maps common service errors to actionable messages
func failSession(err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		fail(err, "log in first with 'skilltrack login <username>'")
	case errors.Is(err, service.ErrConflict):
		fail(err, "stop the running session with 'skilltrack stop <session-id>'")
	case errors.Is(err, service.ErrNotFound):
		fail(err, "check the id with 'skilltrack status' or 'skilltrack sessions'")
	default:
		fail(err, "")
	}
}
