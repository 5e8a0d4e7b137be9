package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skilltrack/skilltrack/internal/model"
	"github.com/skilltrack/skilltrack/internal/service"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage target-hour goals",
}

var goalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List goals with progress",
	Run: func(cmd *cobra.Command, args []string) {
		entityArg, _ := cmd.Flags().GetString("entity")

		var entityID uint64
		if entityArg != "" {
			var err error
			entityID, err = parseID(entityArg)
			if err != nil {
				fail(err, "list entities with 'skilltrack entity list'")
				return
			}
		}

		services := mustServices()
		if services == nil {
			return
		}

		goals, err := services.Goal.List(entityID)
		if err != nil {
			failGoal(err)
			return
		}

		if len(goals) == 0 {
			_, _ = fmt.Fprintln(deps.Stdout, "No goals yet. Add one with: skilltrack goal add <entity-id> <name> --target 10")
			return
		}

		entities, _ := services.Entity.List()
		_, _ = fmt.Fprintln(deps.Stdout, headerStyle.Render("Goals:"))
		_, _ = fmt.Fprintln(deps.Stdout, divider())
		for _, g := range goals {
			percent, tracked, err := services.Goal.Progress(g)
			if err != nil {
				failGoal(err)
				return
			}
			status := dimStyle.Render(string(g.Status))
			if g.Status == model.GoalCompleted {
				status = okStyle.Render(string(g.Status))
			}
			_, _ = fmt.Fprintf(deps.Stdout, "[%d] %s (%s)  target %gh  progress %.1f%% (%.1fh tracked)  %s\n",
				g.ID, g.Name,
				model.EntityLabel(entities, g.EntityID),
				g.TargetHours, percent, tracked, status)
		}
	},
}

var goalAddCmd = &cobra.Command{
	Use:   "add <entity-id> <name>",
	Short: "Add a goal for an entity",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		entityID, err := parseID(args[0])
		if err != nil {
			fail(err, "list entities with 'skilltrack entity list'")
			return
		}
		target, _ := cmd.Flags().GetFloat64("target")

		services := mustServices()
		if services == nil {
			return
		}

		goal, err := services.Goal.Add(entityID, args[1], target)
		if err != nil {
			failGoal(err)
			return
		}

		_, _ = fmt.Fprintf(deps.Stdout, "Added goal [%d] %s (target %gh)\n", goal.ID, goal.Name, goal.TargetHours)
	},
}

var goalEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a goal",
	Long: `Edit a goal's name, target hours, or status. Status is user-set
(Incomplete or Completed); it never changes automatically, regardless of
progress.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			fail(err, "list goals with 'skilltrack goal list'")
			return
		}

		services := mustServices()
		if services == nil {
			return
		}

		// Unset flags keep the current values
		goals, err := services.Goal.List(0)
		if err != nil {
			failGoal(err)
			return
		}
		var current *model.Goal
		for i := range goals {
			if goals[i].ID == id {
				current = &goals[i]
				break
			}
		}
		if current == nil {
			failGoal(service.ErrNotFound)
			return
		}

		name := current.Name
		target := current.TargetHours
		status := string(current.Status)
		if cmd.Flags().Changed("name") {
			name, _ = cmd.Flags().GetString("name")
		}
		if cmd.Flags().Changed("target") {
			target, _ = cmd.Flags().GetFloat64("target")
		}
		if cmd.Flags().Changed("status") {
			status, _ = cmd.Flags().GetString("status")
		}

		if err := services.Goal.Update(id, name, target, model.GoalStatus(status)); err != nil {
			failGoal(err)
			return
		}

		_, _ = fmt.Fprintf(deps.Stdout, "Updated goal %d\n", id)
	},
}

var goalDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a goal",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			fail(err, "list goals with 'skilltrack goal list'")
			return
		}

		services := mustServices()
		if services == nil {
			return
		}

		if err := services.Goal.Delete(id); err != nil {
			failGoal(err)
			return
		}

		_, _ = fmt.Fprintf(deps.Stdout, "Deleted goal %d\n", id)
	},
}

func init() {
	goalCmd.AddCommand(goalListCmd)
	goalCmd.AddCommand(goalAddCmd)
	goalCmd.AddCommand(goalEditCmd)
	goalCmd.AddCommand(goalDeleteCmd)

	goalListCmd.Flags().String("entity", "", "Only show goals for this entity id")
	goalAddCmd.Flags().Float64("target", 0, "Target hours (must be positive)")

	goalEditCmd.Flags().String("name", "", "New name")
	goalEditCmd.Flags().Float64("target", 0, "New target hours")
	goalEditCmd.Flags().String("status", "", "New status: Incomplete or Completed")
}

// failGoal maps common service errors to actionable messages
func failGoal(err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		fail(err, "log in first with 'skilltrack login <username>'")
	case errors.Is(err, service.ErrNotFound):
		fail(err, "list goals with 'skilltrack goal list'")
	default:
		fail(err, "")
	}
}
