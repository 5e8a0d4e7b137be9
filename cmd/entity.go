package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skilltrack/skilltrack/internal/model"
	"github.com/skilltrack/skilltrack/internal/service"
)

var entityCmd = &cobra.Command{
	Use:   "entity",
	Short: "Manage trackable entities (skills and projects)",
}

var entityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your entities",
	Run: func(cmd *cobra.Command, args []string) {
		services := mustServices()
		if services == nil {
			return
		}

		entities, err := services.Entity.List()
		if err != nil {
			failEntity(err)
			return
		}

		if len(entities) == 0 {
			_, _ = fmt.Fprintln(deps.Stdout, "No entities yet. Add one with: skilltrack entity add <name> --type Skill")
			return
		}

		_, _ = fmt.Fprintln(deps.Stdout, headerStyle.Render("Entities:"))
		_, _ = fmt.Fprintln(deps.Stdout, divider())
		for _, e := range entities {
			line := fmt.Sprintf("[%d] %s  %s", e.ID, e.Name, dimStyle.Render(string(e.Type)))
			if e.Description != "" {
				line += "  " + dimStyle.Render(e.Description)
			}
			_, _ = fmt.Fprintln(deps.Stdout, line)
		}
	},
}

var entityAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new entity",
	Long: `Add a new trackable entity. The type must be Skill or Project.
Names are not required to be unique; the assigned ID is.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		typ, _ := cmd.Flags().GetString("type")
		description, _ := cmd.Flags().GetString("description")

		services := mustServices()
		if services == nil {
			return
		}

		entity, err := services.Entity.Create(args[0], model.EntityType(typ), description)
		if err != nil {
			failEntity(err)
			return
		}

		_, _ = fmt.Fprintf(deps.Stdout, "Added %s [%d] %s\n", entity.Type, entity.ID, entity.Name)
	},
}

var entityEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit an entity",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			fail(err, "list entities with 'skilltrack entity list'")
			return
		}

		services := mustServices()
		if services == nil {
			return
		}

		// Unset flags keep the current values
		current, err := services.Entity.Get(id)
		if err != nil {
			failEntity(err)
			return
		}

		name := current.Name
		typ := string(current.Type)
		description := current.Description
		if cmd.Flags().Changed("name") {
			name, _ = cmd.Flags().GetString("name")
		}
		if cmd.Flags().Changed("type") {
			typ, _ = cmd.Flags().GetString("type")
		}
		if cmd.Flags().Changed("description") {
			description, _ = cmd.Flags().GetString("description")
		}

		if err := services.Entity.Update(id, name, model.EntityType(typ), description); err != nil {
			failEntity(err)
			return
		}

		_, _ = fmt.Fprintf(deps.Stdout, "Updated entity %d\n", id)
	},
}

var entityDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an entity",
	Long: `Delete an entity record. Sessions and goals recorded against it are
kept; they will show "Entity <id>" in listings and reports.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			fail(err, "list entities with 'skilltrack entity list'")
			return
		}

		services := mustServices()
		if services == nil {
			return
		}

		if err := services.Entity.Delete(id); err != nil {
			failEntity(err)
			return
		}

		_, _ = fmt.Fprintf(deps.Stdout, "Deleted entity %d (its sessions and goals are kept)\n", id)
	},
}

func init() {
	entityCmd.AddCommand(entityListCmd)
	entityCmd.AddCommand(entityAddCmd)
	entityCmd.AddCommand(entityEditCmd)
	entityCmd.AddCommand(entityDeleteCmd)

	entityAddCmd.Flags().String("type", "Skill", "Entity type: Skill or Project")
	entityAddCmd.Flags().String("description", "", "Optional description")

	entityEditCmd.Flags().String("name", "", "New name")
	entityEditCmd.Flags().String("type", "", "New type: Skill or Project")
	entityEditCmd.Flags().String("description", "", "New description")
}

// failEntity maps common service errors to actionable messages
func failEntity(err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		fail(err, "log in first with 'skilltrack login <username>'")
	case errors.Is(err, service.ErrNotFound):
		fail(err, "list entities with 'skilltrack entity list'")
	default:
		fail(err, "")
	}
}
