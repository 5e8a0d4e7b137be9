package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "skilltrack",
	Short: "A personal learning time and productivity tracker",
	Long: `skilltrack tracks the time you invest in skills and projects.

Define entities (a skill or project), start and stop timed sessions
against them, set target-hour goals, and view aggregated reports over
arbitrary date ranges.

All data is stored per user; register an account and log in before
tracking. Typical flow:

  skilltrack register alice
  skilltrack login alice
  skilltrack entity add Piano --type Skill
  skilltrack start 1
  skilltrack stop 1
  skilltrack report total 1`,
}

func init() {
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(entityCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(goalCmd)
	rootCmd.AddCommand(reportCmd)
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(version, commit, date string) {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(
		"skilltrack version {{.Version}}\n" +
			"commit: " + commit + "\n" +
			"built: " + date + "\n",
	)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
