package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skilltrack/skilltrack/internal/auth"
)

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create a new user account",
	Long: `Create a new user account. Prompts for a password unless --password
is given. Registering does not log you in; run 'skilltrack login' after.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		username := strings.TrimSpace(args[0])
		password := readPassword(cmd)
		if password == "" {
			return
		}

		services := mustServices()
		if services == nil {
			return
		}

		if err := services.Auth.Register(username, password); err != nil {
			if errors.Is(err, auth.ErrDuplicateUser) {
				fail(err, "pick a different username")
				return
			}
			fail(err, "")
			return
		}

		_, _ = fmt.Fprintf(deps.Stdout, "Registered user %s\n", username)
		_, _ = fmt.Fprintln(deps.Stdout, "Log in with: skilltrack login "+username)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in as an existing user",
	Long: `Log in as an existing user. The login persists until 'skilltrack
logout'; all entity, session, goal, and report commands operate on the
logged-in user's data.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		username := strings.TrimSpace(args[0])
		password := readPassword(cmd)
		if password == "" {
			return
		}

		services := mustServices()
		if services == nil {
			return
		}

		if err := services.Auth.Login(username, password); err != nil {
			if errors.Is(err, auth.ErrAuthFailed) {
				fail(err, "check the username and password")
				return
			}
			fail(err, "")
			return
		}

		_, _ = fmt.Fprintf(deps.Stdout, "Logged in as %s\n", username)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out the current user",
	Run: func(cmd *cobra.Command, args []string) {
		services := mustServices()
		if services == nil {
			return
		}

		username := services.Auth.CurrentUser()
		if err := services.Auth.Logout(); err != nil {
			fail(err, "")
			return
		}

		if username == "" {
			_, _ = fmt.Fprintln(deps.Stdout, "Nobody was logged in")
			return
		}
		_, _ = fmt.Fprintf(deps.Stdout, "Logged out %s\n", username)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Run: func(cmd *cobra.Command, args []string) {
		services := mustServices()
		if services == nil {
			return
		}

		username := services.Auth.CurrentUser()
		if username == "" {
			_, _ = fmt.Fprintln(deps.Stdout, "Not logged in")
			return
		}
		_, _ = fmt.Fprintln(deps.Stdout, username)
	},
}

func init() {
	registerCmd.Flags().String("password", "", "Password (prompted when omitted)")
	loginCmd.Flags().String("password", "", "Password (prompted when omitted)")
}

// readPassword returns the --password flag value or prompts for one line
// on stdin. Returns "" after reporting an error for an empty password.
func readPassword(cmd *cobra.Command) string {
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		_, _ = fmt.Fprint(deps.Stdout, "Password: ")
		scanner := bufio.NewScanner(deps.Stdin)
		if scanner.Scan() {
			password = strings.TrimSpace(scanner.Text())
		}
	}

	if password == "" {
		_, _ = fmt.Fprintln(deps.Stderr, "Error: Password cannot be empty")
		deps.Exit(1)
		return ""
	}
	return password
}
