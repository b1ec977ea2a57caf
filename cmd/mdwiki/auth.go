package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login USER",
	Short: "Log in with a username or email",
	Long: `login starts a cookie session that lasts for the process. It is mostly
useful inside "mdwiki shell"; one-shot commands authenticate with the token
from the config file or MDWIKI_TOKEN.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wb, err := app.bench()
		if err != nil {
			return err
		}
		password := loginPassword
		if password == "" {
			fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return err
			}
			password = strings.TrimRight(line, "\r\n")
		}
		p, err := wb.Session.Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", p.Username)
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the logged-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wb, err := app.bench()
		if err != nil {
			return err
		}
		p, err := wb.Session.WhoAmI(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", p.Username, p.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wb, err := app.bench()
		if err != nil {
			return err
		}
		return wb.Session.Logout(cmd.Context())
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "P", "", "Password (prompted when empty)")
	rootCmd.AddCommand(loginCmd, whoamiCmd, logoutCmd)
}
