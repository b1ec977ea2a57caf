package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/mdwiki"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mdwiki",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mdwiki version %s\n", strings.TrimSpace(mdwiki.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
