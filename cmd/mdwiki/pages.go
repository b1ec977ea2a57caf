package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/mdwiki/pkg/wiki"
)

var pagesParent int

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Manage the pages of a workspace",
}

var pagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the page tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wb, _, err := app.space(cmd.Context())
		if err != nil {
			return err
		}
		for _, e := range wiki.Flatten(wb.Tree.Pages()) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s%d %s\n", strings.Repeat("  ", e.Depth), e.Page.ID, e.Page.Name)
		}
		return nil
	},
}

var pagesCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a page, optionally below a parent page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wb, _, err := app.space(cmd.Context())
		if err != nil {
			return err
		}
		return wb.Tree.CreatePage(cmd.Context(), args[0], pagesParent)
	},
}

var pagesRenameCmd = &cobra.Command{
	Use:   "rename ID NAME",
	Short: "Rename a page",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		wb, _, err := app.space(cmd.Context())
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return wb.Tree.RenamePage(cmd.Context(), id, args[1])
	},
}

var pagesRemoveCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"delete"},
	Short:   "Delete a page and its sub-pages",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wb, _, err := app.space(cmd.Context())
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return wb.Tree.RemovePage(cmd.Context(), id)
	},
}

func init() {
	pagesCreateCmd.Flags().IntVar(&pagesParent, "parent", 0, "Parent page id")

	pagesCmd.AddCommand(pagesListCmd, pagesCreateCmd, pagesRenameCmd, pagesRemoveCmd)
	rootCmd.AddCommand(pagesCmd)
}
