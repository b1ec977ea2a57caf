package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/mdwiki/pkg/core"
	"github.com/aretw0/mdwiki/pkg/wiki"
)

var (
	spacesJSON   bool
	spacesPublic bool
)

var spacesCmd = &cobra.Command{
	Use:     "spaces",
	Aliases: []string{"ws"},
	Short:   "Manage workspaces",
}

var spacesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workspaces",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wb, err := app.bench()
		if err != nil {
			return err
		}
		list, err := wb.Tree.ListWorkspaces(cmd.Context())
		if err != nil {
			return err
		}
		if spacesJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}
		nav := wb.Tree.Navigation()
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, ws := range list {
			mark := " "
			if nav.IsInside(ws.ID) {
				mark = "*"
			}
			fmt.Fprintf(tw, "%s %d\t%s\t%s\n", mark, ws.ID, ws.Name, ws.Visibility)
		}
		return tw.Flush()
	},
}

var spacesCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wb, err := app.bench()
		if err != nil {
			return err
		}
		return wb.Tree.CreateOrUpdate(cmd.Context(), args[0], visibility(spacesPublic), 0)
	},
}

var spacesUpdateCmd = &cobra.Command{
	Use:   "update ID NAME",
	Short: "Rename a workspace and set its visibility",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		wb, err := app.bench()
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return wb.Tree.CreateOrUpdate(cmd.Context(), args[1], visibility(spacesPublic), id)
	},
}

var spacesRemoveCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"delete"},
	Short:   "Delete a workspace and everything in it",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wb, err := app.bench()
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return wb.Tree.Remove(cmd.Context(), id)
	},
}

var spacesOpenCmd = &cobra.Command{
	Use:   "open ID",
	Short: "Open a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wb, err := app.bench()
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := wb.Gate.Resolve(cmd.Context(), wiki.Target{WorkspaceID: id}); err != nil {
			return err
		}
		return wb.Tree.Navigate(cmd.Context(), id)
	},
}

var spacesBackCmd = &cobra.Command{
	Use:   "back",
	Short: "Close the open workspace",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wb, err := app.bench()
		if err != nil {
			return err
		}
		wb.Tree.Back()
		return nil
	},
}

func visibility(public bool) core.Visibility {
	return core.VisibilityFromShared(public)
}

func init() {
	spacesListCmd.Flags().BoolVar(&spacesJSON, "json", false, "Output in JSON format")
	spacesCreateCmd.Flags().BoolVar(&spacesPublic, "public", false, "Make the workspace readable by everyone")
	spacesUpdateCmd.Flags().BoolVar(&spacesPublic, "public", false, "Make the workspace readable by everyone")

	spacesCmd.AddCommand(spacesListCmd, spacesCreateCmd, spacesUpdateCmd, spacesRemoveCmd, spacesOpenCmd, spacesBackCmd)
	rootCmd.AddCommand(spacesCmd)
}
