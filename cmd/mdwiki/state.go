package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"

	"github.com/aretw0/mdwiki/pkg/adapters/fs"
	"github.com/aretw0/mdwiki/pkg/core"
	"github.com/aretw0/mdwiki/pkg/wiki"
)

var stateDiagram bool

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the state of every client component",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wb, err := app.bench()
		if err != nil {
			return err
		}
		components := wb.Components()
		if app.drafts != nil {
			components = append(components, app.drafts)
		}

		if stateDiagram {
			config := introspection.DefaultDiagramConfig()
			config.SecondaryID = "client"
			config.SecondaryLabel = "Client Topology"
			fmt.Fprintln(cmd.OutOrStdout(), introspection.TreeDiagram(buildTree(wb, components), config))
			return nil
		}

		out := make(map[string]any, len(components))
		for _, c := range components {
			out[c.ComponentType()] = c.State()
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

type node struct {
	Name     string
	Status   string
	Metadata map[string]string
	Children []node
}

// buildTree lays the components out below the store they share.
// Status values must match the classes of introspection.DefaultStyles().
func buildTree(wb *wiki.Workbench, components []wiki.Inspectable) node {
	snap := wb.Store.Snapshot()
	status := "running"
	if snap.Error {
		status = "failed"
	}
	root := node{
		Name:   "Store",
		Status: status,
		Metadata: map[string]string{
			"type":  "container",
			"mode":  snap.Nav.Mode.String(),
			"pages": fmt.Sprint(len(snap.Pages)),
		},
	}
	for _, c := range components {
		if c.ComponentType() == "store" {
			continue
		}
		child := node{
			Name:     c.ComponentType(),
			Status:   "running",
			Metadata: map[string]string{"type": "component"},
		}
		switch st := c.State().(type) {
		case fs.DraftsState:
			child.Metadata["path"] = st.Path
			if !st.WatcherActive {
				child.Status = "suspended"
			}
		case wiki.GateState:
			if st.Denied {
				child.Status = "failed"
			}
		case wiki.SessionState:
			if !st.LoggedIn {
				child.Status = "suspended"
			}
		}
		root.Children = append(root.Children, child)
	}
	if snap.Nav.Mode == core.ModeInside {
		root.Metadata["workspace"] = fmt.Sprint(snap.Nav.WorkspaceID)
	}
	return root
}

func init() {
	stateCmd.Flags().BoolVar(&stateDiagram, "diagram", false, "Print a Mermaid diagram instead of JSON")
	rootCmd.AddCommand(stateCmd)
}
