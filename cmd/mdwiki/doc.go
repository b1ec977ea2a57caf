package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/lifecycle"
	"github.com/spf13/cobra"

	adapter "github.com/aretw0/mdwiki/pkg/adapters/lifecycle"
	"github.com/aretw0/mdwiki/pkg/core"
	"github.com/aretw0/mdwiki/pkg/wiki"
)

var (
	docHTML bool
	docFile string
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Read and edit page documents",
}

var docShowCmd = &cobra.Command{
	Use:   "show PAGE",
	Short: "Print the document of a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ed, err := app.openPage(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := ed.Shown()
		if docHTML {
			if out, err = ed.Preview(); err != nil {
				return err
			}
		}
		_, err = io.WriteString(cmd.OutOrStdout(), out)
		return err
	},
}

var docSaveCmd = &cobra.Command{
	Use:   "save PAGE",
	Short: "Replace the document of a page with a file or stdin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if docFile == "" || docFile == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(docFile)
		}
		if err != nil {
			return err
		}
		ed, err := app.openPage(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return saveDraft(cmd.Context(), ed, string(data))
	},
}

var docPullCmd = &cobra.Command{
	Use:   "pull PAGE",
	Short: "Write the document to a local draft file and print its path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ed, err := app.openPage(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		path, err := pull(ed)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var docPushCmd = &cobra.Command{
	Use:   "push PAGE",
	Short: "Save the local draft file of a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ed, err := app.openPage(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		drafts, err := app.draftStore()
		if err != nil {
			return err
		}
		ws, pg := ed.Page()
		text, ok, err := drafts.Read(ws, pg)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no draft for page %d: run \"doc pull %d\" first", pg, pg)
		}
		return saveDraft(cmd.Context(), ed, text)
	},
}

var docRefsCmd = &cobra.Command{
	Use:   "refs PAGE",
	Short: "List the images referenced by a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ed, err := app.openPage(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, ref := range ed.References() {
			fmt.Fprintln(cmd.OutOrStdout(), ref)
		}
		return nil
	},
}

var docWatchCmd = &cobra.Command{
	Use:   "watch PAGE",
	Short: "Pull a draft, then save it every time the file changes",
	Long: `watch writes the document to a local draft file and saves the page
whenever the file is written, until interrupted. Open the printed path in
any editor.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ed, err := app.openPage(ctx, args[0])
		if err != nil {
			return err
		}
		path, err := pull(ed)
		if err != nil {
			return err
		}
		drafts, err := app.draftStore()
		if err != nil {
			return err
		}
		ws, pg := ed.Page()
		events, err := drafts.Watch(ctx, ws, pg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "watching %s (Ctrl-C to stop)\n", path)
		return watch(ctx, cmd.OutOrStdout(), ed, adapter.NewSource(events, core.EventDraftChanged, core.EventDraftRemoved))
	},
}

// watch saves every changed draft delivered by src until it closes.
func watch(ctx context.Context, out io.Writer, ed *wiki.Editor, src lifecycle.Source) error {
	if err := src.Start(ctx); err != nil {
		return err
	}
	drafts, err := app.draftStore()
	if err != nil {
		return err
	}
	ws, pg := ed.Page()
	for ev := range src.Events() {
		e, ok := ev.(core.Event)
		if !ok {
			continue
		}
		switch e.Type {
		case core.EventDraftRemoved:
			slog.Warn("draft removed, waiting for it to come back", "path", e.Path)
		case core.EventDraftChanged:
			text, ok, err := drafts.Read(ws, pg)
			if err != nil || !ok {
				slog.Warn("read draft", "path", e.Path, "error", err)
				continue
			}
			if text == ed.Text() {
				continue
			}
			if err := saveDraft(ctx, ed, text); err != nil {
				// Keep watching; the next write retries.
				slog.Error("save failed", "page", pg, "error", err)
				continue
			}
			fmt.Fprintln(out, core.Event{Type: core.EventSaved, Path: e.Path})
		}
	}
	return nil
}

func pull(ed *wiki.Editor) (string, error) {
	drafts, err := app.draftStore()
	if err != nil {
		return "", err
	}
	ws, pg := ed.Page()
	return drafts.Write(ws, pg, ed.Text())
}

func saveDraft(ctx context.Context, ed *wiki.Editor, text string) error {
	ed.OpenEdit()
	defer ed.CloseEdit()
	ed.SetDraft(text)
	return ed.Save(ctx)
}

func init() {
	docShowCmd.Flags().BoolVar(&docHTML, "html", false, "Render the document as HTML")
	docSaveCmd.Flags().StringVarP(&docFile, "file", "f", "-", "Read the document from a file (- for stdin)")

	docCmd.AddCommand(docShowCmd, docSaveCmd, docPullCmd, docPushCmd, docRefsCmd, docWatchCmd)
	rootCmd.AddCommand(docCmd)
}
