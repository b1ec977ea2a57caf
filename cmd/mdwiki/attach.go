package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/mdwiki/pkg/wiki"
)

var attachPage int

var attachCmd = &cobra.Command{
	Use:     "attach",
	Aliases: []string{"img"},
	Short:   "Upload, link and browse images",
	Long: `attach manages the images of the selected workspace. With --page, the
resulting image reference is appended to that page's document and saved;
otherwise the markdown fragment is printed.`,
}

var attachUploadCmd = &cobra.Command{
	Use:   "upload GLOB",
	Short: "Upload every file matching a glob (** supported)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAttachments(cmd, func(ctx context.Context, a *wiki.Attachments) ([]string, error) {
			a.Open(wiki.ModeUpload)
			return a.UploadGlob(ctx, args[0])
		})
	},
}

var attachLinkCmd = &cobra.Command{
	Use:   "link URL",
	Short: "Reference an image by absolute URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAttachments(cmd, func(ctx context.Context, a *wiki.Attachments) ([]string, error) {
			a.Open(wiki.ModeLinkByURL)
			frag, err := a.LinkByURL(args[0])
			if err != nil {
				return nil, err
			}
			return []string{frag}, nil
		})
	},
}

var attachInsertCmd = &cobra.Command{
	Use:   "insert GUID",
	Short: "Reference an uploaded image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAttachments(cmd, func(ctx context.Context, a *wiki.Attachments) ([]string, error) {
			return []string{a.Insert(args[0])}, nil
		})
	},
}

var attachListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded images",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, ws, err := app.space(cmd.Context())
		if err != nil {
			return err
		}
		a := app.wb.Attachments(ws)
		list, err := a.Browse(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, att := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", att.GUID, att.FileName, att.FileType, att.Size, a.ThumbnailURL(att.GUID))
		}
		return tw.Flush()
	},
}

var attachRemoveCmd = &cobra.Command{
	Use:     "rm GUID",
	Aliases: []string{"delete"},
	Short:   "Delete an uploaded image (documents keep their references)",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, ws, err := app.space(cmd.Context())
		if err != nil {
			return err
		}
		return app.wb.Attachments(ws).Delete(cmd.Context(), args[0])
	},
}

// withAttachments runs fn against the selected workspace and either prints
// the fragments or appends them to --page and saves it.
func withAttachments(cmd *cobra.Command, fn func(context.Context, *wiki.Attachments) ([]string, error)) error {
	ctx := cmd.Context()
	if attachPage == 0 {
		_, ws, err := app.space(ctx)
		if err != nil {
			return err
		}
		frags, err := fn(ctx, app.wb.Attachments(ws))
		for _, f := range frags {
			fmt.Fprint(cmd.OutOrStdout(), f)
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return err
	}

	ed, err := app.openPage(ctx, fmt.Sprint(attachPage))
	if err != nil {
		return err
	}
	ed.OpenEdit()
	defer ed.CloseEdit()
	frags, err := fn(ctx, ed.Attachments())
	for _, f := range frags {
		ed.InsertImage(f)
	}
	if len(frags) == 0 {
		return err
	}
	if saveErr := ed.Save(ctx); saveErr != nil {
		return saveErr
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added %d image(s) to page %d\n", len(frags), attachPage)
	return err
}

func init() {
	attachCmd.PersistentFlags().IntVarP(&attachPage, "page", "p", 0, "Append the reference to this page and save it")

	attachCmd.AddCommand(attachUploadCmd, attachLinkCmd, attachInsertCmd, attachListCmd, attachRemoveCmd)
	rootCmd.AddCommand(attachCmd)
}
