package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/mdwiki/pkg/adapters/fs"
)

var (
	exportDir      string
	exportFont     string
	exportFontSize int
	exportTree     bool
)

var exportCmd = &cobra.Command{
	Use:   "export PAGE",
	Short: "Download a page as PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ed, err := app.openPage(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		opts := app.cfg.ExportOptions()
		if cmd.Flags().Changed("font") {
			opts.Font = exportFont
		}
		if cmd.Flags().Changed("font-size") {
			opts.FontSize = exportFontSize
		}
		if cmd.Flags().Changed("tree") {
			opts.Tree = exportTree
		}

		out, err := ed.Export(cmd.Context(), opts)
		if err != nil {
			return err
		}
		path, err := fs.SaveExport(exportDir, out.FileName, out.Data)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", ".", "Directory to write the PDF to")
	exportCmd.Flags().StringVar(&exportFont, "font", "", "Font family")
	exportCmd.Flags().IntVar(&exportFontSize, "font-size", 0, "Font size")
	exportCmd.Flags().BoolVar(&exportTree, "tree", false, "Include every sub-page")
	rootCmd.AddCommand(exportCmd)
}
