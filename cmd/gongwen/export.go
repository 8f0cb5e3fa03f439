package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/gongwen/internal/export"
)

var (
	exportOutput   string
	exportUnitName string
	exportLayout   bool
)

var exportCmd = &cobra.Command{
	Use:   "export <file.json>",
	Short: "Export a document as DOCX",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output .docx file (required)")
	exportCmd.Flags().StringVar(&exportUnitName, "unit-name", "", "Issuing unit printed in the red header")
	exportCmd.Flags().BoolVar(&exportLayout, "layout", false, "Apply auto-layout before exporting")
	_ = exportCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if !strings.HasSuffix(strings.ToLower(exportOutput), ".docx") {
		return fmt.Errorf("output must be a .docx file: %s", exportOutput)
	}
	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}

	tree, fields := doc.Tree.Content, doc.Fields
	if exportLayout {
		eng, err := engine()
		if err != nil {
			return err
		}
		res := eng.ApplyWithRules(tree, fields)
		tree, fields = res.Tree, res.Fields
	}

	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("create %s: %w", exportOutput, err)
	}
	if err := export.Write(f, tree, fields, export.Options{UnitName: exportUnitName}); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", exportOutput, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", exportOutput)
	return nil
}
