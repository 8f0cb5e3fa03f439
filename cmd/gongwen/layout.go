package main

import (
	"github.com/spf13/cobra"

	"github.com/dgallion1/gongwen/internal/doctree"
)

var layoutOutput string

var layoutCmd = &cobra.Command{
	Use:   "layout <file.json>",
	Short: "Apply auto-layout to a document",
	Long: `Reads {"tree": ..., "structuredFields": ...}, runs the layout pass with the
document's template rules, and writes the result in the same shape.`,
	Args: cobra.ExactArgs(1),
	RunE: runLayout,
}

func init() {
	layoutCmd.Flags().StringVarP(&layoutOutput, "output", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(layoutCmd)
}

func runLayout(cmd *cobra.Command, args []string) error {
	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}
	eng, err := engine()
	if err != nil {
		return err
	}

	res := eng.ApplyWithRules(doc.Tree.Content, doc.Fields)
	out := documentFile{
		Tree:   doctree.Document{Title: doc.Tree.Title, Content: res.Tree},
		Fields: res.Fields,
	}

	w, closeFn, err := output(cmd, layoutOutput)
	if err != nil {
		return err
	}
	if err := writeJSON(w, out); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}
