package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/dgallion1/gongwen/internal/check"
	"github.com/dgallion1/gongwen/internal/doctree"
	"github.com/dgallion1/gongwen/internal/layout"
	"github.com/dgallion1/gongwen/internal/parser"
)

var (
	importOutDir      string
	importConcurrency int
	importNoProgress  bool
	importPdftotext   bool
)

var importCmd = &cobra.Command{
	Use:   "import <files...>",
	Short: "Import files and lay them out",
	Long: `Parses .docx, .md, .html, .txt, .csv and .pdf files, applies auto-layout and
writes one <name>.json per input with the laid-out tree, fields, import report
and check issues.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importOutDir, "out-dir", "d", ".", "Directory for the JSON results")
	importCmd.Flags().IntVarP(&importConcurrency, "concurrency", "c", 4, "Files processed in parallel")
	importCmd.Flags().BoolVar(&importNoProgress, "no-progress", false, "Disable the progress bar")
	importCmd.Flags().BoolVar(&importPdftotext, "pdftotext", true, "Fall back to pdftotext for PDFs")
	rootCmd.AddCommand(importCmd)
}

// importResult is the JSON written for each imported file.
type importResult struct {
	Source string                   `json:"source"`
	Tree   doctree.Document         `json:"tree"`
	Fields doctree.StructuredFields `json:"structuredFields"`
	Report parser.ImportReport      `json:"report"`
	Issues []check.Issue            `json:"issues"`
}

func runImport(cmd *cobra.Command, args []string) error {
	eng, err := engine()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(importOutDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", importOutDir, err)
	}
	if importConcurrency <= 0 {
		importConcurrency = 1
	}

	var bar *progressbar.ProgressBar
	if !importNoProgress {
		bar = progressbar.NewOptions(len(args),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("Importing"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("files"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
	}

	opts := parser.Options{FallbackPdftotext: importPdftotext}
	names := outputNames(args)
	errs := make([]error, len(args))
	sem := make(chan struct{}, importConcurrency)
	var wg sync.WaitGroup
	for i, path := range args {
		i, path := i, path
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			errs[i] = importFile(eng, path, filepath.Join(importOutDir, names[i]), opts)
			if bar != nil {
				bar.Add(1)
			}
		}()
	}
	wg.Wait()
	if bar != nil {
		bar.Finish()
		fmt.Fprintln(cmd.ErrOrStderr())
	}

	out := cmd.OutOrStdout()
	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			fmt.Fprintf(out, "  - %s: %v\n", args[i], err)
		}
	}
	fmt.Fprintf(out, "Imported: %d, failed: %d\n", len(args)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

// outputNames maps each input to a distinct result file name. Inputs that
// share a base name, such as a/x.docx and b/x.md, get x.json, x-2.json and so
// on in argument order.
func outputNames(paths []string) []string {
	names := make([]string, len(paths))
	taken := map[string]bool{}
	for i, path := range paths {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		name := stem + ".json"
		for n := 2; taken[name]; n++ {
			name = stem + "-" + strconv.Itoa(n) + ".json"
		}
		taken[name] = true
		names[i] = name
	}
	return names
}

func importFile(eng *layout.Engine, path, dstPath string, opts parser.Options) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	imported, err := parser.Import(f, filepath.Base(path), opts)
	if err != nil {
		return err
	}
	res := eng.ApplyWithRules(imported.Document.Content, imported.Fields)

	result := importResult{
		Source: path,
		Tree:   doctree.Document{Title: imported.Document.Title, Content: res.Tree},
		Fields: res.Fields,
		Report: imported.Report,
		Issues: check.Check(res.Tree),
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return err
	}
	if err := writeJSON(dst, result); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
