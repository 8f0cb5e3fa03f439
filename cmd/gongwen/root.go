package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dgallion1/gongwen/internal/config"
	"github.com/dgallion1/gongwen/internal/doctree"
	"github.com/dgallion1/gongwen/internal/layout"
)

var policyFile string

var rootCmd = &cobra.Command{
	Use:   "gongwen",
	Short: "Format Chinese official documents",
	Long: `gongwen normalizes official-document bodies: it lifts the title and
addressee, infers heading levels from their numbering, fixes punctuation and
renumbering, and exports GB/T 9704 DOCX files.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&policyFile, "policy", "", "Layout policy YAML file (default $LAYOUT_POLICY_FILE)")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// engine builds the layout engine from --policy or LAYOUT_POLICY_FILE.
func engine() (*layout.Engine, error) {
	path := policyFile
	if path == "" {
		path = os.Getenv("LAYOUT_POLICY_FILE")
	}
	policy, err := config.LoadPolicy(path)
	if err != nil {
		return nil, err
	}
	return policy.Engine(), nil
}

// documentFile is the on-disk shape shared by layout, check and export.
type documentFile struct {
	Tree   doctree.Document         `json:"tree"`
	Fields doctree.StructuredFields `json:"structuredFields"`
}

func readDocument(path string) (*documentFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc := &documentFile{Fields: doctree.NewStructuredFields()}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// output opens path for writing, or returns stdout when path is empty.
func output(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, f.Close, nil
}
