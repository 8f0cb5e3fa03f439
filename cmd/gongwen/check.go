package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/gongwen/internal/check"
)

var checkJSON bool

var checkCmd = &cobra.Command{
	Use:   "check <file.json>",
	Short: "Report layout and heading problems",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Output issues as JSON")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}
	issues := check.Check(doc.Tree.Content)

	out := cmd.OutOrStdout()
	if checkJSON {
		return writeJSON(out, map[string]any{"issues": issues})
	}
	if len(issues) == 0 {
		fmt.Fprintln(out, "No issues found.")
		return nil
	}
	for _, is := range issues {
		fmt.Fprintf(out, "%-8s %-14s %-8s %s\n", is.Path, is.Code, is.Level, is.Message)
	}
	fmt.Fprintf(out, "\nIssues: %d\n", len(issues))
	return nil
}
