package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/gongwen/internal/textnorm"
)

var docnoCmd = &cobra.Command{
	Use:   "docno <text>",
	Short: "Normalize the year bracket of a document number",
	Long:  `Rewrites 国办发(2024)3号 and similar forms to 国办发〔2024〕3号.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), textnorm.NormalizeDocNoBracket(strings.Join(args, " ")))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(docnoCmd)
}
