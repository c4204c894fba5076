package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docmap/internal/export"
)

var summaryHTML string

var summaryCmd = &cobra.Command{
	Use:   "summary <file>",
	Short: "Print a Markdown summary of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&summaryHTML, "html", "", "also write the summary as an HTML page to this path")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	r, err := newRunner(ctx)
	if err != nil {
		return err
	}
	title, md, err := r.summarize(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), md)

	if summaryHTML == "" {
		return nil
	}
	f, err := os.Create(summaryHTML)
	if err != nil {
		return err
	}
	if err := export.SummaryHTML(f, title, md); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
