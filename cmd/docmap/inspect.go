package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docmap/internal/export"
	"github.com/dgallion1/docmap/internal/treeview"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <export.html>",
	Short: "Print the mind map and view state embedded in an exported file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	snap, err := export.ReadState(f)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	printSnapshot(cmd.OutOrStdout(), snap)
	return nil
}

func printSnapshot(w io.Writer, snap export.Snapshot) {
	doc := snap.Document()
	v := treeview.New(doc, snap.State.Orientation)
	v.Restore(snap.State)
	cam := v.Camera()

	fmt.Fprintf(w, "Title:       %s\n", doc.Title)
	fmt.Fprintf(w, "Nodes:       %d\n", doc.Count())
	fmt.Fprintf(w, "Orientation: %s\n", v.Orientation())
	fmt.Fprintf(w, "Camera:      x=%g y=%g scale=%g\n", cam.X, cam.Y, cam.Scale)
	fmt.Fprintf(w, "Open:        %s\n\n", strings.Join(v.OpenIDs(), ", "))

	for _, row := range v.Rows() {
		marker := " "
		switch row.Indicator {
		case treeview.Collapsed:
			marker = "+"
		case treeview.Expanded:
			marker = "-"
		}
		fmt.Fprintf(w, "%s%s %s\n", strings.Repeat("  ", row.Depth), marker, row.Label)
	}
}
