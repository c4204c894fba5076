package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docmap/internal/export"
	"github.com/dgallion1/docmap/internal/mindmap"
	"github.com/dgallion1/docmap/internal/pipeline"
	"github.com/dgallion1/docmap/internal/treeview"
)

var (
	mindmapOut         string
	mindmapOrientation string
	mindmapExpand      bool
	mindmapPDF         bool
)

var mindmapCmd = &cobra.Command{
	Use:   "mindmap <file>",
	Short: "Generate a mind map and export it as offline HTML",
	Args:  cobra.ExactArgs(1),
	RunE:  runMindmap,
}

func init() {
	mindmapCmd.Flags().StringVarP(&mindmapOut, "out", "o", ".", "output directory")
	mindmapCmd.Flags().StringVar(&mindmapOrientation, "orientation", string(treeview.LeftToRight), "left-to-right or top-down")
	mindmapCmd.Flags().BoolVar(&mindmapExpand, "expand-all", false, "export with every branch expanded")
	mindmapCmd.Flags().BoolVar(&mindmapPDF, "pdf", false, "also write a PDF outline")
	rootCmd.AddCommand(mindmapCmd)
}

func runMindmap(cmd *cobra.Command, args []string) error {
	orientation, err := treeview.ParseOrientation(mindmapOrientation)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	r, err := newRunner(ctx)
	if err != nil {
		return err
	}
	_, md, err := r.summarize(ctx, args[0])
	if err != nil {
		return err
	}
	if err := r.run(ctx, pipeline.NewMindmapJob(r.sess, md, r.cfg.MindmapLevels)); err != nil {
		return fmt.Errorf("mind map: %w", err)
	}

	var (
		doc   *mindmap.Document
		state treeview.State
	)
	if err := r.sess.WithView(func(v *treeview.View, _ *treeview.Gestures) error {
		v.SetOrientation(orientation)
		if mindmapExpand {
			v.ExpandAll()
		}
		doc, state = v.Document(), v.Snapshot()
		return nil
	}); err != nil {
		return err
	}

	if err := os.MkdirAll(mindmapOut, 0o755); err != nil {
		return err
	}
	path, err := writeExport(mindmapOut, export.Filename(doc.Title, "html"), func(w io.Writer) error {
		return export.HTML(w, doc, state)
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)

	if mindmapPDF {
		path, err := writeExport(mindmapOut, export.Filename(doc.Title, "pdf"), func(w io.Writer) error {
			return export.PDF(w, doc, state)
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}

func writeExport(dir, name string, render func(io.Writer) error) (string, error) {
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := render(f); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, f.Close()
}
