package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docmap/internal/export"
	"github.com/dgallion1/docmap/internal/flashcard"
	"github.com/dgallion1/docmap/internal/pipeline"
)

var flashcardsPDF string

var flashcardsCmd = &cobra.Command{
	Use:   "flashcards <file>",
	Short: "Generate a flashcard deck from a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runFlashcards,
}

func init() {
	flashcardsCmd.Flags().StringVar(&flashcardsPDF, "pdf", "", "write the deck as a PDF into this directory")
	rootCmd.AddCommand(flashcardsCmd)
}

func runFlashcards(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	r, err := newRunner(ctx)
	if err != nil {
		return err
	}
	title, md, err := r.summarize(ctx, args[0])
	if err != nil {
		return err
	}
	if err := r.run(ctx, pipeline.NewFlashcardJob(r.sess, md)); err != nil {
		return fmt.Errorf("flashcards: %w", err)
	}

	var cards []flashcard.Card
	if err := r.sess.WithDeck(func(d *flashcard.Deck) error {
		cards = d.Shuffled()
		return nil
	}); err != nil {
		return err
	}
	printCards(cmd.OutOrStdout(), cards)

	if flashcardsPDF == "" {
		return nil
	}
	path, err := writeExport(flashcardsPDF, export.Filename(title+" flashcards", "pdf"), func(w io.Writer) error {
		return export.DeckPDF(w, title, cards)
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func printCards(w io.Writer, cards []flashcard.Card) {
	for i, c := range cards {
		fmt.Fprintf(w, "%d. %s\n   %s\n\n", i+1, c.Question, c.Answer)
	}
}
