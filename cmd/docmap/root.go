package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docmap/internal/config"
	"github.com/dgallion1/docmap/internal/extract"
	"github.com/dgallion1/docmap/internal/pipeline"
	"github.com/dgallion1/docmap/internal/session"
)

var (
	provider string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "docmap",
	Short: "Summarize documents into mind maps and flashcards",
	Long: `docmap sends a document to the configured content generator, then turns
the summary into an interactive mind map (exported as a single offline HTML
file) or a flashcard deck. Generator settings come from the same environment
variables as the server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "content generator: anthropic, gemini or openai (default from GENERATOR_PROVIDER)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline progress to stderr")
}

// runner drives pipeline jobs synchronously against a throwaway session.
type runner struct {
	cfg    config.Config
	worker *pipeline.Worker
	sess   *session.Session
}

func newRunner(ctx context.Context) (*runner, error) {
	cfg := config.Load()
	if provider != "" {
		cfg.GeneratorProvider = strings.ToLower(provider)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	gen, err := extract.NewGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}

	secret := make([]byte, session.MinSecretLength)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("session secret: %w", err)
	}
	store, err := session.NewStore(hex.EncodeToString(secret), cfg.SessionTTL)
	if err != nil {
		return nil, err
	}
	sess, _, err := store.Init("")
	if err != nil {
		return nil, err
	}
	// Depth gating applies to hosted sessions only.
	sess.MarkPaid()

	limiter := pipeline.NewLimiter(cfg.GenerateRPM, cfg.MaxConcurrentGenerate)
	return &runner{
		cfg:    cfg,
		worker: pipeline.NewWorker(gen, limiter, cfg, log),
		sess:   sess,
	}, nil
}

// run processes job and converts a failed job into an error.
func (r *runner) run(ctx context.Context, job *pipeline.Job) error {
	if err := r.sess.Begin(session.Action(job.Kind)); err != nil {
		return err
	}
	r.worker.Process(ctx, job)

	snap := job.Snapshot()
	if snap.Error != nil {
		return fmt.Errorf("%s: %s", snap.Error.Code, snap.Error.Message)
	}
	switch snap.Status {
	case pipeline.StatusCompleted, pipeline.StatusDupSkipped:
		return nil
	}
	return fmt.Errorf("%s job ended as %s", snap.Kind, snap.Status)
}

// summarize runs a summary job for the file at path.
func (r *runner) summarize(ctx context.Context, path string) (title, markdown string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	if err := r.run(ctx, pipeline.NewSummaryJob(r.sess, filepath.Base(path), data)); err != nil {
		return "", "", fmt.Errorf("summarize %s: %w", path, err)
	}
	return r.sess.Summary()
}
