package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dgallion1/docmap/internal/chunker"
	"github.com/dgallion1/docmap/internal/config"
	"github.com/dgallion1/docmap/internal/extract"
	"github.com/dgallion1/docmap/internal/flashcard"
	"github.com/dgallion1/docmap/internal/mindmap"
	"github.com/dgallion1/docmap/internal/parser"
	"github.com/dgallion1/docmap/internal/session"
)

const maxLoggedRaw = 1000

// errDuplicate ends a summary job whose upload matches the current summary.
var errDuplicate = errors.New("document already summarized")

// Worker runs one job at a time against the content generator.
type Worker struct {
	gen     extract.Generator
	limiter *rate.Limiter
	log     *slog.Logger

	chunkCfg  chunker.Config
	parseOpts parser.Options
	limits    mindmap.Limits
	children  int
	cardCount int

	maxConcurrentGenerate int
	backoff               func(attempt int) time.Duration
}

// NewWorker builds a worker from cfg. limiter may be nil.
func NewWorker(gen extract.Generator, limiter *rate.Limiter, cfg config.Config, log *slog.Logger) *Worker {
	maxConcurrent := cfg.MaxConcurrentGenerate
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Worker{
		gen:     gen,
		limiter: limiter,
		log:     log,
		chunkCfg: chunker.Config{
			ChunkSize:    cfg.SummaryChunkSize,
			ChunkOverlap: cfg.SummaryChunkOverlap,
		},
		parseOpts:             parser.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext},
		limits:                mindmap.Limits{MaxDepth: cfg.MindmapMaxDepth, MaxNodes: cfg.MindmapMaxNodes},
		children:              cfg.MindmapChildren,
		cardCount:             cfg.FlashcardCount,
		maxConcurrentGenerate: maxConcurrent,
		backoff:               Backoff,
	}
}

// Process runs job to completion. The result is written to the job's
// session only on success; a failure leaves the session's previous summary,
// map and deck in place. The session's in-flight flag is released before
// the job reports a terminal status.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "session_id", job.SessionID, "kind", job.Kind)

	var err error
	switch job.Kind {
	case KindSummary:
		err = w.summarize(ctx, job, log)
	case KindMindmap:
		err = w.buildMindmap(ctx, job, log)
	case KindFlashcards:
		err = w.buildDeck(ctx, job, log)
	default:
		err = fmt.Errorf("unknown job kind %q", job.Kind)
	}
	job.sess.End(session.Action(job.Kind))

	switch {
	case errors.Is(err, errDuplicate):
		log.Info("same document already summarized, skipping")
		job.SetStatus(StatusDupSkipped, "dedup")
	case errors.Is(err, session.ErrClosed):
		log.Info("session closed, result discarded")
		job.SetStatus(StatusDiscarded, "discarded")
	case err != nil:
		log.Error("job failed", "error", err)
		job.Fail(err)
	default:
		job.SetStatus(StatusCompleted, "done")
		log.Info("job completed")
	}
}

func (w *Worker) summarize(ctx context.Context, job *Job, log *slog.Logger) error {
	job.SetStatus(StatusPreparing, "parsing")
	hash := ContentHashHex(job.fileData)
	if job.sess.SummaryHash() == hash {
		if title, _, err := job.sess.Summary(); err == nil {
			job.SetTitle(title)
			return errDuplicate
		}
	}

	prep, err := parser.Prepare(job.fileData, job.Filename, w.parseOpts)
	if err != nil {
		return fmt.Errorf("prepare %s: %w", job.Filename, err)
	}

	job.SetStatus(StatusGenerating, "summarizing")
	var md string
	switch {
	case prep.Attachment != nil:
		log.Info("summarizing attachment", "media_type", prep.Attachment.MediaType, "bytes", len(prep.Attachment.Data))
		job.SetTotalParts(1)
		md, err = w.generate(ctx, log, extract.Request{
			Prompt:      extract.AttachmentSummaryPrompt(prep.Title),
			Attachments: []extract.Attachment{*prep.Attachment},
		})
		job.IncrPartsDone()
	case !chunker.NeedsSplit(prep.Outline, w.chunkCfg):
		job.SetTotalParts(1)
		md, err = w.generate(ctx, log, extract.Request{
			Prompt: extract.SummaryPrompt(prep.Title, nil, prep.Outline.PlainText()),
		})
		job.IncrPartsDone()
	default:
		md, err = w.summarizeChunks(ctx, job, log, prep)
	}
	if err != nil {
		return err
	}

	md = strings.TrimSpace(md)
	if md == "" {
		return &extract.MalformedGenerationError{Reason: "empty summary"}
	}
	title := summaryTitle(md, prep.Title)
	job.SetTitle(title)
	return job.sess.SetSummary(title, md, hash)
}

// summarizeChunks summarizes each chunk with bounded concurrency, then
// merges the partial summaries in one more call. Any failed part fails the
// whole summary.
func (w *Worker) summarizeChunks(ctx context.Context, job *Job, log *slog.Logger, prep *parser.Prepared) (string, error) {
	chunks := chunker.Chunk(prep.Outline, w.chunkCfg)
	if len(chunks) == 0 {
		return "", parser.ErrNoText
	}
	job.SetTotalParts(len(chunks) + 1)
	log.Info("chunked document", "chunks", len(chunks))

	type partResult struct {
		text string
		err  error
		idx  int
	}
	results := make(chan partResult, len(chunks))
	sem := make(chan struct{}, w.maxConcurrentGenerate)

	for i, chunk := range chunks {
		sem <- struct{}{}
		go func(i int, text string, breadcrumb []string) {
			defer func() { <-sem }()
			out, err := w.generate(ctx, log, extract.Request{
				Prompt: extract.SummaryPrompt(prep.Title, breadcrumb, text),
			})
			results <- partResult{text: out, err: err, idx: i}
		}(i, chunk.Text, chunk.Breadcrumb)
	}

	parts := make([]string, len(chunks))
	var firstErr error
	for range chunks {
		r := <-results
		job.IncrPartsDone()
		if r.err != nil {
			log.Error("part summary failed", "chunk", r.idx, "error", r.err)
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		parts[r.idx] = strings.TrimSpace(r.text)
	}
	if firstErr != nil {
		return "", firstErr
	}

	job.SetStatus(StatusCombining, "combining")
	out, err := w.generate(ctx, log, extract.Request{Prompt: extract.CombinePrompt(prep.Title, parts)})
	job.IncrPartsDone()
	return out, err
}

func (w *Worker) buildMindmap(ctx context.Context, job *Job, log *slog.Logger) error {
	job.SetStatus(StatusGenerating, "generating")
	raw, err := w.generate(ctx, log, extract.Request{
		Prompt: extract.MindmapPrompt(job.input, job.levels, w.children),
		JSON:   extract.JSONObject,
	})
	if err != nil {
		return err
	}

	job.SetStatus(StatusValidating, "validating")
	doc, err := mindmap.Parse(raw, w.limits)
	if err != nil {
		log.Warn("unusable mind map output", "error", err, "raw", extract.Truncate(raw, maxLoggedRaw))
		return err
	}
	log.Info("mind map built", "nodes", doc.Count())
	job.SetTitle(doc.Title)
	return job.sess.SetDocument(doc)
}

func (w *Worker) buildDeck(ctx context.Context, job *Job, log *slog.Logger) error {
	job.SetStatus(StatusGenerating, "generating")
	raw, err := w.generate(ctx, log, extract.Request{
		Prompt: extract.FlashcardPrompt(job.input, w.cardCount),
		JSON:   extract.JSONArray,
	})
	if err != nil {
		return err
	}

	job.SetStatus(StatusValidating, "validating")
	cards, err := flashcard.Parse(raw)
	if err != nil {
		log.Warn("unusable flashcard output", "error", err, "raw", extract.Truncate(raw, maxLoggedRaw))
		return err
	}
	deck, err := flashcard.New(cards, nil)
	if err != nil {
		return err
	}
	log.Info("deck built", "cards", deck.Len())
	return job.sess.SetDeck(deck)
}

// generate calls the generator under the rate limit, retrying transient
// failures. A failure that survives the retries is reported as the
// generator being unavailable.
func (w *Worker) generate(ctx context.Context, log *slog.Logger, req extract.Request) (string, error) {
	var lastErr error
	for attempt := range MaxRetries {
		if w.limiter != nil {
			if err := w.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}
		out, err := w.gen.Generate(ctx, req)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !IsRetryable(err) || attempt == MaxRetries-1 {
			break
		}
		delay := RetryDelay(err, attempt, w.backoff)
		log.Warn("retryable generator error", "attempt", attempt, "delay", delay, "error", err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", asUnavailable(w.gen.Name(), lastErr)
}

func asUnavailable(provider string, err error) error {
	var unavailableErr *extract.GeneratorUnavailableError
	if errors.As(err, &unavailableErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	msg := err.Error()
	var retryErr *extract.RetryableError
	if errors.As(err, &retryErr) {
		msg = retryErr.Message
	}
	return &extract.GeneratorUnavailableError{Provider: provider, Message: msg, Err: err}
}

// summaryTitle returns the first level-1 heading of md, or fallback.
func summaryTitle(md, fallback string) string {
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			if t := strings.TrimSpace(strings.TrimPrefix(line, "# ")); t != "" {
				return t
			}
		}
	}
	return fallback
}
