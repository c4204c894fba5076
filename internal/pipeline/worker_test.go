package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/dgallion1/docmap/internal/config"
	"github.com/dgallion1/docmap/internal/extract"
	"github.com/dgallion1/docmap/internal/flashcard"
	"github.com/dgallion1/docmap/internal/mindmap"
	"github.com/dgallion1/docmap/internal/session"
	"github.com/dgallion1/docmap/internal/treeview"
)

const (
	testSecret = "0123456789abcdef0123456789abcdef"
	catsMap    = `{"title":"Cats","root":{"id":"root","label":"Cats","children":[{"id":"diet","label":"Diet"},{"id":"sleep","label":"Sleep"}]}}`
	catsCards  = `[{"question":"What do cats eat?","answer":"Meat."},{"question":"How long do cats sleep?","answer":"Up to 16 hours."}]`
)

type fakeGen struct {
	mu    sync.Mutex
	calls []extract.Request
	fn    func(n int, req extract.Request) (string, error)
}

func (f *fakeGen) Generate(_ context.Context, req extract.Request) (string, error) {
	f.mu.Lock()
	n := len(f.calls)
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	return f.fn(n, req)
}

func (f *fakeGen) Name() string  { return "fake" }
func (f *fakeGen) Model() string { return "fake-1" }

func (f *fakeGen) Calls() []extract.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]extract.Request(nil), f.calls...)
}

func reply(out string) *fakeGen {
	return &fakeGen{fn: func(int, extract.Request) (string, error) { return out, nil }}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.Config {
	return config.Config{
		WorkerCount:           1,
		MaxQueueSize:          4,
		MaxConcurrentGenerate: 2,
		MindmapChildren:       4,
		FlashcardCount:        5,
		JobTTL:                time.Hour,
	}
}

func newTestWorker(gen extract.Generator, cfg config.Config) *Worker {
	w := NewWorker(gen, nil, cfg, discardLogger())
	w.backoff = func(int) time.Duration { return 0 }
	return w
}

func newTestSession(t *testing.T) (*session.Store, *session.Session) {
	t.Helper()
	st, err := session.NewStore(testSecret, time.Hour)
	require.NoError(t, err)
	sess, _, err := st.Init("ada@example.com")
	require.NoError(t, err)
	return st, sess
}

func rootLabel(t *testing.T, sess *session.Session) string {
	t.Helper()
	var label string
	require.NoError(t, sess.WithView(func(v *treeview.View, _ *treeview.Gestures) error {
		label = v.Document().Root.Label
		return nil
	}))
	return label
}

func TestProcessMindmap(t *testing.T) {
	gen := reply("Here is your map:\n```json\n" + catsMap + "\n```")
	_, sess := newTestSession(t)
	require.NoError(t, sess.Begin(session.ActionMindmap))

	job := NewMindmapJob(sess, "# Cats\n- diet\n- sleep", 3)
	newTestWorker(gen, testConfig()).Process(context.Background(), job)

	snap := job.Snapshot()
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, "Cats", snap.Title)
	assert.Nil(t, snap.Error)
	assert.False(t, sess.InFlight(session.ActionMindmap))
	assert.Equal(t, "Cats", rootLabel(t, sess))

	calls := gen.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, extract.JSONObject, calls[0].JSON)
	assert.Contains(t, calls[0].Prompt, "At most 3 levels")
	assert.Contains(t, calls[0].Prompt, "# Cats")
}

func TestProcessMindmap_FailureKeepsPreviousDocument(t *testing.T) {
	tests := []struct {
		name string
		out  string
		code string
	}{
		{"malformed", "I could not do that.", "malformed_generation"},
		{"no label", `{"root":{"label":"  ","children":[]}}`, "invalid_generation"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, sess := newTestSession(t)
			prev, err := mindmap.Parse(`{"root":{"label":"Previous"}}`, mindmap.DefaultLimits())
			require.NoError(t, err)
			require.NoError(t, sess.SetDocument(prev))

			job := NewMindmapJob(sess, "summary", 3)
			newTestWorker(reply(tc.out), testConfig()).Process(context.Background(), job)

			snap := job.Snapshot()
			assert.Equal(t, StatusFailed, snap.Status)
			require.NotNil(t, snap.Error)
			assert.Equal(t, tc.code, snap.Error.Code)
			assert.True(t, snap.Error.Retryable)
			assert.Equal(t, "Previous", rootLabel(t, sess))
		})
	}
}

func TestProcessMindmap_DepthLimitFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.MindmapMaxDepth = 1
	cfg.MindmapMaxNodes = 100
	deep := `{"root":{"label":"A","children":[{"label":"B","children":[{"label":"C"}]}]}}`

	_, sess := newTestSession(t)
	job := NewMindmapJob(sess, "summary", 1)
	newTestWorker(reply(deep), cfg).Process(context.Background(), job)

	snap := job.Snapshot()
	require.NotNil(t, snap.Error)
	assert.Equal(t, "invalid_generation", snap.Error.Code)
}

func TestProcessFlashcards(t *testing.T) {
	gen := reply(catsCards)
	_, sess := newTestSession(t)
	require.NoError(t, sess.Begin(session.ActionFlashcards))

	job := NewFlashcardJob(sess, "# Cats")
	newTestWorker(gen, testConfig()).Process(context.Background(), job)

	assert.Equal(t, StatusCompleted, job.Snapshot().Status)
	assert.False(t, sess.InFlight(session.ActionFlashcards))
	require.NoError(t, sess.WithDeck(func(d *flashcard.Deck) error {
		assert.Equal(t, 2, d.Len())
		assert.False(t, d.ShowingAnswer())
		return nil
	}))
	assert.Contains(t, gen.Calls()[0].Prompt, "Write 5 flashcards")
	assert.Equal(t, extract.JSONArray, gen.Calls()[0].JSON)
}

func TestProcessFlashcards_EmptyDeck(t *testing.T) {
	_, sess := newTestSession(t)
	job := NewFlashcardJob(sess, "# Cats")
	newTestWorker(reply(`[{"question":" ","answer":""}]`), testConfig()).Process(context.Background(), job)

	snap := job.Snapshot()
	require.NotNil(t, snap.Error)
	assert.Equal(t, "empty_deck", snap.Error.Code)
	assert.ErrorIs(t, sess.WithDeck(func(*flashcard.Deck) error { return nil }), session.ErrNoDeck)
}

func TestGenerate_RetriesTransientErrors(t *testing.T) {
	gen := &fakeGen{fn: func(n int, _ extract.Request) (string, error) {
		if n < 2 {
			return "", &extract.RetryableError{StatusCode: http.StatusTooManyRequests, Message: "slow down"}
		}
		return catsMap, nil
	}}
	_, sess := newTestSession(t)
	job := NewMindmapJob(sess, "summary", 3)
	newTestWorker(gen, testConfig()).Process(context.Background(), job)

	assert.Equal(t, StatusCompleted, job.Snapshot().Status)
	assert.Len(t, gen.Calls(), 3)
}

func TestGenerate_ExhaustedRetriesAreUnavailable(t *testing.T) {
	gen := &fakeGen{fn: func(int, extract.Request) (string, error) {
		return "", &extract.RetryableError{StatusCode: http.StatusServiceUnavailable, Message: "overloaded"}
	}}
	_, sess := newTestSession(t)
	job := NewMindmapJob(sess, "summary", 3)
	newTestWorker(gen, testConfig()).Process(context.Background(), job)

	snap := job.Snapshot()
	require.NotNil(t, snap.Error)
	assert.Equal(t, "generator_unavailable", snap.Error.Code)
	assert.Equal(t, "overloaded", snap.Error.Message)
	assert.Len(t, gen.Calls(), MaxRetries)
}

func TestGenerate_PermanentErrorNotRetried(t *testing.T) {
	gen := &fakeGen{fn: func(int, extract.Request) (string, error) {
		return "", &extract.GeneratorUnavailableError{Provider: "fake", Message: "invalid x-api-key"}
	}}
	_, sess := newTestSession(t)
	job := NewFlashcardJob(sess, "summary")
	newTestWorker(gen, testConfig()).Process(context.Background(), job)

	snap := job.Snapshot()
	require.NotNil(t, snap.Error)
	assert.Equal(t, "invalid x-api-key", snap.Error.Message)
	assert.Len(t, gen.Calls(), 1)
}

func TestProcessSummary_TextFile(t *testing.T) {
	gen := reply("# Cats\n\n- Cats sleep a lot.")
	_, sess := newTestSession(t)
	require.NoError(t, sess.Begin(session.ActionSummary))

	data := []byte("Cats sleep for most of the day.\n\nThey hunt at dusk.")
	job := NewSummaryJob(sess, "cats.txt", data)
	w := newTestWorker(gen, testConfig())
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, "Cats", snap.Title)
	assert.Equal(t, Progress{TotalParts: 1, PartsDone: 1}, snap.Progress)
	assert.False(t, sess.InFlight(session.ActionSummary))

	title, md, err := sess.Summary()
	require.NoError(t, err)
	assert.Equal(t, "Cats", title)
	assert.Equal(t, "# Cats\n\n- Cats sleep a lot.", md)
	assert.Contains(t, gen.Calls()[0].Prompt, "They hunt at dusk.")

	again := NewSummaryJob(sess, "cats.txt", data)
	w.Process(context.Background(), again)
	assert.Equal(t, StatusDupSkipped, again.Snapshot().Status)
	assert.Len(t, gen.Calls(), 1)
}

func TestProcessSummary_LongDocumentIsChunked(t *testing.T) {
	gen := &fakeGen{fn: func(_ int, req extract.Request) (string, error) {
		if strings.Contains(req.Prompt, "--- Part 1 ---") {
			return "# Combined\n- everything", nil
		}
		return "- part", nil
	}}
	cfg := testConfig()
	cfg.SummaryChunkSize = 50

	var paras []string
	for range 6 {
		paras = append(paras, strings.TrimSpace(strings.Repeat("Cats are small furry hunters. ", 6)))
	}
	_, sess := newTestSession(t)
	job := NewSummaryJob(sess, "cats.txt", []byte(strings.Join(paras, "\n\n")))
	newTestWorker(gen, cfg).Process(context.Background(), job)

	snap := job.Snapshot()
	require.Equal(t, StatusCompleted, snap.Status, "%+v", snap.Error)
	assert.GreaterOrEqual(t, snap.Progress.TotalParts, 3)
	assert.Equal(t, snap.Progress.TotalParts, snap.Progress.PartsDone)
	assert.Len(t, gen.Calls(), snap.Progress.TotalParts)

	_, md, err := sess.Summary()
	require.NoError(t, err)
	assert.Equal(t, "# Combined\n- everything", md)
}

func TestProcessSummary_ImageIsAttached(t *testing.T) {
	gen := reply("# Receipt\n- total 12.50")
	_, sess := newTestSession(t)

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	job := NewSummaryJob(sess, "receipt.png", png)
	newTestWorker(gen, testConfig()).Process(context.Background(), job)

	require.Equal(t, StatusCompleted, job.Snapshot().Status)
	calls := gen.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Attachments, 1)
	assert.Equal(t, "image/png", calls[0].Attachments[0].MediaType)
}

func TestProcessSummary_UnsupportedFile(t *testing.T) {
	gen := reply("unused")
	_, sess := newTestSession(t)
	job := NewSummaryJob(sess, "program.exe", []byte("MZ"))
	newTestWorker(gen, testConfig()).Process(context.Background(), job)

	snap := job.Snapshot()
	require.NotNil(t, snap.Error)
	assert.Equal(t, "unsupported_file", snap.Error.Code)
	assert.Empty(t, gen.Calls())
}

func TestProcess_LateResultForClosedSessionIsDiscarded(t *testing.T) {
	st, sess := newTestSession(t)
	require.NoError(t, sess.Begin(session.ActionMindmap))
	require.NoError(t, st.Teardown(sess.ID))

	job := NewMindmapJob(sess, "summary", 3)
	newTestWorker(reply(catsMap), testConfig()).Process(context.Background(), job)

	snap := job.Snapshot()
	assert.Equal(t, StatusDiscarded, snap.Status)
	assert.Nil(t, snap.Error)
}

func TestOrchestrator_RunsSubmittedJob(t *testing.T) {
	st, sess := newTestSession(t)
	o := NewOrchestrator(testConfig(), reply(catsMap), st, discardLogger())
	o.Start(context.Background())
	defer o.Stop()

	require.NoError(t, sess.Begin(session.ActionMindmap))
	job := NewMindmapJob(sess, "summary", 3)
	require.NoError(t, o.Submit(job))

	require.Eventually(t, func() bool {
		return o.GetJob(job.ID).Snapshot().Status.Done()
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, StatusCompleted, job.Snapshot().Status)
	assert.False(t, sess.InFlight(session.ActionMindmap))
}

func TestOrchestrator_QueueFullReleasesSession(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQueueSize = 1
	st, first := newTestSession(t)
	second, _, err := st.Init("grace@example.com")
	require.NoError(t, err)

	o := NewOrchestrator(cfg, reply(catsMap), st, discardLogger())

	require.NoError(t, first.Begin(session.ActionMindmap))
	require.NoError(t, o.Submit(NewMindmapJob(first, "summary", 3)))

	require.NoError(t, second.Begin(session.ActionMindmap))
	rejected := NewMindmapJob(second, "summary", 3)
	err = o.Submit(rejected)
	assert.True(t, errors.Is(err, ErrQueueFull))
	assert.False(t, second.InFlight(session.ActionMindmap))
	assert.Equal(t, "queue_full", rejected.Snapshot().Error.Code)
	assert.Equal(t, 1, o.QueueDepth())

	o.Stop()
	require.NoError(t, second.Begin(session.ActionMindmap))
	assert.ErrorIs(t, o.Submit(NewMindmapJob(second, "summary", 3)), ErrQueueFull)
}

func TestNewLimiter(t *testing.T) {
	l := NewLimiter(60, 4)
	assert.InDelta(t, 1.0, float64(l.Limit()), 1e-9)
	assert.Equal(t, 4, l.Burst())

	assert.Equal(t, rate.Inf, NewLimiter(0, 4).Limit())
}

func TestSummaryTitle(t *testing.T) {
	assert.Equal(t, "Cats", summaryTitle("intro\n# Cats\n## Diet", "fallback"))
	assert.Equal(t, "fallback", summaryTitle("## Only a subsection", "fallback"))
	assert.Equal(t, "fallback", summaryTitle("#   \n- point", "fallback"))
}
