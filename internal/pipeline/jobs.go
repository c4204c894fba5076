package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docmap/internal/session"
)

// Kind names the generation action a job performs.
type Kind string

const (
	KindSummary    Kind = Kind(session.ActionSummary)
	KindMindmap    Kind = Kind(session.ActionMindmap)
	KindFlashcards Kind = Kind(session.ActionFlashcards)
)

// JobStatus represents the state of a generation job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusPreparing  JobStatus = "preparing"
	StatusGenerating JobStatus = "generating"
	StatusCombining  JobStatus = "combining"
	StatusValidating JobStatus = "validating"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusDupSkipped JobStatus = "duplicate_skipped"
	StatusDiscarded  JobStatus = "discarded"
)

// Done reports whether s is terminal.
func (s JobStatus) Done() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusDupSkipped, StatusDiscarded:
		return true
	}
	return false
}

// Job tracks one generation action for one session.
type Job struct {
	mu sync.Mutex

	ID        string `json:"job_id"`
	SessionID string `json:"session_id"`
	Kind      Kind   `json:"kind"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename,omitempty"`
	Title    string    `json:"title,omitempty"`

	Progress Progress   `json:"progress"`
	Error    *ErrorInfo `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	sess     *session.Session
	fileData []byte
	input    string
	levels   int
}

// Progress counts generator calls for multi-part summaries.
type Progress struct {
	TotalParts int `json:"total_parts"`
	PartsDone  int `json:"parts_done"`
}

// NewJob creates a queued job bound to sess.
func NewJob(kind Kind, sess *session.Session) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		SessionID: sess.ID,
		Kind:      kind,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		sess:      sess,
	}
}

// NewSummaryJob carries an uploaded file to be summarized.
func NewSummaryJob(sess *session.Session, filename string, data []byte) *Job {
	j := NewJob(KindSummary, sess)
	j.Filename = filename
	j.fileData = data
	return j
}

// NewMindmapJob generates a map from summary with at most levels below the
// root requested in the prompt.
func NewMindmapJob(sess *session.Session, summary string, levels int) *Job {
	j := NewJob(KindMindmap, sess)
	j.input = summary
	j.levels = levels
	return j
}

// NewFlashcardJob generates a deck from summary.
func NewFlashcardJob(sess *session.Session, summary string) *Job {
	j := NewJob(KindFlashcards, sess)
	j.input = summary
	return j
}

// Session returns the session the job writes its result to.
func (j *Job) Session() *session.Session {
	return j.sess
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
	now  func() time.Time
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes finished jobs idle for longer than the TTL and returns how
// many were removed. Queued and running jobs are kept.
func (s *JobStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, job := range s.jobs {
		snap := job.Snapshot()
		if snap.Status.Done() && now.Sub(snap.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Fail marks the job failed with the user-facing classification of err. The
// phase it failed in is kept.
func (j *Job) Fail(err error) {
	info := Classify(err)
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusFailed
	j.Error = &info
	j.UpdatedAt = time.Now()
}

// SetTitle records the title of the generated result.
func (j *Job) SetTitle(title string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Title = title
	j.UpdatedAt = time.Now()
}

// SetTotalParts records how many generator calls a summary needs.
func (j *Job) SetTotalParts(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalParts = n
	j.UpdatedAt = time.Now()
}

// IncrPartsDone atomically increments completed parts.
func (j *Job) IncrPartsDone() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.PartsDone++
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string     `json:"job_id"`
	SessionID string     `json:"session_id"`
	Kind      Kind       `json:"kind"`
	Status    JobStatus  `json:"status"`
	Phase     string     `json:"phase"`
	Filename  string     `json:"filename,omitempty"`
	Title     string     `json:"title,omitempty"`
	Progress  Progress   `json:"progress"`
	Error     *ErrorInfo `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	var info *ErrorInfo
	if j.Error != nil {
		e := *j.Error
		info = &e
	}
	return JobSnapshot{
		ID:        j.ID,
		SessionID: j.SessionID,
		Kind:      j.Kind,
		Status:    j.Status,
		Phase:     j.Phase,
		Filename:  j.Filename,
		Title:     j.Title,
		Progress:  j.Progress,
		Error:     info,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
