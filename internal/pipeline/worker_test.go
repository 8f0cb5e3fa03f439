package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/gongwen/internal/config"
	"github.com/dgallion1/gongwen/internal/parser"
	"github.com/dgallion1/gongwen/internal/pathstore"
)

type memStore struct {
	mu       sync.Mutex
	docs     map[string]*pathstore.Document
	hashes   map[string]string
	failures int // SaveDocument fails this many times first
	failWith error
	saves    int
}

func newMemStore() *memStore {
	return &memStore{docs: map[string]*pathstore.Document{}, hashes: map[string]string{}}
}

func (m *memStore) SaveDocument(_ context.Context, doc *pathstore.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.failures > 0 {
		m.failures--
		return m.failWith
	}
	m.docs[doc.ID] = doc
	return nil
}

func (m *memStore) FindByHash(_ context.Context, hash string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.hashes[hash]
	return id, ok, nil
}

func (m *memStore) PutHash(_ context.Context, hash, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hashes[hash] = docID
	return nil
}

const noticeText = "关于开展安全检查的通知\n各区县教育局：\n一、总体要求\n做好检查工作。\n"

func testWorker(store Store) *Worker {
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	w := NewWorker(store, nil, log, NewDurationStats(time.Hour), parser.Options{})
	w.wait = func(int) time.Duration { return time.Millisecond }
	return w
}

func TestWorker_Process(t *testing.T) {
	store := newMemStore()
	w := testWorker(store)
	job := NewJob("notice.txt", "doc-1", []byte(noticeText))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (errors %v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Title != "关于开展安全检查的通知" {
		t.Errorf("expected lifted title, got %q", snap.Title)
	}
	if snap.Progress.Blocks != 2 || snap.Progress.Headings != 1 {
		t.Errorf("expected 2 blocks and 1 heading, got %d and %d", snap.Progress.Blocks, snap.Progress.Headings)
	}

	doc := store.docs["doc-1"]
	if doc == nil {
		t.Fatal("expected stored document")
	}
	if doc.Fields.MainTo != "各区县教育局：" {
		t.Errorf("expected addressee, got %q", doc.Fields.MainTo)
	}
	if doc.Report == nil || len(doc.Report.Notes) != 2 {
		t.Errorf("expected import report with notes, got %+v", doc.Report)
	}
	if store.hashes[job.ContentHash] != "doc-1" {
		t.Errorf("expected hash index entry for doc-1")
	}
	if job.FileData() != nil {
		t.Error("expected file data released after parsing")
	}
	if w.stats.Snapshot().Count != 1 {
		t.Error("expected one recorded duration")
	}
}

func TestWorker_Duplicate(t *testing.T) {
	store := newMemStore()
	w := testWorker(store)

	w.Process(context.Background(), NewJob("a.txt", "doc-1", []byte(noticeText)))
	dup := NewJob("b.txt", "doc-2", []byte(noticeText))
	w.Process(context.Background(), dup)

	if dup.Snapshot().Status != StatusDupSkipped {
		t.Errorf("expected duplicate_skipped, got %q", dup.Snapshot().Status)
	}
	if _, ok := store.docs["doc-2"]; ok {
		t.Error("expected duplicate not stored")
	}
}

func TestWorker_UnsupportedFormat(t *testing.T) {
	w := testWorker(newMemStore())
	job := NewJob("scan.tiff", "", []byte("x"))
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "parsing" {
		t.Errorf("expected failed in parsing, got %q/%q", snap.Status, snap.Phase)
	}
	if len(snap.Progress.Errors) != 1 {
		t.Errorf("expected the file-level error reported, got %v", snap.Progress.Errors)
	}
}

func TestWorker_RetriesTransientStoreErrors(t *testing.T) {
	store := newMemStore()
	store.failures = 2
	store.failWith = &pathstore.RetryableError{StatusCode: 503}
	w := testWorker(store)
	job := NewJob("notice.txt", "doc-1", []byte(noticeText))

	w.Process(context.Background(), job)

	if job.Snapshot().Status != StatusCompleted {
		t.Fatalf("expected completed after retries, got %q", job.Snapshot().Status)
	}
	if store.saves != 3 {
		t.Errorf("expected 3 save attempts, got %d", store.saves)
	}
}

func TestWorker_PermanentStoreError(t *testing.T) {
	store := newMemStore()
	store.failures = 5
	store.failWith = errors.New("status 400")
	w := testWorker(store)
	job := NewJob("notice.txt", "doc-1", []byte(noticeText))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "storing" {
		t.Errorf("expected failed in storing, got %q/%q", snap.Status, snap.Phase)
	}
	if store.saves != 1 {
		t.Errorf("expected a single attempt for a permanent error, got %d", store.saves)
	}
}

func TestWithRetry_GivesUp(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), func(int) time.Duration { return 0 }, nil, func() error {
		calls++
		return &pathstore.RetryableError{StatusCode: 429}
	})
	if !IsRetryable(err) {
		t.Errorf("expected the last retryable error, got %v", err)
	}
	if calls != MaxRetries {
		t.Errorf("expected %d calls, got %d", MaxRetries, calls)
	}
}

func TestBackoff_Bounds(t *testing.T) {
	for attempt := 0; attempt < 8; attempt++ {
		d := Backoff(attempt)
		base := time.Duration(1<<uint(attempt)) * time.Second
		if base > 30*time.Second {
			base = 30 * time.Second
		}
		if d < base || d >= base+base/2 {
			t.Errorf("attempt %d: expected backoff in [%s, %s), got %s", attempt, base, base+base/2, d)
		}
	}
}

func TestOrchestrator_SubmitAndProcess(t *testing.T) {
	store := newMemStore()
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	o := NewOrchestrator(testConfig(), store, nil, log)
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("notice.txt", "doc-9", []byte(noticeText))
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	// The duration sample is recorded just after the terminal status.
	for !job.Snapshot().Done() || o.Stats().Snapshot().Count == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("job did not finish, status %q", job.Snapshot().Status)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if o.GetJob(job.ID) != job {
		t.Error("expected job registered")
	}
	if job.Snapshot().Status != StatusCompleted {
		t.Errorf("expected completed, got %q", job.Snapshot().Status)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQueueSize = 1
	o := NewOrchestrator(cfg, newMemStore(), nil, slog.New(slog.NewJSONHandler(io.Discard, nil)))

	if err := o.Submit(NewJob("a.txt", "", nil)); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second := NewJob("b.txt", "", nil)
	if err := o.Submit(second); err == nil {
		t.Error("expected queue full error")
	}
	if second.Snapshot().Status != StatusFailed {
		t.Errorf("expected rejected job failed, got %q", second.Snapshot().Status)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected depth 1, got %d", o.QueueDepth())
	}
}

func testConfig() config.Config {
	return config.Config{WorkerCount: 2, MaxQueueSize: 10, JobTTL: time.Hour}
}
