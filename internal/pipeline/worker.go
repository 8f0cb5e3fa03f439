package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/gongwen/internal/check"
	"github.com/dgallion1/gongwen/internal/doctree"
	"github.com/dgallion1/gongwen/internal/layout"
	"github.com/dgallion1/gongwen/internal/parser"
	"github.com/dgallion1/gongwen/internal/pathstore"
)

// Store persists imported documents. *pathstore.Client implements it.
type Store interface {
	SaveDocument(ctx context.Context, doc *pathstore.Document) error
	FindByHash(ctx context.Context, hash string) (string, bool, error)
	PutHash(ctx context.Context, hash, docID string) error
}

// Worker processes a single import job.
type Worker struct {
	store  Store
	engine *layout.Engine
	log    *slog.Logger
	stats  *DurationStats
	opts   parser.Options

	// wait is the pause between store retries.
	wait func(attempt int) time.Duration
}

func NewWorker(store Store, engine *layout.Engine, log *slog.Logger, stats *DurationStats, opts parser.Options) *Worker {
	if engine == nil {
		engine = &layout.Engine{}
	}
	return &Worker{
		store:  store,
		engine: engine,
		log:    log,
		stats:  stats,
		opts:   opts,
		wait:   Backoff,
	}
}

// Process runs parse, layout, check and store for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)
	start := time.Now()
	defer func() {
		if w.stats != nil {
			w.stats.Record(time.Since(start).Milliseconds())
		}
	}()

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	imported, err := parser.Import(bytes.NewReader(job.FileData()), job.Filename, w.opts)
	if err != nil {
		log.Error("import failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	job.SetFileData(nil)

	job.ContentHash = ContentHashHex([]byte(flattenText(imported.Document.Content)))

	// Phase 1.5: Dedup check
	existing, exists, err := w.store.FindByHash(ctx, job.ContentHash)
	if err != nil {
		log.Warn("dedup check failed, proceeding", "error", err)
	} else if exists && existing != job.DocID {
		log.Info("duplicate document, skipping", "existing_doc_id", existing)
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	// Phase 2: Layout
	job.SetStatus(StatusLayingOut, "laying_out")
	fields := imported.Fields
	fields.TopicTemplateRules = job.Rules()
	res := w.engine.ApplyWithRules(imported.Document.Content, fields)
	title := res.Fields.Title
	if title == "" {
		title = imported.Document.Title
	}
	job.SetTitle(title)

	// Phase 3: Check
	job.SetStatus(StatusChecking, "checking")
	issues := check.Check(res.Tree)
	job.SetCounts(len(res.Tree), countHeadings(res.Tree), len(issues))
	log.Info("document laid out", "blocks", len(res.Tree), "issues", len(issues))

	// Phase 4: Store
	job.SetStatus(StatusStoring, "storing")
	report := imported.Report
	doc := &pathstore.Document{
		ID:        job.DocID,
		Filename:  job.Filename,
		Title:     title,
		Body:      res.Tree,
		Fields:    res.Fields,
		Issues:    issues,
		Report:    &report,
		UpdatedAt: time.Now().UTC(),
	}
	err = withRetry(ctx, w.wait, func(attempt int, err error) {
		log.Warn("retryable store error", "attempt", attempt, "error", err)
	}, func() error {
		return w.store.SaveDocument(ctx, doc)
	})
	if err != nil {
		log.Error("store failed", "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}

	if err := w.store.PutHash(ctx, job.ContentHash, job.DocID); err != nil {
		log.Error("hash index write failed", "error", err)
	}

	job.SetStatus(StatusCompleted, "done")
}

func countHeadings(blocks []doctree.Block) int {
	n := 0
	for _, b := range blocks {
		if b.Type == doctree.KindHeading {
			n++
		}
	}
	return n
}

// flattenText joins the text of all blocks for hashing.
func flattenText(blocks []doctree.Block) string {
	var sb strings.Builder
	for _, b := range blocks {
		var text string
		if b.Type == doctree.KindTable {
			for _, row := range b.Rows {
				for _, cell := range row.Cells {
					text += flattenText(cell.Content) + "\t"
				}
			}
		} else {
			text = b.Text()
		}
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
	}
	return sb.String()
}
