package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/gongwen/internal/config"
	"github.com/dgallion1/gongwen/internal/doctree"
	"github.com/dgallion1/gongwen/internal/pathstore"
	"github.com/dgallion1/gongwen/internal/pipeline"
)

const testKey = "test-key"

// memStore backs both the pipeline and the document endpoints.
type memStore struct {
	mu     sync.Mutex
	docs   map[string]*pathstore.Document
	hashes map[string]string
}

func newMemStore() *memStore {
	return &memStore{docs: map[string]*pathstore.Document{}, hashes: map[string]string{}}
}

func (m *memStore) SaveDocument(_ context.Context, doc *pathstore.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc
	return nil
}

func (m *memStore) LoadDocument(_ context.Context, id string) (*pathstore.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[id], nil
}

func (m *memStore) DeleteDocument(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

func (m *memStore) ListDocuments(_ context.Context, limit int) ([]pathstore.DocumentSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []pathstore.DocumentSummary
	for _, d := range m.docs {
		if len(out) == limit {
			break
		}
		out = append(out, pathstore.DocumentSummary{ID: d.ID, Title: d.Title, UpdatedAt: d.UpdatedAt})
	}
	return out, nil
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

func newTestServer(t *testing.T) (*Server, *memStore) {
	t.Helper()
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	cfg := config.Config{
		GongwenAPIKey:  testKey,
		WorkerCount:    1,
		MaxQueueSize:   10,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Hour,
	}
	store := newMemStore()
	orch := pipeline.NewOrchestrator(cfg, store, nil, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, store, nil, log, cfg), store
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func noticeTree() doctree.Document {
	return doctree.Document{Content: []doctree.Block{
		doctree.NewParagraph("关于开展安全检查的通知", doctree.Attrs{}),
		doctree.NewParagraph("各区县教育局：", doctree.Attrs{}),
		doctree.NewParagraph("一、总体要求。", doctree.Attrs{}),
		doctree.NewParagraph("做好检查工作。", doctree.Attrs{}),
	}}
}

func TestHealth_NoAuth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestAuth(t *testing.T) {
	s, _ := newTestServer(t)
	for _, header := range []string{"", "Bearer wrong", testKey} {
		req := httptest.NewRequest(http.MethodPost, "/api/check", strings.NewReader(`{}`))
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestLayout(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/layout", map[string]any{
		"tree":             noticeTree(),
		"structuredFields": doctree.NewStructuredFields(),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp documentResponse
	decode(t, rec, &resp)
	if resp.Fields.Title != "关于开展安全检查的通知" {
		t.Errorf("expected title lifted, got %q", resp.Fields.Title)
	}
	if resp.Fields.MainTo != "各区县教育局：" {
		t.Errorf("expected addressee lifted, got %q", resp.Fields.MainTo)
	}
	if len(resp.Tree.Content) != 2 {
		t.Fatalf("expected 2 body blocks, got %d", len(resp.Tree.Content))
	}
	h := resp.Tree.Content[0]
	if h.Type != doctree.KindHeading || h.Level != 1 || h.Text() != "一、总体要求" {
		t.Errorf("expected level-1 heading without punctuation, got %s/%d %q", h.Type, h.Level, h.Text())
	}
}

func TestLayout_BadJSON(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/layout", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestResolveStyle(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/style/resolve", map[string]any{
		"node": doctree.NewParagraph("做好检查工作。", doctree.Attrs{}),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var ns struct {
		Role  string `json:"role"`
		Style struct {
			FontSizePt    float64 `json:"fontSizePt"`
			LineSpacingPt float64 `json:"lineSpacingPt"`
		} `json:"style"`
	}
	decode(t, rec, &ns)
	if ns.Role != "body" || ns.Style.FontSizePt != 16 || ns.Style.LineSpacingPt != 28 {
		t.Errorf("expected body 16pt/28pt, got %+v", ns)
	}

	rec = do(t, s, http.MethodPost, "/api/style/resolve", map[string]any{
		"node":   doctree.NewParagraph("x", doctree.Attrs{}),
		"region": "header",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown region, got %d", rec.Code)
	}
}

func TestPreview(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/preview", map[string]any{"tree": noticeTree()})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out struct {
		HTML         string            `json:"html"`
		CSSVariables map[string]string `json:"cssVariables"`
	}
	decode(t, rec, &out)
	if !strings.Contains(out.HTML, "gw-doc") || !strings.Contains(out.HTML, "做好检查工作。") {
		t.Errorf("unexpected html %q", out.HTML)
	}
	if out.CSSVariables["--gw-body-font-size"] != "16pt" {
		t.Errorf("expected body font size variable, got %v", out.CSSVariables)
	}
}

func TestExport(t *testing.T) {
	s, _ := newTestServer(t)
	fields := doctree.NewStructuredFields()
	fields.Title = "关于开展安全检查的通知"
	rec := do(t, s, http.MethodPost, "/api/export", map[string]any{
		"tree":             noticeTree(),
		"structuredFields": fields,
		"unitName":         "某某市教育局",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != docxContentType {
		t.Errorf("expected docx content type, got %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("expected a zip archive")
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") {
		t.Errorf("expected attachment disposition, got %q", cd)
	}
}

func TestCheck(t *testing.T) {
	s, _ := newTestServer(t)
	tree := doctree.Document{Content: []doctree.Block{
		doctree.NewHeading(1, "一、总体要求。", doctree.Attrs{}),
	}}
	rec := do(t, s, http.MethodPost, "/api/check", map[string]any{"tree": tree})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out struct {
		Issues []struct {
			Code string `json:"code"`
		} `json:"issues"`
	}
	decode(t, rec, &out)
	found := false
	for _, is := range out.Issues {
		if is.Code == "B_PUNC_H1" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected B_PUNC_H1, got %+v", out.Issues)
	}
}

func TestNormalizeDocNo(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/docno/normalize", map[string]string{"text": "国办发(2024)"})
	var out map[string]string
	decode(t, rec, &out)
	if out["text"] != "国办发〔2024〕" {
		t.Errorf("expected 国办发〔2024〕, got %q", out["text"])
	}
}

func uploadRequest(t *testing.T, filename, content string, extra map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range extra {
		mw.WriteField(k, v)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testKey)
	return req
}

func TestImport_Lifecycle(t *testing.T) {
	s, _ := newTestServer(t)
	text := "关于开展安全检查的通知\n各区县教育局：\n一、总体要求\n做好检查工作。\n"

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, uploadRequest(t, "notice.txt", text, map[string]string{"doc_id": "doc-1"}))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var accepted struct {
		JobID   string `json:"job_id"`
		DocID   string `json:"doc_id"`
		PollURL string `json:"poll_url"`
	}
	decode(t, rec, &accepted)
	if accepted.DocID != "doc-1" {
		t.Errorf("expected doc-1, got %q", accepted.DocID)
	}

	var snap pipeline.JobSnapshot
	deadline := time.Now().Add(5 * time.Second)
	for {
		rec = do(t, s, http.MethodGet, accepted.PollURL, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status: expected 200, got %d", rec.Code)
		}
		decode(t, rec, &snap)
		if snap.Done() {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job still %q", snap.Status)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if snap.Status != pipeline.StatusCompleted {
		t.Fatalf("expected completed, got %q: %v", snap.Status, snap.Progress.Errors)
	}

	rec = do(t, s, http.MethodGet, "/api/documents/doc-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}
	var doc pathstore.Document
	decode(t, rec, &doc)
	if doc.Title != "关于开展安全检查的通知" {
		t.Errorf("expected stored title, got %q", doc.Title)
	}

	rec = do(t, s, http.MethodGet, "/api/documents", nil)
	var list struct {
		Documents []pathstore.DocumentSummary `json:"documents"`
	}
	decode(t, rec, &list)
	if len(list.Documents) != 1 {
		t.Errorf("expected 1 document, got %d", len(list.Documents))
	}

	if rec = do(t, s, http.MethodDelete, "/api/documents/doc-1", nil); rec.Code != http.StatusOK {
		t.Errorf("delete: expected 200, got %d", rec.Code)
	}
	if rec = do(t, s, http.MethodGet, "/api/documents/doc-1", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/stats/import", nil)
	var stats struct {
		Stats pipeline.StatsSnapshot `json:"stats"`
	}
	decode(t, rec, &stats)
	if rec.Code != http.StatusOK {
		t.Errorf("stats: expected 200, got %d", rec.Code)
	}
}

func TestImport_Rejections(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, uploadRequest(t, "scan.tiff", "x", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unsupported: expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, uploadRequest(t, "a.txt", "x", map[string]string{"rules": "{bad"}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad rules: expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, uploadRequest(t, "big.txt", strings.Repeat("x", 2<<20), nil))
	if rec.Code != http.StatusBadRequest && rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversize: expected 400 or 413, got %d", rec.Code)
	}

	if rec = do(t, s, http.MethodGet, "/api/import/missing/status", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown job: expected 404, got %d", rec.Code)
	}
}

func TestListDocuments_BadLimit(t *testing.T) {
	s, _ := newTestServer(t)
	if rec := do(t, s, http.MethodGet, "/api/documents?limit=0", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd": "passwd",
		"通知.docx":          "通知.docx",
		"":                 "unnamed",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", in, want, got)
		}
	}
}
