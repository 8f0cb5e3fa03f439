package api

import (
	"bytes"
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/dgallion1/gongwen/internal/check"
	"github.com/dgallion1/gongwen/internal/doctree"
	"github.com/dgallion1/gongwen/internal/export"
	"github.com/dgallion1/gongwen/internal/preview"
	"github.com/dgallion1/gongwen/internal/style"
	"github.com/dgallion1/gongwen/internal/textnorm"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// maxJSONBytes bounds editor payloads.
const maxJSONBytes = 8 << 20

// documentRequest is the editor payload shared by the layout endpoints.
type documentRequest struct {
	Tree   doctree.Document         `json:"tree"`
	Fields doctree.StructuredFields `json:"structuredFields"`
}

type documentResponse struct {
	Tree   doctree.Document         `json:"tree"`
	Fields doctree.StructuredFields `json:"structuredFields"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res := s.engine.ApplyWithRules(req.Tree.Content, req.Fields)
	writeJSON(w, http.StatusOK, documentResponse{
		Tree:   doctree.Document{Title: req.Tree.Title, Content: res.Tree},
		Fields: res.Fields,
	})
}

func (s *Server) handleResolveStyle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Node   doctree.Block          `json:"node"`
		Rules  *doctree.TemplateRules `json:"rules"`
		Region style.Region           `json:"region"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	switch req.Region {
	case "":
		req.Region = style.RegionBody
	case style.RegionBody, style.RegionLeading, style.RegionTrailing:
	default:
		jsonError(w, "unknown region: "+string(req.Region), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, style.Resolve(req.Node, req.Rules, req.Region))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := preview.Build(req.Tree.Content, req.Fields)
	if err != nil {
		s.log.Error("preview render failed", "error", err)
		jsonError(w, "preview failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		documentRequest
		UnitName string `json:"unitName"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, req.Tree.Content, req.Fields, export.Options{UnitName: req.UnitName}); err != nil {
		s.log.Error("export failed", "error", err)
		jsonError(w, "export failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	name := strings.TrimSpace(req.Fields.Title)
	if name == "" {
		name = "公文"
	}
	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": sanitizeFilename(name) + ".docx",
	}))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tree doctree.Document `json:"tree"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"issues": check.Check(req.Tree.Content)})
}

func (s *Server) handleNormalizeDocNo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": textnorm.NormalizeDocNoBracket(req.Text)})
}

// decodeJSON reads a bounded JSON body, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
