package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const defaultListLimit = 200

// handleListDocuments lists stored document summaries.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	docs, err := s.docs.ListDocuments(r.Context(), limit)
	if err != nil {
		s.log.Error("list documents failed", "error", err)
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	doc, err := s.docs.LoadDocument(r.Context(), docID)
	if err != nil {
		s.log.Error("load document failed", "doc_id", docID, "error", err)
		jsonError(w, "failed to load document: "+err.Error(), http.StatusBadGateway)
		return
	}
	if doc == nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleDeleteDocument removes a stored document.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if err := s.docs.DeleteDocument(r.Context(), docID); err != nil {
		s.log.Error("delete document failed", "doc_id", docID, "error", err)
		jsonError(w, "failed to delete document: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"doc_id": docID, "deleted": true})
}
