package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"tulisan/internal/content/model"
	"tulisan/internal/content/service"
	"tulisan/internal/editor"
	"tulisan/middleware"
	"tulisan/pkg/logger"
)

type ContentHandler struct {
	Service *service.ContentService
	Drafts  *editor.Store
}

func NewContentHandler(service *service.ContentService, drafts *editor.Store) *ContentHandler {
	return &ContentHandler{Service: service, Drafts: drafts}
}

func (h *ContentHandler) SaveContent(w http.ResponseWriter, r *http.Request) {
	var req model.SaveContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rec, err := h.Service.AppendRequest(r.Context(), req)
	if errors.Is(err, service.ErrUnknownFormat) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to save content: %v", err)
		http.Error(w, "Failed to save content", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

func (h *ContentHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Service.FetchLatest(r.Context())
	if errors.Is(err, model.ErrNoContent) {
		http.Error(w, "No content found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Sugar.Errorf("Error fetching latest content: %v", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (h *ContentHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.draft(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, model.DraftResponse{SessionID: draft.ID, Content: draft.Content()})
}

// UpdateDraft is the change notification: the whole draft is replaced.
func (h *ContentHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.draft(w, r)
	if !ok {
		return
	}

	var req model.DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	draft.Replace(req.Content)

	writeJSON(w, http.StatusOK, model.DraftResponse{SessionID: draft.ID, Content: draft.Content()})
}

func (h *ContentHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.draft(w, r)
	if !ok {
		return
	}

	rec, err := draft.Save(r.Context(), h.Service)
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to save draft %s: %v", draft.ID, err)
		http.Error(w, "Failed to save content. Please try again later.", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

func (h *ContentHandler) draft(w http.ResponseWriter, r *http.Request) (*editor.Draft, bool) {
	sessionID, ok := middleware.SessionID(r.Context())
	if !ok {
		http.Error(w, "Missing editor session", http.StatusUnauthorized)
		return nil, false
	}
	draft, ok := h.Drafts.Get(sessionID)
	if !ok {
		http.Error(w, "Editor session not found", http.StatusNotFound)
		return nil, false
	}
	return draft, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Sugar.Errorf("Error encoding response: %v", err)
	}
}
