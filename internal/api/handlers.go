package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"sketchive/internal/db"
	"sketchive/internal/state"
	"sketchive/internal/store"
)

// maxBodyBytes bounds request bodies; long strokes are a few hundred KB.
const maxBodyBytes = 4 << 20

type Handlers struct {
	repo db.Repository
	log  *slog.Logger
}

func NewHandlers(repo db.Repository, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{repo: repo, log: logger.With("component", "api")}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondMessage(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusOK, store.Result{Message: message})
}

// whiteboardID reads the required ?id= parameter. It writes the 400 itself.
func whiteboardID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		http.Error(w, "Missing whiteboard ID", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid whiteboard ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// fail maps repository errors onto status codes.
func (h *Handlers) fail(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		http.Error(w, "Whiteboard not found", http.StatusNotFound)
	case errors.Is(err, db.ErrEmptyPath):
		http.Error(w, "Stroke path is empty", http.StatusBadRequest)
	default:
		h.log.Error(message, "error", err)
		http.Error(w, message, http.StatusInternalServerError)
	}
}

func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) CreateWhiteboard(w http.ResponseWriter, r *http.Request) {
	// the body is optional
	var wb state.Whiteboard
	if err := decodeBody(w, r, &wb); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid body request", http.StatusBadRequest)
		return
	}
	wb.ID = 0

	created, err := h.repo.CreateWhiteboard(r.Context(), &wb)
	if err != nil {
		h.fail(w, err, "Failed to insert whiteboard")
		return
	}
	h.log.Info("whiteboard created", "whiteboard", created.ID)
	respondJSON(w, http.StatusOK, created)
}

func (h *Handlers) GetWhiteboard(w http.ResponseWriter, r *http.Request) {
	id, ok := whiteboardID(w, r)
	if !ok {
		return
	}
	wb, err := h.repo.GetWhiteboard(r.Context(), id)
	if err != nil {
		h.fail(w, err, "Failed to get whiteboard by its ID")
		return
	}
	respondJSON(w, http.StatusOK, wb)
}

func (h *Handlers) UpdateWhiteboard(w http.ResponseWriter, r *http.Request) {
	id, ok := whiteboardID(w, r)
	if !ok {
		return
	}
	var wb state.Whiteboard
	if err := decodeBody(w, r, &wb); err != nil {
		http.Error(w, "Invalid body request", http.StatusBadRequest)
		return
	}
	wb.ID = id

	updated, err := h.repo.UpdateWhiteboard(r.Context(), &wb)
	if err != nil {
		h.fail(w, err, "Failed to update the whiteboard")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *Handlers) DeleteWhiteboard(w http.ResponseWriter, r *http.Request) {
	id, ok := whiteboardID(w, r)
	if !ok {
		return
	}
	if err := h.repo.DeleteWhiteboard(r.Context(), id); err != nil {
		h.fail(w, err, "Failed to delete whiteboard")
		return
	}
	h.log.Info("whiteboard deleted", "whiteboard", id)
	respondMessage(w, "Whiteboard deleted successfully")
}

func (h *Handlers) ClearWhiteboard(w http.ResponseWriter, r *http.Request) {
	id, ok := whiteboardID(w, r)
	if !ok {
		return
	}
	n, err := h.repo.ClearWhiteboard(r.Context(), id)
	if err != nil {
		h.fail(w, err, "Failed to clear strokes")
		return
	}
	h.log.Info("whiteboard cleared", "whiteboard", id, "strokes", n)
	respondMessage(w, "Whiteboard cleared successfully")
}

func (h *Handlers) AddStroke(w http.ResponseWriter, r *http.Request) {
	var s state.Stroke
	if err := decodeBody(w, r, &s); err != nil {
		http.Error(w, "Error decoding stroke", http.StatusBadRequest)
		return
	}
	if s.WhiteboardID <= 0 {
		http.Error(w, "Invalid whiteboard ID", http.StatusBadRequest)
		return
	}
	if s.Width <= 0 {
		http.Error(w, "Invalid stroke width", http.StatusBadRequest)
		return
	}
	s.ID = 0

	created, err := h.repo.CreateStroke(r.Context(), s)
	if err != nil {
		h.fail(w, err, "Error inserting stroke")
		return
	}
	h.log.Debug("stroke created", "whiteboard", created.WhiteboardID, "stroke", created.ID, "points", len(created.Path))
	respondJSON(w, http.StatusOK, created)
}

func (h *Handlers) GetStrokes(w http.ResponseWriter, r *http.Request) {
	id, ok := whiteboardID(w, r)
	if !ok {
		return
	}
	strokes, err := h.repo.GetStrokes(r.Context(), id)
	if err != nil {
		h.fail(w, err, "Failed to retrieve strokes history")
		return
	}
	respondJSON(w, http.StatusOK, strokes)
}

func (h *Handlers) DeleteStrokes(w http.ResponseWriter, r *http.Request) {
	var req store.DeleteByBoxRequest
	if err := decodeBody(w, r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	box := state.BoundingBox{MinX: req.MinX, MaxX: req.MaxX, MinY: req.MinY, MaxY: req.MaxY}
	if req.WhiteboardID <= 0 || !box.Valid() {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	n, err := h.repo.DeleteStrokesInBox(r.Context(), req.WhiteboardID, box)
	if err != nil {
		h.fail(w, err, "Failed to mark strokes as deleted")
		return
	}
	h.log.Info("strokes erased", "whiteboard", req.WhiteboardID, "strokes", n)
	respondMessage(w, "Strokes marked as deleted successfully")
}
