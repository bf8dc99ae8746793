package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/wanyview/capsuled/internal/errors"
	"github.com/wanyview/capsuled/internal/service"
)

// DefaultDetectThreshold applies when a collision query omits threshold.
const DefaultDetectThreshold = 0.5

// Handlers contains HTTP route handlers for the capsule API.
type Handlers struct {
	svc     *service.Service
	logger  *slog.Logger
	version string
	dbPath  string
}

// createRequest is the JSON body for POST /capsules.
type createRequest struct {
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Source   *string        `json:"source,omitempty"`
	Domain   *string        `json:"domain,omitempty"`
	Tags     []string       `json:"tags,omitempty"`
	Author   *string        `json:"author,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// updateRequest is the JSON body for PUT /capsules/{id}.
type updateRequest struct {
	Title   *string   `json:"title,omitempty"`
	Content *string   `json:"content,omitempty"`
	Tags    *[]string `json:"tags,omitempty"`
	Source  *string   `json:"source,omitempty"`
	Domain  *string   `json:"domain,omitempty"`
}

// HandleStatus handles GET / — service status.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":  "capsuled",
		"version":  h.version,
		"status":   "running",
		"database": h.dbPath,
	})
}

// HandleCreate handles POST /capsules.
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewInvalidRequest("malformed JSON body"))
		return
	}

	c, err := h.svc.Create(r.Context(), service.CreateInput{
		Title:    req.Title,
		Content:  req.Content,
		Source:   req.Source,
		Domain:   req.Domain,
		Tags:     req.Tags,
		Author:   req.Author,
		Metadata: req.Metadata,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

// HandleList handles GET /capsules?domain=&min_score=&limit=.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	input := service.ListInput{
		Limit: parseIntParam(r, "limit", 0),
	}
	if domain := r.URL.Query().Get("domain"); domain != "" {
		input.Domain = &domain
	}
	if raw := r.URL.Query().Get("min_score"); raw != "" {
		minScore, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, errors.NewInvalidRequest("min_score must be a number"))
			return
		}
		input.MinScore = &minScore
	}

	capsules, err := h.svc.List(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, capsules)
}

// HandleGet handles GET /capsules/{id}.
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleUpdate handles PUT /capsules/{id}.
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewInvalidRequest("malformed JSON body"))
		return
	}

	c, err := h.svc.Update(r.Context(), service.UpdateInput{
		ID:      r.PathValue("id"),
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
		Source:  req.Source,
		Domain:  req.Domain,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// HandleDelete handles DELETE /capsules/{id}.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted", "id": id})
}

// HandleDetect handles GET /collisions/{id}?threshold=&limit=.
func (h *Handlers) HandleDetect(w http.ResponseWriter, r *http.Request) {
	threshold := DefaultDetectThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, errors.NewInvalidRequest("threshold must be a number"))
			return
		}
		threshold = parsed
	}

	collisions, err := h.svc.Detect(r.Context(), service.DetectInput{
		ID:        r.PathValue("id"),
		Threshold: threshold,
		Limit:     parseIntParam(r, "limit", 0),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"collisions": collisions})
}

// HandleStats handles GET /stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// parseIntParam parses an integer query parameter with a fallback default.
func parseIntParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps a service error to an HTTP response. Internal error
// details stay out of the payload to avoid leaking paths or SQL text.
func writeError(w http.ResponseWriter, err error) {
	cErr, ok := err.(*errors.CapsuleError)
	if !ok {
		cErr = errors.NewInternal(nil)
	}

	errorObj := map[string]any{
		"code":    cErr.Code,
		"message": cErr.Message,
	}
	if cErr.Code == errors.ErrInternal || cErr.Code == errors.ErrStorageUnavailable {
		errorObj["message"] = "an internal storage error occurred"
	}
	if cErr.Details != nil && cErr.Code != errors.ErrInternal {
		errorObj["details"] = cErr.Details
	}

	writeJSON(w, cErr.Status, map[string]any{"error": errorObj})
}
