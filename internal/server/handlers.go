package server

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taxpilot-ai/taxpilot/internal/engine"
	"github.com/taxpilot-ai/taxpilot/internal/extract"
	"github.com/taxpilot-ai/taxpilot/internal/model"
	"github.com/taxpilot-ai/taxpilot/internal/service"
)

// handlers holds HTTP handler dependencies.
type handlers struct {
	engine    *engine.Engine
	storage   service.Storage
	extractor extract.Extractor
	version   string
	startedAt time.Time
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// handleChat handles POST /api/chat. A missing session id starts a new
// conversation.
func (h *handlers) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, codeInvalidInput, "message is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	resp, err := h.engine.HandleMessage(r.Context(), req.SessionID, req.Message)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		SessionID string `json:"session_id"`
		*model.ChatResponse
	}{req.SessionID, resp})
}

type uploadRequest struct {
	SessionID string `json:"session_id"`
	Filename  string `json:"filename"`
	Content   string `json:"content"`
}

type uploadResponse struct {
	Document extract.W2          `json:"document"`
	Response *model.ChatResponse `json:"response"`
}

// handleUpload handles POST /api/upload. The extracted wages and withholding
// feed the same income transition the chat path takes.
func (h *handlers) handleUpload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, codeInvalidInput, "session_id is required")
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Content)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidInput, "content must be base64 encoded")
		return
	}

	doc, err := h.extractor.ExtractW2(r.Context(), req.Filename, data)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp, err := h.engine.ApplyIntent(r.Context(), req.SessionID, model.Intent{
		Kind:       model.IntentDeclareIncome,
		SourceKind: model.IncomeSourceExtracted,
		Amount:     doc.Wages,
		Withheld:   doc.FederalWithheld,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{Document: doc, Response: resp})
}

// handleGetSession handles GET /api/sessions/{session_id}.
func (h *handlers) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.engine.Snapshot(r.Context(), r.PathValue("session_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleGetTaxReturn handles GET /api/sessions/{session_id}/tax-return.
// Returns 409 until the session has both filing status and income.
func (h *handlers) handleGetTaxReturn(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.ComputeResult(r.Context(), r.PathValue("session_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleListReviews handles GET /api/reviews with optional session_id,
// status, and limit query parameters.
func (h *handlers) handleListReviews(w http.ResponseWriter, r *http.Request) {
	filter := service.ReviewFilter{
		SessionID: r.URL.Query().Get("session_id"),
	}

	if status := r.URL.Query().Get("status"); status != "" {
		rs := model.ReviewStatus(status)
		if !rs.Valid() {
			writeError(w, http.StatusBadRequest, codeInvalidInput,
				fmt.Sprintf("unknown review status %q", status))
			return
		}
		filter.Status = rs
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, codeInvalidInput, "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}

	items, err := h.storage.ListReviewItems(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if items == nil {
		items = []model.ReviewItem{}
	}

	writeJSON(w, http.StatusOK, struct {
		Items []model.ReviewItem `json:"items"`
		Count int                `json:"count"`
	}{items, len(items)})
}

// handleGetReview handles GET /api/reviews/{review_id}.
func (h *handlers) handleGetReview(w http.ResponseWriter, r *http.Request) {
	item, err := h.storage.GetReviewItem(r.Context(), r.PathValue("review_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type resolveRequest struct {
	Status model.ReviewStatus `json:"status"`
	Notes  string             `json:"notes"`
}

// handleResolveReview handles PUT /api/reviews/{review_id}. Only terminal
// statuses are accepted; resolving an already-resolved item overwrites the
// previous disposition.
func (h *handlers) handleResolveReview(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	if !req.Status.Valid() || !req.Status.Terminal() {
		writeError(w, http.StatusBadRequest, codeInvalidInput,
			fmt.Sprintf("status must be one of approved, rejected, modified; got %q", req.Status))
		return
	}

	item, err := h.storage.ResolveReviewItem(r.Context(), r.PathValue("review_id"), req.Status, req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleHealth handles GET /healthz.
func (h *handlers) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status  string `json:"status"`
		Version string `json:"version"`
		Uptime  string `json:"uptime"`
	}{"ok", h.version, time.Since(h.startedAt).Round(time.Second).String()})
}
