package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"dashboard-api/internal/middleware"
	"dashboard-api/internal/model"
	"dashboard-api/internal/service"
	"dashboard-api/pkg/apierror"
)

type AuditHandler struct {
	audit *service.AuditService
}

func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

func (h *AuditHandler) Record(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RecordAuditRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("UNAUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	if err := h.audit.Record(r.Context(), actor.ID, payload.Action, payload.Detail); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]any{"recorded": true}, nil)
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	entries, total, err := h.audit.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, entries, &model.Meta{
		Limit:  limit,
		Offset: offset,
		Total:  total,
	})
}
