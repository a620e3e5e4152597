package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const defaultAuditLogLimit = 50

func auditLogLimit(r *http.Request) int {
	limit := defaultAuditLogLimit
	if param := r.URL.Query().Get("limit"); param != "" {
		if parsed, err := strconv.Atoi(param); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return limit
}

func (h *Handler) GetAuditLogsByActor(w http.ResponseWriter, r *http.Request) {
	actorIDParam := chi.URLParam(r, "id")
	actorID, err := strconv.ParseInt(actorIDParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "用户ID无效")
		return
	}

	entries, err := h.repository.GetAuditLogsByActor(actorID, auditLogLimit(r))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取审计日志成功", entries)
}

func (h *Handler) GetAuditLogsByShift(w http.ResponseWriter, r *http.Request) {
	shiftIDParam := chi.URLParam(r, "id")
	shiftID, err := strconv.ParseInt(shiftIDParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "班次ID无效")
		return
	}

	entries, err := h.repository.GetAuditLogsByResource("SHIFT", shiftID, auditLogLimit(r))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取审计日志成功", entries)
}
