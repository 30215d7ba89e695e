package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/certwatch/certwatch-api/internal/notification"
	"github.com/certwatch/certwatch-api/internal/repository"
	"github.com/rs/zerolog"
)

type NotificationHandler struct {
	dispatcher *notification.Dispatcher
	audit      repository.AuditRepository
	logger     zerolog.Logger
}

func NewNotificationHandler(dispatcher *notification.Dispatcher, audit repository.AuditRepository, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		dispatcher: dispatcher,
		audit:      audit,
		logger:     logger.With().Str("handler", "notification").Logger(),
	}
}

// RunNow triggers one dispatcher pass immediately. Same code path as the
// scheduler; returns the aggregate counters only, per-recipient detail lives
// in the audit log.
func (h *NotificationHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	res, err := h.dispatcher.Run(r.Context(), time.Now())
	if err != nil {
		h.logger.Error().Err(err).Msg("manual notification run failed")
		http.Error(w, "Notification run failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListLog returns the audit trail of a certification, newest first.
func (h *NotificationHandler) ListLog(w http.ResponseWriter, r *http.Request) {
	certID := strings.TrimSpace(r.URL.Query().Get("certification_id"))
	if certID == "" {
		http.Error(w, "certification_id is required", http.StatusBadRequest)
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	records, err := h.audit.ListByCertification(r.Context(), certID, limit)
	if err != nil {
		h.logger.Error().Err(err).Str("certification_id", certID).Msg("failed to list audit records")
		http.Error(w, "Failed to list audit records", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"records": records})
}
