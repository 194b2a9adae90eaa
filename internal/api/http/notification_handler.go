package http

import (
	"context"
	"net/http"
	"time"

	"driverent-backend/internal/logger"
	"driverent-backend/internal/service"
)

type NotificationHandler struct {
	badges service.BadgeService
	errors errorWriter
}

func NewNotificationHandler(badges service.BadgeService, production bool) *NotificationHandler {
	return &NotificationHandler{badges: badges, errors: errorWriter{production: production}}
}

// UnreadCount answers GET /notificacoes/contador.
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	p, err := PrincipalFromContext(r.Context())
	if err != nil {
		h.errors.writeBadge(w, r, err)
		return
	}
	count, err := h.badges.UnreadCount(r.Context(), p)
	if err != nil {
		h.errors.writeBadge(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, count)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logger.FromContext(r.Context()).Error("Health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
