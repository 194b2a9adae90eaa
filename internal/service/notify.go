package service

import (
	"context"

	"driverent-backend/internal/logger"
	"driverent-backend/internal/metrics"
)

// notify runs send once the workflow has committed. Failures are logged and
// counted, never returned to the caller.
func notify(ctx context.Context, m *metrics.Metrics, kind string, send func() error) {
	err := send()
	m.IncNotification(kind, err)
	if err != nil {
		logger.FromContext(ctx).Warn("Failed to notify counterpart", "kind", kind, "error", err)
	}
}
