package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yigit/campusfound/internal/app/lifecycle"
	"github.com/yigit/campusfound/internal/pkg/metrics"
)

// Warning messages returned to the admin when a best-effort write fails
const (
	WarningNotificationFailed = "The user could not be notified about this decision"
	WarningAuditFailed        = "The activity log entry for this decision could not be recorded"
)

// SideEffects writes the notifications and audit entry planned for a transition.
// Failures never undo the transition; they are logged and returned as warnings.
type SideEffects struct {
	notifications NotificationStore
	audit         ActivityLogStore
	publisher     NotificationPublisher
	now           func() time.Time
	logger        zerolog.Logger
}

// NewSideEffects creates the best-effort notification and audit writer
func NewSideEffects(notifications NotificationStore, audit ActivityLogStore, publisher NotificationPublisher, logger zerolog.Logger) *SideEffects {
	return &SideEffects{
		notifications: notifications,
		audit:         audit,
		publisher:     publisher,
		now:           time.Now,
		logger:        logger,
	}
}

func (e *SideEffects) emit(ctx context.Context, eff lifecycle.Effects) []string {
	warnings := []string{}
	now := e.now()

	for i := range eff.Notifications {
		n := eff.Notifications[i]
		n.ID = uuid.New()
		n.CreatedAt = now
		if err := e.notifications.Create(ctx, &n); err != nil {
			metrics.SideEffectFailures.WithLabelValues("notification").Inc()
			e.logger.Error().Err(err).
				Str("userID", n.UserID.String()).
				Str("type", n.Type).
				Msg("Failed to store notification")
			warnings = append(warnings, WarningNotificationFailed)
			continue
		}
		if e.publisher != nil {
			e.publisher.Publish(n.UserID, &n)
		}
	}

	entry := eff.Audit
	entry.ID = uuid.New()
	entry.CreatedAt = now
	if err := e.audit.Create(ctx, &entry); err != nil {
		metrics.SideEffectFailures.WithLabelValues("audit").Inc()
		e.logger.Error().Err(err).
			Str("action", entry.Action).
			Str("entityID", entry.EntityID.String()).
			Msg("Failed to store activity log")
		warnings = append(warnings, WarningAuditFailed)
	}

	return warnings
}
