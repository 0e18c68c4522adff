package memory

import (
	"context"

	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/app/repositories"
	"github.com/yigit/campusfound/internal/pkg/helpers"
)

// ActivityLogRepository is an append-only audit log
type ActivityLogRepository struct {
	s *Store
}

// Create appends an entry
func (r *ActivityLogRepository) Create(_ context.Context, entry *models.ActivityLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e := *entry
	e.Details = make(map[string]interface{}, len(entry.Details))
	for k, v := range entry.Details {
		e.Details[k] = v
	}
	r.s.logs = append(r.s.logs, &e)
	return nil
}

// List retrieves entries matching the filter, newest first
func (r *ActivityLogRepository) List(_ context.Context, filter repositories.ActivityLogFilter) ([]*models.ActivityLog, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []*models.ActivityLog
	for i := len(r.s.logs) - 1; i >= 0; i-- {
		e := r.s.logs[i]
		if filter.AdminID != nil && e.AdminID != *filter.AdminID {
			continue
		}
		if filter.EntityType != "" && e.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != nil && e.EntityID != *filter.EntityID {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		copied := *e
		matched = append(matched, &copied)
	}
	return helpers.PageSlice(matched, filter.Page, filter.Size), int64(len(matched)), nil
}
