package services

import (
	"context"

	"github.com/yigit/campusfound/internal/app/auth"
	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/app/repositories"
)

// ActivityLogService exposes the audit trail to admins
type ActivityLogService struct {
	logs ActivityLogStore
}

// NewActivityLogService creates a new ActivityLogService
func NewActivityLogService(logs ActivityLogStore) *ActivityLogService {
	return &ActivityLogService{logs: logs}
}

// List returns audit entries, newest first
func (s *ActivityLogService) List(ctx context.Context, p auth.Principal, filter repositories.ActivityLogFilter) (*Page[*models.ActivityLog], error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	entries, total, err := s.logs.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &Page[*models.ActivityLog]{Items: entries, Total: total, Page: filter.Page, Size: filter.Size}, nil
}
