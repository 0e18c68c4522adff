package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yigit/campusfound/internal/app/models/dto"
	"github.com/yigit/campusfound/internal/app/repositories"
	"github.com/yigit/campusfound/internal/app/services"
	"github.com/yigit/campusfound/internal/middleware"
	"github.com/yigit/campusfound/internal/pkg/helpers"
)

// ActivityLogController exposes the admin audit trail
type ActivityLogController struct {
	activityLogService *services.ActivityLogService
}

// NewActivityLogController creates a new ActivityLogController
func NewActivityLogController(activityLogService *services.ActivityLogService) *ActivityLogController {
	return &ActivityLogController{activityLogService: activityLogService}
}

// List returns audit entries, newest first
// @Summary Activity log
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param adminId query string false "Only actions by this admin"
// @Param entityType query string false "Entity type" Enums(lost_item, found_item, claim, user)
// @Param entityId query string false "Only actions on this entity"
// @Param action query string false "Action, e.g. approved_claim"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=[]dto.ActivityLogResponse,pagination=dto.PaginationInfo}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /admin/activity-logs [get]
func (c *ActivityLogController) List(ctx *gin.Context) {
	var req dto.ActivityLogFilterRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		middleware.HandleAPIError(ctx, middleware.BindingError(err))
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	filter := repositories.ActivityLogFilter{
		EntityType: req.EntityType,
		Action:     strings.TrimSpace(req.Action),
		Page:       page,
		Size:       size,
	}
	if req.AdminID != "" {
		id := uuid.MustParse(req.AdminID)
		filter.AdminID = &id
	}
	if req.EntityID != "" {
		id := uuid.MustParse(req.EntityID)
		filter.EntityID = &id
	}

	result, err := c.activityLogService.List(ctx.Request.Context(), middleware.GetPrincipal(ctx), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPagedResponse(dto.FromActivityLogs(result.Items), pagination(result)))
}
