package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/yigit/campusfound/internal/app/auth"
	"github.com/yigit/campusfound/internal/app/models/dto"
	"github.com/yigit/campusfound/internal/app/services"
	"github.com/yigit/campusfound/internal/middleware"
	"github.com/yigit/campusfound/internal/pkg/helpers"
	"github.com/yigit/campusfound/internal/pkg/websocket"
)

// NotificationController handles the notification inbox and its live stream
type NotificationController struct {
	notificationService *services.NotificationService
	hub                 *websocket.Hub
	upgrader            *gorillaws.Upgrader
	logger              zerolog.Logger
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notificationService *services.NotificationService, hub *websocket.Hub, upgrader *gorillaws.Upgrader, logger zerolog.Logger) *NotificationController {
	return &NotificationController{
		notificationService: notificationService,
		hub:                 hub,
		upgrader:            upgrader,
		logger:              logger,
	}
}

// List returns the caller's notifications, newest first
// @Summary My notifications
// @Tags me
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Only unread notifications"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=[]dto.NotificationResponse,pagination=dto.PaginationInfo}
// @Router /me/notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	unreadOnly, _ := strconv.ParseBool(ctx.DefaultQuery("unread", "false"))
	page, size := helpers.ParsePaginationParams(ctx)

	result, err := c.notificationService.List(ctx.Request.Context(), middleware.GetPrincipal(ctx), unreadOnly, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPagedResponse(dto.FromNotifications(result.Items), pagination(result)))
}

// MarkRead marks one notification as read
// @Summary Mark a notification read
// @Tags me
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /me/notifications/{id}/read [post]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if err := c.notificationService.MarkRead(ctx.Request.Context(), middleware.GetPrincipal(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Notification marked as read"))
}

// MarkAllRead marks every unread notification as read
// @Summary Mark all notifications read
// @Tags me
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.MarkAllReadResponse}
// @Router /me/notifications/read-all [post]
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	updated, err := c.notificationService.MarkAllRead(ctx.Request.Context(), middleware.GetPrincipal(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MarkAllReadResponse{Updated: updated}, ""))
}

// Stream upgrades to a websocket that pushes new notifications
// @Summary Live notifications
// @Description Websocket. Browsers may pass the access token as the "token" query parameter.
// @Tags me
// @Security BearerAuth
// @Param token query string false "Bearer token"
// @Success 101
// @Failure 401 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /me/notifications/ws [get]
func (c *NotificationController) Stream(ctx *gin.Context) {
	p := middleware.GetPrincipal(ctx)
	if err := auth.RequireAuthenticated(p); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if err := c.hub.Serve(c.upgrader, ctx.Writer, ctx.Request, p.ID); err != nil {
		// the upgrader has already written the HTTP error
		c.logger.Warn().Err(err).Str("userID", p.ID.String()).Msg("Websocket upgrade failed")
	}
}
