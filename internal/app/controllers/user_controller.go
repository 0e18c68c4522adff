package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/app/models/dto"
	"github.com/yigit/campusfound/internal/app/services"
	"github.com/yigit/campusfound/internal/middleware"
)

// UserController handles role management
type UserController struct {
	userService *services.UserService
	logger      zerolog.Logger
}

// NewUserController creates a new UserController
func NewUserController(userService *services.UserService, logger zerolog.Logger) *UserController {
	return &UserController{
		userService: userService,
		logger:      logger,
	}
}

// SetRole changes another user's role
// @Summary Change a user's role
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body dto.SetRoleRequest true "New role"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /admin/users/{id}/role [put]
func (c *UserController) SetRole(ctx *gin.Context) {
	userID, err := uuidParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	var req dto.SetRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(ctx, middleware.BindingError(err))
		return
	}

	warnings, err := c.userService.SetRole(ctx.Request.Context(), middleware.GetPrincipal(ctx), userID, models.Role(req.Role))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Role updated").WithWarnings(warnings))
}

// Bootstrap promotes the caller to the first administrator
// @Summary Bootstrap the first administrator
// @Description Requires the configured bootstrap token and only succeeds while no administrator exists
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BootstrapRequest true "Bootstrap token"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 409 {object} dto.APIResponse{error=dto.ErrorDetail} "An administrator already exists"
// @Router /admin/bootstrap [post]
func (c *UserController) Bootstrap(ctx *gin.Context) {
	var req dto.BootstrapRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(ctx, middleware.BindingError(err))
		return
	}
	if err := c.userService.Bootstrap(ctx.Request.Context(), middleware.GetPrincipal(ctx), req.Token); err != nil {
		c.logger.Warn().Err(err).Msg("Bootstrap attempt refused")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "You are now an administrator"))
}
