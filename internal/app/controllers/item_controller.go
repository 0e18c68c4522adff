package controllers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/app/models/dto"
	"github.com/yigit/campusfound/internal/app/services"
	"github.com/yigit/campusfound/internal/middleware"
	"github.com/yigit/campusfound/internal/pkg/apperrors"
	"github.com/yigit/campusfound/internal/pkg/filestorage"
	"github.com/yigit/campusfound/internal/pkg/helpers"
)

// IdempotencyHeader lets clients retry a submission without creating duplicates
const IdempotencyHeader = "Idempotency-Key"

// ItemController handles lost and found reports
type ItemController struct {
	itemService   *services.ItemService
	maxUploadSize int64
	logger        zerolog.Logger
}

// NewItemController creates a new ItemController
func NewItemController(itemService *services.ItemService, maxUploadSize int64, logger zerolog.Logger) *ItemController {
	if maxUploadSize <= 0 {
		maxUploadSize = filestorage.MaxUploadSize
	}
	return &ItemController{
		itemService:   itemService,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// bindItem reads an item report from a JSON body or a multipart form
func (c *ItemController) bindItem(ctx *gin.Context, kind models.ItemKind) (services.ItemInput, *filestorage.Upload, error) {
	var req dto.ItemRequest
	if err := ctx.ShouldBind(&req); err != nil {
		return services.ItemInput{}, nil, middleware.BindingError(err)
	}
	details, problems := req.Details(kind)
	if len(problems) > 0 {
		return services.ItemInput{}, nil, apperrors.NewValidationError("The report is incomplete").WithDetails(problems)
	}
	image, err := optionalUpload(ctx, "image", filestorage.ImageTypes, c.maxUploadSize)
	if err != nil {
		return services.ItemInput{}, nil, err
	}
	return services.ItemInput{
		ObjectName:  req.ObjectName,
		Description: req.Description,
		Location:    req.Location,
		Details:     details,
	}, image, nil
}

// Submit handles a new lost or found report
// @Summary Report a lost or found item
// @Description Creates a pending report. Accepts JSON, or a multipart form with an optional "image" file.
// @Tags items
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Item kind" Enums(lost, found)
// @Param Idempotency-Key header string false "Client key that makes retries safe"
// @Param request body dto.ItemRequest true "Report"
// @Success 201 {object} dto.APIResponse{data=dto.ItemResponse}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 401 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /items/{kind} [post]
func (c *ItemController) Submit(ctx *gin.Context) {
	kind, err := kindParam(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	in, image, err := c.bindItem(ctx, kind)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	item, err := c.itemService.Submit(ctx.Request.Context(), middleware.GetPrincipal(ctx), in, image, strings.TrimSpace(ctx.GetHeader(IdempotencyHeader)))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.FromItem(item), "Report submitted for review"))
}

// List returns approved items of one kind
// @Summary List approved items
// @Tags items
// @Produce json
// @Param kind path string true "Item kind" Enums(lost, found)
// @Param q query string false "Text search on the object name and description"
// @Param location query string false "Location filter"
// @Param campus query string false "Campus filter, lost items only"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=[]dto.ItemResponse,pagination=dto.PaginationInfo}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /items/{kind} [get]
func (c *ItemController) List(ctx *gin.Context) {
	kind, err := kindParam(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	var filter dto.ItemFilterRequest
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		middleware.HandleAPIError(ctx, middleware.BindingError(err))
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	result, err := c.itemService.ListPublic(ctx.Request.Context(), middleware.GetPrincipal(ctx), services.ItemQuery{
		Kind:     kind,
		Query:    strings.TrimSpace(filter.Query),
		Location: strings.TrimSpace(filter.Location),
		Campus:   strings.TrimSpace(filter.Campus),
		Page:     page,
		Size:     size,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPagedResponse(dto.FromItems(result.Items), pagination(result)))
}

// Get returns one item as the caller may see it
// @Summary Get an item
// @Tags items
// @Produce json
// @Param kind path string true "Item kind" Enums(lost, found)
// @Param id path string true "Item ID"
// @Success 200 {object} dto.APIResponse{data=dto.ItemResponse}
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /items/{kind}/{id} [get]
func (c *ItemController) Get(ctx *gin.Context) {
	kind, err := kindParam(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	id, err := uuidParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	item, err := c.itemService.Get(ctx.Request.Context(), middleware.GetPrincipal(ctx), kind, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromItem(item), ""))
}

// Update edits the descriptive fields of the caller's item
// @Summary Edit an item
// @Tags items
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Item kind" Enums(lost, found)
// @Param id path string true "Item ID"
// @Param request body dto.ItemRequest true "Report"
// @Success 200 {object} dto.APIResponse{data=dto.ItemResponse}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 409 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /items/{kind}/{id} [put]
func (c *ItemController) Update(ctx *gin.Context) {
	kind, err := kindParam(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	id, err := uuidParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	in, image, err := c.bindItem(ctx, kind)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	item, err := c.itemService.Update(ctx.Request.Context(), middleware.GetPrincipal(ctx), kind, id, in, image)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromItem(item), "Item updated"))
}

// Delete removes an item together with its claims
// @Summary Delete an item
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Item kind" Enums(lost, found)
// @Param id path string true "Item ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /items/{kind}/{id} [delete]
func (c *ItemController) Delete(ctx *gin.Context) {
	kind, err := kindParam(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	id, err := uuidParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.itemService.Delete(ctx.Request.Context(), middleware.GetPrincipal(ctx), kind, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Item deleted"))
}

// ListMine returns every report of the caller
// @Summary My reports
// @Tags me
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ItemResponse}
// @Failure 401 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /me/items [get]
func (c *ItemController) ListMine(ctx *gin.Context) {
	items, err := c.itemService.ListMine(ctx.Request.Context(), middleware.GetPrincipal(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromItems(items), ""))
}

// ListForReview returns the moderation queue
// @Summary Moderation queue
// @Description Oldest first. Status defaults to pending and accepts a comma separated list.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param kind query string true "Item kind" Enums(lost, found)
// @Param status query string false "Statuses, e.g. pending,approved"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=[]dto.ItemResponse,pagination=dto.PaginationInfo}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /admin/items [get]
func (c *ItemController) ListForReview(ctx *gin.Context) {
	kind, err := models.ParseItemKind(ctx.Query("kind"))
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("kind must be one of: lost found").
			WithDetails(map[string]interface{}{"kind": "kind must be one of: lost found"}))
		return
	}
	var statuses []models.ItemStatus
	if raw := ctx.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := models.ItemStatus(strings.TrimSpace(s))
			if !status.Valid() {
				middleware.HandleAPIError(ctx, apperrors.NewValidationError("Unknown status "+string(status)).
					WithDetails(map[string]interface{}{"status": "status must be one of: pending approved rejected claimed resolved"}))
				return
			}
			statuses = append(statuses, status)
		}
	}
	page, size := helpers.ParsePaginationParams(ctx)

	result, err := c.itemService.ListForReview(ctx.Request.Context(), middleware.GetPrincipal(ctx), kind, statuses, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPagedResponse(dto.FromItems(result.Items), pagination(result)))
}

// bindNote reads the optional moderation note; an empty body means no note
func bindNote(ctx *gin.Context) (*string, error) {
	var req dto.ModerationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, middleware.BindingError(err)
	}
	return req.Note, nil
}

type moderationFunc func(ctx *gin.Context, kind models.ItemKind, id uuid.UUID, note *string) (*services.ItemResult, error)

func (c *ItemController) moderate(ctx *gin.Context, message string, action moderationFunc) {
	kind, err := kindParam(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	id, err := uuidParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	note, err := bindNote(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	result, err := action(ctx, kind, id, note)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromItem(result.Item), message).WithWarnings(result.Warnings))
}

// Approve publishes a pending report
// @Summary Approve a report
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Item kind" Enums(lost, found)
// @Param id path string true "Item ID"
// @Param request body dto.ModerationRequest false "Optional note"
// @Success 200 {object} dto.APIResponse{data=dto.ItemResponse}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 409 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /admin/items/{kind}/{id}/approve [post]
func (c *ItemController) Approve(ctx *gin.Context) {
	c.moderate(ctx, "Item approved", func(ctx *gin.Context, kind models.ItemKind, id uuid.UUID, note *string) (*services.ItemResult, error) {
		return c.itemService.Approve(ctx.Request.Context(), middleware.GetPrincipal(ctx), kind, id, note)
	})
}

// Reject declines a pending report
// @Summary Reject a report
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Item kind" Enums(lost, found)
// @Param id path string true "Item ID"
// @Param request body dto.ModerationRequest false "Optional reason"
// @Success 200 {object} dto.APIResponse{data=dto.ItemResponse}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 409 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /admin/items/{kind}/{id}/reject [post]
func (c *ItemController) Reject(ctx *gin.Context) {
	c.moderate(ctx, "Item rejected", func(ctx *gin.Context, kind models.ItemKind, id uuid.UUID, note *string) (*services.ItemResult, error) {
		return c.itemService.Reject(ctx.Request.Context(), middleware.GetPrincipal(ctx), kind, id, note)
	})
}

// Archive marks an approved report as resolved
// @Summary Archive a report
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Item kind" Enums(lost, found)
// @Param id path string true "Item ID"
// @Success 200 {object} dto.APIResponse{data=dto.ItemResponse}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 409 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /admin/items/{kind}/{id}/archive [post]
func (c *ItemController) Archive(ctx *gin.Context) {
	c.moderate(ctx, "Item archived", func(ctx *gin.Context, kind models.ItemKind, id uuid.UUID, _ *string) (*services.ItemResult, error) {
		return c.itemService.Archive(ctx.Request.Context(), middleware.GetPrincipal(ctx), kind, id)
	})
}
