package controllers

import (
	"net/http"

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

// evidenceField is the multipart field that carries claim evidence
const evidenceField = "files"

// ClaimController handles ownership claims
type ClaimController struct {
	claimService  *services.ClaimService
	maxUploadSize int64
	logger        zerolog.Logger
}

// NewClaimController creates a new ClaimController
func NewClaimController(claimService *services.ClaimService, maxUploadSize int64, logger zerolog.Logger) *ClaimController {
	if maxUploadSize <= 0 {
		maxUploadSize = filestorage.MaxUploadSize
	}
	return &ClaimController{
		claimService:  claimService,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// Submit files a claim on a found item
// @Summary Claim a found item
// @Description Multipart form with itemId, itemType, explanation and one to five evidence files (jpeg, png or pdf)
// @Tags claims
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param itemId formData string true "Item ID"
// @Param itemType formData string true "Item kind" Enums(found)
// @Param explanation formData string true "Why the item is yours, at least 20 characters"
// @Param files formData file true "Evidence files"
// @Success 201 {object} dto.APIResponse{data=dto.ClaimResponse}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 422 {object} dto.APIResponse{error=dto.ErrorDetail} "The item cannot be claimed"
// @Router /claims [post]
func (c *ClaimController) Submit(ctx *gin.Context) {
	var req dto.ClaimRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleAPIError(ctx, middleware.BindingError(err))
		return
	}
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("The claim is incomplete").
			WithDetails(map[string]interface{}{"itemId": "itemId must be a valid UUID"}))
		return
	}

	evidence, err := c.readEvidence(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	claim, err := c.claimService.SubmitClaim(ctx.Request.Context(), middleware.GetPrincipal(ctx), services.ClaimInput{
		ItemID:      itemID,
		ItemType:    models.ItemKind(req.ItemType),
		Explanation: req.Explanation,
	}, evidence)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.FromClaim(claim), "Claim submitted for review"))
}

// readEvidence validates every evidence file before anything is stored
func (c *ClaimController) readEvidence(ctx *gin.Context) ([]*filestorage.Upload, error) {
	if !isMultipart(ctx) {
		return nil, nil
	}
	form, err := ctx.MultipartForm()
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid multipart request")
	}
	headers := form.File[evidenceField]
	if len(headers) > services.MaxEvidenceFiles {
		// the service reports the limit; skip reading the surplus
		headers = headers[:services.MaxEvidenceFiles+1]
	}
	uploads := make([]*filestorage.Upload, 0, len(headers))
	for _, fh := range headers {
		upload, err := filestorage.FromFileHeader(fh, filestorage.EvidenceTypes, c.maxUploadSize)
		if err != nil {
			return nil, withField(err, evidenceField)
		}
		uploads = append(uploads, upload)
	}
	return uploads, nil
}

// Get returns a claim to its claimant or an admin
// @Summary Get a claim
// @Tags claims
// @Produce json
// @Security BearerAuth
// @Param id path string true "Claim ID"
// @Success 200 {object} dto.APIResponse{data=dto.ClaimResponse}
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /claims/{id} [get]
func (c *ClaimController) Get(ctx *gin.Context) {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	claim, err := c.claimService.Get(ctx.Request.Context(), middleware.GetPrincipal(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromClaim(claim), ""))
}

// ListMine returns the caller's claims
// @Summary My claims
// @Tags me
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=[]dto.ClaimResponse,pagination=dto.PaginationInfo}
// @Router /me/claims [get]
func (c *ClaimController) ListMine(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	result, err := c.claimService.ListMine(ctx.Request.Context(), middleware.GetPrincipal(ctx), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPagedResponse(dto.FromClaims(result.Items), pagination(result)))
}

// ListForReview returns the claim queue
// @Summary Claim queue
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Claim status" Enums(pending, approved, rejected)
// @Param itemId query string false "Only claims on this item"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=[]dto.ClaimResponse,pagination=dto.PaginationInfo}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /admin/claims [get]
func (c *ClaimController) ListForReview(ctx *gin.Context) {
	var filter dto.ClaimFilterRequest
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		middleware.HandleAPIError(ctx, middleware.BindingError(err))
		return
	}
	var status *models.ClaimStatus
	if filter.Status != "" {
		s := models.ClaimStatus(filter.Status)
		status = &s
	}
	var itemID *uuid.UUID
	if filter.ItemID != "" {
		id := uuid.MustParse(filter.ItemID)
		itemID = &id
	}
	page, size := helpers.ParsePaginationParams(ctx)

	result, err := c.claimService.ListForReview(ctx.Request.Context(), middleware.GetPrincipal(ctx), status, itemID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPagedResponse(dto.FromClaims(result.Items), pagination(result)))
}

type claimDecision func(ctx *gin.Context, id uuid.UUID, note *string) (*services.ClaimResult, error)

func (c *ClaimController) decide(ctx *gin.Context, message string, decision claimDecision) {
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

	result, err := decision(ctx, id, note)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromClaim(result.Claim), message).WithWarnings(result.Warnings))
}

// Approve accepts a pending claim and marks the item claimed
// @Summary Approve a claim
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Claim ID"
// @Param request body dto.ModerationRequest false "Optional note"
// @Success 200 {object} dto.APIResponse{data=dto.ClaimResponse}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 409 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /admin/claims/{id}/approve [post]
func (c *ClaimController) Approve(ctx *gin.Context) {
	c.decide(ctx, "Claim approved", func(ctx *gin.Context, id uuid.UUID, note *string) (*services.ClaimResult, error) {
		return c.claimService.ApproveClaim(ctx.Request.Context(), middleware.GetPrincipal(ctx), id, note)
	})
}

// Reject declines a pending claim
// @Summary Reject a claim
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Claim ID"
// @Param request body dto.ModerationRequest false "Optional reason"
// @Success 200 {object} dto.APIResponse{data=dto.ClaimResponse}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 409 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /admin/claims/{id}/reject [post]
func (c *ClaimController) Reject(ctx *gin.Context) {
	c.decide(ctx, "Claim rejected", func(ctx *gin.Context, id uuid.UUID, note *string) (*services.ClaimResult, error) {
		return c.claimService.RejectClaim(ctx.Request.Context(), middleware.GetPrincipal(ctx), id, note)
	})
}
