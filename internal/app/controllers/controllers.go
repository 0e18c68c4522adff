// Package controllers handles HTTP request handling
package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/app/models/dto"
	"github.com/yigit/campusfound/internal/app/services"
	"github.com/yigit/campusfound/internal/pkg/apperrors"
	"github.com/yigit/campusfound/internal/pkg/filestorage"
	"github.com/yigit/campusfound/internal/pkg/helpers"
)

// uuidParam parses a path parameter as a UUID
func uuidParam(ctx *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError(name + " must be a valid UUID").
			WithDetails(map[string]interface{}{name: name + " must be a valid UUID"})
	}
	return id, nil
}

// kindParam parses the :kind path parameter
func kindParam(ctx *gin.Context) (models.ItemKind, error) {
	kind, err := models.ParseItemKind(ctx.Param("kind"))
	if err != nil {
		return "", apperrors.NewValidationError("kind must be one of: lost found").
			WithDetails(map[string]interface{}{"kind": "kind must be one of: lost found"})
	}
	return kind, nil
}

func pagination[T any](page *services.Page[T]) dto.PaginationInfo {
	return helpers.NewPaginationInfo(page.Total, page.Page, page.Size)
}

func isMultipart(ctx *gin.Context) bool {
	return strings.HasPrefix(ctx.ContentType(), "multipart/form-data")
}

// optionalUpload reads an optional file field from a multipart request
func optionalUpload(ctx *gin.Context, field string, allowed []string, maxSize int64) (*filestorage.Upload, error) {
	if !isMultipart(ctx) {
		return nil, nil
	}
	fh, err := ctx.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, apperrors.NewValidationError("Invalid multipart request")
	}
	upload, err := filestorage.FromFileHeader(fh, allowed, maxSize)
	if err != nil {
		return nil, withField(err, field)
	}
	return upload, nil
}

// withField attaches a field name to an upload validation error
func withField(err error, field string) error {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Details == nil {
		custom.WithDetails(map[string]interface{}{field: custom.Message})
	}
	return err
}
