package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yigit/campusfound/internal/app/models/dto"
	"github.com/yigit/campusfound/internal/pkg/apperrors"
	"github.com/yigit/campusfound/internal/pkg/validation"
)

// RegisterBindingValidators makes gin's binding engine report JSON field names and
// understand the custom validation tags
func RegisterBindingValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	return validation.Configure(v)
}

// BindingError converts a request binding failure into a ValidationError
func BindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return validation.FromValidationErrors(verrs)
	}
	return apperrors.NewValidationError("Invalid request format")
}

// NoRoute answers unknown paths in the API envelope
func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Route not found")))
}
