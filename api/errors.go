package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/railbooking/railbooking/internal/domain"
)

type errorResponse struct {
	Message string `json:"message"`
}

// writeError maps a service error onto a status code. Unexpected errors
// are logged with the request and reported to the caller as "server error".
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		loggerFrom(c).ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.AbortWithStatusJSON(status, errorResponse{Message: "server error"})
		return
	}
	c.AbortWithStatusJSON(status, errorResponse{Message: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrDuplicateCredential),
		domain.IsPolicyViolation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// bindError turns a binding failure into a validation error naming the
// offending fields.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fieldName(fe))
		}
		return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: malformed request body", domain.ErrValidation)
}

func fieldName(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " required"
	case "gt", "gte", "min":
		return fe.Field() + " must be at least " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

// Report json names in validation errors.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	}
}
