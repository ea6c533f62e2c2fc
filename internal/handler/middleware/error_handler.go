package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/makkenzo/content-cms-api/internal/handler/dto"
	"github.com/makkenzo/content-cms-api/internal/ierr"
	"go.uber.org/zap"
)

type errorClass struct {
	target  error
	status  int
	code    string
	message string
}

// errorClasses is ordered from the most to the least specific sentinel. An empty message means
// the error text itself is shown.
var errorClasses = []errorClass{
	{ierr.ErrValidation, http.StatusBadRequest, "VALIDATION_ERROR", ""},
	{ierr.ErrMissingCredential, http.StatusUnauthorized, "MISSING_CREDENTIAL", "Authentication required."},
	{ierr.ErrMalformedCredential, http.StatusUnauthorized, "MALFORMED_CREDENTIAL", "Malformed credential."},
	{ierr.ErrCredentialNotFound, http.StatusUnauthorized, "INVALID_CREDENTIAL", "Invalid credential."},
	{ierr.ErrCredentialInactive, http.StatusUnauthorized, "CREDENTIAL_INACTIVE", "Credential is inactive."},
	{ierr.ErrCredentialExpired, http.StatusUnauthorized, "CREDENTIAL_EXPIRED", "Credential has expired."},
	{ierr.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required or failed."},
	{ierr.ErrInsufficientScope, http.StatusForbidden, "INSUFFICIENT_SCOPE", "Credential does not have the required scope."},
	{ierr.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "Access denied."},
	{ierr.ErrNotFound, http.StatusNotFound, "NOT_FOUND", "The requested resource was not found."},
	{ierr.ErrSlugExhausted, http.StatusConflict, "SLUG_EXHAUSTED", ""},
	{ierr.ErrSlugTaken, http.StatusConflict, "SLUG_TAKEN", ""},
	{ierr.ErrConflict, http.StatusConflict, "CONFLICT", ""},
	{ierr.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests."},
	{ierr.ErrUpstreamStore, http.StatusInternalServerError, "UPSTREAM_STORE_FAILURE", "A data store operation failed."},
}

// ErrorHandlerMiddleware renders the last error pushed with c.Error. Internal error text is only
// shown when exposeInternal is set.
func ErrorHandlerMiddleware(exposeInternal bool, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("ErrorHandler")
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, resp := buildErrorResponse(err, exposeInternal)

		fields := []zap.Field{
			zap.Error(err),
			zap.Int("status", status),
			zap.String("code", resp.Code),
			zap.String("path", c.FullPath()),
		}
		if status >= http.StatusInternalServerError {
			log.Error("Request failed", fields...)
		} else {
			log.Info("Request rejected", fields...)
		}

		c.AbortWithStatusJSON(status, resp)
	}
}

func buildErrorResponse(err error, exposeInternal bool) (int, dto.APIErrorResponse) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return http.StatusBadRequest, dto.APIErrorResponse{
			Error:   "Input validation failed.",
			Code:    "VALIDATION_ERROR",
			Details: buildValidationErrors(ve),
		}
	}

	for _, cls := range errorClasses {
		if !errors.Is(err, cls.target) {
			continue
		}
		resp := dto.APIErrorResponse{Error: cls.message, Code: cls.code}
		if resp.Error == "" || (exposeInternal && cls.status >= http.StatusInternalServerError) {
			resp.Error = err.Error()
		}
		return cls.status, resp
	}

	resp := dto.APIErrorResponse{
		Error: "An unexpected error occurred.",
		Code:  "INTERNAL_ERROR",
	}
	if exposeInternal {
		resp.Error = err.Error()
	}
	return http.StatusInternalServerError, resp
}

func buildValidationErrors(ve validator.ValidationErrors) []dto.FieldError {
	details := make([]dto.FieldError, len(ve))
	for i, fe := range ve {
		details[i] = dto.FieldError{
			Field:   fe.Field(),
			Message: getValidationErrorMsg(fe),
		}
	}
	return details
}

func getValidationErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", fe.Field())
	case "uuid":
		return fmt.Sprintf("Field '%s' must be a valid UUID", fe.Field())
	case "oneof":
		return fmt.Sprintf("Field '%s' must be one of [%s]", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("Field '%s' must be at least %s long", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("Field '%s' must be at most %s long", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("Field '%s' must be greater than or equal to %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("Field '%s' must be less than or equal to %s", fe.Field(), fe.Param())
	case "gt":
		if fe.Param() == "" {
			return fmt.Sprintf("Field '%s' must be in the future", fe.Field())
		}
		return fmt.Sprintf("Field '%s' must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("Field '%s' failed validation on the '%s' tag", fe.Field(), fe.Tag())
	}
}
