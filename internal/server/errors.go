package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	authdomain "github.com/neoledsrlbolivia/neopos/internal/auth/domain"
	"github.com/neoledsrlbolivia/neopos/internal/authorization"
	carouseldomain "github.com/neoledsrlbolivia/neopos/internal/carousel/domain"
	cashdomain "github.com/neoledsrlbolivia/neopos/internal/cashdrawer/domain"
	catalogdomain "github.com/neoledsrlbolivia/neopos/internal/catalog/domain"
	quotationdomain "github.com/neoledsrlbolivia/neopos/internal/quotation/domain"
	saledomain "github.com/neoledsrlbolivia/neopos/internal/sale/domain"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not_found")
	ErrTooMany      = errors.New("too_many_requests")
)

// APIError is the wire shape of a request failure.
type APIError struct {
	Status  int          `json:"-"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return e.Code }

func invalidRequestError() *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "invalid_request",
		Message: "request body could not be parsed",
	}
}

func newValidationError(field, code, message string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "validation_failed",
		Message: "request validation failed",
		Fields:  []FieldError{{Field: field, Code: code, Message: message}},
	}
}

// bindError turns a gin binding failure into the validation envelope,
// listing each offending field and the rule it broke. Non-validator
// failures (malformed JSON) fall back to the generic parse error.
func bindError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return invalidRequestError()
	}

	apiErr := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "validation_failed",
		Message: "request validation failed",
	}
	for _, fieldErr := range validationErrs {
		apiErr.Fields = append(apiErr.Fields, FieldError{
			Field:   fieldErr.Field(),
			Code:    fieldErr.Tag(),
			Message: "failed on the '" + fieldErr.Tag() + "' rule",
		})
	}
	return apiErr
}

// AbortWithError maps service errors onto HTTP statuses and writes the
// error envelope.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
		return
	}

	status := http.StatusInternalServerError
	code := "internal_error"

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession):
		status = http.StatusUnauthorized
		code = err.Error()
	case errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, authorization.ErrInvalidRole):
		status = http.StatusForbidden
		code = err.Error()
	case errors.Is(err, ErrTooMany):
		status = http.StatusTooManyRequests
		code = err.Error()
	case errors.Is(err, ErrNotFound),
		errors.Is(err, quotationdomain.ErrNotFound),
		errors.Is(err, catalogdomain.ErrProductNotFound),
		errors.Is(err, catalogdomain.ErrVariantNotFound),
		errors.Is(err, saledomain.ErrNotFound),
		errors.Is(err, cashdomain.ErrSessionNotFound),
		errors.Is(err, cashdomain.ErrNoOpenSession),
		errors.Is(err, carouseldomain.ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound):
		status = http.StatusNotFound
		code = err.Error()
	case errors.Is(err, saledomain.ErrInsufficientStock),
		errors.Is(err, catalogdomain.ErrInsufficientStock),
		errors.Is(err, quotationdomain.ErrNotPending),
		errors.Is(err, cashdomain.ErrSessionAlreadyOpen),
		errors.Is(err, cashdomain.ErrSessionClosed),
		errors.Is(err, authdomain.ErrUsernameTaken):
		status = http.StatusConflict
		code = err.Error()
	case errors.Is(err, quotationdomain.ErrInvalidID),
		errors.Is(err, quotationdomain.ErrInvalidCustomer),
		errors.Is(err, quotationdomain.ErrInvalidPaymentTerm),
		errors.Is(err, quotationdomain.ErrInvalidItems),
		errors.Is(err, quotationdomain.ErrInvalidDiscount),
		errors.Is(err, catalogdomain.ErrInvalidID),
		errors.Is(err, catalogdomain.ErrInvalidProduct),
		errors.Is(err, catalogdomain.ErrInvalidVariant),
		errors.Is(err, catalogdomain.ErrInvalidAttribute),
		errors.Is(err, saledomain.ErrInvalidID),
		errors.Is(err, saledomain.ErrInvalidPayment),
		errors.Is(err, saledomain.ErrInvalidItems),
		errors.Is(err, cashdomain.ErrInvalidID),
		errors.Is(err, cashdomain.ErrInvalidMovement),
		errors.Is(err, cashdomain.ErrInvalidAmount),
		errors.Is(err, carouseldomain.ErrInvalidID),
		errors.Is(err, carouseldomain.ErrInvalidSlot),
		errors.Is(err, carouseldomain.ErrInvalidOrder),
		errors.Is(err, authdomain.ErrInvalidUser):
		status = http.StatusBadRequest
		code = err.Error()
	}

	c.AbortWithStatusJSON(status, gin.H{"error": &APIError{
		Status:  status,
		Code:    code,
		Message: http.StatusText(status),
	}})
}
