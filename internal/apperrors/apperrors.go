package apperrors

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/database"
)

// Code is a stable machine-readable error code. Codes never change once a
// client depends on them; raw store error text never reaches the client.
type Code string

const (
	CodeValidation             Code = "VALIDATION_ERROR"
	CodeInvalidInput           Code = "INVALID_INPUT"
	CodeAuthentication         Code = "AUTHENTICATION_ERROR"
	CodeAuthorization          Code = "AUTHORIZATION_ERROR"
	CodePermissionDenied       Code = "PERMISSION_DENIED"
	CodeNotFound               Code = "NOT_FOUND_ERROR"
	CodeConflict               Code = "CONFLICT_ERROR"
	CodeConcurrentModification Code = "CONCURRENT_MODIFICATION"
	CodeDependencyConstraint   Code = "DEPENDENCY_CONSTRAINT"
	CodeDatabaseLocked         Code = "DATABASE_LOCKED"
	CodeRateLimit              Code = "RATE_LIMIT_ERROR"
	CodeDatabase               Code = "DATABASE_ERROR"
	CodeExternalService        Code = "EXTERNAL_SERVICE_ERROR"
	CodeInternal               Code = "INTERNAL_ERROR"
)

// Error is a typed application error carrying the HTTP status and the stable
// code the envelope exposes.
type Error struct {
	Code    Code
	Message string
	Status  int
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetails attaches structured details (e.g. a row-level error list for
// batch operations) and returns the error for chaining.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Status: fiber.StatusBadRequest}
}

func InvalidInput(msg string) *Error {
	return &Error{Code: CodeInvalidInput, Message: msg, Status: fiber.StatusBadRequest}
}

func Unauthorized(msg string) *Error {
	return &Error{Code: CodeAuthentication, Message: msg, Status: fiber.StatusUnauthorized}
}

func Forbidden(msg string) *Error {
	return &Error{Code: CodeAuthorization, Message: msg, Status: fiber.StatusForbidden}
}

func PermissionDenied(msg string) *Error {
	return &Error{Code: CodePermissionDenied, Message: msg, Status: fiber.StatusForbidden}
}

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg, Status: fiber.StatusNotFound}
}

func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg, Status: fiber.StatusConflict}
}

func ConcurrentModification(msg string) *Error {
	return &Error{Code: CodeConcurrentModification, Message: msg, Status: fiber.StatusConflict}
}

func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: "Internal server error", Status: fiber.StatusInternalServerError, Err: err}
}

func ExternalService(msg string, err error) *Error {
	return &Error{Code: CodeExternalService, Message: msg, Status: fiber.StatusBadGateway, Err: err}
}

// FromStore classifies a store-level failure at the façade boundary:
// busy/lock errors become retryable 409s, constraint violations become
// dependency conflicts, everything else is a generic database error.
func FromStore(err error) *Error {
	switch {
	case database.IsBusy(err):
		return &Error{
			Code:    CodeDatabaseLocked,
			Message: "The database is busy, please retry",
			Status:  fiber.StatusConflict,
			Details: fiber.Map{"retryable": true},
			Err:     err,
		}
	case database.IsConstraint(err):
		return &Error{
			Code:    CodeDependencyConstraint,
			Message: "The operation violates a data dependency",
			Status:  fiber.StatusConflict,
			Err:     err,
		}
	default:
		return &Error{
			Code:    CodeDatabase,
			Message: "A database error occurred",
			Status:  fiber.StatusInternalServerError,
			Err:     err,
		}
	}
}

// envelope is the stable JSON error shape.
type envelope struct {
	Error envelopeBody `json:"error"`
}

type envelopeBody struct {
	Message   string `json:"message"`
	Code      Code   `json:"code"`
	Timestamp string `json:"timestamp"`
	Details   any    `json:"details,omitempty"`
}

// ErrorHandler is the Fiber error handler rendering the error envelope.
// Unclassified errors become a production-safe 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *Error
	if errors.As(err, &appErr) {
		if appErr.Err != nil {
			log.Printf("❌ [%s] %s %s: %v", appErr.Code, c.Method(), c.Path(), appErr.Err)
		}
		return c.Status(appErr.Status).JSON(envelope{Error: envelopeBody{
			Message:   appErr.Message,
			Code:      appErr.Code,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Details:   appErr.Details,
		}})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := CodeInternal
		switch fiberErr.Code {
		case fiber.StatusBadRequest:
			code = CodeValidation
		case fiber.StatusUnauthorized:
			code = CodeAuthentication
		case fiber.StatusForbidden:
			code = CodeAuthorization
		case fiber.StatusNotFound:
			code = CodeNotFound
		case fiber.StatusTooManyRequests:
			code = CodeRateLimit
		}
		return c.Status(fiberErr.Code).JSON(envelope{Error: envelopeBody{
			Message:   fiberErr.Message,
			Code:      code,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}})
	}

	log.Printf("❌ [UNHANDLED] %s %s: %v", c.Method(), c.Path(), err)

	message := "Internal server error"
	if os.Getenv("ENVIRONMENT") != "production" {
		message = err.Error()
	}

	return c.Status(fiber.StatusInternalServerError).JSON(envelope{Error: envelopeBody{
		Message:   message,
		Code:      CodeInternal,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}})
}
