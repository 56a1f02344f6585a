package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"cloudbucket/internal/http/middleware"
	"cloudbucket/internal/service"
)

// errorPayload is the JSON body of every non-2xx response.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiError struct {
	status  int
	code    string
	message string
}

var (
	errInternal     = apiError{fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"}
	errUnauthorized = apiError{fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required"}
	errTooLarge     = apiError{fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds the maximum upload size"}
)

// serviceErrors is checked in order; the first sentinel matched by errors.Is wins.
var serviceErrors = []struct {
	target error
	resp   apiError
}{
	{service.ErrEmptyUpload, apiError{fiber.StatusBadRequest, "EMPTY_UPLOAD", "file is empty or has no name"}},
	{service.ErrInvalidFilename, apiError{fiber.StatusBadRequest, "INVALID_FILENAME", "invalid filename"}},
	{service.ErrIDRequired, apiError{fiber.StatusBadRequest, "INVALID_ID", "invalid id format"}},
	{service.ErrSizeLimitExceeded, errTooLarge},
	{service.ErrOwnerRequired, errUnauthorized},
	{service.ErrForbidden, apiError{fiber.StatusForbidden, "FORBIDDEN", "access to this file is not allowed"}},
	{service.ErrFileNotFound, apiError{fiber.StatusNotFound, "NOT_FOUND", "file not found"}},
	{service.ErrPersistence, apiError{fiber.StatusServiceUnavailable, "PERSISTENCE_UNAVAILABLE", "file metadata is temporarily unavailable, retry the request"}},
}

// writeError writes the error envelope. message must be safe to show a client.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	rid, _ := c.Locals(middleware.RequestIDLocalKey).(string)
	return c.Status(status).JSON(errorPayload{
		RequestID: rid,
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

func (e apiError) write(c *fiber.Ctx) error {
	return writeError(c, e.status, e.code, e.message)
}

// writeServiceError translates service errors into responses. Storage paths and
// backend messages never reach the client.
func writeServiceError(c *fiber.Ctx, err error) error {
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			return m.resp.write(c)
		}
	}
	return errInternal.write(c)
}

// ErrorHandler is the app-wide fiber.ErrorHandler for errors that escape handlers,
// such as routing misses and body limit rejections.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if !errors.As(err, &fe) {
			return errInternal.write(c)
		}

		switch fe.Code {
		case fiber.StatusBadRequest:
			return writeError(c, fe.Code, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return errUnauthorized.write(c)
		case fiber.StatusNotFound:
			return writeError(c, fe.Code, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, fe.Code, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return errTooLarge.write(c)
		default:
			return writeError(c, fe.Code, "INTERNAL_ERROR", "internal server error")
		}
	}
}
