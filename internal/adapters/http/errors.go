package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// APIError is the JSON body of every error response.
type APIError struct {
	Error     string `json:"error"`            // short code, e.g. "missing place"
	Detail    string `json:"detail,omitempty"` // failure description for upstream errors
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code, detail string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Error:     code,
		Detail:    detail,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, code string) error {
	return newError(c, fiber.StatusBadRequest, code, "")
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, code string) error {
	return newError(c, fiber.StatusNotFound, code, "")
}

// errUpstream returns a 500 error carrying the upstream failure.
func errUpstream(c *fiber.Ctx, code string, cause error) error {
	return newError(c, fiber.StatusInternalServerError, code, cause.Error())
}

// ErrorHandler renders errors that escape handlers (unknown routes, timeouts,
// panics caught by recover) as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	code := "internal error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		code = fe.Message
	}
	return newError(c, status, code, "")
}
