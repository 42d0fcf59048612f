package rest

import (
	"github.com/gofiber/fiber/v2"
	pkgerrors "github.com/pkg/errors"

	"github.com/Satyam-Vyas/order-book/pkg/errors"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Code    string              `json:"code"`
	Details map[string][]string `json:"details,omitempty"`
}

// statusOf maps an error code in err's chain to an HTTP status.
func statusOf(err error) int {
	switch {
	case errors.HasCode(err, errors.OrderValidationError), errors.HasCode(err, errors.GeneralBadRequestError):
		return fiber.StatusBadRequest
	case errors.HasCode(err, errors.GeneralUnauthorizedError):
		return fiber.StatusUnauthorized
	case errors.HasCode(err, errors.ConcurrencyConflictError):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError renders err. Internal failures never leak their message.
func writeError(c *fiber.Ctx, err error) error {
	status := statusOf(err)
	body := ErrorResponse{Code: string(errors.Code(err))}

	switch status {
	case fiber.StatusBadRequest:
		body.Error = "invalid request"
		var base *errors.BaseError
		if pkgerrors.As(err, &base) {
			body.Details = base.FieldMessages()
		} else {
			body.Error = err.Error()
		}
	case fiber.StatusUnauthorized:
		body.Error = err.Error()
	case fiber.StatusConflict:
		body.Error = "order book is busy, retry the submission"
	default:
		body.Code = string(errors.GeneralInternalServerError)
		body.Error = "internal server error"
	}

	return c.Status(status).JSON(body)
}

func badRequest(message, field string) error {
	return errors.NewErrorDetails(message, string(errors.GeneralBadRequestError), field)
}
