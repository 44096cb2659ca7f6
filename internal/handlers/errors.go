package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/identity"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders every error returned by a handler. Messages of
// unclassified 5xx errors are hidden; exposeDetail adds the underlying cause.
func ErrorHandler(exposeDetail bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := apperr.Status(err)
		message := err.Error()

		var fe *fiber.Error
		var ae *apperr.Error
		switch {
		case errors.As(err, &fe):
			code = fe.Code
			message = fe.Message
		case errors.As(err, &ae):
			message = ae.Error()
		case code >= fiber.StatusInternalServerError:
			message = "Internal server error"
		}

		resp := dto.ErrorResponse{Error: true, Message: message}
		if code >= fiber.StatusInternalServerError {
			attrs := []any{
				"method", c.Method(),
				"path", c.Path(),
				"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
				"error", err.Error(),
			}
			if userID, idErr := identity.GetUserID(c); idErr == nil {
				attrs = append(attrs, "user_id", userID.String())
			}
			slog.Error("request failed", attrs...)
			if exposeDetail {
				resp.Detail = detail(err)
			}
		}

		return c.Status(code).JSON(resp)
	}
}

func detail(err error) string {
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Cause != nil {
		return ae.Cause.Error()
	}
	return err.Error()
}

func badRequest(msg string) error {
	return apperr.Validation(msg)
}
