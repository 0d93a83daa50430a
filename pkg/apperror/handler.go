package apperror

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HTTPErrorHandler returns an Echo error handler that renders every error as
// {"error": {"code", "message", "details"?}}.
func HTTPErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		errorObj := map[string]any{
			"code":    "internal_error",
			"message": "An internal error occurred",
		}

		var appErr *Error
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			code = appErr.HTTPStatus
			errorObj["code"] = appErr.Code
			errorObj["message"] = appErr.Message
			if len(appErr.Details) > 0 {
				errorObj["details"] = appErr.Details
			}
		case errors.As(err, &httpErr):
			code = httpErr.Code
			if msg, ok := httpErr.Message.(string); ok {
				errorObj["message"] = msg
				errorObj["code"] = codeForStatus(code)
			}
		}

		if code >= 500 {
			log.Error("request error",
				slog.Int("status", code),
				slog.String("error", err.Error()),
			)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, map[string]any{"error": errorObj})
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_error"
	default:
		return "internal_error"
	}
}
