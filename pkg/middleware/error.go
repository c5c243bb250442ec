package middleware

import (
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/LazyDev-01/dayliz-allocation/pkg/context"
	"github.com/LazyDev-01/dayliz-allocation/pkg/models"
	"github.com/LazyDev-01/dayliz-allocation/pkg/tracing"
)

type ErrorResponse struct {
	Message   string         `json:"message"`
	RequestID string         `json:"request_id"`
	TraceID   string         `json:"trace_id"`
	Meta      map[string]any `json:"meta"`
}

func Error(logger ectologger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		ctx := c.Request().Context()
		logger.WithContext(ctx).WithError(err).Error("api is returning an error")
		if c.Response().Committed {
			return
		}

		// Default response
		code := http.StatusInternalServerError
		message := "Internal Server Error"
		meta := map[string]any{}

		// Handle specific Echo errors
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if msg, ok := he.Message.(string); ok {
				message = msg
			}
		}

		// Allocation error taxonomy. Duplicates are admin validation
		// failures; invalid modes and stock levels are rejected writes;
		// a missing configuration key is a deployment fault.
		switch {
		case errors.Is(err, models.ErrDuplicateRule), errors.Is(err, models.ErrDuplicateAssignment):
			code = http.StatusConflict
			message = err.Error()
		case errors.Is(err, models.ErrInvalidMode), errors.Is(err, models.ErrInvalidVendorKind),
			errors.Is(err, models.ErrInvalidStockLevels):
			code = http.StatusUnprocessableEntity
			message = err.Error()
		case errors.Is(err, models.ErrConfigurationMissing):
			code = http.StatusInternalServerError
			message = err.Error()
		}

		if ok := httperror.IsHTTPError(err); ok {
			httperr := httperror.ToHTTPError(err)
			code = httperror.GetStatusCode(err)
			message = httperr.Error()
			meta = httperr.Meta
		}
		requestID := context.GetRequestID(ctx)
		traceID := tracing.GetTraceID(ctx)

		_ = c.JSON(code, ErrorResponse{
			Message:   message,
			RequestID: requestID,
			TraceID:   traceID,
			Meta:      meta,
		})
	}
}
