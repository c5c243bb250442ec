package middleware

import (
	"net/http"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	appctx "github.com/LazyDev-01/dayliz-allocation/pkg/context"
)

// Logger emits one structured line per request. Runs inside Context, so the
// request id is already on the context.
func Logger(logger ectologger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			req := c.Request()
			res := c.Response()
			start := time.Now()
			if err = next(c); err != nil {
				c.Error(err)
			}

			ctx := c.Request().Context()
			log := logger.WithContext(ctx).WithFields(map[string]interface{}{
				"request_id":    appctx.GetRequestID(ctx),
				"method":        req.Method,
				"uri":           req.RequestURI,
				"route":         c.Path(),
				"status":        res.Status,
				"remote_ip":     c.RealIP(),
				"host":          req.Host,
				"user_agent":    req.UserAgent(),
				"latency_ms":    time.Since(start).Milliseconds(),
				"response_size": res.Size,
			})

			if res.Status >= http.StatusInternalServerError {
				log.Error("Request")
			} else {
				log.Info("Request")
			}

			return nil
		}
	}
}
