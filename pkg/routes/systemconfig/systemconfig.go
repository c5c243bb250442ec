package systemconfig

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/LazyDev-01/dayliz-allocation/internal/repositories/systemconfig"
	"github.com/LazyDev-01/dayliz-allocation/pkg/events"
	"github.com/LazyDev-01/dayliz-allocation/pkg/metrics"
	"github.com/LazyDev-01/dayliz-allocation/pkg/models"
	"github.com/LazyDev-01/dayliz-allocation/pkg/tracing"
)

var validate = validator.New()

// Register registers system configuration routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.PUT("", Upsert)
	g.GET("/mode", GetModeStatus)
	g.PUT("/mode", SwitchMode)
}

// List returns all active configuration rows
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "systemconfig_handler.List")
	defer span.End()

	ctx, repo, err := ectoinject.GetContext[*systemconfig.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	configs, err := repo.List(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, configs)
}

// Upsert sets a configuration key
func Upsert(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "systemconfig_handler.Upsert")
	defer span.End()

	var req models.UpsertConfigurationRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// The mode key has a dedicated endpoint that keeps its dependent flags
	// consistent; writing it raw would bypass that.
	if req.Key == models.ConfigKeyOperationalMode {
		return httperror.NewHTTPError(http.StatusBadRequest, "operational_mode must be changed through the mode endpoint")
	}

	ctx, repo, err := ectoinject.GetContext[*systemconfig.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	cfg, err := repo.Upsert(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cfg)
}

// GetModeStatus returns the operational mode and its dependent flags
func GetModeStatus(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "systemconfig_handler.GetModeStatus")
	defer span.End()

	ctx, repo, err := ectoinject.GetContext[*systemconfig.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	status, err := repo.GetModeStatus(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, status)
}

// SwitchMode validates and applies a new operational mode
func SwitchMode(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "systemconfig_handler.SwitchMode")
	defer span.End()

	var req models.SwitchModeRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	mode, err := models.ParseOperationalMode(req.Mode)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*systemconfig.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	if err := repo.SwitchOperationalMode(ctx, mode); err != nil {
		return err
	}
	metrics.ModeSwitchesTotal.WithLabelValues(string(mode)).Inc()

	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil {
		_ = emitter.EmitModeSwitched(ctx, mode)
	}

	status, err := repo.GetModeStatus(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, status)
}
