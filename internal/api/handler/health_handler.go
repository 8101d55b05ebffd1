package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const readinessTimeout = 3 * time.Second

// Check probes one dependency.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// HealthOptions tune the probe responses. Probe errors are always logged
// and only returned to callers when Debug is set.
type HealthOptions struct {
	Debug bool
	Log   zerolog.Logger
}

// HealthHandler serves liveness, readiness and the database status probe.
type HealthHandler struct {
	checks   []Check
	database Check
	dbName   string
	debug    bool
	log      zerolog.Logger
}

// NewHealthHandler builds the probes. database backs /db-status and is also
// part of readiness.
func NewHealthHandler(opts HealthOptions, database Check, dbName string, others ...Check) *HealthHandler {
	return &HealthHandler{
		checks:   append([]Check{database}, others...),
		database: database,
		dbName:   dbName,
		debug:    opts.Debug,
		log:      opts.Log,
	}
}

// failure logs a probe error and returns the text safe to show the caller.
func (h *HealthHandler) failure(name string, err error) string {
	h.log.Warn().Err(err).Str("dependency", name).Msg("health probe failed")
	if !h.debug {
		return ""
	}
	return err.Error()
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

type dbStatusResponse struct {
	Status string `json:"status"`
	DB     string `json:"db,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Liveness confirms the process is alive.
//
// @Summary  Liveness probe
// @Tags     health
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness checks every dependency.
//
// @Summary  Readiness probe
// @Tags     health
// @Produce  json
// @Success  200  {object}  readinessResponse
// @Failure  503  {object}  readinessResponse
// @Router   /health/ready [get]
func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	deps := make(map[string]dependencyStatus, len(h.checks))
	healthy := true
	for _, check := range h.checks {
		if err := check.Probe(ctx); err != nil {
			deps[check.Name] = dependencyStatus{Status: "unhealthy", Error: h.failure(check.Name, err)}
			healthy = false
			continue
		}
		deps[check.Name] = dependencyStatus{Status: "ok"}
	}

	if !healthy {
		return c.JSON(http.StatusServiceUnavailable, readinessResponse{Status: "degraded", Dependencies: deps})
	}
	return c.JSON(http.StatusOK, readinessResponse{Status: "ok", Dependencies: deps})
}

// DBStatus pings the account database.
//
// @Summary  Database status
// @Tags     health
// @Produce  json
// @Success  200  {object}  dbStatusResponse
// @Failure  500  {object}  dbStatusResponse
// @Router   /db-status [get]
func (h *HealthHandler) DBStatus(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	if err := h.database.Probe(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, dbStatusResponse{Status: "disconnected", Error: h.failure(h.database.Name, err)})
	}
	return c.JSON(http.StatusOK, dbStatusResponse{Status: "connected", DB: h.dbName})
}
