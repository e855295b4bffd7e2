// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/anirate/internal/platform/constants"
	"github.com/taibuivan/anirate/internal/platform/respond"
)

// probeTimeout bounds each readiness check.
const probeTimeout = 2 * time.Second

// Probe is one named readiness check.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// Warning is a readiness note that does not fail the probe.
//
// The catalog token and signing keys are optional at boot; their absence is
// reported here so operators see it before the first request fails.
type Warning struct {
	Name    string
	Missing bool
}

type healthHandler struct {
	probes   []Probe
	warnings []Warning
	logger   *slog.Logger
}

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// NewHealthHandlers creates the /health and /ready http.HandlerFuncs.
func NewHealthHandlers(probes []Probe, warnings []Warning, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{probes: probes, warnings: warnings, logger: logger}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health.
func (handler *healthHandler) liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{constants.FieldStatus: "ok"})
}

// readiness handles GET /ready.
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	results := make([]checkResult, 0, len(handler.probes))
	isSystemReady := true

	for _, probe := range handler.probes {
		ctx, cancel := context.WithTimeout(request.Context(), probeTimeout)
		err := probe.Check(ctx)
		cancel()

		result := checkResult{Name: probe.Name, IsOK: err == nil}
		if err != nil {
			result.Error = err.Error()
			isSystemReady = false
			handler.logger.Error("readiness_check_failed", slog.String("dependency", probe.Name), slog.Any("error", err))
		}
		results = append(results, result)
	}

	missing := make([]string, 0)
	for _, warning := range handler.warnings {
		if warning.Missing {
			missing = append(missing, warning.Name)
		}
	}

	responseStatus := "ready"
	httpStatus := http.StatusOK
	if !isSystemReady {
		responseStatus = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	respond.JSON(writer, httpStatus, map[string]any{
		constants.FieldStatus: responseStatus,
		constants.FieldChecks: results,
		"unconfigured":        missing,
	})
}
