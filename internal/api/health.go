// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/wayneaws/studenthub/internal/platform/respond"
)

// readinessTimeout bounds every dependency ping of a single /ready call.
const readinessTimeout = 2 * time.Second

// HealthCheck pings one dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type readinessReport struct {
	Status string        `json:"status"`
	Checks []checkResult `json:"checks"`
}

type healthHandler struct {
	checks []HealthCheck
	logger *slog.Logger
}

// NewHealthHandlers creates the /health and /ready handlers. Checks run in
// the given order; a nil Check is skipped.
func NewHealthHandlers(logger *slog.Logger, checks ...HealthCheck) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{checks: checks, logger: logger}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health.
func (handler *healthHandler) liveness(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, map[string]string{"status": "ok"})
}

// readiness handles GET /ready.
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), readinessTimeout)
	defer cancel()

	report := readinessReport{Status: "ready", Checks: make([]checkResult, 0, len(handler.checks))}
	status := http.StatusOK

	for _, check := range handler.checks {
		if check.Check == nil {
			continue
		}

		result := checkResult{Name: check.Name, IsOK: true}
		if err := check.Check(ctx); err != nil {
			result.IsOK = false
			result.Error = err.Error()
			report.Status = "degraded"
			status = http.StatusServiceUnavailable
			handler.logger.ErrorContext(ctx, "readiness_check_failed",
				slog.String("dependency", check.Name),
				slog.Any("error", err),
			)
		}
		report.Checks = append(report.Checks, result)
	}

	respond.JSON(writer, status, respond.SuccessEnvelope{Data: report})
}
