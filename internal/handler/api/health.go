package api

import (
	"net/http"
	"time"

	xhttp "ChainSight/pkg/http"

	"github.com/labstack/echo/v4"
)

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck func() error

// HealthHandler reports liveness plus the state of registered dependencies.
type HealthHandler struct {
	checks map[string]HealthCheck
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
}

func (h *HealthHandler) Health(c echo.Context) error {
	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	return xhttp.DataResponse(c, status, map[string]interface{}{
		"status":       http.StatusText(status),
		"time":         time.Now().UTC().Format(time.RFC3339),
		"dependencies": deps,
	})
}
