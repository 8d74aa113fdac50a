package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger is satisfied by *sqlx.DB and by the rate-limit store's redis client.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	deps      map[string]Pinger
	StartTime time.Time
	Version   string
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

// NewHealthHandler checks each named dependency; a nil entry reports "not configured".
func NewHealthHandler(version string, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{deps: deps, StartTime: time.Now(), Version: version}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	deps := make(map[string]string, len(h.deps))
	for name, p := range h.deps {
		if p == nil {
			deps[name] = "not configured"
			continue
		}
		if err := p.PingContext(ctx); err != nil {
			deps[name] = "unhealthy: " + err.Error()
			status = "degraded"
			continue
		}
		deps[name] = "healthy"
	}

	code := http.StatusOK
	if status == "degraded" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:       status,
		Version:      h.Version,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	})
}
