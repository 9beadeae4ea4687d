package observability

import "context"

// HealthStatus is the health of a backend or of the whole service.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health describes one backend.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// ServiceHealth is the /health payload.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// HealthChecker is implemented by adapters that can report backend health
// without a network call.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// NewServiceHealth returns an "up" ServiceHealth.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{Service: service, Status: HealthStatusUp, Version: version}
}

// AddComponent appends h. One unhealthy backend only degrades the service,
// since the others can still serve requests.
func (sh *ServiceHealth) AddComponent(h Health) {
	sh.Components = append(sh.Components, h)
	if h.Status != HealthStatusUp && sh.Status == HealthStatusUp {
		sh.Status = HealthStatusDegraded
	}
}
