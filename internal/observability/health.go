package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker reports whether the service can reach its database
type HealthChecker struct {
	db      Pinger
	service string
}

func NewHealthChecker(db Pinger, service string) *HealthChecker {
	return &HealthChecker{db: db, service: service}
}

type HealthStatus struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Check pings the database with a short deadline
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := HealthStatus{
		Status:    StatusHealthy,
		Service:   h.service,
		Database:  StatusHealthy,
		Timestamp: time.Now().UTC(),
	}
	if err := h.db.Ping(ctx); err != nil {
		status.Status = StatusUnhealthy
		status.Database = err.Error()
	}
	return status
}

// ServeHTTP answers 200 when healthy and 503 otherwise
func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := h.Check(r.Context())

	code := http.StatusOK
	if status.Status != StatusHealthy {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}
