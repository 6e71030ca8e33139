package ports

import "context"

// DependencyStatus is the reachability of one backing service.
type DependencyStatus struct {
	Name   string
	Status string
	Error  string
}

// HealthChecker reports the status of every backing service.
type HealthChecker interface {
	Check(ctx context.Context) []DependencyStatus
}
