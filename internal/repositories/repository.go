package repositories

import "context"

// Repository aggregates the per-entity repositories.
type Repository interface {
	Assignment() AssignmentRepository
	Session() SessionRepository
	Result() ResultRepository

	// Catalog is read-only from the assessment core's point of view.
	Catalog() CatalogRepository

	// User domain (employee directory, read-only)
	User() UserRepository

	// WithTransaction runs fn against a transaction-scoped Repository.
	// Every write inside fn commits or rolls back atomically.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
