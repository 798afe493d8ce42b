package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ketan-bobby/skillpulse/internal/cache"
	"github.com/ketan-bobby/skillpulse/internal/repositories"
	"github.com/ketan-bobby/skillpulse/internal/repositories/casdoor"
)

// PostgreSQLRepository implements the aggregate Repository interface.
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.Manager

	assignment repositories.AssignmentRepository
	session    repositories.SessionRepository
	result     repositories.ResultRepository
	catalog    repositories.CatalogRepository
	user       repositories.UserRepository
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	DB            *gorm.DB
	RedisClient   *redis.Client
	CasdoorConfig casdoor.CasdoorConfig
}

// NewPostgreSQLRepository creates the repository aggregate with caching.
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewManager(config.RedisClient)

	return &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cacheManager,
		assignment:   NewAssignmentPostgreSQL(config.DB),
		session:      NewSessionPostgreSQL(config.DB, cacheManager),
		result:       NewResultPostgreSQL(config.DB, cacheManager),
		catalog:      NewCatalogPostgreSQL(config.DB, cacheManager),
		user:         casdoor.NewUserCasdoor(config.CasdoorConfig, config.RedisClient),
	}
}

// newTxScopedRepository builds an aggregate bound to one transaction.
// Tx-scoped repositories bypass the read cache so that reads inside the
// transaction observe uncommitted writes.
func (r *PostgreSQLRepository) newTxScopedRepository(tx *gorm.DB) repositories.Repository {
	return &PostgreSQLRepository{
		db:           tx,
		cacheManager: cache.NewManager(nil),
		assignment:   NewAssignmentPostgreSQL(tx),
		session:      NewSessionPostgreSQL(tx, cache.NewManager(nil)),
		result:       NewResultPostgreSQL(tx, cache.NewManager(nil)),
		catalog:      NewCatalogPostgreSQL(tx, cache.NewManager(nil)),
		user:         r.user,
	}
}

func (r *PostgreSQLRepository) Assignment() repositories.AssignmentRepository { return r.assignment }
func (r *PostgreSQLRepository) Session() repositories.SessionRepository       { return r.session }
func (r *PostgreSQLRepository) Result() repositories.ResultRepository         { return r.result }
func (r *PostgreSQLRepository) Catalog() repositories.CatalogRepository       { return r.catalog }
func (r *PostgreSQLRepository) User() repositories.UserRepository             { return r.user }

func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.newTxScopedRepository(tx))
	})
}

func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql db: %w", err)
	}
	return sqlDB.Close()
}

// ===== REPOSITORY MANAGER =====

type repositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &repositoryManager{config: config}
}

func (m *repositoryManager) Initialize() error {
	if m.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}
	m.repo = NewPostgreSQLRepository(m.config)
	return nil
}

func (m *repositoryManager) GetRepository() repositories.Repository {
	return m.repo
}

func (m *repositoryManager) HealthCheck(ctx context.Context) error {
	if m.repo == nil {
		return fmt.Errorf("repository manager not initialized")
	}
	return m.repo.Ping(ctx)
}

func (m *repositoryManager) Shutdown(ctx context.Context) error {
	if m.repo == nil {
		return nil
	}
	return m.repo.Close()
}
