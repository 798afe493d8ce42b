package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ketan-bobby/skillpulse/internal/ai"
	"github.com/ketan-bobby/skillpulse/internal/events"
	"github.com/ketan-bobby/skillpulse/internal/repositories"
	"github.com/ketan-bobby/skillpulse/internal/validator"
)

// ServiceManager owns the lifecycle of every service instance.
type ServiceManager interface {
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error

	Assignment() AssignmentService
	Session() SessionService
	Result() ResultService
	Report() ReportService
}

// ServiceManagerConfig holds configuration for the service manager.
type ServiceManagerConfig struct {
	DefaultTimeout time.Duration
	LogLevel       slog.Level

	// AIProviders is the ordered narrative fallback chain; empty disables
	// AI narratives entirely.
	AIProviders []ai.Provider
}

type serviceManager struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	assignmentService AssignmentService
	sessionService    SessionService
	resultService     ResultService
	reportService     ReportService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

func NewServiceManager(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator, config ServiceManagerConfig) ServiceManager {
	if config.DefaultTimeout <= 0 {
		config.DefaultTimeout = 30 * time.Second
	}
	return &serviceManager{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		config:    config,
	}
}

// Initialize wires every service and verifies the stack is reachable.
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	narrative := NewNarrativeService(sm.config.AIProviders, sm.logger)

	sm.assignmentService = NewAssignmentService(sm.repo, sm.logger, sm.validator)
	sm.sessionService = NewSessionService(sm.repo, sm.publisher, sm.logger, sm.validator)
	sm.resultService = NewResultService(sm.repo, sm.publisher, narrative, sm.logger, sm.validator)
	sm.reportService = NewReportService(sm.repo, sm.logger)

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository ping failed: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized",
		"ai_providers", len(sm.config.AIProviders))
	return nil
}

// ===== SERVICE GETTERS =====

func (sm *serviceManager) Assignment() AssignmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.assignmentService
}

func (sm *serviceManager) Session() SessionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.sessionService
}

func (sm *serviceManager) Result() ResultService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.resultService
}

func (sm *serviceManager) Report() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.reportService
}

// ===== LIFECYCLE =====

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.publisher != nil {
		if err := sm.publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}
	if err := sm.repo.Close(); err != nil {
		sm.logger.Error("Failed to close repository", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down")
	return nil
}

// WithTimeout creates a context bounded by the configured default timeout.
func (sm *serviceManager) WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, sm.config.DefaultTimeout)
}
