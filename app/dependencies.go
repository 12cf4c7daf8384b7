package app

import (
	"context"
	"fmt"

	"github.com/upb/warehouse-api/auth"
	"github.com/upb/warehouse-api/config"
	"github.com/upb/warehouse-api/internal/observability"
	"github.com/upb/warehouse-api/middleware"
	"github.com/upb/warehouse-api/repositories"
	"github.com/upb/warehouse-api/repositories/postgres"
	"github.com/upb/warehouse-api/services"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	DB      *postgres.DB
	Logger  *zap.Logger
	Metrics *observability.Metrics

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Customers repositories.CustomerRepository

	// Auth
	Hasher         *auth.BcryptHasher
	Tokens         *auth.TokenService
	AuthService    *services.AuthService
	AuthMiddleware *middleware.AuthMiddleware
	RoutePolicy    *middleware.RoutePolicy
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories(deps.RepoFactory.NewRepositories())
	deps.initObservability(cfg)
	deps.initAuth(cfg)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// NewDependenciesFromRepositories wires the auth stack over existing repositories
// without opening a database. Readiness reports no database checks.
func NewDependenciesFromRepositories(cfg *config.Config, repos *repositories.Repositories, logger *zap.Logger) *Dependencies {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.initRepositories(repos)
	deps.initObservability(cfg)
	deps.initAuth(cfg)

	return deps
}

// initDatabase initializes the PostgreSQL database connection and factory
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(ctx, cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	if err := d.DB.HealthCheck(ctx); err != nil {
		_ = factory.Close()
		return err
	}

	return nil
}

func (d *Dependencies) initRepositories(repos *repositories.Repositories) {
	d.Customers = repos.Customers
	d.Logger.Info("repositories initialized")
}

func (d *Dependencies) initObservability(cfg *config.Config) {
	if !cfg.Observability.MetricsEnabled {
		d.Logger.Info("metrics disabled")
		return
	}
	d.Metrics = observability.NewMetrics()
}

// initAuth builds the credential issuance and authentication components.
// The signing key is taken from configuration once, here.
func (d *Dependencies) initAuth(cfg *config.Config) {
	d.Hasher = auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	// computed up front so the first unknown-email login is not the slow one
	d.Hasher.DummyHash()
	d.Tokens = auth.NewTokenService(cfg.Auth)

	var recorder services.AttemptRecorder
	if d.Metrics != nil {
		recorder = d.Metrics
	}

	d.AuthService = services.NewAuthService(d.Customers, d.Hasher, d.Tokens, recorder, d.Logger)
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Tokens, d.Customers, recorder, d.Logger)
	d.RoutePolicy = middleware.NewRoutePolicy(d.Logger, middleware.DefaultPublicRoutes()...)

	d.Logger.Info("auth initialized",
		zap.String("issuer", cfg.Auth.Issuer),
		zap.Duration("token_ttl", cfg.Auth.TokenTTL),
		zap.Int("bcrypt_cost", d.Hasher.Cost()))
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
		d.RepoFactory = nil
		d.DB = nil
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
