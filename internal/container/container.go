package container

import (
	"context"
	"fmt"

	"aireliance/adapters/excel"
	"aireliance/adapters/oracle"
	"aireliance/adapters/postgres"
	"aireliance/adapters/rng"
	"aireliance/adapters/sink"
	"aireliance/domain/claim"
	"aireliance/domain/trial"
	"aireliance/internal"
	"aireliance/internal/api"
	"aireliance/internal/config"
	"aireliance/internal/experiment"
	"aireliance/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Experiment components
	Bank           *claim.Bank
	Oracle         ports.OracleGateway
	Sink           ports.SubmissionSink
	SSEHub         *api.SSEHub
	SessionManager *experiment.SessionManager
}

// New creates a new dependency injection container. For the postgres sink
// the session manager is built by InitWithDatabase.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)),
	}

	if err := c.initClaimBank(); err != nil {
		return nil, fmt.Errorf("failed to load claim bank: %w", err)
	}
	if err := c.initOracle(); err != nil {
		return nil, fmt.Errorf("failed to initialize oracle gateway: %w", err)
	}
	c.SSEHub = api.NewSSEHub(c.Logger)

	if cfg.Sink.Kind == config.SinkPostgres {
		return c, nil
	}
	if err := c.initHTTPSink(); err != nil {
		return nil, err
	}
	if err := c.initSessions(); err != nil {
		return nil, fmt.Errorf("failed to initialize sessions: %w", err)
	}
	return c, nil
}

// InitWithDatabase wires the postgres sink and the session manager
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db

	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	c.Sink = postgres.NewResultRepository(db, c.Logger)
	if err := c.initSessions(); err != nil {
		return fmt.Errorf("failed to initialize sessions: %w", err)
	}

	c.Logger.Info("Container initialized successfully with database connection")
	return nil
}

// Ready reports whether the session manager has been built
func (c *Container) Ready() bool {
	return c.SessionManager != nil
}

func (c *Container) initClaimBank() error {
	if c.Config.Experiment.ClaimsFile == "" {
		c.Bank = claim.DefaultBank()
		c.Logger.Info("using built-in claim bank (%d claims)", c.Bank.Len())
		return nil
	}

	bank, err := excel.NewClaimReader(c.Config.Experiment.ClaimsFile, c.Logger).ReadBank()
	if err != nil {
		return err
	}
	c.Bank = bank
	return nil
}

func (c *Container) initOracle() error {
	gateway, err := oracle.NewHTTPGateway(oracle.Config{
		URL:           c.Config.Oracle.URL,
		Timeout:       c.Config.Oracle.Timeout,
		MaxConcurrent: int64(c.Config.Oracle.MaxConcurrent),
	}, c.Logger)
	if err != nil {
		return err
	}
	c.Oracle = gateway
	return nil
}

func (c *Container) initHTTPSink() error {
	switch c.Config.Sink.Kind {
	case config.SinkHTTP:
		c.Sink = sink.NewHTTPSink(c.Config.Sink.URL, c.Config.Sink.Timeout, c.Logger)
	case config.SinkSheets:
		c.Sink = sink.NewSheetsSink(c.Config.Sink.URL, c.Config.Sink.Timeout, c.Logger)
	default:
		return fmt.Errorf("unsupported sink kind %q", c.Config.Sink.Kind)
	}
	return nil
}

func (c *Container) initSessions() error {
	schedule := trial.Schedule{
		TotalTrials:      c.Config.Experiment.TotalTrials,
		AIEligibleTrials: c.Config.Experiment.AIEligibleTrials,
	}

	manager, err := experiment.NewSessionManager(c.Bank, schedule, rng.NewSeededRNG(c.Config.Experiment.Seed), experiment.Dependencies{
		Oracle:        c.Oracle,
		Sink:          c.Sink,
		Events:        c.SSEHub,
		Logger:        c.Logger,
		OracleTimeout: c.Config.Oracle.Timeout,
	})
	if err != nil {
		return err
	}
	c.SessionManager = manager

	resolved := manager.Schedule()
	c.Logger.Info("sessions: %d trials, AI offered on the first %d, results to %s sink",
		resolved.TotalTrials, resolved.AIEligibleTrials, c.Sink.Name())
	return nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.SSEHub != nil {
		c.SSEHub.Close()
	}

	var waitErr error
	if c.SessionManager != nil {
		waitErr = c.SessionManager.Shutdown(ctx)
	}

	// Close database connection
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return err
		}
	}
	return waitErr
}
