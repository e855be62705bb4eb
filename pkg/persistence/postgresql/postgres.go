// Package postgresql provides the PostgreSQL persistence implementation.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // postgres driver

	"github.com/talentflow/talentflow/pkg/persistence"
	"github.com/talentflow/talentflow/pkg/persistence/sqlbase"
)

// querier is satisfied by both *sql.DB and *sql.Tx so repositories run inside
// or outside a transaction transparently.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// q returns the transaction bound to ctx by InTransaction, or the raw
// connection pool.
func (p *Persistence) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}

	return p.db
}

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger

	workflows           *workflowRepository
	stages              *stageRepository
	customFields        *customFieldRepository
	fieldConfigurations *fieldConfigurationRepository
	validationRules     *validationRuleRepository
	candidates          *candidateRepository
	stageRecords        *stageRecordRepository
}

// NewPersistence connects to PostgreSQL and runs pending migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	postgres := &Persistence{
		db:     database,
		logger: logger,
	}

	postgres.workflows = &workflowRepository{p: postgres}
	postgres.stages = &stageRepository{p: postgres}
	postgres.customFields = &customFieldRepository{p: postgres}
	postgres.fieldConfigurations = &fieldConfigurationRepository{p: postgres}
	postgres.validationRules = &validationRuleRepository{p: postgres}
	postgres.candidates = &candidateRepository{p: postgres}
	postgres.stageRecords = &stageRecordRepository{p: postgres}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgres, nil
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflows
}

func (p *Persistence) StageRepository() persistence.StageRepository {
	return p.stages
}

func (p *Persistence) CustomFieldRepository() persistence.CustomFieldRepository {
	return p.customFields
}

func (p *Persistence) FieldConfigurationRepository() persistence.FieldConfigurationRepository {
	return p.fieldConfigurations
}

func (p *Persistence) ValidationRuleRepository() persistence.ValidationRuleRepository {
	return p.validationRules
}

func (p *Persistence) CandidateRepository() persistence.CandidateRepository {
	return p.candidates
}

func (p *Persistence) StageRecordRepository() persistence.StageRecordRepository {
	return p.stageRecords
}

// InTransaction runs fn inside one database transaction. Nested calls reuse
// the transaction already bound to the context.
func (p *Persistence) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	err = fn(context.WithValue(ctx, txKey{}, tx))
	if err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			p.logger.ErrorContext(ctx, "failed to rollback transaction", "error", rollbackErr)
		}

		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
