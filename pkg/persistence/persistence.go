// Package persistence provides the data storage abstraction layer for
// workflows, stages, custom fields, validation rules, candidates and stage
// history.
package persistence

import (
	"context"
	"time"

	"github.com/talentflow/talentflow/pkg/models"
)

// Persistence exposes the typed repositories plus lifecycle operations. All
// implementations must support InTransaction so the transition orchestrator can
// run its close-history/move/open-history sequence atomically.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	StageRepository() StageRepository
	CustomFieldRepository() CustomFieldRepository
	FieldConfigurationRepository() FieldConfigurationRepository
	ValidationRuleRepository() ValidationRuleRepository
	CandidateRepository() CandidateRepository
	StageRecordRepository() StageRecordRepository

	// InTransaction runs fn atomically. Implementations without real
	// transactions must at minimum serialize concurrent calls.
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

type WorkflowRepository interface {
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	List(ctx context.Context, companyID string) ([]*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
}

type StageRepository interface {
	GetByID(ctx context.Context, id string) (models.WorkflowStage, error)
	ListByWorkflow(ctx context.Context, workflowID string) ([]models.WorkflowStage, error)
	// GetInitialStage returns the one INITIAL stage of the workflow.
	// ErrInitialStageNotFound when the workflow has none.
	GetInitialStage(ctx context.Context, workflowID string) (models.WorkflowStage, error)
	// GetFinalStages returns the SUCCESS and FAIL stages of the workflow.
	GetFinalStages(ctx context.Context, workflowID string) ([]models.WorkflowStage, error)
	Save(ctx context.Context, stage models.WorkflowStage) error
	Delete(ctx context.Context, id string) error
}

type CustomFieldRepository interface {
	GetByID(ctx context.Context, id string) (models.CustomField, error)
	ListByWorkflow(ctx context.Context, workflowID string) ([]models.CustomField, error)
	Save(ctx context.Context, field models.CustomField) error
	Delete(ctx context.Context, id string) error
}

type FieldConfigurationRepository interface {
	GetByID(ctx context.Context, id string) (models.FieldConfiguration, error)
	ListByStage(ctx context.Context, stageID string) ([]models.FieldConfiguration, error)
	Save(ctx context.Context, configuration models.FieldConfiguration) error
	Delete(ctx context.Context, id string) error
}

type ValidationRuleRepository interface {
	GetByID(ctx context.Context, id string) (models.ValidationRule, error)
	ListByStage(ctx context.Context, stageID string, activeOnly bool) ([]models.ValidationRule, error)
	Save(ctx context.Context, rule models.ValidationRule) error
	Delete(ctx context.Context, id string) error
}

type CandidateRepository interface {
	GetByID(ctx context.Context, id string) (*models.Candidate, error)
	ListByPosition(ctx context.Context, positionID string) ([]*models.Candidate, error)
	Save(ctx context.Context, candidate *models.Candidate) error
	Delete(ctx context.Context, id string) error
}

type StageRecordRepository interface {
	GetByID(ctx context.Context, id string) (models.StageRecord, error)
	// GetOpenRecord returns the candidate's current open history record.
	// ErrStageRecordNotFound when the candidate has no open record yet.
	GetOpenRecord(ctx context.Context, candidateID string) (models.StageRecord, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]models.StageRecord, error)
	// ListOpenOverdue returns open records whose deadline lies before the
	// given instant.
	ListOpenOverdue(ctx context.Context, now time.Time) ([]models.StageRecord, error)
	Save(ctx context.Context, record models.StageRecord) error
}
