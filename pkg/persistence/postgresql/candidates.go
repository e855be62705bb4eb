package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/talentflow/talentflow/pkg/models"
	"github.com/talentflow/talentflow/pkg/persistence"
)

// CandidateRepository

type candidateRepository struct {
	p *Persistence
}

const candidateColumns = `
	id
  , position_id
  , company_id
  , name
  , email
  , status
  , current_phase_id
  , current_workflow_id
  , current_stage_id
  , phase_workflows
  , field_values
  , rejection_reason
  , created_at
  , updated_at
`

func (r *candidateRepository) GetByID(ctx context.Context, id string) (*models.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id = $1`

	candidate, err := scanCandidate(r.p.q(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewStoreError("GetByID", "candidate", id, persistence.ErrCandidateNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query candidate %s: %w", id, err)
	}

	return candidate, nil
}

func (r *candidateRepository) ListByPosition(ctx context.Context, positionID string) ([]*models.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE position_id = $1 ORDER BY created_at`

	rows, err := r.p.q(ctx).QueryContext(ctx, query, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates for position %s: %w", positionID, err)
	}
	defer closeRows(ctx, r.p, rows)

	candidates := make([]*models.Candidate, 0)

	for rows.Next() {
		candidate, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}

		candidates = append(candidates, candidate)
	}

	return candidates, rows.Err()
}

func (r *candidateRepository) Save(ctx context.Context, candidate *models.Candidate) error {
	phaseWorkflows, err := marshalJSONB(candidate.PhaseWorkflows)
	if err != nil {
		return err
	}

	fieldValues, err := marshalJSONB(candidate.FieldValues)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO candidates (` + candidateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			status = EXCLUDED.status,
			current_phase_id = EXCLUDED.current_phase_id,
			current_workflow_id = EXCLUDED.current_workflow_id,
			current_stage_id = EXCLUDED.current_stage_id,
			phase_workflows = EXCLUDED.phase_workflows,
			field_values = EXCLUDED.field_values,
			rejection_reason = EXCLUDED.rejection_reason,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.p.q(ctx).ExecContext(ctx, query,
		candidate.ID, candidate.PositionID, candidate.CompanyID, candidate.Name, candidate.Email,
		candidate.Status, candidate.CurrentPhaseID, candidate.CurrentWorkflowID, candidate.CurrentStageID,
		phaseWorkflows, fieldValues, nullString(candidate.RejectionReason),
		candidate.CreatedAt, candidate.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save candidate %s: %w", candidate.ID, err)
	}

	return nil
}

func (r *candidateRepository) Delete(ctx context.Context, id string) error {
	result, err := r.p.q(ctx).ExecContext(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete candidate %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}

	if affected == 0 {
		return persistence.NewStoreError("Delete", "candidate", id, persistence.ErrCandidateNotFound)
	}

	return nil
}

func scanCandidate(row rowScanner) (*models.Candidate, error) {
	var (
		candidate                   models.Candidate
		email                       sql.NullString
		rejectionReason             sql.NullString
		phaseWorkflows, fieldValues []byte
	)

	err := row.Scan(
		&candidate.ID, &candidate.PositionID, &candidate.CompanyID, &candidate.Name, &email,
		&candidate.Status, &candidate.CurrentPhaseID, &candidate.CurrentWorkflowID, &candidate.CurrentStageID,
		&phaseWorkflows, &fieldValues, &rejectionReason,
		&candidate.CreatedAt, &candidate.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	candidate.Email = email.String
	candidate.RejectionReason = fromNullString(rejectionReason)

	if err := unmarshalJSONB(phaseWorkflows, &candidate.PhaseWorkflows); err != nil {
		return nil, err
	}

	if err := unmarshalJSONB(fieldValues, &candidate.FieldValues); err != nil {
		return nil, err
	}

	return &candidate, nil
}

// StageRecordRepository

type stageRecordRepository struct {
	p *Persistence
}

const stageRecordColumns = `
	id
  , candidate_id
  , phase_id
  , workflow_id
  , stage_id
  , started_at
  , completed_at
  , deadline
  , estimated_cost
  , actual_cost
  , comment
  , data
`

func (r *stageRecordRepository) GetByID(ctx context.Context, id string) (models.StageRecord, error) {
	query := `SELECT ` + stageRecordColumns + ` FROM stage_records WHERE id = $1`

	record, err := scanStageRecord(r.p.q(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.StageRecord{}, persistence.NewStoreError("GetByID", "stage_record", id, persistence.ErrStageRecordNotFound)
	}

	if err != nil {
		return models.StageRecord{}, fmt.Errorf("failed to query stage record %s: %w", id, err)
	}

	return record, nil
}

func (r *stageRecordRepository) GetOpenRecord(ctx context.Context, candidateID string) (models.StageRecord, error) {
	query := `SELECT ` + stageRecordColumns + ` FROM stage_records
		WHERE candidate_id = $1 AND completed_at IS NULL
		ORDER BY started_at DESC LIMIT 1`

	record, err := scanStageRecord(r.p.q(ctx).QueryRowContext(ctx, query, candidateID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.StageRecord{}, persistence.NewStoreError("GetOpenRecord", "stage_record", candidateID, persistence.ErrStageRecordNotFound)
	}

	if err != nil {
		return models.StageRecord{}, fmt.Errorf("failed to query open stage record for candidate %s: %w", candidateID, err)
	}

	return record, nil
}

func (r *stageRecordRepository) ListByCandidate(ctx context.Context, candidateID string) ([]models.StageRecord, error) {
	query := `SELECT ` + stageRecordColumns + ` FROM stage_records WHERE candidate_id = $1 ORDER BY started_at`

	rows, err := r.p.q(ctx).QueryContext(ctx, query, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stage records for candidate %s: %w", candidateID, err)
	}
	defer closeRows(ctx, r.p, rows)

	return collectStageRecords(rows)
}

func (r *stageRecordRepository) ListOpenOverdue(ctx context.Context, now time.Time) ([]models.StageRecord, error) {
	query := `SELECT ` + stageRecordColumns + ` FROM stage_records
		WHERE completed_at IS NULL AND deadline IS NOT NULL AND deadline < $1
		ORDER BY deadline`

	rows, err := r.p.q(ctx).QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue stage records: %w", err)
	}
	defer closeRows(ctx, r.p, rows)

	return collectStageRecords(rows)
}

func (r *stageRecordRepository) Save(ctx context.Context, record models.StageRecord) error {
	data, err := marshalJSONB(record.Data)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO stage_records (` + stageRecordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			completed_at = EXCLUDED.completed_at,
			deadline = EXCLUDED.deadline,
			estimated_cost = EXCLUDED.estimated_cost,
			actual_cost = EXCLUDED.actual_cost,
			comment = EXCLUDED.comment,
			data = EXCLUDED.data
	`

	_, err = r.p.q(ctx).ExecContext(ctx, query,
		record.ID, record.CandidateID, record.PhaseID, record.WorkflowID, record.StageID,
		record.StartedAt, nullTime(record.CompletedAt), nullTime(record.Deadline),
		nullFloat(record.EstimatedCost), nullFloat(record.ActualCost), record.Comment, data,
	)
	if err != nil {
		return fmt.Errorf("failed to save stage record %s: %w", record.ID, err)
	}

	return nil
}

func collectStageRecords(rows *sql.Rows) ([]models.StageRecord, error) {
	records := make([]models.StageRecord, 0)

	for rows.Next() {
		record, err := scanStageRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage record: %w", err)
		}

		records = append(records, record)
	}

	return records, rows.Err()
}

func scanStageRecord(row rowScanner) (models.StageRecord, error) {
	var (
		record                    models.StageRecord
		completedAt, deadline     sql.NullTime
		estimatedCost, actualCost sql.NullFloat64
		comment                   sql.NullString
		data                      []byte
	)

	err := row.Scan(
		&record.ID, &record.CandidateID, &record.PhaseID, &record.WorkflowID, &record.StageID,
		&record.StartedAt, &completedAt, &deadline,
		&estimatedCost, &actualCost, &comment, &data,
	)
	if err != nil {
		return models.StageRecord{}, err
	}

	record.CompletedAt = fromNullTime(completedAt)
	record.Deadline = fromNullTime(deadline)
	record.EstimatedCost = fromNullFloat(estimatedCost)
	record.ActualCost = fromNullFloat(actualCost)
	record.Comment = comment.String

	if err := unmarshalJSONB(data, &record.Data); err != nil {
		return models.StageRecord{}, err
	}

	return record, nil
}
