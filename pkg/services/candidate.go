package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/talentflow/talentflow/pkg/models"
	"github.com/talentflow/talentflow/pkg/persistence"
)

// Candidate manages candidate applications and their placement on workflows.
type Candidate struct {
	persistence persistence.Persistence
}

// NewCandidate creates a new candidate service.
func NewCandidate(persistence persistence.Persistence) *Candidate {
	return &Candidate{
		persistence: persistence,
	}
}

// CreateCandidateRequest carries the attributes for a new candidate
// application.
type CreateCandidateRequest struct {
	PositionID     string
	CompanyID      string
	Name           string
	Email          string
	EntryPhaseID   string
	PhaseWorkflows map[string]string
	FieldValues    map[string]any
}

// FetchByID retrieves a candidate by its ID.
func (s *Candidate) FetchByID(ctx context.Context, id string) (*models.Candidate, error) {
	return s.persistence.CandidateRepository().GetByID(ctx, id)
}

// ListByPosition retrieves the candidates applying to a position.
func (s *Candidate) ListByPosition(ctx context.Context, positionID string) ([]*models.Candidate, error) {
	candidates, err := s.persistence.CandidateRepository().ListByPosition(ctx, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}

	return candidates, nil
}

// Create registers a candidate and places it on the initial stage of the
// workflow configured for the entry phase. The placement and the first history
// record are written atomically.
func (s *Candidate) Create(ctx context.Context, req CreateCandidateRequest) (*models.Candidate, error) {
	if req.PositionID == "" || req.CompanyID == "" || req.Name == "" {
		return nil, fmt.Errorf("%w: position_id, company_id and name are required", ErrInvalidRequest)
	}

	workflowID, ok := req.PhaseWorkflows[req.EntryPhaseID]
	if !ok || workflowID == "" {
		return nil, fmt.Errorf("%w: no workflow configured for entry phase %q", ErrInvalidRequest, req.EntryPhaseID)
	}

	initialStage, err := s.persistence.StageRepository().GetInitialStage(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve initial stage of workflow %s: %w", workflowID, err)
	}

	now := time.Now().UTC()
	candidate := &models.Candidate{
		ID:             uuid.New().String(),
		PositionID:     req.PositionID,
		CompanyID:      req.CompanyID,
		Name:           req.Name,
		Email:          req.Email,
		Status:         models.CandidateStatusActive,
		PhaseWorkflows: req.PhaseWorkflows,
		FieldValues:    req.FieldValues,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	candidate.MoveToStage(req.EntryPhaseID, workflowID, initialStage.ID)

	err = s.persistence.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.persistence.CandidateRepository().Save(ctx, candidate); err != nil {
			return fmt.Errorf("failed to save candidate: %w", err)
		}

		record := models.OpenStageRecord(uuid.New().String(), candidate, initialStage)
		if err := s.persistence.StageRecordRepository().Save(ctx, record); err != nil {
			return fmt.Errorf("failed to open stage record: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return candidate, nil
}

// UpdateFieldValues merges the given custom field values into the candidate.
func (s *Candidate) UpdateFieldValues(ctx context.Context, id string, values map[string]any) (*models.Candidate, error) {
	candidate, err := s.persistence.CandidateRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if candidate.FieldValues == nil {
		candidate.FieldValues = make(map[string]any, len(values))
	}

	for fieldID, value := range values {
		candidate.FieldValues[fieldID] = value
	}

	candidate.UpdatedAt = time.Now().UTC()

	err = s.persistence.CandidateRepository().Save(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to save candidate: %w", err)
	}

	return candidate, nil
}

// History retrieves the candidate's stage records in chronological order.
func (s *Candidate) History(ctx context.Context, id string) ([]models.StageRecord, error) {
	if _, err := s.persistence.CandidateRepository().GetByID(ctx, id); err != nil {
		return nil, err
	}

	records, err := s.persistence.StageRecordRepository().ListByCandidate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list stage records: %w", err)
	}

	return records, nil
}

// Delete removes a candidate by its ID.
func (s *Candidate) Delete(ctx context.Context, id string) error {
	return s.persistence.CandidateRepository().Delete(ctx, id)
}
