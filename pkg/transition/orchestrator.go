// Package transition implements the stage transition orchestrator: the state
// machine driving a candidate through a workflow, with validation gating,
// auto-rejection and cascading phase transitions.
package transition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/talentflow/talentflow/pkg/eventbus"
	"github.com/talentflow/talentflow/pkg/events"
	"github.com/talentflow/talentflow/pkg/models"
	"github.com/talentflow/talentflow/pkg/otelhelper"
	"github.com/talentflow/talentflow/pkg/persistence"
	"github.com/talentflow/talentflow/pkg/validation"
	"go.opentelemetry.io/otel/trace"
)

// ErrPhaseNotConfigured indicates a SUCCESS stage points to a next phase for
// which the candidate's position has no workflow configured. A broken workflow
// definition, surfaced loudly rather than routed around.
var ErrPhaseNotConfigured = errors.New("no workflow configured for next phase")

// maxCascadeHops bounds the automatic phase cascade. A SUCCESS -> INITIAL
// transition never triggers a further cascade within the same request, even if
// the new INITIAL stage is misconfigured as SUCCESS.
const maxCascadeHops = 1

const autoTransitionComment = "Automatically advanced to next phase"

// Outcome classifies the result of a transition request.
type Outcome string

const (
	OutcomeMoved    Outcome = "moved"    // Candidate landed on the target stage (possibly cascaded further)
	OutcomeNoop     Outcome = "noop"     // Candidate was already on the target stage
	OutcomeBlocked  Outcome = "blocked"  // ERROR rules failed, no state changed
	OutcomeRejected Outcome = "rejected" // An auto-reject rule fired, candidate marked rejected
)

// Request is the orchestrator's input contract.
type Request struct {
	CandidateID   string         `json:"candidate_id"    validate:"required"`
	TargetStageID string         `json:"target_stage_id" validate:"required"`
	FieldValues   map[string]any `json:"field_values,omitempty"`  // custom field ID -> candidate value
	PositionData  map[string]any `json:"position_data,omitempty"` // position fields for cross-entity comparisons
	Comment       string         `json:"comment,omitempty"`
}

// Result reports where the candidate ended up and every non-passed rule
// evaluation. A blocked transition carries all error messages at once so the
// caller can fix every issue before retrying.
type Result struct {
	Outcome         Outcome                   `json:"outcome"`
	CandidateID     string                    `json:"candidate_id"`
	PhaseID         string                    `json:"phase_id"`
	WorkflowID      string                    `json:"workflow_id"`
	StageID         string                    `json:"stage_id"`
	Warnings        []models.ValidationResult `json:"warnings,omitempty"`
	Errors          []models.ValidationResult `json:"errors,omitempty"`
	RejectionReason *string                   `json:"rejection_reason,omitempty"`
	Cascaded        bool                      `json:"cascaded"`
}

// Orchestrator coordinates validation, the atomic stage move and the phase
// cascade. One RequestTransition call runs within a single transaction scope.
type Orchestrator struct {
	persistence persistence.Persistence
	engine      *validation.Engine
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewOrchestrator creates an orchestrator. The publisher may be nil when no
// event bus is wired (transitions still work, lifecycle events are skipped).
func NewOrchestrator(
	store persistence.Persistence,
	engine *validation.Engine,
	publisher eventbus.EventPublisher,
	logger *slog.Logger,
	tracer trace.Tracer,
) *Orchestrator {
	return &Orchestrator{
		persistence: store,
		engine:      engine,
		publisher:   publisher,
		logger:      logger.With("module", "transition"),
		tracer:      tracer,
	}
}

// RequestTransition attempts to move the candidate to the target stage.
//
// NotFound and configuration errors are returned as errors and commit nothing.
// Validation outcomes (blocked, rejected) are reported through the Result.
func (o *Orchestrator) RequestTransition(ctx context.Context, req Request) (*Result, error) {
	if o.tracer != nil {
		var started trace.Span

		ctx, started = otelhelper.StartSpan(ctx, o.tracer, "transition.request",
			attribute.String(otelhelper.CandidateIDKey, req.CandidateID),
			attribute.String(otelhelper.StageIDKey, req.TargetStageID),
		)
		defer started.End()
	}

	span := trace.SpanFromContext(ctx)
	logger := o.logger.With("candidate_id", req.CandidateID, "target_stage_id", req.TargetStageID)

	candidate, err := o.persistence.CandidateRepository().GetByID(ctx, req.CandidateID)
	if err != nil {
		err = fmt.Errorf("failed to load candidate %s: %w", req.CandidateID, err)
		otelhelper.SetError(span, err)

		return nil, err
	}

	// Re-entry is a no-op: a retried request with the same target stage must
	// not close and reopen history records.
	if candidate.CurrentStageID == req.TargetStageID {
		logger.InfoContext(ctx, "Candidate already on target stage, nothing to do")

		return o.resultFor(OutcomeNoop, candidate, nil, false), nil
	}

	targetStage, err := o.persistence.StageRepository().GetByID(ctx, req.TargetStageID)
	if err != nil {
		err = fmt.Errorf("failed to load target stage %s: %w", req.TargetStageID, err)
		otelhelper.SetError(span, err)

		return nil, err
	}

	if targetStage.WorkflowID != candidate.CurrentWorkflowID {
		err = fmt.Errorf("stage %s does not belong to workflow %s: %w",
			targetStage.ID, candidate.CurrentWorkflowID, persistence.ErrStageNotFound)
		otelhelper.SetError(span, err, attribute.String(otelhelper.WorkflowIDKey, candidate.CurrentWorkflowID))

		return nil, err
	}

	warnings, failures, err := o.evaluateRules(ctx, targetStage, req)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if rejection := firstAutoReject(failures); rejection != nil {
		return o.reject(ctx, candidate, *rejection, warnings, failures)
	}

	if len(failures) > 0 {
		logger.InfoContext(ctx, "Transition blocked by validation", "error_count", len(failures))

		result := o.resultFor(OutcomeBlocked, candidate, warnings, false)
		result.Errors = failures

		return result, nil
	}

	cascaded, err := o.applyTransition(ctx, candidate, targetStage, req.Comment)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	o.publishTransitioned(ctx, candidate, cascaded)

	logger.InfoContext(ctx, "Transition applied",
		"final_stage_id", candidate.CurrentStageID,
		"final_phase_id", candidate.CurrentPhaseID,
		"cascaded", cascaded,
	)

	return o.resultFor(OutcomeMoved, candidate, warnings, cascaded), nil
}

// evaluateRules loads the target stage's active rules and evaluates them all.
// Results are partitioned into warnings and errors.
func (o *Orchestrator) evaluateRules(ctx context.Context, stage models.WorkflowStage, req Request) (warnings, failures []models.ValidationResult, err error) {
	rules, err := o.persistence.ValidationRuleRepository().ListByStage(ctx, stage.ID, true)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load validation rules for stage %s: %w", stage.ID, err)
	}

	if len(rules) == 0 {
		return nil, nil, nil
	}

	fields, err := o.persistence.CustomFieldRepository().ListByWorkflow(ctx, stage.WorkflowID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load custom fields for workflow %s: %w", stage.WorkflowID, err)
	}

	fieldKeys := make(map[string]string, len(fields))
	for _, field := range fields {
		fieldKeys[field.ID] = field.FieldKey
	}

	for _, result := range o.engine.EvaluateAll(rules, req.FieldValues, fieldKeys, req.PositionData) {
		if result.IsError() {
			failures = append(failures, result)
		} else {
			warnings = append(warnings, result)
		}
	}

	return warnings, failures, nil
}

// reject converts the transition into a rejection: the candidate is marked
// rejected with the rule's reason, the current stage is left unchanged.
func (o *Orchestrator) reject(ctx context.Context, candidate *models.Candidate, rejection models.ValidationResult, warnings, failures []models.ValidationResult) (*Result, error) {
	reason := *rejection.RejectionReason

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String(otelhelper.RuleIDKey, rejection.RuleID),
		attribute.String(otelhelper.FieldKeyKey, rejection.FieldKey),
	)

	err := o.persistence.InTransaction(ctx, func(ctx context.Context) error {
		candidate.Reject(reason)

		return o.persistence.CandidateRepository().Save(ctx, candidate)
	})
	if err != nil {
		err = fmt.Errorf("failed to reject candidate %s: %w", candidate.ID, err)
		otelhelper.SetError(trace.SpanFromContext(ctx), err)

		return nil, err
	}

	o.publish(ctx, candidate.ID, events.CandidateRejected{
		BaseEvent:       o.baseEvent(events.CandidateRejectedEvent, candidate),
		RuleID:          rejection.RuleID,
		FieldKey:        rejection.FieldKey,
		RejectionReason: reason,
	})

	o.logger.InfoContext(ctx, "Candidate auto-rejected",
		"candidate_id", candidate.ID,
		"rule_id", rejection.RuleID,
	)

	result := o.resultFor(OutcomeRejected, candidate, warnings, false)
	result.Errors = failures
	result.RejectionReason = &reason

	return result, nil
}

// applyTransition executes the atomic close/move/open sequence for the target
// stage and, when the target is a SUCCESS stage wired to a next phase,
// cascades once into that phase's initial stage. The whole sequence runs in a
// single transaction so a crash never leaves the candidate without an open
// history record.
func (o *Orchestrator) applyTransition(ctx context.Context, candidate *models.Candidate, targetStage models.WorkflowStage, comment string) (bool, error) {
	cascaded := false

	err := o.persistence.InTransaction(ctx, func(ctx context.Context) error {
		if err := o.moveToStage(ctx, candidate, candidate.CurrentPhaseID, targetStage, comment); err != nil {
			return err
		}

		stage := targetStage

		for hop := 0; hop < maxCascadeHops; hop++ {
			if stage.StageType != models.StageTypeSuccess || stage.NextPhaseID == nil {
				break
			}

			nextPhaseID := *stage.NextPhaseID

			nextWorkflowID := candidate.GetWorkflowForPhase(nextPhaseID)
			if nextWorkflowID == "" {
				trace.SpanFromContext(ctx).SetAttributes(attribute.String(otelhelper.PhaseIDKey, nextPhaseID))

				return fmt.Errorf("phase %s: %w", nextPhaseID, ErrPhaseNotConfigured)
			}

			initialStage, err := o.persistence.StageRepository().GetInitialStage(ctx, nextWorkflowID)
			if err != nil {
				return fmt.Errorf("failed to resolve initial stage of workflow %s: %w", nextWorkflowID, err)
			}

			if err := o.moveToStage(ctx, candidate, nextPhaseID, initialStage, autoTransitionComment); err != nil {
				return err
			}

			cascaded = true
			stage = initialStage
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return cascaded, nil
}

// moveToStage closes the candidate's open history record, moves the candidate
// and opens a record for the new stage. Must run inside a transaction.
func (o *Orchestrator) moveToStage(ctx context.Context, candidate *models.Candidate, phaseID string, stage models.WorkflowStage, comment string) error {
	records := o.persistence.StageRecordRepository()

	open, err := records.GetOpenRecord(ctx, candidate.ID)

	switch {
	case err == nil:
		open.Close(comment)

		if err := records.Save(ctx, open); err != nil {
			return fmt.Errorf("failed to close stage record %s: %w", open.ID, err)
		}
	case errors.Is(err, persistence.ErrStageRecordNotFound):
		// First transition for this candidate, nothing to close.
	default:
		return fmt.Errorf("failed to load open stage record for candidate %s: %w", candidate.ID, err)
	}

	candidate.MoveToStage(phaseID, stage.WorkflowID, stage.ID)

	record := models.OpenStageRecord(uuid.New().String(), candidate, stage)
	if err := records.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to open stage record for stage %s: %w", stage.ID, err)
	}

	if err := o.persistence.CandidateRepository().Save(ctx, candidate); err != nil {
		return fmt.Errorf("failed to save candidate %s: %w", candidate.ID, err)
	}

	return nil
}

func (o *Orchestrator) publishTransitioned(ctx context.Context, candidate *models.Candidate, cascaded bool) {
	o.publish(ctx, candidate.ID, events.CandidateStageTransitioned{
		BaseEvent: o.baseEvent(events.CandidateStageTransitionedEvent, candidate),
		StageID:   candidate.CurrentStageID,
		Cascaded:  cascaded,
	})

	if cascaded {
		o.publish(ctx, candidate.ID, events.CandidatePhaseAdvanced{
			BaseEvent:  o.baseEvent(events.CandidatePhaseAdvancedEvent, candidate),
			PhaseID:    candidate.CurrentPhaseID,
			WorkflowID: candidate.CurrentWorkflowID,
			StageID:    candidate.CurrentStageID,
		})
	}
}

func (o *Orchestrator) publish(ctx context.Context, key string, event eventbus.Event) {
	if o.publisher == nil {
		return
	}

	if err := o.publisher.Publish(ctx, key, event); err != nil {
		// Events are best-effort notifications; the state change is already
		// committed.
		o.logger.ErrorContext(ctx, "Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

func (o *Orchestrator) baseEvent(eventType events.EventType, candidate *models.Candidate) events.BaseEvent {
	return events.NewBaseEvent(eventType, candidate.ID, candidate.CurrentWorkflowID)
}

func (o *Orchestrator) resultFor(outcome Outcome, candidate *models.Candidate, warnings []models.ValidationResult, cascaded bool) *Result {
	return &Result{
		Outcome:     outcome,
		CandidateID: candidate.ID,
		PhaseID:     candidate.CurrentPhaseID,
		WorkflowID:  candidate.CurrentWorkflowID,
		StageID:     candidate.CurrentStageID,
		Warnings:    warnings,
		Cascaded:    cascaded,
	}
}

func firstAutoReject(failures []models.ValidationResult) *models.ValidationResult {
	for _, failure := range failures {
		if failure.IsAutoReject() {
			return &failure
		}
	}

	return nil
}
