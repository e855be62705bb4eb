// Package events defines event types and structures for candidate lifecycle
// notifications.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Kafka topic carrying all candidate lifecycle events.
const Topic = "talentflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	CandidateStageTransitionedEvent EventType = "candidate.stage.transitioned"
	CandidateRejectedEvent          EventType = "candidate.rejected"
	CandidatePhaseAdvancedEvent     EventType = "candidate.phase.advanced"
	StageDeadlineExceededEvent      EventType = "candidate.stage.deadline_exceeded"
)

type BaseEvent struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	Timestamp   time.Time      `json:"timestamp"`
	CandidateID string         `json:"candidate_id"`
	WorkflowID  string         `json:"workflow_id,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// NewBaseEvent fills the common event envelope.
func NewBaseEvent(eventType EventType, candidateID, workflowID string) BaseEvent {
	return BaseEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		CandidateID: candidateID,
		WorkflowID:  workflowID,
	}
}

// CandidateStageTransitioned is published after a candidate lands on a new
// stage, cascades included.
type CandidateStageTransitioned struct {
	BaseEvent

	StageID  string `json:"stage_id"`
	Cascaded bool   `json:"cascaded"`
}

func (e CandidateStageTransitioned) GetType() EventType {
	return CandidateStageTransitionedEvent
}

// CandidateRejected is published when an auto-reject validation rule fires.
type CandidateRejected struct {
	BaseEvent

	RuleID          string `json:"rule_id"`
	FieldKey        string `json:"field_key"`
	RejectionReason string `json:"rejection_reason"`
}

func (e CandidateRejected) GetType() EventType {
	return CandidateRejectedEvent
}

// CandidatePhaseAdvanced is published when a SUCCESS stage cascades the
// candidate into the next phase's initial stage.
type CandidatePhaseAdvanced struct {
	BaseEvent

	PhaseID    string `json:"phase_id"`
	WorkflowID string `json:"workflow_id"`
	StageID    string `json:"stage_id"`
}

func (e CandidatePhaseAdvanced) GetType() EventType {
	return CandidatePhaseAdvancedEvent
}

// StageDeadlineExceeded is published by the deadline sweeper for open stage
// records past their deadline.
type StageDeadlineExceeded struct {
	BaseEvent

	StageID  string    `json:"stage_id"`
	RecordID string    `json:"record_id"`
	Deadline time.Time `json:"deadline"`
}

func (e StageDeadlineExceeded) GetType() EventType {
	return StageDeadlineExceededEvent
}
