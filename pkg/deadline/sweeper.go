// Package deadline runs the periodic sweep over open stage records, emitting
// an event for every record past its deadline.
package deadline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/talentflow/talentflow/pkg/eventbus"
	"github.com/talentflow/talentflow/pkg/events"
	"github.com/talentflow/talentflow/pkg/models"
	"github.com/talentflow/talentflow/pkg/persistence"
)

// DefaultSchedule sweeps once per hour.
const DefaultSchedule = "0 * * * *"

// Sweeper periodically scans for overdue open stage records and publishes a
// StageDeadlineExceeded event per record. The sweep only notifies; candidates
// are never moved or rejected automatically on a missed deadline.
type Sweeper struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	schedule    cron.Schedule
	logger      *slog.Logger

	// Records already reported, so one overdue record does not produce an
	// event on every sweep. Reset on restart is acceptable: consumers must
	// handle duplicates anyway.
	mu       sync.Mutex
	notified map[string]struct{}

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewSweeper parses the cron expression (standard 5-field format) and returns
// a sweeper ready to start.
func NewSweeper(store persistence.Persistence, publisher eventbus.EventPublisher, cronExpression string, logger *slog.Logger) (*Sweeper, error) {
	if cronExpression == "" {
		cronExpression = DefaultSchedule
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

	schedule, err := parser.Parse(cronExpression)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", cronExpression, err)
	}

	return &Sweeper{
		persistence: store,
		publisher:   publisher,
		schedule:    schedule,
		notified:    make(map[string]struct{}),
		stopCh:      make(chan struct{}),
		logger:      logger.With("module", "deadline_sweeper"),
	}, nil
}

// Start launches the sweep loop.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.InfoContext(ctx, "Starting deadline sweeper")

	s.wg.Add(1)

	go s.run(ctx)
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-s.stopCh:
			timer.Stop()
			s.logger.InfoContext(ctx, "Deadline sweeper stopped")

			return
		case <-ctx.Done():
			timer.Stop()
			s.logger.InfoContext(ctx, "Context cancelled, stopping deadline sweeper")

			return
		case <-timer.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.ErrorContext(ctx, "Sweep failed", "error", err)
			}
		}
	}
}

// Sweep runs one pass over the open overdue records.
func (s *Sweeper) Sweep(ctx context.Context) error {
	now := time.Now().UTC()

	overdue, err := s.persistence.StageRecordRepository().ListOpenOverdue(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list overdue stage records: %w", err)
	}

	if len(overdue) == 0 {
		return nil
	}

	s.logger.InfoContext(ctx, "Found overdue stage records", "count", len(overdue))

	for _, record := range overdue {
		if s.alreadyNotified(record.ID) {
			continue
		}

		s.notify(ctx, record)
	}

	return nil
}

func (s *Sweeper) notify(ctx context.Context, record models.StageRecord) {
	event := events.StageDeadlineExceeded{
		BaseEvent: events.NewBaseEvent(events.StageDeadlineExceededEvent, record.CandidateID, record.WorkflowID),
		StageID:   record.StageID,
		RecordID:  record.ID,
		Deadline:  *record.Deadline,
	}

	if err := s.publisher.Publish(ctx, record.CandidateID, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish deadline event",
			"record_id", record.ID,
			"error", err,
		)

		return
	}

	s.markNotified(record.ID)

	s.logger.InfoContext(ctx, "Deadline exceeded",
		"candidate_id", record.CandidateID,
		"stage_id", record.StageID,
		"deadline", record.Deadline,
	)
}

func (s *Sweeper) alreadyNotified(recordID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.notified[recordID]

	return ok
}

func (s *Sweeper) markNotified(recordID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notified[recordID] = struct{}{}
}

// Stop drains the sweep loop.
func (s *Sweeper) Stop(ctx context.Context) {
	s.logger.InfoContext(ctx, "Stopping deadline sweeper")

	close(s.stopCh)
	s.wg.Wait()
}
