package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/templui/securedocs/internal/model"
	"github.com/templui/securedocs/internal/repository"
)

type AnalyticsService struct {
	analyticsRepository repository.AnalyticsRepository
}

func NewAnalyticsService(analyticsRepository repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{analyticsRepository: analyticsRepository}
}

// Record appends the event and, for allowed views and downloads, bumps the
// document counter. The two writes are not transactional.
func (s *AnalyticsService) Record(_ context.Context, event *model.AccessEvent) error {
	err := s.analyticsRepository.CreateEvent(event)
	if err != nil {
		return fmt.Errorf("failed to record access event: %w", err)
	}

	if event.Outcome != model.OutcomeAllowed {
		return nil
	}

	err = s.analyticsRepository.IncrementCounter(event.DocumentID, event.Action)
	if err != nil {
		return fmt.Errorf("failed to increment counter: %w", err)
	}

	slog.Debug("access counter incremented", "document_id", event.DocumentID, "action", event.Action)
	return nil
}

func (s *AnalyticsService) Counters(documentID string) (*model.DocumentCounters, error) {
	return s.analyticsRepository.Counters(documentID)
}

func (s *AnalyticsService) Summary(documentID string, since time.Time) (*model.AccessSummary, error) {
	summary, err := s.analyticsRepository.Summary(documentID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load access summary: %w", err)
	}
	return summary, nil
}

func (s *AnalyticsService) Events(filter model.EventFilter) ([]*model.AccessEvent, error) {
	events, err := s.analyticsRepository.Events(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load access events: %w", err)
	}
	return events, nil
}
