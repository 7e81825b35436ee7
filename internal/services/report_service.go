package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/certquiz/backend/internal/models"
	"go.uber.org/zap"
)

// ErrReportNotFound is returned when removing a report that does not exist
var ErrReportNotFound = errors.New("report not found")

// reportService manages per-question error reports
type reportService struct {
	state  StateRepository
	logger *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(state StateRepository, logger *zap.Logger) *reportService {
	return &reportService{
		state:  state,
		logger: logger,
	}
}

// Submit files an error report for a question. A question carries at most
// one report; filing again overwrites memo and timestamp.
func (s *reportService) Submit(ctx context.Context, questionKey, memo string) (models.Report, error) {
	reports := s.state.GetReports(ctx)

	report := models.Report{
		Memo:      memo,
		Timestamp: time.Now().UnixMilli(),
	}
	reports[questionKey] = report

	if err := s.state.SaveReports(ctx, reports); err != nil {
		s.logger.Error("failed to save report", zap.String("question_key", questionKey), zap.Error(err))
		return models.Report{}, fmt.Errorf("failed to save report: %w", err)
	}

	return report, nil
}

// Remove deletes the report for a question
func (s *reportService) Remove(ctx context.Context, questionKey string) error {
	reports := s.state.GetReports(ctx)

	if _, ok := reports[questionKey]; !ok {
		return ErrReportNotFound
	}
	delete(reports, questionKey)

	if err := s.state.SaveReports(ctx, reports); err != nil {
		return fmt.Errorf("failed to remove report: %w", err)
	}

	return nil
}

// List returns every filed report keyed by composite question key
func (s *reportService) List(ctx context.Context) map[string]models.Report {
	return s.state.GetReports(ctx)
}

// Clear removes every report
func (s *reportService) Clear(ctx context.Context) error {
	if err := s.state.SaveReports(ctx, map[string]models.Report{}); err != nil {
		return fmt.Errorf("failed to clear reports: %w", err)
	}
	return nil
}
