package services

import (
	"context"
	"fmt"

	"github.com/certquiz/backend/internal/models"
	"go.uber.org/zap"
)

// Classify derives a question's learning state from its answer history.
//
// Only the two most recent records matter: two correct answers in a row read
// as mastered, a most recent incorrect answer reads as wrong, and a most
// recent correct answer without a correct predecessor reads as learning.
// An earlier wrong answer has no lingering effect once two correct answers
// follow it.
func Classify(records []models.HistoryRecord) models.Status {
	if len(records) == 0 {
		return models.StatusUnanswered
	}

	last := records[len(records)-1]
	if len(records) >= 2 && last.Correct && records[len(records)-2].Correct {
		return models.StatusMastered
	}
	if !last.Correct {
		return models.StatusWrong
	}
	return models.StatusLearning
}

// progressService implements progress and mastery tracking
type progressService struct {
	state  StateRepository
	logger *zap.Logger
}

// NewProgressService creates a new progress service
func NewProgressService(state StateRepository, logger *zap.Logger) *progressService {
	return &progressService{
		state:  state,
		logger: logger,
	}
}

// Counts classifies every question of the deck and accumulates a count per
// learning state. Pure function of the deck and the current history snapshot.
func (s *progressService) Counts(ctx context.Context, deck *models.Deck) models.StatusCounts {
	history := s.state.GetHistory(ctx)

	var counts models.StatusCounts
	for i := range deck.Questions {
		key := models.QuestionKey(deck.ID, &deck.Questions[i])
		switch Classify(history[key]) {
		case models.StatusUnanswered:
			counts.Unanswered++
		case models.StatusWrong:
			counts.Wrong++
		case models.StatusLearning:
			counts.Learning++
		case models.StatusMastered:
			counts.Mastered++
		}
	}

	return counts
}

// Stats sums all recorded answers across every question of every deck
func (s *progressService) Stats(ctx context.Context) models.OverallStats {
	history := s.state.GetHistory(ctx)

	var stats models.OverallStats
	for _, records := range history {
		for _, record := range records {
			stats.TotalAnswers++
			if record.Correct {
				stats.CorrectAnswers++
			}
		}
	}

	return stats
}

// ToggleStar flips the starred flag for a question and reports the new state
func (s *progressService) ToggleStar(ctx context.Context, questionKey string) (bool, error) {
	starred := s.state.GetStarred(ctx)

	_, wasStarred := starred[questionKey]
	if wasStarred {
		delete(starred, questionKey)
	} else {
		starred[questionKey] = struct{}{}
	}

	if err := s.state.SaveStarred(ctx, starred); err != nil {
		s.logger.Error("failed to save starred set", zap.Error(err))
		return wasStarred, fmt.Errorf("failed to toggle star: %w", err)
	}

	return !wasStarred, nil
}

// StarredCount returns how many questions of the deck are currently starred
func (s *progressService) StarredCount(ctx context.Context, deck *models.Deck) int {
	starred := s.state.GetStarred(ctx)

	count := 0
	for i := range deck.Questions {
		if _, ok := starred[models.QuestionKey(deck.ID, &deck.Questions[i])]; ok {
			count++
		}
	}
	return count
}

// ResetHistory clears the entire answer history
func (s *progressService) ResetHistory(ctx context.Context) error {
	if err := s.state.SaveHistory(ctx, models.History{}); err != nil {
		return fmt.Errorf("failed to reset history: %w", err)
	}
	return nil
}

// ClearStarred removes every star
func (s *progressService) ClearStarred(ctx context.Context) error {
	if err := s.state.SaveStarred(ctx, map[string]struct{}{}); err != nil {
		return fmt.Errorf("failed to clear starred set: %w", err)
	}
	return nil
}
