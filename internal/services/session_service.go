package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/certquiz/backend/internal/models"
	"go.uber.org/zap"
)

// Session errors that callers are expected to distinguish
var (
	// ErrNoMatchingQuestions signals that the filter combination produced an
	// empty queue. This is a normal outcome, not a crash.
	ErrNoMatchingQuestions = errors.New("no questions match the current filters")
	ErrNoActiveSession     = errors.New("no active quiz session")
	ErrSessionComplete     = errors.New("quiz session is already complete")
	ErrAlreadyAnswered     = errors.New("current question has already been answered")
	ErrNotAnswered         = errors.New("current question has not been answered yet")
	ErrSelectionRequired   = errors.New("an option must be selected")
)

// DeckSource is the interface that provides deck content to a session
type DeckSource interface {
	// Method DeckByID retrieves one deck, built-in or custom.
	//
	// If the deck does not exist, ErrDeckNotFound will be returned.
	DeckByID(ctx context.Context, deckID string) (*models.Deck, error)
}

// quizSession is the state of one pass through a question queue
type quizSession struct {
	deckID   string
	queue    []models.Question
	index    int
	answered bool
	complete bool
	stats    models.SessionStats
}

// sessionService builds quiz queues and runs the answer-submission flow.
// The application is single-user, but the HTTP surface may be hit
// concurrently, so the in-memory session is guarded by a mutex.
type sessionService struct {
	state  StateRepository
	decks  DeckSource
	logger *zap.Logger

	mu      sync.Mutex
	current *quizSession
}

// NewSessionService creates a new session service
func NewSessionService(state StateRepository, decks DeckSource, logger *zap.Logger) *sessionService {
	return &sessionService{
		state:  state,
		decks:  decks,
		logger: logger,
	}
}

// buildQueue narrows the deck's questions through the filter stages in their
// fixed order (scope mode, starred-only, learning-state filter) and returns
// a freshly shuffled queue. The result is a permutation of the filtered
// input; an empty result is returned as an empty slice for the caller to
// turn into ErrNoMatchingQuestions.
func buildQueue(deckID string, questions []models.Question, filter models.FilterState, starred map[string]struct{}, history models.History, showEn bool) []models.Question {
	candidates := make([]models.Question, 0, len(questions))

	switch filter.Mode {
	case models.ScopeChapter:
		if filter.Chapter == 0 {
			candidates = append(candidates, questions...)
			break
		}
		for _, q := range questions {
			if q.Chapter == filter.Chapter {
				candidates = append(candidates, q)
			}
		}
	case models.ScopeTag:
		if len(filter.Tags) == 0 {
			candidates = append(candidates, questions...)
			break
		}
		selected := make(map[string]struct{}, len(filter.Tags))
		for _, tag := range filter.Tags {
			selected[tag] = struct{}{}
		}
		for _, q := range questions {
			if hasAnyTag(q.Tags(showEn), selected) {
				candidates = append(candidates, q)
			}
		}
	case models.ScopeType:
		wantDomain := filter.ChapterType != models.ChapterTypeExam
		for _, q := range questions {
			isDomain := q.Chapter <= models.DomainChapterBoundary
			if isDomain == wantDomain {
				candidates = append(candidates, q)
			}
		}
	default:
		candidates = append(candidates, questions...)
	}

	if filter.StarredOnly {
		kept := candidates[:0]
		for _, q := range candidates {
			if _, ok := starred[models.QuestionKey(deckID, &q)]; ok {
				kept = append(kept, q)
			}
		}
		candidates = kept
	}

	if filter.History != "" && filter.History != models.HistoryFilterAll {
		kept := candidates[:0]
		for _, q := range candidates {
			if Classify(history[models.QuestionKey(deckID, &q)]) == models.Status(filter.History) {
				kept = append(kept, q)
			}
		}
		candidates = kept
	}

	// Fresh randomness on every call; sessions are intentionally not reproducible
	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	return candidates
}

// hasAnyTag reports whether any of the question's tags is in the selected set
func hasAnyTag(tags []string, selected map[string]struct{}) bool {
	for _, tag := range tags {
		if _, ok := selected[tag]; ok {
			return true
		}
	}
	return false
}

// Start assembles a new quiz queue from the deck and filter specification and
// replaces any previous session. Session counters start at zero.
//
// If deckID is empty, the active deck from settings is used.
// Returns ErrNoMatchingQuestions when the filter combination matches nothing.
func (s *sessionService) Start(ctx context.Context, deckID string, filter models.FilterState) (*models.SessionQuestion, error) {
	if deckID == "" {
		deckID = s.state.GetSettings(ctx).ActiveDeckID
	}

	deck, err := s.decks.DeckByID(ctx, deckID)
	if err != nil {
		return nil, err
	}

	starred := s.state.GetStarred(ctx)
	history := s.state.GetHistory(ctx)
	showEn := s.state.GetSettings(ctx).ShowEN

	queue := buildQueue(deck.ID, deck.Questions, filter, starred, history, showEn)
	if len(queue) == 0 {
		return nil, ErrNoMatchingQuestions
	}

	s.mu.Lock()
	s.current = &quizSession{
		deckID: deck.ID,
		queue:  queue,
	}
	s.mu.Unlock()

	s.logger.Info("quiz session started",
		zap.String("deck_id", deck.ID),
		zap.String("mode", filter.Mode),
		zap.Int("queue_length", len(queue)),
	)

	return s.Current(ctx)
}

// Current returns the view of the question currently presented
func (s *sessionService) Current(ctx context.Context) (*models.SessionQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoActiveSession
	}
	if s.current.complete {
		return nil, ErrSessionComplete
	}

	return s.questionViewLocked(ctx), nil
}

// Submit records the answer for the current question and transitions the
// session to the answered state.
//
// For a matching-style question the canonical answer is used as the selection
// and the selected parameter is ignored. Submitting twice for the same
// presented question is rejected; the history append and the 20-entry cap are
// applied together, so no reader can observe a longer list.
func (s *sessionService) Submit(ctx context.Context, selected string) (*models.AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoActiveSession
	}
	if s.current.complete {
		return nil, ErrSessionComplete
	}
	if s.current.answered {
		return nil, ErrAlreadyAnswered
	}

	question := &s.current.queue[s.current.index]
	if question.IsMatching() {
		selected = question.Answer
	} else if selected == "" {
		return nil, ErrSelectionRequired
	}

	correct := selected == question.Answer
	key := models.QuestionKey(s.current.deckID, question)

	history := s.state.GetHistory(ctx)
	history[key] = models.TruncateHistory(append(history[key], models.HistoryRecord{
		Timestamp: time.Now().UnixMilli(),
		Correct:   correct,
		Selected:  selected,
	}))

	if err := s.state.SaveHistory(ctx, history); err != nil {
		s.logger.Error("failed to record answer", zap.String("question_key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to record answer: %w", err)
	}

	s.current.stats.Total++
	if correct {
		s.current.stats.Correct++
	}
	s.current.answered = true

	return &models.AnswerResult{
		Correct:  correct,
		Selected: selected,
		Answer:   question.Answer,
		Session:  s.current.stats,
	}, nil
}

// Advance moves to the next question, or completes the session after the
// last one. It never touches history. The returned question is nil when the
// session completed; Summary then reports the final counters.
func (s *sessionService) Advance(ctx context.Context) (*models.SessionQuestion, *models.SessionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, nil, ErrNoActiveSession
	}
	if s.current.complete {
		return nil, nil, ErrSessionComplete
	}
	if !s.current.answered {
		return nil, nil, ErrNotAnswered
	}

	if s.current.index == len(s.current.queue)-1 {
		s.current.complete = true
		return nil, &models.SessionSummary{Completed: true, Stats: s.current.stats}, nil
	}

	s.current.index++
	s.current.answered = false

	return s.questionViewLocked(ctx), nil, nil
}

// Summary reports the session counters, available also after completion
func (s *sessionService) Summary(ctx context.Context) (*models.SessionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoActiveSession
	}

	return &models.SessionSummary{
		Completed: s.current.complete,
		Stats:     s.current.stats,
	}, nil
}

// questionViewLocked builds the view of the current question.
// Caller must hold s.mu.
func (s *sessionService) questionViewLocked(ctx context.Context) *models.SessionQuestion {
	question := s.current.queue[s.current.index]
	key := models.QuestionKey(s.current.deckID, &question)

	_, isStarred := s.state.GetStarred(ctx)[key]
	_, isReported := s.state.GetReports(ctx)[key]

	return &models.SessionQuestion{
		Key:      key,
		Position: s.current.index + 1,
		Total:    len(s.current.queue),
		Matching: question.IsMatching(),
		Starred:  isStarred,
		Reported: isReported,
		Question: question,
	}
}
