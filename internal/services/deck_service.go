package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/certquiz/backend/internal/models"
	"go.uber.org/zap"
)

// Deck errors that callers are expected to distinguish
var (
	ErrDeckNotFound = errors.New("deck not found")
	ErrBuiltinDeck  = errors.New("built-in decks cannot be removed")
)

// ValidationError carries every shape violation found in an import batch.
// The whole batch is rejected when any record fails; partial imports are not
// permitted.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question import failed with %d violations: %s",
		len(e.Violations), strings.Join(e.Violations, "; "))
}

// importQuestion is the permissive decode target for externally supplied
// question records. Pointer and raw fields distinguish absent from zero so
// the validator can report explicit absence.
type importQuestion struct {
	Chapter       *int            `json:"chapter"`
	DomainJP      string          `json:"domain_jp"`
	DomainEN      string          `json:"domain_en"`
	ID            *int            `json:"id"`
	QuestionJP    string          `json:"question_jp"`
	QuestionEN    string          `json:"question_en"`
	Options       json.RawMessage `json:"options"`
	Answer        string          `json:"answer"`
	ExplanationJP string          `json:"explanation_jp"`
	ExplanationEN string          `json:"explanation_en"`
	TagsJP        []string        `json:"tags_jp"`
	TagsEN        []string        `json:"tags_en"`
	Difficulty    string          `json:"difficulty"`
	Type          string          `json:"type"`
	WhyNot        map[string]string `json:"why_not"`
}

// deckService manages built-in and custom decks and the question import path
type deckService struct {
	state    StateRepository
	builtins []models.Deck
	logger   *zap.Logger
}

// NewDeckService creates a new deck service
func NewDeckService(state StateRepository, builtins []models.Deck, logger *zap.Logger) *deckService {
	return &deckService{
		state:    state,
		builtins: builtins,
		logger:   logger,
	}
}

// AllDecks returns every deck, built-in decks first
func (s *deckService) AllDecks(ctx context.Context) []models.Deck {
	decks := make([]models.Deck, 0, len(s.builtins))
	decks = append(decks, s.builtins...)
	decks = append(decks, s.state.GetCustomDecks(ctx)...)
	return decks
}

// DeckByID retrieves one deck, built-in or custom
func (s *deckService) DeckByID(ctx context.Context, deckID string) (*models.Deck, error) {
	for i := range s.builtins {
		if s.builtins[i].ID == deckID {
			return &s.builtins[i], nil
		}
	}
	for _, deck := range s.state.GetCustomDecks(ctx) {
		if deck.ID == deckID {
			return &deck, nil
		}
	}
	return nil, ErrDeckNotFound
}

// RemoveCustomDeck deletes a custom deck. History, starred and report entries
// referencing its questions are intentionally left behind; they simply no
// longer resolve to a visible question.
func (s *deckService) RemoveCustomDeck(ctx context.Context, deckID string) error {
	for i := range s.builtins {
		if s.builtins[i].ID == deckID {
			return ErrBuiltinDeck
		}
	}

	decks := s.state.GetCustomDecks(ctx)
	kept := decks[:0]
	found := false
	for _, deck := range decks {
		if deck.ID == deckID {
			found = true
			continue
		}
		kept = append(kept, deck)
	}
	if !found {
		return ErrDeckNotFound
	}

	if err := s.state.SaveCustomDecks(ctx, kept); err != nil {
		return fmt.Errorf("failed to remove deck: %w", err)
	}

	// If the removed deck was active, fall back to the first built-in deck
	settings := s.effectiveSettings(ctx)
	if settings.ActiveDeckID == deckID {
		settings.ActiveDeckID = s.builtins[0].ID
		if err := s.state.SaveSettings(ctx, settings); err != nil {
			s.logger.Warn("failed to reset active deck after removal", zap.Error(err))
		}
	}

	return nil
}

// ImportQuestions validates an externally supplied question document (a
// single object or an array of objects) and, when every record passes with
// zero violations, creates a new custom deck from the normalized records and
// makes it the active deck.
//
// A parse failure or any validation violation leaves all persisted state
// untouched. Returns ErrDeckNotFound never; a *ValidationError lists every
// violation across the whole batch.
func (s *deckService) ImportQuestions(ctx context.Context, raw []byte) (*models.Deck, error) {
	records, err := splitQuestionDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse question JSON: %w", err)
	}

	var violations []string
	questions := make([]models.Question, 0, len(records))
	for i, record := range records {
		candidate, recordViolations := decodeQuestion(record, i)
		violations = append(violations, recordViolations...)
		if len(recordViolations) == 0 && len(violations) == 0 {
			questions = append(questions, normalizeQuestion(candidate))
		}
	}
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	now := time.Now()
	deck := models.Deck{
		ID:          fmt.Sprintf("custom-%d", now.UnixMilli()),
		Name:        fmt.Sprintf("Import %s", now.Format("2006-01-02")),
		Description: fmt.Sprintf("%d問", len(questions)),
		Questions:   questions,
		IsBuiltin:   false,
		CreatedAt:   now.UTC().Format(time.RFC3339),
	}

	decks := append(s.state.GetCustomDecks(ctx), deck)
	if err := s.state.SaveCustomDecks(ctx, decks); err != nil {
		return nil, fmt.Errorf("failed to save imported deck: %w", err)
	}

	// The freshly imported deck becomes the active one
	settings := s.effectiveSettings(ctx)
	settings.ActiveDeckID = deck.ID
	if err := s.state.SaveSettings(ctx, settings); err != nil {
		s.logger.Warn("failed to activate imported deck", zap.Error(err))
	}

	s.logger.Info("custom deck imported",
		zap.String("deck_id", deck.ID),
		zap.Int("questions", len(questions)),
	)

	return &deck, nil
}

// Settings returns the persisted settings with defaults applied
func (s *deckService) Settings(ctx context.Context) models.Settings {
	return s.effectiveSettings(ctx)
}

// UpdateSettings persists the settings as one unit
func (s *deckService) UpdateSettings(ctx context.Context, settings models.Settings) error {
	if _, err := s.DeckByID(ctx, settings.ActiveDeckID); err != nil {
		return err
	}
	if err := s.state.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// ActivateDeck makes the deck the active one for future sessions
func (s *deckService) ActivateDeck(ctx context.Context, deckID string) error {
	if _, err := s.DeckByID(ctx, deckID); err != nil {
		return err
	}

	settings := s.effectiveSettings(ctx)
	settings.ActiveDeckID = deckID
	if err := s.state.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to activate deck: %w", err)
	}
	return nil
}

// effectiveSettings fills in the default active deck when settings were
// never saved or reference nothing.
func (s *deckService) effectiveSettings(ctx context.Context) models.Settings {
	settings := s.state.GetSettings(ctx)
	if settings.ActiveDeckID == "" {
		settings.ActiveDeckID = s.builtins[0].ID
	}
	return settings
}

// splitQuestionDocument accepts a single question object or an array of them
func splitQuestionDocument(raw []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []json.RawMessage
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var record json.RawMessage
	if err := json.Unmarshal(trimmed, &record); err != nil {
		return nil, err
	}
	return []json.RawMessage{record}, nil
}

// decodeQuestion decodes one record and evaluates every shape check.
// All checks run; nothing short-circuits, so a record with several problems
// reports all of them at once.
func decodeQuestion(raw json.RawMessage, idx int) (*importQuestion, []string) {
	var q importQuestion
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, []string{fmt.Sprintf("[%d] not a valid question object", idx)}
	}

	var violations []string
	if q.Chapter == nil || *q.Chapter < models.MinChapter || *q.Chapter > models.MaxChapter {
		violations = append(violations, fmt.Sprintf("[%d] chapter must be between %d and %d", idx, models.MinChapter, models.MaxChapter))
	}
	if q.ID == nil {
		violations = append(violations, fmt.Sprintf("[%d] id is required", idx))
	}
	if q.QuestionJP == "" && q.QuestionEN == "" {
		violations = append(violations, fmt.Sprintf("[%d] question text is required", idx))
	}
	if !isJSONArray(q.Options) {
		violations = append(violations, fmt.Sprintf("[%d] options must be an array", idx))
	}
	if q.Answer == "" {
		violations = append(violations, fmt.Sprintf("[%d] answer is required", idx))
	}

	return &q, violations
}

// isJSONArray reports whether the raw value is present and a JSON array
func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// normalizeQuestion converts a validated record into the internal question
// shape, defaulting the optional fields.
func normalizeQuestion(q *importQuestion) models.Question {
	var options []models.QuestionOption
	// Validation guarantees a JSON array; malformed option entries decode to
	// their zero values rather than failing the batch.
	_ = json.Unmarshal(q.Options, &options)
	if options == nil {
		options = []models.QuestionOption{}
	}

	normalized := models.Question{
		Chapter:       *q.Chapter,
		DomainJP:      q.DomainJP,
		DomainEN:      q.DomainEN,
		ID:            *q.ID,
		QuestionJP:    q.QuestionJP,
		QuestionEN:    q.QuestionEN,
		Options:       options,
		Answer:        q.Answer,
		ExplanationJP: q.ExplanationJP,
		ExplanationEN: q.ExplanationEN,
		TagsJP:        q.TagsJP,
		TagsEN:        q.TagsEN,
		Difficulty:    q.Difficulty,
		Type:          q.Type,
		WhyNot:        q.WhyNot,
	}

	if normalized.Type == "" {
		normalized.Type = "single"
	}
	if normalized.TagsJP == nil {
		normalized.TagsJP = []string{}
	}
	if normalized.TagsEN == nil {
		normalized.TagsEN = []string{}
	}
	if normalized.WhyNot == nil {
		normalized.WhyNot = map[string]string{}
	}
	if normalized.Difficulty == "" {
		normalized.Difficulty = models.DifficultyMedium
	}

	return normalized
}
