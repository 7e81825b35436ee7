package services

import (
	"context"

	"github.com/certquiz/backend/internal/models"
)

// mockStateRepository is an in-memory mock implementation of StateRepository.
// Get methods return copies so mutations only land through an explicit Save,
// and each Save bumps a write counter so tests can assert what was touched.
type mockStateRepository struct {
	history  models.History
	starred  map[string]struct{}
	reports  map[string]models.Report
	decks    []models.Deck
	settings models.Settings

	saveHistoryErr  error
	saveStarredErr  error
	saveReportsErr  error
	saveDecksErr    error
	saveSettingsErr error

	historyWrites  int
	starredWrites  int
	reportsWrites  int
	decksWrites    int
	settingsWrites int
}

func newMockStateRepository() *mockStateRepository {
	return &mockStateRepository{
		history: models.History{},
		starred: map[string]struct{}{},
		reports: map[string]models.Report{},
	}
}

func (m *mockStateRepository) GetHistory(ctx context.Context) models.History {
	out := models.History{}
	for key, records := range m.history {
		out[key] = append([]models.HistoryRecord(nil), records...)
	}
	return out
}

func (m *mockStateRepository) SaveHistory(ctx context.Context, history models.History) error {
	if m.saveHistoryErr != nil {
		return m.saveHistoryErr
	}
	m.history = history
	m.historyWrites++
	return nil
}

func (m *mockStateRepository) GetStarred(ctx context.Context) map[string]struct{} {
	out := make(map[string]struct{}, len(m.starred))
	for key := range m.starred {
		out[key] = struct{}{}
	}
	return out
}

func (m *mockStateRepository) SaveStarred(ctx context.Context, starred map[string]struct{}) error {
	if m.saveStarredErr != nil {
		return m.saveStarredErr
	}
	m.starred = starred
	m.starredWrites++
	return nil
}

func (m *mockStateRepository) GetReports(ctx context.Context) map[string]models.Report {
	out := make(map[string]models.Report, len(m.reports))
	for key, report := range m.reports {
		out[key] = report
	}
	return out
}

func (m *mockStateRepository) SaveReports(ctx context.Context, reports map[string]models.Report) error {
	if m.saveReportsErr != nil {
		return m.saveReportsErr
	}
	m.reports = reports
	m.reportsWrites++
	return nil
}

func (m *mockStateRepository) GetCustomDecks(ctx context.Context) []models.Deck {
	return append([]models.Deck(nil), m.decks...)
}

func (m *mockStateRepository) SaveCustomDecks(ctx context.Context, decks []models.Deck) error {
	if m.saveDecksErr != nil {
		return m.saveDecksErr
	}
	m.decks = decks
	m.decksWrites++
	return nil
}

func (m *mockStateRepository) GetSettings(ctx context.Context) models.Settings {
	return m.settings
}

func (m *mockStateRepository) SaveSettings(ctx context.Context, settings models.Settings) error {
	if m.saveSettingsErr != nil {
		return m.saveSettingsErr
	}
	m.settings = settings
	m.settingsWrites++
	return nil
}

// testQuestion builds a selectable two-option question for tests
func testQuestion(chapter, id int, answer string, tags ...string) models.Question {
	return models.Question{
		Chapter:    chapter,
		ID:         id,
		QuestionJP: "テスト問題",
		QuestionEN: "test question",
		Options: []models.QuestionOption{
			{Label: "A", TextJP: "選択肢A", TextEN: "option A"},
			{Label: "B", TextJP: "選択肢B", TextEN: "option B"},
		},
		Answer:     answer,
		TagsJP:     tags,
		TagsEN:     []string{},
		Difficulty: models.DifficultyMedium,
		Type:       "single",
	}
}

// testMatchingQuestion builds a matching-style question (single option)
func testMatchingQuestion(chapter, id int, answer string) models.Question {
	return models.Question{
		Chapter:    chapter,
		ID:         id,
		QuestionJP: "用語",
		Options: []models.QuestionOption{
			{Label: "A", TextJP: "定義"},
		},
		Answer:     answer,
		TagsJP:     []string{},
		TagsEN:     []string{},
		Difficulty: models.DifficultyMedium,
	}
}

// testDeck wraps questions into a deck with the given ID
func testDeck(id string, questions ...models.Question) models.Deck {
	return models.Deck{
		ID:        id,
		Name:      "Test Deck",
		Questions: questions,
	}
}
