package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/certquiz/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func builtinDecksForTest() []models.Deck {
	return []models.Deck{
		{ID: "builtin-1", Name: "Builtin One", IsBuiltin: true, Questions: []models.Question{testQuestion(1, 1, "A")}},
		{ID: "builtin-2", Name: "Builtin Two", IsBuiltin: true, Questions: []models.Question{testQuestion(9, 1, "B")}},
	}
}

func TestDeckService_AllDecks(t *testing.T) {
	state := newMockStateRepository()
	state.decks = []models.Deck{{ID: "custom-1", Name: "Custom"}}

	svc := NewDeckService(state, builtinDecksForTest(), zap.NewNop())
	decks := svc.AllDecks(context.Background())

	require.Len(t, decks, 3)
	assert.Equal(t, "builtin-1", decks[0].ID)
	assert.Equal(t, "builtin-2", decks[1].ID)
	assert.Equal(t, "custom-1", decks[2].ID)
}

func TestDeckService_DeckByID(t *testing.T) {
	state := newMockStateRepository()
	state.decks = []models.Deck{{ID: "custom-1", Name: "Custom"}}
	svc := NewDeckService(state, builtinDecksForTest(), zap.NewNop())
	ctx := context.Background()

	deck, err := svc.DeckByID(ctx, "builtin-2")
	require.NoError(t, err)
	assert.Equal(t, "Builtin Two", deck.Name)

	deck, err = svc.DeckByID(ctx, "custom-1")
	require.NoError(t, err)
	assert.Equal(t, "Custom", deck.Name)

	_, err = svc.DeckByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrDeckNotFound)
}

func TestDeckService_RemoveCustomDeck(t *testing.T) {
	state := newMockStateRepository()
	state.decks = []models.Deck{{ID: "custom-1"}, {ID: "custom-2"}}
	svc := NewDeckService(state, builtinDecksForTest(), zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.RemoveCustomDeck(ctx, "custom-1"))
	require.Len(t, state.decks, 1)
	assert.Equal(t, "custom-2", state.decks[0].ID)

	assert.ErrorIs(t, svc.RemoveCustomDeck(ctx, "custom-1"), ErrDeckNotFound)
	assert.ErrorIs(t, svc.RemoveCustomDeck(ctx, "builtin-1"), ErrBuiltinDeck)
}

func TestDeckService_RemoveActiveDeckResetsSettings(t *testing.T) {
	state := newMockStateRepository()
	state.decks = []models.Deck{{ID: "custom-1"}}
	state.settings = models.Settings{ShowEN: true, ActiveDeckID: "custom-1"}
	svc := NewDeckService(state, builtinDecksForTest(), zap.NewNop())

	require.NoError(t, svc.RemoveCustomDeck(context.Background(), "custom-1"))

	assert.Equal(t, "builtin-1", state.settings.ActiveDeckID)
	assert.True(t, state.settings.ShowEN, "other settings survive the reset")
}

func TestDeckService_ImportQuestionsSingleObject(t *testing.T) {
	state := newMockStateRepository()
	svc := NewDeckService(state, builtinDecksForTest(), zap.NewNop())

	raw := `{
		"chapter": 3,
		"id": 42,
		"question_jp": "テスト",
		"options": [{"label": "A", "text_jp": "はい"}, {"label": "B", "text_jp": "いいえ"}],
		"answer": "A"
	}`

	deck, err := svc.ImportQuestions(context.Background(), []byte(raw))

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(deck.ID, "custom-"))
	assert.True(t, strings.HasPrefix(deck.Name, "Import "))
	assert.False(t, deck.IsBuiltin)
	assert.NotEmpty(t, deck.CreatedAt)
	require.Len(t, deck.Questions, 1)

	// Optional fields are defaulted during normalization
	q := deck.Questions[0]
	assert.Equal(t, "single", q.Type)
	assert.Equal(t, models.DifficultyMedium, q.Difficulty)
	assert.NotNil(t, q.TagsJP)
	assert.NotNil(t, q.TagsEN)
	assert.NotNil(t, q.WhyNot)

	// The new deck was persisted and became the active one
	require.Len(t, state.decks, 1)
	assert.Equal(t, deck.ID, state.settings.ActiveDeckID)
}

func TestDeckService_ImportQuestionsArray(t *testing.T) {
	state := newMockStateRepository()
	svc := NewDeckService(state, builtinDecksForTest(), zap.NewNop())

	raw := `[
		{"chapter": 1, "id": 1, "question_en": "first", "options": [], "answer": "A"},
		{"chapter": 12, "id": 2, "question_en": "second", "options": [], "answer": "B"}
	]`

	deck, err := svc.ImportQuestions(context.Background(), []byte(raw))

	require.NoError(t, err)
	assert.Len(t, deck.Questions, 2)
}

func TestDeckService_ImportQuestionsValidation(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		violation string
	}{
		{
			name:      "chapter above range",
			raw:       `{"chapter": 13, "id": 1, "question_en": "q", "options": [], "answer": "A"}`,
			violation: "chapter must be between 1 and 12",
		},
		{
			name:      "chapter missing",
			raw:       `{"id": 1, "question_en": "q", "options": [], "answer": "A"}`,
			violation: "chapter must be between 1 and 12",
		},
		{
			name:      "id missing",
			raw:       `{"chapter": 1, "question_en": "q", "options": [], "answer": "A"}`,
			violation: "id is required",
		},
		{
			name:      "question text missing in both languages",
			raw:       `{"chapter": 1, "id": 1, "options": [], "answer": "A"}`,
			violation: "question text is required",
		},
		{
			name:      "options not an array",
			raw:       `{"chapter": 1, "id": 1, "question_en": "q", "options": "A,B", "answer": "A"}`,
			violation: "options must be an array",
		},
		{
			name:      "answer missing",
			raw:       `{"chapter": 1, "id": 1, "question_en": "q", "options": []}`,
			violation: "answer is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := newMockStateRepository()
			svc := NewDeckService(state, builtinDecksForTest(), zap.NewNop())

			_, err := svc.ImportQuestions(context.Background(), []byte(tt.raw))

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.Len(t, validationErr.Violations, 1)
			assert.Contains(t, validationErr.Violations[0], tt.violation)

			// A rejected batch writes nothing
			assert.Empty(t, state.decks)
			assert.Zero(t, state.decksWrites)
		})
	}
}

func TestDeckService_ImportQuestionsCollectsAllViolations(t *testing.T) {
	state := newMockStateRepository()
	svc := NewDeckService(state, builtinDecksForTest(), zap.NewNop())

	// First record has two problems, second record is fine, third has one
	raw := `[
		{"chapter": 0, "id": 1, "question_en": "q", "options": []},
		{"chapter": 1, "id": 2, "question_en": "q", "options": [], "answer": "A"},
		{"chapter": 2, "question_en": "q", "options": [], "answer": "B"}
	]`

	_, err := svc.ImportQuestions(context.Background(), []byte(raw))

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Len(t, validationErr.Violations, 3)
	assert.Contains(t, validationErr.Violations[0], "[0]")
	assert.Contains(t, validationErr.Violations[2], "[2]")
}

func TestDeckService_ImportQuestionsMalformedJSON(t *testing.T) {
	state := newMockStateRepository()
	svc := NewDeckService(state, builtinDecksForTest(), zap.NewNop())

	_, err := svc.ImportQuestions(context.Background(), []byte(`{not json`))

	require.Error(t, err)
	var validationErr *ValidationError
	assert.False(t, errors.As(err, &validationErr), "parse failures are not validation errors")
	assert.Empty(t, state.decks)
}

func TestDeckService_ActivateDeck(t *testing.T) {
	state := newMockStateRepository()
	svc := NewDeckService(state, builtinDecksForTest(), zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.ActivateDeck(ctx, "builtin-2"))
	assert.Equal(t, "builtin-2", state.settings.ActiveDeckID)

	assert.ErrorIs(t, svc.ActivateDeck(ctx, "missing"), ErrDeckNotFound)
}

func TestDeckService_SettingsDefaults(t *testing.T) {
	state := newMockStateRepository()
	svc := NewDeckService(state, builtinDecksForTest(), zap.NewNop())

	settings := svc.Settings(context.Background())

	assert.Equal(t, "builtin-1", settings.ActiveDeckID)
	assert.False(t, settings.ShowEN)
}

func TestDeckService_UpdateSettings(t *testing.T) {
	state := newMockStateRepository()
	svc := NewDeckService(state, builtinDecksForTest(), zap.NewNop())
	ctx := context.Background()

	err := svc.UpdateSettings(ctx, models.Settings{ShowEN: true, ActiveDeckID: "builtin-2"})
	require.NoError(t, err)
	assert.Equal(t, "builtin-2", state.settings.ActiveDeckID)
	assert.True(t, state.settings.ShowEN)

	err = svc.UpdateSettings(ctx, models.Settings{ActiveDeckID: "missing"})
	assert.ErrorIs(t, err, ErrDeckNotFound)
}
