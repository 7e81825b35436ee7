package content

import (
	"testing"

	"github.com/certquiz/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinDecks(t *testing.T) {
	decks, err := BuiltinDecks()

	require.NoError(t, err)
	require.Len(t, decks, 2)

	assert.Equal(t, ExamDeckID, decks[0].ID)
	assert.Equal(t, WordsDeckID, decks[1].ID)

	for _, deck := range decks {
		assert.True(t, deck.IsBuiltin)
		assert.NotEmpty(t, deck.Questions)

		for _, q := range deck.Questions {
			assert.GreaterOrEqual(t, q.Chapter, models.MinChapter)
			assert.LessOrEqual(t, q.Chapter, models.MaxChapter)
			assert.NotEmpty(t, q.Answer)
		}
	}
}
