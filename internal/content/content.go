// Package content supplies the built-in, read-only question decks.
// Deck data is embedded at build time and treated as already validated.
package content

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/certquiz/backend/internal/models"
)

//go:embed questions_exam.json
var examQuestionsJSON []byte

//go:embed questions_words.json
var wordQuestionsJSON []byte

// Built-in deck IDs. History and starred keys reference these IDs, so they
// must never change between releases.
const (
	ExamDeckID  = "cissp-exam"
	WordsDeckID = "cissp-words"
)

// BuiltinDecks decodes the embedded question banks into the two built-in
// decks. The returned decks are fixed at startup and never mutated.
func BuiltinDecks() ([]models.Deck, error) {
	var examQuestions []models.Question
	if err := json.Unmarshal(examQuestionsJSON, &examQuestions); err != nil {
		return nil, fmt.Errorf("failed to decode built-in exam questions: %w", err)
	}

	var wordQuestions []models.Question
	if err := json.Unmarshal(wordQuestionsJSON, &wordQuestions); err != nil {
		return nil, fmt.Errorf("failed to decode built-in word questions: %w", err)
	}

	return []models.Deck{
		{
			ID:          ExamDeckID,
			Name:        "CISSP試験問題",
			Description: fmt.Sprintf("全%d問", len(examQuestions)),
			Questions:   examQuestions,
			IsBuiltin:   true,
		},
		{
			ID:          WordsDeckID,
			Name:        "CISSP単語帳",
			Description: fmt.Sprintf("知識問題%d問", len(wordQuestions)),
			Questions:   wordQuestions,
			IsBuiltin:   true,
		},
	}, nil
}
