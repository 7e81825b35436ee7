package services

import (
	"context"

	"github.com/certquiz/backend/internal/models"
)

// StateRepository is the interface that wraps persisted user-state access.
// Reads never fail: a missing or unreadable slice degrades to its empty
// default so the application stays usable. Writes return an error and leave
// the previously persisted slice unchanged on failure.
type StateRepository interface {
	// Method GetHistory retrieves the full answer-history map, keyed by
	// composite question key. Records are in chronological order and each
	// list holds at most the most recent 20 entries.
	GetHistory(ctx context.Context) models.History
	// Method SaveHistory persists the full answer-history map.
	//
	// If some error occurs during the write, the error will be returned.
	SaveHistory(ctx context.Context, history models.History) error
	// Method GetStarred retrieves the starred question-key set.
	GetStarred(ctx context.Context) map[string]struct{}
	// Method SaveStarred persists the starred question-key set.
	//
	// If some error occurs during the write, the error will be returned.
	SaveStarred(ctx context.Context, starred map[string]struct{}) error
	// Method GetReports retrieves the error-report map, keyed by composite
	// question key.
	GetReports(ctx context.Context) map[string]models.Report
	// Method SaveReports persists the error-report map.
	//
	// If some error occurs during the write, the error will be returned.
	SaveReports(ctx context.Context, reports map[string]models.Report) error
	// Method GetCustomDecks retrieves all user-imported decks.
	GetCustomDecks(ctx context.Context) []models.Deck
	// Method SaveCustomDecks persists all user-imported decks.
	//
	// If some error occurs during the write, the error will be returned.
	SaveCustomDecks(ctx context.Context, decks []models.Deck) error
	// Method GetSettings retrieves the persisted settings. A missing slice
	// yields zero-value settings; callers apply their own defaults.
	GetSettings(ctx context.Context) models.Settings
	// Method SaveSettings persists the settings as one unit.
	//
	// If some error occurs during the write, the error will be returned.
	SaveSettings(ctx context.Context, settings models.Settings) error
}
