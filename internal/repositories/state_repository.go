package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/certquiz/backend/internal/models"
	"go.uber.org/zap"
)

// KVStore is the interface that wraps the key-value persistence substrate
type KVStore interface {
	// Method Get retrieves the value stored under a key.
	//
	// The boolean return value reports whether the key exists; a missing key
	// is not an error. If some error occurs during data retrieval, the error
	// will be returned.
	Get(ctx context.Context, key string) (string, bool, error)
	// Method Set stores a value under a key, replacing any previous value.
	//
	// If some error occurs during the write, the error will be returned and
	// the previously stored value is left unchanged.
	Set(ctx context.Context, key, value string) error
	// Method Delete removes a key from the store. Deleting a missing key is
	// a no-op.
	Delete(ctx context.Context, key string) error
}

// Storage keys, one per state slice. These are part of the persisted layout
// and must not change between releases.
const (
	keyHistory     = "quiz-history-v1"
	keyStarred     = "quiz-starred-v1"
	keyReports     = "quiz-reports-v1"
	keyCustomDecks = "quiz-custom-decks-v1"
	keySettings    = "quiz-settings-v1"
)

// stateRepository serializes each user-state slice to and from the key-value
// store. Reads degrade to empty defaults on any failure so the application
// stays usable; writes surface their errors to the caller.
type stateRepository struct {
	kv     KVStore
	logger *zap.Logger
}

// NewStateRepository creates a new state repository
func NewStateRepository(kv KVStore, logger *zap.Logger) *stateRepository {
	return &stateRepository{
		kv:     kv,
		logger: logger,
	}
}

// GetHistory retrieves the full answer-history map
func (r *stateRepository) GetHistory(ctx context.Context) models.History {
	history := models.History{}
	r.load(ctx, keyHistory, &history)
	if history == nil {
		history = models.History{}
	}
	return history
}

// SaveHistory persists the full answer-history map
func (r *stateRepository) SaveHistory(ctx context.Context, history models.History) error {
	return r.store(ctx, keyHistory, history)
}

// GetStarred retrieves the starred question-key set
func (r *stateRepository) GetStarred(ctx context.Context) map[string]struct{} {
	var keys []string
	r.load(ctx, keyStarred, &keys)

	starred := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		starred[key] = struct{}{}
	}
	return starred
}

// SaveStarred persists the starred question-key set.
// The set is stored as a sorted list so the serialized form is deterministic.
func (r *stateRepository) SaveStarred(ctx context.Context, starred map[string]struct{}) error {
	keys := make([]string, 0, len(starred))
	for key := range starred {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return r.store(ctx, keyStarred, keys)
}

// GetReports retrieves the error-report map
func (r *stateRepository) GetReports(ctx context.Context) map[string]models.Report {
	reports := map[string]models.Report{}
	r.load(ctx, keyReports, &reports)
	if reports == nil {
		reports = map[string]models.Report{}
	}
	return reports
}

// SaveReports persists the error-report map
func (r *stateRepository) SaveReports(ctx context.Context, reports map[string]models.Report) error {
	return r.store(ctx, keyReports, reports)
}

// GetCustomDecks retrieves all user-imported decks
func (r *stateRepository) GetCustomDecks(ctx context.Context) []models.Deck {
	var decks []models.Deck
	r.load(ctx, keyCustomDecks, &decks)
	if decks == nil {
		decks = []models.Deck{}
	}
	return decks
}

// SaveCustomDecks persists all user-imported decks
func (r *stateRepository) SaveCustomDecks(ctx context.Context, decks []models.Deck) error {
	return r.store(ctx, keyCustomDecks, decks)
}

// GetSettings retrieves the persisted settings. A missing or unreadable
// slice yields zero-value settings; the caller applies defaults.
func (r *stateRepository) GetSettings(ctx context.Context) models.Settings {
	var settings models.Settings
	r.load(ctx, keySettings, &settings)
	return settings
}

// SaveSettings persists the settings as one unit
func (r *stateRepository) SaveSettings(ctx context.Context, settings models.Settings) error {
	return r.store(ctx, keySettings, settings)
}

// load reads and decodes one slice into out. Any failure leaves out untouched
// beyond what json.Unmarshal wrote and is logged as a degraded read.
func (r *stateRepository) load(ctx context.Context, key string, out any) {
	value, ok, err := r.kv.Get(ctx, key)
	if err != nil {
		r.logger.Warn("state read failed, using empty default",
			zap.String("key", key),
			zap.Error(err),
		)
		return
	}
	if !ok {
		return
	}

	if err := json.Unmarshal([]byte(value), out); err != nil {
		r.logger.Warn("state slice is not valid JSON, using empty default",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// store encodes and writes one slice
func (r *stateRepository) store(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode state slice %q: %w", key, err)
	}

	if err := r.kv.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to persist state slice %q: %w", key, err)
	}

	return nil
}
