package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/certquiz/backend/internal/models"
	"go.uber.org/zap"
)

// Snapshot import modes
const (
	ImportModeReplace = "replace"
	ImportModeMerge   = "merge"
)

// Snapshot errors that callers are expected to distinguish
var (
	// ErrUnsupportedVersion rejects a snapshot before any of its fields are
	// read or written. There is exactly one supported version.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	ErrInvalidImportMode  = errors.New("import mode must be \"replace\" or \"merge\"")
)

// snapshotService packages the full user state into portable snapshots and
// restores them
type snapshotService struct {
	state  StateRepository
	logger *zap.Logger
}

// NewSnapshotService creates a new snapshot service
func NewSnapshotService(state StateRepository, logger *zap.Logger) *snapshotService {
	return &snapshotService{
		state:  state,
		logger: logger,
	}
}

// Export reads all five state slices and wraps them with the current format
// version and an export timestamp. Pure read; nothing is mutated.
func (s *snapshotService) Export(ctx context.Context) *models.Snapshot {
	starred := s.state.GetStarred(ctx)
	starredList := make([]string, 0, len(starred))
	for key := range starred {
		starredList = append(starredList, key)
	}
	sort.Strings(starredList)

	settings := s.state.GetSettings(ctx)

	return &models.Snapshot{
		Version:     models.SnapshotVersion,
		ExportedAt:  time.Now().UTC().Format(time.RFC3339),
		History:     s.state.GetHistory(ctx),
		Starred:     starredList,
		Reports:     s.state.GetReports(ctx),
		CustomDecks: s.state.GetCustomDecks(ctx),
		Settings:    &settings,
	}
}

// Import reconstitutes a snapshot into the persisted state.
//
// A snapshot whose version differs from the supported one is rejected with
// ErrUnsupportedVersion before any slice is read or written. Replace mode
// overwrites every slice wholesale; merge mode unions and append-dedups the
// incoming state into the existing state. Settings, when present in the
// snapshot, overwrite the local settings in both modes.
func (s *snapshotService) Import(ctx context.Context, snapshot *models.Snapshot, mode string) error {
	if snapshot.Version != models.SnapshotVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, snapshot.Version, models.SnapshotVersion)
	}

	switch mode {
	case ImportModeReplace:
		if err := s.importReplace(ctx, snapshot); err != nil {
			return err
		}
	case ImportModeMerge:
		if err := s.importMerge(ctx, snapshot); err != nil {
			return err
		}
	default:
		return ErrInvalidImportMode
	}

	if snapshot.Settings != nil {
		if err := s.state.SaveSettings(ctx, *snapshot.Settings); err != nil {
			return fmt.Errorf("failed to import settings: %w", err)
		}
	}

	s.logger.Info("snapshot imported", zap.String("mode", mode))
	return nil
}

// importReplace overwrites every local slice with the snapshot's slice
func (s *snapshotService) importReplace(ctx context.Context, snapshot *models.Snapshot) error {
	history := snapshot.History
	if history == nil {
		history = models.History{}
	}
	if err := s.state.SaveHistory(ctx, history); err != nil {
		return fmt.Errorf("failed to import history: %w", err)
	}

	starred := make(map[string]struct{}, len(snapshot.Starred))
	for _, key := range snapshot.Starred {
		starred[key] = struct{}{}
	}
	if err := s.state.SaveStarred(ctx, starred); err != nil {
		return fmt.Errorf("failed to import starred set: %w", err)
	}

	reports := snapshot.Reports
	if reports == nil {
		reports = map[string]models.Report{}
	}
	if err := s.state.SaveReports(ctx, reports); err != nil {
		return fmt.Errorf("failed to import reports: %w", err)
	}

	decks := snapshot.CustomDecks
	if decks == nil {
		decks = []models.Deck{}
	}
	if err := s.state.SaveCustomDecks(ctx, decks); err != nil {
		return fmt.Errorf("failed to import custom decks: %w", err)
	}

	return nil
}

// importMerge unions the snapshot into the existing local state without
// losing local records. Importing the same snapshot twice yields the same
// state as importing it once.
func (s *snapshotService) importMerge(ctx context.Context, snapshot *models.Snapshot) error {
	// History: append records whose timestamp is not already present for the
	// key, then re-apply the per-question cap. Timestamp equality is the
	// dedup key; two distinct events in the same millisecond would collide,
	// which is an accepted approximation.
	history := s.state.GetHistory(ctx)
	for key, incoming := range snapshot.History {
		local, exists := history[key]
		if !exists {
			history[key] = models.TruncateHistory(incoming)
			continue
		}

		seen := make(map[int64]struct{}, len(local))
		for _, record := range local {
			seen[record.Timestamp] = struct{}{}
		}
		for _, record := range incoming {
			if _, dup := seen[record.Timestamp]; !dup {
				local = append(local, record)
			}
		}
		history[key] = models.TruncateHistory(local)
	}
	if err := s.state.SaveHistory(ctx, history); err != nil {
		return fmt.Errorf("failed to merge history: %w", err)
	}

	// Starred: union
	starred := s.state.GetStarred(ctx)
	for _, key := range snapshot.Starred {
		starred[key] = struct{}{}
	}
	if err := s.state.SaveStarred(ctx, starred); err != nil {
		return fmt.Errorf("failed to merge starred set: %w", err)
	}

	// Reports: shallow merge, incoming wins on key collision
	reports := s.state.GetReports(ctx)
	for key, report := range snapshot.Reports {
		reports[key] = report
	}
	if err := s.state.SaveReports(ctx, reports); err != nil {
		return fmt.Errorf("failed to merge reports: %w", err)
	}

	// Custom decks: append decks with new IDs; an existing local deck wins
	// over an incoming deck with the same ID, with no merge of deck content
	decks := s.state.GetCustomDecks(ctx)
	existing := make(map[string]struct{}, len(decks))
	for _, deck := range decks {
		existing[deck.ID] = struct{}{}
	}
	for _, deck := range snapshot.CustomDecks {
		if _, dup := existing[deck.ID]; !dup {
			decks = append(decks, deck)
		}
	}
	if err := s.state.SaveCustomDecks(ctx, decks); err != nil {
		return fmt.Errorf("failed to merge custom decks: %w", err)
	}

	return nil
}
