package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupKVTestRepository creates a key-value repository with a mock database
func setupKVTestRepository(t *testing.T) (*kvRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewKVRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestNewKVRepository(t *testing.T) {
	db := &sql.DB{}

	repo := NewKVRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestKVRepository_Get(t *testing.T) {
	tests := []struct {
		name          string
		key           string
		setupMock     func(sqlmock.Sqlmock)
		expectedValue string
		expectedFound bool
		expectedError bool
	}{
		{
			name: "key exists",
			key:  "quiz-history-v1",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"v"}).AddRow(`{"deck-1-1-1":[]}`)
				mock.ExpectQuery(`SELECT v FROM kv_store WHERE k = \?`).
					WithArgs("quiz-history-v1").
					WillReturnRows(rows)
			},
			expectedValue: `{"deck-1-1-1":[]}`,
			expectedFound: true,
			expectedError: false,
		},
		{
			name: "key missing is not an error",
			key:  "quiz-settings-v1",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT v FROM kv_store WHERE k = \?`).
					WithArgs("quiz-settings-v1").
					WillReturnError(sql.ErrNoRows)
			},
			expectedValue: "",
			expectedFound: false,
			expectedError: false,
		},
		{
			name: "database error",
			key:  "quiz-history-v1",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT v FROM kv_store WHERE k = \?`).
					WithArgs("quiz-history-v1").
					WillReturnError(errors.New("database error"))
			},
			expectedValue: "",
			expectedFound: false,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupKVTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			value, found, err := repo.Get(context.Background(), tt.key)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expectedValue, value)
			assert.Equal(t, tt.expectedFound, found)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestKVRepository_Set(t *testing.T) {
	tests := []struct {
		name          string
		key           string
		value         string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
	}{
		{
			name:  "insert new key",
			key:   "quiz-starred-v1",
			value: `["deck-1-1-1"]`,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO kv_store \(k, v\) VALUES \(\?, \?\) ON DUPLICATE KEY UPDATE v = VALUES\(v\)`).
					WithArgs("quiz-starred-v1", `["deck-1-1-1"]`).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			expectedError: false,
		},
		{
			name:  "replace existing key",
			key:   "quiz-starred-v1",
			value: `[]`,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO kv_store \(k, v\) VALUES \(\?, \?\) ON DUPLICATE KEY UPDATE v = VALUES\(v\)`).
					WithArgs("quiz-starred-v1", `[]`).
					WillReturnResult(sqlmock.NewResult(0, 2))
			},
			expectedError: false,
		},
		{
			name:  "database error",
			key:   "quiz-starred-v1",
			value: `[]`,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO kv_store`).
					WithArgs("quiz-starred-v1", `[]`).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupKVTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Set(context.Background(), tt.key, tt.value)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestKVRepository_Delete(t *testing.T) {
	tests := []struct {
		name          string
		key           string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
	}{
		{
			name: "delete existing key",
			key:  "quiz-reports-v1",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM kv_store WHERE k = \?`).
					WithArgs("quiz-reports-v1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			expectedError: false,
		},
		{
			name: "delete missing key is a no-op",
			key:  "quiz-reports-v1",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM kv_store WHERE k = \?`).
					WithArgs("quiz-reports-v1").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedError: false,
		},
		{
			name: "database error",
			key:  "quiz-reports-v1",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM kv_store WHERE k = \?`).
					WithArgs("quiz-reports-v1").
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupKVTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Delete(context.Background(), tt.key)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
