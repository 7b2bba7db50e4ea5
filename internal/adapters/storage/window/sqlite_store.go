package window

import (
	"context"
	"database/sql"
	"fmt"

	"advent/internal/adapters/storage"
	domain "advent/internal/domain/window"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new WindowStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const windowColumns = "day, message, image_url, image_hint, video_url, manual_state, updated_at"

// GetByDay retrieves a Window by its day number.
// PRE: day is within the valid range
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByDay(ctx context.Context, day int) (domain.Window, error) {
	query := "SELECT " + windowColumns + " FROM window WHERE day = ?"
	row := s.db.QueryRowContext(ctx, query, day)

	entity, err := scanWindow(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Window{}, fmt.Errorf("window not found: %w", err)
	}
	return entity, err
}

// Save persists a Window to the database, keyed by day.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update); day is never changed
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Window) error {
	query := `INSERT INTO window (day, message, image_url, image_hint, video_url, manual_state, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET
			message=excluded.message,
			image_url=excluded.image_url,
			image_hint=excluded.image_hint,
			video_url=excluded.video_url,
			manual_state=excluded.manual_state,
			updated_at=excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		entity.Day,
		entity.Message,
		entity.ImageURL,
		entity.ImageHint,
		entity.VideoURL,
		string(entity.ManualState),
		storage.FormatTime(entity.UpdatedAt),
	)
	return err
}

// List retrieves all Windows ordered by day.
// PRE: none
// POST: Returns all windows, day ascending
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Window, error) {
	query := "SELECT " + windowColumns + " FROM window ORDER BY day ASC"
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Window
	for rows.Next() {
		entity, err := scanWindow(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of windows.
// PRE: none
// POST: Returns total window count
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM window").Scan(&count)
	return count, err
}

// scanWindow extracts a Window from a row scanner function.
func scanWindow(scan func(dest ...interface{}) error) (domain.Window, error) {
	var entity domain.Window
	var state string
	var updatedAt string
	err := scan(
		&entity.Day,
		&entity.Message,
		&entity.ImageURL,
		&entity.ImageHint,
		&entity.VideoURL,
		&state,
		&updatedAt,
	)
	if err != nil {
		return domain.Window{}, err
	}
	entity.ManualState = domain.ManualState(state)
	entity.UpdatedAt, _ = storage.ParseTime(updatedAt)
	return entity, nil
}
