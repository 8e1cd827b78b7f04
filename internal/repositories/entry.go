package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/m3ux/internal/models"
	"github.com/desertthunder/m3ux/internal/shared"
)

const entryColumns = `id, playlist_id, position, duration, name, link, attributes, group_title, item_type,
	season, episode, genre, country, created_at, updated_at, deleted_at`

const insertEntry = `
	INSERT INTO entries (id, playlist_id, position, duration, name, link, attributes, group_title, item_type,
		season, episode, genre, country, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// EntryRepository implements models.Repository[*models.PersistedEntry] for classified playlist entries.
type EntryRepository struct {
	db *sql.DB
}

// NewEntryRepository creates a new EntryRepository with the given database connection
func NewEntryRepository(db *sql.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (r *EntryRepository) insert(db execer, entry *models.PersistedEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()
	_, err := db.Exec(insertEntry,
		id,
		entry.PlaylistID(),
		entry.Position(),
		entry.Duration(),
		entry.Name(),
		entry.Link(),
		entry.Attributes(),
		entry.Group(),
		entry.Type(),
		entry.Season(),
		entry.Episode(),
		entry.Genre(),
		entry.Country(),
		entry.CreatedAt(),
		entry.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry %q: %w", entry.Name(), err)
	}

	entry.SetID(id)
	return nil
}

// Create inserts a single entry with a generated ID
func (r *EntryRepository) Create(entry *models.PersistedEntry) error {
	return r.insert(r.db, entry)
}

// CreateBatch inserts entries in one transaction; nothing is stored if any insert fails.
func (r *EntryRepository) CreateBatch(entries []*models.PersistedEntry) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, entry := range entries {
		if err := r.insert(tx, entry); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entries: %w", err)
	}
	return nil
}

// Get retrieves an entry by ID, excluding soft-deleted entries
func (r *EntryRepository) Get(id string) (*models.PersistedEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, id))
}

// Update modifies the stored fields of an entry
func (r *EntryRepository) Update(entry *models.PersistedEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	entry.SetUpdatedAt(now)

	query := `
		UPDATE entries
		SET position = ?, duration = ?, name = ?, link = ?, attributes = ?, group_title = ?, item_type = ?,
			season = ?, episode = ?, genre = ?, country = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		entry.Position(),
		entry.Duration(),
		entry.Name(),
		entry.Link(),
		entry.Attributes(),
		entry.Group(),
		entry.Type(),
		entry.Season(),
		entry.Episode(),
		entry.Genre(),
		entry.Country(),
		now,
		entry.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}

	return checkAffected(result, fmt.Errorf("%w: %s", shared.ErrEntryNotFound, entry.ID()))
}

// Delete soft-deletes an entry by ID
func (r *EntryRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE entries SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return checkAffected(result, fmt.Errorf("%w: %s", shared.ErrEntryNotFound, id))
}

// List retrieves entries in channel order, excluding soft-deleted entries
//
// Supported criteria: "playlist_id", "group", "type" and "country" (exact match).
func (r *EntryRepository) List(criteria map[string]any) ([]*models.PersistedEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE deleted_at IS NULL`
	args := []any{}

	filters := []struct{ key, column string }{
		{"playlist_id", "playlist_id"},
		{"group", "group_title"},
		{"type", "item_type"},
		{"country", "country"},
	}
	for _, f := range filters {
		if value, ok := criteria[f.key].(string); ok && value != "" {
			query += " AND " + f.column + " = ?"
			args = append(args, value)
		}
	}

	query += " ORDER BY playlist_id, position ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.PersistedEntry
	for rows.Next() {
		entry, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// CountByGroup returns the number of entries per group title for a playlist.
func (r *EntryRepository) CountByGroup(playlistID string) (map[string]int, error) {
	query := `
		SELECT group_title, COUNT(*)
		FROM entries
		WHERE playlist_id = ? AND deleted_at IS NULL
		GROUP BY group_title
	`

	rows, err := r.db.Query(query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			group string
			count int
		)
		if err := rows.Scan(&group, &count); err != nil {
			return nil, fmt.Errorf("failed to scan group count: %w", err)
		}
		counts[group] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return counts, nil
}

// scan reads one row into a [models.PersistedEntry]
func (r *EntryRepository) scan(row scanner) (*models.PersistedEntry, error) {
	var (
		id        string
		f         models.EntryFields
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &f.PlaylistID, &f.Position, &f.Duration, &f.Name, &f.Link, &f.Attributes, &f.Group, &f.Type,
		&f.Season, &f.Episode, &f.Genre, &f.Country, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan entry: %w", err)
	}

	entry := models.RestoreEntry(id, f)
	entry.SetCreatedAt(createdAt)
	entry.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		entry.SetDeletedAt(&deletedAt.Time)
	}

	return entry, nil
}
