// Package storage persists saved views: named locations the user can
// jump back to, the terminal equivalent of bookmarking a filtered URL.
// Only state addresses are stored, never fetched data.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"grosz/internal/log"
)

// SavedView is one bookmarked location.
type SavedView struct {
	ID        int64
	Name      string
	Location  string
	CreatedAt time.Time
}

// ErrDuplicateName is returned when saving under a name already in use.
var ErrDuplicateName = errors.New("a view with that name already exists")

type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		logger: logger.WithComponent(log.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveView stores a location under a unique name.
func (r *SQLiteRepository) SaveView(ctx context.Context, name, location string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO saved_views (name, location, created_at) VALUES (?, ?, ?)`,
		name, location, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateName
		}
		return 0, fmt.Errorf("insert saved view: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("saved view id: %w", err)
	}

	r.logger.Info("View saved",
		log.FieldOperation, log.OpSaveView,
		"name", name,
		log.FieldLocation, location)
	return id, nil
}

// ListViews returns all saved views, newest first.
func (r *SQLiteRepository) ListViews(ctx context.Context) ([]SavedView, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, location, created_at FROM saved_views ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query saved views: %w", err)
	}
	defer rows.Close()

	var views []SavedView
	for rows.Next() {
		var v SavedView
		var createdAt string
		if err := rows.Scan(&v.ID, &v.Name, &v.Location, &createdAt); err != nil {
			return nil, fmt.Errorf("scan saved view: %w", err)
		}
		v.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saved views: %w", err)
	}
	return views, nil
}

// DeleteView removes a saved view by id.
func (r *SQLiteRepository) DeleteView(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM saved_views WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete saved view: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite surfaces constraint failures in the message;
	// there is no exported sentinel to match on.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
