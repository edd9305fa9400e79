package services

import (
	"context"
	"sync"

	"grosz/internal/core"
	"grosz/internal/log"
)

// RowSink receives a server-confirmed row replacement by identity.
type RowSink interface {
	ReplaceRow(tx core.Transaction) bool
}

// CategoryEditor turns a category pick into a single mutation call.
//
// No optimistic value is ever applied: the visible category changes
// only after the server confirms, by replacing the row field for field
// (server-side derived fields like the category source change too).
// A failed commit leaves the row untouched and is reported to the
// operational log only, never to the user. Commits are single-flight
// per row; a pick for a row whose commit is still in flight is dropped.
type CategoryEditor struct {
	gw     Gateway
	rows   RowSink
	logger *log.Logger

	mu       sync.Mutex
	inFlight map[int64]struct{}
}

// NewCategoryEditor creates an editor writing confirmed rows into rows.
func NewCategoryEditor(gw Gateway, rows RowSink, logger *log.Logger) *CategoryEditor {
	return &CategoryEditor{
		gw:       gw,
		rows:     rows,
		logger:   logger.WithComponent(log.ComponentEditor),
		inFlight: make(map[int64]struct{}),
	}
}

// Commit issues the mutation for one row. Returns true when the server
// confirmed and the row was replaced; false when the commit was dropped
// (already in flight), failed, or the row is no longer held.
func (e *CategoryEditor) Commit(ctx context.Context, rowID, categoryID int64) bool {
	e.mu.Lock()
	if _, busy := e.inFlight[rowID]; busy {
		e.mu.Unlock()
		e.logger.Debug("Dropping commit, row already in flight", log.FieldRowID, rowID)
		return false
	}
	e.inFlight[rowID] = struct{}{}
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.inFlight, rowID)
		e.mu.Unlock()
	}()

	updated, err := e.gw.UpdateCategory(ctx, rowID, categoryID)
	if err != nil {
		e.logger.Warn("Category update failed",
			log.FieldRowID, rowID,
			log.FieldCategoryID, categoryID,
			log.FieldError, err)
		return false
	}

	if !e.rows.ReplaceRow(updated) {
		e.logger.Debug("Updated row no longer held, replacement skipped",
			log.FieldRowID, rowID)
		return false
	}

	e.logger.Debug("Category updated",
		log.FieldRowID, rowID, log.FieldCategoryID, categoryID)
	return true
}
