package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"grosz/internal/core"
	"grosz/internal/log"
)

// ImportService uploads bank statement CSVs and triggers server-side
// categorization. Success and failure are mutually exclusive terminal
// states of one attempt; the caller shows exactly one of them.
type ImportService struct {
	gw     Gateway
	logger *log.Logger
}

// NewImportService creates an import service.
func NewImportService(gw Gateway, logger *log.Logger) *ImportService {
	return &ImportService{
		gw:     gw,
		logger: logger.WithComponent(log.ComponentImport),
	}
}

// ImportFile uploads the statement at path. The base name is sent
// along because the backend detects the bank format from it.
func (s *ImportService) ImportFile(ctx context.Context, path string) (core.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.ImportResult{}, fmt.Errorf("open statement: %w", err)
	}
	defer f.Close()

	result, err := s.gw.ImportCSV(ctx, filepath.Base(path), f)
	if err != nil {
		s.logger.Warn("Import failed", log.FieldFile, path, log.FieldError, err)
		return core.ImportResult{}, err
	}

	s.logger.Info("Import completed",
		log.FieldFile, path,
		"total_rows", result.TotalRows,
		"imported", result.Imported,
		"skipped", result.Skipped)
	return result, nil
}

// TriggerCategorize runs the backend categorization engine and returns
// how many rows it categorized.
func (s *ImportService) TriggerCategorize(ctx context.Context) (int64, error) {
	n, err := s.gw.Categorize(ctx)
	if err != nil {
		s.logger.Warn("Categorization failed", log.FieldError, err)
		return 0, err
	}
	s.logger.Info("Categorization completed", "categorized", n)
	return n, nil
}
