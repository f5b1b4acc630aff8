// Package repository persists extraction artifacts and the extraction catalog.
package repository

import (
	"context"

	"github.com/xiaot623/gogo/replay/internal/domain"
)

// Catalog records extraction runs.
type Catalog interface {
	CreateExtraction(ctx context.Context, ext *domain.Extraction) error
	GetExtraction(ctx context.Context, extractionID string) (*domain.Extraction, error)
	ListExtractions(ctx context.Context, runName string, limit int) ([]domain.Extraction, error)

	// Lifecycle
	Close() error
}
