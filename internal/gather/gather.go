// Package gather imports holiday data from external market-calendar sources.
package gather

import (
	"context"
	"time"

	"biztime/internal/domain"
)

// Importer is the interface for all holiday import processes.
type Importer interface {
	// Name returns the importer identifier.
	Name() string
	// Fetch returns the holidays found within [start, end].
	Fetch(ctx context.Context, start, end time.Time) ([]domain.Holiday, error)
}
