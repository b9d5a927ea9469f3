package csvlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/MWood1988/TrainingLog/internal/ingest"
)

// Provider ties the CSV parser and reconciler to a store.
type Provider struct {
	store Store
	log   *slog.Logger
}

// NewProvider creates a CSV import provider.
func NewProvider(store Store, log *slog.Logger) *Provider {
	return &Provider{store: store, log: log}
}

// Ingest reads a workout-log CSV from r and merges it into the store.
// Read failures surface as errors before anything is applied; a file
// with no data rows is a zero-statistics success, not an error.
func (p *Provider) Ingest(ctx context.Context, r io.Reader) (*ingest.Result, error) {
	rows, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return Reconcile(ctx, p.store, rows, p.log)
}
