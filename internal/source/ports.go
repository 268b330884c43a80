// Package source loads Transaction Records from files, databases and spreadsheets.
package source

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"openclaw/internal/core"
)

// Ports for inbound adapters.
type (
	// Source returns the records the pipeline should analyze.
	Source interface {
		Load(ctx context.Context) ([]core.Record, error)
		Name() string
	}

	// CleanupFunc releases resources held by a source.
	CleanupFunc func() error
)

// Multi loads several sources concurrently and concatenates their records
// in source order.
type Multi struct {
	sources []Source
}

var _ Source = (*Multi)(nil)

func NewMulti(sources ...Source) *Multi {
	return &Multi{sources: sources}
}

func (m *Multi) Name() string {
	name := "multi("
	for i, s := range m.sources {
		i, s := i, s
		if i > 0 {
			name += ","
		}
		name += s.Name()
	}
	return name + ")"
}

// Load fails with the first error; the shared context cancels the other loads.
func (m *Multi) Load(ctx context.Context) ([]core.Record, error) {
	results := make([][]core.Record, len(m.sources))
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range m.sources {
		i, s := i, s
		g.Go(func() error {
			records, err := s.Load(ctx)
			if err != nil {
				return fmt.Errorf("load %s: %w", s.Name(), err)
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	out := make([]core.Record, 0, total)
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}
