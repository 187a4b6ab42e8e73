// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

package vcs

import (
	"context"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/davetashner/drydock/internal/clone"
	"github.com/davetashner/drydock/internal/fingerprint"
)

// DefaultWorkers bounds concurrent lookups per cluster.
const DefaultWorkers = 8

// Enricher fills occurrence author and date fields from a Lookup.
type Enricher struct {
	Lookup  Lookup
	Workers int
	// Base resolves relative occurrence paths.
	Base string
}

// Enrich looks up every occurrence concurrently and updates it in place.
// Misses leave the fields empty.
func (e Enricher) Enrich(ctx context.Context, occs []fingerprint.Occurrence) {
	if e.Lookup == nil || len(occs) == 0 {
		return
	}
	workers := e.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range occs {
		path := occs[i].File
		if !filepath.IsAbs(path) {
			path = filepath.Join(e.Base, filepath.FromSlash(path))
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if info, ok := e.Lookup.Lookup(ctx, path); ok {
				occs[i].Author = info.Author
				occs[i].Date = info.Date
			}
			return nil
		})
	}
	_ = g.Wait()
}

var _ clone.Enricher = Enricher{}
