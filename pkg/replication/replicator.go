package replication

import (
	"context"
	"fmt"
	"sync"

	"tender-watch/pkg/db"
	"tender-watch/pkg/domain"
	"tender-watch/pkg/logger"
)

// Config wires the replication dependencies.
type Config struct {
	Source db.Store
	Target db.Store
	Logger logger.Logger
	// Workers bounds how many sites are copied at once
	Workers int
}

// Replicator copies per-site alert state from one backend to another.
//
// This is a one-shot, "copy everything" flow, run when moving off one backend.
type Replicator struct {
	source  db.Store
	target  db.Store
	log     logger.Logger
	workers int
}

// Result describes what was copied for one site
type Result struct {
	Site    string
	State   string
	Tenders int
	LastURL string
	Skipped bool
}

const defaultWorkers = 4

func NewReplicator(cfg Config) (*Replicator, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("source store is required")
	}
	if cfg.Target == nil {
		return nil, fmt.Errorf("target store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	return &Replicator{
		source:  cfg.Source,
		target:  cfg.Target,
		log:     cfg.Logger,
		workers: cfg.Workers,
	}, nil
}

// ReplicateSites copies the state of every site from source to target.
//
// Sites without state in the source are skipped so the target is never
// overwritten with an empty set. Stops at the first error.
func (r *Replicator) ReplicateSites(ctx context.Context, sites []domain.Site) ([]Result, error) {
	type job struct {
		index int
		site  domain.Site
	}
	type jobResult struct {
		index  int
		result Result
		err    error
	}

	jobs := make(chan job, len(sites))
	results := make(chan jobResult, len(sites))

	for i, site := range sites {
		jobs <- job{index: i, site: site}
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					results <- jobResult{index: j.index, err: ctx.Err()}
					continue
				}
				res, err := r.replicateSite(ctx, j.site)
				results <- jobResult{index: j.index, result: res, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]Result, len(sites))
	var firstErr error
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		out[res.index] = res.result
	}
	if firstErr != nil {
		return nil, firstErr
	}

	copied := 0
	for _, res := range out {
		if !res.Skipped {
			copied++
		}
	}
	r.log.Info("Replication complete", logger.Int("sites", len(sites)), logger.Int("copied", copied))
	return out, nil
}

// replicateSite copies one site's state according to its variant
func (r *Replicator) replicateSite(ctx context.Context, site domain.Site) (Result, error) {
	result := Result{Site: site.Name, State: site.State}
	log := r.log.With(logger.String("site", site.Name), logger.String("state", site.State))

	if site.IsLatest() {
		lastURL, err := r.source.LoadLastURL(ctx, site.State)
		if err != nil {
			return result, fmt.Errorf("load last url for %s: %w", site.Name, err)
		}
		if lastURL == "" {
			result.Skipped = true
			log.Debug("No state to copy")
			return result, nil
		}
		if err := r.target.SaveLastURL(ctx, site.State, lastURL); err != nil {
			return result, fmt.Errorf("save last url for %s: %w", site.Name, err)
		}
		result.LastURL = lastURL
		log.Info("Copied last seen URL", logger.String("url", lastURL))
		return result, nil
	}

	seen, err := r.source.LoadSeen(ctx, site.State)
	if err != nil {
		return result, fmt.Errorf("load seen tenders for %s: %w", site.Name, err)
	}
	if len(seen) == 0 {
		result.Skipped = true
		log.Debug("No state to copy")
		return result, nil
	}
	if err := r.target.SaveSeen(ctx, site.State, seen); err != nil {
		return result, fmt.Errorf("save seen tenders for %s: %w", site.Name, err)
	}
	result.Tenders = len(seen)
	log.Info("Copied seen tenders", logger.Int("tenders", len(seen)))
	return result, nil
}
