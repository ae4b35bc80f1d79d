package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tender-watch/pkg/db"
	"tender-watch/pkg/domain"
	"tender-watch/pkg/filter"
	"tender-watch/pkg/logger"
	"tender-watch/pkg/notify"
)

// PageFetcher downloads a listing page using the named client profile
type PageFetcher interface {
	Fetch(ctx context.Context, profile, url string) (string, error)
}

// Status is the outcome of processing one site
type Status string

const (
	StatusUnchanged     Status = "unchanged"
	StatusNotified      Status = "notified"
	StatusFetchFailed   Status = "fetch_failed"
	StatusExtractFailed Status = "extract_failed"
	StatusNotifyFailed  Status = "notify_failed"
	StatusPersistFailed Status = "persist_failed"
)

// SiteResult records what happened to one site during a run
type SiteResult struct {
	Site   string
	Status Status
	// Found is how many tenders the extractor returned
	Found int
	// New holds the tenders that were (or should have been) alerted
	New []domain.Tender
	Err error
}

// Report summarizes a whole run
type Report struct {
	RunID    string
	Results  []SiteResult
	Duration time.Duration
}

// Count returns how many sites ended with status
func (r Report) Count(status Status) int {
	n := 0
	for _, result := range r.Results {
		if result.Status == status {
			n++
		}
	}
	return n
}

// Pipeline processes every configured site, one after the other:
// fetch → extract → diff → notify → persist.
type Pipeline struct {
	sites    []domain.Site
	fetcher  PageFetcher
	store    db.Store
	notifier notify.Notifier
	log      logger.Logger
}

// NewPipeline creates a new pipeline over the given sites and collaborators
func NewPipeline(sites []domain.Site, fetcher PageFetcher, store db.Store, notifier notify.Notifier, log logger.Logger) *Pipeline {
	if log == nil {
		log = logger.NewNop()
	}
	return &Pipeline{
		sites:    sites,
		fetcher:  fetcher,
		store:    store,
		notifier: notifier,
		log:      log,
	}
}

// Run processes all sites sequentially. A failing site is logged and
// skipped; Run itself never fails.
func (p *Pipeline) Run(ctx context.Context) Report {
	start := time.Now()
	report := Report{RunID: uuid.NewString()}
	log := p.log.With(logger.String("run_id", report.RunID))

	log.Info("Starting run", logger.Int("sites", len(p.sites)))

	for _, site := range p.sites {
		if ctx.Err() != nil {
			log.Warn("Run interrupted", logger.Error(ctx.Err()))
			break
		}

		siteLog := log.With(logger.String("site", site.Name))
		result := p.processSite(ctx, site, siteLog)
		report.Results = append(report.Results, result)
	}

	report.Duration = time.Since(start)
	log.Info("Run finished",
		logger.Duration("duration", report.Duration),
		logger.Int("notified", report.Count(StatusNotified)),
		logger.Int("unchanged", report.Count(StatusUnchanged)),
		logger.Int("failed", len(report.Results)-report.Count(StatusNotified)-report.Count(StatusUnchanged)),
	)

	return report
}

// processSite runs one site through the pipeline
func (p *Pipeline) processSite(ctx context.Context, site domain.Site, log logger.Logger) SiteResult {
	result := SiteResult{Site: site.Name}

	current, err := p.extract(ctx, site)
	if err != nil {
		result.Status, result.Err = statusOf(err), err
		log.Error("Error scraping site", logger.String("url", site.URL), logger.Error(err))
		return result
	}
	result.Found = len(current)

	if site.IsLatest() {
		return p.processLatest(ctx, site, current, result, log)
	}
	return p.processMulti(ctx, site, current, result, log)
}

func (p *Pipeline) processMulti(ctx context.Context, site domain.Site, current []domain.Tender, result SiteResult, log logger.Logger) SiteResult {
	result.Status = StatusUnchanged
	if len(current) == 0 {
		log.Info("No tenders found on page")
		return result
	}

	seen, loadErr := p.store.LoadSeen(ctx, site.State)
	if loadErr != nil {
		log.Warn("Could not load seen tenders, treating as empty", logger.String("state", site.State), logger.Error(loadErr))
		seen = nil
	}

	newTenders := filter.NewTenders(current, seen)
	if len(newTenders) == 0 {
		log.Info("No new tenders found", logger.Int("found", len(current)))
		return result
	}
	result.New = newTenders

	if err := p.notifier.Send(ctx, notify.SiteMessage(site.Name, newTenders)); err != nil {
		// state is left untouched so the next run alerts again
		result.Status, result.Err = StatusNotifyFailed, err
		log.Error("Error sending email", logger.Int("new", len(newTenders)), logger.Error(err))
		return result
	}

	// saving nil+new would drop whatever the unreadable state held
	if loadErr != nil {
		result.Status = StatusPersistFailed
		result.Err = fmt.Errorf("seen tenders not saved, previous state unreadable: %w", loadErr)
		log.Error("Skipping save of seen tenders", logger.String("state", site.State), logger.Error(loadErr))
		return result
	}

	updated := make([]domain.Tender, 0, len(seen)+len(newTenders))
	updated = append(updated, seen...)
	updated = append(updated, newTenders...)

	if err := p.store.SaveSeen(ctx, site.State, updated); err != nil {
		result.Status, result.Err = StatusPersistFailed, err
		log.Error("Error saving seen tenders", logger.String("state", site.State), logger.Error(err))
		return result
	}

	result.Status = StatusNotified
	log.Info("Found new tenders", logger.Int("new", len(newTenders)), logger.Int("seen", len(updated)))
	return result
}

func (p *Pipeline) processLatest(ctx context.Context, site domain.Site, current []domain.Tender, result SiteResult, log logger.Logger) SiteResult {
	result.Status = StatusUnchanged

	lastURL, err := p.store.LoadLastURL(ctx, site.State)
	if err != nil {
		log.Warn("Could not load last seen URL, treating as empty", logger.String("state", site.State), logger.Error(err))
		lastURL = ""
	}

	latest, isNew := filter.NewLatest(current, lastURL)
	if !isNew {
		log.Info("No new tender", logger.Int("found", len(current)))
		return result
	}
	result.New = []domain.Tender{latest}

	if err := p.notifier.Send(ctx, notify.LatestMessage(site.Name, latest)); err != nil {
		result.Status, result.Err = StatusNotifyFailed, err
		log.Error("Error sending email", logger.String("url", latest.URL), logger.Error(err))
		return result
	}

	if err := p.store.SaveLastURL(ctx, site.State, latest.URL); err != nil {
		result.Status, result.Err = StatusPersistFailed, err
		log.Error("Error saving last seen URL", logger.String("state", site.State), logger.Error(err))
		return result
	}

	result.Status = StatusNotified
	log.Info("Found new tender", logger.String("title", latest.Title), logger.String("url", latest.URL))
	return result
}

// stageError tags an error with the pipeline stage that produced it
type stageError struct {
	status Status
	err    error
}

func (e *stageError) Error() string { return e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func statusOf(err error) Status {
	var se *stageError
	if errors.As(err, &se) {
		return se.status
	}
	return StatusFetchFailed
}

// extract fetches the site's page and runs its extractor
func (p *Pipeline) extract(ctx context.Context, site domain.Site) ([]domain.Tender, error) {
	if site.Extractor == nil {
		return nil, &stageError{StatusExtractFailed, fmt.Errorf("no extractor configured")}
	}

	content, err := p.fetcher.Fetch(ctx, site.ClientProfile, site.URL)
	if err != nil {
		return nil, &stageError{StatusFetchFailed, err}
	}

	tenders, err := site.Extractor(site.URL, content)
	if err != nil {
		return nil, &stageError{StatusExtractFailed, fmt.Errorf("extractor %s: %w", site.ExtractorID, err)}
	}
	return tenders, nil
}
