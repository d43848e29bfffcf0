// Package scraper implements the periodic refresh actor: a single
// goroutine owning the cached Graph, fetching upstream on a fixed
// interval and serving cheap cloned reads to concurrent callers over a
// typed request/reply channel pair. There is no shared mutable state
// accessed by both sides — readers and the refresh loop only ever
// communicate by message passing.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	graphpkg "github.com/coreos/cincinnati-graph-builder/internal/graph"
	"github.com/coreos/cincinnati-graph-builder/internal/metadata"
	"github.com/coreos/cincinnati-graph-builder/internal/telemetry"
	"github.com/coreos/cincinnati-graph-builder/internal/upstream"
)

// ErrCacheMiss is returned when GetCachedGraph is asked for an
// (arch, stream) pair the scraper was not configured for.
var ErrCacheMiss = errors.New("scraper not configured for requested basearch/stream")

// Config configures a single scraper instance; one scraper serves
// exactly one (basearch, stream) pair.
type Config struct {
	Basearch string
	Stream   string
	URLs     upstream.URLs
	Interval time.Duration
}

type refreshRequest struct {
	reply chan error
}

type getRequest struct {
	basearch string
	stream   string
	reply    chan getResult
}

type getResult struct {
	graph graphpkg.Graph
	err   error
}

// Scraper owns the cached graph exclusively; callers never hold a
// reference to it directly, only clones handed back over getCh.
type Scraper struct {
	cfg     Config
	fetcher upstream.Fetcher
	metrics *telemetry.Metrics
	log     *logrus.Entry

	refreshCh chan refreshRequest
	getCh     chan getRequest

	graph graphpkg.Graph // owned exclusively by the Run goroutine
}

// New constructs a Scraper. Call Run in its own goroutine to start it.
func New(cfg Config, fetcher upstream.Fetcher, metrics *telemetry.Metrics, log *logrus.Entry) *Scraper {
	return &Scraper{
		cfg:       cfg,
		fetcher:   fetcher,
		metrics:   metrics,
		log:       log.WithFields(logrus.Fields{"stream": cfg.Stream, "basearch": cfg.Basearch}),
		refreshCh: make(chan refreshRequest),
		getCh:     make(chan getRequest),
	}
}

// Run owns the cached graph and must be started in its own goroutine.
// It fires an initial refresh immediately, then alternates between
// servicing requests and ticking the refresh timer until ctx is
// canceled.
func (s *Scraper) Run(ctx context.Context) {
	timer := time.NewTimer(0) // fires immediately: the initial RefreshTick
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case req := <-s.refreshCh:
			req.reply <- s.refresh(ctx)

		case req := <-s.getCh:
			req.reply <- s.handleGet(req)

		case <-timer.C:
			if err := s.refresh(ctx); err != nil {
				s.log.WithError(err).Error("scheduled refresh failed; serving previous graph")
			}
			timer.Reset(s.cfg.Interval)
		}
	}
}

// Refresh triggers a refresh cycle and waits for it to complete. A
// canceled ctx drops the reply with no side effects on the scraper
// itself.
func (s *Scraper) Refresh(ctx context.Context) error {
	req := refreshRequest{reply: make(chan error, 1)}
	select {
	case s.refreshCh <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetCachedGraph returns a clone of the current cached graph after
// asserting (basearch, stream) matches this scraper's configuration.
func (s *Scraper) GetCachedGraph(ctx context.Context, basearch, stream string) (graphpkg.Graph, error) {
	req := getRequest{basearch: basearch, stream: stream, reply: make(chan getResult, 1)}
	select {
	case s.getCh <- req:
	case <-ctx.Done():
		return graphpkg.Graph{}, ctx.Err()
	}
	select {
	case res := <-req.reply:
		return res.graph, res.err
	case <-ctx.Done():
		return graphpkg.Graph{}, ctx.Err()
	}
}

func (s *Scraper) handleGet(req getRequest) getResult {
	if req.basearch != s.cfg.Basearch || req.stream != s.cfg.Stream {
		return getResult{err: fmt.Errorf("%w: got (%s, %s), configured for (%s, %s)",
			ErrCacheMiss, req.basearch, req.stream, s.cfg.Basearch, s.cfg.Stream)}
	}
	return getResult{graph: s.graph.Clone()}
}

// refresh executes one refresh cycle: fetch both upstream documents
// concurrently, build the graph, and atomically swap it in on success;
// on any failure, log and leave the previous graph served.
func (s *Scraper) refresh(ctx context.Context) error {
	s.metrics.UpstreamScrapesTotal.Inc()

	var releases []metadata.Release
	var updates metadata.Updates

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		releases, err = upstream.FetchReleaseIndex(gctx, s.fetcher, s.cfg.URLs.ReleaseIndexURL())
		return err
	})
	g.Go(func() error {
		var err error
		updates, err = upstream.FetchUpdates(gctx, s.fetcher, s.cfg.URLs.UpdatesURL())
		return err
	})

	if err := g.Wait(); err != nil {
		s.metrics.UpstreamScrapeErrorsTotal.WithLabelValues(telemetry.ErrorKindUnreachable).Inc()
		s.log.WithError(err).Error("upstream fetch failed")
		return err
	}

	s.upstreamOrderingCheck(releases)

	built, err := graphpkg.Build(s.cfg.Basearch, releases, updates)
	if err != nil {
		kind := telemetry.ErrorKindMalformed
		if errors.Is(err, graphpkg.ErrMissingArchCommit) {
			kind = telemetry.ErrorKindMissingArchCommit
		}
		s.metrics.UpstreamScrapeErrorsTotal.WithLabelValues(kind).Inc()
		s.log.WithError(err).Error("graph build failed")
		return err
	}

	s.graph = built
	s.metrics.LastRefreshTimestamp.Set(float64(time.Now().Unix()))
	s.metrics.GraphFinalReleases.Set(float64(len(built.Nodes)))
	s.log.WithField("releases", len(built.Nodes)).Info("refreshed graph")
	return nil
}

func (s *Scraper) upstreamOrderingCheck(releases []metadata.Release) {
	upstream.ValidateOrdering(s.log, releases)
}
