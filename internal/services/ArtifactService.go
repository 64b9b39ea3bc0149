package services

import (
	"context"
	"time"

	"artifactd/internal/artifacts"
	"artifactd/internal/providers"
	"artifactd/internal/structures"
	"artifactd/internal/upstream"

	"github.com/facebookgo/clock"
	"go.uber.org/atomic"
)

type HealthInfo struct {
	DatasetPopulated    bool      `json:"datasetPopulated"`
	DatasetFresh        bool      `json:"datasetFresh"`
	LastRefresh         time.Time `json:"lastRefresh"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	Versions            int       `json:"versions"`
}

type ArtifactServiceInterface interface {
	Query(ctx context.Context, q *artifacts.Query) (*artifacts.QueryResult, error)
	Changelog(ctx context.Context, version string) (*artifacts.Changelog, error)
	Refresh(ctx context.Context) error
	Snapshot() *artifacts.Snapshot
	Restore(snap *artifacts.Snapshot)
	Health() HealthInfo
}

// ArtifactService owns the artifact dataset lifecycle: refresh from
// upstream through the aggregator and classifier, graceful degradation to
// stale data, snapshot, or the fallback dataset, and query serving.
type ArtifactService struct {
	conf       *structures.Config
	aggregator *artifacts.Aggregator
	classifier *artifacts.Classifier
	engine     *artifacts.QueryEngine
	urls       *artifacts.URLBuilder
	issues     *artifacts.IssueTracker
	client     upstream.ClientInterface
	cache      *artifacts.TimedCache[artifacts.Dataset]
	clock      clock.Clock
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface

	lastRefresh  atomic.Int64
	failureCount atomic.Int32
}

func NewArtifactService(
	conf *structures.Config,
	client upstream.ClientInterface,
	clk clock.Clock,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) ArtifactServiceInterface {
	urls := artifacts.NewURLBuilder(conf.Artifacts.WindowsURL, conf.Artifacts.LinuxURL)
	return &ArtifactService{
		conf:       conf,
		aggregator: artifacts.NewAggregator(client, urls, conf.Artifacts.CommitBatchSize, conf.Artifacts.BatchPause, logger),
		classifier: artifacts.NewClassifier(conf.Artifacts.RecommendedWindow, conf.Artifacts.SupportWindow),
		engine:     artifacts.NewQueryEngine(conf.Artifacts.RecommendedWindow, conf.Artifacts.SupportWindow),
		urls:       urls,
		issues:     artifacts.NewIssueTracker(client, artifacts.NewTimedCache[artifacts.IssueIndex](conf.Artifacts.IssuesTTL, clk), logger),
		client:     client,
		cache:      artifacts.NewTimedCache[artifacts.Dataset](conf.Artifacts.TTL, clk),
		clock:      clk,
		logger:     logger,
		metrics:    metrics,
	}
}

func (s *ArtifactService) Query(ctx context.Context, q *artifacts.Query) (*artifacts.QueryResult, error) {
	dataset, err := s.ensureDataset(ctx)
	if err != nil {
		return nil, err
	}

	result := s.engine.Run(dataset, q)
	s.attachIssues(ctx, result)
	return result, nil
}

func (s *ArtifactService) Changelog(ctx context.Context, version string) (*artifacts.Changelog, error) {
	dataset, err := s.ensureDataset(ctx)
	if err != nil {
		return nil, err
	}
	// Tags and commits are shared across platforms, either map works.
	return artifacts.BuildChangelog(ctx, s.client, dataset[artifacts.PlatformWindows], version)
}

// ensureDataset returns a usable dataset, racing a needed refresh against
// the aggregation timeout. A refresh that loses the race keeps running in
// the background and populates the cache for the next request.
func (s *ArtifactService) ensureDataset(ctx context.Context) (artifacts.Dataset, error) {
	data, fresh, ok := s.cache.Get()
	if ok && fresh {
		return data, nil
	}

	done := make(chan error, 1)
	go func() {
		done <- s.Refresh(context.WithoutCancel(ctx))
	}()

	timer := s.clock.Timer(s.conf.Artifacts.AggregateTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err == nil {
			refreshed, _, _ := s.cache.Get()
			return refreshed, nil
		}
		return s.degrade(err)
	case <-timer.C:
		if ok {
			s.metrics.IncStaleServes()
			s.logger.Warnf(providers.TypeApp, "Refresh exceeded %s, serving stale dataset", s.conf.Artifacts.AggregateTimeout)
			return data, nil
		}
		return nil, upstream.ErrTimeout
	case <-ctx.Done():
		if ok {
			return data, nil
		}
		return nil, ctx.Err()
	}
}

// degrade picks the best remaining source after a failed refresh: stale
// cache first, then the fallback dataset. Auth and rate-limit failures
// surface when nothing cached can absorb them, so the operator sees a
// configuration problem instead of silently stale data.
func (s *ArtifactService) degrade(err error) (artifacts.Dataset, error) {
	if data, _, ok := s.cache.Get(); ok {
		s.metrics.IncStaleServes()
		s.logger.Warnf(providers.TypeApp, "Refresh failed, serving stale dataset: %s", err)
		return data, nil
	}

	if upstream.IsAuth(err) || upstream.IsRateLimited(err) {
		return nil, err
	}

	s.metrics.IncFallbackServes()
	s.logger.Errorf(providers.TypeApp, "Upstream unavailable with no cache, using fallback dataset: %s", err)
	dataset := artifacts.FallbackDataset(s.urls)
	s.classifier.ClassifyDataset(dataset, s.clock.Now())
	s.cache.Set(dataset, "")
	return dataset, nil
}

// Refresh pulls and reclassifies the whole dataset. Single-flighted:
// concurrent callers share one upstream pull.
func (s *ArtifactService) Refresh(ctx context.Context) error {
	return s.cache.Refresh(func() error {
		start := s.clock.Now()

		result, err := s.aggregator.Aggregate(ctx)
		if err != nil {
			s.failureCount.Inc()
			return err
		}

		s.classifier.ClassifyDataset(result.Dataset, s.clock.Now())
		s.cache.Set(result.Dataset, "")

		s.failureCount.Store(0)
		s.lastRefresh.Store(s.clock.Now().Unix())
		s.metrics.ObserveRefreshDuration(s.clock.Now().Sub(start))
		for platform, records := range result.Dataset {
			s.metrics.SetDatasetSize(string(platform), len(records))
		}
		return nil
	})
}

// Snapshot exports the cached dataset for persistence.
func (s *ArtifactService) Snapshot() *artifacts.Snapshot {
	data, _, ok := s.cache.Get()
	if !ok {
		return nil
	}
	return &artifacts.Snapshot{
		Dataset:   data,
		Timestamp: s.cache.Timestamp(),
		ETag:      s.cache.ETag(),
	}
}

// Restore seeds the cache from a persisted snapshot. A no-op once the
// cache holds live data; the snapshot's own age decides its freshness.
func (s *ArtifactService) Restore(snap *artifacts.Snapshot) {
	if snap == nil || len(snap.Dataset) == 0 {
		return
	}
	s.cache.Restore(snap.Dataset, snap.ETag, snap.Timestamp)
	s.logger.Infof(providers.TypeApp, "Restored %d versions from snapshot taken %s",
		len(snap.Dataset[artifacts.PlatformWindows]), snap.Timestamp.Format(time.RFC3339))
}

func (s *ArtifactService) Health() HealthInfo {
	data, fresh, ok := s.cache.Get()
	info := HealthInfo{
		DatasetPopulated:    ok,
		DatasetFresh:        fresh,
		ConsecutiveFailures: int(s.failureCount.Load()),
	}
	if ts := s.lastRefresh.Load(); ts > 0 {
		info.LastRefresh = time.Unix(ts, 0).UTC()
	}
	if ok {
		info.Versions = len(data[artifacts.PlatformWindows])
	}
	return info
}

// attachIssues decorates the paginated records with known issues. Copies
// each affected record so cached dataset entries stay untouched.
func (s *ArtifactService) attachIssues(ctx context.Context, result *artifacts.QueryResult) {
	for platform, records := range result.Data {
		for i, rec := range records {
			issues := s.issues.Lookup(ctx, rec.Version)
			if len(issues) == 0 {
				continue
			}
			cp := *rec
			cp.KnownIssues = issues
			result.Data[platform][i] = &cp
		}
	}
}
