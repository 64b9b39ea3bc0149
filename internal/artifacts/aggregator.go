package artifacts

import (
	"context"
	"regexp"
	"time"

	"artifactd/internal/providers"
	"artifactd/internal/upstream"

	"golang.org/x/sync/errgroup"
)

// tagVersionRe matches release tags of the form v1.2.3.6683 (dot or
// hyphen delimited); the last numeric group is the build version.
var tagVersionRe = regexp.MustCompile(`^v?\d+[.-]\d+[.-]\d+[.-](\d+)$`)

// ExtractVersion returns the build version of a release tag, or "" when
// the tag does not follow the release naming scheme.
func ExtractVersion(tag string) string {
	m := tagVersionRe.FindStringSubmatch(tag)
	if m == nil {
		return ""
	}
	return m[1]
}

// TagFailure records one tag the aggregator had to skip and why. Skips
// are tolerated: a failed commit lookup drops that version, not the run.
type TagFailure struct {
	Tag string
	Err error
}

// AggregateResult carries the assembled dataset plus the per-tag failures
// of a run, so partial degradation is visible instead of swallowed.
type AggregateResult struct {
	Dataset  Dataset
	Failures []TagFailure
}

// Aggregator maps upstream release tags to unclassified ArtifactRecords,
// one per platform per version.
type Aggregator struct {
	client    upstream.ClientInterface
	urls      *URLBuilder
	batchSize int
	pause     time.Duration
	logger    providers.Logger
}

func NewAggregator(client upstream.ClientInterface, urls *URLBuilder, batchSize int, pause time.Duration, logger providers.Logger) *Aggregator {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Aggregator{
		client:    client,
		urls:      urls,
		batchSize: batchSize,
		pause:     pause,
		logger:    logger,
	}
}

type taggedCommit struct {
	tag     upstream.Tag
	version string
	commit  *upstream.Commit
	err     error
}

// Aggregate pulls the tag list, resolves each release tag's commit date in
// bounded-concurrency batches, and builds one Windows and one Linux record
// per version. Tags without a release version are skipped silently; tags
// whose commit fetch fails are collected in Failures.
func (a *Aggregator) Aggregate(ctx context.Context) (*AggregateResult, error) {
	tags, err := a.client.FetchTags(ctx)
	if err != nil {
		return nil, err
	}

	var release []taggedCommit
	for _, tag := range tags {
		version := ExtractVersion(tag.Name)
		if version == "" {
			continue
		}
		release = append(release, taggedCommit{tag: tag, version: version})
	}

	// Commit lookups run in batches with a pause in between to stay
	// inside the upstream request budget.
	for start := 0; start < len(release); start += a.batchSize {
		end := min(start+a.batchSize, len(release))

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				commit, err := a.client.FetchCommit(gctx, release[i].tag.Commit.SHA)
				release[i].commit = commit
				release[i].err = err
				return nil
			})
		}
		_ = g.Wait()

		if end < len(release) && a.pause > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(a.pause):
			}
		}
	}

	result := &AggregateResult{Dataset: Dataset{
		PlatformWindows: make(map[string]*ArtifactRecord),
		PlatformLinux:   make(map[string]*ArtifactRecord),
	}}

	for _, rc := range release {
		if rc.err != nil {
			result.Failures = append(result.Failures, TagFailure{Tag: rc.tag.Name, Err: rc.err})
			a.logger.Warnf(providers.TypeApp, "Skipping tag %s: %s", rc.tag.Name, rc.err)
			continue
		}

		for _, platform := range Platforms {
			result.Dataset[platform][rc.version] = &ArtifactRecord{
				Version:       rc.version,
				Platform:      platform,
				Tag:           rc.tag.Name,
				SourceCommit:  rc.tag.Commit.SHA,
				DownloadURLs:  a.urls.Build(platform, rc.version, rc.tag.Commit.SHA),
				PublishedAt:   rc.commit.Commit.Committer.Date,
				SupportStatus: StatusUnknown,
			}
		}
	}

	a.logger.Infof(providers.TypeApp, "Aggregated %d versions (%d tags skipped)",
		len(result.Dataset[PlatformWindows]), len(result.Failures))
	return result, nil
}
