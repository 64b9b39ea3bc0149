package artifacts

import (
	"context"
	"regexp"
	"strings"

	"artifactd/internal/providers"
	"artifactd/internal/upstream"
)

// issueVersionRe finds artifact build versions referenced in issue text.
// Build numbers are 4-5 digit integers; shorter numbers collide with too
// much unrelated text to be useful.
var issueVersionRe = regexp.MustCompile(`\b(\d{4,5})\b`)

// IssueIndex maps an artifact version to the open issues referencing it.
type IssueIndex map[string][]*ArtifactIssue

// IssueTracker maintains the issue cache: open upstream issues, keyed by
// the artifact versions extracted from their titles and bodies. Uses
// conditional requests so an unchanged issue list costs one 304.
type IssueTracker struct {
	client upstream.ClientInterface
	cache  *TimedCache[IssueIndex]
	logger providers.Logger
}

func NewIssueTracker(client upstream.ClientInterface, cache *TimedCache[IssueIndex], logger providers.Logger) *IssueTracker {
	return &IssueTracker{
		client: client,
		cache:  cache,
		logger: logger,
	}
}

// Lookup returns the issues known for a version. Triggers a refresh when
// the cache has gone stale; on refresh failure the stale index keeps
// serving.
func (t *IssueTracker) Lookup(ctx context.Context, version string) []*ArtifactIssue {
	index, fresh, ok := t.cache.Get()
	if !ok || !fresh {
		if err := t.cache.Refresh(func() error { return t.refresh(ctx) }); err != nil {
			t.logger.Warnf(providers.TypeApp, "Issue refresh failed, serving previous index: %s", err)
		}
		if refreshed, _, refreshedOK := t.cache.Get(); refreshedOK {
			index = refreshed
		}
	}
	return index[version]
}

func (t *IssueTracker) refresh(ctx context.Context) error {
	list, err := t.client.FetchIssues(ctx, t.cache.ETag())
	if err != nil {
		return err
	}
	if list.NotModified {
		// Upstream unchanged; re-stamp the existing index as fresh.
		if index, _, ok := t.cache.Get(); ok {
			t.cache.Set(index, list.ETag)
			return nil
		}
	}

	index := buildIssueIndex(list.Issues)
	t.cache.Set(index, list.ETag)
	t.logger.Infof(providers.TypeApp, "Issue index rebuilt: %d versions referenced", len(index))
	return nil
}

// buildIssueIndex extracts version references from every issue and counts
// how many issues share each version. Recomputed wholesale on refresh.
func buildIssueIndex(issues []upstream.Issue) IssueIndex {
	index := make(IssueIndex)
	for _, issue := range issues {
		for _, version := range extractIssueVersions(issue) {
			index[version] = append(index[version], &ArtifactIssue{
				Number:   issue.Number,
				State:    issue.State,
				Title:    issue.Title,
				Severity: issueSeverity(issue),
			})
		}
	}
	for version, refs := range index {
		for _, ref := range refs {
			ref.ReportCount = len(index[version])
		}
	}
	return index
}

func extractIssueVersions(issue upstream.Issue) []string {
	seen := make(map[string]bool)
	var versions []string
	for _, text := range []string{issue.Title, issue.Body} {
		for _, m := range issueVersionRe.FindAllStringSubmatch(text, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				versions = append(versions, m[1])
			}
		}
	}
	return versions
}

func issueSeverity(issue upstream.Issue) string {
	for _, label := range issue.Labels {
		switch strings.ToLower(label.Name) {
		case "crash", "critical", "security":
			return "critical"
		case "bug", "regression":
			return "major"
		}
	}
	return "minor"
}
