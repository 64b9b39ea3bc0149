package artifacts

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"artifactd/internal/upstream"

	"gitlab.com/golang-commonmark/markdown"
)

// Changelog is the commit range between one version and the adjacent
// older one.
type Changelog struct {
	Version      string           `json:"version"`
	Previous     string           `json:"previous"`
	TotalCommits int              `json:"totalCommits"`
	Commits      []ChangelogEntry `json:"commits"`
	CompareURL   string           `json:"compareUrl,omitempty"`
}

type ChangelogEntry struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
}

var mdRenderer = markdown.New(markdown.XHTMLOutput(true), markdown.Linkify(true))

// BuildChangelog resolves version and its next-older neighbor in the
// dataset, then pulls the commit range between their tags.
func BuildChangelog(ctx context.Context, client upstream.ClientInterface, records map[string]*ArtifactRecord, version string) (*Changelog, error) {
	rec, ok := records[version]
	if !ok {
		return nil, fmt.Errorf("unknown version %q", version)
	}

	versions := make([]string, 0, len(records))
	for v := range records {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool {
		return versionNumber(versions[i]) > versionNumber(versions[j])
	})

	var previous *ArtifactRecord
	for i, v := range versions {
		if v == version && i+1 < len(versions) {
			previous = records[versions[i+1]]
		}
	}
	if previous == nil {
		return nil, fmt.Errorf("version %q has no older neighbor to diff against", version)
	}

	cmp, err := client.Compare(ctx, previous.Tag, rec.Tag)
	if err != nil {
		return nil, err
	}

	log := &Changelog{
		Version:      version,
		Previous:     previous.Version,
		TotalCommits: cmp.TotalCommits,
		CompareURL:   cmp.HTMLURL,
	}
	for _, commit := range cmp.Commits {
		message, _, _ := strings.Cut(commit.Commit.Message, "\n")
		log.Commits = append(log.Commits, ChangelogEntry{
			SHA:     commit.SHA,
			Message: message,
		})
	}
	return log, nil
}

// Markdown renders the changelog as a commit list under a version header.
func (c *Changelog) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Changes in build %s\n\n", c.Version)
	fmt.Fprintf(&b, "%d commits since build %s.\n\n", c.TotalCommits, c.Previous)
	for _, entry := range c.Commits {
		short := entry.SHA
		if len(short) > 7 {
			short = short[:7]
		}
		fmt.Fprintf(&b, "- `%s` %s\n", short, entry.Message)
	}
	if c.CompareURL != "" {
		fmt.Fprintf(&b, "\n[Full comparison](%s)\n", c.CompareURL)
	}
	return b.String()
}

// HTML renders the markdown form through the commonmark renderer.
func (c *Changelog) HTML() string {
	return mdRenderer.RenderToString([]byte(c.Markdown()))
}
