package artifacts

import (
	"sort"
	"time"
)

// Classifier assigns support lifecycle state to a platform's version set.
// Two windows drive the schedule: the recommended build stays supported
// for RecommendedWindow after its successor ships, every other build for
// SupportWindow.
type Classifier struct {
	RecommendedWindow time.Duration
	SupportWindow     time.Duration
}

func NewClassifier(recommendedWindow, supportWindow time.Duration) *Classifier {
	return &Classifier{
		RecommendedWindow: recommendedWindow,
		SupportWindow:     supportWindow,
	}
}

// Classify fills in SupportStatus, SupportEnds and EOL for every record of
// one platform. Pure function of the version map and now: no clock reads,
// no external state. Rules:
//
//   - versions sort numerically descending
//   - with two or more versions the newest is "latest" and the
//     second-newest is "recommended"; a lone version is "recommended"
//   - every older version is "active" until its window runs out
//   - supportEnds = publishedAt of the next-newer version (or now for the
//     newest) plus the status' window
//   - a supportEnds in the past forces "eol" regardless of the label the
//     position rules picked; the eol flag always mirrors the status
//
// The second-newest-is-recommended lag is a product decision inherited
// from the artifact host's release process (the newest build is treated
// as untested until a successor ships).
func (c *Classifier) Classify(records map[string]*ArtifactRecord, now time.Time) {
	if len(records) == 0 {
		return
	}

	versions := make([]string, 0, len(records))
	for v := range records {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool {
		return versionNumber(versions[i]) > versionNumber(versions[j])
	})

	for i, v := range versions {
		rec := records[v]

		status := StatusActive
		switch {
		case len(versions) == 1:
			status = StatusRecommended
		case i == 0:
			status = StatusLatest
		case i == 1:
			status = StatusRecommended
		}

		// Reference date: when the next newer build shipped, or now if
		// this is the newest.
		reference := now
		if i > 0 {
			reference = records[versions[i-1]].PublishedAt
		}

		window := c.SupportWindow
		if status == StatusRecommended {
			window = c.RecommendedWindow
		}

		rec.SupportStatus = status
		rec.SupportEnds = reference.Add(window)
		if rec.SupportEnds.Before(now) {
			rec.SupportStatus = StatusEOL
		}
		rec.EOL = rec.SupportStatus == StatusEOL
	}
}

// ClassifyDataset runs Classify over every platform of a dataset.
func (c *Classifier) ClassifyDataset(dataset Dataset, now time.Time) {
	for _, records := range dataset {
		c.Classify(records, now)
	}
}
