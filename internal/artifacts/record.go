// Package artifacts holds the artifact dataset model: aggregation from
// upstream tags, support-lifecycle classification, the timed dataset
// caches, and the query layer that serves filtered views of it.
package artifacts

import (
	"strconv"
	"time"
)

type Platform string

const (
	PlatformWindows Platform = "windows"
	PlatformLinux   Platform = "linux"
)

// Platforms lists every platform a tag is expanded into.
var Platforms = []Platform{PlatformWindows, PlatformLinux}

type SupportStatus string

const (
	StatusRecommended SupportStatus = "recommended"
	StatusLatest      SupportStatus = "latest"
	StatusActive      SupportStatus = "active"
	StatusDeprecated  SupportStatus = "deprecated"
	StatusEOL         SupportStatus = "eol"
	StatusUnknown     SupportStatus = "unknown"
)

// ArtifactRecord is one build artifact for one platform and version.
// Version, Platform, Tag, SourceCommit, DownloadURLs and PublishedAt are
// fixed at aggregation time; the classifier only touches SupportStatus,
// SupportEnds and EOL.
type ArtifactRecord struct {
	Version       string            `json:"version"`
	Platform      Platform          `json:"platform"`
	Tag           string            `json:"tag"`
	SourceCommit  string            `json:"sourceCommit"`
	DownloadURLs  map[string]string `json:"downloadUrls"`
	PublishedAt   time.Time         `json:"publishedAt"`
	SupportStatus SupportStatus     `json:"supportStatus"`
	SupportEnds   time.Time         `json:"supportEnds"`
	EOL           bool              `json:"eol"`
	KnownIssues   []*ArtifactIssue  `json:"knownIssues,omitempty"`
}

// ArtifactIssue is an upstream issue tied to an artifact version by
// regex extraction from its title or body.
type ArtifactIssue struct {
	Number      int    `json:"number"`
	State       string `json:"state"`
	Title       string `json:"title"`
	Severity    string `json:"severity"`
	ReportCount int    `json:"reportCount"`
}

// Dataset is the full per-platform version map the caches hold.
type Dataset map[Platform]map[string]*ArtifactRecord

// Clone deep-copies the dataset so classification of a refresh never
// mutates records a concurrent reader already holds.
func (d Dataset) Clone() Dataset {
	out := make(Dataset, len(d))
	for platform, versions := range d {
		m := make(map[string]*ArtifactRecord, len(versions))
		for v, rec := range versions {
			cp := *rec
			if rec.DownloadURLs != nil {
				cp.DownloadURLs = make(map[string]string, len(rec.DownloadURLs))
				for k, u := range rec.DownloadURLs {
					cp.DownloadURLs[k] = u
				}
			}
			m[v] = &cp
		}
		out[platform] = m
	}
	return out
}

// Snapshot is the persisted form of the dataset cache. Carries its own
// timestamp so a restored snapshot keeps its real age.
type Snapshot struct {
	Dataset   Dataset   `json:"dataset"`
	Timestamp time.Time `json:"timestamp"`
	ETag      string    `json:"etag"`
}

// versionNumber parses the numeric build version. Records never carry a
// non-numeric version (the aggregator guarantees it), so the fallback of
// zero only matters for hand-built test data.
func versionNumber(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
