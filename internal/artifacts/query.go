package artifacts

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	// MaxLimit caps the page size a caller can request.
	MaxLimit     = 500
	DefaultLimit = 100
)

// Query is the parsed filter/sort/pagination request against the
// classified dataset.
type Query struct {
	Platform   string
	Version    string
	Search     string
	Status     string
	IncludeEOL bool
	Before     time.Time
	After      time.Time
	SortBy     string // "version" or "date"
	SortOrder  string // "asc" or "desc"
	Limit      int
	Offset     int
}

// Normalize applies defaults and bounds. Limit is clamped to MaxLimit, a
// missing sort is version-descending, and eol records stay hidden unless
// asked for.
func (q *Query) Normalize() {
	if q.SortBy == "" {
		q.SortBy = "version"
	}
	if q.SortOrder == "" {
		q.SortOrder = "desc"
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}

type QueryStats struct {
	Total    int                   `json:"total"`
	Filtered int                   `json:"filtered"`
	ByStatus map[SupportStatus]int `json:"byStatus"`
}

type Pagination struct {
	Limit    int  `json:"limit"`
	Offset   int  `json:"offset"`
	Returned int  `json:"returned"`
	HasMore  bool `json:"hasMore"`
}

type Metadata struct {
	Platforms                []Platform                   `json:"platforms"`
	Recommended              map[Platform]*ArtifactRecord `json:"recommended"`
	Latest                   map[Platform]*ArtifactRecord `json:"latest"`
	Stats                    QueryStats                   `json:"stats"`
	Pagination               Pagination                   `json:"pagination"`
	Filters                  *Query                       `json:"filters"`
	SupportSchedule          map[string]string            `json:"supportSchedule"`
	SupportStatusExplanation map[SupportStatus]string     `json:"supportStatusExplanation"`
}

type QueryResult struct {
	Data     map[Platform][]*ArtifactRecord `json:"data"`
	Metadata Metadata                       `json:"metadata"`
}

var statusExplanation = map[SupportStatus]string{
	StatusRecommended: "Stable build that has been proven by a newer release; preferred for production servers.",
	StatusLatest:      "Newest build; functional but not yet proven by a successor.",
	StatusActive:      "Older build still inside its support window.",
	StatusDeprecated:  "Build scheduled to lose support; upgrade soon.",
	StatusEOL:         "Support window elapsed; no longer receives fixes.",
	StatusUnknown:     "Build has not been classified yet.",
}

// QueryEngine derives filtered, sorted, paginated views plus aggregate
// statistics from a classified dataset. Stats and the recommended/latest
// pointers always come from the unfiltered dataset so the current
// recommended build is surfaced even when filters would exclude it.
type QueryEngine struct {
	recommendedWindow time.Duration
	supportWindow     time.Duration
}

func NewQueryEngine(recommendedWindow, supportWindow time.Duration) *QueryEngine {
	return &QueryEngine{
		recommendedWindow: recommendedWindow,
		supportWindow:     supportWindow,
	}
}

func (e *QueryEngine) Run(dataset Dataset, q *Query) *QueryResult {
	q.Normalize()

	var total int
	byStatus := make(map[SupportStatus]int)
	recommended := make(map[Platform]*ArtifactRecord)
	latest := make(map[Platform]*ArtifactRecord)

	for _, platform := range Platforms {
		for _, rec := range dataset[platform] {
			total++
			byStatus[rec.SupportStatus]++
			switch rec.SupportStatus {
			case StatusRecommended:
				recommended[platform] = rec
			case StatusLatest:
				latest[platform] = rec
			}
		}
	}

	filtered := e.filter(dataset, q)
	e.sortRecords(filtered, q)

	totalFiltered := len(filtered)
	page := paginate(filtered, q.Offset, q.Limit)

	data := map[Platform][]*ArtifactRecord{}
	for _, platform := range selectedPlatforms(q.Platform) {
		data[platform] = []*ArtifactRecord{}
	}
	for _, rec := range page {
		data[rec.Platform] = append(data[rec.Platform], rec)
	}

	return &QueryResult{
		Data: data,
		Metadata: Metadata{
			Platforms:   selectedPlatforms(q.Platform),
			Recommended: recommended,
			Latest:      latest,
			Stats: QueryStats{
				Total:    total,
				Filtered: totalFiltered,
				ByStatus: byStatus,
			},
			Pagination: Pagination{
				Limit:    q.Limit,
				Offset:   q.Offset,
				Returned: len(page),
				HasMore:  q.Offset+len(page) < totalFiltered,
			},
			Filters: q,
			SupportSchedule: map[string]string{
				"recommended": fmt.Sprintf("supported for %s after a newer build ships", e.recommendedWindow),
				"others":      fmt.Sprintf("supported for %s after a newer build ships", e.supportWindow),
			},
			SupportStatusExplanation: statusExplanation,
		},
	}
}

func selectedPlatforms(platform string) []Platform {
	switch Platform(platform) {
	case PlatformWindows:
		return []Platform{PlatformWindows}
	case PlatformLinux:
		return []Platform{PlatformLinux}
	default:
		return Platforms
	}
}

func (e *QueryEngine) filter(dataset Dataset, q *Query) []*ArtifactRecord {
	var out []*ArtifactRecord
	for _, platform := range selectedPlatforms(q.Platform) {
		for _, rec := range dataset[platform] {
			if rec.EOL && !q.IncludeEOL {
				continue
			}
			if q.Version != "" && rec.Version != q.Version {
				continue
			}
			if q.Search != "" && !strings.Contains(rec.Version, q.Search) {
				continue
			}
			if q.Status != "" && rec.SupportStatus != SupportStatus(q.Status) {
				continue
			}
			if !q.Before.IsZero() && !rec.PublishedAt.Before(q.Before) {
				continue
			}
			if !q.After.IsZero() && !rec.PublishedAt.After(q.After) {
				continue
			}
			out = append(out, rec)
		}
	}
	return out
}

// sortRecords orders numerically on the parsed version or on publishedAt.
// The secondary version key gives map-iteration-independent output, which
// pagination depends on.
func (e *QueryEngine) sortRecords(records []*ArtifactRecord, q *Query) {
	less := func(a, b *ArtifactRecord) bool {
		if q.SortBy == "date" && !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.Before(b.PublishedAt)
		}
		if va, vb := versionNumber(a.Version), versionNumber(b.Version); va != vb {
			return va < vb
		}
		return a.Platform < b.Platform
	}

	sort.SliceStable(records, func(i, j int) bool {
		if q.SortOrder == "asc" {
			return less(records[i], records[j])
		}
		return less(records[j], records[i])
	})
}

func paginate(records []*ArtifactRecord, offset, limit int) []*ArtifactRecord {
	if offset >= len(records) {
		return nil
	}
	end := min(offset+limit, len(records))
	return records[offset:end]
}
