package testutil

import (
	"context"
	"sync"
	"time"

	"artifactd/internal/providers"
	"artifactd/internal/upstream"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu             sync.Mutex
	Requests       int
	CacheHits      int
	CacheMisses    int
	Upstream       map[string]int // "resource/outcome"
	StaleServes    int
	FallbackServes int
	Refreshes      int
	DatasetSizes   map[string]int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Upstream:     make(map[string]int),
		DatasetSizes: make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}
func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}
func (m *MockMetrics) IncUpstreamRequests(resource string, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Upstream[resource+"/"+outcome]++
}
func (m *MockMetrics) IncStaleServes() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StaleServes++
}
func (m *MockMetrics) IncFallbackServes() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FallbackServes++
}
func (m *MockMetrics) ObserveRefreshDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Refreshes++
}
func (m *MockMetrics) SetDatasetSize(platform string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DatasetSizes[platform] = count
}

// MockUpstreamClient implements upstream.ClientInterface with canned data
// and per-method error injection.
type MockUpstreamClient struct {
	mu sync.Mutex

	Tags       []upstream.Tag
	Commits    map[string]*upstream.Commit
	Issues     []upstream.Issue
	IssuesETag string
	Comparison *upstream.Comparison

	TagsErr    error
	CommitErrs map[string]error
	IssuesErr  error
	CompareErr error

	TagCalls     int
	CommitCalls  int
	IssueCalls   int
	CompareCalls int
}

func (m *MockUpstreamClient) FetchTags(_ context.Context) ([]upstream.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TagCalls++
	if m.TagsErr != nil {
		return nil, m.TagsErr
	}
	return m.Tags, nil
}

func (m *MockUpstreamClient) FetchCommit(_ context.Context, sha string) (*upstream.Commit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CommitCalls++
	if err := m.CommitErrs[sha]; err != nil {
		return nil, err
	}
	if commit, ok := m.Commits[sha]; ok {
		return commit, nil
	}
	return nil, &upstream.NotFoundError{URL: sha}
}

func (m *MockUpstreamClient) FetchIssues(_ context.Context, etag string) (*upstream.IssueList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IssueCalls++
	if m.IssuesErr != nil {
		return nil, m.IssuesErr
	}
	if etag != "" && etag == m.IssuesETag {
		return &upstream.IssueList{ETag: etag, NotModified: true}, nil
	}
	return &upstream.IssueList{Issues: m.Issues, ETag: m.IssuesETag}, nil
}

func (m *MockUpstreamClient) Compare(_ context.Context, _, _ string) (*upstream.Comparison, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompareCalls++
	if m.CompareErr != nil {
		return nil, m.CompareErr
	}
	return m.Comparison, nil
}

// TagFor builds an upstream.Tag with a commit SHA derived from the name.
func TagFor(name, sha string) upstream.Tag {
	var t upstream.Tag
	t.Name = name
	t.Commit.SHA = sha
	return t
}

// CommitAt builds an upstream.Commit with the given date.
func CommitAt(sha string, date time.Time) *upstream.Commit {
	var c upstream.Commit
	c.SHA = sha
	c.Commit.Committer.Date = date
	return &c
}
