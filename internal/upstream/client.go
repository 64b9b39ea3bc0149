// Package upstream implements the client for the source-control hosting
// API: tag and commit listing, issue tracking, and tag-range comparison,
// with conditional requests, bounded pagination, retry with exponential
// backoff, and a circuit breaker in front of the host.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"artifactd/internal/providers"
	"artifactd/internal/structures"

	"github.com/cenk/backoff"
	json "github.com/goccy/go-json"
	"github.com/rs/dnscache"
	circuit "github.com/rubyist/circuitbreaker"
	"golang.org/x/time/rate"
)

type ClientInterface interface {
	FetchTags(ctx context.Context) ([]Tag, error)
	FetchCommit(ctx context.Context, sha string) (*Commit, error)
	FetchIssues(ctx context.Context, etag string) (*IssueList, error)
	Compare(ctx context.Context, base, head string) (*Comparison, error)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	owner      string
	repo       string
	token      string
	userAgent  string
	perPage    int
	maxPages   int
	maxRetries uint64
	baseDelay  time.Duration
	limiter    *rate.Limiter
	breaker    *circuit.Breaker
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
}

// linkNextRe extracts the rel="next" target from a Link header.
var linkNextRe = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

func NewClient(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) ClientInterface {
	resolver := &dnscache.Resolver{}
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			resolver.Refresh(true)
		}
	}()

	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}
			ips, err := resolver.LookupHost(ctx, host)
			if err != nil {
				return nil, err
			}
			for _, ip := range ips {
				conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
				if err == nil {
					return conn, nil
				}
			}
			return nil, fmt.Errorf("failed to dial any resolved IP for %s", host)
		},
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	ratePerSec := conf.Upstream.RatePerSec
	if ratePerSec <= 0 {
		ratePerSec = 5
	}
	baseDelay := conf.Upstream.BaseDelay
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Reset()

	return &Client{
		httpClient: &http.Client{
			Timeout:   conf.Upstream.Timeout,
			Transport: transport,
		},
		baseURL:    conf.Upstream.BaseURL,
		owner:      conf.Upstream.Owner,
		repo:       conf.Upstream.Repo,
		token:      conf.Upstream.Token,
		userAgent:  conf.AppName,
		perPage:    conf.Upstream.PerPage,
		maxPages:   conf.Upstream.MaxTagPages,
		maxRetries: uint64(max(conf.Upstream.MaxRetries, 0)),
		baseDelay:  baseDelay,
		limiter:    rate.NewLimiter(rate.Limit(ratePerSec), int(ratePerSec)+1),
		breaker: circuit.NewBreakerWithOptions(&circuit.Options{
			BackOff:    expBackoff,
			ShouldTrip: circuit.ThresholdTripFunc(5),
		}),
		logger:  logger,
		metrics: metrics,
	}
}

type response struct {
	statusCode  int
	etag        string
	nextURL     string
	notModified bool
}

// getJSON performs one conditional GET and classifies non-2xx responses
// into the typed error taxonomy. No retries at this level.
func (c *Client) getJSON(ctx context.Context, url, etag string, out any) (*response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransientError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decoding response from %s: %w", url, err)
		}
		return &response{
			statusCode: resp.StatusCode,
			etag:       resp.Header.Get("ETag"),
			nextURL:    nextPageURL(resp.Header.Get("Link")),
		}, nil

	case resp.StatusCode == http.StatusNotModified:
		return &response{statusCode: resp.StatusCode, notModified: true}, nil

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// 403 with an exhausted rate budget is a rate limit, not an auth problem.
		if resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0" {
			return nil, &RateLimitError{RetryAfter: retryAfter(resp)}
		}
		return nil, &AuthError{StatusCode: resp.StatusCode, URL: url}

	case resp.StatusCode == http.StatusNotFound:
		return nil, &NotFoundError{URL: url}

	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitError{RetryAfter: retryAfter(resp)}

	default:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		return nil, &TransientError{StatusCode: resp.StatusCode, URL: url}
	}
}

// getJSONRetry wraps getJSON with the retry policy: transient errors are
// retried with exponential backoff up to the budget, everything else is
// permanent. The circuit breaker fails fast when the host is known dead.
func (c *Client) getJSONRetry(ctx context.Context, resource, url, etag string, out any) (*response, error) {
	if !c.breaker.Ready() {
		c.metrics.IncUpstreamRequests(resource, "breaker_open")
		return nil, &TransientError{URL: url, Err: fmt.Errorf("circuit breaker open")}
	}

	var resp *response
	operation := func() error {
		var err error
		resp, err = c.getJSON(ctx, url, etag, out)
		if err == nil {
			return nil
		}
		if IsTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.baseDelay
	err := c.breaker.Call(func() error {
		return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx))
	}, 0)

	if err != nil {
		c.metrics.IncUpstreamRequests(resource, "error")
		return nil, err
	}
	c.metrics.IncUpstreamRequests(resource, "ok")
	return resp, nil
}

// FetchTags pulls the full tag list, following Link pagination up to the
// configured page cap.
func (c *Client) FetchTags(ctx context.Context) ([]Tag, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/tags?per_page=%d", c.baseURL, c.owner, c.repo, c.perPage)

	var tags []Tag
	for page := 0; page < c.maxPages && url != ""; page++ {
		var pageTags []Tag
		resp, err := c.getJSONRetry(ctx, "tags", url, "", &pageTags)
		if err != nil {
			return nil, err
		}
		tags = append(tags, pageTags...)
		url = resp.nextURL
	}

	c.logger.Debugf(providers.TypeApp, "Fetched %d tags from %s/%s", len(tags), c.owner, c.repo)
	return tags, nil
}

func (c *Client) FetchCommit(ctx context.Context, sha string) (*Commit, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/commits/%s", c.baseURL, c.owner, c.repo, sha)

	var commit Commit
	if _, err := c.getJSONRetry(ctx, "commits", url, "", &commit); err != nil {
		return nil, err
	}
	return &commit, nil
}

func (c *Client) FetchIssues(ctx context.Context, etag string) (*IssueList, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/issues?state=open&per_page=%d", c.baseURL, c.owner, c.repo, c.perPage)

	var issues []Issue
	resp, err := c.getJSONRetry(ctx, "issues", url, etag, &issues)
	if err != nil {
		return nil, err
	}
	if resp.notModified {
		return &IssueList{ETag: etag, NotModified: true}, nil
	}
	return &IssueList{Issues: issues, ETag: resp.etag}, nil
}

func (c *Client) Compare(ctx context.Context, base, head string) (*Comparison, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/compare/%s...%s", c.baseURL, c.owner, c.repo, base, head)

	var cmp Comparison
	if _, err := c.getJSONRetry(ctx, "compare", url, "", &cmp); err != nil {
		return nil, err
	}
	return &cmp, nil
}

func nextPageURL(linkHeader string) string {
	if linkHeader == "" {
		return ""
	}
	m := linkNextRe.FindStringSubmatch(linkHeader)
	if m == nil {
		return ""
	}
	return m[1]
}

// retryAfter derives a wait duration from Retry-After or the rate-limit
// reset epoch, whichever the response carries.
func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if v := resp.Header.Get("X-RateLimit-Reset"); v != "" {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			if d := time.Until(time.Unix(epoch, 0)); d > 0 {
				return d
			}
		}
	}
	return time.Minute
}
