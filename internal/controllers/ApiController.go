package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"artifactd/internal/artifacts"
	"artifactd/internal/providers"
	"artifactd/internal/services"
	"artifactd/internal/upstream"

	json "github.com/goccy/go-json"
)

type ApiController struct {
	logger  providers.Logger
	service services.ArtifactServiceInterface
	cache   providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, service services.ArtifactServiceInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		cache:   cache,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// parseQuery maps the recognized URL parameters onto an artifacts.Query.
// Unknown parameters are ignored; malformed values of recognized ones are
// a 400.
func parseQuery(r *http.Request) (*artifacts.Query, error) {
	values := r.URL.Query()
	q := &artifacts.Query{
		Platform:  values.Get("platform"),
		Version:   values.Get("version"),
		Search:    values.Get("search"),
		Status:    values.Get("status"),
		SortBy:    values.Get("sortBy"),
		SortOrder: values.Get("sortOrder"),
	}

	switch q.Platform {
	case "", "windows", "linux":
	default:
		return nil, fmt.Errorf("unknown platform %q", q.Platform)
	}
	switch q.Status {
	case "", "recommended", "latest", "active", "deprecated", "eol":
	default:
		return nil, fmt.Errorf("unknown status %q", q.Status)
	}
	switch q.SortBy {
	case "", "version", "date":
	default:
		return nil, fmt.Errorf("unknown sortBy %q", q.SortBy)
	}
	switch q.SortOrder {
	case "", "asc", "desc":
	default:
		return nil, fmt.Errorf("unknown sortOrder %q", q.SortOrder)
	}

	if v := values.Get("includeEol"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid includeEol %q", v)
		}
		q.IncludeEOL = b
	}
	if v := values.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid limit %q", v)
		}
		q.Limit = n
	}
	if v := values.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid offset %q", v)
		}
		q.Offset = n
	}
	if v := values.Get("before"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return nil, fmt.Errorf("invalid before date %q", v)
		}
		q.Before = t
	}
	if v := values.Get("after"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return nil, fmt.Errorf("invalid after date %q", v)
		}
		q.After = t
	}

	return q, nil
}

func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

// cacheKey produces a normalized key for the response cache. Normalize
// first so equivalent queries share an entry.
func cacheKey(q *artifacts.Query) string {
	q.Normalize()
	return fmt.Sprintf("artifacts:%s:%s:%s:%s:%t:%d:%d:%s:%s:%d:%d",
		q.Platform, q.Version, q.Search, q.Status, q.IncludeEOL,
		q.Before.Unix(), q.After.Unix(), q.SortBy, q.SortOrder, q.Limit, q.Offset)
}

func (ac *ApiController) GetArtifacts(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		ac.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := cacheKey(q)
	if data, ok := ac.cache.Get(key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := ac.service.Query(r.Context(), q)
	if err != nil {
		ac.writeServiceError(w, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		ac.writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ac.cache.Set(key, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) GetChangelog(w http.ResponseWriter, r *http.Request) {
	version := r.URL.Query().Get("version")
	if version == "" {
		ac.writeError(w, http.StatusBadRequest, "version parameter is required")
		return
	}
	format := r.URL.Query().Get("format")
	switch format {
	case "":
		format = "json"
	case "json", "markdown", "html":
	default:
		ac.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q", format))
		return
	}

	log, err := ac.service.Changelog(r.Context(), version)
	if err != nil {
		if upstream.IsNotFound(err) {
			ac.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		ac.writeServiceError(w, err)
		return
	}

	switch format {
	case "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(log.Markdown()))
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(log.HTML()))
	default:
		gson, err := json.Marshal(log)
		if err != nil {
			ac.writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(gson)
	}
}

// writeServiceError maps the failure taxonomy onto HTTP statuses with a
// message that tells the caller whether to retry, fix configuration, or
// narrow the request.
func (ac *ApiController) writeServiceError(w http.ResponseWriter, err error) {
	var rle *upstream.RateLimitError
	switch {
	case errors.Is(err, upstream.ErrTimeout) || errors.Is(err, context.DeadlineExceeded):
		ac.writeError(w, http.StatusGatewayTimeout, "aggregation timed out; the dataset is still being computed, try again shortly")
	case upstream.IsAuth(err):
		ac.logger.Errorf(providers.TypeApp, "Upstream auth failure: %s", err)
		ac.writeError(w, http.StatusInternalServerError, "upstream authentication failed; this is a configuration problem, check the API token")
	case errors.As(err, &rle):
		w.Header().Set("Retry-After", strconv.Itoa(int(rle.RetryAfter.Seconds())))
		ac.writeError(w, http.StatusTooManyRequests, "rate limited by upstream, try again later")
	case errors.Is(err, upstream.ErrNoData):
		ac.writeError(w, http.StatusServiceUnavailable, "no artifact data available yet, try again later")
	default:
		ac.logger.Errorf(providers.TypeApp, "Query failed: %s", err)
		ac.writeError(w, http.StatusInternalServerError, "temporary upstream failure, try again later")
	}
}

func (ac *ApiController) writeError(w http.ResponseWriter, status int, message string) {
	gson, err := json.Marshal(errorResponse{Error: message})
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}
