package upstream

import "time"

// Tag is one entry of the tag-list endpoint. Upstream does not guarantee
// any ordering of the list.
type Tag struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// Commit carries the subset of the commit endpoint the aggregator needs:
// the authoritative commit date.
type Commit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message   string `json:"message"`
		Committer struct {
			Date time.Time `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
}

// Label is an issue label.
type Label struct {
	Name string `json:"name"`
}

// Issue is one entry of the issue-list endpoint.
type Issue struct {
	Number    int       `json:"number"`
	State     string    `json:"state"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Labels    []Label   `json:"labels"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Comparison is the commit range between two tags.
type Comparison struct {
	TotalCommits int      `json:"total_commits"`
	Commits      []Commit `json:"commits"`
	HTMLURL      string   `json:"html_url"`
}

// IssueList is the result of a conditional issue fetch. NotModified means
// the stored ETag still matches and the caller's cache stays authoritative.
type IssueList struct {
	Issues      []Issue
	ETag        string
	NotModified bool
}
