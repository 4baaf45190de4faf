// Package fetcher retrieves skill content trees from the GitHub
// Contents API. It recursively lists a repository subpath at a ref
// and downloads every file, retrying transient failures with
// exponential backoff. Caching is the caller's concern; the fetcher
// always goes to the network.
package fetcher

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/jingkaihe/skillsync/pkg/logger"
	skilltypes "github.com/jingkaihe/skillsync/pkg/types/skill"
)

// DefaultBaseURL is the GitHub REST API endpoint.
const DefaultBaseURL = "https://api.github.com"

const apiVersion = "2022-11-28"

// maxConcurrentDownloads bounds parallel file downloads within one
// fetch.
const maxConcurrentDownloads = 8

// RetryConfig holds the backoff policy for transient failures.
type RetryConfig struct {
	Attempts     uint
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultRetryConfig retries three times with exponential backoff.
var DefaultRetryConfig = RetryConfig{
	Attempts:     3,
	InitialDelay: 1 * time.Second,
	MaxDelay:     30 * time.Second,
}

// GitHub fetches content trees from the GitHub Contents API.
type GitHub struct {
	client  *http.Client
	baseURL string
	retry   RetryConfig
}

// Option configures a GitHub fetcher.
type Option func(*GitHub)

// WithBaseURL overrides the API endpoint; tests point this at a local
// httptest server.
func WithBaseURL(baseURL string) Option {
	return func(g *GitHub) {
		g.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(g *GitHub) {
		g.client = client
	}
}

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(g *GitHub) {
		g.retry = cfg
	}
}

// NewGitHub creates a fetcher. A non-empty bearer token raises the
// API rate limit; absence is not an error.
func NewGitHub(ctx context.Context, token string, opts ...Option) *GitHub {
	g := &GitHub{
		baseURL: DefaultBaseURL,
		retry:   DefaultRetryConfig,
	}

	if token == "" {
		logger.G(ctx).Debug("no GitHub token provided, API rate limits will be restricted")
		g.client = &http.Client{Timeout: 30 * time.Second}
	} else {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		g.client = oauth2.NewClient(ctx, ts)
		g.client.Timeout = 30 * time.Second
	}

	for _, opt := range opts {
		opt(g)
	}
	return g
}

// contentItem is one entry of a Contents API directory listing.
type contentItem struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	DownloadURL string `json:"download_url"`
}

// Fetch downloads the full tree under the coordinate's subpath at its
// ref. The returned tree is an unordered mapping; consumers impose
// any ordering they need.
func (g *GitHub) Fetch(ctx context.Context, coord skilltypes.SourceCoordinate) (skilltypes.ContentTree, error) {
	if coord.IsLocal() {
		return nil, errors.Errorf("fetcher cannot serve local coordinate %s", coord)
	}

	log := logger.G(ctx).WithField("coordinate", coord.String())
	log.Debug("fetching content tree from GitHub")

	tree := make(skilltypes.ContentTree)
	var mu sync.Mutex

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(maxConcurrentDownloads)

	if err := g.fetchDir(grpCtx, grp, coord, coord.Subpath, tree, &mu); err != nil {
		return nil, err
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	log.WithField("files", len(tree)).Debug("fetched content tree")
	return tree, nil
}

// fetchDir lists one directory and schedules file downloads; nested
// directories are listed synchronously so listing errors surface with
// their own path, while downloads run through the group.
func (g *GitHub) fetchDir(ctx context.Context, grp *errgroup.Group, coord skilltypes.SourceCoordinate, dir string, tree skilltypes.ContentTree, mu *sync.Mutex) error {
	items, err := g.listDir(ctx, coord, dir)
	if err != nil {
		return err
	}

	for _, item := range items {
		switch item.Type {
		case "file":
			item := item
			grp.Go(func() error {
				return g.downloadFile(ctx, coord, item, tree, mu)
			})
		case "dir":
			if err := g.fetchDir(ctx, grp, coord, item.Path, tree, mu); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *GitHub) listDir(ctx context.Context, coord skilltypes.SourceCoordinate, dir string) ([]contentItem, error) {
	url := g.baseURL + "/repos/" + coord.Owner + "/" + coord.Repo + "/contents/" + dir + "?ref=" + coord.Ref

	body, err := g.get(ctx, url, "application/vnd.github+json", coord)
	if err != nil {
		return nil, err
	}

	var items []contentItem
	if err := json.Unmarshal(body, &items); err != nil {
		// A JSON object instead of an array means the path is a
		// single file, which is not a valid skill directory.
		return nil, &FetchError{
			Coordinate: coord,
			Message:    "expected a directory at " + dir + ", got a file",
			Err:        err,
		}
	}
	return items, nil
}

func (g *GitHub) downloadFile(ctx context.Context, coord skilltypes.SourceCoordinate, item contentItem, tree skilltypes.ContentTree, mu *sync.Mutex) error {
	if item.DownloadURL == "" {
		return &FetchError{Coordinate: coord, Message: "no download_url for file " + item.Path}
	}

	body, err := g.get(ctx, item.DownloadURL, "application/octet-stream", coord)
	if err != nil {
		return err
	}

	rel := strings.TrimPrefix(strings.TrimPrefix(item.Path, coord.Subpath), "/")
	if rel == "" {
		rel = item.Name
	}

	mu.Lock()
	defer mu.Unlock()
	return tree.Insert(rel, body)
}

// get performs one HTTP GET with the configured retry policy.
// Transient failures are retried with exponential backoff; terminal
// failures abort immediately.
func (g *GitHub) get(ctx context.Context, url, accept string, coord skilltypes.SourceCoordinate) ([]byte, error) {
	var body []byte

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return retry.Unrecoverable(&FetchError{Coordinate: coord, Message: "building request", Err: err})
			}
			req.Header.Set("Accept", accept)
			req.Header.Set("X-GitHub-Api-Version", apiVersion)

			resp, err := g.client.Do(req)
			if err != nil {
				return &FetchError{Coordinate: coord, Transient: true, Message: "request failed", Err: err}
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return classifyStatus(coord, resp)
			}

			body, err = io.ReadAll(resp.Body)
			if err != nil {
				return &FetchError{Coordinate: coord, Transient: true, Message: "reading response body", Err: err}
			}
			return nil
		},
		retry.RetryIf(isTransient),
		retry.Attempts(g.retry.Attempts),
		retry.Delay(g.retry.InitialDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.MaxDelay(g.retry.MaxDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.G(ctx).WithError(err).
				WithField("attempt", n+1).
				WithField("max_attempts", g.retry.Attempts).
				Warn("retrying GitHub API call")
		}),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func classifyStatus(coord skilltypes.SourceCoordinate, resp *http.Response) error {
	status := resp.StatusCode
	switch {
	case status == http.StatusNotFound:
		return &FetchError{Coordinate: coord, StatusCode: status, Message: "ref or path not found"}
	case status == http.StatusUnauthorized:
		return &FetchError{Coordinate: coord, StatusCode: status, Message: "authentication failed"}
	case status == http.StatusForbidden:
		// 403 with an exhausted rate-limit header is throttling, not
		// an auth failure.
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			return &FetchError{Coordinate: coord, StatusCode: status, Transient: true, Message: "rate limited"}
		}
		return &FetchError{Coordinate: coord, StatusCode: status, Message: "access forbidden"}
	case status == http.StatusTooManyRequests:
		return &FetchError{Coordinate: coord, StatusCode: status, Transient: true, Message: "rate limited"}
	case status >= 500:
		return &FetchError{Coordinate: coord, StatusCode: status, Transient: true, Message: "server error"}
	default:
		return &FetchError{Coordinate: coord, StatusCode: status, Message: "unexpected response"}
	}
}
