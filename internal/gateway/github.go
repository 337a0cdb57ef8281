// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/naka-gawa/team-metrics/internal/config"
	"github.com/naka-gawa/team-metrics/internal/telemetry"
)

const (
	defaultBaseURL   = "https://api.github.com/"
	userAgent        = "team-metrics"
	acceptHeader     = "application/vnd.github+json"
	defaultRetries   = 5
	defaultBaseDelay = time.Second
)

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
// Failures never surface as errors: an absent result is nil / false and is logged by the gateway.
type Fetcher interface {
	FetchContributorStats(ctx context.Context, owner, repo string) []*github.ContributorStats
	SearchIssuesTotal(ctx context.Context, query string) (int, bool)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *zap.Logger
	metrics       *telemetry.Metrics
	authenticated bool
	maxRetries    int
	baseDelay     time.Duration
	sleep         func(ctx context.Context, d time.Duration) error
}

// Option customizes a GitHubGateway.
type Option func(*GitHubGateway)

// WithMetrics records request outcomes on m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(g *GitHubGateway) { g.metrics = m }
}

// WithRetryPolicy sets how many times a 202 response is retried and the first backoff delay.
// Retry n (0-based) waits baseDelay * 2^n.
func WithRetryPolicy(maxRetries int, baseDelay time.Duration) Option {
	return func(g *GitHubGateway) {
		g.maxRetries = maxRetries
		g.baseDelay = baseDelay
	}
}

// WithSleeper replaces the function used to wait between 202 retries.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(g *GitHubGateway) { g.sleep = sleep }
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// An empty token is accepted; every call then fails closed.
func NewGitHubGateway(cfg config.GitHubConfig, logger *zap.Logger, opts ...Option) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}

	var transport http.RoundTripper = rateLimitWaiter
	if cfg.Token != "" {
		transport = &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}),
		}
	}
	httpClient := &http.Client{Transport: transport, Timeout: cfg.Timeout}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API url %q: %w", cfg.BaseURL, err)
	}

	restClient := github.NewClient(httpClient)
	restClient.BaseURL = parsed
	restClient.UserAgent = userAgent

	graphqlClient := githubv4.NewClient(httpClient)
	if baseURL != defaultBaseURL {
		graphqlClient = githubv4.NewEnterpriseClient(graphqlEndpoint(parsed), httpClient)
	}

	g := &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		logger:        logger.Named("gateway"),
		authenticated: cfg.Token != "",
		maxRetries:    defaultRetries,
		baseDelay:     defaultBaseDelay,
		sleep:         sleepContext,
	}
	if cfg.MaxRetries > 0 {
		g.maxRetries = cfg.MaxRetries
	}
	if cfg.RetryBaseDelay > 0 {
		g.baseDelay = cfg.RetryBaseDelay
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Get issues an authenticated GET for path (relative to the API base URL) and decodes the JSON body into v.
// It reports false when no usable result came back: missing token, 202 still pending after all retries,
// status >= 400, network failure or a malformed body. The cause is logged, never returned.
func (g *GitHubGateway) Get(ctx context.Context, path string, query url.Values, v interface{}) bool {
	if !g.authenticated {
		g.logger.Warn("GITHUB_TOKEN is not set; cannot query GitHub API", zap.String("path", path))
		g.metrics.GitHubRequest(telemetry.OutcomeUnauthenticated)
		return false
	}

	target := path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := g.restClient.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		g.logger.Error("failed to build GitHub request", zap.String("path", path), zap.Error(err))
		g.metrics.GitHubRequest(telemetry.OutcomeNetworkError)
		return false
	}
	req.Header.Set("Accept", acceptHeader)

	for attempt := 0; ; attempt++ {
		_, err = g.restClient.Do(ctx, req, v)
		var accepted *github.AcceptedError
		if !errors.As(err, &accepted) {
			break
		}
		if attempt >= g.maxRetries {
			g.logger.Warn("GitHub is still computing the response; giving up",
				zap.String("path", path), zap.Int("retries", attempt))
			g.metrics.GitHubRequest(telemetry.OutcomeAcceptedExhausted)
			return false
		}
		delay := g.baseDelay << attempt
		g.logger.Debug("GitHub answered 202; retrying",
			zap.String("path", path), zap.Int("attempt", attempt+1), zap.Duration("delay", delay))
		g.metrics.GitHubRetry()
		if err := g.sleep(ctx, delay); err != nil {
			g.logger.Error("retry wait interrupted", zap.String("path", path), zap.Error(err))
			g.metrics.GitHubRequest(telemetry.OutcomeNetworkError)
			return false
		}
	}
	if err != nil {
		g.logFailure(path, err)
		return false
	}

	g.metrics.GitHubRequest(telemetry.OutcomeOK)
	return true
}

// logFailure classifies a failed call for logs and metrics.
func (g *GitHubGateway) logFailure(path string, err error) {
	var (
		errResp   *github.ErrorResponse
		rateErr   *github.RateLimitError
		abuseErr  *github.AbuseRateLimitError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &errResp):
		g.logger.Warn("GitHub API request failed",
			zap.String("path", path), zap.Int("status", errResp.Response.StatusCode), zap.String("message", errResp.Message))
		g.metrics.GitHubRequest(telemetry.OutcomeHTTPError)
	case errors.As(err, &rateErr):
		g.logger.Warn("GitHub API rate limit exceeded",
			zap.String("path", path), zap.Time("reset", rateErr.Rate.Reset.Time))
		g.metrics.GitHubRequest(telemetry.OutcomeHTTPError)
	case errors.As(err, &abuseErr):
		g.logger.Warn("GitHub API secondary rate limit hit",
			zap.String("path", path), zap.Duration("retry_after", abuseErr.GetRetryAfter()))
		g.metrics.GitHubRequest(telemetry.OutcomeHTTPError)
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.Is(err, io.ErrUnexpectedEOF):
		g.logger.Error("failed to decode JSON from GitHub response", zap.String("path", path), zap.Error(err))
		g.metrics.GitHubRequest(telemetry.OutcomeMalformed)
	default:
		g.logger.Error("error while requesting GitHub", zap.String("path", path), zap.Error(err))
		g.metrics.GitHubRequest(telemetry.OutcomeNetworkError)
	}
}

// FetchContributorStats returns the weekly commit breakdown per contributor, or nil when absent.
func (g *GitHubGateway) FetchContributorStats(ctx context.Context, owner, repo string) []*github.ContributorStats {
	path := fmt.Sprintf("repos/%s/%s/stats/contributors", url.PathEscape(owner), url.PathEscape(repo))
	var stats []*github.ContributorStats
	if !g.Get(ctx, path, nil, &stats) {
		return nil
	}
	return stats
}

// SearchIssuesTotal runs an issue search and returns its total_count.
func (g *GitHubGateway) SearchIssuesTotal(ctx context.Context, query string) (int, bool) {
	var result github.IssuesSearchResult
	if !g.Get(ctx, "search/issues", url.Values{"q": []string{query}}, &result) {
		return 0, false
	}
	return result.GetTotal(), true
}

// graphqlEndpoint maps a REST base URL to its GraphQL endpoint.
// GitHub Enterprise serves REST under /api/v3/ and GraphQL at /api/graphql.
func graphqlEndpoint(restBase *url.URL) string {
	u := *restBase
	if strings.HasSuffix(u.Path, "/api/v3/") {
		u.Path = strings.TrimSuffix(u.Path, "v3/") + "graphql"
	} else {
		u.Path += "graphql"
	}
	return u.String()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
