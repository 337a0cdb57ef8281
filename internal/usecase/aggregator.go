// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"strings"

	"github.com/google/go-github/v62/github"
	"go.uber.org/zap"

	"github.com/naka-gawa/team-metrics/internal/domain"
	"github.com/naka-gawa/team-metrics/internal/gateway"
)

// Aggregator turns GitHub responses into contribution counters.
// Every method returns a well-formed, non-negative value; failures are logged and read as zero.
type Aggregator struct {
	fetcher gateway.Fetcher
	logger  *zap.Logger
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		logger:  logger.Named("aggregator"),
	}
}

// ContributorTotals sums the weekly commit counts of each contributor login.
// Entries without an author login are skipped.
func ContributorTotals(stats []*github.ContributorStats) map[string]int {
	totals := make(map[string]int, len(stats))
	for _, contributor := range stats {
		login := contributor.GetAuthor().GetLogin()
		if login == "" {
			continue
		}
		sum := 0
		for _, week := range contributor.Weeks {
			if c := week.GetCommits(); c > 0 {
				sum += c
			}
		}
		totals[login] = sum
	}
	return totals
}

// CommitTotals fetches the repository contributor statistics once and aggregates them.
// The map is empty when GitHub returned nothing usable.
func (a *Aggregator) CommitTotals(ctx context.Context, owner, repo string) map[string]int {
	a.logger.Debug("[1/4] Fetching contributor statistics...", zap.String("repo", owner+"/"+repo))
	stats := a.fetcher.FetchContributorStats(ctx, owner, repo)
	if stats == nil {
		a.logger.Warn("contributor statistics unavailable; commit totals default to zero",
			zap.String("repo", owner+"/"+repo))
	}
	return ContributorTotals(stats)
}

func (a *Aggregator) PRsOpened(ctx context.Context, owner, repo, username string) int {
	a.logger.Debug("[2/4] Fetching opened PR count...", zap.String("user", username))
	return a.searchTotal(ctx, owner, repo, "is:pr", "author:"+username)
}

func (a *Aggregator) PRsMerged(ctx context.Context, owner, repo, username string) int {
	a.logger.Debug("[3/4] Fetching merged PR count...", zap.String("user", username))
	return a.searchTotal(ctx, owner, repo, "is:pr", "author:"+username, "is:merged")
}

func (a *Aggregator) Reviews(ctx context.Context, owner, repo, username string) int {
	a.logger.Debug("[4/4] Fetching reviewed PR count...", zap.String("user", username))
	return a.searchTotal(ctx, owner, repo, "is:pr", "reviewed-by:"+username)
}

// Collect builds the four counters for username using a precomputed commit totals map.
func (a *Aggregator) Collect(ctx context.Context, owner, repo, username string, commitTotals map[string]int) domain.Counters {
	return domain.Counters{
		Commits:   commitTotals[username],
		PRsOpened: a.PRsOpened(ctx, owner, repo, username),
		PRsMerged: a.PRsMerged(ctx, owner, repo, username),
		Reviews:   a.Reviews(ctx, owner, repo, username),
	}
}

// SearchQuery joins the search terms with the repository qualifier.
func SearchQuery(owner, repo string, terms ...string) string {
	return strings.Join(append(terms, "repo:"+owner+"/"+repo), " ")
}

func (a *Aggregator) searchTotal(ctx context.Context, owner, repo string, terms ...string) int {
	query := SearchQuery(owner, repo, terms...)
	total, ok := a.fetcher.SearchIssuesTotal(ctx, query)
	if !ok {
		a.logger.Warn("search count unavailable; defaulting to zero", zap.String("query", query))
		return 0
	}
	if total < 0 {
		return 0
	}
	return total
}
