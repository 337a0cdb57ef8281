package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/naka-gawa/team-metrics/internal/domain"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the behavior of the GitHub gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchContributorStats(ctx context.Context, owner, repo string) []*github.ContributorStats {
	args := m.Called(ctx, owner, repo)
	// A nil return means the gateway found nothing usable.
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*github.ContributorStats)
}

func (m *mockFetcher) SearchIssuesTotal(ctx context.Context, query string) (int, bool) {
	args := m.Called(ctx, query)
	return args.Int(0), args.Bool(1)
}

// contributorStats decodes a payload shaped like GET /repos/{owner}/{repo}/stats/contributors.
func contributorStats(t *testing.T, payload string) []*github.ContributorStats {
	t.Helper()
	var stats []*github.ContributorStats
	require.NoError(t, json.Unmarshal([]byte(payload), &stats))
	return stats
}

const aliceStats = `[{"author":{"login":"alice"},"weeks":[{"c":3},{"c":5}]}]`

func TestContributorTotals(t *testing.T) {
	testCases := []struct {
		name     string
		payload  string
		expected map[string]int
	}{
		{
			name:     "sums weekly commits per login",
			payload:  aliceStats,
			expected: map[string]int{"alice": 8},
		},
		{
			name:     "skips contributors without an author",
			payload:  `[{"author":null,"weeks":[{"c":9}]},{"author":{"login":"bob"},"weeks":[{"c":1},{"c":0},{"c":2}]}]`,
			expected: map[string]int{"bob": 3},
		},
		{
			name:     "contributor without weeks has zero commits",
			payload:  `[{"author":{"login":"carol"}}]`,
			expected: map[string]int{"carol": 0},
		},
		{
			name:     "empty payload",
			payload:  `[]`,
			expected: map[string]int{},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ContributorTotals(contributorStats(t, tc.payload)))
		})
	}

	t.Run("nil stats", func(t *testing.T) {
		assert.Empty(t, ContributorTotals(nil))
	})
}

func TestAggregator_CommitTotals(t *testing.T) {
	testCases := []struct {
		name     string
		stats    []*github.ContributorStats
		username string
		expected int
	}{
		{name: "known contributor", stats: contributorStats(t, aliceStats), username: "alice", expected: 8},
		{name: "unknown contributor", stats: contributorStats(t, aliceStats), username: "bob", expected: 0},
		{name: "stats unavailable", stats: nil, username: "alice", expected: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			if tc.stats == nil {
				fetcher.On("FetchContributorStats", mock.Anything, "acme", "widgets").Return(nil)
			} else {
				fetcher.On("FetchContributorStats", mock.Anything, "acme", "widgets").Return(tc.stats)
			}
			aggregator := NewAggregator(fetcher, zap.NewNop())

			totals := aggregator.CommitTotals(context.Background(), "acme", "widgets")

			assert.NotNil(t, totals)
			assert.Equal(t, tc.expected, totals[tc.username])
			fetcher.AssertExpectations(t)
		})
	}
}

func TestAggregator_SearchCounts(t *testing.T) {
	testCases := []struct {
		name        string
		call        func(a *Aggregator) int
		expectQuery string
		mockTotal   int
		mockOK      bool
		expected    int
	}{
		{
			name:        "PRs opened",
			call:        func(a *Aggregator) int { return a.PRsOpened(context.Background(), "acme", "widgets", "alice") },
			expectQuery: "is:pr author:alice repo:acme/widgets",
			mockTotal:   12,
			mockOK:      true,
			expected:    12,
		},
		{
			name:        "PRs merged",
			call:        func(a *Aggregator) int { return a.PRsMerged(context.Background(), "acme", "widgets", "alice") },
			expectQuery: "is:pr author:alice is:merged repo:acme/widgets",
			mockTotal:   9,
			mockOK:      true,
			expected:    9,
		},
		{
			name:        "reviews",
			call:        func(a *Aggregator) int { return a.Reviews(context.Background(), "acme", "widgets", "alice") },
			expectQuery: "is:pr reviewed-by:alice repo:acme/widgets",
			mockTotal:   4,
			mockOK:      true,
			expected:    4,
		},
		{
			name:        "absent result reads as zero",
			call:        func(a *Aggregator) int { return a.Reviews(context.Background(), "acme", "widgets", "alice") },
			expectQuery: "is:pr reviewed-by:alice repo:acme/widgets",
			mockTotal:   0,
			mockOK:      false,
			expected:    0,
		},
		{
			name:        "negative total clamps to zero",
			call:        func(a *Aggregator) int { return a.PRsOpened(context.Background(), "acme", "widgets", "alice") },
			expectQuery: "is:pr author:alice repo:acme/widgets",
			mockTotal:   -3,
			mockOK:      true,
			expected:    0,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			fetcher.On("SearchIssuesTotal", mock.Anything, tc.expectQuery).Return(tc.mockTotal, tc.mockOK)
			aggregator := NewAggregator(fetcher, zap.NewNop())

			assert.Equal(t, tc.expected, tc.call(aggregator))
			fetcher.AssertExpectations(t)
		})
	}
}

func TestAggregator_Collect(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("SearchIssuesTotal", mock.Anything, "is:pr author:alice repo:acme/widgets").Return(12, true)
	fetcher.On("SearchIssuesTotal", mock.Anything, "is:pr author:alice is:merged repo:acme/widgets").Return(10, true)
	fetcher.On("SearchIssuesTotal", mock.Anything, "is:pr reviewed-by:alice repo:acme/widgets").Return(0, false)
	aggregator := NewAggregator(fetcher, zap.NewNop())

	counters := aggregator.Collect(context.Background(), "acme", "widgets", "alice", map[string]int{"alice": 8})

	assert.Equal(t, domain.Counters{Commits: 8, PRsOpened: 12, PRsMerged: 10, Reviews: 0}, counters)
	fetcher.AssertExpectations(t)
	fetcher.AssertNotCalled(t, "FetchContributorStats", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchQuery(t *testing.T) {
	assert.Equal(t, "is:pr author:x is:merged repo:o/r", SearchQuery("o", "r", "is:pr", "author:x", "is:merged"))
	assert.Equal(t, "repo:o/r", SearchQuery("o", "r"))
}
