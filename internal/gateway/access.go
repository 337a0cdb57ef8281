package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
)

// AccessReport describes what the configured token can see.
type AccessReport struct {
	Viewer        string `json:"viewer"`
	Repository    string `json:"repository"`
	Private       bool   `json:"private"`
	DefaultBranch string `json:"default_branch"`
}

// accessQuery resolves the token owner and the tracked repository in one round trip.
type accessQuery struct {
	Viewer struct {
		Login githubv4.String
	}
	Repository struct {
		NameWithOwner    githubv4.String
		IsPrivate        githubv4.Boolean
		DefaultBranchRef struct {
			Name githubv4.String
		}
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// CheckAccess verifies that the token is valid and the repository is visible to it.
// Unlike the REST fetches it reports failures as errors.
func (g *GitHubGateway) CheckAccess(ctx context.Context, owner, repo string) (AccessReport, error) {
	if !g.authenticated {
		return AccessReport{}, errors.New("GITHUB_TOKEN is not set")
	}
	var q accessQuery
	variables := map[string]interface{}{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(repo),
	}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return AccessReport{}, fmt.Errorf("failed to execute GraphQL access check: %w", err)
	}
	report := AccessReport{
		Viewer:        string(q.Viewer.Login),
		Repository:    string(q.Repository.NameWithOwner),
		Private:       bool(q.Repository.IsPrivate),
		DefaultBranch: string(q.Repository.DefaultBranchRef.Name),
	}
	g.logger.Debug("GitHub access verified",
		zap.String("viewer", report.Viewer), zap.String("repository", report.Repository))
	return report, nil
}
