package usecase

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/team-metrics/internal/domain"
	"github.com/naka-gawa/team-metrics/internal/storage"
	"github.com/naka-gawa/team-metrics/internal/storage/storagetest"
)

type dashboardFixture struct {
	node      *snowflake.Node
	employees *storage.EmployeeStore
	metrics   *storage.MetricStore
	dashboard *Dashboard
}

func newDashboardFixture(t *testing.T) *dashboardFixture {
	t.Helper()
	db := storagetest.NewDB(t)
	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	loc, err := time.LoadLocation("America/Mexico_City")
	require.NoError(t, err)

	employees := storage.NewEmployeeStore(db)
	metrics := storage.NewMetricStore(db)
	return &dashboardFixture{
		node:      node,
		employees: employees,
		metrics:   metrics,
		dashboard: NewDashboard(employees, metrics, loc),
	}
}

func (f *dashboardFixture) employee(t *testing.T, username string) domain.Employee {
	t.Helper()
	e := domain.Employee{ID: f.node.Generate(), Name: username, GitHubUsername: username, Active: true}
	require.NoError(t, f.employees.Create(context.Background(), &e))
	return e
}

func (f *dashboardFixture) snapshot(t *testing.T, employee domain.Employee, at time.Time, c domain.Counters) {
	t.Helper()
	require.NoError(t, f.metrics.Insert(context.Background(), &domain.Metric{
		ID: f.node.Generate(), EmployeeID: employee.ID, Timestamp: at, Counters: c,
	}))
}

func TestDashboard_TeamSummary(t *testing.T) {
	f := newDashboardFixture(t)
	alice := f.employee(t, "alice")
	bob := f.employee(t, "bob")
	f.employee(t, "carol")

	day := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	f.snapshot(t, alice, day, domain.Counters{Commits: 6, PRsOpened: 2, PRsMerged: 1, Reviews: 1})
	f.snapshot(t, alice, day.AddDate(0, 0, 7), domain.Counters{Commits: 10, PRsOpened: 4, PRsMerged: 3, Reviews: 5})
	f.snapshot(t, bob, day, domain.Counters{Commits: 4, PRsOpened: 2, PRsMerged: 1, Reviews: 0})

	summary, err := f.dashboard.TeamSummary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Employees)
	assert.Equal(t, domain.Counters{Commits: 14, PRsOpened: 6, PRsMerged: 4, Reviews: 5}, summary.Totals)
	assert.InDelta(t, 7.0, summary.Mean.Commits, 1e-9)
	assert.InDelta(t, 2.5, summary.Mean.Reviews, 1e-9)
	assert.InDelta(t, 7.0, summary.Median.Commits, 1e-9)
	assert.InDelta(t, 3.0, summary.Median.PRsOpened, 1e-9)
}

func TestDashboard_TeamSummary_Empty(t *testing.T) {
	f := newDashboardFixture(t)
	f.employee(t, "alice")

	summary, err := f.dashboard.TeamSummary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.Summary{}, summary)
}

func TestDashboard_TeamSeries_BucketsByLocalDate(t *testing.T) {
	f := newDashboardFixture(t)
	alice := f.employee(t, "alice")
	bob := f.employee(t, "bob")

	// 03:00 UTC on the 6th is still the 5th in Mexico City.
	f.snapshot(t, alice, time.Date(2026, 1, 6, 3, 0, 0, 0, time.UTC), domain.Counters{Commits: 3, Reviews: 1})
	f.snapshot(t, bob, time.Date(2026, 1, 5, 18, 0, 0, 0, time.UTC), domain.Counters{Commits: 2, PRsOpened: 1})
	f.snapshot(t, alice, time.Date(2026, 1, 12, 18, 0, 0, 0, time.UTC), domain.Counters{Commits: 5, Reviews: 2})

	series, err := f.dashboard.TeamSeries(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"2026-01-05", "2026-01-12"}, series.Labels)
	assert.Equal(t, []int{5, 5}, series.Commits)
	assert.Equal(t, []int{1, 0}, series.PRsOpened)
	assert.Equal(t, []int{0, 0}, series.PRsMerged)
	assert.Equal(t, []int{1, 2}, series.Reviews)
}

func TestDashboard_EmployeeDetail(t *testing.T) {
	f := newDashboardFixture(t)
	alice := f.employee(t, "alice")

	day := time.Date(2026, 2, 2, 18, 0, 0, 0, time.UTC)
	f.snapshot(t, alice, day, domain.Counters{Commits: 4, PRsOpened: 1})
	f.snapshot(t, alice, day.AddDate(0, 0, 7), domain.Counters{Commits: 9, PRsOpened: 3, PRsMerged: 2})
	f.snapshot(t, alice, day.AddDate(0, 0, 14), domain.Counters{Commits: 9, PRsOpened: 3, PRsMerged: 3, Reviews: 4})

	detail, err := f.dashboard.EmployeeDetail(context.Background(), alice.ID)

	require.NoError(t, err)
	assert.Equal(t, alice.ID, detail.Employee.ID)
	require.NotNil(t, detail.Latest)
	assert.Equal(t, 4, detail.Latest.Reviews)
	assert.Equal(t, []string{"2026-02-02", "2026-02-09", "2026-02-16"}, detail.Chart.Labels)
	assert.Equal(t, []int{4, 9, 9}, detail.Chart.Commits)
	assert.Equal(t, []string{"2026-02-09", "2026-02-16"}, detail.Deltas.Labels)
	assert.Equal(t, []int{5, 0}, detail.Deltas.Commits)
	assert.Equal(t, []int{2, 0}, detail.Deltas.PRsOpened)
	assert.Equal(t, []int{2, 1}, detail.Deltas.PRsMerged)
	assert.Equal(t, []int{0, 4}, detail.Deltas.Reviews)
}

func TestDashboard_EmployeeDetail_NoSnapshots(t *testing.T) {
	f := newDashboardFixture(t)
	alice := f.employee(t, "alice")

	detail, err := f.dashboard.EmployeeDetail(context.Background(), alice.ID)

	require.NoError(t, err)
	assert.Nil(t, detail.Latest)
	assert.Empty(t, detail.Chart.Labels)
	assert.NotNil(t, detail.Deltas.Labels)

	_, err = f.dashboard.EmployeeDetail(context.Background(), f.node.Generate())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDashboard_Team(t *testing.T) {
	f := newDashboardFixture(t)
	alice := f.employee(t, "alice")
	f.snapshot(t, alice, time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC), domain.Counters{Commits: 1})

	team, err := f.dashboard.Team(context.Background())

	require.NoError(t, err)
	assert.Len(t, team.Employees, 1)
	assert.Equal(t, 1, team.Summary.Totals.Commits)
	assert.Equal(t, []string{"2026-04-01"}, team.Chart.Labels)
}
