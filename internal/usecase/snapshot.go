package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/naka-gawa/team-metrics/internal/config"
	"github.com/naka-gawa/team-metrics/internal/domain"
	"github.com/naka-gawa/team-metrics/internal/telemetry"
)

// SnapshotParams collects the dependencies of a SnapshotWriter.
type SnapshotParams struct {
	GitHub     config.GitHubConfig
	Aggregator *Aggregator
	Employees  domain.EmployeeRepository
	Metrics    domain.MetricRepository
	GenID      *snowflake.Node
	Logger     *zap.Logger
	Telemetry  *telemetry.Metrics
	// Now defaults to time.Now.
	Now func() time.Time
}

// SnapshotWriter records one cumulative Metric per employee per run.
type SnapshotWriter struct {
	github     config.GitHubConfig
	aggregator *Aggregator
	employees  domain.EmployeeRepository
	metrics    domain.MetricRepository
	genID      *snowflake.Node
	logger     *zap.Logger
	telemetry  *telemetry.Metrics
	now        func() time.Time
}

func NewSnapshotWriter(p SnapshotParams) *SnapshotWriter {
	now := p.Now
	if now == nil {
		now = time.Now
	}
	return &SnapshotWriter{
		github:     p.GitHub,
		aggregator: p.Aggregator,
		employees:  p.Employees,
		metrics:    p.Metrics,
		genID:      p.GenID,
		logger:     p.Logger.Named("snapshot"),
		telemetry:  p.Telemetry,
		now:        now,
	}
}

// UpdateEmployee captures a snapshot for a single employee.
// It returns domain.ErrNotConfigured, and writes nothing, when the token, owner or repository is missing.
func (w *SnapshotWriter) UpdateEmployee(ctx context.Context, employee domain.Employee) (*domain.Metric, error) {
	if !w.configured() {
		return nil, domain.ErrNotConfigured
	}
	totals := w.aggregator.CommitTotals(ctx, w.github.Owner, w.github.Repo)
	return w.record(ctx, employee, totals)
}

// UpdateAll captures a snapshot for every active employee, one at a time.
// Contributor statistics are fetched once and shared by the whole batch.
// A failure for one employee is logged and does not stop the others; only created records are returned.
func (w *SnapshotWriter) UpdateAll(ctx context.Context) ([]domain.Metric, error) {
	created := []domain.Metric{}
	if !w.configured() {
		return created, nil
	}
	start := time.Now()

	active := true
	employees, err := w.employees.List(ctx, domain.EmployeeFilter{Active: &active})
	if err != nil {
		return created, fmt.Errorf("failed to list active employees: %w", err)
	}
	if len(employees) == 0 {
		w.logger.Info("no active employees to update")
		return created, nil
	}

	totals := w.aggregator.CommitTotals(ctx, w.github.Owner, w.github.Repo)
	for _, employee := range employees {
		metric, err := w.record(ctx, employee, totals)
		if err != nil {
			w.logger.Error("failed to record metrics",
				zap.String("github_username", employee.GitHubUsername), zap.Error(err))
			w.telemetry.SnapshotSkipped("storage_error")
			continue
		}
		created = append(created, *metric)
	}

	w.telemetry.ObserveBatch(time.Since(start).Seconds())
	w.logger.Info("metrics update finished",
		zap.Int("active_employees", len(employees)), zap.Int("snapshots", len(created)))
	return created, nil
}

func (w *SnapshotWriter) configured() bool {
	if w.github.Configured() {
		return true
	}
	w.logger.Warn("cannot update metrics because one of REPO_OWNER, REPO_NAME or GITHUB_TOKEN is unset")
	w.telemetry.SnapshotSkipped("not_configured")
	return false
}

func (w *SnapshotWriter) record(ctx context.Context, employee domain.Employee, totals map[string]int) (*domain.Metric, error) {
	counters := w.aggregator.Collect(ctx, w.github.Owner, w.github.Repo, employee.GitHubUsername, totals)
	metric := &domain.Metric{
		ID:         w.genID.Generate(),
		EmployeeID: employee.ID,
		Timestamp:  w.now().UTC(),
		Counters:   counters,
	}
	if err := w.metrics.Insert(ctx, metric); err != nil {
		return nil, err
	}
	w.telemetry.SnapshotCreated()
	w.logger.Info("recorded metrics",
		zap.String("github_username", employee.GitHubUsername),
		zap.Int("commits", metric.Commits),
		zap.Int("prs_opened", metric.PRsOpened),
		zap.Int("prs_merged", metric.PRsMerged),
		zap.Int("reviews", metric.Reviews),
	)
	return metric, nil
}
