package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/team-metrics/internal/domain"
)

const dateLayout = "2006-01-02"

// Dashboard derives summaries and chart series from stored snapshots.
type Dashboard struct {
	employees domain.EmployeeRepository
	metrics   domain.MetricRepository
	loc       *time.Location
}

// NewDashboard labels series points with dates in loc; nil means UTC.
func NewDashboard(employees domain.EmployeeRepository, metrics domain.MetricRepository, loc *time.Location) *Dashboard {
	if loc == nil {
		loc = time.UTC
	}
	return &Dashboard{employees: employees, metrics: metrics, loc: loc}
}

// Team builds the team dashboard: summary, series and roster.
func (d *Dashboard) Team(ctx context.Context) (domain.TeamDashboard, error) {
	employees, err := d.employees.List(ctx, domain.EmployeeFilter{})
	if err != nil {
		return domain.TeamDashboard{}, err
	}
	summary, err := d.summarize(ctx, employees)
	if err != nil {
		return domain.TeamDashboard{}, err
	}
	series, err := d.TeamSeries(ctx)
	if err != nil {
		return domain.TeamDashboard{}, err
	}
	return domain.TeamDashboard{Summary: summary, Chart: series, Employees: employees}, nil
}

// TeamSummary sums the latest snapshot of every employee.
func (d *Dashboard) TeamSummary(ctx context.Context) (domain.Summary, error) {
	employees, err := d.employees.List(ctx, domain.EmployeeFilter{})
	if err != nil {
		return domain.Summary{}, err
	}
	return d.summarize(ctx, employees)
}

func (d *Dashboard) summarize(ctx context.Context, employees []domain.Employee) (domain.Summary, error) {
	var (
		summary                           domain.Summary
		commits, opened, merged, reviewed stats.Float64Data
	)
	for _, employee := range employees {
		latest, err := d.metrics.Latest(ctx, employee.ID)
		if err != nil {
			return domain.Summary{}, err
		}
		if latest == nil {
			continue
		}
		summary.Totals = summary.Totals.Add(latest.Counters)
		summary.Employees++
		commits = append(commits, float64(latest.Commits))
		opened = append(opened, float64(latest.PRsOpened))
		merged = append(merged, float64(latest.PRsMerged))
		reviewed = append(reviewed, float64(latest.Reviews))
	}
	if summary.Employees == 0 {
		return summary, nil
	}
	summary.Mean = domain.CounterAverage{
		Commits:   mean(commits),
		PRsOpened: mean(opened),
		PRsMerged: mean(merged),
		Reviews:   mean(reviewed),
	}
	summary.Median = domain.CounterAverage{
		Commits:   median(commits),
		PRsOpened: median(opened),
		PRsMerged: median(merged),
		Reviews:   median(reviewed),
	}
	return summary, nil
}

// TeamSeries buckets every snapshot by local date and sums the counters of each bucket.
func (d *Dashboard) TeamSeries(ctx context.Context) (domain.Series, error) {
	metrics, err := d.metrics.ListAll(ctx)
	if err != nil {
		return domain.Series{}, err
	}
	buckets := make(map[string]domain.Counters)
	for _, m := range metrics {
		label := d.label(m.Timestamp)
		buckets[label] = buckets[label].Add(m.Counters)
	}
	labels := make([]string, 0, len(buckets))
	for label := range buckets {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	series := domain.NewSeries()
	for _, label := range labels {
		series.Append(label, buckets[label])
	}
	return series, nil
}

// EmployeeDetail returns an employee's latest snapshot, full series and period deltas.
func (d *Dashboard) EmployeeDetail(ctx context.Context, id snowflake.ID) (domain.EmployeeDetail, error) {
	employee, err := d.employees.FindByID(ctx, id)
	if err != nil {
		return domain.EmployeeDetail{}, err
	}
	metrics, err := d.metrics.ListByEmployee(ctx, id)
	if err != nil {
		return domain.EmployeeDetail{}, err
	}

	detail := domain.EmployeeDetail{Employee: *employee, Chart: domain.NewSeries()}
	for _, m := range metrics {
		detail.Chart.Append(d.label(m.Timestamp), m.Counters)
	}
	if n := len(metrics); n > 0 {
		latest := metrics[n-1]
		detail.Latest = &latest
	}
	detail.Deltas = detail.Chart.Deltas()
	return detail, nil
}

func (d *Dashboard) label(t time.Time) string {
	return t.In(d.loc).Format(dateLayout)
}

func mean(data stats.Float64Data) float64 {
	v, err := data.Mean()
	if err != nil {
		return 0
	}
	return v
}

func median(data stats.Float64Data) float64 {
	v, err := data.Median()
	if err != nil {
		return 0
	}
	return v
}
