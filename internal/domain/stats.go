package domain

// Summary is the team-wide view built from each employee's latest snapshot.
type Summary struct {
	Totals    Counters       `json:"totals"`
	Employees int            `json:"employees"`
	Mean      CounterAverage `json:"mean"`
	Median    CounterAverage `json:"median"`
}

// CounterAverage is a per-counter statistic across employees.
type CounterAverage struct {
	Commits   float64 `json:"commits"`
	PRsOpened float64 `json:"prs_opened"`
	PRsMerged float64 `json:"prs_merged"`
	Reviews   float64 `json:"reviews"`
}

// Series is a chart-ready time series. All slices have the length of Labels.
type Series struct {
	Labels    []string `json:"labels"`
	Commits   []int    `json:"commits"`
	PRsOpened []int    `json:"prs_opened"`
	PRsMerged []int    `json:"prs_merged"`
	Reviews   []int    `json:"reviews"`
}

// NewSeries returns an empty series with non-nil slices so it encodes as arrays.
func NewSeries() Series {
	return Series{
		Labels:    []string{},
		Commits:   []int{},
		PRsOpened: []int{},
		PRsMerged: []int{},
		Reviews:   []int{},
	}
}

// Append adds one labelled point.
func (s *Series) Append(label string, c Counters) {
	s.Labels = append(s.Labels, label)
	s.Commits = append(s.Commits, c.Commits)
	s.PRsOpened = append(s.PRsOpened, c.PRsOpened)
	s.PRsMerged = append(s.PRsMerged, c.PRsMerged)
	s.Reviews = append(s.Reviews, c.Reviews)
}

// At returns the counters of point i.
func (s Series) At(i int) Counters {
	return Counters{
		Commits:   s.Commits[i],
		PRsOpened: s.PRsOpened[i],
		PRsMerged: s.PRsMerged[i],
		Reviews:   s.Reviews[i],
	}
}

// Deltas returns the change between adjacent points, labelled with the later point.
func (s Series) Deltas() Series {
	out := NewSeries()
	for i := 1; i < len(s.Labels); i++ {
		out.Append(s.Labels[i], s.At(i).Sub(s.At(i-1)))
	}
	return out
}

// EmployeeDetail is the dashboard of a single employee.
type EmployeeDetail struct {
	Employee Employee `json:"employee"`
	Latest   *Metric  `json:"latest"`
	Chart    Series   `json:"chart"`
	Deltas   Series   `json:"deltas"`
}

// TeamDashboard is the dashboard of the whole team.
type TeamDashboard struct {
	Summary   Summary    `json:"summary"`
	Chart     Series     `json:"chart"`
	Employees []Employee `json:"employees"`
}
