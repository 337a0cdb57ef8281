package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Counters holds the four cumulative contribution counts tracked per employee.
type Counters struct {
	Commits   int `gorm:"not null;default:0" json:"commits"`
	PRsOpened int `gorm:"column:prs_opened;not null;default:0" json:"prs_opened"`
	PRsMerged int `gorm:"column:prs_merged;not null;default:0" json:"prs_merged"`
	Reviews   int `gorm:"not null;default:0" json:"reviews"`
}

// Add returns the element-wise sum of c and o.
func (c Counters) Add(o Counters) Counters {
	return Counters{
		Commits:   c.Commits + o.Commits,
		PRsOpened: c.PRsOpened + o.PRsOpened,
		PRsMerged: c.PRsMerged + o.PRsMerged,
		Reviews:   c.Reviews + o.Reviews,
	}
}

// Sub returns c minus o, element-wise.
func (c Counters) Sub(o Counters) Counters {
	return Counters{
		Commits:   c.Commits - o.Commits,
		PRsOpened: c.PRsOpened - o.PRsOpened,
		PRsMerged: c.PRsMerged - o.PRsMerged,
		Reviews:   c.Reviews - o.Reviews,
	}
}

// Metric is an immutable snapshot of an employee's cumulative counters.
type Metric struct {
	ID         snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	EmployeeID snowflake.ID `gorm:"not null;index" json:"employee_id"`
	Timestamp  time.Time    `gorm:"not null;index" json:"timestamp"`
	Counters   `gorm:"embedded"`
}

func (Metric) TableName() string { return "metrics" }

// MetricRepository persists snapshots. There is no update: snapshots are insert-only.
type MetricRepository interface {
	Insert(ctx context.Context, metric *Metric) error
	ListByEmployee(ctx context.Context, employeeID snowflake.ID) ([]Metric, error)
	Latest(ctx context.Context, employeeID snowflake.ID) (*Metric, error)
	ListAll(ctx context.Context) ([]Metric, error)
}
