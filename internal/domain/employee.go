// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Employee is a team member whose GitHub activity is tracked.
// Only active employees receive new snapshots.
type Employee struct {
	ID             snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name           string       `gorm:"size:128;not null" json:"name"`
	GitHubUsername string       `gorm:"column:github_username;size:128;not null;uniqueIndex" json:"github_username"`
	Active         bool         `gorm:"not null" json:"active"`
	CreatedAt      time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null" json:"updated_at"`

	Metrics []Metric `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Employee) TableName() string { return "employees" }

// EmployeeFilter narrows List results. Nil fields are ignored.
type EmployeeFilter struct {
	Active   *bool
	Username string
}

// EmployeeRepository persists employees.
// Delete removes the employee's snapshots in the same transaction.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *Employee) error
	Update(ctx context.Context, employee *Employee) error
	Delete(ctx context.Context, id snowflake.ID) error
	FindByID(ctx context.Context, id snowflake.ID) (*Employee, error)
	FindByUsername(ctx context.Context, username string) (*Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
}

// ParseID parses the decimal form of an employee or metric ID.
func ParseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
