package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/naka-gawa/team-metrics/internal/domain"
)

// EmployeeStore implements domain.EmployeeRepository.
type EmployeeStore struct {
	db *gorm.DB
}

func NewEmployeeStore(db *gorm.DB) *EmployeeStore {
	return &EmployeeStore{db: db}
}

func (s *EmployeeStore) Create(ctx context.Context, employee *domain.Employee) error {
	if err := s.db.WithContext(ctx).Create(employee).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return domain.ErrDuplicateUsername
		}
		return fmt.Errorf("failed to insert employee: %w", err)
	}
	return nil
}

func (s *EmployeeStore) Update(ctx context.Context, employee *domain.Employee) error {
	// A map is used so that Active=false is written.
	res := s.db.WithContext(ctx).
		Model(&domain.Employee{}).
		Where("id = ?", employee.ID).
		Updates(map[string]interface{}{
			"name":            employee.Name,
			"github_username": employee.GitHubUsername,
			"active":          employee.Active,
			"updated_at":      employee.UpdatedAt,
		})
	if res.Error != nil {
		if isDuplicateKeyErr(res.Error) {
			return domain.ErrDuplicateUsername
		}
		return fmt.Errorf("failed to update employee: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the employee and every snapshot it owns in one transaction.
func (s *EmployeeStore) Delete(ctx context.Context, id snowflake.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("employee_id = ?", id).Delete(&domain.Metric{}).Error; err != nil {
			return fmt.Errorf("failed to delete metrics: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&domain.Employee{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete employee: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (s *EmployeeStore) FindByID(ctx context.Context, id snowflake.ID) (*domain.Employee, error) {
	var employee domain.Employee
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&employee).Error
	return found(&employee, err)
}

func (s *EmployeeStore) FindByUsername(ctx context.Context, username string) (*domain.Employee, error) {
	var employee domain.Employee
	err := s.db.WithContext(ctx).Where("github_username = ?", username).First(&employee).Error
	return found(&employee, err)
}

// List returns employees ordered by name.
func (s *EmployeeStore) List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	stmt := s.db.WithContext(ctx).Model(&domain.Employee{})
	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}
	if filter.Username != "" {
		stmt = stmt.Where("github_username = ?", filter.Username)
	}
	employees := []domain.Employee{}
	if err := stmt.Order("name asc, id asc").Find(&employees).Error; err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, nil
}

func found(employee *domain.Employee, err error) (*domain.Employee, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load employee: %w", err)
	}
	return employee, nil
}

var _ domain.EmployeeRepository = (*EmployeeStore)(nil)
