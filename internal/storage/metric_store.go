package storage

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/naka-gawa/team-metrics/internal/domain"
)

// MetricStore implements domain.MetricRepository. Snapshots are insert-only.
type MetricStore struct {
	db *gorm.DB
}

func NewMetricStore(db *gorm.DB) *MetricStore {
	return &MetricStore{db: db}
}

func (s *MetricStore) Insert(ctx context.Context, metric *domain.Metric) error {
	if err := s.db.WithContext(ctx).Create(metric).Error; err != nil {
		return fmt.Errorf("failed to insert metric: %w", err)
	}
	return nil
}

// ListByEmployee returns the employee's snapshots, oldest first.
func (s *MetricStore) ListByEmployee(ctx context.Context, employeeID snowflake.ID) ([]domain.Metric, error) {
	metrics := []domain.Metric{}
	err := s.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("timestamp asc, id asc").
		Find(&metrics).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list metrics: %w", err)
	}
	return metrics, nil
}

// Latest returns the newest snapshot of the employee, or nil if there is none.
func (s *MetricStore) Latest(ctx context.Context, employeeID snowflake.ID) (*domain.Metric, error) {
	var metrics []domain.Metric
	err := s.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("timestamp desc, id desc").
		Limit(1).
		Find(&metrics).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load latest metric: %w", err)
	}
	if len(metrics) == 0 {
		return nil, nil
	}
	return &metrics[0], nil
}

// ListAll returns every snapshot, oldest first.
func (s *MetricStore) ListAll(ctx context.Context) ([]domain.Metric, error) {
	metrics := []domain.Metric{}
	if err := s.db.WithContext(ctx).Order("timestamp asc, id asc").Find(&metrics).Error; err != nil {
		return nil, fmt.Errorf("failed to list metrics: %w", err)
	}
	return metrics, nil
}

var _ domain.MetricRepository = (*MetricStore)(nil)

