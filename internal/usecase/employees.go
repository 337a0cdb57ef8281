package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/naka-gawa/team-metrics/internal/domain"
)

// EmployeeInput is the editable part of an employee.
type EmployeeInput struct {
	Name           string
	GitHubUsername string
	Active         bool
}

// EmployeeService manages the team roster.
type EmployeeService struct {
	repo   domain.EmployeeRepository
	genID  *snowflake.Node
	logger *zap.Logger
	now    func() time.Time
}

func NewEmployeeService(repo domain.EmployeeRepository, genID *snowflake.Node, logger *zap.Logger) *EmployeeService {
	return &EmployeeService{
		repo:   repo,
		genID:  genID,
		logger: logger.Named("employees"),
		now:    time.Now,
	}
}

// Register adds an employee. The GitHub username must not be taken.
func (s *EmployeeService) Register(ctx context.Context, in EmployeeInput) (domain.Employee, error) {
	in, err := normalize(in)
	if err != nil {
		return domain.Employee{}, err
	}
	if err := s.ensureUsernameFree(ctx, in.GitHubUsername); err != nil {
		return domain.Employee{}, err
	}

	now := s.now().UTC()
	employee := domain.Employee{
		ID:             s.genID.Generate(),
		Name:           in.Name,
		GitHubUsername: in.GitHubUsername,
		Active:         in.Active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, &employee); err != nil {
		return domain.Employee{}, err
	}
	s.logger.Info("employee registered",
		zap.String("id", employee.ID.String()), zap.String("github_username", employee.GitHubUsername))
	return employee, nil
}

// Edit replaces the editable fields of an employee.
func (s *EmployeeService) Edit(ctx context.Context, id snowflake.ID, in EmployeeInput) (domain.Employee, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Employee{}, err
	}
	in, err = normalize(in)
	if err != nil {
		return domain.Employee{}, err
	}
	if in.GitHubUsername != employee.GitHubUsername {
		if err := s.ensureUsernameFree(ctx, in.GitHubUsername); err != nil {
			return domain.Employee{}, err
		}
	}

	employee.Name = in.Name
	employee.GitHubUsername = in.GitHubUsername
	employee.Active = in.Active
	employee.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, employee); err != nil {
		return domain.Employee{}, err
	}
	s.logger.Info("employee updated", zap.String("id", employee.ID.String()))
	return *employee, nil
}

// Delete removes an employee together with all of their snapshots.
func (s *EmployeeService) Delete(ctx context.Context, id snowflake.ID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("employee deleted", zap.String("id", id.String()))
	return nil
}

func (s *EmployeeService) Get(ctx context.Context, id snowflake.ID) (domain.Employee, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Employee{}, err
	}
	return *employee, nil
}

func (s *EmployeeService) List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	return s.repo.List(ctx, filter)
}

func (s *EmployeeService) ensureUsernameFree(ctx context.Context, username string) error {
	_, err := s.repo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return domain.ErrDuplicateUsername
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return err
	}
}

func normalize(in EmployeeInput) (EmployeeInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.GitHubUsername = strings.TrimSpace(in.GitHubUsername)
	if in.Name == "" || in.GitHubUsername == "" {
		return in, domain.ErrInvalidEmployee
	}
	return in, nil
}
