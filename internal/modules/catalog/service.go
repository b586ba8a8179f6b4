package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"deptbook/internal/domain"
	"deptbook/internal/pkg/validator"
	"deptbook/internal/repository"

	"github.com/gosimple/slug"
)

var (
	ErrNotFound  = errors.New("resource not found")
	ErrDuplicate = errors.New("resource already exists")
	ErrForbidden = errors.New("forbidden")
)

// ValidationError carries the failing fields mapped to the violated rule.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid resource: %v", e.Fields)
}

type ResourceStore interface {
	GetByID(ctx context.Context, id string) (*domain.Resource, error)
	List(ctx context.Context) ([]domain.Resource, error)
	Create(ctx context.Context, res *domain.Resource) error
	Update(ctx context.Context, res *domain.Resource) error
}

type Service struct {
	resources ResourceStore
}

func NewService(resources ResourceStore) *Service {
	return &Service{resources: resources}
}

func (s *Service) List(ctx context.Context) ([]domain.Resource, error) {
	return s.resources.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Resource, error) {
	res, err := s.resources.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return res, nil
}

func (s *Service) Create(ctx context.Context, actor domain.Actor, req CreateResourceRequest) (*domain.Resource, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if fields := validator.Validate(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = slug.Make(req.Name)
	}
	if !slug.IsSlug(id) {
		return nil, &ValidationError{Fields: map[string]string{"ID": "slug"}}
	}

	res := &domain.Resource{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Type:        domain.ResourceType(req.Type),
		Description: req.Description,
		Capacity:    req.Capacity,
	}
	if err := s.resources.Create(ctx, res); err != nil {
		return nil, translate(err)
	}
	return res, nil
}

func (s *Service) Update(ctx context.Context, actor domain.Actor, id string, req UpdateResourceRequest) (*domain.Resource, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if fields := validator.Validate(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	res, err := s.resources.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	req.apply(res)
	res.Name = strings.TrimSpace(res.Name)

	if err := s.resources.Update(ctx, res); err != nil {
		return nil, translate(err)
	}
	return res, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}
