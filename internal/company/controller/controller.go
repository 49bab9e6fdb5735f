// Package controller implements the core business logic (service layer)
// for managing Company entities, orchestrating repository operations
// and sending relevant events.
package controller

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/gartstein/companies/internal/company/db"
	e "github.com/gartstein/companies/internal/company/errors"
	"github.com/gartstein/companies/internal/company/events"
	"github.com/gartstein/companies/internal/company/models"
	"github.com/gartstein/companies/internal/company/query"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventProducer interface {
	Produce(eventType events.EventType, company *models.Company)
}

// Repository defines the storage interface for Company objects.
type Repository interface {
	db.Store
	WithTransaction(ctx context.Context, fn func(tx db.Store) error) error
	Ping(ctx context.Context) error
	Close() error
}

// CompanyService provides methods to manage companies via repository
// operations and event production.
type CompanyService struct {
	repo     Repository
	producer EventProducer
	logger   *zap.Logger
	validate *validator.Validate
	builder  query.Builder
	now      func() time.Time
}

// Option customizes a CompanyService.
type Option func(*CompanyService)

// WithPageSizes overrides the default and maximum list page sizes.
func WithPageSizes(defaultSize, maxSize int) Option {
	return func(s *CompanyService) {
		s.builder = query.NewBuilder(defaultSize, maxSize)
	}
}

// WithClock replaces the clock used for the founded-year check.
func WithClock(now func() time.Time) Option {
	return func(s *CompanyService) {
		s.now = now
	}
}

// NewCompanyService constructs a CompanyService with a repository,
// an event producer, and a logger.
func NewCompanyService(repo Repository, producer EventProducer, logger *zap.Logger, opts ...Option) *CompanyService {
	s := &CompanyService{
		repo:     repo,
		producer: producer,
		logger:   logger.Named("company_service"),
		builder:  query.NewBuilder(query.DefaultPageSize, query.MaxPageSize),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.validate = newValidator(func() int { return s.now().Year() })
	return s
}

func newValidator(currentYear func() int) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(currentYear())
	})
	return v
}

// checkInput trims the text fields of in and validates the result.
func (s *CompanyService) checkInput(in *models.CompanyInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Industry = strings.TrimSpace(in.Industry)
	in.Location = strings.TrimSpace(in.Location)
	in.Size = strings.TrimSpace(in.Size)
	in.Description = strings.TrimSpace(in.Description)
	in.Website = strings.TrimSpace(in.Website)

	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %s", e.ErrInvalidInput, formatValidationErrors(err))
	}
	return nil
}

func formatValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		switch fe.Tag() {
		case "required":
			messages = append(messages, fe.Field()+" is required")
		case "min":
			messages = append(messages, fe.Field()+" must be at least "+fe.Param())
		case "notfuture":
			messages = append(messages, fe.Field()+" cannot be in the future")
		default:
			messages = append(messages, fe.Field()+" is invalid")
		}
	}
	return strings.Join(messages, "; ")
}

// ListCompanies returns the page of companies selected by spec, counting
// the full match set in the same read transaction.
func (s *CompanyService) ListCompanies(ctx context.Context, spec query.Spec) (*models.CompanyPage, error) {
	q := s.builder.Build(spec)

	var (
		total int64
		items []models.Company
	)
	err := s.repo.WithTransaction(ctx, func(tx db.Store) error {
		var err error
		if total, err = tx.CountCompanies(ctx, q); err != nil {
			return err
		}
		items, err = tx.FindCompanies(ctx, q)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	if items == nil {
		items = []models.Company{}
	}

	return &models.CompanyPage{
		Items:      items,
		TotalCount: int(total),
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: query.TotalPages(int(total), q.PageSize),
	}, nil
}

// CreateCompany adds a new Company after validating input data,
// ensures uniqueness by checking the name, and triggers an event.
func (s *CompanyService) CreateCompany(ctx context.Context, input models.CompanyInput) (*models.Company, error) {
	if err := s.checkInput(&input); err != nil {
		return nil, err
	}

	company := &models.Company{}
	company.Apply(input)

	err := s.repo.WithTransaction(ctx, func(tx db.Store) error {
		exists, err := tx.CompanyExistsByName(ctx, input.Name)
		if err != nil {
			return fmt.Errorf("failed to check name existence: %w", err)
		}
		if exists {
			return e.ErrDuplicateName
		}
		if err := tx.CreateCompany(ctx, company); err != nil {
			return fmt.Errorf("failed to create company: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Company created", zap.String("company_id", company.ID.String()))
	s.producer.Produce(events.CompanyCreated, company)
	return company, nil
}

// GetCompany retrieves a Company by ID, returning an error if not found.
func (s *CompanyService) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	company, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}

// UpdateCompany replaces the mutable fields of the specified Company,
// then fetches the updated version for returning and event production.
func (s *CompanyService) UpdateCompany(ctx context.Context, update *models.CompanyUpdate) (*models.Company, error) {
	if update.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: invalid company ID", e.ErrInvalidInput)
	}
	if err := s.checkInput(&update.Input); err != nil {
		return nil, err
	}

	var updated *models.Company
	err := s.repo.WithTransaction(ctx, func(tx db.Store) error {
		if err := tx.UpdateCompany(ctx, update); err != nil {
			return err
		}
		var err error
		updated, err = tx.GetCompany(ctx, update.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("Failed to update company",
			zap.Error(err),
			zap.String("company_id", update.ID.String()),
		)
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	s.producer.Produce(events.CompanyUpdated, updated)
	return updated, nil
}

// DeleteCompany removes a Company by ID, fires a deletion event and returns
// the removed record.
func (s *CompanyService) DeleteCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company *models.Company
	err := s.repo.WithTransaction(ctx, func(tx db.Store) error {
		var err error
		if company, err = tx.GetCompany(ctx, id); err != nil {
			return err
		}
		return tx.DeleteCompany(ctx, id)
	})
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to delete company: %w", err)
	}

	s.logger.Info("Company deleted", zap.String("company_id", id.String()))
	s.producer.Produce(events.CompanyDeleted, company)
	return company, nil
}

// Ping reports whether the store is reachable.
func (s *CompanyService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// Options returns the suggested categorical values for clients.
func (s *CompanyService) Options(_ context.Context) models.Options {
	return models.DefaultOptions()
}
