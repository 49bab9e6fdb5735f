// Package db implements the company Record Store on GORM. Postgres is the
// production dialect; SQLite serves local runs and tests.
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	dbmodels "github.com/gartstein/companies/internal/company/db/models"
	e "github.com/gartstein/companies/internal/company/errors"
	"github.com/gartstein/companies/internal/company/models"
	"github.com/gartstein/companies/internal/company/query"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Store is the set of record operations available on a Repository and
// inside one of its transactions.
type Store interface {
	CreateCompany(ctx context.Context, company *models.Company) error
	GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error)
	UpdateCompany(ctx context.Context, update *models.CompanyUpdate) error
	DeleteCompany(ctx context.Context, id uuid.UUID) error
	CompanyExistsByName(ctx context.Context, name string) (bool, error)
	FindCompanies(ctx context.Context, q query.Query) ([]models.Company, error)
	CountCompanies(ctx context.Context, q query.Query) (int64, error)
}

type Repository struct {
	db *gorm.DB
}

var _ Store = (*Repository)(nil)

type Config struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	// Path is the SQLite database file, or ":memory:".
	Path string
}

// Dialector picks the GORM dialect for cfg.
func (cfg *Config) Dialector() (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
		return postgres.Open(dsn), nil
	case DriverSQLite:
		path := cfg.Path
		if path == "" {
			path = ":memory:"
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func NewRepository(cfg *Config) (*Repository, error) {
	dialector, err := cfg.Dialector()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return New(db)
}

// New wraps an open GORM handle and migrates the schema.
func New(db *gorm.DB) (*Repository, error) {
	if db.Dialector.Name() == DriverSQLite {
		// Every connection to an in-memory SQLite database sees its own
		// empty database, so the pool is pinned to a single connection.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&dbmodels.Company{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := backfillFolded(db); err != nil {
		return nil, fmt.Errorf("failed to fill folded columns: %w", err)
	}

	return &Repository{db: db}, nil
}

// backfillFolded fills the folded columns of rows written before they
// existed. UpdateColumns leaves updated_at alone.
func backfillFolded(db *gorm.DB) error {
	for {
		var rows []dbmodels.Company
		err := db.Unscoped().
			Where("name_lower = ? AND name <> ?", "", "").
			Limit(500).
			Find(&rows).Error
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		for i := range rows {
			err := db.Unscoped().Model(&dbmodels.Company{}).
				Where("id = ?", rows[i].ID).
				UpdateColumns(rows[i].Folded()).Error
			if err != nil {
				return err
			}
		}
	}
}

func (r *Repository) CreateCompany(ctx context.Context, company *models.Company) error {
	row := dbmodels.FromDomain(company)
	result := r.db.WithContext(ctx).Create(row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return e.ErrDuplicateName
		}
		return result.Error
	}
	*company = *row.ToDomain()
	return nil
}

func (r *Repository) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var row dbmodels.Company
	result := r.db.WithContext(ctx).First(&row, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return row.ToDomain(), nil
}

// UpdateCompany replaces every mutable column of the company, including
// clearing optional ones.
func (r *Repository) UpdateCompany(ctx context.Context, update *models.CompanyUpdate) error {
	in := update.Input
	values := map[string]interface{}{
		"name":        in.Name,
		"industry":    in.Industry,
		"location":    in.Location,
		"size":        in.Size,
		"description": in.Description,
		"founded":     in.Founded,
		"website":     in.Website,
	}
	row := dbmodels.Company{Name: in.Name, Industry: in.Industry, Location: in.Location, Size: in.Size}
	for col, v := range row.Folded() {
		values[col] = v
	}

	// updated_at is left to GORM so it follows the handle's NowFunc.
	result := r.db.WithContext(ctx).Model(&dbmodels.Company{}).
		Where("id = ?", update.ID).
		Updates(values)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&dbmodels.Company{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

// CompanyExistsByName reports whether a live company has name, ignoring case.
func (r *Repository) CompanyExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&dbmodels.Company{}).
		Where("name_lower = ?", query.Fold(strings.TrimSpace(name))).
		Limit(1).
		Count(&count)
	return count > 0, result.Error
}

// FindCompanies returns the page of companies q selects, in q's order.
func (r *Repository) FindCompanies(ctx context.Context, q query.Query) ([]models.Company, error) {
	var rows []dbmodels.Company
	result := r.db.WithContext(ctx).
		Scopes(filterScope(q), orderScope(q), pageScope(q)).
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	companies := make([]models.Company, 0, len(rows))
	for i := range rows {
		companies = append(companies, *rows[i].ToDomain())
	}
	return companies, nil
}

// CountCompanies counts every company matching q's conditions, ignoring
// pagination.
func (r *Repository) CountCompanies(ctx context.Context, q query.Query) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&dbmodels.Company{}).
		Scopes(filterScope(q)).
		Count(&count)
	return count, result.Error
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(tx Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func (r *Repository) Exec(ctx context.Context, stmt string, params ...interface{}) error {
	result := r.db.WithContext(ctx).Exec(stmt, params...)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
