package db

import (
	"context"
	"errors"
	"testing"
	"time"

	e "github.com/gartstein/companies/internal/company/errors"
	"github.com/gartstein/companies/internal/company/models"
	"github.com/gartstein/companies/internal/company/query"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupTestDB initializes an in-memory SQLite database for testing.
func SetupTestDB(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open test database")

	repo, err := New(db)
	require.NoError(t, err, "failed to migrate test database")
	t.Cleanup(func() { _ = repo.Close() })

	return repo
}

func newCompany(name string) *models.Company {
	return &models.Company{
		Name:        name,
		Industry:    "Technology",
		Location:    "Austin, TX",
		Size:        "1-10",
		Description: "A company for testing",
		Founded:     2020,
	}
}

func seed(t *testing.T, repo *Repository, companies ...*models.Company) {
	t.Helper()
	for _, c := range companies {
		require.NoError(t, repo.CreateCompany(context.Background(), c), "CreateCompany should succeed")
	}
}

// TestCreateCompany tests the creation of a company record.
func TestCreateCompany(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	company := newCompany("Test Company")

	err := repo.CreateCompany(ctx, company)
	assert.NoError(t, err, "CreateCompany should not return an error")
	assert.NotEqual(t, uuid.Nil, company.ID, "store should assign an ID")
	assert.False(t, company.CreatedAt.IsZero(), "store should set CreatedAt")

	// Verify the company was created
	retrieved, err := repo.GetCompany(ctx, company.ID)
	assert.NoError(t, err, "GetCompany should retrieve the created company")
	assert.Equal(t, company.Name, retrieved.Name, "Company name should match")
	assert.Equal(t, company.Input(), retrieved.Input(), "mutable fields should round trip")
}

// TestGetCompanyNotFound verifies error handling when the company does not exist.
func TestGetCompanyNotFound(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	_, err := repo.GetCompany(ctx, uuid.New())
	assert.ErrorIs(t, err, e.ErrNotFound, "GetCompany should return ErrNotFound for non-existent company")
}

// TestUpdateCompany checks that an update replaces every mutable field.
func TestUpdateCompany(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	company := newCompany("Old Name")
	company.Website = "https://old.example.com"
	seed(t, repo, company)

	input := models.CompanyInput{
		Name:        "New Name",
		Industry:    "Finance",
		Location:    "Boston, MA",
		Size:        "11-50",
		Description: "Updated",
		Founded:     1999,
	}
	time.Sleep(5 * time.Millisecond)

	err := repo.UpdateCompany(ctx, &models.CompanyUpdate{ID: company.ID, Input: input})
	assert.NoError(t, err, "UpdateCompany should not return an error")

	// Verify update
	updated, err := repo.GetCompany(ctx, company.ID)
	require.NoError(t, err, "GetCompany should succeed")
	assert.Equal(t, input, updated.Input(), "every mutable field should be replaced")
	assert.Empty(t, updated.Website, "website should be cleared")
	assert.True(t, updated.CreatedAt.Equal(company.CreatedAt), "CreatedAt should be preserved")
	assert.True(t, updated.UpdatedAt.After(company.UpdatedAt), "UpdatedAt should move forward")
}

// TestUpdateCompanyNotFound tests updating a non-existing company.
func TestUpdateCompanyNotFound(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	update := &models.CompanyUpdate{
		ID:    uuid.New(),
		Input: newCompany("Non-existent").Input(),
	}

	err := repo.UpdateCompany(ctx, update)
	assert.ErrorIs(t, err, e.ErrNotFound, "UpdateCompany should return ErrNotFound for missing company")
}

// TestDeleteCompany ensures companies are deleted correctly.
func TestDeleteCompany(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	company := newCompany("To Be Deleted")
	seed(t, repo, company)

	err := repo.DeleteCompany(ctx, company.ID)
	assert.NoError(t, err, "DeleteCompany should not return an error")

	// Ensure deletion
	_, err = repo.GetCompany(ctx, company.ID)
	assert.ErrorIs(t, err, e.ErrNotFound, "Deleted company should not be found")

	err = repo.DeleteCompany(ctx, company.ID)
	assert.ErrorIs(t, err, e.ErrNotFound, "Deleting twice should return ErrNotFound")
}

// TestCompanyExistsByName verifies the case-insensitive existence check.
func TestCompanyExistsByName(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	exists, err := repo.CompanyExistsByName(ctx, "Acme")
	assert.NoError(t, err, "CompanyExistsByName should not return an error")
	assert.False(t, exists, "Non-existent company should return false")

	seed(t, repo, newCompany("Acme"))

	for _, name := range []string{"Acme", "ACME", " acme "} {
		exists, err = repo.CompanyExistsByName(ctx, name)
		assert.NoError(t, err, "CompanyExistsByName should not return an error")
		assert.True(t, exists, "name %q should match case-insensitively", name)
	}
}

// TestCompanyExistsByName_NonASCII checks that case folding reaches past
// ASCII letters.
func TestCompanyExistsByName_NonASCII(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	seed(t, repo, newCompany("Éclair Labs"))

	for _, name := range []string{"Éclair Labs", "éclair labs", "ÉCLAIR LABS"} {
		exists, err := repo.CompanyExistsByName(ctx, name)
		require.NoError(t, err)
		assert.True(t, exists, "name %q should match case-insensitively", name)
	}

	exists, err := repo.CompanyExistsByName(ctx, "Eclair Labs")
	require.NoError(t, err)
	assert.False(t, exists, "accents are not folded away")
}

func TestFindCompanies(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	zenith := newCompany("Zenith")
	zenith.Industry = "Finance"
	zenith.Founded = 1999
	percent := newCompany("100% Organic")
	percent.Industry = "Healthcare"
	percent.Size = "11-50"
	percent.Founded = 2010
	bolt := newCompany("Bolt")
	bolt.Founded = 1980
	seed(t, repo, newCompany("Acme"), zenith, bolt, percent)

	names := func(cs []models.Company) []string {
		out := make([]string, 0, len(cs))
		for _, c := range cs {
			out = append(out, c.Name)
		}
		return out
	}

	tests := []struct {
		name     string
		spec     query.Spec
		expected []string
		total    int64
	}{
		{"empty spec lists all by name", query.Spec{}, []string{"100% Organic", "Acme", "Bolt", "Zenith"}, 4},
		{"name substring ignores case", query.Spec{Name: "AC"}, []string{"Acme"}, 1},
		{"like wildcards are literal", query.Spec{Name: "%"}, []string{"100% Organic"}, 1},
		{"underscore is literal", query.Spec{Name: "_"}, []string{}, 0},
		{"industry is exact", query.Spec{Industry: "finance"}, []string{"Zenith"}, 1},
		{"industry is not a substring", query.Spec{Industry: "fin"}, []string{}, 0},
		{"size exact", query.Spec{Size: "11-50"}, []string{"100% Organic"}, 1},
		{"descending founded", query.Spec{Sort: "-founded", PageSize: 2}, []string{"Acme", "100% Organic"}, 4},
		{"second page", query.Spec{Page: 2, PageSize: 3}, []string{"Zenith"}, 4},
		{"unknown sort falls back to name", query.Spec{Sort: "nope", PageSize: 1}, []string{"100% Organic"}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := query.Build(tt.spec)
			got, err := repo.FindCompanies(ctx, q)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, names(got))

			total, err := repo.CountCompanies(ctx, q)
			require.NoError(t, err)
			assert.Equal(t, tt.total, total)
		})
	}
}

// TestFindCompaniesMatchesInMemory checks that SQL and in-memory evaluation
// of the same query agree.
func TestFindCompaniesMatchesInMemory(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	for _, n := range []string{"Delta", "alpha", "Charlie", "bravo", "Echo", "Éclair", "Ökonom"} {
		seed(t, repo, newCompany(n))
	}

	all, err := repo.FindCompanies(ctx, query.Build(query.Spec{PageSize: query.MaxPageSize}))
	require.NoError(t, err)

	for _, spec := range []query.Spec{
		{},
		{Sort: "-name"},
		{Name: "a", Sort: "founded"},
		{Name: "o", Page: 2, PageSize: 1},
		{Name: "éc"},
		{Name: "ÖKO", Sort: "-name"},
	} {
		q := query.Build(spec)
		fromStore, err := repo.FindCompanies(ctx, q)
		require.NoError(t, err)
		inMemory, _ := query.Evaluate(q, all)
		assert.Equal(t, inMemory, fromStore, "spec %+v", spec)
	}
}

func TestFindCompanies_NonASCII(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	eclair := newCompany("Éclair Labs")
	eclair.Industry = "Énergie"
	eclair.Location = "Zürich"
	seed(t, repo, eclair, newCompany("Acme"))

	tests := []struct {
		name     string
		spec     query.Spec
		expected int
	}{
		{"lower-case name substring", query.Spec{Name: "écl"}, 1},
		{"upper-case name substring", query.Spec{Name: "ÉCL"}, 1},
		{"unaccented name does not match", query.Spec{Name: "ecl"}, 0},
		{"industry exact", query.Spec{Industry: "ÉNERGIE"}, 1},
		{"location exact", query.Spec{Location: "ZÜRICH"}, 1},
	}

	all, err := repo.FindCompanies(ctx, query.Build(query.Spec{}))
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := query.Build(tt.spec)
			got, err := repo.FindCompanies(ctx, q)
			require.NoError(t, err)
			assert.Len(t, got, tt.expected)

			total, err := repo.CountCompanies(ctx, q)
			require.NoError(t, err)
			assert.EqualValues(t, tt.expected, total)

			inMemory, _ := query.Evaluate(q, all)
			assert.Equal(t, inMemory, got, "store and in-memory evaluation should agree")
		})
	}
}

// TestUpdateCompanyRefoldsColumns checks that an update moves the folded
// columns along with the originals.
func TestUpdateCompanyRefoldsColumns(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	company := newCompany("Acme")
	seed(t, repo, company)

	input := company.Input()
	input.Name = "Ärzte Group"
	input.Industry = "Santé"
	require.NoError(t, repo.UpdateCompany(ctx, &models.CompanyUpdate{ID: company.ID, Input: input}))

	exists, err := repo.CompanyExistsByName(ctx, "ärzte group")
	require.NoError(t, err)
	assert.True(t, exists, "new name should be found")

	exists, err = repo.CompanyExistsByName(ctx, "acme")
	require.NoError(t, err)
	assert.False(t, exists, "old name should be gone")

	got, err := repo.FindCompanies(ctx, query.Build(query.Spec{Name: "ÄRZ", Industry: "SANTÉ"}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, company.ID, got[0].ID)
}

// TestNewBackfillsFoldedColumns covers rows written before the folded
// columns existed.
func TestNewBackfillsFoldedColumns(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	company := newCompany("Éclair Labs")
	seed(t, repo, company)
	require.NoError(t, repo.Exec(ctx,
		"UPDATE companies SET name_lower = '', industry_lower = '', location_lower = '', size_lower = ''"))

	exists, err := repo.CompanyExistsByName(ctx, "éclair labs")
	require.NoError(t, err)
	require.False(t, exists, "blanked folded columns should not match")

	reopened, err := New(repo.db)
	require.NoError(t, err)

	exists, err = reopened.CompanyExistsByName(ctx, "éclair labs")
	require.NoError(t, err)
	assert.True(t, exists, "New should refill folded columns")

	got, err := reopened.FindCompanies(ctx, query.Build(query.Spec{Industry: "technology", Size: "1-10"}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].UpdatedAt.Equal(company.UpdatedAt), "backfill should not touch UpdatedAt")
}

// TestTimestampsFollowNowFunc checks that both timestamps come from the
// handle's clock.
func TestTimestampsFollowNowFunc(t *testing.T) {
	now := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return now },
	})
	require.NoError(t, err)
	repo, err := New(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	ctx := context.Background()

	company := newCompany("Clocked")
	seed(t, repo, company)
	assert.True(t, company.CreatedAt.Equal(now), "CreatedAt should come from NowFunc")
	assert.True(t, company.UpdatedAt.Equal(now), "UpdatedAt should come from NowFunc")

	created := now
	now = now.Add(time.Hour)
	require.NoError(t, repo.UpdateCompany(ctx, &models.CompanyUpdate{ID: company.ID, Input: company.Input()}))

	got, err := repo.GetCompany(ctx, company.ID)
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(created), "CreatedAt should be preserved")
	assert.True(t, got.UpdatedAt.Equal(now), "UpdatedAt should come from NowFunc, got %v", got.UpdatedAt)
}

// TestWithTransaction ensures transactions work correctly.
func TestWithTransaction(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	err := repo.WithTransaction(ctx, func(tx Store) error {
		return tx.CreateCompany(ctx, newCompany("Transactional Company"))
	})

	assert.NoError(t, err, "WithTransaction should execute successfully")

	// Verify the transaction was committed
	exists, _ := repo.CompanyExistsByName(ctx, "Transactional Company")
	assert.True(t, exists, "Company should exist after transaction")

	rollback := errors.New("rollback")
	err = repo.WithTransaction(ctx, func(tx Store) error {
		if err := tx.CreateCompany(ctx, newCompany("Rolled Back")); err != nil {
			return err
		}
		return rollback
	})
	assert.ErrorIs(t, err, rollback)

	exists, _ = repo.CompanyExistsByName(ctx, "Rolled Back")
	assert.False(t, exists, "Company should not exist after rollback")
}

func TestPing(t *testing.T) {
	repo := SetupTestDB(t)
	assert.NoError(t, repo.Ping(context.Background()))
}

func TestConfigDialector(t *testing.T) {
	d, err := (&Config{Driver: DriverSQLite}).Dialector()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	d, err = (&Config{Host: "localhost", Port: 5432}).Dialector()
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	_, err = (&Config{Driver: "oracle"}).Dialector()
	assert.Error(t, err)
}
