package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/inkasso/backend/internal/domain/collection"
	"github.com/inkasso/backend/internal/domain/shared"
	"github.com/inkasso/backend/internal/domain/shared/valueobject"
)

// newMockCaseRepository creates a GormCaseRepository with a mocked SQL connection
func newMockCaseRepository(t *testing.T) (*GormCaseRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormCaseRepository(gormDB), mock, mockDB
}

func caseRows(caseID, tenantID, debtorID uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "tenant_id", "version", "case_number", "debtor_id",
		"principal_amount", "costs", "interest", "additional_costs", "procedure_costs",
		"total_amount", "currency", "status", "history",
	}).AddRow(
		caseID, tenantID, 1, "INK-2026-0001", debtorID,
		decimal.RequireFromString("1000.00"), decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero,
		decimal.RequireFromString("1000.00"), "EUR", "NEW", "[]",
	)
}

func TestGormCaseRepository_FindByID(t *testing.T) {
	t.Run("finds existing case", func(t *testing.T) {
		repo, mock, mockDB := newMockCaseRepository(t)
		defer mockDB.Close()

		caseID := uuid.New()
		tenantID := uuid.New()
		debtorID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "cases" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(caseID, 1).
			WillReturnRows(caseRows(caseID, tenantID, debtorID))

		c, err := repo.FindByID(context.Background(), caseID)

		assert.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, caseID, c.ID)
		assert.Equal(t, tenantID, c.TenantID)
		assert.Equal(t, "INK-2026-0001", c.CaseNumber)
		assert.Equal(t, collection.CaseStatusNew, c.Status)
		assert.Equal(t, "1000.00", c.TotalAmount.StringFixed(2))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing case", func(t *testing.T) {
		repo, mock, mockDB := newMockCaseRepository(t)
		defer mockDB.Close()

		caseID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "cases" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(caseID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		c, err := repo.FindByID(context.Background(), caseID)

		assert.Nil(t, c)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCaseRepository_FindByCaseNumber(t *testing.T) {
	repo, mock, mockDB := newMockCaseRepository(t)
	defer mockDB.Close()

	caseID := uuid.New()
	tenantID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "cases" WHERE tenant_id = \$1 AND case_number = \$2 ORDER BY .* LIMIT .*`).
		WithArgs(tenantID, "INK-2026-0001", 1).
		WillReturnRows(caseRows(caseID, tenantID, uuid.New()))

	c, err := repo.FindByCaseNumber(context.Background(), tenantID, "INK-2026-0001")

	assert.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "INK-2026-0001", c.CaseNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCaseRepository_FindAll_PortfolioScoping(t *testing.T) {
	repo, mock, mockDB := newMockCaseRepository(t)
	defer mockDB.Close()

	kreditorA := uuid.New()
	kreditorB := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "cases" WHERE tenant_id IN \(\$1,\$2\)`).
		WithArgs(kreditorA, kreditorB).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "cases" WHERE tenant_id IN \(\$1,\$2\) ORDER BY case_number ASC LIMIT .*`).
		WithArgs(kreditorA, kreditorB, 50).
		WillReturnRows(caseRows(uuid.New(), kreditorA, uuid.New()))

	cases, total, err := repo.FindAll(context.Background(), collection.CaseFilter{
		KreditorIDs: []uuid.UUID{kreditorA, kreditorB},
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, cases, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCaseRepository_SaveWithLock(t *testing.T) {
	newDomainCase := func(t *testing.T) *collection.Case {
		t.Helper()
		principal, err := valueobject.NewMoneyEURFromString("1000.00")
		require.NoError(t, err)
		c, err := collection.NewCase(uuid.New(), "INK-2026-0001", uuid.New(), principal, collection.CaseStatusNew)
		require.NoError(t, err)
		return c
	}

	t.Run("updates matching version", func(t *testing.T) {
		repo, mock, mockDB := newMockCaseRepository(t)
		defer mockDB.Close()

		c := newDomainCase(t)
		c.IncrementVersion()

		mock.ExpectExec(`UPDATE "cases" SET .* WHERE \(id = \$\d+ AND version = \$\d+\).*`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveWithLock(context.Background(), c, c.Version-1)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version surfaces as concurrency conflict", func(t *testing.T) {
		repo, mock, mockDB := newMockCaseRepository(t)
		defer mockDB.Close()

		c := newDomainCase(t)
		c.IncrementVersion()

		mock.ExpectExec(`UPDATE "cases" SET .* WHERE \(id = \$\d+ AND version = \$\d+\).*`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), c, c.Version-1)

		assert.True(t, shared.IsDomainErrorWithCode(err, shared.CodeConcurrencyConflict))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
