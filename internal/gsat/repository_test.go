package gsat

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gsatlink/pos-backend/pkg/db/models"
	"github.com/gsatlink/pos-backend/pkg/pagination"
)

func setupGSATTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	customers := `
CREATE TABLE IF NOT EXISTS gsat_customers (
  id TEXT PRIMARY KEY,
  account_no TEXT NOT NULL UNIQUE,
  box_serial TEXT,
  card_serial TEXT,
  full_name TEXT NOT NULL,
  phone TEXT,
  address TEXT,
  plan TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	activations := `
CREATE TABLE IF NOT EXISTS activation_records (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  reference TEXT,
  activated_at DATETIME NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(customers).Error)
	require.NoError(t, db.Exec(activations).Error)
	return db
}

func newCustomer(t *testing.T, db *gorm.DB, accountNo, name string) *models.GSATCustomer {
	t.Helper()
	customer := &models.GSATCustomer{
		ID:        uuid.New(),
		AccountNo: accountNo,
		FullName:  name,
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func TestRepositoryCustomerRoundTrip(t *testing.T) {
	db := setupGSATTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created := newCustomer(t, db, "ACC-1001", "Elena Reyes")

	loaded, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACC-1001", loaded.AccountNo)
	assert.Equal(t, "Elena Reyes", loaded.FullName)

	loaded.FullName = "Elena R. Reyes"
	require.NoError(t, repo.Update(ctx, loaded))

	again, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Elena R. Reyes", again.FullName)
}

func TestRepositoryAccountNoUnique(t *testing.T) {
	db := setupGSATTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	newCustomer(t, db, "ACC-1001", "Elena Reyes")

	dup := &models.GSATCustomer{ID: uuid.New(), AccountNo: "ACC-1001", FullName: "Jose Santos"}
	err := repo.Create(ctx, dup)
	require.Error(t, err)
}

func TestRepositoryActivationHistory(t *testing.T) {
	db := setupGSATTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	customer := newCustomer(t, db, "ACC-1001", "Elena Reyes")

	older := &models.ActivationRecord{
		ID:          uuid.New(),
		CustomerID:  customer.ID,
		Kind:        KindSubscription,
		Amount:      decimal.NewFromInt(599),
		ActivatedAt: time.Now().Add(-48 * time.Hour),
	}
	newer := &models.ActivationRecord{
		ID:          uuid.New(),
		CustomerID:  customer.ID,
		Kind:        KindAirtimeLoad,
		Amount:      decimal.NewFromInt(300),
		ActivatedAt: time.Now(),
	}
	require.NoError(t, repo.CreateActivation(ctx, older))
	require.NoError(t, repo.CreateActivation(ctx, newer))

	history, err := repo.ListActivations(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, KindAirtimeLoad, history[0].Kind)
	assert.Equal(t, KindSubscription, history[1].Kind)

	require.NoError(t, repo.DeleteActivation(ctx, older.ID))
	history, err = repo.ListActivations(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)

	assert.ErrorIs(t, repo.DeleteActivation(ctx, uuid.New()), gorm.ErrRecordNotFound)
}

func TestRepositoryDeleteMissing(t *testing.T) {
	db := setupGSATTestDB(t)
	repo := NewRepository(db)

	err := repo.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListPage(t *testing.T) {
	db := setupGSATTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second).Add(-time.Hour)
	for i, acc := range []string{"ACC-1", "ACC-2", "ACC-3"} {
		customer := &models.GSATCustomer{
			ID:        uuid.New(),
			AccountNo: acc,
			FullName:  "Customer " + acc,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(customer).Error)
	}

	// The buffer row only signals the next page; the caller sees the limit.
	first, next, err := repo.ListPage(ctx, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotNil(t, next)
	assert.Equal(t, "ACC-1", first[0].AccountNo)
	assert.Equal(t, "ACC-2", first[1].AccountNo)
	assert.Equal(t, first[1].ID, next.ID)

	second, last, err := repo.ListPage(ctx, pagination.Params{
		Limit:  2,
		Cursor: pagination.EncodeCursor(*next),
	})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "ACC-3", second[0].AccountNo)
	assert.Nil(t, last)
}
