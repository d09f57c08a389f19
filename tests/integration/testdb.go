// Package integration runs repository and migration tests against a real
// PostgreSQL started through testcontainers.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/identity"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/migration"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/persistence"
)

var (
	sharedContainer    testcontainers.Container
	sharedContainerMu  sync.Mutex
	sharedContainerDSN string
)

// TestDB is a migrated database for one test
type TestDB struct {
	DB        *gorm.DB
	SqlDB     *sql.DB
	Container testcontainers.Container
	DSN       string
	t         *testing.T
}

func startContainer(t *testing.T, database string) (testcontainers.Container, string) {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase(database),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("mercato"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")
	return container, dsn
}

// NewTestDB starts a dedicated container, for tests that change the schema
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	container, dsn := startContainer(t, "mercato_test")
	db, sqlDB := connectToDatabase(t, dsn)
	runMigrations(t, sqlDB)

	testDB := &TestDB{
		DB:        db,
		SqlDB:     sqlDB,
		Container: container,
		DSN:       dsn,
		t:         t,
	}
	t.Cleanup(testDB.Close)
	return testDB
}

// NewSharedTestDB returns a connection to the package-wide container. Tests
// sharing it isolate themselves by seeding their own tenant.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()

	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer == nil {
		container, dsn := startContainer(t, "mercato_shared_test")
		sharedContainer = container
		sharedContainerDSN = dsn

		_, sqlDB := connectToDatabase(t, dsn)
		runMigrations(t, sqlDB)
		_ = sqlDB.Close()
	}

	db, sqlDB := connectToDatabase(t, sharedContainerDSN)
	testDB := &TestDB{
		DB:        db,
		SqlDB:     sqlDB,
		Container: sharedContainer,
		DSN:       sharedContainerDSN,
		t:         t,
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return testDB
}

// Close closes the connection and terminates a dedicated container
func (tdb *TestDB) Close() {
	if tdb.SqlDB != nil {
		_ = tdb.SqlDB.Close()
	}
	if tdb.Container != nil && tdb.Container != sharedContainer {
		if err := tdb.Container.Terminate(context.Background()); err != nil {
			tdb.t.Logf("Warning: Failed to terminate container: %v", err)
		}
	}
}

// CleanupSharedContainer terminates the shared container; call it from TestMain
func CleanupSharedContainer() {
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = sharedContainer.Terminate(ctx)
		sharedContainer = nil
		sharedContainerDSN = ""
	}
}

func connectToDatabase(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), gormConfig)
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "Failed to get underlying SQL DB")
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, sqlDB
}

// runMigrations applies the embedded schema
func runMigrations(t *testing.T, sqlDB *sql.DB) {
	t.Helper()

	m, err := migration.New(sqlDB)
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, m.Up(), "Failed to run migrations")
}

// Marketplace is the minimal graph most repository tests need: a tenant, a
// buyer, one seller with its owner and a category
type Marketplace struct {
	Tenant   *identity.Tenant
	Buyer    *identity.User
	Seller   *catalog.Seller
	Category *catalog.Category
}

// SeedMarketplace inserts a fresh tenant with a buyer, a seller and a category
func (tdb *TestDB) SeedMarketplace() *Marketplace {
	tdb.t.Helper()
	ctx := context.Background()
	suffix := uuid.NewString()[:8]

	tn, err := identity.NewTenant("T_"+suffix, "Tenant "+suffix, valueobject.EUR, "PL")
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, persistence.NewGormTenantRepository(tdb.DB).Save(ctx, tn))

	buyer := tdb.CreateUser(tn.ID, shared.RoleBuyer)
	seller := tdb.CreateSeller(tn.ID, "Store "+suffix)

	category, err := catalog.NewCategory(tn.ID, "Kitchen "+suffix, nil)
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, persistence.NewGormCategoryRepository(tdb.DB).Save(ctx, category))

	return &Marketplace{Tenant: tn, Buyer: buyer, Seller: seller, Category: category}
}

// CreateUser inserts an active user of role
func (tdb *TestDB) CreateUser(tenantID uuid.UUID, role shared.Role) *identity.User {
	tdb.t.Helper()

	email := fmt.Sprintf("%s@example.com", uuid.NewString()[:12])
	user, err := identity.NewUser(tenantID, email, "Test "+string(role), "s3cret-pass", role)
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, persistence.NewGormUserRepository(tdb.DB).Save(context.Background(), user))
	return user
}

// CreateSeller inserts a business seller owned by a new seller user
func (tdb *TestDB) CreateSeller(tenantID uuid.UUID, storeName string) *catalog.Seller {
	tdb.t.Helper()

	owner := tdb.CreateUser(tenantID, shared.RoleSeller)
	seller, err := catalog.NewSeller(tenantID, owner.ID, storeName, catalog.SellerTypeBusiness, "PL", owner.Email)
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, persistence.NewGormSellerRepository(tdb.DB).Save(context.Background(), seller))
	return seller
}

// CreateProduct inserts a product of the seller in the marketplace category
func (tdb *TestDB) CreateProduct(m *Marketplace, sellerID uuid.UUID, sku, price string, stock int) *catalog.Product {
	tdb.t.Helper()

	p, err := catalog.NewProduct(m.Tenant.ID, sellerID, m.Category.ID, sku, "Product "+sku,
		valueobject.MustMoney(price, valueobject.EUR), stock)
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, persistence.NewGormProductRepository(tdb.DB).Save(context.Background(), p))
	return p
}
