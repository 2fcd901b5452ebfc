//go:build integration

package main_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/accrual"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/application"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/events"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB      *gorm.DB
	Cleanup func()
}

// storeStack holds the wired-up store services under test.
type storeStack struct {
	Cart     *application.CartService
	Catalog  *application.CatalogService
	Orders   *application.OrderService
	Bonus    *application.BonusService
	Users    *repository.GormUserRepository
	Progress *repository.GormProgressRepository
}

// setupPostgres starts a PostgreSQL testcontainer and returns a connected,
// migrated GORM DB.
func setupPostgres(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_store",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_store sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(
		&repository.UserModel{},
		&repository.CategoryModel{},
		&repository.ProductModel{},
		&repository.CartItemModel{},
		&repository.OrderModel{},
		&repository.OrderLineModel{},
		&repository.BonusProgramModel{},
		&repository.BonusPrizeModel{},
		&repository.BonusLevelModel{},
		&repository.BonusProgressModel{},
		&repository.BonusHistoryModel{},
		&repository.BonusRedemptionModel{},
	))

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{DB: db, Cleanup: cleanup}
}

// setupStoreStack wires the full service stack against the test database.
func setupStoreStack(t *testing.T, db *gorm.DB) *storeStack {
	t.Helper()
	logger := zap.NewNop()

	userRepo := repository.NewGormUserRepository(db)
	categoryRepo := repository.NewGormCategoryRepository(db)
	productRepo := repository.NewGormProductRepository(db)
	cartRepo := repository.NewGormCartRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)
	programRepo := repository.NewGormProgramRepository(db)
	progressRepo := repository.NewGormProgressRepository(db)
	historyRepo := repository.NewGormHistoryRepository(db)

	engine := accrual.NewEngine(programRepo, progressRepo, logger)
	publisher := events.NoopPublisher{}

	return &storeStack{
		Cart:     application.NewCartService(cartRepo, productRepo, logger),
		Catalog:  application.NewCatalogService(productRepo, categoryRepo, logger),
		Orders:   application.NewOrderService(orderRepo, cartRepo, productRepo, engine, publisher, logger),
		Bonus:    application.NewBonusService(programRepo, progressRepo, historyRepo, userRepo, publisher, logger),
		Users:    userRepo,
		Progress: progressRepo,
	}
}
