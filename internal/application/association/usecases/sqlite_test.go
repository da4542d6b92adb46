package usecases

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/devicehub/devicehub/internal/infrastructure/persistence/models"
	"github.com/devicehub/devicehub/internal/infrastructure/repository"
	"github.com/devicehub/devicehub/internal/shared/db"
	"github.com/devicehub/devicehub/internal/shared/logger"
)

func newSQLiteFixture(t *testing.T) *fixture {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, gdb.AutoMigrate(&models.DeviceModel{}, &models.ProductModel{}))

	log := logger.NewNopLogger()
	return newFixture(t,
		repository.NewDeviceRepository(gdb, log),
		repository.NewProductRepository(gdb, log),
		db.NewTransactionManager(gdb),
	)
}

func TestScenarios_SQLite(t *testing.T) {
	runScenarioSuite(t, newSQLiteFixture)
}
