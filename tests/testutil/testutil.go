package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/kingfisher-trust/kingfisher-records/config"
	"github.com/kingfisher-trust/kingfisher-records/models"
	"github.com/kingfisher-trust/kingfisher-records/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against a live charity database.
// It will fail the test immediately if GO_ENV is not set to "test".
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// MustSetTestEnvironment sets GO_ENV to test and fails if it cannot be set.
func MustSetTestEnvironment(t *testing.T) {
	t.Helper()

	if err := os.Setenv("GO_ENV", "test"); err != nil {
		t.Fatalf("Failed to set GO_ENV=test: %v", err)
	}
	if os.Getenv("GO_ENV") != "test" {
		t.Fatal("Failed to verify GO_ENV=test")
	}
}

// TestConfig returns settings for an in-memory database and a fixed session secret
func TestConfig() *config.Config {
	return &config.Config{
		DatabaseURL:   ":memory:",
		BridgeAddr:    "127.0.0.1:0",
		GoEnv:         "test",
		SessionSecret: "test-secret-0123456789abcdef0123",
		SessionIssuer: "kingfisher-records",
		SessionTTL:    time.Hour,
		ReportStorage: "local",
		LogLevel:      "error",
	}
}

// SetupTestDB opens a migrated in-memory database, installs it and cfg as the shared
// instances, and closes it when the test ends
func SetupTestDB(t *testing.T, cfg *config.Config) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db), "failed to migrate test database")

	config.SetDB(db)
	config.SetConfig(cfg)
	return db
}

// CreateStaff stores a staff login with the given level and password
func CreateStaff(t *testing.T, db *gorm.DB, staffID, level, password string) *models.Staff {
	t.Helper()

	hash, salt, err := services.HashPassword(password)
	require.NoError(t, err)

	staff := &models.Staff{
		StaffID:      staffID,
		Surname:      "Tester",
		Forename:     "Sam",
		AccessLevel:  level,
		PasswordHash: hash,
		Salt:         salt,
	}
	require.NoError(t, db.Create(staff).Error)
	return staff
}

// CreateItem stores a stock item, creating its supplier on first use
func CreateItem(t *testing.T, db *gorm.DB, itemID string, salePrice, supplierCost float64, quantity int) *models.Item {
	t.Helper()

	supplier := models.Supplier{SupplierID: "SU00000001", Name: "Wholesale Ltd", Contact: "01234567890"}
	require.NoError(t, db.Where(&models.Supplier{SupplierID: supplier.SupplierID}).FirstOrCreate(&supplier).Error)

	item := &models.Item{
		ItemID:       itemID,
		Name:         "Item " + itemID,
		SalePrice:    salePrice,
		Quantity:     quantity,
		SupplierCost: supplierCost,
		SupplierID:   supplier.SupplierID,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

// ItemQuantity reads the persisted stock of an item
func ItemQuantity(t *testing.T, db *gorm.DB, itemID string) int {
	t.Helper()

	var item models.Item
	require.NoError(t, db.Where(&models.Item{ItemID: itemID}).First(&item).Error)
	return item.Quantity
}
