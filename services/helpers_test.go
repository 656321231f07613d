package services

import (
	"context"
	"testing"

	"github.com/kingfisher-trust/kingfisher-records/config"
	"github.com/kingfisher-trust/kingfisher-records/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	adminSession  = Session{StaffID: "admin", FullName: "Admin", AccessLevel: LevelDelete}
	editorSession = Session{StaffID: "ST00000002", FullName: "Eddie Editor", AccessLevel: LevelEdit}
	readerSession = Session{StaffID: "ST00000001", FullName: "Rita Reader", AccessLevel: LevelRead}
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db), "failed to migrate test database")
	return db
}

func createStaff(t *testing.T, db *gorm.DB, id, level, password string) *models.Staff {
	t.Helper()

	hash, salt, err := HashPassword(password)
	require.NoError(t, err)
	staff := &models.Staff{
		StaffID:      id,
		Surname:      "Tester",
		Forename:     "Sam",
		AccessLevel:  level,
		PasswordHash: hash,
		Salt:         salt,
	}
	require.NoError(t, db.Create(staff).Error)
	return staff
}

func createItem(t *testing.T, db *gorm.DB, id string, price, cost float64, quantity int) *models.Item {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.Supplier{}).Where(&models.Supplier{SupplierID: "SU00000001"}).Count(&count).Error)
	if count == 0 {
		require.NoError(t, db.Create(&models.Supplier{SupplierID: "SU00000001", Name: "Wholesale Ltd", Contact: "01234567890"}).Error)
	}

	item := &models.Item{
		ItemID:       id,
		Name:         "Item " + id,
		SalePrice:    price,
		Quantity:     quantity,
		SupplierCost: cost,
		SupplierID:   "SU00000001",
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func itemQuantity(t *testing.T, db *gorm.DB, id string) int {
	t.Helper()

	var item models.Item
	require.NoError(t, db.Where(map[string]interface{}{"itemID": id}).First(&item).Error)
	return item.Quantity
}

func orderLines(t *testing.T, db *gorm.DB, orderNo string) []models.OrderLine {
	t.Helper()

	lines, err := loadLines(db.WithContext(context.Background()), orderNo)
	require.NoError(t, err)
	return lines
}

func sequentialIDs(ids ...string) IDGenerator {
	next := 0
	return func(prefix string) string {
		id := ids[next%len(ids)]
		next++
		return id
	}
}
