package income

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"shwepos/internal/database/models"
)

func TestDayFormat(t *testing.T) {
	d := time.Date(2025, 3, 7, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-07", Day(d))
}

func TestDeltaArithmetic(t *testing.T) {
	a := Delta{Sales: decimal.NewFromInt(100), Profit: decimal.NewFromInt(30), Items: 2}
	b := Delta{Sales: decimal.NewFromInt(50), Profit: decimal.NewFromInt(10), Items: 1}

	sum := a.Add(b)
	assert.True(t, sum.Sales.Equal(decimal.NewFromInt(150)))
	assert.True(t, sum.Profit.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, int32(3), sum.Items)

	neg := a.Negate()
	assert.True(t, neg.Sales.Equal(decimal.NewFromInt(-100)))
	assert.True(t, a.Add(neg).IsZero())

	assert.True(t, Delta{Sales: decimal.Zero, Profit: decimal.Zero}.IsZero())
	assert.False(t, Delta{Sales: decimal.Zero, Profit: decimal.Zero, Items: 1}.IsZero())
}

func aggregatorDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Owner{}, &models.IncomeSummary{}))
	require.NoError(t, db.Exec("DELETE FROM income_summaries").Error)
	require.NoError(t, db.Exec("DELETE FROM owners").Error)
	return db
}

func TestApplyDeltaUpsert(t *testing.T) {
	db := aggregatorDB(t)
	aggr := NewAggregator()

	owner := models.Owner{Username: "aggr-test", Password: "x", FullName: "A", IsActive: true}
	require.NoError(t, db.Create(&owner).Error)

	date := "2025-01-15"
	first := Delta{Sales: decimal.NewFromInt(1500), Profit: decimal.NewFromInt(600), Items: 3}
	require.NoError(t, aggr.ApplyDelta(db, owner.ID, date, first))

	second := Delta{Sales: decimal.NewFromInt(500), Profit: decimal.NewFromInt(100), Items: 1}
	require.NoError(t, aggr.ApplyDelta(db, owner.ID, date, second))

	var rows []models.IncomeSummary
	require.NoError(t, db.Where("owner_id = ?", owner.ID).Find(&rows).Error)
	require.Len(t, rows, 1, "second apply must increment, not insert")
	assert.Equal(t, "2000.00", rows[0].TotalSales)
	assert.Equal(t, "700.00", rows[0].TotalProfit)
	assert.Equal(t, int32(4), rows[0].TotalItemsSold)

	// Full reversal keeps the zeroed row.
	require.NoError(t, aggr.ApplyDelta(db, owner.ID, date, first.Add(second).Negate()))
	var row models.IncomeSummary
	require.NoError(t, db.Where("owner_id = ? AND date = ?", owner.ID, date).First(&row).Error)
	assert.Equal(t, "0.00", row.TotalSales)
	assert.Equal(t, int32(0), row.TotalItemsSold)
}
