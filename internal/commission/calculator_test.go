package commission

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sevenx/marketplace/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.CommissionRule{}, &models.SellerProfile{}))
	return db
}

func strPtr(s string) *string { return &s }

func f64Ptr(v float64) *float64 { return &v }

func TestCalculateCategoryRule(t *testing.T) {
	db := newTestDB(t)
	db.Create(&models.CommissionRule{Category: strPtr("electronics"), CommissionRate: 15, IsActive: true})
	c := NewCalculator(db)

	rate, amount := c.Calculate(context.Background(), 500, 1, "electronics")
	require.Equal(t, 15.0, rate)
	require.Equal(t, 75.0, amount)
}

func TestCalculateBoundsContainment(t *testing.T) {
	db := newTestDB(t)
	db.Create(&models.CommissionRule{
		Category: strPtr("electronics"), CommissionRate: 5,
		MinOrderValue: f64Ptr(1000), IsActive: true,
	})
	db.Create(&models.CommissionRule{
		Category: strPtr("electronics"), CommissionRate: 15,
		MaxOrderValue: f64Ptr(999), IsActive: true,
	})
	c := NewCalculator(db)

	rate, _ := c.Calculate(context.Background(), 500, 1, "electronics")
	require.Equal(t, 15.0, rate)

	rate, _ = c.Calculate(context.Background(), 2000, 1, "electronics")
	require.Equal(t, 5.0, rate)
}

func TestCalculateInactiveRuleIgnored(t *testing.T) {
	db := newTestDB(t)
	db.Create(&models.CommissionRule{Category: strPtr("books"), CommissionRate: 2, IsActive: false})
	db.Create(&models.SellerProfile{UserID: 9, BusinessName: "b", BusinessEmail: "b@x.com", CommissionRate: 12})
	c := NewCalculator(db)

	rate, _ := c.Calculate(context.Background(), 100, 9, "books")
	require.Equal(t, 12.0, rate)
}

func TestCalculateDefaultRule(t *testing.T) {
	db := newTestDB(t)
	db.Create(&models.CommissionRule{CommissionRate: 8, IsActive: true})
	c := NewCalculator(db)

	// No category rule for "toys", the default (category unset) rule wins.
	rate, amount := c.Calculate(context.Background(), 200, 1, "toys")
	require.Equal(t, 8.0, rate)
	require.Equal(t, 16.0, amount)
}

func TestCalculateSellerRate(t *testing.T) {
	db := newTestDB(t)
	db.Create(&models.SellerProfile{UserID: 4, BusinessName: "b", BusinessEmail: "b@x.com", CommissionRate: 7.5})
	c := NewCalculator(db)

	rate, amount := c.Calculate(context.Background(), 100, 4, "toys")
	require.Equal(t, 7.5, rate)
	require.Equal(t, 7.5, amount)
}

func TestCalculateFallback(t *testing.T) {
	c := NewCalculator(newTestDB(t))

	rate, amount := c.Calculate(context.Background(), 100, 999, "")
	require.Equal(t, FallbackRate, rate)
	require.Equal(t, 10.0, amount)
}
