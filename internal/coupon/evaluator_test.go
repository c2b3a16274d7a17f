package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sevenx/marketplace/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Coupon{},
		&models.CouponUsage{},
		&models.Product{},
	))
	return db
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func ptrF(v float64) *float64 { return &v }

func ptrI(v int) *int { return &v }

func ptrT(v time.Time) *time.Time { return &v }

func TestEvaluateInvalidCode(t *testing.T) {
	e := NewEvaluator(newTestDB(t))

	discount, msg := e.Evaluate(context.Background(), "NOPE", 100, nil, nil)
	require.Zero(t, discount)
	require.Equal(t, "Invalid coupon code", msg)
}

func TestEvaluateInactiveCodeIsInvalid(t *testing.T) {
	db := newTestDB(t)
	db.Create(&models.Coupon{Code: "OFF", Type: models.CouponTypePercentage, Value: 10, IsActive: false})
	e := NewEvaluator(db)

	discount, msg := e.Evaluate(context.Background(), "OFF", 100, nil, nil)
	require.Zero(t, discount)
	require.Equal(t, "Invalid coupon code", msg)
}

func TestEvaluatePercentage(t *testing.T) {
	db := newTestDB(t)
	db.Create(&models.Coupon{Code: "SAVE10", Type: models.CouponTypePercentage, Value: 10, IsActive: true})
	e := NewEvaluator(db)

	discount, msg := e.Evaluate(context.Background(), "SAVE10", 200, nil, nil)
	require.Equal(t, 20.0, discount)
	require.Equal(t, "Coupon applied successfully", msg)
}

func TestEvaluatePercentageMaxDiscountCap(t *testing.T) {
	db := newTestDB(t)
	db.Create(&models.Coupon{
		Code: "BIG", Type: models.CouponTypePercentage, Value: 50,
		MaxDiscount: ptrF(30), IsActive: true,
	})
	e := NewEvaluator(db)

	discount, _ := e.Evaluate(context.Background(), "BIG", 200, nil, nil)
	require.Equal(t, 30.0, discount)
}

func TestEvaluateTimeWindow(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	db.Create(&models.Coupon{
		Code: "LATER", Type: models.CouponTypeFixed, Value: 5,
		StartsAt: ptrT(now.Add(time.Hour)), IsActive: true,
	})
	db.Create(&models.Coupon{
		Code: "GONE", Type: models.CouponTypeFixed, Value: 5,
		ExpiresAt: ptrT(now.Add(-time.Hour)), IsActive: true,
	})
	e := &Evaluator{DB: db, Now: fixedNow(now)}

	discount, msg := e.Evaluate(context.Background(), "LATER", 100, nil, nil)
	require.Zero(t, discount)
	require.Equal(t, "Coupon is not yet active", msg)

	discount, msg = e.Evaluate(context.Background(), "GONE", 100, nil, nil)
	require.Zero(t, discount)
	require.Equal(t, "Coupon has expired", msg)
}

func TestEvaluateUsageLimits(t *testing.T) {
	db := newTestDB(t)
	db.Create(&models.Coupon{
		Code: "CAPPED", Type: models.CouponTypeFixed, Value: 5,
		UsageLimit: ptrI(3), UsedCount: 2, IsActive: true,
	})
	e := NewEvaluator(db)

	// The Nth use is still allowed.
	discount, msg := e.Evaluate(context.Background(), "CAPPED", 100, nil, nil)
	require.Equal(t, 5.0, discount)
	require.Equal(t, "Coupon applied successfully", msg)

	db.Model(&models.Coupon{}).Where("code = ?", "CAPPED").Update("used_count", 3)

	discount, msg = e.Evaluate(context.Background(), "CAPPED", 100, nil, nil)
	require.Zero(t, discount)
	require.Equal(t, "Coupon usage limit exceeded", msg)
}

func TestEvaluatePerUserLimit(t *testing.T) {
	db := newTestDB(t)
	cpn := models.Coupon{
		Code: "ONCE", Type: models.CouponTypeFixed, Value: 5,
		UsagePerUser: ptrI(1), IsActive: true,
	}
	db.Create(&cpn)

	userID := uint(7)
	db.Create(&models.CouponUsage{CouponID: cpn.ID, UserID: userID, OrderID: 1, DiscountAmount: 5})
	e := NewEvaluator(db)

	discount, msg := e.Evaluate(context.Background(), "ONCE", 100, &userID, nil)
	require.Zero(t, discount)
	require.Equal(t, "You have reached the usage limit for this coupon", msg)

	// An anonymous caller is not bound by the per-user limit.
	discount, msg = e.Evaluate(context.Background(), "ONCE", 100, nil, nil)
	require.Equal(t, 5.0, discount)
	require.Equal(t, "Coupon applied successfully", msg)
}

func TestEvaluateMinOrderAmount(t *testing.T) {
	db := newTestDB(t)
	db.Create(&models.Coupon{
		Code: "MIN50", Type: models.CouponTypeFixed, Value: 5,
		MinOrderAmount: ptrF(50), IsActive: true,
	})
	e := NewEvaluator(db)

	discount, msg := e.Evaluate(context.Background(), "MIN50", 49.99, nil, nil)
	require.Zero(t, discount)
	require.Equal(t, "Minimum order amount $50.00 required", msg)

	discount, _ = e.Evaluate(context.Background(), "MIN50", 50, nil, nil)
	require.Equal(t, 5.0, discount)
}

func TestEvaluateCategoryScope(t *testing.T) {
	db := newTestDB(t)
	db.Create(&models.Product{Name: "Laptop", Description: "x", Category: "electronics", Price: 1000})
	db.Create(&models.Product{Name: "Shirt", Description: "x", Category: "clothing", Price: 20})
	db.Create(&models.Coupon{
		Code: "TECH10", Type: models.CouponTypePercentage, Value: 10,
		Scope: models.CouponScopeCategory, ScopeValue: "electronics", IsActive: true,
	})
	e := NewEvaluator(db)

	items := []Item{
		{ProductID: 1, Quantity: 1, Price: 1000},
		{ProductID: 2, Quantity: 2, Price: 20},
	}

	// Discount is computed on the eligible subtotal only.
	discount, msg := e.Evaluate(context.Background(), "TECH10", 1040, nil, items)
	require.Equal(t, 100.0, discount)
	require.Equal(t, "Coupon applied successfully", msg)

	// A cart with no eligible item declines.
	discount, msg = e.Evaluate(context.Background(), "TECH10", 40, nil, items[1:])
	require.Zero(t, discount)
	require.Equal(t, "Coupon is not applicable to items in your cart", msg)
}

func TestEvaluateSellerScope(t *testing.T) {
	db := newTestDB(t)
	db.Create(&models.Product{SellerID: 3, Name: "A", Description: "x", Category: "books", Price: 30})
	db.Create(&models.Coupon{
		Code: "SELLER3", Type: models.CouponTypeFixed, Value: 5,
		Scope: models.CouponScopeSeller, ScopeValue: "3", IsActive: true,
	})
	e := NewEvaluator(db)

	discount, msg := e.Evaluate(context.Background(), "SELLER3", 30, nil, []Item{{ProductID: 1, Quantity: 1, Price: 30}})
	require.Equal(t, 5.0, discount)
	require.Equal(t, "Coupon applied successfully", msg)
}

func TestEvaluateDiscountNeverExceedsTotal(t *testing.T) {
	db := newTestDB(t)
	db.Create(&models.Coupon{Code: "HUGE", Type: models.CouponTypeFixed, Value: 500, IsActive: true})
	e := NewEvaluator(db)

	discount, _ := e.Evaluate(context.Background(), "HUGE", 120, nil, nil)
	require.Equal(t, 120.0, discount)
}

func TestEvaluateFreeShippingAndBogo(t *testing.T) {
	db := newTestDB(t)
	db.Create(&models.Coupon{Code: "SHIP", Type: models.CouponTypeFreeShipping, Value: 0, IsActive: true})
	db.Create(&models.Coupon{Code: "BOGO", Type: models.CouponTypeBOGO, Value: 0, IsActive: true})
	e := NewEvaluator(db)

	discount, _ := e.Evaluate(context.Background(), "SHIP", 100, nil, nil)
	require.Equal(t, FreeShippingCredit, discount)

	discount, _ = e.Evaluate(context.Background(), "BOGO", 100, nil, nil)
	require.Equal(t, 50.0, discount)
}

func TestRedeem(t *testing.T) {
	db := newTestDB(t)
	db.Create(&models.Coupon{Code: "SAVE10", Type: models.CouponTypePercentage, Value: 10, IsActive: true})
	e := NewEvaluator(db)

	require.NoError(t, e.Redeem(context.Background(), "SAVE10", 7, 42, 20))

	var cpn models.Coupon
	require.NoError(t, db.Where("code = ?", "SAVE10").First(&cpn).Error)
	require.Equal(t, 1, cpn.UsedCount)

	var usage models.CouponUsage
	require.NoError(t, db.First(&usage).Error)
	require.Equal(t, uint(7), usage.UserID)
	require.Equal(t, uint(42), usage.OrderID)
	require.Equal(t, 20.0, usage.DiscountAmount)
}
