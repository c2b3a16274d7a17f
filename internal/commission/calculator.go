package commission

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sevenx/marketplace/internal/logging"
	"github.com/sevenx/marketplace/internal/models"
)

// FallbackRate applies when no rule and no seller rate can be resolved.
const FallbackRate = 10.0

// Calculator resolves the marketplace commission for an order line.
// Resolution order: active category rule whose order-value bounds contain
// the total, then the active default rule (category unset), then the
// seller's stored rate, then FallbackRate.
type Calculator struct {
	DB *gorm.DB
}

func NewCalculator(db *gorm.DB) *Calculator {
	return &Calculator{DB: db}
}

// Calculate returns the commission rate (percent) and amount for the given
// order total. Internal faults degrade to the fallback rate instead of
// failing the caller.
func (c *Calculator) Calculate(ctx context.Context, orderTotal float64, sellerID uint, category string) (float64, float64) {
	rate, err := c.resolveRate(ctx, orderTotal, sellerID, category)
	if err != nil {
		logging.FromContext(ctx).Error("commission resolution failed", "seller_id", sellerID, "error", err)
		return FallbackRate, orderTotal * FallbackRate / 100
	}
	return rate, orderTotal * rate / 100
}

func (c *Calculator) resolveRate(ctx context.Context, orderTotal float64, sellerID uint, category string) (float64, error) {
	if category != "" {
		var rule models.CommissionRule
		err := c.DB.WithContext(ctx).
			Where("category = ? AND is_active = ?", category, true).
			Where("min_order_value IS NULL OR min_order_value <= ?", orderTotal).
			Where("max_order_value IS NULL OR max_order_value >= ?", orderTotal).
			Order("id ASC").
			First(&rule).Error
		if err == nil {
			return rule.CommissionRate, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
	}

	var rule models.CommissionRule
	err := c.DB.WithContext(ctx).
		Where("category IS NULL AND is_active = ?", true).
		Order("id ASC").
		First(&rule).Error
	if err == nil {
		return rule.CommissionRate, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	var seller models.SellerProfile
	err = c.DB.WithContext(ctx).Where("user_id = ?", sellerID).First(&seller).Error
	if err == nil {
		return seller.CommissionRate, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	return FallbackRate, nil
}
