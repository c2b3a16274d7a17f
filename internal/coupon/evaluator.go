package coupon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sevenx/marketplace/internal/logging"
	"github.com/sevenx/marketplace/internal/models"
)

// FreeShippingCredit is the flat credit applied for free_shipping coupons.
const FreeShippingCredit = 10.0

// Item is a cart line snapshot: quantity and the price captured when the
// item was added.
type Item struct {
	ProductID uint
	Quantity  uint
	Price     float64
}

// Evaluator computes the discount for a coupon code against a cart. It only
// reads; incrementing used_count and recording CouponUsage stay with the
// caller that finalizes the order.
type Evaluator struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewEvaluator(db *gorm.DB) *Evaluator {
	return &Evaluator{DB: db, Now: time.Now}
}

// Evaluate validates the coupon and returns the discount amount with a
// human-readable status message. A declined coupon and an internal fault
// both come back as a zero discount; faults never propagate to the caller.
func (e *Evaluator) Evaluate(ctx context.Context, code string, cartTotal float64, userID *uint, items []Item) (float64, string) {
	discount, msg, err := e.evaluate(ctx, code, cartTotal, userID, items)
	if err != nil {
		logging.FromContext(ctx).Error("coupon evaluation failed", "code", code, "error", err)
		return 0, "Error applying coupon"
	}
	return discount, msg
}

func (e *Evaluator) evaluate(ctx context.Context, code string, cartTotal float64, userID *uint, items []Item) (float64, string, error) {
	var c models.Coupon
	err := e.DB.WithContext(ctx).Where("code = ? AND is_active = ?", code, true).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, "Invalid coupon code", nil
	}
	if err != nil {
		return 0, "", err
	}

	now := e.Now().UTC()

	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return 0, "Coupon is not yet active", nil
	}

	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return 0, "Coupon has expired", nil
	}

	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return 0, "Coupon usage limit exceeded", nil
	}

	if userID != nil && c.UsagePerUser != nil {
		var used int64
		if err := e.DB.WithContext(ctx).Model(&models.CouponUsage{}).
			Where("coupon_id = ? AND user_id = ?", c.ID, *userID).
			Count(&used).Error; err != nil {
			return 0, "", err
		}
		if used >= int64(*c.UsagePerUser) {
			return 0, "You have reached the usage limit for this coupon", nil
		}
	}

	if c.MinOrderAmount != nil && cartTotal < *c.MinOrderAmount {
		return 0, fmt.Sprintf("Minimum order amount $%.2f required", *c.MinOrderAmount), nil
	}

	if c.Scope != models.CouponScopeGlobal && len(items) > 0 {
		eligibleTotal, scopeValid, err := e.eligibleSubtotal(ctx, &c, items)
		if err != nil {
			return 0, "", err
		}
		if !scopeValid {
			return 0, "Coupon is not applicable to items in your cart", nil
		}
		if eligibleTotal > 0 {
			cartTotal = eligibleTotal
		}
	}

	var discount float64
	switch c.Type {
	case models.CouponTypePercentage:
		discount = cartTotal * (c.Value / 100)
		if c.MaxDiscount != nil && discount > *c.MaxDiscount {
			discount = *c.MaxDiscount
		}
	case models.CouponTypeFixed:
		discount = c.Value
	case models.CouponTypeFreeShipping:
		discount = FreeShippingCredit
	case models.CouponTypeBOGO:
		// Simplified buy-one-get-one: half of the eligible total.
		discount = cartTotal * 0.5
	}

	// A discount never exceeds what is owed.
	if discount > cartTotal {
		discount = cartTotal
	}

	return discount, "Coupon applied successfully", nil
}

// eligibleSubtotal partitions the cart by the coupon's scope predicate and
// sums the line totals of matching items. scopeValid reports whether at
// least one item matched.
func (e *Evaluator) eligibleSubtotal(ctx context.Context, c *models.Coupon, items []Item) (float64, bool, error) {
	eligibleTotal := 0.0
	scopeValid := false

	for _, item := range items {
		var product models.Product
		err := e.DB.WithContext(ctx).First(&product, item.ProductID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return 0, false, err
		}

		eligible := false
		switch c.Scope {
		case models.CouponScopeCategory:
			eligible = product.Category == c.ScopeValue
		case models.CouponScopeProduct:
			eligible = fmt.Sprint(product.ID) == c.ScopeValue
		case models.CouponScopeSeller:
			eligible = fmt.Sprint(product.SellerID) == c.ScopeValue
		}

		if eligible {
			scopeValid = true
			eligibleTotal += float64(item.Quantity) * item.Price
		}
	}

	return eligibleTotal, scopeValid, nil
}

// Redeem records the side effects of a successful coupon application:
// the global counter increment and the per-user usage record. Callers
// invoke it once per finalized order.
func (e *Evaluator) Redeem(ctx context.Context, code string, userID, orderID uint, discount float64) error {
	var c models.Coupon
	if err := e.DB.WithContext(ctx).Where("code = ?", code).First(&c).Error; err != nil {
		return err
	}

	if err := e.DB.WithContext(ctx).Model(&models.Coupon{}).
		Where("id = ?", c.ID).
		UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error; err != nil {
		return err
	}

	usage := models.CouponUsage{
		CouponID:       c.ID,
		UserID:         userID,
		OrderID:        orderID,
		DiscountAmount: discount,
	}
	return e.DB.WithContext(ctx).Create(&usage).Error
}
