package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/sevenx/marketplace/internal/coupon"
	"github.com/sevenx/marketplace/internal/models"
	"github.com/sevenx/marketplace/internal/util"
)

type CouponHandler struct {
	DB        *gorm.DB
	Evaluator *coupon.Evaluator
}

var couponTypes = map[string]bool{
	models.CouponTypePercentage:   true,
	models.CouponTypeFixed:        true,
	models.CouponTypeBOGO:         true,
	models.CouponTypeFreeShipping: true,
}

var couponScopes = map[string]bool{
	models.CouponScopeGlobal:   true,
	models.CouponScopeCategory: true,
	models.CouponScopeProduct:  true,
	models.CouponScopeSeller:   true,
}

// Validate evaluates a coupon against the caller's cart without consuming
// it. Works for guests too; per-user limits then go unchecked.
func (h *CouponHandler) Validate(c echo.Context) error {
	var req struct {
		Code      string  `json:"code"`
		CartTotal float64 `json:"cart_total"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.Code == "" {
		return errorResponse(c, http.StatusBadRequest, errors.New("code is required"))
	}

	userID := OptionalID(c)
	cartTotal := req.CartTotal
	var items []coupon.Item

	// Prefer the stored cart over the client-supplied total.
	if userID != nil {
		var cart models.Cart
		if err := h.DB.Where("user_id = ?", *userID).First(&cart).Error; err == nil {
			var cartItems []models.CartItem
			h.DB.Where("cart_id = ?", cart.ID).Find(&cartItems)
			if len(cartItems) > 0 {
				cartTotal = 0
				items = make([]coupon.Item, len(cartItems))
				for i, item := range cartItems {
					cartTotal += float64(item.Quantity) * item.Price
					items[i] = coupon.Item{ProductID: item.ProductID, Quantity: item.Quantity, Price: item.Price}
				}
			}
		}
	}

	discount, msg := h.Evaluator.Evaluate(c.Request().Context(), req.Code, cartTotal, userID, items)

	return c.JSON(http.StatusOK, echo.Map{
		"valid":    discount > 0,
		"discount": discount,
		"message":  msg,
	})
}

// Admin CRUD below.

func (h *CouponHandler) List(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	var total int64
	h.DB.Model(&models.Coupon{}).Count(&total)

	var coupons []models.Coupon
	if err := h.DB.Order("id DESC").Offset(from).Limit(limit).Find(&coupons).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"coupons": coupons,
		"total":   total,
		"page":    page,
		"size":    limit,
	})
}

func (h *CouponHandler) Create(c echo.Context) error {
	var req models.Coupon
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	req.ID = 0
	req.UsedCount = 0
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if req.Code == "" {
		return errorResponse(c, http.StatusBadRequest, errors.New("code is required"))
	}
	if !couponTypes[req.Type] {
		return errorResponse(c, http.StatusBadRequest, errors.New("invalid coupon type"))
	}
	if req.Scope == "" {
		req.Scope = models.CouponScopeGlobal
	}
	if !couponScopes[req.Scope] {
		return errorResponse(c, http.StatusBadRequest, errors.New("invalid coupon scope"))
	}
	if req.Scope != models.CouponScopeGlobal && req.ScopeValue == "" {
		return errorResponse(c, http.StatusBadRequest, errors.New("scope_value is required for scoped coupons"))
	}
	if req.Type == models.CouponTypePercentage && (req.Value <= 0 || req.Value > 100) {
		return errorResponse(c, http.StatusBadRequest, errors.New("percentage value must be in (0, 100]"))
	}

	var existing models.Coupon
	if err := h.DB.Where("code = ?", req.Code).First(&existing).Error; err == nil {
		return errorResponse(c, http.StatusConflict, errors.New("coupon code already exists"))
	}

	if err := h.DB.Create(&req).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusCreated, req)
}

func (h *CouponHandler) Update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var cpn models.Coupon
	if err := h.DB.First(&cpn, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("coupon not found"))
	}

	var req struct {
		Value          *float64 `json:"value"`
		MinOrderAmount *float64 `json:"min_order_amount"`
		MaxDiscount    *float64 `json:"max_discount"`
		UsageLimit     *int     `json:"usage_limit"`
		UsagePerUser   *int     `json:"usage_per_user"`
		IsActive       *bool    `json:"is_active"`
		Description    *string  `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	updates := map[string]interface{}{}
	if req.Value != nil {
		updates["value"] = *req.Value
	}
	if req.MinOrderAmount != nil {
		updates["min_order_amount"] = *req.MinOrderAmount
	}
	if req.MaxDiscount != nil {
		updates["max_discount"] = *req.MaxDiscount
	}
	if req.UsageLimit != nil {
		updates["usage_limit"] = *req.UsageLimit
	}
	if req.UsagePerUser != nil {
		updates["usage_per_user"] = *req.UsagePerUser
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) > 0 {
		if err := h.DB.Model(&cpn).Updates(updates).Error; err != nil {
			return errorResponse(c, http.StatusInternalServerError, err)
		}
	}

	return c.JSON(http.StatusOK, cpn)
}

// Delete deactivates the coupon instead of removing the row, so past usage
// records keep their referent.
func (h *CouponHandler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	result := h.DB.Model(&models.Coupon{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return errorResponse(c, http.StatusInternalServerError, result.Error)
	}
	if result.RowsAffected == 0 {
		return errorResponse(c, http.StatusNotFound, errors.New("coupon not found"))
	}

	return c.NoContent(http.StatusNoContent)
}
