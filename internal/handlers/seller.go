package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/sevenx/marketplace/internal/models"
	"github.com/sevenx/marketplace/internal/notify"
)

type SellerHandler struct {
	DB     *gorm.DB
	Notify *notify.Service
}

// Apply files a seller application for the current user. Re-applying while
// a profile already exists is rejected.
func (h *SellerHandler) Apply(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	var existing models.SellerProfile
	if err := h.DB.Where("user_id = ?", userID).First(&existing).Error; err == nil {
		return errorResponse(c, http.StatusConflict, errors.New("seller application already exists"))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var req sellerApplication
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.BusinessName == "" || req.BusinessEmail == "" {
		return errorResponse(c, http.StatusBadRequest, errors.New("business name and email are required"))
	}

	profile := models.SellerProfile{
		UserID:              userID,
		BusinessName:        req.BusinessName,
		BusinessDescription: req.BusinessDescription,
		BusinessEmail:       req.BusinessEmail,
		BusinessPhone:       req.BusinessPhone,
		BusinessAddress:     req.BusinessAddress,
		TaxID:               req.TaxID,
		Website:             req.Website,
		Status:              models.SellerStatusPending,
	}
	if err := h.DB.Create(&profile).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.Notify.Send(c.Request().Context(), userID, notify.TypeSellerApplication,
		"Application received",
		"Your seller application is under review.",
		nil, nil)

	return c.JSON(http.StatusCreated, profile)
}

func (h *SellerHandler) GetProfile(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	var profile models.SellerProfile
	if err := h.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("seller profile not found"))
	}

	return c.JSON(http.StatusOK, profile)
}

func (h *SellerHandler) UpdateProfile(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	var profile models.SellerProfile
	if err := h.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("seller profile not found"))
	}

	var req struct {
		BusinessName        *string `json:"business_name"`
		BusinessDescription *string `json:"business_description"`
		BusinessEmail       *string `json:"business_email"`
		BusinessPhone       *string `json:"business_phone"`
		BusinessAddress     *string `json:"business_address"`
		Website             *string `json:"website"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	updates := map[string]interface{}{}
	if req.BusinessName != nil {
		updates["business_name"] = *req.BusinessName
	}
	if req.BusinessDescription != nil {
		updates["business_description"] = *req.BusinessDescription
	}
	if req.BusinessEmail != nil {
		updates["business_email"] = *req.BusinessEmail
	}
	if req.BusinessPhone != nil {
		updates["business_phone"] = *req.BusinessPhone
	}
	if req.BusinessAddress != nil {
		updates["business_address"] = *req.BusinessAddress
	}
	if req.Website != nil {
		updates["website"] = *req.Website
	}

	if len(updates) > 0 {
		if err := h.DB.Model(&profile).Updates(updates).Error; err != nil {
			return errorResponse(c, http.StatusInternalServerError, err)
		}
	}

	return c.JSON(http.StatusOK, profile)
}

// Dashboard aggregates the seller's sales, commissions and product counts.
func (h *SellerHandler) Dashboard(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	var profile models.SellerProfile
	if err := h.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("seller profile not found"))
	}

	var productCount int64
	h.DB.Model(&models.Product{}).Where("seller_id = ?", userID).Count(&productCount)

	var orderCount int64
	h.DB.Model(&models.OrderItem{}).Where("seller_id = ?", userID).Distinct("order_id").Count(&orderCount)

	type sums struct {
		TotalSales      float64
		TotalCommission float64
	}
	var s sums
	h.DB.Model(&models.Commission{}).
		Select("COALESCE(SUM(order_total),0) AS total_sales, COALESCE(SUM(commission_amount),0) AS total_commission").
		Where("seller_id = ?", userID).
		Scan(&s)

	var avgRating float64
	h.DB.Model(&models.Product{}).
		Select("COALESCE(AVG(NULLIF(rating,0)),0)").
		Where("seller_id = ?", userID).
		Scan(&avgRating)

	var recentOrders []models.OrderItem
	h.DB.Where("seller_id = ?", userID).Order("id DESC").Limit(10).Find(&recentOrders)

	return c.JSON(http.StatusOK, echo.Map{
		"profile":          profile,
		"total_products":   productCount,
		"total_orders":     orderCount,
		"total_sales":      s.TotalSales,
		"total_commission": s.TotalCommission,
		"net_revenue":      s.TotalSales - s.TotalCommission,
		"average_rating":   avgRating,
		"recent_orders":    recentOrders,
	})
}

// PublicProfile exposes the storefront view of a seller.
func (h *SellerHandler) PublicProfile(c echo.Context) error {
	sellerID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var profile models.SellerProfile
	if err := h.DB.Where("user_id = ? AND status = ?", sellerID, models.SellerStatusApproved).
		First(&profile).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("seller not found"))
	}

	var products []models.Product
	h.DB.Where("seller_id = ? AND is_active = ?", sellerID, true).
		Order("rating DESC").Limit(20).Find(&products)

	return c.JSON(http.StatusOK, echo.Map{
		"business_name":        profile.BusinessName,
		"business_description": profile.BusinessDescription,
		"website":              profile.Website,
		"average_rating":       profile.AverageRating,
		"is_verified":          profile.IsVerified,
		"products":             products,
	})
}
