package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/sevenx/marketplace/internal/models"
	"github.com/sevenx/marketplace/internal/notify"
	"github.com/sevenx/marketplace/internal/util"
)

type AdminHandler struct {
	DB     *gorm.DB
	Notify *notify.Service
}

// logAction records an audit entry for an admin mutation. Audit failures
// are logged, never returned.
func (h *AdminHandler) logAction(c echo.Context, actionType, description string, metadata map[string]interface{}) {
	adminID, err := GetID(c)
	if err != nil {
		return
	}

	encoded := ""
	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			encoded = string(raw)
		}
	}

	entry := models.AdminActionLog{
		AdminID:     adminID,
		ActionType:  actionType,
		Description: description,
		Metadata:    encoded,
	}
	if err := h.DB.Create(&entry).Error; err != nil {
		c.Logger().Errorf("failed to write admin action log: %v", err)
	}
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.User{})
	if search := c.QueryParam("search"); search != "" {
		pattern := "%" + search + "%"
		q = q.Where("email LIKE ? OR name LIKE ?", pattern, pattern)
	}
	if role := c.QueryParam("role"); role != "" {
		q = q.Where("role = ?", role)
	}

	var total int64
	q.Count(&total)

	var users []models.User
	if err := q.Order("id DESC").Offset(from).Limit(limit).Find(&users).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"users": users,
		"total": total,
		"page":  page,
		"size":  limit,
	})
}

// UpdateUserStatus activates or deactivates an account.
func (h *AdminHandler) UpdateUserStatus(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("user not found"))
	}

	if err := h.DB.Model(&user).Update("is_active", req.IsActive).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.logAction(c, "user_status_change",
		fmt.Sprintf("set user %d active=%t", user.ID, req.IsActive),
		map[string]interface{}{"user_id": user.ID, "is_active": req.IsActive})

	return c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) UpdateUserRole(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.Role != models.RoleCustomer && req.Role != models.RoleSeller && req.Role != models.RoleAdmin {
		return errorResponse(c, http.StatusBadRequest, errors.New("invalid role"))
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("user not found"))
	}

	if err := h.DB.Model(&user).Update("role", req.Role).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.logAction(c, "user_role_change",
		fmt.Sprintf("set user %d role=%s", user.ID, req.Role),
		map[string]interface{}{"user_id": user.ID, "role": req.Role})

	return c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) ListSellers(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.SellerProfile{})
	if status := c.QueryParam("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	q.Count(&total)

	var sellers []models.SellerProfile
	if err := q.Order("id DESC").Offset(from).Limit(limit).Find(&sellers).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"sellers": sellers,
		"total":   total,
		"page":    page,
		"size":    limit,
	})
}

// UpdateSellerStatus approves, rejects or suspends a seller application.
// Approval promotes the account to the seller role.
func (h *AdminHandler) UpdateSellerStatus(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	valid := map[string]bool{
		models.SellerStatusPending:   true,
		models.SellerStatusApproved:  true,
		models.SellerStatusRejected:  true,
		models.SellerStatusSuspended: true,
	}
	if !valid[req.Status] {
		return errorResponse(c, http.StatusBadRequest, errors.New("invalid seller status"))
	}

	var profile models.SellerProfile
	if err := h.DB.First(&profile, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("seller profile not found"))
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&profile).Update("status", req.Status).Error; err != nil {
			return err
		}
		role := models.RoleCustomer
		if req.Status == models.SellerStatusApproved {
			role = models.RoleSeller
		}
		return tx.Model(&models.User{}).
			Where("id = ?", profile.UserID).
			Update("role", role).Error
	})
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.logAction(c, "seller_status_change",
		fmt.Sprintf("set seller %d status=%s", profile.ID, req.Status),
		map[string]interface{}{"seller_id": profile.ID, "user_id": profile.UserID, "status": req.Status})

	title := "Seller application update"
	msg := fmt.Sprintf("Your seller application is now %s.", req.Status)
	h.Notify.Send(c.Request().Context(), profile.UserID, notify.TypeSellerApplication, title, msg,
		map[string]interface{}{"status": req.Status}, nil)

	return c.JSON(http.StatusOK, profile)
}

func (h *AdminHandler) UpdateSellerCommission(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		CommissionRate float64 `json:"commission_rate"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.CommissionRate < 0 || req.CommissionRate > 100 {
		return errorResponse(c, http.StatusBadRequest, errors.New("commission rate must be in [0, 100]"))
	}

	var profile models.SellerProfile
	if err := h.DB.First(&profile, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("seller profile not found"))
	}

	if err := h.DB.Model(&profile).Update("commission_rate", req.CommissionRate).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.logAction(c, "seller_commission_change",
		fmt.Sprintf("set seller %d commission_rate=%.2f", profile.ID, req.CommissionRate),
		map[string]interface{}{"seller_id": profile.ID, "commission_rate": req.CommissionRate})

	return c.JSON(http.StatusOK, profile)
}

func (h *AdminHandler) CreateCommissionRule(c echo.Context) error {
	var req models.CommissionRule
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	req.ID = 0
	if req.CommissionRate < 0 || req.CommissionRate > 100 {
		return errorResponse(c, http.StatusBadRequest, errors.New("commission rate must be in [0, 100]"))
	}
	if req.MinOrderValue != nil && req.MaxOrderValue != nil && *req.MinOrderValue > *req.MaxOrderValue {
		return errorResponse(c, http.StatusBadRequest, errors.New("min_order_value exceeds max_order_value"))
	}

	if err := h.DB.Create(&req).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.logAction(c, "commission_rule_create",
		fmt.Sprintf("created commission rule %d", req.ID),
		map[string]interface{}{"rule_id": req.ID})

	return c.JSON(http.StatusCreated, req)
}

func (h *AdminHandler) ListCommissionRules(c echo.Context) error {
	var rules []models.CommissionRule
	if err := h.DB.Order("id ASC").Find(&rules).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"rules": rules})
}

func (h *AdminHandler) DeleteCommissionRule(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	result := h.DB.Model(&models.CommissionRule{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return errorResponse(c, http.StatusInternalServerError, result.Error)
	}
	if result.RowsAffected == 0 {
		return errorResponse(c, http.StatusNotFound, errors.New("commission rule not found"))
	}

	h.logAction(c, "commission_rule_delete",
		fmt.Sprintf("deactivated commission rule %d", id),
		map[string]interface{}{"rule_id": id})

	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) ListOrders(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.Order{})
	if status := c.QueryParam("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	q.Count(&total)

	var orders []models.Order
	if err := q.Order("id DESC").Offset(from).Limit(limit).Find(&orders).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"orders": orders,
		"total":  total,
		"page":   page,
		"size":   limit,
	})
}

// Statistics returns marketplace-wide aggregates for the admin dashboard.
func (h *AdminHandler) Statistics(c echo.Context) error {
	var userCount, sellerCount, productCount, orderCount int64
	h.DB.Model(&models.User{}).Count(&userCount)
	h.DB.Model(&models.SellerProfile{}).Where("status = ?", models.SellerStatusApproved).Count(&sellerCount)
	h.DB.Model(&models.Product{}).Where("is_active = ?", true).Count(&productCount)
	h.DB.Model(&models.Order{}).Count(&orderCount)

	var revenue, discounts float64
	h.DB.Model(&models.Order{}).
		Where("status NOT IN ?", []string{models.OrderStatusCancelled, models.OrderStatusRefunded}).
		Select("COALESCE(SUM(total_amount),0)").Scan(&revenue)
	h.DB.Model(&models.Order{}).
		Select("COALESCE(SUM(discount_amount),0)").Scan(&discounts)

	var commissionTotal float64
	h.DB.Model(&models.Commission{}).
		Select("COALESCE(SUM(commission_amount),0)").Scan(&commissionTotal)

	since := time.Now().AddDate(0, 0, -30)
	var recentOrders int64
	h.DB.Model(&models.Order{}).Where("created_at >= ?", since).Count(&recentOrders)

	var pendingSellers int64
	h.DB.Model(&models.SellerProfile{}).Where("status = ?", models.SellerStatusPending).Count(&pendingSellers)

	return c.JSON(http.StatusOK, echo.Map{
		"total_users":      userCount,
		"total_sellers":    sellerCount,
		"total_products":   productCount,
		"total_orders":     orderCount,
		"total_revenue":    revenue,
		"total_discounts":  discounts,
		"total_commission": commissionTotal,
		"orders_30d":       recentOrders,
		"pending_sellers":  pendingSellers,
	})
}

func (h *AdminHandler) ActionLogs(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.AdminActionLog{})
	if actionType := c.QueryParam("type"); actionType != "" {
		q = q.Where("action_type = ?", actionType)
	}

	var total int64
	q.Count(&total)

	var logs []models.AdminActionLog
	if err := q.Order("id DESC").Offset(from).Limit(limit).Find(&logs).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"logs":  logs,
		"total": total,
		"page":  page,
		"size":  limit,
	})
}
