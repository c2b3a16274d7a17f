package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/sevenx/marketplace/internal/models"
	"github.com/sevenx/marketplace/internal/notify"
	"github.com/sevenx/marketplace/internal/util"
)

type OrderHandler struct {
	DB     *gorm.DB
	Notify *notify.Service
}

var validOrderStatuses = map[string]bool{
	models.OrderStatusPending:    true,
	models.OrderStatusProcessing: true,
	models.OrderStatusShipped:    true,
	models.OrderStatusDelivered:  true,
	models.OrderStatusCancelled:  true,
	models.OrderStatusRefunded:   true,
}

func (h *OrderHandler) List(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	var total int64
	h.DB.Model(&models.Order{}).Where("user_id = ?", userID).Count(&total)

	var orders []models.Order
	if err := h.DB.Where("user_id = ?", userID).
		Order("id DESC").Offset(from).Limit(limit).
		Find(&orders).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"orders": orders,
		"total":  total,
		"page":   page,
		"size":   limit,
	})
}

func (h *OrderHandler) Get(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var order models.Order
	q := h.DB.Where("id = ?", id)
	if userRole(c) != models.RoleAdmin {
		q = q.Where("user_id = ?", userID)
	}
	if err := q.First(&order).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("order not found"))
	}

	var items []models.OrderItem
	h.DB.Where("order_id = ?", order.ID).Find(&items)

	return c.JSON(http.StatusOK, echo.Map{
		"order": order,
		"items": items,
	})
}

// SellerOrders lists order lines that belong to the calling seller.
func (h *OrderHandler) SellerOrders(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	var total int64
	h.DB.Model(&models.OrderItem{}).Where("seller_id = ?", userID).Count(&total)

	var items []models.OrderItem
	if err := h.DB.Where("seller_id = ?", userID).
		Order("id DESC").Offset(from).Limit(limit).
		Find(&items).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items": items,
		"total": total,
		"page":  page,
		"size":  limit,
	})
}

// UpdateStatus moves an order through its lifecycle. Admin only; the buyer
// gets a notification for every transition.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		Status         string `json:"status"`
		TrackingNumber string `json:"tracking_number"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if !validOrderStatuses[req.Status] {
		return errorResponse(c, http.StatusBadRequest, errors.New("invalid order status"))
	}

	var order models.Order
	if err := h.DB.First(&order, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("order not found"))
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.TrackingNumber != "" {
		updates["tracking_number"] = req.TrackingNumber
	}
	if err := h.DB.Model(&order).Updates(updates).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	msg := fmt.Sprintf("Your order #%d is now %s.", order.ID, req.Status)
	if req.TrackingNumber != "" {
		msg += " Tracking number: " + req.TrackingNumber
	}
	h.Notify.Send(c.Request().Context(), order.UserID, notify.TypeOrderUpdated,
		"Order update", msg,
		map[string]interface{}{"order_id": order.ID, "status": req.Status},
		nil)

	return c.JSON(http.StatusOK, order)
}
