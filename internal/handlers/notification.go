package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/sevenx/marketplace/internal/models"
	"github.com/sevenx/marketplace/internal/util"
)

type NotificationHandler struct {
	DB *gorm.DB
}

func (h *NotificationHandler) List(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.Notification{}).Where("user_id = ?", userID)
	if c.QueryParam("unread") == "true" {
		q = q.Where("is_read = ?", false)
	}

	var total int64
	q.Count(&total)

	var notifications []models.Notification
	if err := q.Order("id DESC").Offset(from).Limit(limit).Find(&notifications).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var unread int64
	h.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&unread)

	return c.JSON(http.StatusOK, echo.Map{
		"notifications": notifications,
		"total":         total,
		"unread":        unread,
		"page":          page,
		"size":          limit,
	})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	now := time.Now()
	result := h.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if result.Error != nil {
		return errorResponse(c, http.StatusInternalServerError, result.Error)
	}
	if result.RowsAffected == 0 {
		return errorResponse(c, http.StatusNotFound, errors.New("notification not found"))
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	now := time.Now()
	if err := h.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "all marked as read"})
}

// SubscribePush stores a web-push subscription for the user. Subscribing
// the same endpoint twice replaces the keys.
func (h *NotificationHandler) SubscribePush(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	var req struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.Endpoint == "" {
		return errorResponse(c, http.StatusBadRequest, errors.New("endpoint is required"))
	}

	var sub models.PushSubscription
	err = h.DB.Where("user_id = ? AND endpoint = ?", userID, req.Endpoint).First(&sub).Error
	if err == nil {
		sub.P256dh = req.Keys.P256dh
		sub.Auth = req.Keys.Auth
		if err := h.DB.Save(&sub).Error; err != nil {
			return errorResponse(c, http.StatusInternalServerError, err)
		}
		return c.JSON(http.StatusOK, sub)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	sub = models.PushSubscription{
		UserID:   userID,
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	}
	if err := h.DB.Create(&sub).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusCreated, sub)
}
