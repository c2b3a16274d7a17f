package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/sevenx/marketplace/internal/models"
)

type WishlistHandler struct {
	DB *gorm.DB
}

func (h *WishlistHandler) List(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	var items []models.WishlistItem
	if err := h.DB.Where("user_id = ?", userID).Order("id DESC").Find(&items).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	var products []models.Product
	if len(ids) > 0 {
		h.DB.Where("id IN ?", ids).Find(&products)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items":    items,
		"products": products,
	})
}

// Add is idempotent: adding a product already on the wishlist succeeds
// without creating a duplicate row.
func (h *WishlistHandler) Add(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var product models.Product
	if err := h.DB.First(&product, productID).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("product not found"))
	}

	var existing models.WishlistItem
	if err := h.DB.Where("user_id = ? AND product_id = ?", userID, productID).
		First(&existing).Error; err == nil {
		return c.JSON(http.StatusOK, existing)
	}

	item := models.WishlistItem{UserID: userID, ProductID: uint(productID)}
	if err := h.DB.Create(&item).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusCreated, item)
}

func (h *WishlistHandler) Remove(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if err := h.DB.Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{}).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.NoContent(http.StatusNoContent)
}
