package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/sevenx/marketplace/internal/models"
)

type CartHandler struct {
	DB *gorm.DB
}

// resolveCart finds the caller's cart: by user id for authenticated
// requests, by the X-Session-ID header for guests. A cart is created on
// demand when create is true.
func (h *CartHandler) resolveCart(c echo.Context, create bool) (*models.Cart, error) {
	var cart models.Cart

	if userID := OptionalID(c); userID != nil {
		err := h.DB.Where("user_id = ?", *userID).First(&cart).Error
		if err == nil {
			return &cart, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if !create {
			return nil, gorm.ErrRecordNotFound
		}
		cart = models.Cart{UserID: *userID}
		if err := h.DB.Create(&cart).Error; err != nil {
			return nil, err
		}
		return &cart, nil
	}

	sessionID := c.Request().Header.Get("X-Session-ID")
	if sessionID == "" {
		if !create {
			return nil, gorm.ErrRecordNotFound
		}
		sessionID = uuid.NewString()
	}
	err := h.DB.Where("session_id = ?", sessionID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if !create {
		return nil, gorm.ErrRecordNotFound
	}
	cart = models.Cart{SessionID: sessionID}
	if err := h.DB.Create(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// recomputeTotal re-sums the cart from its line snapshots and persists it.
func (h *CartHandler) recomputeTotal(cart *models.Cart) error {
	var total float64
	if err := h.DB.Model(&models.CartItem{}).
		Select("COALESCE(SUM(price * quantity),0)").
		Where("cart_id = ?", cart.ID).
		Scan(&total).Error; err != nil {
		return err
	}
	cart.Total = total
	return h.DB.Model(cart).Update("total", total).Error
}

func (h *CartHandler) cartResponse(c echo.Context, cart *models.Cart) error {
	var items []models.CartItem
	h.DB.Where("cart_id = ?", cart.ID).Find(&items)

	return c.JSON(http.StatusOK, echo.Map{
		"cart":       cart,
		"items":      items,
		"session_id": cart.SessionID,
	})
}

func (h *CartHandler) Get(c echo.Context) error {
	cart, err := h.resolveCart(c, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusOK, echo.Map{
			"cart":  nil,
			"items": []models.CartItem{},
		})
	}
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return h.cartResponse(c, cart)
}

// AddItem puts a product into the cart, snapshotting its current price.
// Adding a product already in the cart bumps the quantity instead.
func (h *CartHandler) AddItem(c echo.Context) error {
	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	var product models.Product
	if err := h.DB.First(&product, req.ProductID).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("product not found"))
	}
	if !product.IsActive {
		return errorResponse(c, http.StatusBadRequest, errors.New("product is not available"))
	}
	if product.Inventory < req.Quantity {
		return errorResponse(c, http.StatusBadRequest, errors.New("not enough inventory"))
	}

	cart, err := h.resolveCart(c, true)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var item models.CartItem
	err = h.DB.Where("cart_id = ? AND product_id = ?", cart.ID, req.ProductID).First(&item).Error
	switch {
	case err == nil:
		item.Quantity += req.Quantity
		if err := h.DB.Save(&item).Error; err != nil {
			return errorResponse(c, http.StatusInternalServerError, err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.CartItem{
			CartID:    cart.ID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			Price:     product.Price,
		}
		if err := h.DB.Create(&item).Error; err != nil {
			return errorResponse(c, http.StatusInternalServerError, err)
		}
	default:
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	if err := h.recomputeTotal(cart); err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return h.cartResponse(c, cart)
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	itemID, err := strconv.Atoi(c.Param("itemID"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		Quantity uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	cart, err := h.resolveCart(c, false)
	if err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("cart not found"))
	}

	var item models.CartItem
	if err := h.DB.Where("id = ? AND cart_id = ?", itemID, cart.ID).First(&item).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("cart item not found"))
	}

	if req.Quantity == 0 {
		if err := h.DB.Delete(&item).Error; err != nil {
			return errorResponse(c, http.StatusInternalServerError, err)
		}
	} else {
		item.Quantity = req.Quantity
		if err := h.DB.Save(&item).Error; err != nil {
			return errorResponse(c, http.StatusInternalServerError, err)
		}
	}

	if err := h.recomputeTotal(cart); err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return h.cartResponse(c, cart)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	itemID, err := strconv.Atoi(c.Param("itemID"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	cart, err := h.resolveCart(c, false)
	if err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("cart not found"))
	}

	if err := h.DB.Where("id = ? AND cart_id = ?", itemID, cart.ID).
		Delete(&models.CartItem{}).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	if err := h.recomputeTotal(cart); err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return h.cartResponse(c, cart)
}

func (h *CartHandler) Clear(c echo.Context) error {
	cart, err := h.resolveCart(c, false)
	if err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("cart not found"))
	}

	if err := h.DB.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	cart.Total = 0
	h.DB.Model(cart).Update("total", 0)

	return h.cartResponse(c, cart)
}
