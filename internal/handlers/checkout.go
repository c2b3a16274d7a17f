package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/sevenx/marketplace/internal/commission"
	"github.com/sevenx/marketplace/internal/coupon"
	"github.com/sevenx/marketplace/internal/models"
	"github.com/sevenx/marketplace/internal/notify"
	"github.com/sevenx/marketplace/internal/payments"
)

type CheckoutHandler struct {
	DB         *gorm.DB
	Payments   payments.Provider
	Coupons    *coupon.Evaluator
	Commission *commission.Calculator
	Notify     *notify.Service
	SuccessURL string
	CancelURL  string
}

// CreateSession opens a payment session for the user's cart. The coupon, if
// any, is evaluated here so the charged amount already reflects the
// discount; redemption side effects wait until the payment clears.
func (h *CheckoutHandler) CreateSession(c echo.Context) error {
	userID, err := GetID(c)
	if err != nil {
		return err
	}

	var req struct {
		AddressID  uint   `json:"address_id"`
		CouponCode string `json:"coupon_code"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var address models.Address
	if err := h.DB.Where("id = ? AND user_id = ?", req.AddressID, userID).
		First(&address).Error; err != nil {
		return errorResponse(c, http.StatusBadRequest, errors.New("shipping address not found"))
	}

	var cart models.Cart
	if err := h.DB.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return errorResponse(c, http.StatusBadRequest, errors.New("cart is empty"))
	}

	var items []models.CartItem
	if err := h.DB.Where("cart_id = ?", cart.ID).Find(&items).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	if len(items) == 0 {
		return errorResponse(c, http.StatusBadRequest, errors.New("cart is empty"))
	}

	// Inventory is checked up front; the decrement happens at finalization.
	for _, item := range items {
		var product models.Product
		if err := h.DB.First(&product, item.ProductID).Error; err != nil {
			return errorResponse(c, http.StatusBadRequest,
				fmt.Errorf("product %d is no longer available", item.ProductID))
		}
		if !product.IsActive || product.Inventory < item.Quantity {
			return errorResponse(c, http.StatusBadRequest,
				fmt.Errorf("not enough inventory for %s", product.Name))
		}
	}

	total := 0.0
	evalItems := make([]coupon.Item, len(items))
	for i, item := range items {
		total += float64(item.Quantity) * item.Price
		evalItems[i] = coupon.Item{ProductID: item.ProductID, Quantity: item.Quantity, Price: item.Price}
	}

	discount := 0.0
	if req.CouponCode != "" {
		var msg string
		discount, msg = h.Coupons.Evaluate(c.Request().Context(), req.CouponCode, total, &userID, evalItems)
		if discount == 0 {
			return c.JSON(http.StatusBadRequest, Response{Status: "error", Message: msg})
		}
	}

	amount := total - discount
	if amount < 0 {
		amount = 0
	}

	session, err := h.Payments.CreateSession(c.Request().Context(), payments.SessionRequest{
		Amount:     amount,
		Currency:   "usd",
		SuccessURL: h.SuccessURL,
		CancelURL:  h.CancelURL,
		Metadata: map[string]string{
			"user_id": fmt.Sprint(userID),
			"cart_id": fmt.Sprint(cart.ID),
			"coupon":  req.CouponCode,
		},
	})
	if err != nil {
		c.Logger().Errorf("payment session error: %v", err)
		return errorResponse(c, http.StatusBadGateway, errors.New("could not create payment session"))
	}

	txn := models.PaymentTransaction{
		SessionID:      session.ID,
		UserID:         userID,
		CartID:         cart.ID,
		Amount:         amount,
		Currency:       "usd",
		Status:         payments.StatusPending,
		PaymentStatus:  "unpaid",
		CouponCode:     req.CouponCode,
		DiscountAmount: discount,
		ShipAddressID:  address.ID,
	}
	if err := h.DB.Create(&txn).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"session_id":   session.ID,
		"checkout_url": session.URL,
		"amount":       amount,
		"discount":     discount,
	})
}

// GetStatus polls the processor for the session state and finalizes the
// order on the first observation of a paid session.
func (h *CheckoutHandler) GetStatus(c echo.Context) error {
	sessionID := c.Param("sessionID")

	var txn models.PaymentTransaction
	if err := h.DB.Where("session_id = ?", sessionID).First(&txn).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("payment session not found"))
	}

	status, err := h.Payments.GetSessionStatus(c.Request().Context(), sessionID)
	if err != nil {
		c.Logger().Errorf("payment status error: %v", err)
		return errorResponse(c, http.StatusBadGateway, errors.New("could not fetch payment status"))
	}

	if status.PaymentStatus == payments.StatusPaid && txn.OrderID == 0 {
		orderID, err := h.finalizeOrder(c, &txn)
		if err != nil {
			c.Logger().Errorf("order finalization error: %v", err)
			return errorResponse(c, http.StatusInternalServerError, errors.New("could not finalize order"))
		}
		txn.OrderID = orderID
	}

	return c.JSON(http.StatusOK, echo.Map{
		"session_id":     sessionID,
		"status":         status.Status,
		"payment_status": status.PaymentStatus,
		"order_id":       txn.OrderID,
	})
}

// StripeWebhook handles processor callbacks. Completed checkout sessions
// finalize the order the same way a status poll does.
func (h *CheckoutHandler) StripeWebhook(c echo.Context) error {
	var event struct {
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID            string `json:"id"`
				PaymentStatus string `json:"payment_status"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := c.Bind(&event); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if event.Type != "checkout.session.completed" {
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}

	var txn models.PaymentTransaction
	if err := h.DB.Where("session_id = ?", event.Data.Object.ID).First(&txn).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, errors.New("payment session not found"))
	}

	if txn.OrderID == 0 && event.Data.Object.PaymentStatus == payments.StatusPaid {
		if _, err := h.finalizeOrder(c, &txn); err != nil {
			c.Logger().Errorf("order finalization error: %v", err)
			return errorResponse(c, http.StatusInternalServerError, errors.New("could not finalize order"))
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

// finalizeOrder turns a paid transaction into an order: order rows, per
// seller commissions, inventory decrements, coupon redemption and cart
// cleanup. The DB work runs in one transaction; notifications go out after
// it commits.
func (h *CheckoutHandler) finalizeOrder(c echo.Context, txn *models.PaymentTransaction) (uint, error) {
	ctx := c.Request().Context()

	var address models.Address
	if err := h.DB.First(&address, txn.ShipAddressID).Error; err != nil {
		return 0, fmt.Errorf("load address: %w", err)
	}

	var items []models.CartItem
	if err := h.DB.Where("cart_id = ?", txn.CartID).Find(&items).Error; err != nil {
		return 0, fmt.Errorf("load cart items: %w", err)
	}
	if len(items) == 0 {
		return 0, errors.New("cart is empty")
	}

	type sellerGroup struct {
		total    float64
		category string
	}
	sellers := map[uint]*sellerGroup{}

	order := models.Order{
		UserID:           txn.UserID,
		TotalAmount:      txn.Amount,
		DiscountAmount:   txn.DiscountAmount,
		CouponCode:       txn.CouponCode,
		Status:           models.OrderStatusPending,
		PaymentSessionID: txn.SessionID,
		ShipName:         address.Name,
		ShipStreet:       address.Street,
		ShipCity:         address.City,
		ShipState:        address.State,
		ShipPostalCode:   address.PostalCode,
		ShipCountry:      address.Country,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, item := range items {
			var product models.Product
			if err := tx.First(&product, item.ProductID).Error; err != nil {
				return err
			}

			oi := models.OrderItem{
				OrderID:     order.ID,
				ProductID:   product.ID,
				SellerID:    product.SellerID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				Price:       item.Price,
			}
			if err := tx.Create(&oi).Error; err != nil {
				return err
			}

			if err := tx.Model(&models.Product{}).
				Where("id = ? AND inventory >= ?", product.ID, item.Quantity).
				UpdateColumn("inventory", gorm.Expr("inventory - ?", item.Quantity)).Error; err != nil {
				return err
			}

			lineTotal := float64(item.Quantity) * item.Price
			if g, ok := sellers[product.SellerID]; ok {
				g.total += lineTotal
			} else {
				sellers[product.SellerID] = &sellerGroup{total: lineTotal, category: product.Category}
			}
		}

		for sellerID, g := range sellers {
			rate, amount := h.Commission.Calculate(ctx, g.total, sellerID, g.category)
			cm := models.Commission{
				OrderID:          order.ID,
				SellerID:         sellerID,
				OrderTotal:       g.total,
				CommissionRate:   rate,
				CommissionAmount: amount,
			}
			if err := tx.Create(&cm).Error; err != nil {
				return err
			}

			if err := tx.Model(&models.SellerProfile{}).
				Where("user_id = ?", sellerID).
				Updates(map[string]interface{}{
					"total_sales":      gorm.Expr("total_sales + ?", g.total),
					"total_orders":     gorm.Expr("total_orders + 1"),
					"total_commission": gorm.Expr("total_commission + ?", amount),
				}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("cart_id = ?", txn.CartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Cart{}).Where("id = ?", txn.CartID).Update("total", 0).Error; err != nil {
			return err
		}

		return tx.Model(txn).Updates(map[string]interface{}{
			"order_id":       order.ID,
			"status":         payments.StatusPaid,
			"payment_status": payments.StatusPaid,
		}).Error
	})
	if err != nil {
		return 0, err
	}

	if txn.CouponCode != "" {
		if err := h.Coupons.Redeem(ctx, txn.CouponCode, txn.UserID, order.ID, txn.DiscountAmount); err != nil {
			c.Logger().Errorf("coupon redemption error: %v", err)
		}
	}

	h.Notify.Send(ctx, txn.UserID, notify.TypeOrderCreated,
		"Order confirmed",
		fmt.Sprintf("Your order #%d has been placed.", order.ID),
		map[string]interface{}{"order_id": order.ID, "total": order.TotalAmount},
		nil)
	for sellerID := range sellers {
		h.Notify.Send(ctx, sellerID, notify.TypeOrderCreated,
			"New order",
			fmt.Sprintf("You have items in order #%d.", order.ID),
			map[string]interface{}{"order_id": order.ID},
			nil)
	}

	return order.ID, nil
}
