package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sevenx/marketplace/internal/models"
)

func TestValidateCouponAgainstStoredCart(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("user@example.com", models.RoleCustomer)
	product := env.createProduct(1, "Laptop", "electronics", 100, 5)
	env.DB.Create(&models.Coupon{Code: "SAVE10", Type: models.CouponTypePercentage, Value: 10, IsActive: true})

	_, addC := env.doJSONRequest(http.MethodPost, "/cart/items", map[string]interface{}{
		"product_id": product.ID,
		"quantity":   2,
	})
	asUser(addC, user)
	require.NoError(t, env.Cart.AddItem(addC))

	rec, c := env.doJSONRequest(http.MethodPost, "/coupons/validate", map[string]interface{}{
		"code": "SAVE10",
		// The client-supplied total is ignored in favor of the stored cart.
		"cart_total": 1,
	})
	asUser(c, user)
	require.NoError(t, env.Coupon.Validate(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, true, body["valid"])
	require.Equal(t, 20.0, body["discount"])
	require.Equal(t, "Coupon applied successfully", body["message"])
}

func TestValidateCouponInvalidCode(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodPost, "/coupons/validate", map[string]interface{}{
		"code":       "NOPE",
		"cart_total": 100,
	})
	require.NoError(t, env.Coupon.Validate(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, false, body["valid"])
	require.Equal(t, "Invalid coupon code", body["message"])
}

func TestCreateCouponValidation(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodPost, "/admin/coupons", map[string]interface{}{
		"code":  "p200",
		"type":  models.CouponTypePercentage,
		"value": 200,
	})
	require.NoError(t, env.Coupon.Create(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec2, c2 := env.doJSONRequest(http.MethodPost, "/admin/coupons", map[string]interface{}{
		"code":  " save20 ",
		"type":  models.CouponTypePercentage,
		"value": 20,
	})
	require.NoError(t, env.Coupon.Create(c2))
	require.Equal(t, http.StatusCreated, rec2.Code)

	// Codes are stored normalized.
	var cpn models.Coupon
	require.NoError(t, env.DB.Where("code = ?", "SAVE20").First(&cpn).Error)

	rec3, c3 := env.doJSONRequest(http.MethodPost, "/admin/coupons", map[string]interface{}{
		"code":  "SAVE20",
		"type":  models.CouponTypeFixed,
		"value": 5,
	})
	require.NoError(t, env.Coupon.Create(c3))
	require.Equal(t, http.StatusConflict, rec3.Code)
}

func TestDeleteCouponDeactivates(t *testing.T) {
	env := newTestEnv(t)
	cpn := models.Coupon{Code: "KILLME", Type: models.CouponTypeFixed, Value: 5, IsActive: true}
	env.DB.Create(&cpn)

	rec, c := env.doJSONRequest(http.MethodDelete, "/admin/coupons/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.Coupon.Delete(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var got models.Coupon
	require.NoError(t, env.DB.First(&got, cpn.ID).Error)
	require.False(t, got.IsActive)
}
