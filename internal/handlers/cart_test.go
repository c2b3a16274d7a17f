package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sevenx/marketplace/internal/models"
)

func TestAddItemSnapshotsPrice(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("user@example.com", models.RoleCustomer)
	product := env.createProduct(1, "Laptop", "electronics", 1000, 5)

	rec, c := env.doJSONRequest(http.MethodPost, "/cart/items", map[string]interface{}{
		"product_id": product.ID,
		"quantity":   2,
	})
	asUser(c, user)
	require.NoError(t, env.Cart.AddItem(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var item models.CartItem
	require.NoError(t, env.DB.First(&item).Error)
	require.Equal(t, 1000.0, item.Price)
	require.EqualValues(t, 2, item.Quantity)

	// Changing the listed price later does not touch the snapshot.
	env.DB.Model(&models.Product{}).Where("id = ?", product.ID).Update("price", 1200)

	var cart models.Cart
	require.NoError(t, env.DB.Where("user_id = ?", user.ID).First(&cart).Error)
	require.Equal(t, 2000.0, cart.Total)
}

func TestAddItemMergesDuplicates(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("user@example.com", models.RoleCustomer)
	product := env.createProduct(1, "Mug", "home", 12, 10)

	for i := 0; i < 2; i++ {
		_, c := env.doJSONRequest(http.MethodPost, "/cart/items", map[string]interface{}{
			"product_id": product.ID,
			"quantity":   1,
		})
		asUser(c, user)
		require.NoError(t, env.Cart.AddItem(c))
	}

	var count int64
	env.DB.Model(&models.CartItem{}).Count(&count)
	require.EqualValues(t, 1, count)

	var item models.CartItem
	env.DB.First(&item)
	require.EqualValues(t, 2, item.Quantity)
}

func TestAddItemRejectsInsufficientInventory(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("user@example.com", models.RoleCustomer)
	product := env.createProduct(1, "Rare", "art", 500, 1)

	rec, c := env.doJSONRequest(http.MethodPost, "/cart/items", map[string]interface{}{
		"product_id": product.ID,
		"quantity":   3,
	})
	asUser(c, user)
	require.NoError(t, env.Cart.AddItem(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGuestCartUsesSessionHeader(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(1, "Pen", "office", 3, 100)

	rec, c := env.doJSONRequest(http.MethodPost, "/cart/items", map[string]interface{}{
		"product_id": product.ID,
	})
	c.Request().Header.Set("X-Session-ID", "guest-session-1")
	require.NoError(t, env.Cart.AddItem(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var cart models.Cart
	require.NoError(t, env.DB.Where("session_id = ?", "guest-session-1").First(&cart).Error)
	require.Equal(t, 3.0, cart.Total)
}

func TestRemoveItemRecomputesTotal(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("user@example.com", models.RoleCustomer)
	p1 := env.createProduct(1, "A", "x", 10, 10)
	p2 := env.createProduct(1, "B", "x", 20, 10)

	for _, p := range []models.Product{p1, p2} {
		_, c := env.doJSONRequest(http.MethodPost, "/cart/items", map[string]interface{}{
			"product_id": p.ID,
		})
		asUser(c, user)
		require.NoError(t, env.Cart.AddItem(c))
	}

	var item models.CartItem
	require.NoError(t, env.DB.Where("product_id = ?", p1.ID).First(&item).Error)

	_, c := env.doJSONRequest(http.MethodDelete, "/cart/items/1", nil)
	asUser(c, user)
	c.SetParamNames("itemID")
	c.SetParamValues(fmt.Sprint(item.ID))
	require.NoError(t, env.Cart.RemoveItem(c))

	var cart models.Cart
	require.NoError(t, env.DB.Where("user_id = ?", user.ID).First(&cart).Error)
	require.Equal(t, 20.0, cart.Total)
}
