package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sevenx/marketplace/internal/models"
)

func TestWishlistAddIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("user@example.com", models.RoleCustomer)
	product := env.createProduct(1, "Lamp", "home", 40, 10)

	for i := 0; i < 2; i++ {
		_, c := env.doJSONRequest(http.MethodPost, "/wishlist/1", nil)
		asUser(c, user)
		c.SetParamNames("id")
		c.SetParamValues(fmt.Sprint(product.ID))
		require.NoError(t, env.Wishlist.Add(c))
	}

	var count int64
	env.DB.Model(&models.WishlistItem{}).Count(&count)
	require.EqualValues(t, 1, count)
}

func TestWishlistListAndRemove(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("user@example.com", models.RoleCustomer)
	product := env.createProduct(1, "Lamp", "home", 40, 10)

	_, c := env.doJSONRequest(http.MethodPost, "/wishlist/1", nil)
	asUser(c, user)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(product.ID))
	require.NoError(t, env.Wishlist.Add(c))

	rec, listC := env.doJSONRequest(http.MethodGet, "/wishlist", nil)
	asUser(listC, user)
	require.NoError(t, env.Wishlist.List(listC))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Len(t, body["products"], 1)

	_, rmC := env.doJSONRequest(http.MethodDelete, "/wishlist/1", nil)
	asUser(rmC, user)
	rmC.SetParamNames("id")
	rmC.SetParamValues(fmt.Sprint(product.ID))
	require.NoError(t, env.Wishlist.Remove(rmC))

	var count int64
	env.DB.Model(&models.WishlistItem{}).Count(&count)
	require.Zero(t, count)
}

func TestWishlistAddUnknownProduct(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("user@example.com", models.RoleCustomer)

	rec, c := env.doJSONRequest(http.MethodPost, "/wishlist/99", nil)
	asUser(c, user)
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.NoError(t, env.Wishlist.Add(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
