package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sevenx/marketplace/internal/models"
)

func postReview(t *testing.T, env *testEnv, user models.User, productID uint, rating int) int {
	rec, c := env.doJSONRequest(http.MethodPost, "/products/1/reviews", map[string]interface{}{
		"rating":  rating,
		"comment": "ok",
	})
	asUser(c, user)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(productID))
	require.NoError(t, env.Review.Create(c))
	return rec.Code
}

func TestReviewUpdatesProductAggregates(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(1, "Chair", "home", 80, 10)

	u1 := env.createUser("a@example.com", models.RoleCustomer)
	u2 := env.createUser("b@example.com", models.RoleCustomer)

	require.Equal(t, http.StatusCreated, postReview(t, env, u1, product.ID, 5))
	require.Equal(t, http.StatusCreated, postReview(t, env, u2, product.ID, 3))

	var got models.Product
	require.NoError(t, env.DB.First(&got, product.ID).Error)
	require.Equal(t, 2, got.ReviewsCount)
	require.Equal(t, 4.0, got.Rating)
}

func TestReviewOnePerUser(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(1, "Chair", "home", 80, 10)
	user := env.createUser("a@example.com", models.RoleCustomer)

	require.Equal(t, http.StatusCreated, postReview(t, env, user, product.ID, 5))
	require.Equal(t, http.StatusConflict, postReview(t, env, user, product.ID, 4))

	var count int64
	env.DB.Model(&models.Review{}).Count(&count)
	require.EqualValues(t, 1, count)
}

func TestReviewRejectsOutOfRangeRating(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(1, "Chair", "home", 80, 10)
	user := env.createUser("a@example.com", models.RoleCustomer)

	require.Equal(t, http.StatusBadRequest, postReview(t, env, user, product.ID, 6))
	require.Equal(t, http.StatusBadRequest, postReview(t, env, user, product.ID, 0))
}
