package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sevenx/marketplace/internal/commission"
	"github.com/sevenx/marketplace/internal/config"
	"github.com/sevenx/marketplace/internal/coupon"
	"github.com/sevenx/marketplace/internal/hash"
	"github.com/sevenx/marketplace/internal/models"
	"github.com/sevenx/marketplace/internal/mykafka"
	"github.com/sevenx/marketplace/internal/notify"
	"github.com/sevenx/marketplace/internal/payments"
	"github.com/sevenx/marketplace/internal/verification"
)

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB

	Auth     *AuthHandler
	Cart     *CartHandler
	Coupon   *CouponHandler
	Wishlist *WishlistHandler
	Checkout *CheckoutHandler
	Review   *ReviewHandler
	Admin    *AdminHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	producer := &mykafka.Producer{}
	notifier := notify.NewService(db, producer)
	evaluator := coupon.NewEvaluator(db)
	verify := verification.NewService(db)
	verify.DevEcho = true

	env := &testEnv{
		T:  t,
		E:  echo.New(),
		DB: db,
	}

	env.Auth = &AuthHandler{
		DB:            db,
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		Producer:      producer,
		Verify:        verify,
	}
	env.Cart = &CartHandler{DB: db}
	env.Coupon = &CouponHandler{DB: db, Evaluator: evaluator}
	env.Wishlist = &WishlistHandler{DB: db}
	env.Review = &ReviewHandler{DB: db, Notify: notifier}
	env.Checkout = &CheckoutHandler{
		DB:         db,
		Payments:   payments.NewDevProvider(),
		Coupons:    evaluator,
		Commission: commission.NewCalculator(db),
		Notify:     notifier,
	}
	env.Admin = &AdminHandler{DB: db, Notify: notifier}

	return env
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) createUser(email, role string) models.User {
	pwHash, err := hash.HashPassword("password")
	require.NoError(env.T, err)
	user := models.User{
		Email:        email,
		PasswordHash: pwHash,
		Name:         "Test User",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(env.T, env.DB.Create(&user).Error)
	return user
}

func (env *testEnv) createProduct(sellerID uint, name, category string, price float64, inventory uint) models.Product {
	product := models.Product{
		SellerID:    sellerID,
		Name:        name,
		Description: "test product",
		Price:       price,
		Category:    category,
		Inventory:   inventory,
		IsActive:    true,
	}
	require.NoError(env.T, env.DB.Create(&product).Error)
	return product
}

func asUser(c echo.Context, user models.User) {
	c.Set("userID", user.ID)
	c.Set("role", user.Role)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
