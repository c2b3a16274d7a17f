package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sevenx/marketplace/internal/handlers"
	"github.com/sevenx/marketplace/internal/middleware/auth"
)

type Deps struct {
	Token auth.TokenService

	Auth          *handlers.AuthHandler
	Verification  *handlers.VerificationHandler
	Profile       *handlers.ProfileHandler
	Seller        *handlers.SellerHandler
	Product       *handlers.ProductHandler
	Search        *handlers.SearchHandler
	Review        *handlers.ReviewHandler
	Wishlist      *handlers.WishlistHandler
	Cart          *handlers.CartHandler
	Checkout      *handlers.CheckoutHandler
	Order         *handlers.OrderHandler
	Coupon        *handlers.CouponHandler
	Notifications *handlers.NotificationHandler
	Admin         *handlers.AdminHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	// Public.
	e.POST("/auth/register", d.Auth.Register)
	e.POST("/auth/login", d.Auth.Login)
	e.POST("/auth/forgot-password", d.Auth.ForgotPassword)
	e.POST("/auth/reset-password", d.Auth.ResetPassword)

	e.POST("/verification/phone/send", d.Verification.SendPhoneVerification)
	e.POST("/verification/phone/verify", d.Verification.VerifyPhone)
	e.POST("/verification/email/send", d.Verification.SendEmailVerification)
	e.POST("/verification/email/verify", d.Verification.VerifyEmail)

	e.GET("/products", d.Product.List)
	e.GET("/products/:id", d.Product.Get)
	e.GET("/products/:id/reviews", d.Review.List)
	e.GET("/categories", d.Product.Categories)
	e.GET("/brands", d.Product.Brands)
	e.GET("/search", d.Search.Search)
	e.GET("/sellers/:id", d.Seller.PublicProfile)

	e.POST("/payment/webhook", d.Checkout.StripeWebhook)

	// Guest-friendly: cart and coupon validation work without a login.
	optional := e.Group("")
	optional.Use(d.Token.OptionalAuthMiddleware)
	optional.GET("/cart", d.Cart.Get)
	optional.POST("/cart/items", d.Cart.AddItem)
	optional.PATCH("/cart/items/:itemID", d.Cart.UpdateItem)
	optional.DELETE("/cart/items/:itemID", d.Cart.RemoveItem)
	optional.DELETE("/cart", d.Cart.Clear)
	optional.POST("/coupons/validate", d.Coupon.Validate)
	optional.GET("/recommendations", d.Product.Recommendations)

	// Authenticated users.
	private := e.Group("")
	private.Use(d.Token.AutoRefreshMiddleware)
	private.POST("/auth/logout", d.Auth.LogOut)
	private.GET("/auth/me", d.Auth.Me)
	private.POST("/auth/change-password", d.Auth.ChangePassword)

	private.GET("/profile", d.Profile.GetProfile)
	private.PATCH("/profile", d.Profile.UpdateProfile)
	private.PUT("/profile/language", d.Profile.UpdateLanguage)
	private.POST("/profile/addresses", d.Profile.AddAddress)
	private.DELETE("/profile/addresses/:id", d.Profile.DeleteAddress)

	private.GET("/wishlist", d.Wishlist.List)
	private.POST("/wishlist/:id", d.Wishlist.Add)
	private.DELETE("/wishlist/:id", d.Wishlist.Remove)

	private.POST("/products/:id/reviews", d.Review.Create)

	private.POST("/checkout/session", d.Checkout.CreateSession)
	private.GET("/checkout/session/:sessionID", d.Checkout.GetStatus)

	private.GET("/orders", d.Order.List)
	private.GET("/orders/:id", d.Order.Get)

	private.GET("/notifications", d.Notifications.List)
	private.POST("/notifications/:id/read", d.Notifications.MarkRead)
	private.POST("/notifications/read-all", d.Notifications.MarkAllRead)
	private.POST("/notifications/push/subscribe", d.Notifications.SubscribePush)

	private.POST("/seller/apply", d.Seller.Apply)

	// Sellers.
	seller := e.Group("/seller")
	seller.Use(d.Token.AutoRefreshMiddlewareSeller)
	seller.GET("/profile", d.Seller.GetProfile)
	seller.PATCH("/profile", d.Seller.UpdateProfile)
	seller.GET("/dashboard", d.Seller.Dashboard)
	seller.GET("/products", d.Product.MyProducts)
	seller.POST("/products", d.Product.Create)
	seller.PATCH("/products/:id", d.Product.Update)
	seller.DELETE("/products/:id", d.Product.Delete)
	seller.GET("/orders", d.Order.SellerOrders)

	// Admins.
	admin := e.Group("/admin")
	admin.Use(d.Token.AutoRefreshMiddlewareAdmin)
	admin.GET("/users", d.Admin.ListUsers)
	admin.PATCH("/users/:id/status", d.Admin.UpdateUserStatus)
	admin.PATCH("/users/:id/role", d.Admin.UpdateUserRole)
	admin.GET("/sellers", d.Admin.ListSellers)
	admin.PATCH("/sellers/:id/status", d.Admin.UpdateSellerStatus)
	admin.PATCH("/sellers/:id/commission", d.Admin.UpdateSellerCommission)
	admin.GET("/commission-rules", d.Admin.ListCommissionRules)
	admin.POST("/commission-rules", d.Admin.CreateCommissionRule)
	admin.DELETE("/commission-rules/:id", d.Admin.DeleteCommissionRule)
	admin.GET("/orders", d.Admin.ListOrders)
	admin.PATCH("/orders/:id/status", d.Order.UpdateStatus)
	admin.GET("/coupons", d.Coupon.List)
	admin.POST("/coupons", d.Coupon.Create)
	admin.PATCH("/coupons/:id", d.Coupon.Update)
	admin.DELETE("/coupons/:id", d.Coupon.Delete)
	admin.GET("/statistics", d.Admin.Statistics)
	admin.GET("/action-logs", d.Admin.ActionLogs)
}
