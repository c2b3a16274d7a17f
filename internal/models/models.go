package models

import (
	"time"
)

const (
	RoleCustomer = "customer"
	RoleSeller   = "seller"
	RoleAdmin    = "admin"
)

type User struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email         string    `gorm:"unique;not null"          json:"email"`
	PasswordHash  string    `gorm:"not null"                 json:"-"`
	Name          string    `gorm:"not null"                 json:"name"`
	Phone         string    `json:"phone,omitempty"`
	PhoneVerified bool      `gorm:"default:false"            json:"phone_verified"`
	EmailVerified bool      `gorm:"default:false"            json:"email_verified"`
	Avatar        string    `json:"avatar,omitempty"`
	Role          string    `gorm:"not null;default:customer" json:"role"`
	Language      string    `gorm:"default:en"               json:"language"`
	IsActive      bool      `gorm:"default:true"             json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}

type Address struct {
	ID         uint   `gorm:"primaryKey"     json:"id"`
	UserID     uint   `gorm:"index;not null" json:"user_id"`
	Type       string `gorm:"default:home"   json:"type"`
	Name       string `gorm:"not null"       json:"name"`
	Street     string `gorm:"not null"       json:"street"`
	City       string `gorm:"not null"       json:"city"`
	State      string `json:"state"`
	PostalCode string `gorm:"not null"       json:"postal_code"`
	Country    string `gorm:"not null"       json:"country"`
	IsDefault  bool   `gorm:"default:false"  json:"is_default"`
}

const (
	SellerStatusPending   = "pending"
	SellerStatusApproved  = "approved"
	SellerStatusRejected  = "rejected"
	SellerStatusSuspended = "suspended"
)

type SellerProfile struct {
	ID                  uint      `gorm:"primaryKey"            json:"id"`
	UserID              uint      `gorm:"uniqueIndex;not null"  json:"user_id"`
	BusinessName        string    `gorm:"not null"              json:"business_name"`
	BusinessDescription string    `gorm:"type:text"             json:"business_description"`
	BusinessEmail       string    `gorm:"not null"              json:"business_email"`
	BusinessPhone       string    `json:"business_phone"`
	BusinessAddress     string    `gorm:"type:text"             json:"business_address"`
	TaxID               string    `json:"tax_id,omitempty"`
	Website             string    `json:"website,omitempty"`
	CommissionRate      float64   `gorm:"default:10"            json:"commission_rate"`
	TotalSales          float64   `gorm:"default:0"             json:"total_sales"`
	TotalOrders         int       `gorm:"default:0"             json:"total_orders"`
	TotalProducts       int       `gorm:"default:0"             json:"total_products"`
	TotalCommission     float64   `gorm:"default:0"             json:"total_commission"`
	AverageRating       float64   `gorm:"default:0"             json:"average_rating"`
	Status              string    `gorm:"default:pending"       json:"status"`
	IsVerified          bool      `gorm:"default:false"         json:"is_verified"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type Product struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	SellerID      uint      `gorm:"index"                     json:"seller_id,omitempty"`
	Name          string    `gorm:"not null"                  json:"name"`
	Description   string    `gorm:"type:text;not null"        json:"description"`
	AIDescription string    `gorm:"type:text"                 json:"ai_generated_description,omitempty"`
	Price         float64   `gorm:"not null"                  json:"price"`
	Category      string    `gorm:"index;not null"            json:"category"`
	Brand         string    `gorm:"index"                     json:"brand"`
	Images        []string  `gorm:"serializer:json"           json:"images"`
	Tags          []string  `gorm:"serializer:json"           json:"tags"`
	Inventory     uint      `gorm:"default:0"                 json:"inventory"`
	Rating        float64   `gorm:"default:0"                 json:"rating"`
	ReviewsCount  int       `gorm:"default:0"                 json:"reviews_count"`
	IsActive      bool      `gorm:"default:true"              json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Review struct {
	ID         uint      `gorm:"primaryKey"     json:"id"`
	ProductID  uint      `gorm:"index;not null" json:"product_id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	Rating     int       `gorm:"not null"       json:"rating"`
	Comment    string    `gorm:"type:text"      json:"comment"`
	IsApproved bool      `gorm:"default:true"   json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type WishlistItem struct {
	ID        uint      `gorm:"primaryKey"                               json:"id"`
	UserID    uint      `gorm:"index:idx_wishlist_user_product;not null" json:"user_id"`
	ProductID uint      `gorm:"index:idx_wishlist_user_product;not null" json:"product_id"`
	CreatedAt time.Time `json:"added_at"`
}

type Cart struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index"      json:"user_id,omitempty"`
	SessionID string    `gorm:"index"      json:"session_id,omitempty"`
	Total     float64   `gorm:"default:0"  json:"total"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CartItem struct {
	ID        uint    `gorm:"primaryKey"                  json:"id"`
	CartID    uint    `gorm:"index;not null"              json:"cart_id"`
	ProductID uint    `gorm:"not null"                    json:"product_id"`
	Quantity  uint    `gorm:"default:1;check:quantity>0"  json:"quantity"`
	Price     float64 `gorm:"not null"                    json:"price"`
}

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"
)

type Order struct {
	ID               uint      `gorm:"primaryKey"      json:"id"`
	UserID           uint      `gorm:"index;not null"  json:"user_id"`
	TotalAmount      float64   `gorm:"not null"        json:"total_amount"`
	DiscountAmount   float64   `gorm:"default:0"       json:"discount_amount"`
	CouponCode       string    `json:"coupon_code,omitempty"`
	Status           string    `gorm:"default:pending" json:"status"`
	PaymentSessionID string    `gorm:"index"           json:"payment_session_id,omitempty"`
	TrackingNumber   string    `json:"tracking_number,omitempty"`
	ShipName         string    `json:"ship_name"`
	ShipStreet       string    `json:"ship_street"`
	ShipCity         string    `json:"ship_city"`
	ShipState        string    `json:"ship_state"`
	ShipPostalCode   string    `json:"ship_postal_code"`
	ShipCountry      string    `json:"ship_country"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type OrderItem struct {
	ID          uint    `gorm:"primaryKey"     json:"id"`
	OrderID     uint    `gorm:"index;not null" json:"order_id"`
	ProductID   uint    `gorm:"not null"       json:"product_id"`
	SellerID    uint    `gorm:"index"          json:"seller_id,omitempty"`
	ProductName string  `gorm:"not null"       json:"product_name"`
	Quantity    uint    `gorm:"not null"       json:"quantity"`
	Price       float64 `gorm:"not null"       json:"price"`
}

const (
	CouponTypePercentage   = "percentage"
	CouponTypeFixed        = "fixed"
	CouponTypeBOGO         = "bogo"
	CouponTypeFreeShipping = "free_shipping"

	CouponScopeGlobal   = "global"
	CouponScopeCategory = "category"
	CouponScopeProduct  = "product"
	CouponScopeSeller   = "seller"
)

type Coupon struct {
	ID             uint       `gorm:"primaryKey"       json:"id"`
	Code           string     `gorm:"unique;not null"  json:"code"`
	Type           string     `gorm:"not null"         json:"type"`
	Value          float64    `gorm:"not null"         json:"value"`
	Scope          string     `gorm:"default:global"   json:"scope"`
	ScopeValue     string     `json:"scope_value,omitempty"`
	MinOrderAmount *float64   `json:"min_order_amount,omitempty"`
	MaxDiscount    *float64   `json:"max_discount,omitempty"`
	UsageLimit     *int       `json:"usage_limit,omitempty"`
	UsagePerUser   *int       `json:"usage_per_user,omitempty"`
	UsedCount      int        `gorm:"default:0"        json:"used_count"`
	StartsAt       *time.Time `json:"starts_at,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	IsActive       bool       `gorm:"default:true"     json:"is_active"`
	Description    string     `json:"description,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type CouponUsage struct {
	ID             uint      `gorm:"primaryKey"     json:"id"`
	CouponID       uint      `gorm:"index;not null" json:"coupon_id"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	OrderID        uint      `gorm:"not null"       json:"order_id"`
	DiscountAmount float64   `gorm:"not null"       json:"discount_amount"`
	CreatedAt      time.Time `json:"used_at"`
}

type CommissionRule struct {
	ID             uint      `gorm:"primaryKey"    json:"id"`
	Category       *string   `gorm:"index"         json:"category,omitempty"`
	CommissionRate float64   `gorm:"not null"      json:"commission_rate"`
	MinOrderValue  *float64  `json:"min_order_value,omitempty"`
	MaxOrderValue  *float64  `json:"max_order_value,omitempty"`
	IsActive       bool      `gorm:"default:true"  json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

type Commission struct {
	ID               uint       `gorm:"primaryKey"      json:"id"`
	OrderID          uint       `gorm:"index;not null"  json:"order_id"`
	SellerID         uint       `gorm:"index;not null"  json:"seller_id"`
	OrderTotal       float64    `gorm:"not null"        json:"order_total"`
	CommissionRate   float64    `gorm:"not null"        json:"commission_rate"`
	CommissionAmount float64    `gorm:"not null"        json:"commission_amount"`
	Status           string     `gorm:"default:pending" json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
}

type PaymentTransaction struct {
	ID             uint      `gorm:"primaryKey"      json:"id"`
	SessionID      string    `gorm:"unique;not null" json:"session_id"`
	OrderID        uint      `gorm:"index"           json:"order_id,omitempty"`
	UserID         uint      `gorm:"index"           json:"user_id,omitempty"`
	CartID         uint      `json:"cart_id,omitempty"`
	Amount         float64   `gorm:"not null"        json:"amount"`
	Currency       string    `gorm:"default:usd"     json:"currency"`
	Status         string    `gorm:"default:pending" json:"status"`
	PaymentStatus  string    `gorm:"default:unpaid"  json:"payment_status"`
	CouponCode     string    `json:"coupon_code,omitempty"`
	DiscountAmount float64   `gorm:"default:0"       json:"discount_amount"`
	ShipAddressID  uint      `json:"ship_address_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Notification struct {
	ID        uint       `gorm:"primaryKey"     json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	Type      string     `gorm:"not null"       json:"type"`
	Channel   string     `gorm:"not null"       json:"channel"`
	Title     string     `gorm:"not null"       json:"title"`
	Message   string     `gorm:"type:text"      json:"message"`
	Data      string     `gorm:"type:text"      json:"data,omitempty"`
	IsRead    bool       `gorm:"default:false"  json:"is_read"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type PushSubscription struct {
	ID        uint      `gorm:"primaryKey"     json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Endpoint  string    `gorm:"not null"       json:"endpoint"`
	P256dh    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	CreatedAt time.Time `json:"created_at"`
}

type VerificationCode struct {
	ID         uint       `gorm:"primaryKey"                              json:"id"`
	Identifier string     `gorm:"index:idx_verification_target;not null"  json:"identifier"`
	Purpose    string     `gorm:"index:idx_verification_target;not null"  json:"purpose"`
	HashedCode string     `gorm:"not null"                                json:"-"`
	Method     string     `gorm:"not null"                                json:"method"`
	Verified   bool       `gorm:"default:false"                           json:"verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	Attempts   int        `gorm:"default:0"                               json:"attempts"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `gorm:"not null"                                json:"expires_at"`
}

type AdminActionLog struct {
	ID          uint      `gorm:"primaryKey"     json:"id"`
	AdminID     uint      `gorm:"index;not null" json:"admin_id"`
	ActionType  string    `gorm:"not null"       json:"action_type"`
	Description string    `gorm:"type:text"      json:"description"`
	Metadata    string    `gorm:"type:text"      json:"metadata,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
