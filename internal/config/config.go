package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sevenx/marketplace/internal/models"
)

type Config struct {
	DB_HOST        string
	DB_PORT        string
	DB_USER        string
	DB_PASSWORD    string
	DB_NAME        string
	ES_URL         string
	ES_USER        string
	ES_PASSWORD    string
	JWT_SECRET     string
	REFRESH_SECRET string
	KAFKA_ADDRESS  string
	SMTP_HOST      string
	SMTP_PORT      string
	SMTP_USER      string
	SMTP_PASSWORD  string
	SMS_API_URL    string
	SMS_API_KEY    string
	SMS_SENDER     string
	STRIPE_API_KEY string
	LLM_API_URL    string
	LLM_API_KEY    string
	LLM_MODEL      string
	LOG_LEVEL      string
	// DEV_CODE_ECHO exposes generated verification codes in API responses.
	// Must stay off in production.
	DEV_CODE_ECHO bool
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DB_HOST:        os.Getenv("DB_HOST"),
		DB_PORT:        os.Getenv("DB_PORT"),
		DB_USER:        os.Getenv("DB_USER"),
		DB_PASSWORD:    os.Getenv("DB_PASSWORD"),
		DB_NAME:        os.Getenv("DB_NAME"),
		ES_URL:         os.Getenv("ES_URL"),
		ES_USER:        os.Getenv("ES_USER"),
		ES_PASSWORD:    os.Getenv("ES_PASSWORD"),
		JWT_SECRET:     os.Getenv("JWT_SECRET"),
		REFRESH_SECRET: os.Getenv("REFRESH_SECRET"),
		KAFKA_ADDRESS:  os.Getenv("KAFKA_ADDRESS"),
		SMTP_HOST:      os.Getenv("SMTP_HOST"),
		SMTP_PORT:      os.Getenv("SMTP_PORT"),
		SMTP_USER:      os.Getenv("SMTP_USER"),
		SMTP_PASSWORD:  os.Getenv("SMTP_PASSWORD"),
		SMS_API_URL:    os.Getenv("SMS_API_URL"),
		SMS_API_KEY:    os.Getenv("SMS_API_KEY"),
		SMS_SENDER:     os.Getenv("SMS_SENDER"),
		STRIPE_API_KEY: os.Getenv("STRIPE_API_KEY"),
		LLM_API_URL:    os.Getenv("LLM_API_URL"),
		LLM_API_KEY:    os.Getenv("LLM_API_KEY"),
		LLM_MODEL:      os.Getenv("LLM_MODEL"),
		LOG_LEVEL:      os.Getenv("LOG_LEVEL"),
		DEV_CODE_ECHO:  os.Getenv("DEV_CODE_ECHO") == "true",
	}

	return config, nil
}

func InitDB(configuration *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		configuration.DB_USER,
		configuration.DB_PASSWORD,
		configuration.DB_HOST,
		configuration.DB_PORT,
		configuration.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Address{},
		&models.SellerProfile{},
		&models.Product{},
		&models.Review{},
		&models.WishlistItem{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Coupon{},
		&models.CouponUsage{},
		&models.CommissionRule{},
		&models.Commission{},
		&models.PaymentTransaction{},
		&models.Notification{},
		&models.PushSubscription{},
		&models.VerificationCode{},
		&models.AdminActionLog{},
	)
}
