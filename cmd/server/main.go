package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/sevenx/marketplace/internal/ai"
	"github.com/sevenx/marketplace/internal/commission"
	"github.com/sevenx/marketplace/internal/config"
	"github.com/sevenx/marketplace/internal/coupon"
	"github.com/sevenx/marketplace/internal/es"
	"github.com/sevenx/marketplace/internal/handlers"
	"github.com/sevenx/marketplace/internal/logging"
	"github.com/sevenx/marketplace/internal/middleware/auth"
	loggingmw "github.com/sevenx/marketplace/internal/middleware/logging"
	"github.com/sevenx/marketplace/internal/mykafka"
	"github.com/sevenx/marketplace/internal/notify"
	"github.com/sevenx/marketplace/internal/payments"
	httpserver "github.com/sevenx/marketplace/internal/transport/http"
	"github.com/sevenx/marketplace/internal/verification"
)

const productsIndex = "products"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LOG_LEVEL)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	producer := mykafka.NewProducer([]string{cfg.KAFKA_ADDRESS})
	defer producer.Close()

	esClient, err := es.NewClient(cfg)
	if err != nil {
		// Search degrades to SQL; everything else keeps working.
		logger.Error("elasticsearch unavailable", "error", err)
		esClient = nil
	}

	verify := verification.NewService(db)
	verify.DevEcho = cfg.DEV_CODE_ECHO
	if cfg.SMS_API_URL != "" {
		verify.SMS = verification.NewGatewaySMSSender(cfg.SMS_API_URL, cfg.SMS_API_KEY, cfg.SMS_SENDER)
	}
	if cfg.SMTP_HOST != "" {
		verify.Email = &verification.SMTPSender{
			Host:     cfg.SMTP_HOST,
			Port:     cfg.SMTP_PORT,
			User:     cfg.SMTP_USER,
			Password: cfg.SMTP_PASSWORD,
		}
	}

	var provider payments.Provider
	if cfg.STRIPE_API_KEY != "" {
		provider = payments.NewStripeProvider(cfg.STRIPE_API_KEY)
	} else {
		logger.Warn("no stripe key configured, using the dev payment provider")
		provider = payments.NewDevProvider()
	}

	aiClient := ai.NewClient(cfg.LLM_API_URL, cfg.LLM_API_KEY, cfg.LLM_MODEL)

	notifier := notify.NewService(db, producer)
	evaluator := coupon.NewEvaluator(db)
	calculator := commission.NewCalculator(db)

	token := auth.TokenService{
		DB:            db,
		JWTSecret:     []byte(cfg.JWT_SECRET),
		RefreshSecret: []byte(cfg.REFRESH_SECRET),
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(echomw.Recover())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Token: token,
		Auth: &handlers.AuthHandler{
			DB:            db,
			JWTSecret:     []byte(cfg.JWT_SECRET),
			RefreshSecret: []byte(cfg.REFRESH_SECRET),
			Producer:      producer,
			Verify:        verify,
		},
		Verification: &handlers.VerificationHandler{DB: db, Verify: verify},
		Profile:      &handlers.ProfileHandler{DB: db},
		Seller:       &handlers.SellerHandler{DB: db, Notify: notifier},
		Product: &handlers.ProductHandler{
			DB:      db,
			ES:      esClient,
			ESIndex: productsIndex,
			AI:      aiClient,
		},
		Search:   &handlers.SearchHandler{DB: db, ES: esClient, ESIndex: productsIndex},
		Review:   &handlers.ReviewHandler{DB: db, Notify: notifier},
		Wishlist: &handlers.WishlistHandler{DB: db},
		Cart:     &handlers.CartHandler{DB: db},
		Checkout: &handlers.CheckoutHandler{
			DB:         db,
			Payments:   provider,
			Coupons:    evaluator,
			Commission: calculator,
			Notify:     notifier,
			SuccessURL: os.Getenv("CHECKOUT_SUCCESS_URL"),
			CancelURL:  os.Getenv("CHECKOUT_CANCEL_URL"),
		},
		Order:         &handlers.OrderHandler{DB: db, Notify: notifier},
		Coupon:        &handlers.CouponHandler{DB: db, Evaluator: evaluator},
		Notifications: &handlers.NotificationHandler{DB: db},
		Admin:         &handlers.AdminHandler{DB: db, Notify: notifier},
	})

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
