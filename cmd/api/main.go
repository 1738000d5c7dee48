package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/keepsakeshop/keepsake-backend/api/routes"
	authsvc "github.com/keepsakeshop/keepsake-backend/internal/auth"
	cartsvc "github.com/keepsakeshop/keepsake-backend/internal/cart"
	checkoutsvc "github.com/keepsakeshop/keepsake-backend/internal/checkout"
	newslettersvc "github.com/keepsakeshop/keepsake-backend/internal/newsletter"
	ordersvc "github.com/keepsakeshop/keepsake-backend/internal/orders"
	productsvc "github.com/keepsakeshop/keepsake-backend/internal/products"
	recsvc "github.com/keepsakeshop/keepsake-backend/internal/recommendations"
	remindersvc "github.com/keepsakeshop/keepsake-backend/internal/reminders"
	reviewsvc "github.com/keepsakeshop/keepsake-backend/internal/reviews"
	userrepo "github.com/keepsakeshop/keepsake-backend/internal/users"
	"github.com/keepsakeshop/keepsake-backend/pkg/auth/session"
	"github.com/keepsakeshop/keepsake-backend/pkg/config"
	"github.com/keepsakeshop/keepsake-backend/pkg/db"
	"github.com/keepsakeshop/keepsake-backend/pkg/logger"
	"github.com/keepsakeshop/keepsake-backend/pkg/migrate"
	"github.com/keepsakeshop/keepsake-backend/pkg/outbox"
	"github.com/keepsakeshop/keepsake-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	outboxService, err := outbox.NewService(outbox.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox service", err)
		os.Exit(1)
	}

	usersRepo := userrepo.NewRepository(dbClient.DB())
	productsRepo := productsvc.NewRepository(dbClient.DB())
	cartRepo := cartsvc.NewRepository(dbClient.DB())
	ordersRepo := ordersvc.NewRepository(dbClient.DB())

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		UserRepo:       usersRepo,
		ResetRepo:      authsvc.NewResetRepository(dbClient.DB()),
		SessionManager: sessionManager,
		TxRunner:       dbClient,
		Outbox:         outboxService,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	productService, err := productsvc.NewService(productsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	reviewService, err := reviewsvc.NewService(reviewsvc.NewRepository(dbClient.DB()), productsRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create review service", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(cartRepo, dbClient, productsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.NewRepository(dbClient.DB()), ordersRepo, cartRepo, dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	orderService, err := ordersvc.NewService(ordersRepo, dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	reminderService, err := remindersvc.NewService(remindersvc.NewRepository(dbClient.DB()), dbClient, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create reminder service", err)
		os.Exit(1)
	}

	recommendationService, err := recsvc.NewService(recsvc.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create recommendation service", err)
		os.Exit(1)
	}

	newsletterService, err := newslettersvc.NewService(newslettersvc.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create newsletter service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			SessionChecker:  sessionManager,
			Auth:            authService,
			Users:           usersRepo,
			Products:        productService,
			Reviews:         reviewService,
			Cart:            cartService,
			Checkout:        checkoutService,
			Orders:          orderService,
			Reminders:       reminderService,
			Recommendations: recommendationService,
			Newsletter:      newsletterService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
