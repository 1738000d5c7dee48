package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keepsakeshop/keepsake-backend/api/controllers"
	"github.com/keepsakeshop/keepsake-backend/api/middleware"
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
	"github.com/keepsakeshop/keepsake-backend/pkg/enums"
	"github.com/keepsakeshop/keepsake-backend/pkg/logger"
	pkgredis "github.com/keepsakeshop/keepsake-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs. Grouping them in one
// struct keeps the main wiring readable as the service list grows.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *pkgredis.Client
	SessionChecker session.AccessSessionChecker

	Auth            authsvc.Service
	Users           userrepo.Repository
	Products        productsvc.Service
	Reviews         reviewsvc.Service
	Cart            cartsvc.Service
	Checkout        checkoutsvc.Service
	Orders          ordersvc.Service
	Reminders       remindersvc.Service
	Recommendations recsvc.Service
	Newsletter      newslettersvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Use(middleware.GuestCookie(cfg.Guest))
		r.Use(middleware.Idempotency(deps.Redis, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
			Post("/register", controllers.AuthRegister(deps.Auth, deps.Cart, cfg, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.Auth, deps.Cart, cfg, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Auth, cfg.JWT, logg))
		r.Post("/forgot-password", controllers.AuthForgotPassword(deps.Auth, logg))
		r.Post("/reset-password", controllers.AuthResetPassword(deps.Auth, logg))
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", controllers.ProductsList(deps.Products, logg))
		r.Get("/{productId}", controllers.ProductDetail(deps.Products, logg))
		r.Get("/{productId}/similar", controllers.ProductSimilar(deps.Products, logg))
		r.Get("/{productId}/reviews", controllers.ReviewsList(deps.Reviews, logg))
		r.With(middleware.Auth(cfg.JWT, deps.SessionChecker, logg)).
			Post("/{productId}/reviews", controllers.ReviewCreate(deps.Reviews, deps.Users, logg))
		r.With(middleware.Auth(cfg.JWT, deps.SessionChecker, logg)).
			Delete("/{productId}/reviews/{reviewId}", controllers.ReviewDelete(deps.Reviews, logg))
	})

	r.Post("/api/recommendations", controllers.Recommendations(deps.Recommendations, logg))
	r.With(middleware.Idempotency(deps.Redis, logg)).
		Post("/api/newsletter", controllers.NewsletterSubscribe(deps.Newsletter, logg))

	// The cart serves guests and signed-in users on the same routes.
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(middleware.GuestCookie(cfg.Guest))
		r.Use(middleware.OptionalAuth(cfg.JWT, deps.SessionChecker, logg))
		r.Get("/", controllers.CartFetch(deps.Cart, cfg, logg))
		r.Post("/", controllers.CartAddItem(deps.Cart, cfg, logg))
		r.Put("/", controllers.CartSetQuantity(deps.Cart, cfg, logg))
		r.Delete("/", controllers.CartRemoveItem(deps.Cart, cfg, logg))
		r.With(
			middleware.Auth(cfg.JWT, deps.SessionChecker, logg),
			middleware.Idempotency(deps.Redis, logg),
		).Post("/merge", controllers.CartMerge(deps.Cart, cfg, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Get("/users/profile", controllers.Profile(deps.Users, logg))

		r.Post("/checkout", controllers.CheckoutCreate(deps.Checkout, logg))
		r.Put("/checkout/{checkoutId}/pay", controllers.CheckoutPay(deps.Checkout, logg))
		r.Post("/checkout/{checkoutId}/finalize", controllers.CheckoutFinalize(deps.Checkout, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/my-orders", controllers.MyOrders(deps.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
		})

		r.Route("/reminders", func(r chi.Router) {
			r.Get("/", controllers.RemindersList(deps.Reminders, logg))
			r.Post("/", controllers.ReminderCreate(deps.Reminders, logg))
			r.Put("/{reminderId}", controllers.ReminderUpdate(deps.Reminders, logg))
			r.Delete("/{reminderId}", controllers.ReminderDelete(deps.Reminders, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))
		r.Use(middleware.RequireRole(enums.UserRoleAdmin.String(), logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrdersList(deps.Orders, logg))
			r.Put("/{orderId}", controllers.AdminUpdateOrderStatus(deps.Orders, logg))
			r.Delete("/{orderId}", controllers.AdminDeleteOrder(deps.Orders, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateProduct(deps.Products, logg))
			r.Put("/{productId}", controllers.AdminUpdateProduct(deps.Products, logg))
			r.Delete("/{productId}", controllers.AdminDeleteProduct(deps.Products, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminUsersList(deps.Users, logg))
			r.Post("/", controllers.AdminCreateUser(deps.Users, cfg, logg))
			r.Put("/{userId}", controllers.AdminUpdateUser(deps.Users, cfg, logg))
			r.Delete("/{userId}", controllers.AdminDeleteUser(deps.Users, logg))
		})
	})

	return r
}
