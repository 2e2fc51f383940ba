package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spartak030506-hash/fastapi-shop-1/internal/domain"
	"github.com/spartak030506-hash/fastapi-shop-1/internal/service"
	"github.com/spartak030506-hash/fastapi-shop-1/pkg/health"
	"github.com/spartak030506-hash/fastapi-shop-1/pkg/middleware"
)

// catalogCacheMaxAge is the Cache-Control max-age, in seconds, for public
// catalog reads.
const catalogCacheMaxAge = 60

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Auth          *service.AuthService
	Users         *service.UserService
	Categories    *service.CategoryService
	Products      *service.ProductService
	HealthHandler *health.Handler
	Logger        *slog.Logger
	CORS          middleware.CORSConfig
}

// NewRouter creates a chi router with all shop routes registered.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(deps.CORS))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.PrometheusMetrics("shop"))

	// Health check endpoints
	r.Get("/health/live", deps.HealthHandler.LivenessHandler())
	r.Get("/health/ready", deps.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Token validator that bridges to the auth service. Tokens of deactivated
	// or deleted accounts fail here even before expiry.
	tokenValidator := func(ctx context.Context, token string) (*middleware.Claims, error) {
		user, err := deps.Auth.Authenticate(ctx, token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: user.ID,
			Email:  user.Email,
			Role:   user.Role,
		}, nil
	}

	authHandler := NewAuthHandler(deps.Auth)
	userHandler := NewUserHandler(deps.Users, deps.Auth)
	categoryHandler := NewCategoryHandler(deps.Categories)
	productHandler := NewProductHandler(deps.Products)

	// Auth endpoints (public)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.RefreshToken)
		r.Post("/logout", authHandler.Logout)

		// Authenticated auth endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))
			r.Use(middleware.RequestLogger(deps.Logger))

			r.Post("/logout-all", authHandler.LogoutAll)
			r.Post("/change-password", authHandler.ChangePassword)
		})
	})

	// User profile endpoints (auth required)
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))
		r.Use(middleware.RequestLogger(deps.Logger))

		r.Get("/me", userHandler.GetProfile)
		r.Put("/me", userHandler.UpdateProfile)
		r.Delete("/me", userHandler.DeleteAccount)
	})

	// Catalog endpoints. Reads are public, writes require the admin role.
	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(catalogCacheMaxAge))

			r.Get("/", categoryHandler.List)
			r.Get("/{id}", categoryHandler.Get)
			r.Get("/{id}/children", categoryHandler.ListChildren)
			r.Get("/slug/{slug}", categoryHandler.GetBySlug)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))
			r.Use(middleware.RequireRole(domain.RoleAdmin))
			r.Use(middleware.RequestLogger(deps.Logger))

			r.Post("/", categoryHandler.Create)
			r.Put("/{id}", categoryHandler.Update)
			r.Delete("/{id}", categoryHandler.Delete)
		})
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(catalogCacheMaxAge))

			r.Get("/", productHandler.List)
			r.Get("/{id}", productHandler.Get)
			r.Get("/slug/{slug}", productHandler.GetBySlug)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))
			r.Use(middleware.RequireRole(domain.RoleAdmin))
			r.Use(middleware.RequestLogger(deps.Logger))

			r.Post("/", productHandler.Create)
			r.Put("/{id}", productHandler.Update)
			r.Delete("/{id}", productHandler.Delete)
			r.Post("/{id}/stock/increase", productHandler.IncreaseStock)
			r.Post("/{id}/stock/decrease", productHandler.DecreaseStock)
		})
	})

	// Admin endpoints
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))
		r.Use(middleware.RequireRole(domain.RoleAdmin))
		r.Use(middleware.RequestLogger(deps.Logger))

		r.Get("/users", userHandler.ListUsers)
		r.Get("/users/{id}", userHandler.GetUser)
		r.Get("/products/low-stock", productHandler.ListLowStock)
		r.Delete("/sessions/expired", authHandler.SweepExpiredSessions)
	})

	return r
}
