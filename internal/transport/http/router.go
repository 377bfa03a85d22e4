package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/frelsi/frelsi-api/internal/application/auth"
	"github.com/frelsi/frelsi-api/internal/application/item"
	"github.com/frelsi/frelsi-api/internal/config"
	jwtinfra "github.com/frelsi/frelsi-api/internal/infrastructure/jwt"
	"github.com/frelsi/frelsi-api/internal/transport/http/handler"
	"github.com/frelsi/frelsi-api/internal/transport/http/middleware"
)

// Deps bundles everything the router needs wired in.
type Deps struct {
	Config      *config.Config
	JWTProvider *jwtinfra.Provider
	AuthService auth.Service
	ItemService item.Service
}

// NewRouter assembles the full route table. Admin routes sit behind the JWT
// middleware; the code-request and verify endpoints carry their own per-email
// throttles inside the handler, and likes get a per-address token bucket.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	requestLimiter := middleware.NewWindowLimiter(3, 15*time.Minute)
	verifyLimiter := middleware.NewWindowLimiter(10, 15*time.Minute)
	likesLimiter := middleware.NewIPRateLimiter(rate.Every(4*time.Second), 15)

	authHandler := handler.NewAuthHandler(deps.AuthService, requestLimiter, verifyLimiter)
	itemHandler := handler.NewItemHandler(deps.ItemService)
	requireAuth := middleware.Auth(deps.JWTProvider)

	r.NotFound(handler.NotFound)
	r.Get("/", handler.Root)
	r.Get("/health", handler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/request-code", authHandler.RequestCode)
			r.Post("/verify-code", authHandler.VerifyCode)
			r.Get("/status", authHandler.Status)
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", itemHandler.ListPublic)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/admin", itemHandler.ListAll)
				r.Post("/", itemHandler.Create)
				r.Put("/{id}", itemHandler.Update)
				r.Patch("/{id}/toggle-public", itemHandler.TogglePublic)
				r.Delete("/{id}", itemHandler.Delete)
			})

			r.Get("/{id}", itemHandler.Get)
		})

		r.With(likesLimiter.Middleware).Post("/likes/{id}", itemHandler.Like)
	})

	return r
}
