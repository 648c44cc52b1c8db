package api

import (
	"database/sql"
	"net/http"
	"time"

	"contacthub/internal/api/handler"
	"contacthub/internal/api/middleware"
	"contacthub/internal/app/service"
	"contacthub/internal/common"
	"contacthub/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(
	db *sql.DB,
	authService *service.AuthService,
	userService *service.UserService,
	contactService *service.ContactService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(metrics.Instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check exercises the database, not just the process.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			common.RespondWithError(w, http.StatusInternalServerError, "Error connecting to the database: "+err.Error())
			return
		}
		common.RespondWithMessage(w, http.StatusOK, "OK")
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(apiRouter chi.Router) {
		// Auth routes (public)
		authHandler := handler.NewAuthHandler(authService)
		apiRouter.Route("/auth", authHandler.RegisterRoutes)

		// User routes (authenticated)
		userHandler := handler.NewUserHandler(userService)
		apiRouter.Route("/users", func(users chi.Router) {
			users.Use(middleware.Authenticator(authService))
			userHandler.RegisterRoutes(users)
		})

		// Contact routes (authenticated)
		contactHandler := handler.NewContactHandler(contactService)
		apiRouter.Route("/contacts", func(contacts chi.Router) {
			contacts.Use(middleware.Authenticator(authService))
			contactHandler.RegisterRoutes(contacts)
		})
	})

	return r
}
