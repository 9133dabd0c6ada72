package api

import (
	"net/http"
	"time"

	"employee_manager/internal/api/handler"
	"employee_manager/internal/app/service"
	"employee_manager/internal/common"
	"employee_manager/internal/common/security"
	"employee_manager/internal/platform/config"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	cfg *config.Config,
	jwt *security.JWTManager,
	authService *service.AuthService,
	employeeService *service.EmployeeService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	// Puts verified claims in the request context; enforcement happens in
	// the Authenticator middleware on the routes that need it.
	r.Use(jwtauth.Verifier(jwt.TokenAuth))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithJSON(w, http.StatusOK, map[string]string{
			"message": "Employee Management API is running",
		})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Uploaded pictures are served back by filename only.
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir)))
	r.Handle("/uploads/*", fileServer)

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(authService)
		v1.Route("/user", authHandler.RegisterRoutes)

		employeeHandler := handler.NewEmployeeHandler(employeeService, cfg.MaxUploadBytes)
		v1.Route("/emp", employeeHandler.RegisterRoutes)
	})

	return r
}
