// This is the main entry point of the Jobbee API application.
// It is responsible for loading configuration, opening the database pool,
// running migrations, wiring the services and handlers together, setting up
// the HTTP router and middleware, and starting the server with graceful
// shutdown. The Express implementation this port follows did the same work
// across `app.js` and `server.js`; here it is one bootstrap function.
// @title Jobbee API
// @version 1.0
// @description REST API for job postings: searchable listings, employer accounts and résumé applications.
// @contact.name API Support
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/jobbee-go/apperror"
	"github.com/user/jobbee-go/auth"
	"github.com/user/jobbee-go/background"
	"github.com/user/jobbee-go/config"
	"github.com/user/jobbee-go/db"
	_ "github.com/user/jobbee-go/docs" // Generated Swagger docs
	"github.com/user/jobbee-go/geocoder"
	"github.com/user/jobbee-go/jobs"
	"github.com/user/jobbee-go/mailer"
	"github.com/user/jobbee-go/uploads"
	"github.com/user/jobbee-go/users"
)

func main() {
	// In development the environment comes from a .env file; in production the
	// variables are set directly and the file is simply absent.
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading it: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to create database pool: %v", err)
	}
	defer pool.Close()

	// The full-text and radius predicates need pg_trgm, cube and earthdistance.
	if err := db.EnableExtensions(pool); err != nil {
		log.Fatalf("Failed to enable extensions: %v", err)
	}
	if err := db.RunMigrations(cfg.DB, "./migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Collaborators shared by the services.
	geo, err := geocoder.New(cfg.Geocoder)
	if err != nil {
		log.Fatalf("Failed to configure geocoder: %v", err)
	}
	mail := mailer.New(cfg.Mail)
	files, err := uploads.NewStore(cfg.Uploads)
	if err != nil {
		log.Fatalf("Failed to open upload store: %v", err)
	}

	production := cfg.Server.IsProduction()
	rsp := apperror.NewResponder(production)

	// Services and handlers, wired by hand: each service gets exactly the
	// collaborators it needs, each handler set gets its service.
	authService := auth.NewService(pool, cfg.Auth, mail)
	authHandlers := auth.NewHandlers(authService, rsp, cfg.Auth, production)

	userService := users.NewService(pool, files)
	userHandlers := users.NewHandlers(userService, rsp)

	jobService := jobs.NewService(pool, geo, files)
	jobHandlers := jobs.NewHandlers(jobService, rsp)

	// Background housekeeping for the reset-token lifecycle.
	sweeperStopChan := make(chan struct{})
	sweeperWg := background.StartResetTokenSweeper(pool, sweeperStopChan)

	r := chi.NewRouter()

	// Chi requires all middleware to be registered before any routes.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Panic recovery that keeps the JSON error envelope: without this a panic
	// would surface as a bare 500 with an empty body.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				if rvr := recover(); rvr != nil {
					log.Printf("Panic: %+v", rvr)
					writeError(ww, apperror.NewInternalError("internal server error", nil), production)
				}
			}()
			next.ServeHTTP(ww, r)
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	authenticated := auth.Middleware(cfg.Auth, authService, rsp)

	r.Route("/api/v1", func(r chi.Router) {
		// Public posting routes.
		r.Get("/jobs", jobHandlers.HandleListJobs())
		r.Get("/jobs/{zipcode}/{distance}", jobHandlers.HandleJobsInRadius())
		r.Get("/job/{id}/{slug}", jobHandlers.HandleGetJob())
		r.Get("/stats/{topic}", jobHandlers.HandleStats())

		// Public account routes.
		r.Post("/user/create", authHandlers.HandleRegister())
		r.Post("/user/login", authHandlers.HandleLogin())
		r.Post("/user/password/forgot", authHandlers.HandleForgotPassword())
		r.Put("/user/password/reset/{token}", authHandlers.HandleResetPassword())

		// Routes behind the authentication gatekeeper.
		r.Group(func(r chi.Router) {
			r.Use(authenticated)

			r.Get("/user/logout", authHandlers.HandleLogout())
			r.Get("/user/get", userHandlers.HandleGetProfile())
			r.Put("/user/update", userHandlers.HandleUpdateUser())
			r.Delete("/user/delete", userHandlers.HandleDeleteUser(production))
			r.Put("/user/password/update", authHandlers.HandleUpdatePassword())

			// Posting management is for employers and admins.
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRoles(rsp, auth.RoleEmployer, auth.RoleAdmin))
				r.Post("/job/new", jobHandlers.HandleCreateJob())
				r.Put("/job/{id}", jobHandlers.HandleUpdateJob())
				r.Delete("/job/{id}", jobHandlers.HandleDeleteJob())
			})

			// Applying is for job seekers only.
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRoles(rsp, auth.RoleUser))
				r.Put("/job/{id}/apply", jobHandlers.HandleApplyToJob())
				r.Get("/jobs/applied", jobHandlers.HandleAppliedJobs())
			})

			// Account administration.
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRoles(rsp, auth.RoleAdmin))
				r.Get("/users", userHandlers.HandleListUsers())
				r.Delete("/user/{id}", userHandlers.HandleAdminDeleteUser())
			})
		})
	})

	// Unmatched routes answer with the JSON envelope too, like the original
	// catch-all handler did.
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, apperror.NewNotFoundError(fmt.Sprintf("%s route not found", req.URL.Path), nil), production)
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s in %s mode", addr, cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop the sweeper first and wait for any sweep in flight, so the pool is
	// not closed under it.
	close(sweeperStopChan)
	sweeperWg.Wait()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully")
}

// writeError is a local helper for the panic recovery middleware and the
// not-found handler, which run outside any handler's Responder.
func writeError(w http.ResponseWriter, appErr *apperror.AppError, production bool) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	if err := json.NewEncoder(w).Encode(appErr.ToResponse(!production)); err != nil {
		http.Error(w, `{"success":false,"message":"failed to encode error response"}`, http.StatusInternalServerError)
	}
}
