// GetCampWood API server: registration and login, geotagged firewood
// listings with ownership and proximity rules, a geocoding proxy and a
// listing change event stream, backed by PostgreSQL.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/user/campwood-go/apperror"
	"github.com/user/campwood-go/auth"
	"github.com/user/campwood-go/background"
	"github.com/user/campwood-go/broadcast"
	"github.com/user/campwood-go/config"
	"github.com/user/campwood-go/db"
	"github.com/user/campwood-go/geo"
	"github.com/user/campwood-go/locations"
	"github.com/user/campwood-go/users"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug(".env file not loaded")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		log.WithError(err).Fatal("failed to create database pool")
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.DB, "./migrations"); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	events := broadcast.NewBroadcaster(log)

	authService := auth.NewService(pool, *cfg.Auth, log)
	authHandlers := auth.NewHandlers(authService)

	userService := users.NewService(pool, log)
	userHandlers := users.NewHandlers(userService, events)

	locationService := locations.NewService(pool, log)
	locationHandlers := locations.NewHandlers(locationService, events)

	geoClient := geo.NewClient(cfg.Geo, log)
	geoHandlers := geo.NewHandlers(geoClient)

	sweeper := background.NewSweeper(pool, cfg.Moderation, events, log)
	if err := sweeper.Start(); err != nil {
		log.WithError(err).Fatal("failed to start moderation sweeper")
	}

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Convert panics that escape handlers into the standard error envelope.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				if rvr := recover(); rvr != nil {
					log.WithField("panic", rvr).Error("panic in handler")
					if ww.Status() == 0 {
						writeError(ww, apperror.NewInternalError("Internal server error", nil))
					}
				}
			}()
			next.ServeHTTP(ww, r)
		})
	})

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		auth.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"message":   "GetCampWood API is running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandlers.HandleRegister())
		r.Post("/login", authHandlers.HandleLogin())
		r.Post("/refresh", authHandlers.HandleRefresh())

		r.Group(func(r chi.Router) {
			r.Use(auth.Guard(cfg.Auth))
			r.Get("/me", authHandlers.HandleMe())
			r.Post("/logout", authHandlers.HandleLogout())
		})
	})

	r.Route("/api/user", func(r chi.Router) {
		r.Use(auth.Guard(cfg.Auth))
		r.Put("/profile", userHandlers.HandleUpdateProfile())
		r.Delete("/account", userHandlers.HandleDeleteAccount())
		r.Get("/stats", userHandlers.HandleStats())
	})

	r.Route("/api/locations", func(r chi.Router) {
		r.Get("/", locationHandlers.HandleList())
		r.Get("/events", locationHandlers.HandleEvents())
		r.Get("/{id}", locationHandlers.HandleGet())
		r.Post("/{id}/report", locationHandlers.HandleReport())

		r.Group(func(r chi.Router) {
			r.Use(auth.Guard(cfg.Auth))
			r.Post("/", locationHandlers.HandleCreate())
			r.Put("/{id}", locationHandlers.HandleUpdate())
			r.Delete("/{id}", locationHandlers.HandleDelete())
			r.Get("/user/mine", locationHandlers.HandleMine())
		})
	})

	r.Route("/api/geo", func(r chi.Router) {
		r.Get("/geocode", geoHandlers.HandleGeocode())
		r.Get("/reverse", geoHandlers.HandleReverse())
		r.Get("/me", geoHandlers.HandleLocate())
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		auth.WriteError(w, r, apperror.NewNotFoundError("Route not found", nil))
	})

	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the event stream must outlive a fixed write
		// deadline. The Timeout middleware still bounds ordinary handlers,
		// and stream clients reconnect when their context expires.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sweeper.Stop()
	events.Close()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server shutdown failed")
	}
	log.Info("server stopped gracefully")
}

// writeError is kept local for the panic middleware, which runs before the
// handlers' own error writing is reachable.
func writeError(w http.ResponseWriter, appErr *apperror.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	if err := json.NewEncoder(w).Encode(appErr.ToResponse()); err != nil {
		http.Error(w, `{"success":false,"message":"failed to encode error response"}`, http.StatusInternalServerError)
	}
}
