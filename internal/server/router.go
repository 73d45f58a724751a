// Package server assembles the HTTP routes of the site.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ayush/realestate-site/internal/auth"
	"github.com/ayush/realestate-site/internal/middleware"
	"github.com/ayush/realestate-site/internal/property"
	"github.com/ayush/realestate-site/internal/store"
)

// Views renders the HTML pages shared by both handler sets.
type Views interface {
	Render(w http.ResponseWriter, name string, data any) error
}

// Deps is everything the router needs to serve requests.
type Deps struct {
	Logger     *slog.Logger
	Users      auth.UserStore
	Properties property.PropertyStore
	Images     store.ImageStore
	Sessions   *auth.Sessions
	Hasher     auth.PasswordHasher
	Views      Views

	CORSOrigins    []string
	// MaxUploadBytes caps the body of a property submission. Zero means no cap.
	MaxUploadBytes int64
}

func NewRouter(d Deps) http.Handler {
	authHandler := auth.NewHandler(d.Users, d.Hasher, d.Sessions, d.Views)
	propertyHandler := property.NewHandler(d.Properties, d.Images, d.Views, d.MaxUploadBytes)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.LoadSession(d.Sessions))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", propertyHandler.Index)

	r.Get("/signup", authHandler.SignupForm)
	r.Post("/signup", authHandler.Signup)
	r.Get("/login", authHandler.LoginForm)
	r.Post("/login", authHandler.Login)
	r.Get("/logout", authHandler.Logout)

	r.Route("/property", func(r chi.Router) {
		r.Get("/", propertyHandler.Form)
		if d.MaxUploadBytes > 0 {
			r.With(chimw.RequestSize(d.MaxUploadBytes)).Post("/", propertyHandler.Submit)
		} else {
			r.Post("/", propertyHandler.Submit)
		}
	})

	r.Get("/static/uploads/{name}", propertyHandler.Image)

	return r
}
