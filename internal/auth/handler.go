package auth

import (
	"context"
	"net/http"

	"github.com/ayush/realestate-site/internal/logging"
	"github.com/ayush/realestate-site/internal/models"
)

// InvalidCredentialsMessage is the only body a failed login ever gets.
const InvalidCredentialsMessage = "Invalid credentials. Please try again."

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, username, email, hashedPw string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Renderer renders a named HTML page.
type Renderer interface {
	Render(w http.ResponseWriter, name string, data any) error
}

// PageData is passed to the login and signup templates.
type PageData struct {
	Identity Identity
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	users    UserStore
	hasher   PasswordHasher
	sessions *Sessions
	views    Renderer
}

func NewHandler(users UserStore, hasher PasswordHasher, sessions *Sessions, views Renderer) *Handler {
	return &Handler{users: users, hasher: hasher, sessions: sessions, views: views}
}

// SignupForm serves GET /signup.
func (h *Handler) SignupForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "signup")
}

// Signup creates a user and sends the browser to the login page. Duplicate
// usernames are accepted.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context()).With("handler", "Signup")

	if err := r.ParseForm(); err != nil {
		log.Warn("bad signup form", "error", err)
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := models.SignupForm{
		Username: r.PostFormValue("username"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	log = log.With("username", form.Username)

	hashed, err := h.hasher.Hash(form.Password)
	if err != nil {
		log.Warn("password rejected by hasher", "error", err)
		http.Error(w, "invalid password", http.StatusBadRequest)
		return
	}

	user, err := h.users.CreateUser(r.Context(), form.Username, form.Email, hashed)
	if err != nil {
		log.Error("create user failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	log.Info("user signed up", "user_id", user.ID)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// LoginForm serves GET /login.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login")
}

// Login authenticates a user and starts a session. An unknown username and a
// wrong password produce the same response.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context()).With("handler", "Login")

	if err := r.ParseForm(); err != nil {
		log.Warn("bad login form", "error", err)
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := models.LoginForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	log = log.With("username", form.Username)

	user, err := h.users.GetUserByUsername(r.Context(), form.Username)
	if err != nil {
		log.Error("user lookup failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if user == nil || !h.hasher.Verify(form.Password, user.Password) {
		log.Info("login rejected")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(InvalidCredentialsMessage))
		return
	}

	if err := h.sessions.Start(w, r, user.ID, user.Username); err != nil {
		log.Error("session start failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	log.Info("user logged in", "user_id", user.ID)
	http.Redirect(w, r, "/property", http.StatusFound)
}

// Logout drops the username from the session and returns to the index.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(w, r); err != nil {
		logging.FromContext(r.Context()).Error("session end failed", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page string) {
	data := PageData{Identity: IdentityFromContext(r.Context())}
	if err := h.views.Render(w, page, data); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "page", page, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
