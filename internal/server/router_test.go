package server

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/realestate-site/internal/auth"
	"github.com/ayush/realestate-site/internal/models"
	"github.com/ayush/realestate-site/internal/property"
	"github.com/ayush/realestate-site/internal/store"
	"github.com/ayush/realestate-site/internal/web"
)

type memDB struct {
	mu    sync.Mutex
	users []models.User
	props []models.Property
}

func (m *memDB) CreateUser(_ context.Context, username, email, hashed string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := models.User{ID: int64(len(m.users) + 1), Username: username, Email: email, Password: hashed}
	m.users = append(m.users, u)
	return &u, nil
}

func (m *memDB) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memDB) CreateProperty(_ context.Context, p *models.Property) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = int64(len(m.props) + 1)
	m.props = append(m.props, *p)
	return nil
}

func (m *memDB) ListProperties(_ context.Context) ([]models.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Property(nil), m.props...), nil
}

var (
	_ auth.UserStore         = (*memDB)(nil)
	_ property.PropertyStore = (*memDB)(nil)
)

type site struct {
	srv      *httptest.Server
	client   *http.Client
	db       *memDB
	sessions *auth.Sessions
}

func newSite(t *testing.T) *site {
	t.Helper()

	key, err := auth.GenerateSecret()
	require.NoError(t, err)
	cookies, err := auth.NewCookieStore(key, time.Hour, false)
	require.NoError(t, err)
	images, err := store.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	views, err := web.Load()
	require.NoError(t, err)

	db := &memDB{}
	sessions := auth.NewSessions(cookies)
	h := NewRouter(Deps{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Users:          db,
		Properties:     db,
		Images:         images,
		Sessions:       sessions,
		Hasher:         auth.NewBcryptHasher(bcrypt.MinCost),
		Views:          views,
		CORSOrigins:    []string{"http://localhost:3000"},
		MaxUploadBytes: 8 << 20,
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &site{srv: srv, client: client, db: db, sessions: sessions}
}

func (s *site) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := s.client.Get(s.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (s *site) postForm(t *testing.T, path string, vals url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := s.client.PostForm(s.srv.URL+path, vals)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (s *site) signupAndLogin(t *testing.T, username, password string) {
	t.Helper()
	resp, _ := s.postForm(t, "/signup", url.Values{"username": {username}, "email": {username + "@example.com"}, "password": {password}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	resp, _ = s.postForm(t, "/login", url.Values{"username": {username}, "password": {password}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/property", resp.Header.Get("Location"))
}

type upload struct {
	name, content string
}

func submitProperty(t *testing.T, s *site, fields map[string]string, files []upload) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(property.ImagesField, f.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, s.srv.URL+"/property", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := s.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func TestHealth(t *testing.T) {
	s := newSite(t)
	resp, body := s.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestSignupLoginSubmitAndList(t *testing.T) {
	s := newSite(t)
	s.signupAndLogin(t, "a", "p")

	_, body := s.get(t, "/property")
	assert.Contains(t, body, "Signed in as a")

	resp := submitProperty(t, s, map[string]string{
		"name":          "Asha",
		"whatsapp":      "+91 99999 00000",
		"email":         "asha@example.com",
		"selected_city": "Pune",
		"property_type": "Flat",
		"bhk_type":      "2BHK",
		"address":       "12 MG Road",
		"message":       "Sea facing",
	}, []upload{
		{"front.png", "png-bytes"},
		{"back view.JPG", "jpg-bytes"},
		{"virus.exe", "MZ"},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/property", resp.Header.Get("Location"))

	require.Len(t, s.db.props, 1)
	assert.Equal(t, "uploads/front.png, uploads/back_view.JPG", s.db.props[0].ImageURL)
	assert.Equal(t, "Pune", s.db.props[0].SelectedCity)

	resp, body = s.get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, strings.Count(body, `class="property-image"`))
	assert.Contains(t, body, `src="/static/uploads/front.png"`)
	assert.Contains(t, body, `src="/static/uploads/back_view.JPG"`)
	assert.NotContains(t, body, "virus")
	assert.Contains(t, body, "12 MG Road")

	resp, body = s.get(t, "/static/uploads/back_view.JPG")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "jpg-bytes", body)

	resp, _ = s.get(t, "/static/uploads/virus.exe")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmitWithoutImagesOrLogin(t *testing.T) {
	s := newSite(t)

	resp := submitProperty(t, s, map[string]string{"name": "Ravi"}, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	require.Len(t, s.db.props, 1)
	assert.Empty(t, s.db.props[0].ImageURL)

	_, body := s.get(t, "/")
	assert.Zero(t, strings.Count(body, `class="property-image"`))
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	s := newSite(t)
	s.signupAndLogin(t, "a", "p")

	wrongPw, wrongBody := s.postForm(t, "/login", url.Values{"username": {"a"}, "password": {"nope"}})
	noUser, noUserBody := s.postForm(t, "/login", url.Values{"username": {"ghost"}, "password": {"p"}})

	assert.Equal(t, http.StatusUnauthorized, wrongPw.StatusCode)
	assert.Equal(t, wrongPw.StatusCode, noUser.StatusCode)
	assert.Equal(t, auth.InvalidCredentialsMessage, wrongBody)
	assert.Equal(t, wrongBody, noUserBody)
}

func TestLogoutKeepsUserID(t *testing.T) {
	s := newSite(t)
	s.signupAndLogin(t, "a", "p")

	resp, _ := s.get(t, "/logout")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	_, body := s.get(t, "/")
	assert.NotContains(t, body, "Signed in as")
	assert.Contains(t, body, `href="/login"`)

	u, err := url.Parse(s.srv.URL)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range s.client.Jar.Cookies(u) {
		req.AddCookie(c)
	}
	got, err := s.sessions.Load(req)
	require.NoError(t, err)
	assert.True(t, got.IsAuthenticated())
	assert.Empty(t, got.Username)
}
