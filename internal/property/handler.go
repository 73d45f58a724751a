package property

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/realestate-site/internal/auth"
	"github.com/ayush/realestate-site/internal/logging"
	"github.com/ayush/realestate-site/internal/models"
	"github.com/ayush/realestate-site/internal/store"
)

// ImagesField is the multipart field carrying 0..N property images.
const ImagesField = "property_images"

// PropertyStore defines the interface for property persistence.
type PropertyStore interface {
	CreateProperty(ctx context.Context, p *models.Property) error
	ListProperties(ctx context.Context) ([]models.Property, error)
}

// Renderer renders a named HTML page.
type Renderer interface {
	Render(w http.ResponseWriter, name string, data any) error
}

// IndexData is passed to the index template.
type IndexData struct {
	Identity   auth.Identity
	Properties []models.Property
}

// FormData is passed to the property form template.
type FormData struct {
	Identity auth.Identity
}

// Handler holds listing HTTP handlers.
type Handler struct {
	props     PropertyStore
	images    store.ImageStore
	views     Renderer
	maxMemory int64
}

func NewHandler(props PropertyStore, images store.ImageStore, views Renderer, maxMemory int64) *Handler {
	if maxMemory <= 0 {
		maxMemory = 32 << 20
	}
	return &Handler{props: props, images: images, views: views, maxMemory: maxMemory}
}

// Index lists every property.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context()).With("handler", "Index")

	props, err := h.props.ListProperties(r.Context())
	if err != nil {
		log.Error("list properties failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "index", IndexData{
		Identity:   auth.IdentityFromContext(r.Context()),
		Properties: props,
	})
}

// Form serves the empty submission form.
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "property", FormData{Identity: auth.IdentityFromContext(r.Context())})
}

// Submit saves the allowed images, records the property and returns to the
// form. Image writes and the insert are not atomic: a failed insert leaves
// the saved files unreferenced.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context()).With("handler", "SubmitProperty")

	if err := r.ParseMultipartForm(h.maxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		log.Warn("bad property form", "error", err)
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		files = r.MultipartForm.File[ImagesField]
	}

	var refs []string
	for _, fh := range files {
		if fh.Filename == "" {
			continue
		}
		if !store.IsAllowed(fh.Filename) {
			log.Info("skipping disallowed upload", "filename", fh.Filename)
			continue
		}
		ref, err := h.saveImage(r.Context(), fh)
		if errors.Is(err, store.ErrEmptyFilename) {
			log.Info("skipping upload with unusable name", "filename", fh.Filename)
			continue
		}
		if err != nil {
			log.Error("save image failed", "filename", fh.Filename, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		refs = append(refs, ref)
	}

	p := &models.Property{
		Name:         r.FormValue("name"),
		WhatsApp:     r.FormValue("whatsapp"),
		Email:        r.FormValue("email"),
		SelectedCity: r.FormValue("selected_city"),
		PropertyType: r.FormValue("property_type"),
		BHKType:      r.FormValue("bhk_type"),
		Address:      r.FormValue("address"),
		Message:      r.FormValue("message"),
		ImageURL:     models.JoinImages(refs),
	}
	if err := h.props.CreateProperty(r.Context(), p); err != nil {
		log.Error("create property failed", "error", err, "saved_images", len(refs))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	log.Info("property submitted", "property_id", p.ID, "images", len(refs))
	http.Redirect(w, r, "/property", http.StatusFound)
}

func (h *Handler) saveImage(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return h.images.Save(ctx, fh.Filename, f, fh.Size, fh.Header.Get("Content-Type"))
}

// Image streams a stored upload back to the browser.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rc, contentType, err := h.images.Open(r.Context(), name)
	if errors.Is(err, store.ErrImageNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		logging.FromContext(r.Context()).Error("open image failed", "name", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := io.Copy(w, rc); err != nil {
		logging.FromContext(r.Context()).Warn("stream image interrupted", "name", name, "error", err)
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page string, data any) {
	if err := h.views.Render(w, page, data); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "page", page, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
