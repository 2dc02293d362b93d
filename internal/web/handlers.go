package web

import (
	"html/template"
	"net/http"

	"github.com/kasamhealthcare/clinic-web/internal/backend"
	"github.com/kasamhealthcare/clinic-web/internal/booking"
	"github.com/kasamhealthcare/clinic-web/internal/config"
	"github.com/kasamhealthcare/clinic-web/internal/geo"
	"github.com/kasamhealthcare/clinic-web/internal/session"
	"github.com/kasamhealthcare/clinic-web/internal/validate"
	"github.com/kasamhealthcare/clinic-web/pkg/logging"
)

// Handler serves every page of the site.
type Handler struct {
	cfg      *config.Config
	logger   *logging.Logger
	api      *backend.Client
	sessions *session.Manager
	geo      *geo.Detector
	wizard   *booking.Wizard
	tmpl     map[string]*template.Template
}

// NewHandler wires the page handler.
func NewHandler(cfg *config.Config, api *backend.Client, sessions *session.Manager, detector *geo.Detector, logger *logging.Logger) (*Handler, error) {
	if logger == nil {
		logger = logging.Default()
	}
	tmpl, err := newTemplates()
	if err != nil {
		return nil, err
	}
	return &Handler{
		cfg:      cfg,
		logger:   logger,
		api:      api,
		sessions: sessions,
		geo:      detector,
		wizard:   booking.New(api, logger),
		tmpl:     tmpl,
	}, nil
}

// render executes a page template with the common fields filled in.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if data == nil {
		data = make(map[string]any)
	}
	data["ClinicName"] = h.cfg.ClinicName
	data["DoctorPhone"] = h.cfg.DoctorPhone
	if _, ok := data["User"]; !ok {
		data["User"] = UserFrom(r.Context())
	}
	t, ok := h.tmpl[name]
	if !ok {
		h.logger.Error("unknown template", "name", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "base.html", data); err != nil {
		h.logger.Error("render failed", "template", name, "error", err)
	}
}

// Home renders the landing page with the reviews strip. Review fetch failures
// are silent; the page keeps rendering without them.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.api.Reviews(r.Context(), 6)
	if err != nil {
		h.logger.Warn("reviews fetch failed", "error", err)
	}
	h.render(w, r, "home.html", map[string]any{
		"Title":   "Home",
		"Reviews": reviews,
	})
}

// About renders the about page with place details when available.
func (h *Handler) About(w http.ResponseWriter, r *http.Request) {
	details, err := h.api.PlaceDetails(r.Context())
	if err != nil {
		h.logger.Warn("place details fetch failed", "error", err)
	}
	h.render(w, r, "about.html", map[string]any{
		"Title":        "About",
		"PlaceDetails": details,
	})
}

// Services renders the services page.
func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "services.html", map[string]any{"Title": "Services"})
}

// Contact renders the contact page.
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "contact.html", map[string]any{
		"Title":  "Contact",
		"Form":   map[string]string{},
		"Errors": map[string]string{},
	})
}

// ContactSubmit validates the contact form with the same rules as the
// booking wizard and re-renders with inline errors or a thank-you note.
func (h *Handler) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	form := map[string]string{
		"name":    r.PostFormValue("name"),
		"email":   r.PostFormValue("email"),
		"phone":   r.PostFormValue("phone"),
		"message": r.PostFormValue("message"),
	}
	errs := map[string]string{}
	if msg := validate.Name(form["name"]); msg != "" {
		errs["name"] = msg
	}
	if msg := validate.Email(form["email"]); msg != "" {
		errs["email"] = msg
	}
	if msg := validate.Phone(form["phone"]); msg != "" {
		errs["phone"] = msg
	}
	if len(errs) > 0 {
		h.render(w, r, "contact.html", map[string]any{
			"Title":  "Contact",
			"Form":   form,
			"Errors": errs,
		})
		return
	}
	h.render(w, r, "contact.html", map[string]any{
		"Title":     "Contact",
		"Submitted": true,
		"Form":      map[string]string{},
		"Errors":    map[string]string{},
	})
}

// PrivacyPolicy renders the privacy policy.
func (h *Handler) PrivacyPolicy(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "privacy_policy.html", map[string]any{"Title": "Privacy Policy"})
}

// TermsOfService renders the terms of service.
func (h *Handler) TermsOfService(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "terms_of_service.html", map[string]any{"Title": "Terms of Service"})
}

// NotFound renders the catch-all 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	h.render(w, r, "not_found.html", map[string]any{"Title": "Page Not Found"})
}

// Health reports this service's own liveness plus backend reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	backendStatus := "ok"
	if err := h.api.Health(r.Context()); err != nil {
		backendStatus = "unreachable"
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"` + status + `","backend":"` + backendStatus + `"}`))
}

// geoSignals extracts the client hints the country detector works from. The
// timezone arrives as a header on scripted requests or as the cookie set by
// the inline script in the page layout.
func geoSignals(r *http.Request) geo.Signals {
	tz := r.Header.Get("X-Timezone")
	if tz == "" {
		if c, err := r.Cookie("tz"); err == nil {
			tz = c.Value
		}
	}
	return geo.Signals{
		Timezone:       tz,
		AcceptLanguage: r.Header.Get("Accept-Language"),
	}
}

// geoScope identifies the visitor for geo caching: session ID when logged
// in, remote address otherwise.
func geoScope(r *http.Request) string {
	if rec := SessionFrom(r.Context()); rec != nil {
		return rec.ID
	}
	return r.RemoteAddr
}
