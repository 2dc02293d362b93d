package web

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/kasamhealthcare/clinic-web/internal/booking"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages are the renderable templates; each is parsed together with the base
// layout so blocks resolve per page.
var pages = []string{
	"home.html",
	"about.html",
	"services.html",
	"contact.html",
	"login.html",
	"forgot_password.html",
	"reset_password.html",
	"privacy_policy.html",
	"terms_of_service.html",
	"profile.html",
	"dashboard.html",
	"admin.html",
	"book.html",
	"error.html",
	"not_found.html",
}

var templateFuncs = template.FuncMap{
	"formatTime": booking.FormatTime,
	"clinicName": booking.ClinicName,
	"add":        func(a, b int) int { return a + b },
	"sub":        func(a, b int) int { return a - b },
}

func newTemplates() (map[string]*template.Template, error) {
	set := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.New("base.html").Funcs(templateFuncs).
			ParseFS(templateFS, "templates/base.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("web: parse template %s: %w", page, err)
		}
		set[page] = t
	}
	return set, nil
}
