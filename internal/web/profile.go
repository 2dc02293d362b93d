package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kasamhealthcare/clinic-web/internal/backend"
	"github.com/kasamhealthcare/clinic-web/internal/geo"
	"github.com/kasamhealthcare/clinic-web/internal/profile"
)

// userDoc converts the user struct into the generic document the completion
// analyzer resolves dot paths against.
func userDoc(user *backend.User) map[string]any {
	raw, err := json.Marshal(user)
	if err != nil {
		return nil
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	return doc
}

// banner is the profile-completion reminder shown on authenticated pages.
type banner struct {
	Analysis *profile.Analysis
	Status   profile.StatusMessage
	Next     *profile.NextAction
	Key      string
}

// completionBanner builds the reminder for the current user, or nil when it
// is suppressed (staff, complete profile, or dismissed at the current
// percentage).
func (h *Handler) completionBanner(r *http.Request) *banner {
	user := UserFrom(r.Context())
	rec := SessionFrom(r.Context())
	if user == nil || rec == nil {
		return nil
	}
	analysis := profile.Analyze(userDoc(user))
	key := profile.DismissKey(analysis.CompletionPercentage)
	dismissed := h.sessions.BannerDismissed(r.Context(), rec, key)
	if !profile.ShouldShowBanner(user.Role, analysis, dismissed) {
		return nil
	}
	return &banner{
		Analysis: analysis,
		Status:   profile.Status(analysis),
		Next:     profile.Next(analysis),
		Key:      key,
	}
}

// DismissBanner records a banner dismissal. permanent=1 survives re-login.
func (h *Handler) DismissBanner(w http.ResponseWriter, r *http.Request) {
	rec := SessionFrom(r.Context())
	key := r.PostFormValue("key")
	if key == "" {
		http.Error(w, "key required", http.StatusBadRequest)
		return
	}
	permanent := r.PostFormValue("permanent") == "1"
	if err := h.sessions.DismissBanner(r.Context(), rec, key, permanent); err != nil {
		h.logger.Warn("dismiss banner failed", "key", key, "error", err)
	}
	redirect := r.PostFormValue("return")
	if redirect == "" || !strings.HasPrefix(redirect, "/") {
		redirect = "/dashboard"
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

// ProfilePage renders the profile with its completion breakdown. A stored
// address still carrying the legacy USA default is re-detected from the
// visitor's signals.
func (h *Handler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	country := user.Address.Country
	if country == "" || geo.NeedsRedetection(country) {
		country = h.geo.Country(r.Context(), geoScope(r), geoSignals(r))
	}
	analysis := profile.Analyze(userDoc(user))
	h.render(w, r, "profile.html", map[string]any{
		"Title":          "My Profile",
		"Analysis":       analysis,
		"Status":         profile.Status(analysis),
		"Next":           profile.Next(analysis),
		"DefaultCountry": country,
		"Banner":         h.completionBanner(r),
	})
}

// ProfileCompletePage is the guided completion view, focused on whatever the
// analyzer says to fill in next.
func (h *Handler) ProfileCompletePage(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	analysis := profile.Analyze(userDoc(user))
	h.render(w, r, "profile.html", map[string]any{
		"Title":          "Complete Your Profile",
		"Guided":         true,
		"Analysis":       analysis,
		"Status":         profile.Status(analysis),
		"Next":           profile.Next(analysis),
		"DefaultCountry": h.geo.Country(r.Context(), geoScope(r), geoSignals(r)),
	})
}

// ProfileUpdate saves submitted profile fields through the backend and
// refreshes the session's user mirror.
func (h *Handler) ProfileUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	rec := SessionFrom(r.Context())
	user := UserFrom(r.Context())

	fields := map[string]any{}
	for _, f := range []string{"firstName", "lastName", "phone", "dateOfBirth", "gender", "bloodGroup", "allergies"} {
		if vals, ok := r.PostForm[f]; ok {
			fields[f] = strings.TrimSpace(vals[0])
		}
	}
	address := map[string]any{}
	for _, f := range []string{"street", "city", "state", "zipCode", "country"} {
		if vals, ok := r.PostForm["address."+f]; ok {
			address[f] = strings.TrimSpace(vals[0])
		}
	}
	if len(address) > 0 {
		fields["address"] = address
	}
	emergency := map[string]any{}
	for _, f := range []string{"name", "phone", "relationship"} {
		if vals, ok := r.PostForm["emergencyContact."+f]; ok {
			emergency[f] = strings.TrimSpace(vals[0])
		}
	}
	if len(emergency) > 0 {
		fields["emergencyContact"] = emergency
	}

	updated, err := h.api.UpdateUser(r.Context(), rec.Token, user.ID, fields)
	if err != nil {
		analysis := profile.Analyze(userDoc(user))
		h.render(w, r, "profile.html", map[string]any{
			"Title":          "My Profile",
			"Analysis":       analysis,
			"Status":         profile.Status(analysis),
			"Next":           profile.Next(analysis),
			"DefaultCountry": user.Address.Country,
			"Error":          errorMessage(err),
		})
		return
	}
	if err := rec.SetUser(updated); err == nil {
		if err := h.sessions.Save(r.Context(), rec); err != nil {
			h.logger.Warn("refresh user mirror failed", "error", err)
		}
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}
