package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kasamhealthcare/clinic-web/internal/backend"
)

// Dashboard renders the patient dashboard: upcoming and past appointments
// plus medical records. Fetch failures log and leave sections empty rather
// than failing the page.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	rec := SessionFrom(r.Context())

	appointments, err := h.api.Appointments(r.Context(), rec.Token)
	if err != nil {
		h.logger.Warn("appointments fetch failed", "error", err)
	}
	records, err := h.api.MedicalRecords(r.Context(), rec.Token)
	if err != nil {
		h.logger.Warn("medical records fetch failed", "error", err)
	}

	upcoming, past := splitAppointments(appointments, time.Now())
	h.render(w, r, "dashboard.html", map[string]any{
		"Title":    "Dashboard",
		"Upcoming": upcoming,
		"Past":     past,
		"Records":  records,
		"Booked":   r.URL.Query().Get("booked") == "1",
		"Banner":   h.completionBanner(r),
	})
}

// splitAppointments partitions appointments into upcoming and past. Cancelled
// and rejected bookings always land in past.
func splitAppointments(appointments []backend.Appointment, now time.Time) (upcoming, past []backend.Appointment) {
	today := now.Format("2006-01-02")
	for _, a := range appointments {
		done := a.Status == "cancelled" || a.Status == "rejected" || a.Status == "completed"
		if !done && a.Date() >= today {
			upcoming = append(upcoming, a)
		} else {
			past = append(past, a)
		}
	}
	return upcoming, past
}

// CancelAppointment cancels an upcoming appointment.
func (h *Handler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	rec := SessionFrom(r.Context())
	id := chi.URLParam(r, "id")
	if err := h.api.CancelAppointment(r.Context(), rec.Token, id); err != nil {
		h.logger.Warn("cancel appointment failed", "appointment_id", id, "error", err)
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// DeleteAppointment removes a cancelled appointment from history.
func (h *Handler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	rec := SessionFrom(r.Context())
	id := chi.URLParam(r, "id")
	if err := h.api.DeleteAppointment(r.Context(), rec.Token, id); err != nil {
		h.logger.Warn("delete appointment failed", "appointment_id", id, "error", err)
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
