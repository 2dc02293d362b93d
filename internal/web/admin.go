package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kasamhealthcare/clinic-web/internal/backend"
)

const slotsPerPage = 10

// AdminDashboard renders the staff view: pending approvals, the full
// appointment list, and the slot table with pagination.
func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	rec := SessionFrom(r.Context())

	pending, err := h.api.PendingAppointments(r.Context(), rec.Token)
	if err != nil {
		h.logger.Warn("pending appointments fetch failed", "error", err)
	}
	appointments, err := h.api.Appointments(r.Context(), rec.Token)
	if err != nil {
		h.logger.Warn("appointments fetch failed", "error", err)
	}
	slots, err := h.api.AllSlots(r.Context(), rec.Token)
	if err != nil {
		h.logger.Warn("slots fetch failed", "error", err)
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	paged, totalPages := paginateSlots(slots, page, slotsPerPage)

	today := time.Now().Format("2006-01-02")
	todayCount := 0
	for _, a := range appointments {
		if a.Date() == today {
			todayCount++
		}
	}

	h.render(w, r, "admin.html", map[string]any{
		"Title":        "Admin Dashboard",
		"Pending":      pending,
		"Appointments": appointments,
		"Slots":        paged,
		"Page":         page,
		"TotalPages":   totalPages,
		"Stats": map[string]int{
			"Pending":    len(pending),
			"Today":      todayCount,
			"TotalSlots": len(slots),
		},
	})
}

func paginateSlots(slots []backend.Slot, page, perPage int) ([]backend.Slot, int) {
	if len(slots) == 0 {
		return nil, 1
	}
	totalPages := (len(slots) + perPage - 1) / perPage
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * perPage
	end := start + perPage
	if end > len(slots) {
		end = len(slots)
	}
	return slots[start:end], totalPages
}

// ApproveAppointment confirms a pending appointment.
func (h *Handler) ApproveAppointment(w http.ResponseWriter, r *http.Request) {
	rec := SessionFrom(r.Context())
	id := chi.URLParam(r, "id")
	if err := h.api.ApproveAppointment(r.Context(), rec.Token, id); err != nil {
		h.logger.Warn("approve appointment failed", "appointment_id", id, "error", err)
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// RejectAppointment declines a pending appointment with a reason.
func (h *Handler) RejectAppointment(w http.ResponseWriter, r *http.Request) {
	rec := SessionFrom(r.Context())
	id := chi.URLParam(r, "id")
	reason := r.PostFormValue("reason")
	if err := h.api.RejectAppointment(r.Context(), rec.Token, id, reason); err != nil {
		h.logger.Warn("reject appointment failed", "appointment_id", id, "error", err)
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// CreateSlot adds one bookable slot.
func (h *Handler) CreateSlot(w http.ResponseWriter, r *http.Request) {
	rec := SessionFrom(r.Context())
	req := backend.SlotRequest{
		Date:      r.PostFormValue("date"),
		StartTime: r.PostFormValue("startTime"),
		EndTime:   r.PostFormValue("endTime"),
		Location:  r.PostFormValue("location"),
	}
	if req.Date == "" || req.StartTime == "" || req.EndTime == "" {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	if _, err := h.api.CreateSlot(r.Context(), rec.Token, req); err != nil {
		h.logger.Warn("create slot failed", "error", err)
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// DeleteSlot removes a slot.
func (h *Handler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	rec := SessionFrom(r.Context())
	id := chi.URLParam(r, "id")
	if err := h.api.DeleteSlot(r.Context(), rec.Token, id); err != nil {
		h.logger.Warn("delete slot failed", "slot_id", id, "error", err)
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// GenerateSlots bulk-creates slots over a date range.
func (h *Handler) GenerateSlots(w http.ResponseWriter, r *http.Request) {
	rec := SessionFrom(r.Context())
	req := backend.GenerateSlotsRequest{
		StartDate: r.PostFormValue("startDate"),
		EndDate:   r.PostFormValue("endDate"),
		Location:  r.PostFormValue("location"),
	}
	if err := h.api.GenerateSlots(r.Context(), rec.Token, req); err != nil {
		h.logger.Warn("generate slots failed", "error", err)
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}
