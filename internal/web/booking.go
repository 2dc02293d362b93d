package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kasamhealthcare/clinic-web/internal/booking"
	"github.com/kasamhealthcare/clinic-web/internal/session"
)

// wizardState loads the wizard from the session, starting a fresh one when
// none exists.
func (h *Handler) wizardState(r *http.Request, rec *session.Record) *booking.State {
	if st, err := booking.Decode(rec.Wizard); err == nil {
		return st
	}
	return booking.NewState(UserFrom(r.Context()))
}

func (h *Handler) saveWizard(r *http.Request, rec *session.Record, st *booking.State) {
	raw, err := st.Encode()
	if err != nil {
		h.logger.Error("encode wizard state failed", "error", err)
		return
	}
	rec.Wizard = raw
	if err := h.sessions.Save(r.Context(), rec); err != nil {
		h.logger.Error("save wizard state failed", "error", err)
	}
}

// BookPage renders the wizard at its current step. Staff accounts get the
// access-restricted panel instead of the form.
func (h *Handler) BookPage(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	if booking.AccessFor(user) == booking.AccessRestricted {
		h.render(w, r, "book.html", map[string]any{
			"Title":      "Book Appointment",
			"Restricted": true,
		})
		return
	}
	rec := SessionFrom(r.Context())
	st := h.wizardState(r, rec)
	h.renderWizard(w, r, st)
}

func (h *Handler) renderWizard(w http.ResponseWriter, r *http.Request, st *booking.State) {
	data := map[string]any{
		"Title":      "Book Appointment",
		"State":      st,
		"CanProceed": st.CanProceed(),
	}
	if st.Step == booking.StepSlot {
		if len(st.Slots) > 0 {
			data["Groups"] = booking.GroupSlots(st.Slots)
		} else if st.Form.Date != "" {
			data["NoSlots"] = booking.NewNoSlotsPanel(st.Form.Date, h.cfg.DoctorPhone)
		}
	}
	h.render(w, r, "book.html", data)
}

// BookUpdate applies submitted field values and revalidates them.
func (h *Handler) BookUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	rec := SessionFrom(r.Context())
	st := h.wizardState(r, rec)
	for _, field := range []string{"name", "email", "phone", "service", "message"} {
		if vals, ok := r.PostForm[field]; ok && len(vals) > 0 {
			st.SetField(field, vals[0])
		}
	}
	h.saveWizard(r, rec, st)
	h.renderWizard(w, r, st)
}

// BookDate sets the appointment date, refetching slots and clearing any
// earlier selection.
func (h *Handler) BookDate(w http.ResponseWriter, r *http.Request) {
	rec := SessionFrom(r.Context())
	st := h.wizardState(r, rec)
	h.wizard.SelectDate(r.Context(), st, rec.Token, r.PostFormValue("date"))
	h.saveWizard(r, rec, st)
	h.renderWizard(w, r, st)
}

// BookSlot selects a slot from the fetched list.
func (h *Handler) BookSlot(w http.ResponseWriter, r *http.Request) {
	rec := SessionFrom(r.Context())
	st := h.wizardState(r, rec)
	st.SelectSlot(r.PostFormValue("slot"))
	h.saveWizard(r, rec, st)
	h.renderWizard(w, r, st)
}

// BookNext advances the wizard one step when gating allows.
func (h *Handler) BookNext(w http.ResponseWriter, r *http.Request) {
	rec := SessionFrom(r.Context())
	st := h.wizardState(r, rec)
	st.Next()
	h.saveWizard(r, rec, st)
	h.renderWizard(w, r, st)
}

// BookPrev steps the wizard backward.
func (h *Handler) BookPrev(w http.ResponseWriter, r *http.Request) {
	rec := SessionFrom(r.Context())
	st := h.wizardState(r, rec)
	st.Prev()
	h.saveWizard(r, rec, st)
	h.renderWizard(w, r, st)
}

// BookSubmit sends the booking to the backend. Success clears the wizard and
// lands on the dashboard with a confirmation.
func (h *Handler) BookSubmit(w http.ResponseWriter, r *http.Request) {
	rec := SessionFrom(r.Context())
	st := h.wizardState(r, rec)
	if err := h.wizard.Submit(r.Context(), st, rec.Token); err != nil {
		h.saveWizard(r, rec, st)
		h.renderWizard(w, r, st)
		return
	}
	rec.Wizard = nil
	if err := h.sessions.Save(r.Context(), rec); err != nil {
		h.logger.Warn("clear wizard state failed", "error", err)
	}
	http.Redirect(w, r, "/dashboard?booked=1", http.StatusSeeOther)
}

// BookReset discards wizard state, the close-modal analogue.
func (h *Handler) BookReset(w http.ResponseWriter, r *http.Request) {
	rec := SessionFrom(r.Context())
	rec.Wizard = nil
	if err := h.sessions.Save(r.Context(), rec); err != nil {
		h.logger.Warn("clear wizard state failed", "error", err)
	}
	http.Redirect(w, r, "/book", http.StatusSeeOther)
}

// BookReschedule opens the wizard in reschedule mode for an appointment.
func (h *Handler) BookReschedule(w http.ResponseWriter, r *http.Request) {
	rec := SessionFrom(r.Context())
	st := booking.NewState(UserFrom(r.Context()))
	st.RescheduleID = chi.URLParam(r, "id")
	h.saveWizard(r, rec, st)
	http.Redirect(w, r, "/book", http.StatusSeeOther)
}
