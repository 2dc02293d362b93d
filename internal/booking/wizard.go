// Package booking implements the four-step appointment wizard. State lives
// in the session record between form POSTs; every mutation goes through the
// Wizard so field validation and step gating stay consistent.
package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kasamhealthcare/clinic-web/internal/backend"
	"github.com/kasamhealthcare/clinic-web/internal/validate"
	"github.com/kasamhealthcare/clinic-web/pkg/logging"
)

// Step bounds. Steps are linear: contact info, date and slot, notes, review.
const (
	StepContact = 1
	StepSlot    = 2
	StepNotes   = 3
	StepReview  = 4
)

// Submission defaults sent to the backend when the patient leaves a field
// blank. DefaultService spelling matches the backend's service catalog.
const (
	DefaultService  = "Homoepathic Medicine"
	DefaultReason   = "General consultation"
	DefaultPriority = "normal"
)

// Access classifies who may open the wizard.
type Access int

const (
	AccessOK Access = iota
	AccessLoginRequired
	AccessRestricted
)

// AccessFor gates the wizard: anonymous visitors must log in first, and
// staff accounts cannot self-book.
func AccessFor(user *backend.User) Access {
	if user == nil {
		return AccessLoginRequired
	}
	if user.IsStaff() {
		return AccessRestricted
	}
	return AccessOK
}

// Form holds the wizard's field values.
type Form struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Service string `json:"service"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Message string `json:"message"`
}

// Submit outcome states.
const (
	StatusIdle    = ""
	StatusSuccess = "success"
	StatusError   = "error"
)

// State is the wizard's full per-session state. It serializes into the
// session record between requests.
type State struct {
	Step     int               `json:"step"`
	Form     Form              `json:"form"`
	Touched  map[string]bool   `json:"touched,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
	Slots    []backend.Slot    `json:"slots,omitempty"`
	Selected *backend.Slot     `json:"selected,omitempty"`

	// RescheduleID holds the appointment being moved; empty means a new
	// booking.
	RescheduleID string `json:"rescheduleId,omitempty"`

	Status        string `json:"status,omitempty"`
	StatusMessage string `json:"statusMessage,omitempty"`
}

// NewState starts a wizard, prefilled from the authenticated user.
func NewState(user *backend.User) *State {
	st := &State{
		Step:    StepContact,
		Touched: make(map[string]bool),
		Errors:  make(map[string]string),
	}
	if user != nil {
		st.Form.Name = user.FullName()
		st.Form.Email = user.Email
		st.Form.Phone = user.Phone
	}
	return st
}

// Decode restores wizard state from its session serialization.
func Decode(raw json.RawMessage) (*State, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("booking: no wizard state")
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("booking: decode wizard state: %w", err)
	}
	if st.Touched == nil {
		st.Touched = make(map[string]bool)
	}
	if st.Errors == nil {
		st.Errors = make(map[string]string)
	}
	return &st, nil
}

// Encode serializes wizard state for the session record.
func (st *State) Encode() (json.RawMessage, error) {
	raw, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("booking: encode wizard state: %w", err)
	}
	return raw, nil
}

// ValidateField returns the inline error message for a field value, or "".
func ValidateField(field, value string) string {
	switch field {
	case "name":
		return validate.Name(value)
	case "email":
		return validate.Email(value)
	case "phone":
		return validate.Phone(value)
	default:
		return ""
	}
}

// SetField updates one field, marking it touched and revalidating it.
func (st *State) SetField(field, value string) {
	switch field {
	case "name":
		st.Form.Name = value
	case "email":
		st.Form.Email = value
	case "phone":
		st.Form.Phone = value
	case "service":
		st.Form.Service = value
	case "message":
		st.Form.Message = value
	default:
		return
	}
	st.Touched[field] = true
	if msg := ValidateField(field, value); msg != "" {
		st.Errors[field] = msg
	} else {
		delete(st.Errors, field)
	}
}

// CanProceed reports whether the current step's gating condition holds.
func (st *State) CanProceed() bool {
	switch st.Step {
	case StepContact:
		if st.Form.Name == "" || st.Form.Email == "" || st.Form.Phone == "" {
			return false
		}
		return ValidateField("name", st.Form.Name) == "" &&
			ValidateField("email", st.Form.Email) == "" &&
			ValidateField("phone", st.Form.Phone) == ""
	case StepSlot:
		return st.Form.Date != "" && st.Selected != nil
	case StepNotes:
		return true
	default:
		return false
	}
}

// Next advances one step when gating allows. Touches the current step's
// fields so errors render after a failed attempt.
func (st *State) Next() bool {
	if st.Step >= StepReview {
		return false
	}
	if !st.CanProceed() {
		if st.Step == StepContact {
			for _, f := range []string{"name", "email", "phone"} {
				st.Touched[f] = true
				if msg := ValidateField(f, fieldValue(st, f)); msg != "" {
					st.Errors[f] = msg
				}
			}
		}
		return false
	}
	st.Step++
	return true
}

// Prev steps backward, never below the first step.
func (st *State) Prev() {
	if st.Step > StepContact {
		st.Step--
	}
}

func fieldValue(st *State, field string) string {
	switch field {
	case "name":
		return st.Form.Name
	case "email":
		return st.Form.Email
	case "phone":
		return st.Form.Phone
	}
	return ""
}

// SelectSlot picks a slot from the fetched list by ID.
func (st *State) SelectSlot(id string) bool {
	for i := range st.Slots {
		if st.Slots[i].ID == id {
			st.Selected = &st.Slots[i]
			st.Form.Time = st.Slots[i].StartTime
			return true
		}
	}
	return false
}

// Wizard drives slot fetching and submission against the backend.
type Wizard struct {
	api    *backend.Client
	logger *logging.Logger
}

// New creates a wizard service.
func New(api *backend.Client, logger *logging.Logger) *Wizard {
	if logger == nil {
		logger = logging.Default()
	}
	return &Wizard{api: api, logger: logger}
}

// SelectDate sets the date, refetches the slot list, and clears any prior
// selection. A fetch failure leaves an empty list for the no-slots panel
// rather than surfacing an error page.
func (w *Wizard) SelectDate(ctx context.Context, st *State, token, date string) {
	st.Form.Date = date
	st.Form.Time = ""
	st.Selected = nil
	st.Slots = nil
	if date == "" {
		return
	}
	slots, err := w.api.AvailableSlots(ctx, token, date)
	if err != nil {
		w.logger.Warn("booking: slot fetch failed", "date", date, "error", err)
		return
	}
	open := slots[:0]
	for _, s := range slots {
		if !s.IsBooked {
			open = append(open, s)
		}
	}
	st.Slots = open
}

// Submit sends the booking (or reschedule) to the backend and records the
// outcome on the state.
func (w *Wizard) Submit(ctx context.Context, st *State, token string) error {
	if st.Selected == nil || st.Form.Date == "" {
		st.Status = StatusError
		st.StatusMessage = "Please select a date and time slot"
		return fmt.Errorf("booking: no slot selected")
	}

	date, err := time.Parse("2006-01-02", st.Form.Date)
	if err != nil {
		st.Status = StatusError
		st.StatusMessage = "Please select a valid date"
		return fmt.Errorf("booking: parse date %q: %w", st.Form.Date, err)
	}

	service := st.Form.Service
	if service == "" {
		service = DefaultService
	}
	reason := st.Form.Message
	if reason == "" {
		reason = DefaultReason
	}

	req := backend.AppointmentRequest{
		AppointmentDate: date.UTC().Format(time.RFC3339),
		AppointmentTime: st.Selected.StartTime,
		Service:         service,
		Reason:          reason,
		Priority:        DefaultPriority,
		SlotID:          st.Selected.ID,
	}

	if st.RescheduleID != "" {
		_, err = w.api.RescheduleAppointment(ctx, token, st.RescheduleID, req)
	} else {
		_, err = w.api.CreateAppointment(ctx, token, req)
	}
	if err != nil {
		st.Status = StatusError
		st.StatusMessage = submitErrorMessage(err)
		return err
	}

	st.Status = StatusSuccess
	if st.RescheduleID != "" {
		st.StatusMessage = "Appointment rescheduled successfully!"
	} else {
		st.StatusMessage = "Appointment booked successfully!"
	}
	return nil
}

func submitErrorMessage(err error) string {
	if backend.IsNetworkError(err) {
		return "Network error - please check your connection"
	}
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Failed to book appointment. Please try again."
}
