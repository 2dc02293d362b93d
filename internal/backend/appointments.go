package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// AppointmentRequest is the payload for creating or rescheduling an
// appointment. The backend assigns the doctor; the front end only names the
// slot and the reason.
type AppointmentRequest struct {
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
	Service         string `json:"service"`
	Reason          string `json:"reason"`
	Priority        string `json:"priority"`
	SlotID          string `json:"slotId"`
}

// Appointments lists the caller's appointments.
func (c *Client) Appointments(ctx context.Context, token string) ([]Appointment, error) {
	data, err := c.call(ctx, http.MethodGet, "/appointments", token, nil)
	if err != nil {
		return nil, err
	}
	return decodeAppointments(data)
}

// UpcomingAppointments lists appointments from today onward.
func (c *Client) UpcomingAppointments(ctx context.Context, token string) ([]Appointment, error) {
	data, err := c.call(ctx, http.MethodGet, "/appointments/upcoming", token, nil)
	if err != nil {
		return nil, err
	}
	return decodeAppointments(data)
}

// PendingAppointments lists appointments awaiting approval. Admin only.
func (c *Client) PendingAppointments(ctx context.Context, token string) ([]Appointment, error) {
	data, err := c.call(ctx, http.MethodGet, "/appointments/pending", token, nil)
	if err != nil {
		return nil, err
	}
	return decodeAppointments(data)
}

// Appointment fetches a single appointment by ID.
func (c *Client) Appointment(ctx context.Context, token, id string) (*Appointment, error) {
	data, err := c.call(ctx, http.MethodGet, "/appointments/"+id, token, nil)
	if err != nil {
		return nil, err
	}
	return decodeAppointment(data)
}

// CreateAppointment books a new appointment into the named slot.
func (c *Client) CreateAppointment(ctx context.Context, token string, req AppointmentRequest) (*Appointment, error) {
	data, err := c.call(ctx, http.MethodPost, "/appointments", token, req)
	if err != nil {
		return nil, err
	}
	return decodeAppointment(data)
}

// UpdateAppointment applies a partial update.
func (c *Client) UpdateAppointment(ctx context.Context, token, id string, fields map[string]any) (*Appointment, error) {
	data, err := c.call(ctx, http.MethodPut, "/appointments/"+id, token, fields)
	if err != nil {
		return nil, err
	}
	return decodeAppointment(data)
}

// RescheduleAppointment moves an existing appointment to a new slot via the
// dedicated endpoint rather than delete+recreate.
func (c *Client) RescheduleAppointment(ctx context.Context, token, id string, req AppointmentRequest) (*Appointment, error) {
	data, err := c.call(ctx, http.MethodPut, "/appointments/"+id+"/reschedule", token, req)
	if err != nil {
		return nil, err
	}
	return decodeAppointment(data)
}

// ApproveAppointment confirms a pending appointment. Admin only.
func (c *Client) ApproveAppointment(ctx context.Context, token, id string) error {
	_, err := c.call(ctx, http.MethodPut, "/appointments/"+id+"/approve", token, nil)
	return err
}

// RejectAppointment declines a pending appointment with a reason. Admin only.
func (c *Client) RejectAppointment(ctx context.Context, token, id, reason string) error {
	_, err := c.call(ctx, http.MethodPut, "/appointments/"+id+"/reject", token, map[string]string{"reason": reason})
	return err
}

// CancelAppointment marks an appointment cancelled.
func (c *Client) CancelAppointment(ctx context.Context, token, id string) error {
	_, err := c.call(ctx, http.MethodDelete, "/appointments/"+id+"/cancel", token, nil)
	return err
}

// DeleteAppointment permanently removes a cancelled appointment.
func (c *Client) DeleteAppointment(ctx context.Context, token, id string) error {
	_, err := c.call(ctx, http.MethodDelete, "/appointments/"+id, token, nil)
	return err
}

// decodeAppointments accepts both {appointments: [...]} and a bare array.
func decodeAppointments(data json.RawMessage) ([]Appointment, error) {
	var wrapped struct {
		Appointments []Appointment `json:"appointments"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Appointments != nil {
		return wrapped.Appointments, nil
	}
	var list []Appointment
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("backend: decode appointments: %w", err)
	}
	return list, nil
}

func decodeAppointment(data json.RawMessage) (*Appointment, error) {
	var wrapped struct {
		Appointment *Appointment `json:"appointment"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Appointment != nil {
		return wrapped.Appointment, nil
	}
	var appt Appointment
	if err := json.Unmarshal(data, &appt); err != nil {
		return nil, fmt.Errorf("backend: decode appointment: %w", err)
	}
	return &appt, nil
}
