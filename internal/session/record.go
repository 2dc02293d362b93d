// Package session owns the browser session: one signed cookie referencing a
// server-side record that holds the backend token, the user mirror, and
// small bits of UI state (wizard progress, banner dismissals). All reads and
// writes go through the Manager so the cookie and the record never drift.
package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kasamhealthcare/clinic-web/internal/backend"
)

// Record is the server-side session state.
type Record struct {
	ID        string          `json:"id"`
	Token     string          `json:"token"`
	User      json.RawMessage `json:"user"`
	CreatedAt time.Time       `json:"createdAt"`

	// Wizard holds serialized booking-wizard progress, if any.
	Wizard json.RawMessage `json:"wizard,omitempty"`

	// Dismissed holds session-tier banner dismissal flags.
	Dismissed map[string]bool `json:"dismissed,omitempty"`
}

// DecodeUser unmarshals the stored user mirror.
func (r *Record) DecodeUser() (*backend.User, error) {
	if len(r.User) == 0 {
		return nil, fmt.Errorf("session: no stored user")
	}
	var user backend.User
	if err := json.Unmarshal(r.User, &user); err != nil {
		return nil, fmt.Errorf("session: decode user: %w", err)
	}
	return &user, nil
}

// SetUser replaces the stored user mirror.
func (r *Record) SetUser(user *backend.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session: encode user: %w", err)
	}
	r.User = raw
	return nil
}
