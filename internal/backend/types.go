package backend

// Address is the user's residential address as stored by the backend.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
}

// EmergencyContact is the person to reach if the patient cannot be.
type EmergencyContact struct {
	Name         string `json:"name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Relationship string `json:"relationship,omitempty"`
}

// User mirrors the backend user document. The backend owns the record; this
// struct is a transient copy held in the session.
type User struct {
	ID               string           `json:"_id"`
	FirstName        string           `json:"firstName,omitempty"`
	LastName         string           `json:"lastName,omitempty"`
	Name             string           `json:"name,omitempty"`
	Email            string           `json:"email"`
	Phone            string           `json:"phone,omitempty"`
	Role             string           `json:"role,omitempty"`
	DateOfBirth      string           `json:"dateOfBirth,omitempty"`
	Address          Address          `json:"address,omitempty"`
	EmergencyContact EmergencyContact `json:"emergencyContact,omitempty"`
}

// FullName assembles a display name from whichever name fields are set.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.Name != "":
		return u.Name
	default:
		return u.FirstName
	}
}

// IsStaff reports whether the user holds an admin or doctor role.
func (u *User) IsStaff() bool {
	return u.Role == "admin" || u.Role == "doctor"
}

// Slot is a backend-owned bookable time window at a clinic location.
type Slot struct {
	ID        string `json:"_id"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Location  string `json:"location"`
	IsBooked  bool   `json:"isBooked"`
	BookedBy  string `json:"bookedBy,omitempty"`
}

// Appointment mirrors the backend appointment document.
type Appointment struct {
	ID              string `json:"_id"`
	Patient         string `json:"patient,omitempty"`
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
	Duration        int    `json:"duration,omitempty"`
	Location        string `json:"location,omitempty"`
	Service         string `json:"service,omitempty"`
	Reason          string `json:"reason,omitempty"`
	Priority        string `json:"priority,omitempty"`
	Status          string `json:"status"`
	SlotID          string `json:"slotId,omitempty"`
}

// Date returns the appointment's calendar date (YYYY-MM-DD), trimming the
// time component of the backend's RFC 3339 timestamp.
func (a *Appointment) Date() string {
	if len(a.AppointmentDate) >= 10 {
		return a.AppointmentDate[:10]
	}
	return a.AppointmentDate
}

// MedicalRecord is a backend-owned patient record entry.
type MedicalRecord struct {
	ID        string `json:"_id"`
	Patient   string `json:"patient,omitempty"`
	Title     string `json:"title,omitempty"`
	Diagnosis string `json:"diagnosis,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Review is a cached external review surfaced on marketing pages.
type Review struct {
	Author  string  `json:"authorName"`
	Rating  float64 `json:"rating"`
	Text    string  `json:"text"`
	Time    string  `json:"relativeTime,omitempty"`
	Profile string  `json:"profilePhotoUrl,omitempty"`
}

// PlaceDetails is summary data for the clinic's public listing.
type PlaceDetails struct {
	Name         string  `json:"name"`
	Rating       float64 `json:"rating"`
	TotalRatings int     `json:"userRatingsTotal"`
	URL          string  `json:"url,omitempty"`
}
