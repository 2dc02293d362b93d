// Package validate holds the synchronous form-field checks shared by the
// contact form, the booking wizard, and the profile pages. Errors are
// returned as display strings; an empty string means the value passed.
package validate

import (
	"regexp"
	"strings"
)

var (
	indianMobileRe = regexp.MustCompile(`^(\+91|91)?[6-9]\d{9}$`)
	emailRe        = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// NormalizePhone strips separators and a leading 0 from an 11-digit number,
// the common way Indian mobile numbers get written.
func NormalizePhone(phone string) string {
	clean := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)
	if strings.HasPrefix(clean, "0") && len(clean) == 11 {
		clean = clean[1:]
	}
	return clean
}

// Phone validates an Indian 10-digit mobile number, optionally prefixed with
// +91 or 91. Returns a display message, or "" if valid.
func Phone(phone string) string {
	if strings.TrimSpace(phone) == "" {
		return "Mobile number is required for appointment booking"
	}
	if !indianMobileRe.MatchString(NormalizePhone(phone)) {
		return "Please enter a valid 10-digit mobile number starting with 6, 7, 8, or 9"
	}
	return ""
}

// PhoneOK reports whether phone passes the Indian mobile pattern. Unlike
// Phone it treats the value as optional context (no required-field message).
func PhoneOK(phone string) bool {
	return indianMobileRe.MatchString(NormalizePhone(phone))
}

// Email validates a basic local@domain.tld address.
func Email(email string) string {
	if strings.TrimSpace(email) == "" {
		return "Email address is required"
	}
	if !emailRe.MatchString(email) {
		return "Please enter a valid email address"
	}
	return ""
}

// Name validates a person's display name.
func Name(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "Full name is required"
	}
	if len(trimmed) < 2 {
		return "Name must be at least 2 characters long"
	}
	return ""
}

// OTP normalizes an OTP input to at most 6 digits, discarding everything else.
func OTP(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == 6 {
				break
			}
		}
	}
	return b.String()
}
