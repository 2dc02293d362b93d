// Package profile scores how complete a user's profile is against a
// role-specific required-field table and derives the reminder banner state.
// Everything here is a pure function over the user document; nothing is
// cached between calls, so the result is always consistent with current data.
package profile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kasamhealthcare/clinic-web/internal/validate"
)

// FieldInfo describes a required field: display name and any special
// validation beyond non-emptiness.
type FieldInfo struct {
	Name       string
	Type       string
	Required   bool
	Validation string
}

// CategoryInfo carries the display metadata for a field category.
type CategoryInfo struct {
	Name        string
	Description string
	Priority    int
}

// categoryOrder fixes iteration order; priorities mirror it.
var categoryOrder = []string{"basic", "address", "personal", "emergency", "medical"}

// Categories maps category keys to display metadata.
var Categories = map[string]CategoryInfo{
	"basic":     {Name: "Basic Information", Description: "Essential contact details", Priority: 1},
	"address":   {Name: "Address Information", Description: "Your residential address for appointments and billing", Priority: 2},
	"personal":  {Name: "Personal Details", Description: "Additional personal information", Priority: 3},
	"emergency": {Name: "Emergency Contact", Description: "Someone to contact in case of emergency", Priority: 4},
	"medical":   {Name: "Medical Information", Description: "Health-related information (optional)", Priority: 5},
}

// requiredFields lists the dot-path fields each role must fill in, grouped
// by category. Admins only need the basics.
var requiredFields = map[string]map[string][]string{
	"patient": {
		"basic":     {"firstName", "lastName", "email", "phone"},
		"address":   {"address.street", "address.city", "address.state", "address.zipCode"},
		"personal":  {"dateOfBirth"},
		"emergency": {"emergencyContact.name", "emergencyContact.phone"},
		"medical":   {},
	},
	"doctor": {
		"basic":     {"firstName", "lastName", "email", "phone"},
		"address":   {"address.street", "address.city", "address.state", "address.zipCode"},
		"personal":  {"dateOfBirth"},
		"emergency": {"emergencyContact.name", "emergencyContact.phone"},
		"medical":   {},
	},
	"admin": {
		"basic":     {"firstName", "lastName", "email", "phone"},
		"address":   {},
		"personal":  {},
		"emergency": {},
		"medical":   {},
	},
}

// fieldInfo maps dot paths to display metadata and validation rules.
var fieldInfo = map[string]FieldInfo{
	"firstName":                      {Name: "First Name", Type: "text", Required: true},
	"lastName":                       {Name: "Last Name", Type: "text", Required: true},
	"email":                          {Name: "Email Address", Type: "email", Required: true},
	"phone":                          {Name: "Mobile Number", Type: "tel", Required: true, Validation: "indian_mobile"},
	"address.street":                 {Name: "Street Address", Type: "text", Required: true},
	"address.city":                   {Name: "City", Type: "text", Required: true},
	"address.state":                  {Name: "State", Type: "text", Required: true},
	"address.zipCode":                {Name: "ZIP/Postal Code", Type: "text", Required: true},
	"address.country":                {Name: "Country", Type: "text", Required: false},
	"dateOfBirth":                    {Name: "Date of Birth", Type: "date", Required: true},
	"emergencyContact.name":          {Name: "Emergency Contact Name", Type: "text", Required: true},
	"emergencyContact.phone":         {Name: "Emergency Contact Phone", Type: "tel", Required: true, Validation: "indian_mobile"},
	"emergencyContact.relationship":  {Name: "Relationship", Type: "text", Required: false},
}

// MissingField identifies one unfilled required field.
type MissingField struct {
	Path       string
	Name       string
	Category   string
	Type       string
	Validation string
}

// CategoryAnalysis is the per-category completion breakdown.
type CategoryAnalysis struct {
	Name                 string
	Description          string
	Priority             int
	TotalFields          int
	CompletedFields      int
	MissingFields        []MissingField
	IsComplete           bool
	CompletionPercentage int
}

// Analysis is the full completion snapshot for one user document.
type Analysis struct {
	IsComplete           bool
	CompletionPercentage int
	MissingFields        []MissingField
	MissingCategories    []string
	CompletedCategories  []string
	TotalFields          int
	CompletedFields      int
	Categories           map[string]*CategoryAnalysis
}

// NestedValue resolves a dot-notation path (e.g. "address.street") against a
// decoded JSON document.
func NestedValue(doc map[string]any, path string) any {
	var current any = doc
	for _, key := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[key]
	}
	return current
}

// fieldComplete reports whether a value satisfies its field rules. Optional
// fields always pass; strings are trimmed; phone-shaped fields must match
// the Indian mobile pattern.
func fieldComplete(value any, info FieldInfo) bool {
	if !info.Required {
		return true
	}
	switch v := value.(type) {
	case nil:
		return false
	case string:
		if strings.TrimSpace(v) == "" {
			return false
		}
		if info.Validation == "indian_mobile" {
			return validate.PhoneOK(v)
		}
		return true
	case []any:
		return len(v) > 0
	default:
		return true
	}
}

// Analyze computes per-category and overall completion for a user document.
// The role is read from the document itself, defaulting to patient.
func Analyze(doc map[string]any) *Analysis {
	analysis := &Analysis{
		Categories: map[string]*CategoryAnalysis{},
	}
	if doc == nil {
		return analysis
	}
	analysis.IsComplete = true

	role, _ := NestedValue(doc, "role").(string)
	fields, ok := requiredFields[role]
	if !ok {
		fields = requiredFields["patient"]
	}

	for _, category := range categoryOrder {
		paths := fields[category]
		if len(paths) == 0 {
			continue
		}
		meta := Categories[category]
		ca := &CategoryAnalysis{
			Name:        meta.Name,
			Description: meta.Description,
			Priority:    meta.Priority,
			TotalFields: len(paths),
			IsComplete:  true,
		}

		for _, path := range paths {
			info := fieldInfo[path]
			analysis.TotalFields++
			if fieldComplete(NestedValue(doc, path), info) {
				analysis.CompletedFields++
				ca.CompletedFields++
				continue
			}
			analysis.IsComplete = false
			ca.IsComplete = false
			missing := MissingField{
				Path:       path,
				Name:       info.Name,
				Category:   category,
				Type:       info.Type,
				Validation: info.Validation,
			}
			analysis.MissingFields = append(analysis.MissingFields, missing)
			ca.MissingFields = append(ca.MissingFields, missing)
		}

		ca.CompletionPercentage = percentage(ca.CompletedFields, ca.TotalFields)
		analysis.Categories[category] = ca

		if ca.IsComplete {
			analysis.CompletedCategories = append(analysis.CompletedCategories, category)
		} else {
			analysis.MissingCategories = append(analysis.MissingCategories, category)
		}
	}

	analysis.CompletionPercentage = percentage(analysis.CompletedFields, analysis.TotalFields)
	return analysis
}

func percentage(completed, total int) int {
	if total == 0 {
		return 100
	}
	return int(float64(completed)/float64(total)*100 + 0.5)
}

// StatusMessage is the banner headline for a given completion level.
type StatusMessage struct {
	Type    string
	Title   string
	Message string
	Action  string
}

// Status returns the banner copy for an analysis.
func Status(a *Analysis) StatusMessage {
	if a.IsComplete {
		return StatusMessage{
			Type:    "success",
			Title:   "Profile Complete!",
			Message: "Your profile is fully complete. You can now access all features.",
		}
	}
	pct := a.CompletionPercentage
	switch {
	case pct >= 80:
		return StatusMessage{
			Type:    "warning",
			Title:   "Almost There!",
			Message: fmt.Sprintf("Your profile is %d%% complete. Just a few more details needed.", pct),
			Action:  "Complete Profile",
		}
	case pct >= 50:
		return StatusMessage{
			Type:    "info",
			Title:   "Profile In Progress",
			Message: fmt.Sprintf("Your profile is %d%% complete. Please add more information.", pct),
			Action:  "Continue Setup",
		}
	default:
		return StatusMessage{
			Type:    "error",
			Title:   "Let's Complete Your Profile",
			Message: fmt.Sprintf("Your profile is only %d%% complete. Please add your information to get started.", pct),
			Action:  "Complete Profile",
		}
	}
}

// NextAction is the single recommended field to fill next.
type NextAction struct {
	Category     string
	CategoryName string
	Field        MissingField
	Message      string
}

// Next returns the first missing field of the highest-priority incomplete
// category, or nil when the profile is complete.
func Next(a *Analysis) *NextAction {
	if a.IsComplete || len(a.MissingCategories) == 0 {
		return nil
	}
	incomplete := append([]string(nil), a.MissingCategories...)
	sort.Slice(incomplete, func(i, j int) bool {
		return a.Categories[incomplete[i]].Priority < a.Categories[incomplete[j]].Priority
	})
	category := incomplete[0]
	field := a.Categories[category].MissingFields[0]
	return &NextAction{
		Category:     category,
		CategoryName: a.Categories[category].Name,
		Field:        field,
		Message:      "Please add your " + strings.ToLower(field.Name),
	}
}
