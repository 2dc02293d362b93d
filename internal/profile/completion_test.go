package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func patientDoc(overrides map[string]any) map[string]any {
	doc := map[string]any{
		"role":      "patient",
		"firstName": "Asha",
		"lastName":  "Patel",
		"email":     "asha@example.com",
		"phone":     "9876543210",
	}
	for k, v := range overrides {
		doc[k] = v
	}
	return doc
}

func TestAnalyzeNilDocument(t *testing.T) {
	a := Analyze(nil)
	assert.False(t, a.IsComplete)
	assert.Equal(t, 0, a.CompletionPercentage)
	assert.Zero(t, a.TotalFields)
}

func TestAnalyzePatientBasicOnly(t *testing.T) {
	a := Analyze(patientDoc(nil))

	// 4 basic + 4 address + 1 personal + 2 emergency = 11 required fields
	assert.Equal(t, 11, a.TotalFields)
	assert.Equal(t, 4, a.CompletedFields)
	assert.Equal(t, 36, a.CompletionPercentage)
	assert.False(t, a.IsComplete)
	assert.Contains(t, a.CompletedCategories, "basic")
	assert.ElementsMatch(t, []string{"address", "personal", "emergency"}, a.MissingCategories)
}

func TestAnalyzeFullPatientProfile(t *testing.T) {
	a := Analyze(patientDoc(map[string]any{
		"dateOfBirth": "1990-01-15",
		"address": map[string]any{
			"street": "12 MG Road", "city": "Ahmedabad", "state": "Gujarat", "zipCode": "380001",
		},
		"emergencyContact": map[string]any{
			"name": "Ravi Patel", "phone": "9876500000",
		},
	}))

	assert.True(t, a.IsComplete)
	assert.Equal(t, 100, a.CompletionPercentage)
	assert.Empty(t, a.MissingFields)
}

func TestAnalyzeAdminOnlyNeedsBasics(t *testing.T) {
	a := Analyze(map[string]any{
		"role":      "admin",
		"firstName": "Kasam",
		"lastName":  "Shah",
		"email":     "admin@kasamhealthcare.com",
		"phone":     "9898440880",
	})

	assert.True(t, a.IsComplete)
	assert.Equal(t, 4, a.TotalFields)
}

func TestPhoneFieldUsesMobilePattern(t *testing.T) {
	a := Analyze(patientDoc(map[string]any{"phone": "12345"}))
	require.NotEmpty(t, a.MissingFields)
	assert.Equal(t, "phone", a.MissingFields[0].Path)
}

func TestTrimmedEmptyStringsCountMissing(t *testing.T) {
	a := Analyze(patientDoc(map[string]any{"firstName": "   "}))
	assert.Contains(t, a.MissingCategories, "basic")
}

func TestCompletionMonotonicPerCategory(t *testing.T) {
	before := Analyze(patientDoc(nil))
	after := Analyze(patientDoc(map[string]any{"dateOfBirth": "1990-01-15"}))

	assert.Greater(t,
		after.Categories["personal"].CompletedFields,
		before.Categories["personal"].CompletedFields,
	)
	assert.GreaterOrEqual(t, after.CompletionPercentage, before.CompletionPercentage)
	assert.Greater(t, after.CompletedFields, before.CompletedFields)
}

func TestUnknownRoleFallsBackToPatient(t *testing.T) {
	a := Analyze(map[string]any{"role": "nurse", "email": "n@example.com"})
	assert.Equal(t, 11, a.TotalFields)
}

func TestStatusTiers(t *testing.T) {
	tests := []struct {
		pct      int
		complete bool
		wantType string
	}{
		{100, true, "success"},
		{85, false, "warning"},
		{60, false, "info"},
		{30, false, "error"},
	}
	for _, tt := range tests {
		msg := Status(&Analysis{IsComplete: tt.complete, CompletionPercentage: tt.pct})
		assert.Equal(t, tt.wantType, msg.Type, "pct %d", tt.pct)
	}
}

func TestNextActionPrefersLowestPriorityCategory(t *testing.T) {
	a := Analyze(patientDoc(map[string]any{"firstName": ""}))

	next := Next(a)
	require.NotNil(t, next)
	assert.Equal(t, "basic", next.Category)
	assert.Equal(t, "firstName", next.Field.Path)
	assert.Equal(t, "Please add your first name", next.Message)
}

func TestNextActionNilWhenComplete(t *testing.T) {
	a := &Analysis{IsComplete: true}
	assert.Nil(t, Next(a))
}

func TestNestedValue(t *testing.T) {
	doc := map[string]any{"address": map[string]any{"city": "Ahmedabad"}}
	assert.Equal(t, "Ahmedabad", NestedValue(doc, "address.city"))
	assert.Nil(t, NestedValue(doc, "address.zipCode"))
	assert.Nil(t, NestedValue(doc, "emergencyContact.name"))
}
