package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kasamhealthcare/clinic-web/internal/backend"
)

// clinicNames maps backend location codes to display names.
var clinicNames = map[string]string{
	"ghodasar":    "Ghodasar Clinic",
	"vastral":     "Vastral Clinic",
	"gandhinagar": "Gandhinagar Clinic",
}

// ClinicName returns the display name for a location code, falling back to a
// title-cased code for locations added after this build.
func ClinicName(location string) string {
	if name, ok := clinicNames[location]; ok {
		return name
	}
	if location == "" {
		return ""
	}
	return strings.ToUpper(location[:1]) + location[1:]
}

// SlotGroup is one period of the day on the slot picker.
type SlotGroup struct {
	Label string
	Slots []backend.Slot
}

// GroupSlots buckets slots into morning (before noon), afternoon (noon to
// 6pm), and evening. Groups with no slots are omitted.
func GroupSlots(slots []backend.Slot) []SlotGroup {
	var morning, afternoon, evening []backend.Slot
	for _, s := range slots {
		switch h := slotHour(s.StartTime); {
		case h < 12:
			morning = append(morning, s)
		case h < 18:
			afternoon = append(afternoon, s)
		default:
			evening = append(evening, s)
		}
	}
	var groups []SlotGroup
	if len(morning) > 0 {
		groups = append(groups, SlotGroup{Label: "Morning", Slots: morning})
	}
	if len(afternoon) > 0 {
		groups = append(groups, SlotGroup{Label: "Afternoon", Slots: afternoon})
	}
	if len(evening) > 0 {
		groups = append(groups, SlotGroup{Label: "Evening", Slots: evening})
	}
	return groups
}

func slotHour(startTime string) int {
	h, _, ok := strings.Cut(startTime, ":")
	if !ok {
		return 0
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return 0
	}
	return hour
}

// FormatTime renders a 24-hour "HH:MM" as "H:MM AM/PM".
func FormatTime(hhmm string) string {
	h, m, ok := strings.Cut(hhmm, ":")
	if !ok {
		return hhmm
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return hhmm
	}
	period := "AM"
	switch {
	case hour == 0:
		hour = 12
	case hour == 12:
		period = "PM"
	case hour > 12:
		hour -= 12
		period = "PM"
	}
	return fmt.Sprintf("%d:%s %s", hour, m, period)
}

// NoSlotsPanel is the fallback shown when a date has no open slots: retry,
// jump to the next day, or reach the clinic directly.
type NoSlotsPanel struct {
	Date        string
	NextDate    string
	Phone       string
	WhatsAppURL string
}

// NewNoSlotsPanel builds the panel data for a date with no availability.
func NewNoSlotsPanel(date, phone string) NoSlotsPanel {
	panel := NoSlotsPanel{
		Date:        date,
		Phone:       phone,
		WhatsAppURL: "https://wa.me/" + strings.TrimPrefix(phone, "+"),
	}
	if d, err := time.Parse("2006-01-02", date); err == nil {
		panel.NextDate = d.AddDate(0, 0, 1).Format("2006-01-02")
	}
	return panel
}
