package geo

// timezoneCountry maps IANA timezones the clinic's patients actually report
// to country names. Unlisted zones fall through to locale detection.
var timezoneCountry = map[string]string{
	"Asia/Kolkata":        "India",
	"Asia/Mumbai":         "India",
	"Asia/Delhi":          "India",
	"Asia/Chennai":        "India",
	"Asia/Bangalore":      "India",
	"America/New_York":    "United States",
	"America/Los_Angeles": "United States",
	"America/Chicago":     "United States",
	"Europe/London":       "United Kingdom",
	"Europe/Paris":        "France",
	"Europe/Berlin":       "Germany",
	"Asia/Tokyo":          "Japan",
	"Asia/Shanghai":       "China",
	"Australia/Sydney":    "Australia",
	"Asia/Dubai":          "United Arab Emirates",
	"Asia/Singapore":      "Singapore",
}

// countryByCode maps ISO region subtags to country names for locale-based
// detection.
var countryByCode = map[string]string{
	"IN": "India",
	"US": "United States",
	"GB": "United Kingdom",
	"CA": "Canada",
	"AU": "Australia",
	"DE": "Germany",
	"FR": "France",
	"JP": "Japan",
	"CN": "China",
	"SG": "Singapore",
	"AE": "United Arab Emirates",
	"BD": "Bangladesh",
	"PK": "Pakistan",
	"LK": "Sri Lanka",
	"NP": "Nepal",
}
