package profile

import "fmt"

// DismissKey names the stored dismissal flag for a completion level. The key
// is derived from the live percentage on purpose: any profile edit changes
// the percentage, which invalidates prior dismissals and re-surfaces the
// reminder. Observed behavior carried over from the previous front end;
// change with care.
func DismissKey(pct int) string {
	return fmt.Sprintf("dismissed_completion_%d", pct)
}

// ShouldShowBanner decides whether the completion reminder renders. Staff
// roles and complete profiles never see it; otherwise a dismissal for the
// current percentage suppresses it.
func ShouldShowBanner(role string, a *Analysis, dismissed bool) bool {
	if role == "admin" || role == "doctor" {
		return false
	}
	if a == nil || a.IsComplete {
		return false
	}
	return !dismissed
}
