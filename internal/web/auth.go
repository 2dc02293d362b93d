package web

import (
	"net/http"
	"strings"

	"github.com/kasamhealthcare/clinic-web/internal/backend"
	"github.com/kasamhealthcare/clinic-web/internal/validate"
)

// Login phases for the auth state machine: enter email, enter code, or
// complete registration for an unrecognized address. The admin password form
// is a parallel mode toggled on the same page.
const (
	phaseEmail    = "email"
	phaseOTP      = "otp"
	phaseRegister = "register"
)

func redirectByRole(w http.ResponseWriter, r *http.Request, user *backend.User) {
	if user != nil && user.IsStaff() {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// LoginPage renders the login form. ?mode=admin switches to the password
// path; already-authenticated visitors go straight to their dashboard.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if user := UserFrom(r.Context()); user != nil {
		redirectByRole(w, r, user)
		return
	}
	data := map[string]any{
		"Title": "Login",
		"Phase": phaseEmail,
		"Email": "",
	}
	if r.URL.Query().Get("mode") == "admin" {
		data["AdminMode"] = true
		data["AdminEmail"] = h.cfg.AdminLoginEmail
	}
	h.render(w, r, "login.html", data)
}

// SendOTP emails a one-time code and advances to the code phase, or to
// registration when the address is unknown.
func (h *Handler) SendOTP(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	if msg := validate.Email(email); msg != "" {
		h.render(w, r, "login.html", map[string]any{
			"Title": "Login",
			"Phase": phaseEmail,
			"Email": email,
			"Error": msg,
		})
		return
	}

	resp, err := h.api.SendOTP(r.Context(), email)
	if err != nil {
		h.render(w, r, "login.html", map[string]any{
			"Title": "Login",
			"Phase": phaseEmail,
			"Email": email,
			"Error": errorMessage(err),
		})
		return
	}

	phase := phaseOTP
	if !resp.UserExists {
		phase = phaseRegister
	}
	data := map[string]any{
		"Title":     "Login",
		"Phase":     phase,
		"Email":     email,
		"FirstName": "",
		"LastName":  "",
		"Message":   resp.Message,
	}
	if resp.DevelopmentOTP != "" {
		data["Message"] = "Development OTP: " + resp.DevelopmentOTP
	}
	h.render(w, r, "login.html", data)
}

// VerifyOTP exchanges the emailed code for a session. New users also submit
// first and last name from the register phase.
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	otp := validate.OTP(r.PostFormValue("otp"))
	firstName := strings.TrimSpace(r.PostFormValue("firstName"))
	lastName := strings.TrimSpace(r.PostFormValue("lastName"))

	phase := phaseOTP
	if firstName != "" || lastName != "" {
		phase = phaseRegister
	}
	if len(otp) != 6 {
		h.render(w, r, "login.html", map[string]any{
			"Title":     "Login",
			"Phase":     phase,
			"Email":     email,
			"FirstName": firstName,
			"LastName":  lastName,
			"Error":     "Please enter the 6-digit code",
		})
		return
	}

	result, err := h.api.VerifyOTP(r.Context(), email, otp, firstName, lastName)
	if err != nil {
		h.render(w, r, "login.html", map[string]any{
			"Title":     "Login",
			"Phase":     phase,
			"Email":     email,
			"FirstName": firstName,
			"LastName":  lastName,
			"Error":     errorMessage(err),
		})
		return
	}
	h.finishLogin(w, r, result)
}

// PasswordLogin is the admin path: fixed email plus password, no OTP.
func (h *Handler) PasswordLogin(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	result, err := h.api.Login(r.Context(), email, password)
	if err != nil {
		h.render(w, r, "login.html", map[string]any{
			"Title":      "Login",
			"Phase":      phaseEmail,
			"AdminMode":  true,
			"AdminEmail": h.cfg.AdminLoginEmail,
			"Email":      email,
			"Error":      errorMessage(err),
		})
		return
	}
	h.finishLogin(w, r, result)
}

func (h *Handler) finishLogin(w http.ResponseWriter, r *http.Request, result *backend.AuthResult) {
	rec, err := h.sessions.Issue(r.Context(), w, result.Token, &result.User)
	if err != nil {
		h.logger.Error("issue session failed", "error", err)
		h.render(w, r, "login.html", map[string]any{
			"Title": "Login",
			"Phase": phaseEmail,
			"Email": "",
			"Error": "Could not start your session. Please try again.",
		})
		return
	}
	h.logger.Info("login", "session_id", rec.ID, "role", result.User.Role)
	redirectByRole(w, r, &result.User)
}

// Logout ends the backend session (best effort) and clears the local one.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if rec := SessionFrom(r.Context()); rec != nil && rec.Token != "" {
		if err := h.api.Logout(r.Context(), rec.Token); err != nil {
			h.logger.Warn("backend logout failed", "error", err)
		}
	}
	h.sessions.Clear(r.Context(), w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ForgotPasswordPage renders the reset-request form.
func (h *Handler) ForgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "forgot_password.html", map[string]any{
		"Title": "Forgot Password",
		"Email": "",
	})
}

// ForgotPassword requests a reset email.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	if msg := validate.Email(email); msg != "" {
		h.render(w, r, "forgot_password.html", map[string]any{
			"Title": "Forgot Password",
			"Email": email,
			"Error": msg,
		})
		return
	}
	if err := h.api.ForgotPassword(r.Context(), email); err != nil {
		h.render(w, r, "forgot_password.html", map[string]any{
			"Title": "Forgot Password",
			"Email": email,
			"Error": errorMessage(err),
		})
		return
	}
	h.render(w, r, "forgot_password.html", map[string]any{
		"Title":   "Forgot Password",
		"Message": "If that address is registered, a reset link is on its way.",
	})
}

// ResetPasswordPage renders the new-password form for an emailed token.
func (h *Handler) ResetPasswordPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "reset_password.html", map[string]any{
		"Title": "Reset Password",
		"Token": r.URL.Query().Get("token"),
	})
}

// ResetPassword sets a new password using the emailed token.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := r.PostFormValue("token")
	password := r.PostFormValue("password")
	confirm := r.PostFormValue("confirm")

	if password == "" || password != confirm {
		h.render(w, r, "reset_password.html", map[string]any{
			"Title": "Reset Password",
			"Token": token,
			"Error": "Passwords must match and not be empty",
		})
		return
	}
	if err := h.api.ResetPassword(r.Context(), token, password); err != nil {
		h.render(w, r, "reset_password.html", map[string]any{
			"Title": "Reset Password",
			"Token": token,
			"Error": errorMessage(err),
		})
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// errorMessage extracts a display string from a backend error.
func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	if backend.IsNetworkError(err) {
		return "Network error - please check your connection"
	}
	return err.Error()
}
