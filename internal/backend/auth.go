package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// OTPResponse is the reply to a send-otp request. UserExists steers the UI
// between sign-in and registration; DevelopmentOTP is only ever set by
// non-production backends.
type OTPResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	UserExists     bool   `json:"userExists"`
	DevelopmentOTP string `json:"developmentOTP,omitempty"`
}

// AuthResult is a verified identity: the bearer token plus the user record.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// SendOTP emails a one-time code to the address.
func (c *Client) SendOTP(ctx context.Context, email string) (*OTPResponse, error) {
	var out OTPResponse
	err := c.do(ctx, http.MethodPost, "/auth/send-otp", "", map[string]string{"email": email}, &out)
	if err != nil {
		return nil, err
	}
	if !out.Success {
		msg := out.Message
		if msg == "" {
			msg = "Failed to send OTP"
		}
		return nil, &APIError{Status: http.StatusOK, Kind: KindValidation, Message: msg}
	}
	return &out, nil
}

// VerifyOTP exchanges the emailed code for a session. First and last name are
// only sent for new users completing registration.
func (c *Client) VerifyOTP(ctx context.Context, email, otp, firstName, lastName string) (*AuthResult, error) {
	payload := map[string]string{"email": email, "otp": otp}
	if firstName != "" && lastName != "" {
		payload["firstName"] = firstName
		payload["lastName"] = lastName
	}
	data, err := c.call(ctx, http.MethodPost, "/auth/verify-otp", "", payload)
	if err != nil {
		return nil, err
	}
	return decodeAuthResult(data)
}

// Login authenticates with email and password. Only the admin account uses
// this path; patients authenticate via OTP.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	data, err := c.call(ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	return decodeAuthResult(data)
}

// Register creates an account directly (non-OTP path).
func (c *Client) Register(ctx context.Context, fields map[string]string) (*AuthResult, error) {
	data, err := c.call(ctx, http.MethodPost, "/auth/register", "", fields)
	if err != nil {
		return nil, err
	}
	return decodeAuthResult(data)
}

// Logout invalidates the token server-side. Callers clear local session
// state regardless of the outcome.
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.call(ctx, http.MethodPost, "/auth/logout", token, nil)
	return err
}

// Me fetches the current user's profile.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	data, err := c.call(ctx, http.MethodGet, "/auth/me", token, nil)
	if err != nil {
		return nil, err
	}
	return decodeUser(data)
}

// VerifyToken asks the backend whether the token is still valid.
func (c *Client) VerifyToken(ctx context.Context, token string) error {
	_, err := c.call(ctx, http.MethodGet, "/auth/verify-token", token, nil)
	return err
}

// ChangePassword updates the admin account's password.
func (c *Client) ChangePassword(ctx context.Context, token, current, next, confirm string) error {
	_, err := c.call(ctx, http.MethodPut, "/auth/change-password", token, map[string]string{
		"currentPassword": current,
		"newPassword":     next,
		"confirmPassword": confirm,
	})
	return err
}

// ForgotPassword triggers a reset email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	_, err := c.call(ctx, http.MethodPost, "/auth/forgot-password", "", map[string]string{"email": email})
	return err
}

// ResetPassword completes a reset using the emailed token.
func (c *Client) ResetPassword(ctx context.Context, resetToken, password string) error {
	_, err := c.call(ctx, http.MethodPost, "/auth/reset-password", "", map[string]string{
		"token":    resetToken,
		"password": password,
	})
	return err
}

// decodeAuthResult unwraps {user, token} from the envelope data.
func decodeAuthResult(data json.RawMessage) (*AuthResult, error) {
	var result AuthResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("backend: decode auth result: %w", err)
	}
	if result.Token == "" {
		return nil, &APIError{Kind: KindValidation, Message: "Login failed"}
	}
	return &result, nil
}

// decodeUser unwraps a user document, accepting both {user: {...}} and a
// bare user object.
func decodeUser(data json.RawMessage) (*User, error) {
	var wrapped struct {
		User *User `json:"user"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.User != nil {
		return wrapped.User, nil
	}
	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("backend: decode user: %w", err)
	}
	return &user, nil
}
