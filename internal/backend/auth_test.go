package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendOTPReportsUserExists(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/send-otp", r.URL.Path)
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "asha@example.com", body["email"])
		json.NewEncoder(w).Encode(map[string]any{
			"success":    true,
			"message":    "OTP sent",
			"userExists": true,
		})
	}))

	resp, err := client.SendOTP(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.True(t, resp.UserExists)
	assert.Empty(t, resp.DevelopmentOTP)
}

func TestSendOTPDevelopmentCode(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success":        true,
			"userExists":     false,
			"developmentOTP": "123456",
		})
	}))

	resp, err := client.SendOTP(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.False(t, resp.UserExists)
	assert.Equal(t, "123456", resp.DevelopmentOTP)
}

func TestVerifyOTPOmitsNamesForExistingUsers(t *testing.T) {
	var body map[string]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"token": "tok-1",
				"user":  map[string]any{"_id": "u1", "email": body["email"], "role": "patient"},
			},
		})
	}))

	result, err := client.VerifyOTP(context.Background(), "asha@example.com", "123456", "", "")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", result.Token)
	assert.Equal(t, "patient", result.User.Role)
	_, hasFirst := body["firstName"]
	assert.False(t, hasFirst, "firstName must be omitted for existing users")
}

func TestVerifyOTPSendsNamesForNewUsers(t *testing.T) {
	var body map[string]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"token": "tok-2",
				"user":  map[string]any{"_id": "u2", "email": body["email"], "role": "patient"},
			},
		})
	}))

	_, err := client.VerifyOTP(context.Background(), "new@example.com", "654321", "Asha", "Patel")
	require.NoError(t, err)
	assert.Equal(t, "Asha", body["firstName"])
	assert.Equal(t, "Patel", body["lastName"])
}

func TestMeUnwrapsUser(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"user": map[string]any{"_id": "u1", "email": "asha@example.com", "firstName": "Asha", "lastName": "Patel"},
			},
		})
	}))

	user, err := client.Me(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "Asha Patel", user.FullName())
}

func TestLoginMissingTokenFails(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{}})
	}))

	_, err := client.Login(context.Background(), "admin@kasamhealthcare.com", "pw")
	require.Error(t, err)
	assert.EqualError(t, err, "Login failed")
}
