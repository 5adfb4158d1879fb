package handlers_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

type userPayload struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type tokenPayload struct {
	Token string `json:"token"`
}

func TestUserCreate(t *testing.T) {
	app, webApp := newTestApp(t)

	t.Run("valid payload", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/user/create", "", map[string]string{
			"email":    "test@example.com",
			"password": "testpass123",
			"name":     "Test Name",
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if strings.Contains(string(body), "password") {
			t.Errorf("response body leaks password field: %s", body)
		}

		user, err := webApp.Repos.User.GetByEmail(context.Background(), "test@example.com")
		if err != nil {
			t.Fatalf("created user not found: %v", err)
		}
		if !user.CheckPassword("testpass123") {
			t.Error("stored password hash does not match the submitted password")
		}
		if user.PasswordHash == "testpass123" {
			t.Error("password stored in plain text")
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		seedUser(t, webApp, "taken@example.com", "testpass123", "Existing")

		resp := doJSON(t, app, http.MethodPost, "/api/user/create", "", map[string]string{
			"email":    "taken@example.com",
			"password": "testpass123",
			"name":     "Second",
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}

		env := decodeEnvelope(t, resp)
		if env.Success {
			t.Error("envelope success = true, want false")
		}
		if env.Error == nil || env.Error.Details["email"] != "A user with that email already exists" {
			t.Errorf("error details = %+v, want duplicate email message", env.Error)
		}
	})

	t.Run("password too short", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/user/create", "", map[string]string{
			"email":    "short@example.com",
			"password": "pw",
			"name":     "Short Password",
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}

		env := decodeEnvelope(t, resp)
		if env.Error == nil || env.Error.Details["password"] != "Password must be at least 5 characters" {
			t.Errorf("error details = %+v, want short password message", env.Error)
		}

		// The rejected user must not exist
		exists, err := webApp.Repos.User.EmailExists(context.Background(), "short@example.com")
		if err != nil {
			t.Fatalf("check email: %v", err)
		}
		if exists {
			t.Error("user was created despite failing validation")
		}
	})

	t.Run("invalid email", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/user/create", "", map[string]string{
			"email":    "not-an-email",
			"password": "testpass123",
			"name":     "Bad Email",
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}

		env := decodeEnvelope(t, resp)
		if env.Error == nil || env.Error.Details["email"] != "Enter a valid email address" {
			t.Errorf("error details = %+v, want invalid email message", env.Error)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/user/create", "", map[string]string{})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}

		env := decodeEnvelope(t, resp)
		if env.Error == nil {
			t.Fatal("expected error payload")
		}
		for _, field := range []string{"email", "password", "name"} {
			if env.Error.Details[field] == "" {
				t.Errorf("missing validation message for %q", field)
			}
		}
	})
}

func TestTokenCreate(t *testing.T) {
	app, webApp := newTestApp(t)

	seedUser(t, webApp, "login@example.com", "testpass123", "Login User")

	inactive := seedUser(t, webApp, "inactive@example.com", "testpass123", "Inactive")
	inactive.IsActive = false
	if err := webApp.Repos.User.Update(context.Background(), inactive); err != nil {
		t.Fatalf("deactivate user: %v", err)
	}

	t.Run("valid credentials", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/user/token", "", map[string]string{
			"email":    "login@example.com",
			"password": "testpass123",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var payload tokenPayload
		decodeData(t, decodeEnvelope(t, resp), &payload)
		if len(payload.Token) != 40 {
			t.Errorf("token length = %d, want 40", len(payload.Token))
		}

		// A second request returns the same key, not a new one
		resp = doJSON(t, app, http.MethodPost, "/api/user/token", "", map[string]string{
			"email":    "login@example.com",
			"password": "testpass123",
		})
		var repeat tokenPayload
		decodeData(t, decodeEnvelope(t, resp), &repeat)
		if repeat.Token != payload.Token {
			t.Errorf("repeat token = %q, want %q", repeat.Token, payload.Token)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/user/token", "", map[string]string{
			"email":    "login@example.com",
			"password": "wrongpass",
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}

		env := decodeEnvelope(t, resp)
		if env.Error == nil || env.Error.Details["non_field_errors"] != "Unable to authenticate with provided credentials" {
			t.Errorf("error details = %+v, want credential failure message", env.Error)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/user/token", "", map[string]string{
			"email":    "nobody@example.com",
			"password": "testpass123",
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}

		env := decodeEnvelope(t, resp)
		if env.Error == nil || env.Error.Details["non_field_errors"] == "" {
			t.Errorf("error details = %+v, want non_field_errors", env.Error)
		}
	})

	t.Run("inactive user", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/user/token", "", map[string]string{
			"email":    "inactive@example.com",
			"password": "testpass123",
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}

		env := decodeEnvelope(t, resp)
		if env.Error == nil || env.Error.Details["non_field_errors"] == "" {
			t.Errorf("error details = %+v, want non_field_errors", env.Error)
		}
	})

	t.Run("missing password", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/user/token", "", map[string]string{
			"email": "login@example.com",
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}

		env := decodeEnvelope(t, resp)
		if env.Error == nil || env.Error.Details["password"] != "Password is required" {
			t.Errorf("error details = %+v, want required password message", env.Error)
		}
	})
}

// TestTokenRoundTrip drives the whole signup flow through the API alone:
// register, obtain a token, then use it to fetch the profile.
func TestTokenRoundTrip(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/user/create", "", map[string]string{
		"email":    "roundtrip@example.com",
		"password": "testpass123",
		"name":     "Round Trip",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	resp = doJSON(t, app, http.MethodPost, "/api/user/token", "", map[string]string{
		"email":    "roundtrip@example.com",
		"password": "testpass123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("token status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var payload tokenPayload
	decodeData(t, decodeEnvelope(t, resp), &payload)

	resp = doJSON(t, app, http.MethodGet, "/api/user/me", payload.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var profile userPayload
	decodeData(t, decodeEnvelope(t, resp), &profile)
	if profile.Email != "roundtrip@example.com" || profile.Name != "Round Trip" {
		t.Errorf("profile = %+v, want the registered account", profile)
	}
}

func TestMeRetrieve(t *testing.T) {
	app, webApp := newTestApp(t)

	user := seedUser(t, webApp, "me@example.com", "testpass123", "Profile User")
	token := seedToken(t, webApp, user)

	t.Run("requires authentication", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/user/me", "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
		}
	})

	t.Run("rejects unknown token", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/user/me", strings.Repeat("f", 40), nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
		}
	})

	t.Run("returns the profile", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/user/me", token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var payload userPayload
		decodeData(t, decodeEnvelope(t, resp), &payload)
		if payload.ID != user.ID || payload.Email != "me@example.com" || payload.Name != "Profile User" {
			t.Errorf("profile = %+v, want seeded user", payload)
		}
	})
}

func TestMeUpdate(t *testing.T) {
	app, webApp := newTestApp(t)

	user := seedUser(t, webApp, "update@example.com", "testpass123", "Before")
	token := seedToken(t, webApp, user)

	t.Run("full update with password", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, "/api/user/me", token, map[string]string{
			"email":    "after@example.com",
			"password": "newpass456",
			"name":     "After",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var payload userPayload
		decodeData(t, decodeEnvelope(t, resp), &payload)
		if payload.Email != "after@example.com" || payload.Name != "After" {
			t.Errorf("profile = %+v, want updated values", payload)
		}

		stored, err := webApp.Repos.User.GetByID(context.Background(), user.ID)
		if err != nil {
			t.Fatalf("reload user: %v", err)
		}
		if !stored.CheckPassword("newpass456") {
			t.Error("password was not updated")
		}

		// The token survives a profile update and sees the new state
		resp = doJSON(t, app, http.MethodGet, "/api/user/me", token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status after update = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		decodeData(t, decodeEnvelope(t, resp), &payload)
		if payload.Name != "After" {
			t.Errorf("profile name after update = %q, want %q", payload.Name, "After")
		}
	})

	t.Run("password optional", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, "/api/user/me", token, map[string]string{
			"email": "after@example.com",
			"name":  "Renamed Again",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		stored, err := webApp.Repos.User.GetByID(context.Background(), user.ID)
		if err != nil {
			t.Fatalf("reload user: %v", err)
		}
		if !stored.CheckPassword("newpass456") {
			t.Error("password changed on a payload without one")
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		seedUser(t, webApp, "occupied@example.com", "testpass123", "Occupant")

		resp := doJSON(t, app, http.MethodPut, "/api/user/me", token, map[string]string{
			"email": "occupied@example.com",
			"name":  "After",
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}

		env := decodeEnvelope(t, resp)
		if env.Error == nil || env.Error.Details["email"] != "A user with that email already exists" {
			t.Errorf("error details = %+v, want duplicate email message", env.Error)
		}
	})
}

func TestMePartialUpdate(t *testing.T) {
	app, webApp := newTestApp(t)

	user := seedUser(t, webApp, "patch@example.com", "testpass123", "Patch User")
	token := seedToken(t, webApp, user)

	t.Run("name only", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPatch, "/api/user/me", token, map[string]string{
			"name": "New Name",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var payload userPayload
		decodeData(t, decodeEnvelope(t, resp), &payload)
		if payload.Name != "New Name" {
			t.Errorf("name = %q, want %q", payload.Name, "New Name")
		}
		if payload.Email != "patch@example.com" {
			t.Errorf("email = %q, want unchanged", payload.Email)
		}
	})

	t.Run("password only", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPatch, "/api/user/me", token, map[string]string{
			"password": "patchedpass",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		stored, err := webApp.Repos.User.GetByID(context.Background(), user.ID)
		if err != nil {
			t.Fatalf("reload user: %v", err)
		}
		if !stored.CheckPassword("patchedpass") {
			t.Error("password was not updated")
		}
		if stored.Name != "New Name" {
			t.Errorf("name = %q, want untouched by password patch", stored.Name)
		}
	})

	t.Run("short password rejected", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPatch, "/api/user/me", token, map[string]string{
			"password": "pw",
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}
	})
}
