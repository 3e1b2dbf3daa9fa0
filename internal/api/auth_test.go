package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/soulparadise/web/internal/domain"
)

const authSuccessBody = `{
	"accessToken": "acc-1",
	"refreshToken": "ref-1",
	"user": {"id": "u1", "email": "amy@example.com", "name": "Amy", "emailVerified": true, "provider": "local"}
}`

// recordingBackend captures the last request for endpoint assertions.
type recordingBackend struct {
	method string
	path   string
	auth   string
	body   map[string]interface{}
}

func newRecordingBackend(t *testing.T, status int, respBody string) (*recordingBackend, *Client) {
	t.Helper()
	rec := &recordingBackend{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.auth = r.Header.Get("Authorization")
		rec.body = nil
		json.NewDecoder(r.Body).Decode(&rec.body)
		w.WriteHeader(status)
		w.Write([]byte(respBody))
	}))
	t.Cleanup(srv.Close)
	return rec, New(srv.URL, 5*time.Second, testLogger())
}

func TestClient_Login(t *testing.T) {
	rec, client := newRecordingBackend(t, http.StatusOK, authSuccessBody)

	resp, err := client.Login(context.Background(), domain.Credentials{Email: "amy@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.method != http.MethodPost || rec.path != "/auth/login" {
		t.Errorf("called %s %s, want POST /auth/login", rec.method, rec.path)
	}
	if rec.body["email"] != "amy@example.com" {
		t.Errorf("email not sent, body: %v", rec.body)
	}
	if resp.AccessToken != "acc-1" || resp.RefreshToken != "ref-1" {
		t.Errorf("tokens not decoded: %+v", resp)
	}
	if resp.User.ID != "u1" {
		t.Errorf("user not decoded: %+v", resp.User)
	}
}

func TestClient_Register(t *testing.T) {
	rec, client := newRecordingBackend(t, http.StatusCreated, authSuccessBody)

	_, err := client.Register(context.Background(), domain.RegisterParams{
		Name: "Amy", Email: "amy@example.com", Password: "secret123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.path != "/auth/register" {
		t.Errorf("path = %s, want /auth/register", rec.path)
	}
	if rec.body["name"] != "Amy" {
		t.Errorf("name not sent, body: %v", rec.body)
	}
}

func TestClient_GoogleAuth(t *testing.T) {
	rec, client := newRecordingBackend(t, http.StatusOK, authSuccessBody)

	if _, err := client.GoogleAuth(context.Background(), "google-id-token"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.path != "/auth/google-auth" {
		t.Errorf("path = %s, want /auth/google-auth", rec.path)
	}
	if rec.body["idToken"] != "google-id-token" {
		t.Errorf("idToken not sent, body: %v", rec.body)
	}
}

func TestClient_Refresh_UsesRefreshTokenAsBearer(t *testing.T) {
	rec, client := newRecordingBackend(t, http.StatusOK, authSuccessBody)

	if _, err := client.Refresh(context.Background(), "ref-old"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.path != "/auth/refresh" {
		t.Errorf("path = %s, want /auth/refresh", rec.path)
	}
	if rec.auth != "Bearer ref-old" {
		t.Errorf("Authorization = %q, want the refresh token as bearer", rec.auth)
	}
}

func TestClient_CurrentUser(t *testing.T) {
	rec, client := newRecordingBackend(t, http.StatusOK,
		`{"id": "u1", "email": "amy@example.com", "name": "Amy", "emailVerified": true, "provider": "local"}`)

	user, err := client.CurrentUser(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.method != http.MethodGet || rec.path != "/auth/me" {
		t.Errorf("called %s %s, want GET /auth/me", rec.method, rec.path)
	}
	if rec.auth != "Bearer acc-1" {
		t.Errorf("Authorization = %q", rec.auth)
	}
	if user.Email != "amy@example.com" {
		t.Errorf("user = %+v", user)
	}
}

func TestClient_LogoutEndpoints(t *testing.T) {
	rec, client := newRecordingBackend(t, http.StatusOK, `{"message":"ok"}`)

	if err := client.Logout(context.Background(), "acc-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.path != "/auth/logout" || rec.auth != "Bearer acc-1" {
		t.Errorf("logout hit %s auth=%q", rec.path, rec.auth)
	}

	if err := client.LogoutAll(context.Background(), "acc-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.path != "/auth/logout-all" {
		t.Errorf("logout-all hit %s", rec.path)
	}
}

func TestClient_PasswordAndVerificationEndpoints(t *testing.T) {
	rec, client := newRecordingBackend(t, http.StatusOK, `{"message":"ok"}`)
	ctx := context.Background()

	if err := client.VerifyEmail(ctx, "tok-v"); err != nil {
		t.Fatal(err)
	}
	if rec.path != "/auth/verify-email" || rec.body["token"] != "tok-v" {
		t.Errorf("verify-email: path=%s body=%v", rec.path, rec.body)
	}

	if err := client.ResendVerification(ctx, "amy@example.com"); err != nil {
		t.Fatal(err)
	}
	if rec.path != "/auth/resend-verification" || rec.body["email"] != "amy@example.com" {
		t.Errorf("resend-verification: path=%s body=%v", rec.path, rec.body)
	}

	if err := client.ForgotPassword(ctx, "amy@example.com"); err != nil {
		t.Fatal(err)
	}
	if rec.path != "/auth/forgot-password" {
		t.Errorf("forgot-password hit %s", rec.path)
	}

	if err := client.ResetPassword(ctx, "tok-r", "newpassword"); err != nil {
		t.Fatal(err)
	}
	if rec.path != "/auth/reset-password" || rec.body["password"] != "newpassword" {
		t.Errorf("reset-password: path=%s body=%v", rec.path, rec.body)
	}
}

func TestClient_LatestTestimonials(t *testing.T) {
	rec, client := newRecordingBackend(t, http.StatusOK, `{
		"success": true,
		"data": [{"id": "t1", "name": "Ben", "review": "Great trip", "rating": 5, "service": "package", "isApproved": true}],
		"count": 1
	}`)

	items, err := client.LatestTestimonials(context.Background(), 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.path != "/testimonials" {
		t.Errorf("path = %s, want /testimonials", rec.path)
	}
	if len(items) != 1 || items[0].Rating != 5 {
		t.Errorf("items = %+v", items)
	}
}

func TestClient_SubmitContact(t *testing.T) {
	rec, client := newRecordingBackend(t, http.StatusCreated,
		`{"success":true,"message":"received","data":{"id":"c1","createdAt":"2025-08-01T10:00:00Z"}}`)

	res, err := client.SubmitContact(context.Background(), domain.ContactMessage{
		FullName: "Ben", Email: "ben@example.com", Message: "Hi",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.method != http.MethodPost || rec.path != "/contacts" {
		t.Errorf("called %s %s, want POST /contacts", rec.method, rec.path)
	}
	if res.ID != "c1" {
		t.Errorf("result = %+v", res)
	}
}
