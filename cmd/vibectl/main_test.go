package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"vibesrm/internal/authz"
	"vibesrm/pkg/dto"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenIsAcceptedByValidator(t *testing.T) {
	out, err := run(t, "token", "--secret", "s3cret", "--issuer", "iss", "--user", "6f1c2a8e-7a55-4d0e-9d1c-3b2f0c9a1e11")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	var res map[string]string
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if res["userId"] != "6f1c2a8e-7a55-4d0e-9d1c-3b2f0c9a1e11" {
		t.Fatalf("unexpected user %q", res["userId"])
	}

	v := authz.NewHMACValidator("s3cret", "iss")
	var seen string
	h := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := authz.UserIDFrom(r.Context())
		seen = id.String()
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+res["token"])
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || seen != res["userId"] {
		t.Fatalf("token rejected: status %d, user %q", rec.Code, seen)
	}
}

func TestCheckOutSendsOnlyChangedFlags(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkins/abc/checkout" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(dto.CheckOutResponse{SessionID: "abc", BonusCoins: 1})
	}))
	defer srv.Close()

	if _, err := run(t, "--server", srv.URL, "checkout", "abc", "--noise", "3", "--outlets=true"); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(body) != 2 || body["noiseLevel"] != float64(3) || body["outletsAvailable"] != true {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestAPIErrorsSurface(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(dto.ErrorResponse{Error: "already checked in"})
	}))
	defer srv.Close()

	_, err := run(t, "--server", srv.URL, "checkin", "--location", "loc", "--lat", "1", "--lon", "2")
	if err == nil || err.Error() != "vibesrm: 409 already checked in" {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestCheckInRequiresLocation(t *testing.T) {
	if _, err := run(t, "checkin"); err == nil {
		t.Fatalf("expected missing location error")
	}
}
