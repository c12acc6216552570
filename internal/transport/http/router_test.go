package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"

	"vibesrm/internal/authz"
	"vibesrm/internal/cache"
	"vibesrm/internal/domain"
	"vibesrm/internal/events/eventstest"
	"vibesrm/internal/geo"
	"vibesrm/internal/service"
	"vibesrm/internal/store/storetest"
	"vibesrm/pkg/dto"
)

const (
	testSecret = "router-test-secret"
	testIssuer = "vibesrm-auth"
	lat        = 45.5048
	lon        = -73.5772
)

type env struct {
	server *httptest.Server
	signer *authz.Signer
	loc    domain.Location
}

func newEnv(t *testing.T) *env {
	t.Helper()
	st := storetest.NewStore(t)
	loc := domain.Location{ID: uuid.New(), Name: "McLennan Library", Category: domain.CategoryLibrary, Latitude: lat, Longitude: lon, Capacity: 100, HasWifi: true}
	if err := st.Locations().Create(context.Background(), &loc); err != nil {
		t.Fatalf("create location: %v", err)
	}

	svc := service.New(st, cache.Noop{}, &eventstest.Recorder{}, service.DefaultOptions())
	validator := authz.NewHMACValidator(testSecret, testIssuer)
	srv := httptest.NewServer(NewRouter(svc, RouterConfig{Auth: validator.Middleware}))
	t.Cleanup(srv.Close)

	signer, err := authz.NewSigner(testSecret, testIssuer)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	return &env{server: srv, signer: signer, loc: loc}
}

func (e *env) do(t *testing.T, user uuid.UUID, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if user != uuid.Nil {
		tok, err := e.signer.Sign(user, time.Hour)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func checkInBody(loc domain.Location, latitude float64, mode string) dto.CheckInRequest {
	lo := lon
	return dto.CheckInRequest{LocationID: loc.ID.String(), Latitude: &latitude, Longitude: &lo, Mode: mode}
}

func TestCheckInAndOutOverHTTP(t *testing.T) {
	e := newEnv(t)
	user := uuid.New()

	resp := e.do(t, user, http.MethodPost, "/v1/checkins", checkInBody(e.loc, lat, ""))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	in := decode[dto.CheckInResponse](t, resp)
	if in.CoinsEarned != 10 || in.GhostName != nil {
		t.Fatalf("unexpected check-in %+v", in)
	}

	resp = e.do(t, user, http.MethodPost, "/v1/checkins", checkInBody(e.loc, lat, ""))
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on second check-in, got %d", resp.StatusCode)
	}

	resp = e.do(t, user, http.MethodGet, "/v1/checkins/active", nil)
	active := decode[dto.ActiveSessionResponse](t, resp)
	if !active.Active || active.Session.SessionID != in.SessionID || active.Session.LocationName != "McLennan Library" {
		t.Fatalf("unexpected active session %+v", active)
	}

	req, err := http.NewRequest(http.MethodPost, e.server.URL+"/v1/checkins/"+in.SessionID+"/checkout", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	tok, _ := e.signer.Sign(user, time.Hour)
	req.Header.Set("Authorization", "Bearer "+tok)
	raw, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	defer raw.Body.Close()
	if raw.StatusCode != http.StatusOK {
		t.Fatalf("checkout without a body should succeed, got %d", raw.StatusCode)
	}

	resp = e.do(t, user, http.MethodPost, "/v1/checkins/"+in.SessionID+"/checkout", dto.CheckOutRequest{})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 on repeated checkout, got %d", resp.StatusCode)
	}

	resp = e.do(t, user, http.MethodGet, "/v1/me/stats", nil)
	stats := decode[dto.UserStatsResponse](t, resp)
	if stats.TotalCoins != 10 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	resp = e.do(t, user, http.MethodGet, "/v1/checkins/history?limit=5", nil)
	history := decode[dto.HistoryResponse](t, resp)
	if len(history.Sessions) != 1 || history.Sessions[0].Active {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestOutOfRangeBody(t *testing.T) {
	e := newEnv(t)
	resp := e.do(t, uuid.New(), http.MethodPost, "/v1/checkins", checkInBody(e.loc, geo.OffsetNorth(lat, 120), ""))
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	body := decode[dto.ErrorResponse](t, resp)
	if body.DistanceMeters == nil || *body.DistanceMeters != 120 || body.MaxMeters == nil || *body.MaxMeters != 50 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestEncouragementRateLimitHeaders(t *testing.T) {
	e := newEnv(t)
	owner, sender := uuid.New(), uuid.New()

	resp := e.do(t, owner, http.MethodPost, "/v1/checkins", checkInBody(e.loc, lat, "ghost"))
	in := decode[dto.CheckInResponse](t, resp)
	if in.GhostName == nil {
		t.Fatalf("ghost check-in without a name")
	}

	path := "/v1/ghosts/" + in.SessionID + "/encouragements"
	if resp := e.do(t, sender, http.MethodPost, path, dto.EncouragementRequest{Emoji: "🔥"}); resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	resp = e.do(t, sender, http.MethodPost, path, dto.EncouragementRequest{Emoji: "🔥"})
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	wait, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || wait < 1790 || wait > 1800 {
		t.Fatalf("unexpected Retry-After %q", resp.Header.Get("Retry-After"))
	}
	if body := decode[dto.ErrorResponse](t, resp); body.NextAvailable == nil {
		t.Fatalf("expected nextAvailable in body")
	}

	if resp := e.do(t, sender, http.MethodPost, path, dto.EncouragementRequest{Emoji: "🍕"}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for emoji, got %d", resp.StatusCode)
	}

	resp = e.do(t, owner, http.MethodGet, "/v1/ghosts/encouragements", nil)
	summary := decode[dto.EncouragementSummaryResponse](t, resp)
	if !summary.Active || summary.Total != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	resp = e.do(t, sender, http.MethodGet, "/v1/ghosts?locationId="+e.loc.ID.String(), nil)
	ghosts := decode[dto.GhostListResponse](t, resp)
	if len(ghosts.Ghosts) != 1 || ghosts.Ghosts[0].GhostName != *in.GhostName {
		t.Fatalf("unexpected ghosts %+v", ghosts)
	}

	resp = e.do(t, owner, http.MethodGet, "/v1/ghosts/"+in.SessionID+"/summary", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for ghost summary, got %d", resp.StatusCode)
	}
}

func TestAuthAndPublicRoutes(t *testing.T) {
	e := newEnv(t)

	if resp := e.do(t, uuid.Nil, http.MethodGet, "/v1/checkins/active", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
	if resp := e.do(t, uuid.Nil, http.MethodGet, "/healthz", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: %d", resp.StatusCode)
	}
	if resp := e.do(t, uuid.Nil, http.MethodGet, "/metrics", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics: %d", resp.StatusCode)
	}

	resp := e.do(t, uuid.Nil, http.MethodGet, "/v1/locations?category=library", nil)
	list := decode[dto.LocationListResponse](t, resp)
	if len(list.Locations) != 1 {
		t.Fatalf("unexpected locations %+v", list)
	}
	resp = e.do(t, uuid.Nil, http.MethodGet, "/v1/locations/"+e.loc.ID.String(), nil)
	details := decode[dto.LocationDetailsResponse](t, resp)
	if details.Location.ID != e.loc.ID.String() || !details.Location.Amenities.Wifi {
		t.Fatalf("unexpected details %+v", details)
	}
	if resp := e.do(t, uuid.Nil, http.MethodGet, "/v1/locations/"+uuid.NewString(), nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestMalformedBodies(t *testing.T) {
	e := newEnv(t)
	user := uuid.New()
	tok, _ := e.signer.Sign(user, time.Hour)

	req, _ := http.NewRequest(http.MethodPost, e.server.URL+"/v1/checkins", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	if resp := e.do(t, user, http.MethodGet, "/v1/checkins/history?limit=zero", nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", resp.StatusCode)
	}
}

func TestErrorResponseMapping(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		err    error
		status int
	}{
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{domain.ErrNotFound, http.StatusNotFound},
		{&domain.OutOfRangeError{DistanceMeters: 60, MaxMeters: 50}, http.StatusUnprocessableEntity},
		{domain.ErrConflict, http.StatusConflict},
		{&domain.RateLimitedError{NextAvailable: now.Add(90 * time.Second)}, http.StatusTooManyRequests},
		{domain.ErrUnavailable, http.StatusServiceUnavailable},
		{context.Canceled, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		status, _, header := errorResponse(tc.err, now)
		if status != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, status)
		}
		if status == http.StatusTooManyRequests && header.Get("Retry-After") != "90" {
			t.Fatalf("expected Retry-After 90, got %q", header.Get("Retry-After"))
		}
	}
}

func TestCORSPreflightIsNotCredentialed(t *testing.T) {
	e := newEnv(t)
	req, err := http.NewRequest(http.MethodOptions, e.server.URL+"/v1/checkins", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Origin", "https://app.example.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	if resp.Header.Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected preflight to be allowed, headers %v", resp.Header)
	}
	if got := resp.Header.Get("Access-Control-Allow-Credentials"); got != "" {
		t.Fatalf("expected no credentialed CORS, got %q", got)
	}
}
