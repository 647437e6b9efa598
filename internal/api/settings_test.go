package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/asterview/asterview/internal/auth"
	"github.com/asterview/asterview/internal/settings"
)

type fakeSettingsStore struct {
	saved map[string]settings.ReportSettings
	err   error
}

func newFakeSettingsStore() *fakeSettingsStore {
	return &fakeSettingsStore{saved: make(map[string]settings.ReportSettings)}
}

func (s *fakeSettingsStore) SaveSettings(_ context.Context, r settings.ReportSettings) error {
	if s.err != nil {
		return s.err
	}
	s.saved[r.UserID] = r
	return nil
}

func (s *fakeSettingsStore) GetSettings(_ context.Context, userID string) (*settings.ReportSettings, error) {
	if s.err != nil {
		return nil, s.err
	}
	r, ok := s.saved[userID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func withClaims(req *http.Request, email string) *http.Request {
	ctx := context.WithValue(req.Context(), auth.UserContextKey, &auth.Claims{Email: email})
	return req.WithContext(ctx)
}

func TestSettingsRoundTrip(t *testing.T) {
	st := newFakeSettingsStore()
	h := NewSettingsHandler(st, zerolog.Nop())

	body := `{"queues":["support"],"slaThresholdSeconds":30,"callbackWindowHours":4}`
	req := withClaims(httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(body)), "user@example.com")
	rec := httptest.NewRecorder()
	h.HandlePut(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	saved, ok := st.saved["user@example.com"]
	if !ok {
		t.Fatal("expected settings saved under claims email")
	}
	if saved.SLAThresholdSeconds != 30 || saved.CallbackWindowHours != 4 {
		t.Errorf("unexpected saved settings %+v", saved)
	}
	if saved.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt stamped")
	}

	req = withClaims(httptest.NewRequest(http.MethodGet, "/api/settings", nil), "user@example.com")
	rec = httptest.NewRecorder()
	h.HandleGet(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got settings.ReportSettings
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.UserID != "user@example.com" || len(got.Queues) != 1 {
		t.Errorf("unexpected settings %+v", got)
	}
}

func TestSettingsGetUnknownUser(t *testing.T) {
	h := NewSettingsHandler(newFakeSettingsStore(), zerolog.Nop())

	req := withClaims(httptest.NewRequest(http.MethodGet, "/api/settings", nil), "new@example.com")
	rec := httptest.NewRecorder()
	h.HandleGet(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with defaults, got %d", rec.Code)
	}
	var got settings.ReportSettings
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.UserID != "new@example.com" {
		t.Errorf("expected defaults keyed to user, got %+v", got)
	}
}

func TestSettingsUnauthorized(t *testing.T) {
	h := NewSettingsHandler(newFakeSettingsStore(), zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	rec := httptest.NewRecorder()
	h.HandleGet(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("GET without claims: expected 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader("{}"))
	rec = httptest.NewRecorder()
	h.HandlePut(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("PUT without claims: expected 401, got %d", rec.Code)
	}
}

func TestSettingsStoreFailure(t *testing.T) {
	st := newFakeSettingsStore()
	st.err = errors.New("dynamo down")
	h := NewSettingsHandler(st, zerolog.Nop())

	req := withClaims(httptest.NewRequest(http.MethodGet, "/api/settings", nil), "user@example.com")
	rec := httptest.NewRecorder()
	h.HandleGet(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestSettingsPutBadJSON(t *testing.T) {
	h := NewSettingsHandler(newFakeSettingsStore(), zerolog.Nop())

	req := withClaims(httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader("{")), "user@example.com")
	rec := httptest.NewRecorder()
	h.HandlePut(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
