package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/claude/gymbot/internal/storage"
)

// fakeStore serves canned data for handler tests.
type fakeStore struct {
	storage.Store

	daily []storage.DayActivity
}

func (f *fakeStore) CountWorkoutsBetween(ctx context.Context, start, end time.Time) (int, error) {
	return 2, nil
}

func (f *fakeStore) CountSnoozesBetween(ctx context.Context, start, end time.Time) (int, error) {
	return 1, nil
}

func (f *fakeStore) SetsByLabelBetween(ctx context.Context, start, end time.Time) ([]storage.LabelCount, error) {
	return []storage.LabelCount{{Label: "bench press", Sets: 4, Reps: 32, Volume: 800}}, nil
}

func (f *fakeStore) SetsByAreaBetween(ctx context.Context, start, end time.Time) ([]storage.AreaCount, error) {
	return []storage.AreaCount{{Area: "chest", Sets: 4}}, nil
}

func (f *fakeStore) DailyActivity(ctx context.Context, start, end time.Time) ([]storage.DayActivity, error) {
	return f.daily, nil
}

// fakeDriver records which bot jobs the HTTP layer triggered.
type fakeDriver struct {
	nudges    int
	greetings int
	updates   [][]byte
}

func (f *fakeDriver) HandleTelegramUpdate(ctx context.Context, body []byte) error {
	f.updates = append(f.updates, body)
	return nil
}

func (f *fakeDriver) CheckDeadlineNudges(ctx context.Context) error {
	f.nudges++
	return nil
}

func (f *fakeDriver) MorningGreeting(ctx context.Context) error {
	f.greetings++
	return nil
}

func newTestServer(t *testing.T) (*Server, *fakeDriver) {
	t.Helper()
	driver := &fakeDriver{}
	store := &fakeStore{daily: []storage.DayActivity{{Day: "2026-08-24", Workouts: 1, Sets: 3}}}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, driver, "test-key", "hook-secret", log), driver
}

// TestHealthz verifies the liveness endpoint.
func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

// TestSummaryEndpoint verifies period parsing and the JSON shape.
func TestSummaryEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/summary?period=month", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var body struct {
		Period    string `json:"period"`
		Workouts  int    `json:"workouts"`
		TotalSets int    `json:"total_sets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Period != "month" || body.Workouts != 2 || body.TotalSets != 4 {
		t.Errorf("body = %+v", body)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/summary?period=decade", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad period status = %d", rec.Code)
	}
}

// TestDailyChartEndpoint verifies the chart data endpoint and days bounds.
func TestDailyChartEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/charts/daily?days=7", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "2026-08-24") {
		t.Errorf("body = %s", rec.Body)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/charts/daily?days=0", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("days=0 status = %d", rec.Code)
	}
}

// TestCronEndpointsRequireAPIKey verifies the trigger endpoints reject
// missing and wrong keys and fire the bot jobs with the right one.
func TestCronEndpointsRequireAPIKey(t *testing.T) {
	srv, driver := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cron/nudges", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing key status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cron/nudges", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong key status = %d", rec.Code)
	}
	if driver.nudges != 0 {
		t.Errorf("unauthorized request triggered nudges")
	}

	for path, count := range map[string]*int{
		"/api/v1/cron/nudges":   &driver.nudges,
		"/api/v1/cron/greeting": &driver.greetings,
	} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("X-API-Key", "test-key")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
		if *count != 1 {
			t.Errorf("%s triggered %d times, want 1", path, *count)
		}
	}
}

// TestTelegramWebhook verifies the secret-token gate and update delivery.
func TestTelegramWebhook(t *testing.T) {
	srv, driver := newTestServer(t)
	payload := `{"update_id":1}`

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(payload)))
	if rec.Code != http.StatusForbidden {
		t.Errorf("missing secret status = %d", rec.Code)
	}
	if len(driver.updates) != 0 {
		t.Error("unauthenticated webhook delivered an update")
	}

	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(payload))
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", "hook-secret")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(driver.updates) != 1 || string(driver.updates[0]) != payload {
		t.Errorf("updates = %q", driver.updates)
	}
}
