package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/omarshaarawi/playbuilder/internal/api/simapi"
	"github.com/omarshaarawi/playbuilder/internal/builder"
	"github.com/omarshaarawi/playbuilder/internal/models"
	"github.com/omarshaarawi/playbuilder/internal/repository/memory"
)

const testSpec = `{"state":{"offense":"KC","defense":"BUF","down":1,"distance":10,"yardline_100":75},"action":{"type":"RUN"}}`

// MockBackend implements builder.Backend for testing
type MockBackend struct {
	parseRequests []models.ParseRequest
	simRequests   []models.SimRequest
	driveRequests []models.DriveRequest
	parseErr      error
}

func (m *MockBackend) ParseFreeform(ctx context.Context, req models.ParseRequest) (*models.ParseResult, error) {
	m.parseRequests = append(m.parseRequests, req)
	if m.parseErr != nil {
		return nil, m.parseErr
	}
	return &models.ParseResult{Spec: json.RawMessage(testSpec), Warnings: []string{"Punting inside opponent 40 is uncommon."}}, nil
}

func (m *MockBackend) Simulate(ctx context.Context, req models.SimRequest) (*models.SimSummary, error) {
	m.simRequests = append(m.simRequests, req)
	return &models.SimSummary{YardsMean: 4.3, YardsP10: -1, YardsP50: 4, YardsP90: 10, TDRate: 0.231, Seed: 5}, nil
}

func (m *MockBackend) SimulateDrive(ctx context.Context, req models.DriveRequest) (*models.DriveSummary, error) {
	m.driveRequests = append(m.driveRequests, req)
	return &models.DriveSummary{
		Plays: []models.DrivePlay{
			{Down: 1, Distance: 10, YardLine100: 75, CallType: "RUN", Yards: 3, Result: models.ResultGain},
			{Down: 2, Distance: 7, YardLine100: 72, CallType: "PASS", Yards: 72, Result: models.ResultTouchdown},
		},
		PointsForOffense:   6,
		TimeElapsedSeconds: 16,
		Ended:              models.EndTouchdown,
	}, nil
}

type mockHealth struct {
	report models.HealthReport
}

func (m mockHealth) Health(ctx context.Context) models.HealthReport {
	return m.report
}

type testServer struct {
	backend *MockBackend
	repo    *memory.Repository
	router  http.Handler
	cookie  *http.Cookie
}

func newTestServer(t *testing.T, health models.HealthReport) *testServer {
	t.Helper()
	backend := &MockBackend{}
	repo := memory.NewRepository()
	sessions := builder.NewSessions(backend, "KC", "BUF", 1000)

	h, err := NewHandler(sessions, mockHealth{report: health}, repo, "http://127.0.0.1:8000")
	if err != nil {
		t.Fatalf("NewHandler() error: %v", err)
	}
	return &testServer{backend: backend, repo: repo, router: NewRouter(h, []string{"http://localhost:3000"})}
}

// do sends a request, carrying the session cookie between calls.
func (s *testServer) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie {
			s.cookie = c
		}
	}
	return w
}

func TestBuilderPage_InitialState(t *testing.T) {
	s := newTestServer(t, models.HealthReport{OK: true})

	w := s.do("GET", "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if s.cookie == nil {
		t.Fatal("expected a session cookie")
	}

	body := w.Body.String()
	if !strings.Contains(body, `value="KC"`) || !strings.Contains(body, `value="BUF"`) {
		t.Error("default teams should be prefilled")
	}
	if strings.Count(body, "disabled") != 2 {
		t.Errorf("expected both simulate buttons disabled before a parse, body:\n%s", body)
	}
}

func TestParse_StoresSpecAndWarnings(t *testing.T) {
	s := newTestServer(t, models.HealthReport{OK: true})
	s.do("GET", "/", nil)

	w := s.do("POST", "/parse", url.Values{
		"text":    {"4th & 2 at own 45, punt"},
		"offense": {"chiefs"},
		"defense": {"BUF"},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", w.Code)
	}

	if len(s.backend.parseRequests) != 1 {
		t.Fatalf("expected one parse request, got %d", len(s.backend.parseRequests))
	}
	want := models.ParseRequest{Text: "4th & 2 at own 45, punt", Offense: "KC", Defense: "BUF"}
	if s.backend.parseRequests[0] != want {
		t.Errorf("unexpected request %+v", s.backend.parseRequests[0])
	}

	body := s.do("GET", "/", nil).Body.String()
	if !strings.Contains(body, "yardline_100") {
		t.Error("spec should be displayed")
	}
	if !strings.Contains(body, "Punting inside opponent 40 is uncommon.") {
		t.Error("parse warnings should be displayed")
	}
	if strings.Contains(body, "disabled") {
		t.Error("simulate buttons should be enabled after a parse")
	}
}

func TestParse_HTTPErrorShowsStatus(t *testing.T) {
	s := newTestServer(t, models.HealthReport{OK: true})
	s.backend.parseErr = &simapi.StatusError{StatusCode: 422, Body: "Unprocessable Entity"}
	s.do("GET", "/", nil)

	s.do("POST", "/parse", url.Values{"text": {"???"}})

	body := s.do("GET", "/", nil).Body.String()
	if !strings.Contains(body, "422") {
		t.Errorf("expected status code in warning, body:\n%s", body)
	}
	if strings.Contains(body, `id="spec"`) {
		t.Error("no spec should be shown after a failed parse")
	}
}

func TestSimulate_NoOpBeforeParse(t *testing.T) {
	s := newTestServer(t, models.HealthReport{OK: true})
	s.do("GET", "/", nil)

	s.do("POST", "/simulate", url.Values{"n": {"1000"}})
	s.do("POST", "/simulate-drive", url.Values{})

	if len(s.backend.simRequests) != 0 || len(s.backend.driveRequests) != 0 {
		t.Error("no simulation requests should be sent before a parse")
	}
}

func TestSimulate_RendersSummary(t *testing.T) {
	s := newTestServer(t, models.HealthReport{OK: true})
	s.do("GET", "/", nil)
	s.do("POST", "/parse", url.Values{"text": {"run"}, "offense": {"KC"}, "defense": {"BUF"}})

	s.do("POST", "/simulate", url.Values{"n": {"2000"}, "seed": {"5"}})

	req := s.backend.simRequests[0]
	if string(req.Spec) != testSpec || req.N != 2000 || req.Seed == nil || *req.Seed != 5 {
		t.Errorf("unexpected sim request %+v", req)
	}

	body := s.do("GET", "/", nil).Body.String()
	if !strings.Contains(body, "23.1%") {
		t.Errorf("expected touchdown rate 23.1%%, body:\n%s", body)
	}
}

func TestSimulate_InvalidSampleCount(t *testing.T) {
	s := newTestServer(t, models.HealthReport{OK: true})
	s.do("GET", "/", nil)
	s.do("POST", "/parse", url.Values{"text": {"run"}})

	s.do("POST", "/simulate", url.Values{"n": {"lots"}})

	if len(s.backend.simRequests) != 0 {
		t.Error("invalid input should not reach the service")
	}
	if body := s.do("GET", "/", nil).Body.String(); !strings.Contains(body, "Invalid sample count") {
		t.Error("expected invalid sample count warning")
	}
}

func TestSimulateDrive_RendersRowsInOrder(t *testing.T) {
	s := newTestServer(t, models.HealthReport{OK: true})
	s.do("GET", "/", nil)
	s.do("POST", "/parse", url.Values{"text": {"run"}})

	s.do("POST", "/simulate-drive", url.Values{"n": {"3000"}})

	if got := s.backend.driveRequests[0].N; got != 1 {
		t.Errorf("drive must request n=1, got %d", got)
	}

	body := s.do("GET", "/", nil).Body.String()
	if got := strings.Count(body, `<tr class="drive-play">`); got != 2 {
		t.Fatalf("expected 2 drive rows, got %d", got)
	}
	gain := strings.Index(body, "<td>GAIN</td>")
	td := strings.Index(body, "<td>TOUCHDOWN</td>")
	if gain < 0 || td < 0 || gain > td {
		t.Error("drive rows missing or out of order")
	}
	if !strings.Contains(body, "Touchdown: 6 pts in 0:16") {
		t.Error("expected drive outcome line")
	}
}

func TestGetState(t *testing.T) {
	s := newTestServer(t, models.HealthReport{OK: true})
	s.do("GET", "/", nil)
	s.do("POST", "/parse", url.Values{"text": {"run"}})

	w := s.do("GET", "/api/state", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var state map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&state); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if state["text"] != "run" || state["loading"] != false {
		t.Errorf("unexpected state %v", state)
	}
	if _, ok := state["parsed"]; !ok {
		t.Error("expected parsed result in state")
	}
}

func TestHealthPage(t *testing.T) {
	s := newTestServer(t, models.HealthReport{OK: true, Payload: json.RawMessage(`{"ok":true}`)})
	s.repo.SaveHealth(models.HealthReport{OK: false, CheckedAt: time.Date(2025, 9, 7, 13, 5, 0, 0, time.UTC)})

	w := s.do("GET", "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "✅ Up") {
		t.Error("expected live status up")
	}
	if !strings.Contains(body, "13:05:00 UTC: down") {
		t.Errorf("expected scheduled check, body:\n%s", body)
	}
}

func TestHealthPage_Down(t *testing.T) {
	s := newTestServer(t, models.HealthReport{Error: "unexpected status code: 503"})

	body := s.do("GET", "/health", nil).Body.String()
	if !strings.Contains(body, "Down: unexpected status code: 503") {
		t.Errorf("expected down status, body:\n%s", body)
	}
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, models.HealthReport{})

	w := s.do("GET", "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["status"] != "healthy" {
		t.Errorf("expected status 'healthy', got %v", response["status"])
	}
}
