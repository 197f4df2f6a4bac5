package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/omarshaarawi/playbuilder/internal/builder"
	"github.com/omarshaarawi/playbuilder/internal/models"
	"github.com/omarshaarawi/playbuilder/internal/render"
	"github.com/omarshaarawi/playbuilder/internal/repository/memory"
	"github.com/omarshaarawi/playbuilder/internal/teams"
)

const sessionCookie = "playbuilder_session"

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"prettyJSON":  func(raw json.RawMessage) string { return render.PrettyJSON(raw) },
	"simRows":     render.SimRows,
	"driveRows":   render.DriveRows,
	"driveHeader": func() []string { return render.DriveHeader.Cells() },
	"endLabel":    render.EndLabel,
	"clock":       render.Clock,
}

type HealthChecker interface {
	Health(ctx context.Context) models.HealthReport
}

// Handler serves the builder and health pages.
type Handler struct {
	sessions *builder.Sessions
	health   HealthChecker
	repo     *memory.Repository
	baseURL  string
	pages    *template.Template
}

func NewHandler(sessions *builder.Sessions, health HealthChecker, repo *memory.Repository, baseURL string) (*Handler, error) {
	pages, err := template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Handler{
		sessions: sessions,
		health:   health,
		repo:     repo,
		baseURL:  baseURL,
		pages:    pages,
	}, nil
}

type builderPage struct {
	State   builder.State
	Enabled bool
}

// BuilderPage renders the session's current view.
func (h *Handler) BuilderPage(w http.ResponseWriter, r *http.Request) {
	state := h.controller(w, r).Snapshot()
	h.renderPage(w, "builder", builderPage{
		State:   state,
		Enabled: state.CanSimulate() && !state.Loading,
	})
}

// Parse handles the free-text form.
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	c := h.controller(w, r)
	if err := r.ParseForm(); err != nil {
		c.SetWarning(fmt.Sprintf("Invalid form: %v", err))
		redirectHome(w, r)
		return
	}

	c.SetInput(
		r.FormValue("text"),
		teams.Resolve(r.FormValue("offense")),
		teams.Resolve(r.FormValue("defense")),
	)
	_ = c.SubmitParse(r.Context())

	redirectHome(w, r)
}

// Simulate handles the single-play simulation button.
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	c := h.controller(w, r)
	if !h.applySampling(c, r) {
		redirectHome(w, r)
		return
	}

	_ = c.RunSimulation(r.Context())
	redirectHome(w, r)
}

// SimulateDrive handles the drive simulation button.
func (h *Handler) SimulateDrive(w http.ResponseWriter, r *http.Request) {
	c := h.controller(w, r)
	if !h.applySampling(c, r) {
		redirectHome(w, r)
		return
	}

	_ = c.RunDrive(r.Context())
	redirectHome(w, r)
}

type healthPage struct {
	BaseURL   string
	Live      models.HealthReport
	Scheduled *models.HealthReport
}

// HealthPage probes the play service and shows the result.
func (h *Handler) HealthPage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, "health", healthPage{
		BaseURL:   h.baseURL,
		Live:      h.health.Health(r.Context()),
		Scheduled: h.repo.GetHealth(),
	})
}

// HealthCheck is this server's own liveness endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "playbuilder",
		"sessions":  h.sessions.Len(),
	})
}

type stateResponse struct {
	Text    string               `json:"text"`
	Offense string               `json:"offense"`
	Defense string               `json:"defense"`
	Parsed  *models.ParseResult  `json:"parsed,omitempty"`
	Sim     *models.SimSummary   `json:"sim,omitempty"`
	Drive   *models.DriveSummary `json:"drive,omitempty"`
	Warning string               `json:"warning,omitempty"`
	Loading bool                 `json:"loading"`
	N       int                  `json:"n"`
	Seed    *int64               `json:"seed,omitempty"`
}

// GetState returns the session's view state as JSON.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	s := h.controller(w, r).Snapshot()
	respondJSON(w, http.StatusOK, stateResponse{
		Text:    s.Text,
		Offense: s.Offense,
		Defense: s.Defense,
		Parsed:  s.Parsed,
		Sim:     s.Sim,
		Drive:   s.Drive,
		Warning: s.Warning,
		Loading: s.Loading,
		N:       s.N,
		Seed:    s.Seed,
	})
}

// applySampling reads n and seed from the form. Blank n keeps the current
// value and blank seed means random.
func (h *Handler) applySampling(c *builder.Controller, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		c.SetWarning(fmt.Sprintf("Invalid form: %v", err))
		return false
	}

	n := c.Snapshot().N
	if raw := strings.TrimSpace(r.FormValue("n")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.SetWarning(fmt.Sprintf("Invalid sample count %q", raw))
			return false
		}
		n = v
	}

	var seed *int64
	if raw := strings.TrimSpace(r.FormValue("seed")); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.SetWarning(fmt.Sprintf("Invalid seed %q", raw))
			return false
		}
		seed = &v
	}

	c.SetSampling(n, seed)
	return true
}

// controller returns the caller's session, issuing a cookie on first visit.
func (h *Handler) controller(w http.ResponseWriter, r *http.Request) *builder.Controller {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return h.sessions.Get(cookie.Value)
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return h.sessions.Get(id)
}

func (h *Handler) renderPage(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.pages.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("Error rendering page", "page", name, "error", err)
	}
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}
