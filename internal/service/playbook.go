package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/omarshaarawi/playbuilder/internal/builder"
	"github.com/omarshaarawi/playbuilder/internal/models"
	"github.com/omarshaarawi/playbuilder/internal/render"
	"github.com/omarshaarawi/playbuilder/internal/repository/memory"
	"github.com/omarshaarawi/playbuilder/internal/teams"
)

type HealthChecker interface {
	Health(ctx context.Context) models.HealthReport
}

// PlaybookService formats builder actions as Markdown chat replies. Each chat
// gets its own builder session keyed by chat ID.
type PlaybookService struct {
	sessions *builder.Sessions
	health   HealthChecker
	repo     *memory.Repository
}

func NewPlaybookService(sessions *builder.Sessions, health HealthChecker, repo *memory.Repository) *PlaybookService {
	return &PlaybookService{sessions: sessions, health: health, repo: repo}
}

func (s *PlaybookService) SetTeams(key, offense, defense string) string {
	offense, defense = teams.Resolve(offense), teams.Resolve(defense)
	s.sessions.Get(key).SetTeams(offense, defense)
	return fmt.Sprintf("🏟 Offense *%s*, defense *%s*", teamLabel(offense), teamLabel(defense))
}

func (s *PlaybookService) Parse(ctx context.Context, key, text string) (string, error) {
	c := s.sessions.Get(key)
	state := c.Snapshot()
	c.SetInput(text, state.Offense, state.Defense)

	if err := c.SubmitParse(ctx); err != nil {
		return "", err
	}

	state = c.Snapshot()
	var sb strings.Builder
	sb.WriteString("📝 *Parsed play*\n")
	sb.WriteString(fmt.Sprintf("*%s* vs *%s*\n", state.Offense, state.Defense))

	if view, ok := models.DecodeSpecView(state.Parsed.Spec); ok {
		st, ac := view.State, view.Action
		sb.WriteString(fmt.Sprintf("%s at %s, Q%d %s, %s hash\n",
			render.DownDistance(st.Down, st.Distance),
			render.FieldPosition(st.YardLine100),
			st.Quarter,
			render.Clock(st.ClockSeconds),
			strings.ToLower(st.Hash)))
		sb.WriteString(fmt.Sprintf("Call: %s\n", escapeMarkdown(describeAction(ac.Type, ac.PassDepth, ac.PassArea, ac.PlayAction, ac.PersonnelOffense))))
	}

	for _, w := range state.Parsed.Warnings {
		sb.WriteString(fmt.Sprintf("⚠️ %s\n", escapeMarkdown(w)))
	}

	sb.WriteString("\nUse /sim or /drive to run it, /spec to see the full spec.")
	return sb.String(), nil
}

func (s *PlaybookService) Spec(key string) (string, error) {
	state := s.sessions.Get(key).Snapshot()
	if !state.CanSimulate() {
		return "", builder.ErrNotParsed
	}
	return fmt.Sprintf("```\n%s\n```", render.PrettyJSON(state.Parsed.Spec)), nil
}

// Simulate runs the single-play simulation. A nil n keeps the session's
// current sample count.
func (s *PlaybookService) Simulate(ctx context.Context, key string, n *int, seed *int64) (string, error) {
	c := s.sessions.Get(key)
	if n != nil {
		c.SetSampling(*n, seed)
	} else {
		c.SetSampling(c.Snapshot().N, seed)
	}

	if err := c.RunSimulation(ctx); err != nil {
		return "", err
	}

	state := c.Snapshot()
	var table strings.Builder
	if err := render.WriteSimTable(&table, state.Sim); err != nil {
		return "", fmt.Errorf("error rendering simulation: %w", err)
	}

	return fmt.Sprintf("🎲 *Play simulation* (n=%d)\n```\n%s```", state.N, table.String()), nil
}

func (s *PlaybookService) Drive(ctx context.Context, key string, seed *int64) (string, error) {
	c := s.sessions.Get(key)
	c.SetSampling(c.Snapshot().N, seed)

	if err := c.RunDrive(ctx); err != nil {
		return "", err
	}

	drive := c.Snapshot().Drive
	var table strings.Builder
	if err := render.WriteDriveTable(&table, drive); err != nil {
		return "", fmt.Errorf("error rendering drive: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏈 *Drive simulation*: %s, %d pts\n", render.EndLabel(drive.Ended), drive.PointsForOffense))
	sb.WriteString(fmt.Sprintf("```\n%s```", table.String()))
	return sb.String(), nil
}

func (s *PlaybookService) Health(ctx context.Context) string {
	report := s.health.Health(ctx)
	msg := FormatHealth(report)

	if last := s.repo.GetHealth(); last != nil {
		msg += fmt.Sprintf("\nLast scheduled check: %s (%s)", upDown(last.OK), last.CheckedAt.Format("15:04:05"))
	}
	return msg
}

func FormatHealth(report models.HealthReport) string {
	if !report.OK {
		return fmt.Sprintf("❌ Play service is down: %s", escapeMarkdown(report.Error))
	}
	return fmt.Sprintf("✅ Play service is up\n```\n%s\n```", render.PrettyJSON(report.Payload))
}

// UserMessage turns an action error into the text shown to a chat user.
func UserMessage(action string, err error) string {
	if errors.Is(err, builder.ErrNotParsed) {
		return "No play parsed yet. Describe one with /parse <text> first."
	}
	return fmt.Sprintf("Error %s: %s", action, escapeMarkdown(err.Error()))
}

func describeAction(callType, depth, area string, playAction bool, personnel string) string {
	parts := []string{callType}
	if depth != "" {
		parts = append(parts, depth)
	}
	if area != "" {
		parts = append(parts, area)
	}
	if playAction {
		parts = append(parts, "play-action")
	}
	if personnel != "" {
		parts = append(parts, personnel+" personnel")
	}
	return strings.Join(parts, ", ")
}

func teamLabel(code string) string {
	if t, ok := teams.Lookup(code); ok {
		return fmt.Sprintf("%s (%s)", t.Name(), t.Code)
	}
	return code
}

func upDown(ok bool) string {
	if ok {
		return "up"
	}
	return "down"
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
