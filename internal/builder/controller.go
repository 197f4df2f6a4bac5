// Package builder holds the play builder's view state and runs the three
// remote actions (parse, simulate play, simulate drive) against it.
package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/omarshaarawi/playbuilder/internal/models"
)

const DefaultSamples = 1000

// ErrNotParsed is returned by the simulate actions when no spec has been parsed
// yet. Nothing is sent and state is left untouched.
var ErrNotParsed = errors.New("no parsed play yet")

// Backend is the remote play service.
type Backend interface {
	ParseFreeform(ctx context.Context, req models.ParseRequest) (*models.ParseResult, error)
	Simulate(ctx context.Context, req models.SimRequest) (*models.SimSummary, error)
	SimulateDrive(ctx context.Context, req models.DriveRequest) (*models.DriveSummary, error)
}

type Action string

const (
	ActionParse    Action = "parse"
	ActionSimulate Action = "simulate"
	ActionDrive    Action = "drive"
)

// State is a point-in-time copy of the view.
type State struct {
	Text    string
	Offense string
	Defense string

	Parsed *models.ParseResult
	Sim    *models.SimSummary
	Drive  *models.DriveSummary

	Warning string
	Loading bool

	N    int
	Seed *int64
}

// CanSimulate reports whether the simulate actions would issue a request.
func (s State) CanSimulate() bool {
	return s.Parsed != nil && len(s.Parsed.Spec) > 0
}

type Controller struct {
	backend Backend

	mu    sync.Mutex
	state State
	// latest request token per action; a response with an older token is dropped
	pending map[Action]string
}

func NewController(backend Backend, offense, defense string) *Controller {
	return &Controller{
		backend: backend,
		state: State{
			Offense: offense,
			Defense: defense,
			N:       DefaultSamples,
		},
		pending: make(map[Action]string),
	}
}

func (c *Controller) SetInput(text, offense, defense string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Text = text
	c.state.Offense = offense
	c.state.Defense = defense
}

func (c *Controller) SetTeams(offense, defense string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Offense = offense
	c.state.Defense = defense
}

// SetSampling sets the sample count and seed used by later simulations.
// A nil seed lets the service pick one.
func (c *Controller) SetSampling(n int, seed *int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.N = n
	if seed != nil {
		s := *seed
		seed = &s
	}
	c.state.Seed = seed
}

func (c *Controller) SetWarning(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Warning = msg
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Loading = len(c.pending) > 0
	if s.Seed != nil {
		seed := *s.Seed
		s.Seed = &seed
	}
	return s
}

// SubmitParse sends the current text and team codes to the parser.
func (c *Controller) SubmitParse(ctx context.Context) error {
	c.mu.Lock()
	req := models.ParseRequest{
		Text:    c.state.Text,
		Offense: c.state.Offense,
		Defense: c.state.Defense,
	}
	token := c.begin(ActionParse)
	c.mu.Unlock()

	result, err := c.backend.ParseFreeform(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.finish(ActionParse, token) {
		return nil
	}
	if err != nil {
		c.fail(ActionParse, err)
		return err
	}

	c.state.Parsed = result
	if len(result.Warnings) > 0 {
		c.state.Warning = strings.Join(result.Warnings, "; ")
	}
	return nil
}

// RunSimulation runs the single-play outcome simulation for the parsed spec.
func (c *Controller) RunSimulation(ctx context.Context) error {
	c.mu.Lock()
	if !c.state.CanSimulate() {
		c.mu.Unlock()
		return ErrNotParsed
	}
	req := models.SimRequest{
		Spec: c.state.Parsed.Spec,
		N:    c.state.N,
		Seed: c.state.Seed,
	}
	token := c.begin(ActionSimulate)
	c.mu.Unlock()

	summary, err := c.backend.Simulate(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.finish(ActionSimulate, token) {
		return nil
	}
	if err != nil {
		c.fail(ActionSimulate, err)
		return err
	}

	c.state.Sim = summary
	return nil
}

// RunDrive simulates one full drive starting from the parsed spec.
func (c *Controller) RunDrive(ctx context.Context) error {
	c.mu.Lock()
	if !c.state.CanSimulate() {
		c.mu.Unlock()
		return ErrNotParsed
	}
	req := models.DriveRequest{
		Spec: c.state.Parsed.Spec,
		N:    1,
		Seed: c.state.Seed,
	}
	token := c.begin(ActionDrive)
	c.mu.Unlock()

	summary, err := c.backend.SimulateDrive(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.finish(ActionDrive, token) {
		return nil
	}
	if err != nil {
		c.fail(ActionDrive, err)
		return err
	}

	c.state.Drive = summary
	return nil
}

// begin must be called with mu held.
func (c *Controller) begin(action Action) string {
	token := uuid.NewString()
	c.pending[action] = token
	c.state.Warning = ""
	return token
}

// finish must be called with mu held. It reports whether token is still the
// latest request for the action.
func (c *Controller) finish(action Action, token string) bool {
	if c.pending[action] != token {
		slog.Debug("Dropping superseded response", "action", action, "token", token)
		return false
	}
	delete(c.pending, action)
	return true
}

func (c *Controller) fail(action Action, err error) {
	slog.Warn("Request failed", "action", action, "error", err)
	c.state.Warning = fmt.Sprintf("Request failed: %v", err)
}
