package models

import "encoding/json"

// PlaySpec is the service's normalized play. It is kept as raw JSON so it
// round-trips into the simulate endpoints exactly as it was received.
type PlaySpec = json.RawMessage

type ParseRequest struct {
	Text    string `json:"text"`
	Offense string `json:"offense"`
	Defense string `json:"defense"`
}

type ParseResult struct {
	Spec     PlaySpec `json:"spec"`
	Warnings []string `json:"warnings,omitempty"`
}

type SimRequest struct {
	Spec PlaySpec `json:"spec"`
	N    int      `json:"n"`
	Seed *int64   `json:"seed,omitempty"`
}

type SimSummary struct {
	YardsMean    float64  `json:"yards_mean"`
	YardsP10     float64  `json:"yards_p10"`
	YardsP50     float64  `json:"yards_p50"`
	YardsP90     float64  `json:"yards_p90"`
	TDRate       float64  `json:"td_rate"`
	FGRate       float64  `json:"fg_rate"`
	TurnoverRate float64  `json:"turnover_rate"`
	Assumptions  []string `json:"assumptions"`
	Seed         int64    `json:"seed"`
}

type DriveRequest struct {
	Spec PlaySpec `json:"spec"`
	N    int      `json:"n"`
	Seed *int64   `json:"seed,omitempty"`
}

type PlayResult string

const (
	ResultGain            PlayResult = "GAIN"
	ResultFirstDown       PlayResult = "FIRST_DOWN"
	ResultTouchdown       PlayResult = "TOUCHDOWN"
	ResultTurnoverOnDowns PlayResult = "TURNOVER_ON_DOWNS"
	ResultFieldGoalGood   PlayResult = "FIELD_GOAL_GOOD"
	ResultFieldGoalMiss   PlayResult = "FIELD_GOAL_MISS"
	ResultPunt            PlayResult = "PUNT"
)

type DriveEnd string

const (
	EndTouchdown     DriveEnd = "TD"
	EndFieldGoalGood DriveEnd = "FG_GOOD"
	EndFieldGoalMiss DriveEnd = "FG_MISS"
	EndPunt          DriveEnd = "PUNT"
	EndDowns         DriveEnd = "DOWNS"
	EndExhausted     DriveEnd = "EXHAUSTED"
)

type DrivePlay struct {
	Down        int        `json:"down"`
	Distance    int        `json:"distance"`
	YardLine100 int        `json:"yardline_100"`
	CallType    string     `json:"call_type"`
	Yards       int        `json:"yards"`
	Result      PlayResult `json:"result"`
}

type DriveSummary struct {
	Plays              []DrivePlay `json:"plays"`
	PointsForOffense   int         `json:"points_for_offense"`
	TimeElapsedSeconds int         `json:"time_elapsed_seconds"`
	Ended              DriveEnd    `json:"ended"`
}

// PlaySpecView is a display-only reading of the fields the service is known
// to return. It is never sent back.
type PlaySpecView struct {
	State struct {
		Offense      string `json:"offense"`
		Defense      string `json:"defense"`
		Quarter      int    `json:"quarter"`
		ClockSeconds int    `json:"clock_seconds"`
		Down         int    `json:"down"`
		Distance     int    `json:"distance"`
		YardLine100  int    `json:"yardline_100"`
		Hash         string `json:"hash"`
	} `json:"state"`
	Action struct {
		Type             string `json:"type"`
		PassDepth        string `json:"pass_depth"`
		PassArea         string `json:"pass_area"`
		PlayAction       bool   `json:"play_action"`
		PersonnelOffense string `json:"personnel_offense"`
	} `json:"action"`
}

func DecodeSpecView(spec PlaySpec) (PlaySpecView, bool) {
	var v PlaySpecView
	if len(spec) == 0 {
		return v, false
	}
	if err := json.Unmarshal(spec, &v); err != nil {
		return v, false
	}
	return v, v.State.Down > 0
}
