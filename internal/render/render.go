// Package render turns service responses into display strings and tables
// shared by the web page, the chat replies and the CLI.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/omarshaarawi/playbuilder/internal/models"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Percent formats a 0..1 rate with one decimal, e.g. 0.231 -> "23.1%".
func Percent(rate float64) string {
	return decimal.NewFromFloat(rate).Shift(2).StringFixed(1) + "%"
}

func Yards(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1)
}

// FieldPosition reads a yards-to-goal value as a field position.
func FieldPosition(yardLine100 int) string {
	switch {
	case yardLine100 == 50:
		return "50"
	case yardLine100 > 50:
		return fmt.Sprintf("OWN %d", 100-yardLine100)
	default:
		return fmt.Sprintf("OPP %d", yardLine100)
	}
}

func Clock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func DownDistance(down, distance int) string {
	suffix := "th"
	switch down {
	case 1:
		suffix = "st"
	case 2:
		suffix = "nd"
	case 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s & %d", down, suffix, distance)
}

var endLabels = map[models.DriveEnd]string{
	models.EndTouchdown:     "Touchdown",
	models.EndFieldGoalGood: "Field goal good",
	models.EndFieldGoalMiss: "Field goal missed",
	models.EndPunt:          "Punt",
	models.EndDowns:         "Turnover on downs",
	models.EndExhausted:     "Clock exhausted",
}

func EndLabel(end models.DriveEnd) string {
	if label, ok := endLabels[end]; ok {
		return label
	}
	return string(end)
}

// DriveRow is one play of a drive as table cells.
type DriveRow struct {
	Number   string
	Down     string
	Distance string
	YardLine string
	CallType string
	Yards    string
	Result   string
}

func (r DriveRow) Cells() []string {
	return []string{r.Number, r.Down, r.Distance, r.YardLine, r.CallType, r.Yards, r.Result}
}

var DriveHeader = DriveRow{"#", "DOWN", "DIST", "YARDLINE", "CALL", "YARDS", "RESULT"}

// DriveRows returns one row per play in drive order.
func DriveRows(summary *models.DriveSummary) []DriveRow {
	if summary == nil {
		return nil
	}
	rows := make([]DriveRow, 0, len(summary.Plays))
	for i, p := range summary.Plays {
		rows = append(rows, DriveRow{
			Number:   strconv.Itoa(i + 1),
			Down:     strconv.Itoa(p.Down),
			Distance: strconv.Itoa(p.Distance),
			YardLine: strconv.Itoa(p.YardLine100),
			CallType: p.CallType,
			Yards:    strconv.Itoa(p.Yards),
			Result:   string(p.Result),
		})
	}
	return rows
}

func WriteDriveTable(w io.Writer, summary *models.DriveSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, row := range append([]DriveRow{DriveHeader}, DriveRows(summary)...) {
		fmt.Fprintln(tw, strings.Join(row.Cells(), "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nEnded: %s | Points: %d | Time elapsed: %s\n",
		summary.Ended, summary.PointsForOffense, Clock(summary.TimeElapsedSeconds))
	return err
}

// SimRows returns the label/value pairs shown for a single-play simulation.
func SimRows(s *models.SimSummary) [][2]string {
	return [][2]string{
		{"Yards (mean)", Yards(s.YardsMean)},
		{"Yards p10 / p50 / p90", fmt.Sprintf("%s / %s / %s", Yards(s.YardsP10), Yards(s.YardsP50), Yards(s.YardsP90))},
		{"Touchdown rate", Percent(s.TDRate)},
		{"Field goal rate", Percent(s.FGRate)},
		{"Turnover rate", Percent(s.TurnoverRate)},
		{"Seed", strconv.FormatInt(s.Seed, 10)},
	}
}

func WriteSimTable(w io.Writer, s *models.SimSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, row := range SimRows(s) {
		fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(s.Assumptions) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "\nAssumptions:"); err != nil {
		return err
	}
	for _, a := range s.Assumptions {
		if _, err := fmt.Fprintf(w, "- %s\n", a); err != nil {
			return err
		}
	}
	return nil
}

// PrettyJSON indents raw JSON; invalid input is returned as-is.
func PrettyJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// YAML renders any JSON-shaped value as YAML. The value is passed through
// encoding/json first so json tags and raw specs are honoured.
func YAML(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("error encoding value: %w", err)
	}

	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("error decoding value: %w", err)
	}

	return yaml.Marshal(generic)
}
