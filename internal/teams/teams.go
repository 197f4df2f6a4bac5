package teams

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// similarity a name must reach before a fuzzy match is accepted
const threshold = 0.6

type Team struct {
	Code     string
	City     string
	Nickname string
}

func (t Team) Name() string {
	return t.City + " " + t.Nickname
}

var all = []Team{
	{"ARI", "Arizona", "Cardinals"},
	{"ATL", "Atlanta", "Falcons"},
	{"BAL", "Baltimore", "Ravens"},
	{"BUF", "Buffalo", "Bills"},
	{"CAR", "Carolina", "Panthers"},
	{"CHI", "Chicago", "Bears"},
	{"CIN", "Cincinnati", "Bengals"},
	{"CLE", "Cleveland", "Browns"},
	{"DAL", "Dallas", "Cowboys"},
	{"DEN", "Denver", "Broncos"},
	{"DET", "Detroit", "Lions"},
	{"GB", "Green Bay", "Packers"},
	{"HOU", "Houston", "Texans"},
	{"IND", "Indianapolis", "Colts"},
	{"JAX", "Jacksonville", "Jaguars"},
	{"KC", "Kansas City", "Chiefs"},
	{"LV", "Las Vegas", "Raiders"},
	{"LAC", "Los Angeles", "Chargers"},
	{"LAR", "Los Angeles", "Rams"},
	{"MIA", "Miami", "Dolphins"},
	{"MIN", "Minnesota", "Vikings"},
	{"NE", "New England", "Patriots"},
	{"NO", "New Orleans", "Saints"},
	{"NYG", "New York", "Giants"},
	{"NYJ", "New York", "Jets"},
	{"PHI", "Philadelphia", "Eagles"},
	{"PIT", "Pittsburgh", "Steelers"},
	{"SF", "San Francisco", "49ers"},
	{"SEA", "Seattle", "Seahawks"},
	{"TB", "Tampa Bay", "Buccaneers"},
	{"TEN", "Tennessee", "Titans"},
	{"WAS", "Washington", "Commanders"},
}

func All() []Team {
	out := make([]Team, len(all))
	copy(out, all)
	return out
}

func Lookup(code string) (Team, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, t := range all {
		if t.Code == code {
			return t, true
		}
	}
	return Team{}, false
}

// Resolve turns a code, nickname or full name into a team code. Input that
// matches nothing is returned upper-cased so the service still sees it.
func Resolve(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	if t, ok := Lookup(input); ok {
		return t.Code
	}

	needle := strings.ToLower(input)
	var bestMatch *Team
	bestScore := -1.0

	for i, t := range all {
		for _, candidate := range []string{t.Nickname, t.Name()} {
			candidate = strings.ToLower(candidate)
			if candidate == needle {
				return t.Code
			}

			distance := fuzzy.LevenshteinDistance(needle, candidate)
			maxLen := float64(max(len(needle), len(candidate)))
			similarity := 1 - float64(distance)/maxLen

			if similarity > threshold && similarity > bestScore {
				bestScore = similarity
				bestMatch = &all[i]
			}
		}
	}

	if bestMatch == nil {
		return strings.ToUpper(input)
	}
	return bestMatch.Code
}

// Suggest lists teams whose name contains the input as a fuzzy subsequence.
func Suggest(input string) []Team {
	var out []Team
	for _, t := range all {
		if fuzzy.MatchFold(input, t.Name()) || fuzzy.MatchFold(input, t.Code) {
			out = append(out, t)
		}
	}
	return out
}
