package bestdori

import (
	"regexp"
	"strings"

	"github.com/yorune/t10-bot/internal/ranking"
)

// decorationPattern matches bracketed title decorations embedded in player
// names, e.g. "[★x5]Alice"
var decorationPattern = regexp.MustCompile(`\[.*?\]`)

// EventTop is the raw top-ranking payload for one event
type EventTop struct {
	Users  []EventTopUser  `json:"users"`
	Points []EventTopPoint `json:"points"`
}

// EventTopUser identifies one ranked player
type EventTopUser struct {
	UID  int64  `json:"uid"`
	Name string `json:"name"`
}

// EventTopPoint is one player's current point total
type EventTopPoint struct {
	UID   int64 `json:"uid"`
	Value int64 `json:"value"`
}

// Rows merges the users and points lists into snapshot rows, stripping
// bracketed decorations from display names. Players missing from the users
// list are named "Unknown".
func (t *EventTop) Rows() []ranking.Row {
	names := make(map[int64]string, len(t.Users))
	for _, u := range t.Users {
		names[u.UID] = CleanName(u.Name)
	}

	rows := make([]ranking.Row, 0, len(t.Points))
	for _, p := range t.Points {
		name, ok := names[p.UID]
		if !ok {
			name = "Unknown"
		}
		rows = append(rows, ranking.Row{
			UserID: p.UID,
			Name:   name,
			Points: p.Value,
		})
	}
	return rows
}

// CleanName removes bracketed decorations and surrounding whitespace from a
// player name
func CleanName(name string) string {
	return strings.TrimSpace(decorationPattern.ReplaceAllString(name, ""))
}
