// Package render shapes ranked entries into a display table and draws it as
// a PNG for posting.
package render

import (
	"cmp"
	"slices"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/yorune/t10-bot/internal/ranking"
)

// Highlight selects the fill style for a row's speed-rank cell
type Highlight int

const (
	HighlightDefault Highlight = iota
	HighlightGold              // fastest
	HighlightSilver            // second fastest
	HighlightBronze            // third fastest
	HighlightZeroSpeed
)

// Sentinel glyphs shown in numeric columns
const (
	glyphNoneAbove   = "ー"
	glyphUnavailable = "N/A"

	// runnerUnsetName is shown in the comparison column header when no
	// reference player is configured
	runnerUnsetName = "未設定"
)

// speedRankColumn is the column whose cells get the speed highlight fill
const speedRankColumn = 4

// Table is a row-oriented description of the rendered leaderboard
type Table struct {
	Header []string
	Rows   [][]string
	// Highlights holds one entry per row, applied to the speed-rank cell
	Highlights []Highlight
}

var printer = message.NewPrinter(language.Japanese)

// BuildTable shapes ranked entries into display rows ordered by points rank.
// runnerName labels the comparison column; pass "" when no reference player
// is configured.
func BuildTable(entries []ranking.Entry, runnerName string) Table {
	if runnerName == "" {
		runnerName = runnerUnsetName
	}

	ordered := slices.Clone(entries)
	slices.SortFunc(ordered, func(a, b ranking.Entry) int {
		return cmp.Compare(a.Rank, b.Rank)
	})

	table := Table{
		Header: []string{
			"順位", "プレイヤー名", "累計ポイント", "時速", "時速順位", "上位との差",
			printer.Sprintf("%s さんとの差", runnerName),
		},
	}

	for _, e := range ordered {
		table.Rows = append(table.Rows, []string{
			printer.Sprintf("%d", e.Rank),
			e.Name,
			formatInt(e.Points),
			formatInt(e.Speed),
			printer.Sprintf("%d", e.SpeedRank),
			formatValue(e.PointDiff),
			formatValue(e.RunnerDiff),
		})
		table.Highlights = append(table.Highlights, highlightFor(e))
	}

	return table
}

// highlightFor picks the speed cell style; zero speed overrides the
// rank-based medal colors
func highlightFor(e ranking.Entry) Highlight {
	switch {
	case e.Speed == 0:
		return HighlightZeroSpeed
	case e.SpeedRank == 1:
		return HighlightGold
	case e.SpeedRank == 2:
		return HighlightSilver
	case e.SpeedRank == 3:
		return HighlightBronze
	default:
		return HighlightDefault
	}
}

// formatInt renders an integer with thousands separators
func formatInt(n int64) string {
	return printer.Sprintf("%d", n)
}

// formatValue renders a cell value, keeping sentinel states as glyphs
func formatValue(v ranking.Value) string {
	if n, ok := v.Int(); ok {
		return formatInt(n)
	}
	if v.IsNone() {
		return glyphNoneAbove
	}
	return glyphUnavailable
}
