package ranking

import (
	"cmp"
	"slices"
)

// Row is one player's state from a single leaderboard poll
type Row struct {
	UserID int64
	Name   string
	Points int64
}

// Entry is a Row annotated with the derived leaderboard metrics
type Entry struct {
	Row
	PreviousPoints int64
	Rank           int   // 1-based by points descending, strict sequential
	Speed          int64 // points gained since the previous poll
	SpeedRank      int   // 1-based by speed descending, ties share a rank
	PointDiff      Value // gap to the next-higher row; None for the leader
	RunnerDiff     Value // gap to the reference player; Unavailable when unset
}

// Compute derives ranks, speeds and gaps for one poll cycle. previous maps
// user id to the points recorded last cycle; a missing key means no prior
// snapshot. runnerID selects the reference player for the comparison column;
// 0 means no reference is configured. The input slice is not modified and
// the result keeps its order.
func Compute(current []Row, previous map[int64]int64, runnerID int64) []Entry {
	entries := make([]Entry, len(current))
	for i, r := range current {
		prev := previous[r.UserID]
		var speed int64
		// A prior of 0 is treated the same as no prior at all: speed stays 0.
		// This cannot tell "scored nothing last cycle" apart from "never
		// seen", which is the upstream behavior and kept as-is.
		if prev > 0 {
			speed = r.Points - prev
		}
		entries[i] = Entry{Row: r, PreviousPoints: prev, Speed: speed}
	}

	// Each pass works on its own index ordering so the three sorts cannot
	// interfere with each other.
	byPoints := sortedIndexes(entries, func(e Entry) int64 { return e.Points })
	bySpeed := sortedIndexes(entries, func(e Entry) int64 { return e.Speed })

	// Points rank: strict sequential, equal points still get distinct ranks.
	for pos, idx := range byPoints {
		entries[idx].Rank = pos + 1
	}

	// Speed rank: competition ranking, a run of equal speeds shares the rank
	// of its first position.
	rank := 1
	for pos, idx := range bySpeed {
		if pos > 0 && entries[idx].Speed != entries[bySpeed[pos-1]].Speed {
			rank = pos + 1
		}
		entries[idx].SpeedRank = rank
	}

	// Gap to the row immediately above in points order.
	for pos, idx := range byPoints {
		if pos == 0 {
			entries[idx].PointDiff = None()
			continue
		}
		entries[idx].PointDiff = Number(entries[byPoints[pos-1]].Points - entries[idx].Points)
	}

	// Gap to the reference player, including the reference's own row (0).
	runnerPoints, found := int64(0), false
	if runnerID != 0 {
		for i := range entries {
			if entries[i].UserID == runnerID {
				runnerPoints, found = entries[i].Points, true
				break
			}
		}
	}
	for i := range entries {
		if found {
			entries[i].RunnerDiff = Number(entries[i].Points - runnerPoints)
		} else {
			entries[i].RunnerDiff = Unavailable()
		}
	}

	return entries
}

// sortedIndexes returns entry indexes ordered by key descending, ties keeping
// input order.
func sortedIndexes(entries []Entry, key func(Entry) int64) []int {
	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(key(entries[b]), key(entries[a]))
	})
	return idx
}
