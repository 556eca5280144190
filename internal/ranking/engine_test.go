package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryByUID(t *testing.T, entries []Entry, uid int64) Entry {
	t.Helper()
	for _, e := range entries {
		if e.UserID == uid {
			return e
		}
	}
	t.Fatalf("no entry with uid %d", uid)
	return Entry{}
}

func TestComputeBasicCycle(t *testing.T) {
	current := []Row{
		{UserID: 1, Name: "A", Points: 1500},
		{UserID: 2, Name: "B", Points: 500},
	}
	previous := map[int64]int64{1: 1000}

	entries := Compute(current, previous, 0)
	require.Len(t, entries, 2)

	a := entryByUID(t, entries, 1)
	b := entryByUID(t, entries, 2)

	assert.Equal(t, 1, a.Rank)
	assert.Equal(t, 2, b.Rank)

	assert.Equal(t, int64(500), a.Speed)
	assert.Equal(t, int64(0), b.Speed, "no prior snapshot means zero speed")

	assert.Equal(t, 1, a.SpeedRank)
	assert.Equal(t, 2, b.SpeedRank)

	assert.True(t, a.PointDiff.IsNone())
	gap, ok := b.PointDiff.Int()
	require.True(t, ok)
	assert.Equal(t, int64(1000), gap)

	assert.True(t, a.RunnerDiff.IsUnavailable())
	assert.True(t, b.RunnerDiff.IsUnavailable())
}

func TestPointsRankIsStrictSequentialOnTies(t *testing.T) {
	current := []Row{
		{UserID: 1, Name: "A", Points: 1000},
		{UserID: 2, Name: "B", Points: 1000},
	}
	previous := map[int64]int64{1: 900, 2: 900}

	entries := Compute(current, previous, 0)

	a := entryByUID(t, entries, 1)
	b := entryByUID(t, entries, 2)

	// Equal points still get distinct ranks, ties broken by input order
	assert.Equal(t, 1, a.Rank)
	assert.Equal(t, 2, b.Rank)

	// Equal speeds share the speed rank
	assert.Equal(t, int64(100), a.Speed)
	assert.Equal(t, int64(100), b.Speed)
	assert.Equal(t, 1, a.SpeedRank)
	assert.Equal(t, 1, b.SpeedRank)
}

func TestSpeedRankCompetitionRanking(t *testing.T) {
	current := []Row{
		{UserID: 1, Points: 4000},
		{UserID: 2, Points: 3000},
		{UserID: 3, Points: 2000},
		{UserID: 4, Points: 1000},
	}
	previous := map[int64]int64{1: 3500, 2: 2700, 3: 1700, 4: 900}

	// Speeds: 500, 300, 300, 100
	entries := Compute(current, previous, 0)

	assert.Equal(t, 1, entryByUID(t, entries, 1).SpeedRank)
	assert.Equal(t, 2, entryByUID(t, entries, 2).SpeedRank)
	assert.Equal(t, 2, entryByUID(t, entries, 3).SpeedRank)
	// Rank after a two-way tie at 2 jumps to 4
	assert.Equal(t, 4, entryByUID(t, entries, 4).SpeedRank)
}

func TestZeroPriorMeansZeroSpeed(t *testing.T) {
	current := []Row{
		{UserID: 1, Points: 9999},
		{UserID: 2, Points: 50},
	}
	// uid 1 has an explicit prior of 0, uid 2 has none; both count as "no
	// prior data" and get zero speed no matter the current points
	previous := map[int64]int64{1: 0}

	entries := Compute(current, previous, 0)
	assert.Equal(t, int64(0), entryByUID(t, entries, 1).Speed)
	assert.Equal(t, int64(0), entryByUID(t, entries, 2).Speed)
}

func TestPointDiffAgainstNextHigherRow(t *testing.T) {
	current := []Row{
		{UserID: 3, Points: 100},
		{UserID: 1, Points: 700},
		{UserID: 2, Points: 400},
	}
	entries := Compute(current, map[int64]int64{}, 0)

	top := entryByUID(t, entries, 1)
	assert.True(t, top.PointDiff.IsNone())

	mid, ok := entryByUID(t, entries, 2).PointDiff.Int()
	require.True(t, ok)
	assert.Equal(t, int64(300), mid)

	bottom, ok := entryByUID(t, entries, 3).PointDiff.Int()
	require.True(t, ok)
	assert.Equal(t, int64(300), bottom)
}

func TestRunnerDiff(t *testing.T) {
	current := []Row{
		{UserID: 1, Points: 1500},
		{UserID: 2, Points: 900},
		{UserID: 3, Points: 400},
	}

	t.Run("reference present", func(t *testing.T) {
		entries := Compute(current, map[int64]int64{}, 2)

		self, ok := entryByUID(t, entries, 2).RunnerDiff.Int()
		require.True(t, ok)
		assert.Equal(t, int64(0), self, "reference's own row diffs to zero")

		above, ok := entryByUID(t, entries, 1).RunnerDiff.Int()
		require.True(t, ok)
		assert.Equal(t, int64(600), above)

		below, ok := entryByUID(t, entries, 3).RunnerDiff.Int()
		require.True(t, ok)
		assert.Equal(t, int64(-500), below)
	})

	t.Run("reference not in snapshot", func(t *testing.T) {
		entries := Compute(current, map[int64]int64{}, 42)
		for _, e := range entries {
			assert.True(t, e.RunnerDiff.IsUnavailable())
		}
	})

	t.Run("no reference configured", func(t *testing.T) {
		entries := Compute(current, map[int64]int64{}, 0)
		for _, e := range entries {
			assert.True(t, e.RunnerDiff.IsUnavailable())
		}
	})
}

func TestComputeEmptyInput(t *testing.T) {
	assert.Empty(t, Compute(nil, map[int64]int64{}, 0))
	assert.Empty(t, Compute([]Row{}, nil, 7))
}

func TestComputeDoesNotReorderInput(t *testing.T) {
	current := []Row{
		{UserID: 5, Points: 10},
		{UserID: 6, Points: 90},
		{UserID: 7, Points: 50},
	}
	entries := Compute(current, map[int64]int64{}, 0)

	require.Len(t, entries, 3)
	assert.Equal(t, int64(5), entries[0].UserID)
	assert.Equal(t, int64(6), entries[1].UserID)
	assert.Equal(t, int64(7), entries[2].UserID)
}
