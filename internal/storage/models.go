package storage

// Snapshot is one persisted leaderboard row for a guild's tracking window
type Snapshot struct {
	GuildID        string
	Window         string
	EventID        int
	UserID         int64
	Rank           int
	PlayerName     string
	PreviousPoints int64
	Points         int64
	Speed          int64
}

// Runner is a guild's reference player, used for the comparison column
type Runner struct {
	GuildID    string
	UserID     int64
	PlayerName string
}
