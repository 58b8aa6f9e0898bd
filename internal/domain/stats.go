package domain

// VisitStats is the visit log stored under visit_stats. Timestamps are
// millisecond epoch values in insertion (chronological) order. Entries older
// than 30 days relative to the newest write are pruned on every record.
type VisitStats struct {
	Visits    []int64 `json:"visits"`
	LastVisit *int64  `json:"lastVisit"`
}

// GameStats maps game name to click count, stored under game_stats.
type GameStats map[string]int64

// RecentGame is one entry of a user's recent-games list, newest first,
// capped at six entries.
type RecentGame struct {
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"`
}

// MaxRecentGames caps the per-user recent-games list.
const MaxRecentGames = 6

// Statistics is the derived view served to the statistics tab.
type Statistics struct {
	VisitsToday   int    `json:"visitsToday"`
	VisitsWeek    int    `json:"visitsWeek"`
	VisitsAllTime int    `json:"visitsAllTime"`
	MostPopular   string `json:"mostPopular"`
	MostClicks    int64  `json:"mostClicks"`
}

// GamePlay is a ranked entry of the top-played games list.
type GamePlay struct {
	Name   string `json:"name"`
	Clicks int64  `json:"clicks"`
}
