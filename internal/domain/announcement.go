package domain

// Announcement is one post of the announcements board. The whole board is a
// single JSON array under the announcements key, newest first.
type Announcement struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Author    string `json:"author"`
	Timestamp int64  `json:"timestamp"`
}

// DefaultAnnouncementID marks the seeded welcome post. It is materialized
// in memory when the board is empty and is never persisted or deletable.
const DefaultAnnouncementID = "default"

// DefaultAnnouncement returns the seeded welcome post with the given
// timestamp.
func DefaultAnnouncement(now int64) Announcement {
	return Announcement{
		ID:        DefaultAnnouncementID,
		Title:     "Welcome to GameZone II!",
		Content:   "Welcome to the new and improved GameZone II! We're excited to have you here. Check out the games, climb the leaderboard, and join the community chat. More features coming soon!",
		Author:    "Admin",
		Timestamp: now,
	}
}
