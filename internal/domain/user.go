package domain

// User is the portal's account record, stored under user:<email>. The email
// is the primary key. JSON field names match the blobs the portal has always
// written so existing records stay readable.
type User struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password"`
	IsAdmin      bool   `json:"isAdmin"`
	CreatedAt    string `json:"createdAt"`
	Verified     bool   `json:"verified"`
	ExternalUID  string `json:"externalUid,omitempty"`
	Fingerprint  string `json:"ip"`
}

// Session is the per-request view of the authenticated actor. It replaces
// the old globals: created by the auth middleware, carried in the request
// context, gone when the request ends.
type Session struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Admin    bool   `json:"admin"`

	// Preview is an admin's self-demotion to the standard view. The token
	// keeps its elevated identity; only the shutdown toggle refuses to act
	// while previewing.
	Preview bool `json:"preview"`
}

// Elevated reports whether the session acts with admin capability right now.
func (s *Session) Elevated() bool {
	return s != nil && s.Admin && !s.Preview
}
