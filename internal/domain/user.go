package domain

import "time"

// ActiveWindow is how recent the last activity must be for a user to count as active
const ActiveWindow = 7 * 24 * time.Hour

// UserProfile represents a registered bot user
type UserProfile struct {
	ID             int64     `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Username       string    `json:"username"`
	JoinedAt       time.Time `json:"joined_at"`
	LastActivityAt time.Time `json:"last_activity"`
	MessageCount   int       `json:"message_count"`
	IsSubscriber   bool      `json:"is_subscriber"`
	IsBlocked      bool      `json:"is_blocked"`
}

// IsActive reports whether the user was seen within ActiveWindow of now
func (u *UserProfile) IsActive(now time.Time) bool {
	return now.Sub(u.LastActivityAt) <= ActiveWindow
}

// UserInfo is the identity data received with an update
type UserInfo struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
}

// UserFilter selects users in registry listings
type UserFilter string

const (
	FilterAll         UserFilter = "all"
	FilterSubscribers UserFilter = "subscribers"
	FilterActive      UserFilter = "active"
	FilterBlocked     UserFilter = "blocked"
)

// ParseUserFilter parses a filter name, defaulting to FilterAll
func ParseUserFilter(s string) (UserFilter, bool) {
	switch UserFilter(s) {
	case FilterAll, FilterSubscribers, FilterActive, FilterBlocked:
		return UserFilter(s), true
	case "":
		return FilterAll, true
	}
	return "", false
}

// RegistrySnapshot is the persisted form of the user registry
type RegistrySnapshot struct {
	Users       map[int64]*UserProfile `json:"users"`
	Subscribers []int64                `json:"subscribers"`
	TotalUsers  int                    `json:"totalUsers"`
}

// RegistryCounts summarizes the registry
type RegistryCounts struct {
	Total       int
	Subscribers int
	Active      int
	Blocked     int
}
