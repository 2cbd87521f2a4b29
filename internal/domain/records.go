package domain

import "time"

// Defaulter is implemented by record shapes that fill missing fields after
// decoding. Bindings call ApplyDefaults exactly once per decoded record, so
// consumers never re-check optional fields themselves.
type Defaulter interface {
	ApplyDefaults()
}

// Group privacy settings.
const (
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"
)

// Group is a community group document ("groups/{id}").
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"ownerId"`
	MemberIDs   []string  `json:"memberIds"`
	MemberCount int       `json:"memberCount"`
	Privacy     string    `json:"privacy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ApplyDefaults implements Defaulter.
func (g *Group) ApplyDefaults() {
	if g.Name == "" {
		g.Name = "Untitled group"
	}
	if g.Privacy == "" {
		g.Privacy = PrivacyPublic
	}
	if g.MemberIDs == nil {
		g.MemberIDs = []string{}
	}
	if g.MemberCount < len(g.MemberIDs) {
		g.MemberCount = len(g.MemberIDs)
	}
}

// ChatMessage is one message of a group chat ("groups/{id}/messages/{id}").
type ChatMessage struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ApplyDefaults implements Defaulter.
func (m *ChatMessage) ApplyDefaults() {
	if m.SenderName == "" {
		m.SenderName = "Anonymous"
	}
}

// Join request states.
const (
	JoinPending  = "pending"
	JoinApproved = "approved"
	JoinRejected = "rejected"
)

// JoinRequest is a pending membership request
// ("groups/{id}/joinRequests/{id}").
type JoinRequest struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// ApplyDefaults implements Defaulter.
func (r *JoinRequest) ApplyDefaults() {
	if r.Status == "" {
		r.Status = JoinPending
	}
	if r.UserName == "" {
		r.UserName = r.UserID
	}
}

// LeaderboardEntry is one ranked row of a challenge leaderboard.
type LeaderboardEntry struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Points   int    `json:"points"`
	Workouts int    `json:"workouts"`
	Avatar   string `json:"avatar"`
}

// ApplyDefaults implements Defaulter.
func (e *LeaderboardEntry) ApplyDefaults() {
	if e.UserID == "" {
		e.UserID = e.ID
	}
	if e.Name == "" {
		e.Name = "Member"
	}
}

// UserProfile is a public user document ("users/{id}").
type UserProfile struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	PhotoURL    string   `json:"photoURL"`
	Bio         string   `json:"bio"`
	Badges      []string `json:"badges"`
	Role        string   `json:"role"`
}

// ApplyDefaults implements Defaulter.
func (u *UserProfile) ApplyDefaults() {
	if u.DisplayName == "" {
		u.DisplayName = "Member"
	}
	if u.Badges == nil {
		u.Badges = []string{}
	}
	if u.Role == "" {
		u.Role = "member"
	}
}
