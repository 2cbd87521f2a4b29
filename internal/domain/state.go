package domain

// StateVersion is the schema version of AppState. A persisted snapshot with
// any other version is discarded at load time.
const StateVersion = 1

// ReactionKind names one of the fixed post reactions.
type ReactionKind string

// Reaction kinds.
const (
	ReactionLike      ReactionKind = "like"
	ReactionClap      ReactionKind = "clap"
	ReactionCelebrate ReactionKind = "celebrate"
)

// ReactionKinds lists every valid reaction, in a stable order.
var ReactionKinds = []ReactionKind{ReactionLike, ReactionClap, ReactionCelebrate}

// Valid reports whether k is one of ReactionKinds.
func (k ReactionKind) Valid() bool {
	switch k {
	case ReactionLike, ReactionClap, ReactionCelebrate:
		return true
	}
	return false
}

// ToastKind classifies a toast for display.
type ToastKind string

// Toast kinds.
const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
)

// ProfileStats holds the cumulative counters shown on a profile.
type ProfileStats struct {
	Workouts            int `json:"workouts"`
	Streak              int `json:"streak"`
	Points              int `json:"points"`
	ChallengesCompleted int `json:"challengesCompleted"`
}

// Profile is the signed-in user as held by the local store.
type Profile struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Username  string       `json:"username"`
	AvatarURL string       `json:"avatarUrl"`
	Bio       string       `json:"bio"`
	Location  string       `json:"location"`
	JoinedAt  string       `json:"joinedAt"`
	Stats     ProfileStats `json:"stats"`
}

// ProfilePatch is a partial profile. Nil fields are left untouched by a
// shallow merge; Stats replaces the whole stats block when set.
type ProfilePatch struct {
	Name      *string       `json:"name,omitempty"`
	Username  *string       `json:"username,omitempty"`
	AvatarURL *string       `json:"avatarUrl,omitempty"`
	Bio       *string       `json:"bio,omitempty"`
	Location  *string       `json:"location,omitempty"`
	Stats     *ProfileStats `json:"stats,omitempty"`
}

// Apply returns p with every non-nil field of patch merged in.
func (patch ProfilePatch) Apply(p Profile) Profile {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Username != nil {
		p.Username = *patch.Username
	}
	if patch.AvatarURL != nil {
		p.AvatarURL = *patch.AvatarURL
	}
	if patch.Bio != nil {
		p.Bio = *patch.Bio
	}
	if patch.Location != nil {
		p.Location = *patch.Location
	}
	if patch.Stats != nil {
		p.Stats = *patch.Stats
	}
	return p
}

// Challenge is the challenge currently shown as active.
type Challenge struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Goal         int    `json:"goal"`
	Progress     int    `json:"progress"`
	Participants int    `json:"participants"`
	Stake        int    `json:"stake"`
}

// Toast is a transient notification banner.
type Toast struct {
	ID      string    `json:"id"`
	Message string    `json:"message"`
	Kind    ToastKind `json:"kind"`
}

// Post is a community feed entry with its reaction counters.
type Post struct {
	ID        string               `json:"id"`
	Author    string               `json:"author"`
	Avatar    string               `json:"avatar"`
	Content   string               `json:"content"`
	Timestamp string               `json:"timestamp"`
	Reactions map[ReactionKind]int `json:"reactions"`
}

// AppState is one snapshot of the local application store.
type AppState struct {
	Version         int       `json:"version"`
	Profile         Profile   `json:"profile"`
	ActiveChallenge Challenge `json:"activeChallenge"`
	DarkMode        bool      `json:"darkMode"`
	Toasts          []Toast   `json:"toasts"`
	Posts           []Post    `json:"posts"`
}

// Clone returns a deep copy of s; mutating the copy never affects s.
func (s AppState) Clone() AppState {
	out := s
	out.Toasts = append([]Toast(nil), s.Toasts...)
	if out.Toasts == nil {
		out.Toasts = []Toast{}
	}
	out.Posts = make([]Post, len(s.Posts))
	for i, p := range s.Posts {
		r := make(map[ReactionKind]int, len(p.Reactions))
		for k, v := range p.Reactions {
			r[k] = v
		}
		p.Reactions = r
		out.Posts[i] = p
	}
	return out
}

// PostIndex returns the index of the post with id, or -1.
func (s AppState) PostIndex(id string) int {
	for i, p := range s.Posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// DefaultState returns the hardcoded snapshot used on first start, after an
// unreadable load and after logout.
func DefaultState() AppState {
	return AppState{
		Version: StateVersion,
		Profile: Profile{
			ID:        "u1",
			Name:      "Alex Rivera",
			Username:  "alexfit",
			AvatarURL: "https://i.pravatar.cc/150?img=12",
			Bio:       "Chasing PRs and sunrise runs.",
			Location:  "Austin, TX",
			JoinedAt:  "2024-01-15",
			Stats: ProfileStats{
				Workouts:            128,
				Streak:              12,
				Points:              2450,
				ChallengesCompleted: 7,
			},
		},
		ActiveChallenge: Challenge{
			ID:           "c1",
			Title:        "30-Day Consistency",
			Description:  "Log a workout every day for 30 days.",
			StartDate:    "2024-06-01",
			EndDate:      "2024-06-30",
			Goal:         30,
			Progress:     12,
			Participants: 8,
			Stake:        20,
		},
		Toasts: []Toast{},
		Posts: []Post{
			{
				ID:        "1",
				Author:    "Jordan Lee",
				Avatar:    "https://i.pravatar.cc/150?img=5",
				Content:   "Crushed a 10k this morning! Who's joining tomorrow?",
				Timestamp: "2h ago",
				Reactions: map[ReactionKind]int{ReactionLike: 5, ReactionClap: 3, ReactionCelebrate: 2},
			},
			{
				ID:        "2",
				Author:    "Sam Patel",
				Avatar:    "https://i.pravatar.cc/150?img=8",
				Content:   "Day 12 of the consistency challenge done. Legs are sore.",
				Timestamp: "5h ago",
				Reactions: map[ReactionKind]int{ReactionLike: 12, ReactionClap: 4, ReactionCelebrate: 7},
			},
		},
	}
}
