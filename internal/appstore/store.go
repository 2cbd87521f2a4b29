// Package appstore owns the local application state: the signed-in profile,
// the active challenge, dark mode, toasts and the post feed.
//
// All mutation goes through Store's action methods. Every committed action
// writes the full snapshot to durable storage before the next action is
// accepted, so the persisted sequence matches the mutation sequence exactly.
// Background work (toast expiry, simulated activity) calls the same public
// actions and never touches the state directly.
package appstore

import (
	"sync"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-fitcircle/internal/domain"
	"github.com/tbourn/go-fitcircle/internal/localstorage"
)

// Store is the process-wide application state owner. It is safe for
// concurrent use.
type Store struct {
	cfg     config
	storage localstorage.Storage
	log     zerolog.Logger

	mu       sync.Mutex
	state    domain.AppState
	seq      uint64
	toasts   map[string]Timer
	activity Timer
	closed   bool

	notifyMu  sync.Mutex
	published uint64
	watchers  map[int]*watcher
	nextWatch int
}

type watcher struct {
	fn   func(domain.AppState)
	seen uint64
}

// New loads the persisted snapshot (or the default) and starts simulated
// activity. It never fails: unreadable storage falls back to the default.
func New(storage localstorage.Storage, opts ...Option) *Store {
	cfg := defaults()
	for _, o := range opts {
		o(&cfg)
	}
	s := &Store{
		cfg:      cfg,
		storage:  storage,
		log:      cfg.log.With().Str("component", "appstore").Str("key", cfg.key).Logger(),
		toasts:   map[string]Timer{},
		watchers: map[int]*watcher{},
	}

	s.mu.Lock()
	s.state = s.load()
	// Toasts restored from storage still expire.
	for _, t := range s.state.Toasts {
		s.armToastLocked(t.ID)
	}
	if cfg.activity > 0 {
		s.activity = cfg.sched.AfterFunc(cfg.activity, s.simulateActivity)
	}
	s.mu.Unlock()
	return s
}

func (s *Store) load() domain.AppState {
	raw, ok, err := s.storage.Get(s.cfg.key)
	if err != nil {
		s.log.Warn().Err(err).Msg("read persisted state; using default")
		return s.cfg.def()
	}
	if !ok {
		return s.cfg.def()
	}
	var st domain.AppState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		s.log.Warn().Err(err).Msg("parse persisted state; using default")
		return s.cfg.def()
	}
	if st.Version != domain.StateVersion {
		s.log.Warn().Int("version", st.Version).Int("want", domain.StateVersion).Msg("persisted state version mismatch; using default")
		return s.cfg.def()
	}
	return normalize(st)
}

func normalize(st domain.AppState) domain.AppState {
	if st.Toasts == nil {
		st.Toasts = []domain.Toast{}
	}
	if st.Posts == nil {
		st.Posts = []domain.Post{}
	}
	for i := range st.Posts {
		if st.Posts[i].Reactions == nil {
			st.Posts[i].Reactions = map[domain.ReactionKind]int{}
		}
	}
	return st
}

// State returns a deep copy of the current snapshot.
func (s *Store) State() domain.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Watch registers fn to receive the current snapshot immediately and then
// every committed snapshot. Snapshots arrive in commit order; a watcher may
// miss intermediate snapshots under contention but never sees an older one
// after a newer one. fn must not call store actions synchronously.
func (s *Store) Watch(fn func(domain.AppState)) (cancel func()) {
	s.notifyMu.Lock()
	s.mu.Lock()
	seq, snap := s.seq, s.state.Clone()
	s.mu.Unlock()

	id := s.nextWatch
	s.nextWatch++
	s.watchers[id] = &watcher{fn: fn, seen: seq}
	fn(snap)
	s.notifyMu.Unlock()

	return func() {
		s.notifyMu.Lock()
		delete(s.watchers, id)
		s.notifyMu.Unlock()
	}
}

// mutate applies fn under the lock. When fn reports a change the snapshot is
// persisted before the lock is released, then published to watchers.
func (s *Store) mutate(action string, fn func(st *domain.AppState) bool) bool {
	s.mu.Lock()
	if !fn(&s.state) {
		s.mu.Unlock()
		return false
	}
	s.persistLocked(action)
	s.seq++
	seq, snap := s.seq, s.state.Clone()
	s.mu.Unlock()

	mutations.WithLabelValues(action).Inc()
	s.publish(seq, snap)
	return true
}

func (s *Store) persistLocked(action string) {
	raw, err := json.Marshal(s.state)
	if err == nil {
		err = s.storage.Set(s.cfg.key, string(raw))
	}
	if err != nil {
		persistFailures.Inc()
		s.log.Error().Err(err).Str("action", action).Msg("persist state; keeping in-memory snapshot")
	}
}

func (s *Store) publish(seq uint64, snap domain.AppState) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if seq <= s.published {
		return
	}
	s.published = seq
	for _, w := range s.watchers {
		if seq <= w.seen {
			continue
		}
		w.seen = seq
		w.fn(snap.Clone())
	}
}

// UpdateProfile shallow-merges patch into the profile.
func (s *Store) UpdateProfile(patch domain.ProfilePatch) {
	s.mutate("update_profile", func(st *domain.AppState) bool {
		st.Profile = patch.Apply(st.Profile)
		return true
	})
}

// SetActiveChallenge replaces the active challenge.
func (s *Store) SetActiveChallenge(c domain.Challenge) {
	s.mutate("set_active_challenge", func(st *domain.AppState) bool {
		st.ActiveChallenge = c
		return true
	})
}

// ToggleDarkMode flips dark mode and returns the new value.
func (s *Store) ToggleDarkMode() bool {
	var on bool
	s.mutate("toggle_dark_mode", func(st *domain.AppState) bool {
		st.DarkMode = !st.DarkMode
		on = st.DarkMode
		return true
	})
	return on
}

// AddToast appends a toast and schedules its removal after the toast TTL.
// It returns the new toast's id.
func (s *Store) AddToast(message string, kind domain.ToastKind) string {
	id := uuid.NewString()
	s.mutate("add_toast", func(st *domain.AppState) bool {
		st.Toasts = append(st.Toasts, domain.Toast{ID: id, Message: message, Kind: kind})
		s.armToastLocked(id)
		return true
	})
	return id
}

func (s *Store) armToastLocked(id string) {
	if s.closed {
		return
	}
	s.toasts[id] = s.cfg.sched.AfterFunc(s.cfg.toastTTL, func() { s.RemoveToast(id) })
}

// RemoveToast removes the toast with id and cancels its expiry. Unknown ids
// are a no-op.
func (s *Store) RemoveToast(id string) {
	s.mutate("remove_toast", func(st *domain.AppState) bool {
		if t, ok := s.toasts[id]; ok {
			t.Stop()
			delete(s.toasts, id)
		}
		for i, t := range st.Toasts {
			if t.ID == id {
				st.Toasts = append(st.Toasts[:i:i], st.Toasts[i+1:]...)
				return true
			}
		}
		return false
	})
}

// UpdatePost replaces a post's content and raises a success toast. It
// reports false, changing nothing, when no post has id.
func (s *Store) UpdatePost(id, content string) bool {
	ok := s.mutate("update_post", func(st *domain.AppState) bool {
		i := st.PostIndex(id)
		if i < 0 {
			return false
		}
		st.Posts[i].Content = content
		return true
	})
	if ok {
		s.AddToast("Post updated successfully!", domain.ToastSuccess)
	}
	return ok
}

// ReactToPost increments one reaction counter. Unknown posts and reaction
// kinds are a no-op reporting false.
func (s *Store) ReactToPost(postID string, kind domain.ReactionKind) bool {
	if !kind.Valid() {
		return false
	}
	return s.mutate("react_to_post", func(st *domain.AppState) bool {
		i := st.PostIndex(postID)
		if i < 0 {
			return false
		}
		if st.Posts[i].Reactions == nil {
			st.Posts[i].Reactions = map[domain.ReactionKind]int{}
		}
		st.Posts[i].Reactions[kind]++
		return true
	})
}

// Logout clears the durable entry and resets to the default snapshot. The
// default is not written back, so the next start also sees the default.
func (s *Store) Logout() {
	s.mu.Lock()
	for id, t := range s.toasts {
		t.Stop()
		delete(s.toasts, id)
	}
	if err := s.storage.Remove(s.cfg.key); err != nil {
		persistFailures.Inc()
		s.log.Error().Err(err).Msg("clear persisted state")
	}
	s.state = normalize(s.cfg.def())
	s.seq++
	seq, snap := s.seq, s.state.Clone()
	s.mu.Unlock()

	mutations.WithLabelValues("logout").Inc()
	s.log.Info().Msg("logged out; state reset")
	s.publish(seq, snap)
}

// simulateActivity reacts to a random post with a random kind, then re-arms.
func (s *Store) simulateActivity() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	var postID string
	var kind domain.ReactionKind
	if n := len(s.state.Posts); n > 0 {
		postID = s.state.Posts[s.cfg.intn(n)].ID
		kind = domain.ReactionKinds[s.cfg.intn(len(domain.ReactionKinds))]
	}
	s.mu.Unlock()

	if postID != "" {
		s.ReactToPost(postID, kind)
		s.log.Debug().Str("post_id", postID).Str("reaction", string(kind)).Msg("simulated activity")
	}

	s.mu.Lock()
	if !s.closed {
		s.activity = s.cfg.sched.AfterFunc(s.cfg.activity, s.simulateActivity)
	}
	s.mu.Unlock()
}

// Close cancels toast expiry and simulated activity. The state stays
// readable and actions keep working, but nothing is scheduled any more.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, t := range s.toasts {
		t.Stop()
		delete(s.toasts, id)
	}
	if s.activity != nil {
		s.activity.Stop()
	}
}
