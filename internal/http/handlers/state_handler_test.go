package handlers

import (
	"net/http"
	"testing"

	"github.com/tbourn/go-fitcircle/internal/domain"
	"github.com/tbourn/go-fitcircle/internal/http/middleware"
)

func TestGetState_Default(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/state", nil)
	wantStatus(t, w, http.StatusOK)
	st := decode[domain.AppState](t, w)
	if st.Version != domain.StateVersion || len(st.Posts) != 2 || st.DarkMode {
		t.Fatalf("state = %+v", st)
	}
}

func TestUpdateProfile_MergesFields(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodPatch, "/state/profile", map[string]any{"bio": "Trail runner"})
	wantStatus(t, w, http.StatusOK)
	st := decode[domain.AppState](t, w)
	if st.Profile.Bio != "Trail runner" || st.Profile.Name != domain.DefaultState().Profile.Name {
		t.Fatalf("profile = %+v", st.Profile)
	}

	wantCode(t, f.do(http.MethodPatch, "/state/profile", "not an object"), http.StatusBadRequest, ErrCodeBadRequest)
}

func TestSetActiveChallenge(t *testing.T) {
	f := newFixture(t)
	wantCode(t, f.do(http.MethodPut, "/state/challenge", map[string]any{"title": "no id"}), http.StatusBadRequest, ErrCodeBadRequest)

	w := f.do(http.MethodPut, "/state/challenge", domain.Challenge{ID: "c9", Title: "Plank", Goal: 10})
	wantStatus(t, w, http.StatusOK)
	if got := f.state.State().ActiveChallenge; got.ID != "c9" || got.Goal != 10 {
		t.Fatalf("challenge = %+v", got)
	}
}

func TestToggleDarkMode_ReplaysWithKey(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/state/dark-mode", nil, middleware.HeaderIdempotencyKey, "dm-1")
	wantStatus(t, w, http.StatusOK)
	if !decode[DarkModeResponse](t, w).DarkMode {
		t.Fatalf("first toggle should turn dark mode on")
	}

	again := f.do(http.MethodPost, "/state/dark-mode", nil, middleware.HeaderIdempotencyKey, "dm-1")
	wantStatus(t, again, http.StatusOK)
	if again.Header().Get(middleware.HeaderReplayed) != "true" || !decode[DarkModeResponse](t, again).DarkMode {
		t.Fatalf("retry not replayed: %s", again.Body.String())
	}
	if !f.state.State().DarkMode {
		t.Fatalf("retry flipped dark mode again")
	}

	// Without a key every call toggles.
	f.do(http.MethodPost, "/state/dark-mode", nil)
	if f.state.State().DarkMode {
		t.Fatalf("keyless toggle ignored")
	}
}

func TestAddAndRemoveToast(t *testing.T) {
	f := newFixture(t)

	wantCode(t, f.do(http.MethodPost, "/state/toasts", map[string]any{"message": ""}), http.StatusBadRequest, ErrCodeInvalidToast)
	wantCode(t, f.do(http.MethodPost, "/state/toasts", map[string]any{"message": "hi", "kind": "warning"}), http.StatusBadRequest, ErrCodeInvalidToast)

	w := f.do(http.MethodPost, "/state/toasts", AddToastRequest{Message: "Workout logged"})
	wantStatus(t, w, http.StatusCreated)
	id := decode[AddToastResponse](t, w).ID

	toasts := f.state.State().Toasts
	if len(toasts) != 1 || toasts[0].ID != id || toasts[0].Kind != domain.ToastInfo {
		t.Fatalf("toasts = %+v", toasts)
	}

	wantStatus(t, f.do(http.MethodDelete, "/state/toasts/"+id, nil), http.StatusNoContent)
	wantStatus(t, f.do(http.MethodDelete, "/state/toasts/"+id, nil), http.StatusNoContent)
	if n := len(f.state.State().Toasts); n != 0 {
		t.Fatalf("toasts left: %d", n)
	}
}

func TestUpdatePost(t *testing.T) {
	f := newFixture(t)
	wantCode(t, f.do(http.MethodPut, "/state/posts/99", UpdatePostRequest{Content: "x"}), http.StatusNotFound, ErrCodeNotFound)

	w := f.do(http.MethodPut, "/state/posts/1", UpdatePostRequest{Content: "Edited"})
	wantStatus(t, w, http.StatusOK)
	st := decode[domain.AppState](t, w)
	if st.Posts[0].Content != "Edited" {
		t.Fatalf("post = %+v", st.Posts[0])
	}
	if len(st.Toasts) != 1 || st.Toasts[0].Kind != domain.ToastSuccess {
		t.Fatalf("success toast missing: %+v", st.Toasts)
	}
}

func TestReactToPost(t *testing.T) {
	f := newFixture(t)

	wantCode(t, f.do(http.MethodPost, "/state/posts/1/reactions", ReactRequest{Kind: "boo"}), http.StatusBadRequest, ErrCodeInvalidReaction)
	wantCode(t, f.do(http.MethodPost, "/state/posts/99/reactions", ReactRequest{Kind: domain.ReactionClap}), http.StatusNotFound, ErrCodeNotFound)

	w := f.do(http.MethodPost, "/state/posts/1/reactions", ReactRequest{Kind: domain.ReactionClap}, middleware.HeaderIdempotencyKey, "r-1")
	wantStatus(t, w, http.StatusOK)
	if got := decode[ReactResponse](t, w).Post.Reactions[domain.ReactionClap]; got != 4 {
		t.Fatalf("clap = %d; want 4", got)
	}

	// Same key on the same post replays; on another post it is a new action.
	f.do(http.MethodPost, "/state/posts/1/reactions", ReactRequest{Kind: domain.ReactionClap}, middleware.HeaderIdempotencyKey, "r-1")
	f.do(http.MethodPost, "/state/posts/2/reactions", ReactRequest{Kind: domain.ReactionClap}, middleware.HeaderIdempotencyKey, "r-1")

	st := f.state.State()
	if got := st.Posts[0].Reactions[domain.ReactionClap]; got != 4 {
		t.Fatalf("post 1 clap = %d; want 4", got)
	}
	if got := st.Posts[1].Reactions[domain.ReactionClap]; got != 5 {
		t.Fatalf("post 2 clap = %d; want 5", got)
	}
}

func TestLogout_ResetsState(t *testing.T) {
	f := newFixture(t)
	f.do(http.MethodPost, "/state/dark-mode", nil)
	wantStatus(t, f.do(http.MethodPost, "/state/logout", nil), http.StatusNoContent)
	if f.state.State().DarkMode {
		t.Fatalf("logout kept dark mode")
	}
}
