// Local application store endpoints.
//
//   - GET    /state                      (snapshot)
//   - PATCH  /state/profile              (shallow-merge profile)
//   - PUT    /state/challenge            (replace active challenge)
//   - POST   /state/dark-mode            (toggle, idempotent with a key)
//   - POST   /state/toasts               (raise a toast, idempotent with a key)
//   - DELETE /state/toasts/{id}          (dismiss)
//   - PUT    /state/posts/{id}           (edit content)
//   - POST   /state/posts/{id}/reactions (react, idempotent with a key)
//   - POST   /state/logout               (reset)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-fitcircle/internal/domain"
)

// DarkModeResponse reports dark mode after a toggle.
type DarkModeResponse struct {
	DarkMode bool `json:"darkMode" example:"true"`
}

// AddToastRequest raises a toast. Kind defaults to info.
type AddToastRequest struct {
	Message string           `json:"message" binding:"required" example:"Workout logged"`
	Kind    domain.ToastKind `json:"kind" example:"success" enums:"success,error,info"`
}

// AddToastResponse carries the id of the new toast.
type AddToastResponse struct {
	ID string `json:"id" example:"0b9f6c1e-8a53-4f44-9f57-2d1f2f0c3b11"`
}

// UpdatePostRequest replaces a post's content.
type UpdatePostRequest struct {
	Content string `json:"content" binding:"required" example:"New PR on deadlifts!"`
}

// ReactRequest names the reaction to add.
type ReactRequest struct {
	Kind domain.ReactionKind `json:"kind" binding:"required" example:"clap" enums:"like,clap,celebrate"`
}

// ReactResponse is the post after the reaction.
type ReactResponse struct {
	Post domain.Post `json:"post"`
}

// GetState godoc
// @ID          getState
// @Summary     Current application state
// @Tags        State
// @Produce     json
// @Success     200  {object} domain.AppState
// @Router      /state [get]
func (h *Handlers) GetState(c *gin.Context) {
	ok(c, http.StatusOK, h.state.State())
}

// UpdateProfile godoc
// @ID          updateProfile
// @Summary     Merge fields into the profile
// @Description Only the supplied fields change; stats replaces the whole stats block.
// @Tags        State
// @Accept      json
// @Produce     json
// @Param       body  body      domain.ProfilePatch  true  "Profile fields"
// @Success     200   {object}  domain.AppState
// @Failure     400   {object}  handlers.ErrorResponse
// @Router      /state/profile [patch]
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var patch domain.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid profile patch")
		return
	}
	h.state.UpdateProfile(patch)
	ok(c, http.StatusOK, h.state.State())
}

// SetActiveChallenge godoc
// @ID          setActiveChallenge
// @Summary     Replace the active challenge
// @Tags        State
// @Accept      json
// @Produce     json
// @Param       body  body      domain.Challenge  true  "Challenge"
// @Success     200   {object}  domain.AppState
// @Failure     400   {object}  handlers.ErrorResponse
// @Router      /state/challenge [put]
func (h *Handlers) SetActiveChallenge(c *gin.Context) {
	var ch domain.Challenge
	if err := c.ShouldBindJSON(&ch); err != nil || strings.TrimSpace(ch.ID) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "challenge id required")
		return
	}
	h.state.SetActiveChallenge(ch)
	ok(c, http.StatusOK, h.state.State())
}

// ToggleDarkMode godoc
// @ID          toggleDarkMode
// @Summary     Flip dark mode
// @Description A retry with the same Idempotency-Key replays the first result instead of flipping again.
// @Tags        State
// @Produce     json
// @Param       Idempotency-Key  header  string  false  "Idempotency key for safe retries"
// @Success     200  {object}  handlers.DarkModeResponse
// @Header      200  {string}  Idempotency-Replayed  "true when replayed"
// @Router      /state/dark-mode [post]
func (h *Handlers) ToggleDarkMode(c *gin.Context) {
	if h.replay(c) {
		return
	}
	h.respond(c, http.StatusOK, DarkModeResponse{DarkMode: h.state.ToggleDarkMode()})
}

// AddToast godoc
// @ID          addToast
// @Summary     Raise a toast
// @Description The toast expires on its own after the configured lifetime.
// @Tags        State
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string                    false  "Idempotency key for safe retries"
// @Param       body             body    handlers.AddToastRequest  true   "Toast"
// @Success     201  {object}  handlers.AddToastResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Router      /state/toasts [post]
func (h *Handlers) AddToast(c *gin.Context) {
	if h.replay(c) {
		return
	}
	var req AddToastRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		fail(c, http.StatusBadRequest, ErrCodeInvalidToast, "message required")
		return
	}
	switch req.Kind {
	case "":
		req.Kind = domain.ToastInfo
	case domain.ToastSuccess, domain.ToastError, domain.ToastInfo:
	default:
		fail(c, http.StatusBadRequest, ErrCodeInvalidToast, "kind must be success, error or info")
		return
	}
	id := h.state.AddToast(req.Message, req.Kind)
	h.respond(c, http.StatusCreated, AddToastResponse{ID: id})
}

// RemoveToast godoc
// @ID          removeToast
// @Summary     Dismiss a toast
// @Description Unknown ids succeed; the toast may already have expired.
// @Tags        State
// @Param       id  path  string  true  "Toast id"
// @Success     204
// @Router      /state/toasts/{id} [delete]
func (h *Handlers) RemoveToast(c *gin.Context) {
	h.state.RemoveToast(c.Param("id"))
	noContent(c)
}

// UpdatePost godoc
// @ID          updatePost
// @Summary     Edit a post
// @Description Raises a success toast.
// @Tags        State
// @Accept      json
// @Produce     json
// @Param       id    path      string                      true  "Post id"
// @Param       body  body      handlers.UpdatePostRequest  true  "Content"
// @Success     200   {object}  domain.AppState
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     404   {object}  handlers.ErrorResponse
// @Router      /state/posts/{id} [put]
func (h *Handlers) UpdatePost(c *gin.Context) {
	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}
	if !h.state.UpdatePost(c.Param("id"), req.Content) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "post not found")
		return
	}
	ok(c, http.StatusOK, h.state.State())
}

// ReactToPost godoc
// @ID          reactToPost
// @Summary     React to a post
// @Tags        State
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string                 false  "Idempotency key for safe retries"
// @Param       id               path    string                 true   "Post id"
// @Param       body             body    handlers.ReactRequest  true   "Reaction"
// @Success     200  {object}  handlers.ReactResponse
// @Header      200  {string}  Idempotency-Replayed  "true when replayed"
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /state/posts/{id}/reactions [post]
func (h *Handlers) ReactToPost(c *gin.Context) {
	if h.replay(c) {
		return
	}
	var req ReactRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Kind.Valid() {
		fail(c, http.StatusBadRequest, ErrCodeInvalidReaction, "kind must be like, clap or celebrate")
		return
	}
	id := c.Param("id")
	if !h.state.ReactToPost(id, req.Kind) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "post not found")
		return
	}
	st := h.state.State()
	i := st.PostIndex(id)
	if i < 0 {
		// Logged out between the reaction and the read.
		fail(c, http.StatusNotFound, ErrCodeNotFound, "post not found")
		return
	}
	h.respond(c, http.StatusOK, ReactResponse{Post: st.Posts[i]})
}

// Logout godoc
// @ID          logout
// @Summary     Clear persisted state and reset to the default
// @Tags        State
// @Success     204
// @Router      /state/logout [post]
func (h *Handlers) Logout(c *gin.Context) {
	h.state.Logout()
	noContent(c)
}
