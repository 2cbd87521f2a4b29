// Package handlers exposes the local application store and the document
// store over HTTP and websockets.
//
// Handlers are transport-thin: they validate input, call the store or a
// service, and translate the outcome into a response. Unsafe requests that
// carry an Idempotency-Key are recorded so a retry replays the first answer.
package handlers

import (
	"context"
	"time"

	"github.com/tbourn/go-fitcircle/internal/binding"
	"github.com/tbourn/go-fitcircle/internal/docpath"
	"github.com/tbourn/go-fitcircle/internal/docstore"
	"github.com/tbourn/go-fitcircle/internal/domain"
)

// StateStore is the local application store as the handlers use it.
// *appstore.Store implements it.
type StateStore interface {
	State() domain.AppState
	Watch(fn func(domain.AppState)) (cancel func())
	UpdateProfile(patch domain.ProfilePatch)
	SetActiveChallenge(c domain.Challenge)
	ToggleDarkMode() bool
	AddToast(message string, kind domain.ToastKind) string
	RemoveToast(id string)
	UpdatePost(id, content string) bool
	ReactToPost(postID string, kind domain.ReactionKind) bool
	Logout()
}

// DocumentService reads, watches and writes remote documents.
// *services.DocumentService implements it.
type DocumentService interface {
	Collection(ctx context.Context, p docpath.Path, cs docstore.Constraints) ([]docstore.Record, error)
	Document(ctx context.Context, p docpath.Path) (docstore.Record, error)
	WatchCollection(ctx context.Context, p docpath.Path, cs docstore.Constraints, fn func(binding.CollectionResult) error) error
	WatchDocument(ctx context.Context, p docpath.Path, fn func(binding.DocumentResult) error) error
	Put(ctx context.Context, p docpath.Path, body map[string]any) error
	Add(ctx context.Context, p docpath.Path, body map[string]any) (string, error)
	Delete(ctx context.Context, p docpath.Path) error
	CollectionStats(ctx context.Context, p docpath.Path) (count int64, latest *time.Time, ok bool, err error)
}

// IdempotencyStore records and replays responses.
// *services.IdempotencyService implements it.
type IdempotencyStore interface {
	Lookup(ctx context.Context, userID, scope, key string) (*domain.Idempotency, error)
	Record(ctx context.Context, userID, scope, key, response string, status int) error
}

// Handlers groups the HTTP endpoints. Any dependency may be nil; routes
// backed by a nil dependency are not mounted by the router, and a nil
// IdempotencyStore disables replay.
type Handlers struct {
	state StateStore
	docs  DocumentService
	idem  IdempotencyStore
}

// New constructs Handlers over the given dependencies.
func New(state StateStore, docs DocumentService, idem IdempotencyStore) *Handlers {
	return &Handlers{state: state, docs: docs, idem: idem}
}

// HasState reports whether the state routes can be served.
func (h *Handlers) HasState() bool { return h.state != nil }

// HasDocuments reports whether the document routes can be served.
func (h *Handlers) HasDocuments() bool { return h.docs != nil }
