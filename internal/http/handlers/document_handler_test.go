package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/tbourn/go-fitcircle/internal/docpath"
	"github.com/tbourn/go-fitcircle/internal/http/middleware"
)

func (f *fixture) seed(t *testing.T, key string, body map[string]any) {
	t.Helper()
	p, err := docpath.Split(key)
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if err := f.store.Set(context.Background(), p, body); err != nil {
		t.Fatalf("seed %s: %v", key, err)
	}
}

func TestGetDocuments_InvalidPaths(t *testing.T) {
	f := newFixture(t)
	for _, p := range []string{"/docs/", "/docs/groups//messages"} {
		wantCode(t, f.do(http.MethodGet, p, nil), http.StatusBadRequest, ErrCodeInvalidPath)
	}
	wantCode(t, f.do(http.MethodGet, "/docs/groups?limit=0", nil), http.StatusBadRequest, ErrCodeBadConstraint)
	wantCode(t, f.do(http.MethodGet, "/docs/groups?where=broken", nil), http.StatusBadRequest, ErrCodeBadConstraint)
}

func TestGetDocuments_CollectionOrderedWithETag(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "groups/g1/messages/m1", map[string]any{"n": 3})
	f.seed(t, "groups/g1/messages/m2", map[string]any{"n": 1})
	f.seed(t, "groups/g1/messages/m3", map[string]any{"n": 2})

	w := f.do(http.MethodGet, "/docs/groups/g1/messages?order_by=n:desc&limit=2", nil)
	wantStatus(t, w, http.StatusOK)
	resp := decode[CollectionResponse](t, w)
	if len(resp.Items) != 2 || resp.Items[0].ID() != "m1" || resp.Items[1].ID() != "m3" {
		t.Fatalf("items = %v", resp.Items)
	}

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}
	wantStatus(t, f.do(http.MethodGet, "/docs/groups/g1/messages?order_by=n:desc&limit=2", nil, "If-None-Match", etag), http.StatusNotModified)

	// Different constraints, different tag.
	other := f.do(http.MethodGet, "/docs/groups/g1/messages?order_by=n", nil)
	if other.Header().Get("ETag") == etag {
		t.Fatalf("ETag ignores constraints")
	}

	f.seed(t, "groups/g1/messages/m4", map[string]any{"n": 9})
	if w := f.do(http.MethodGet, "/docs/groups/g1/messages?order_by=n:desc&limit=2", nil, "If-None-Match", etag); w.Code != http.StatusOK {
		t.Fatalf("stale ETag matched after write: %d", w.Code)
	}
}

func TestDocumentLifecycle(t *testing.T) {
	f := newFixture(t)

	wantCode(t, f.do(http.MethodGet, "/docs/users/u1", nil), http.StatusNotFound, ErrCodeNotFound)
	wantCode(t, f.do(http.MethodPut, "/docs/users", map[string]any{"a": 1}), http.StatusBadRequest, ErrCodeInvalidPath)
	wantCode(t, f.do(http.MethodPut, "/docs/users/u1", map[string]any{}), http.StatusBadRequest, ErrCodeBadRequest)

	wantStatus(t, f.do(http.MethodPut, "/docs/users/u1", map[string]any{"displayName": "Ann"}), http.StatusNoContent)
	w := f.do(http.MethodGet, "/docs/users/u1", nil)
	wantStatus(t, w, http.StatusOK)
	if got := decode[map[string]any](t, w); got["id"] != "u1" || got["displayName"] != "Ann" {
		t.Fatalf("document = %v", got)
	}

	wantStatus(t, f.do(http.MethodDelete, "/docs/users/u1", nil), http.StatusNoContent)
	wantCode(t, f.do(http.MethodDelete, "/docs/users/u1", nil), http.StatusNotFound, ErrCodeNotFound)
}

func TestAddDocument_IdempotentRetry(t *testing.T) {
	f := newFixture(t)
	body := map[string]any{"text": "hello"}

	w := f.do(http.MethodPost, "/docs/groups/g1/messages", body, middleware.HeaderIdempotencyKey, "msg-1")
	wantStatus(t, w, http.StatusCreated)
	first := decode[AddDocumentResponse](t, w)
	if first.ID == "" || first.Path != "groups/g1/messages/"+first.ID {
		t.Fatalf("add = %+v", first)
	}

	again := f.do(http.MethodPost, "/docs/groups/g1/messages", body, middleware.HeaderIdempotencyKey, "msg-1")
	wantStatus(t, again, http.StatusCreated)
	if decode[AddDocumentResponse](t, again).ID != first.ID || again.Header().Get(middleware.HeaderReplayed) != "true" {
		t.Fatalf("retry created a new document: %s", again.Body.String())
	}

	list := decode[CollectionResponse](t, f.do(http.MethodGet, "/docs/groups/g1/messages", nil))
	if len(list.Items) != 1 {
		t.Fatalf("items = %d; want 1", len(list.Items))
	}

	wantCode(t, f.do(http.MethodPost, "/docs/groups/g1", body), http.StatusBadRequest, ErrCodeInvalidPath)
}
