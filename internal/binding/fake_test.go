package binding

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tbourn/go-fitcircle/internal/docpath"
	"github.com/tbourn/go-fitcircle/internal/docstore"
)

// reply answers one pending fetch.
type reply struct {
	items []docstore.Record
	rec   docstore.Record
	ok    bool
	err   error
}

// pending is an in-flight Query or Get waiting for the test to answer.
type pending struct {
	path  string
	reply chan reply
}

// fakeSource is a hand-driven docstore.Source. Fetches block until the test
// answers them; subscriptions keep their listener so the test can push
// snapshots, including to subscriptions that were already torn down.
type fakeSource struct {
	mu           sync.Mutex
	calls        int
	fetches      chan *pending
	listeners    map[int]docstore.CollectionListener
	docListeners map[int]docstore.DocumentListener
	paths        map[int]string
	active       map[int]bool
	next         int
	subscribeErr error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		fetches:      make(chan *pending, 64),
		listeners:    map[int]docstore.CollectionListener{},
		docListeners: map[int]docstore.DocumentListener{},
		paths:        map[int]string{},
		active:       map[int]bool{},
	}
}

func (f *fakeSource) fetch(p docpath.Path) reply {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	pd := &pending{path: p.Key(), reply: make(chan reply, 1)}
	f.fetches <- pd
	// Deliberately ignores ctx: a slow store answering after cancellation
	// must still be discarded by the binding.
	return <-pd.reply
}

func (f *fakeSource) Get(_ context.Context, p docpath.Path) (docstore.Record, bool, error) {
	r := f.fetch(p)
	return r.rec, r.ok, r.err
}

func (f *fakeSource) Query(_ context.Context, p docpath.Path, _ docstore.Constraints) ([]docstore.Record, error) {
	r := f.fetch(p)
	return r.items, r.err
}

func (f *fakeSource) register(p docpath.Path) int {
	f.calls++
	f.next++
	id := f.next
	f.paths[id] = p.Key()
	f.active[id] = true
	return id
}

func (f *fakeSource) unsubscribe(id int) docstore.Unsubscribe {
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.active, id)
	}
}

func (f *fakeSource) Subscribe(_ context.Context, p docpath.Path, _ docstore.Constraints, fn docstore.CollectionListener) (docstore.Unsubscribe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		f.calls++
		return nil, f.subscribeErr
	}
	id := f.register(p)
	f.listeners[id] = fn
	return f.unsubscribe(id), nil
}

func (f *fakeSource) SubscribeDoc(_ context.Context, p docpath.Path, fn docstore.DocumentListener) (docstore.Unsubscribe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.register(p)
	f.docListeners[id] = fn
	return f.unsubscribe(id), nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// activePaths lists the paths of subscriptions not yet unsubscribed.
func (f *fakeSource) activePaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for id := range f.active {
		out = append(out, f.paths[id])
	}
	return out
}

// push delivers a snapshot to subscription id, active or not.
func (f *fakeSource) push(id int, items []docstore.Record, err error) {
	f.mu.Lock()
	fn := f.listeners[id]
	f.mu.Unlock()
	fn(items, err)
}

func (f *fakeSource) pushDoc(id int, rec docstore.Record, ok bool, err error) {
	f.mu.Lock()
	fn := f.docListeners[id]
	f.mu.Unlock()
	fn(rec, ok, err)
}

// nextFetch waits for the next in-flight fetch.
func (f *fakeSource) nextFetch(t *testing.T) *pending {
	t.Helper()
	select {
	case pd := <-f.fetches:
		return pd
	case <-time.After(2 * time.Second):
		t.Fatalf("no fetch issued")
		return nil
	}
}

var errRemote = errors.New("permission denied")

func rec(id string, kv ...any) docstore.Record {
	body := map[string]any{}
	for i := 0; i+1 < len(kv); i += 2 {
		body[kv[i].(string)] = kv[i+1]
	}
	return docstore.NewRecord(id, body)
}

func ids(rs []docstore.Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID()
	}
	return out
}

func awaitCollection(t *testing.T, c *Collection) CollectionResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	r, err := c.Await(ctx)
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	return r
}

func awaitDocument(t *testing.T, d *Document) DocumentResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	r, err := d.Await(ctx)
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	return r
}
