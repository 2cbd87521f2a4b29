package binding

import (
	"context"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-fitcircle/internal/docpath"
	"github.com/tbourn/go-fitcircle/internal/docstore"
	"github.com/tbourn/go-fitcircle/internal/repo"
)

func TestCollection_StartsLoading(t *testing.T) {
	c := NewCollection(newFakeSource())
	if r := c.Result(); !r.Loading || len(r.Items) != 0 {
		t.Fatalf("unbound result = %+v; want empty and loading", r)
	}
}

func TestCollection_InvalidPathNeverCallsStore(t *testing.T) {
	cases := []struct {
		name string
		segs []string
	}{
		{"nil", nil},
		{"empty", []string{}},
		{"blank segment", []string{"groups", "", "messages"}},
		{"whitespace segment", []string{"groups", "  "}},
		{"document parity", []string{"groups", "g1"}},
	}
	for _, mode := range []Mode{Live, Once} {
		for _, tc := range cases {
			t.Run(mode.String()+"/"+tc.name, func(t *testing.T) {
				src := newFakeSource()
				c := NewCollection(src, WithMode(mode))
				c.Bind(tc.segs, nil)

				// Resolved synchronously, no await needed.
				r := c.Result()
				if r.Loading || r.Items == nil || len(r.Items) != 0 {
					t.Fatalf("result = %+v; want empty, not loading", r)
				}
				if n := src.callCount(); n != 0 {
					t.Fatalf("store called %d times for invalid path", n)
				}
			})
		}
	}
}

func TestCollection_OnceLastRequestWins(t *testing.T) {
	src := newFakeSource()
	c := NewCollection(src, WithMode(Once))
	baseStale := testutil.ToFloat64(staleResults.WithLabelValues("collection"))

	paths := [][]string{{"groups", "a", "messages"}, {"groups", "b", "messages"}, {"groups", "c", "messages"}}
	for _, p := range paths {
		c.Bind(p, nil)
	}

	byPath := map[string]*pending{}
	for range paths {
		pd := src.nextFetch(t)
		byPath[pd.path] = pd
	}

	// Newest answers first, then the superseded ones answer late.
	byPath["groups/c/messages"].reply <- reply{items: []docstore.Record{rec("c1")}}
	r := awaitCollection(t, c)
	if got := ids(r.Items); !reflect.DeepEqual(got, []string{"c1"}) {
		t.Fatalf("items = %v; want [c1]", got)
	}

	byPath["groups/a/messages"].reply <- reply{items: []docstore.Record{rec("a1")}}
	byPath["groups/b/messages"].reply <- reply{err: errRemote}

	deadline := time.Now().Add(2 * time.Second)
	for testutil.ToFloat64(staleResults.WithLabelValues("collection")) < baseStale+2 {
		if time.Now().After(deadline) {
			t.Fatalf("superseded replies were not discarded")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := ids(c.Result().Items); !reflect.DeepEqual(got, []string{"c1"}) {
		t.Fatalf("stale reply overwrote result: %v", got)
	}
}

func TestCollection_LiveRebindKeepsOneSubscription(t *testing.T) {
	src := newFakeSource()
	c := NewCollection(src)
	baseActive := testutil.ToFloat64(activeSubscriptions.WithLabelValues("collection"))

	for _, g := range []string{"g1", "g2", "g3", "g4", "g5"} {
		c.Bind([]string{"groups", g, "messages"}, nil)
	}

	if got := src.activePaths(); !reflect.DeepEqual(got, []string{"groups/g5/messages"}) {
		t.Fatalf("active subscriptions = %v; want only the last path", got)
	}
	if got := testutil.ToFloat64(activeSubscriptions.WithLabelValues("collection")); got != baseActive+1 {
		t.Fatalf("active gauge = %v; want %v", got, baseActive+1)
	}

	// A torn-down subscription that still fires must not leak through.
	src.push(1, []docstore.Record{rec("old")}, nil)
	if r := c.Result(); !r.Loading || len(r.Items) != 0 {
		t.Fatalf("superseded snapshot delivered: %+v", r)
	}

	src.push(5, []docstore.Record{rec("new")}, nil)
	r := c.Result()
	if r.Loading || !reflect.DeepEqual(ids(r.Items), []string{"new"}) {
		t.Fatalf("result = %+v; want [new]", r)
	}

	c.Close()
	if got := src.activePaths(); len(got) != 0 {
		t.Fatalf("close left subscriptions open: %v", got)
	}
	if got := testutil.ToFloat64(activeSubscriptions.WithLabelValues("collection")); got != baseActive {
		t.Fatalf("active gauge after close = %v; want %v", got, baseActive)
	}
}

func TestCollection_RebindOnlyOnIdentityChange(t *testing.T) {
	src := newFakeSource()
	c := NewCollection(src)
	path := []string{"groups", "g1", "messages"}

	c.Bind(path, docstore.Constraints{docstore.OrderBy("createdAt", docstore.Asc)})
	// Fresh slices with the same structure are the same identity.
	c.Bind([]string{"groups", "g1", "messages"}, docstore.Constraints{docstore.OrderBy("createdAt", docstore.Asc)})
	if n := src.callCount(); n != 1 {
		t.Fatalf("calls = %d; want 1", n)
	}

	c.Bind(path, docstore.Constraints{docstore.OrderBy("createdAt", docstore.Desc)})
	if n := src.callCount(); n != 2 {
		t.Fatalf("constraint change must re-bind, calls = %d", n)
	}
	if got := src.activePaths(); len(got) != 1 {
		t.Fatalf("active = %v; want exactly one", got)
	}
}

func TestCollection_PreservesServerOrder(t *testing.T) {
	src := newFakeSource()
	c := NewCollection(src)
	c.Bind([]string{"groups", "g1", "messages"}, docstore.Constraints{docstore.OrderBy("createdAt", docstore.Desc)})

	src.push(1, []docstore.Record{rec("m3"), rec("m1"), rec("m2")}, nil)
	if got := ids(c.Result().Items); !reflect.DeepEqual(got, []string{"m3", "m1", "m2"}) {
		t.Fatalf("order = %v; want server order [m3 m1 m2]", got)
	}
}

func TestCollection_FailuresResolveEmpty(t *testing.T) {
	t.Run("once query error", func(t *testing.T) {
		src := newFakeSource()
		c := NewCollection(src, WithMode(Once))
		base := testutil.ToFloat64(failures.WithLabelValues("collection", "once"))

		c.Bind([]string{"groups"}, nil)
		src.nextFetch(t).reply <- reply{err: errRemote}
		r := awaitCollection(t, c)
		if r.Loading || len(r.Items) != 0 {
			t.Fatalf("result = %+v", r)
		}
		if got := testutil.ToFloat64(failures.WithLabelValues("collection", "once")); got != base+1 {
			t.Fatalf("failures = %v; want %v", got, base+1)
		}
	})

	t.Run("live snapshot error", func(t *testing.T) {
		src := newFakeSource()
		c := NewCollection(src)
		c.Bind([]string{"groups"}, nil)
		src.push(1, []docstore.Record{rec("g1")}, nil)
		src.push(1, nil, errRemote)
		if r := c.Result(); r.Loading || len(r.Items) != 0 {
			t.Fatalf("result = %+v", r)
		}
	})

	t.Run("subscribe refused", func(t *testing.T) {
		src := newFakeSource()
		src.subscribeErr = errRemote
		c := NewCollection(src)
		c.Bind([]string{"groups"}, nil)
		if r := c.Result(); r.Loading || len(r.Items) != 0 {
			t.Fatalf("result = %+v", r)
		}
	})
}

func TestCollection_CloseDiscardsAndIgnoresBind(t *testing.T) {
	src := newFakeSource()
	c := NewCollection(src)
	c.Bind([]string{"groups"}, nil)
	c.Close()

	src.push(1, []docstore.Record{rec("late")}, nil)
	if r := c.Result(); r.Loading || len(r.Items) != 0 {
		t.Fatalf("result after close = %+v", r)
	}
	c.Bind([]string{"users"}, nil)
	if n := src.callCount(); n != 1 {
		t.Fatalf("bind after close reached the store")
	}
}

func TestCollection_OnChange(t *testing.T) {
	src := newFakeSource()
	var n atomic.Int32
	c := NewCollection(src, WithOnChange(func() { n.Add(1) }))

	c.Bind([]string{"groups"}, nil) // -> loading
	src.push(1, nil, nil)           // -> done
	if got := n.Load(); got != 2 {
		t.Fatalf("onChange calls = %d; want 2", got)
	}
}

func TestCollection_OverSQLStore_OrderedLiveUpdates(t *testing.T) {
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "docs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.Logger = logger.Default.LogMode(logger.Silent)
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store := docstore.NewSQLStore(db)
	ctx := context.Background()
	coll := docpath.MustParse("groups", "g1", "messages")

	// Inserted m1, m2, m3 but ordered by n: m2, m3, m1.
	for _, m := range []struct {
		id string
		n  int
	}{{"m1", 3}, {"m2", 1}, {"m3", 2}} {
		p, _ := coll.Child(m.id)
		if err := store.Set(ctx, p, map[string]any{"n": m.n}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	c := NewCollection(store)
	defer c.Close()
	c.Bind(coll.Segments(), docstore.Constraints{docstore.OrderBy("n", docstore.Asc)})

	r := awaitCollection(t, c)
	if got := ids(r.Items); !reflect.DeepEqual(got, []string{"m2", "m3", "m1"}) {
		t.Fatalf("items = %v; want [m2 m3 m1]", got)
	}

	changed := c.Changed()
	p, _ := coll.Child("m0")
	if err := store.Set(ctx, p, map[string]any{"n": 0}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatalf("live update not delivered")
	}
	got := ids(c.Result().Items)
	if !reflect.DeepEqual(got, []string{"m0", "m2", "m3", "m1"}) {
		t.Fatalf("items after insert = %v", got)
	}
}
