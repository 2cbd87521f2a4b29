package binding

import (
	"context"

	"github.com/tbourn/go-fitcircle/internal/docpath"
	"github.com/tbourn/go-fitcircle/internal/docstore"
)

// CollectionResult is the observable state of a Collection.
type CollectionResult struct {
	Items   []docstore.Record `json:"items"`
	Loading bool              `json:"loading"`
}

var (
	collectionIdle    = CollectionResult{Items: []docstore.Record{}, Loading: false}
	collectionLoading = CollectionResult{Items: []docstore.Record{}, Loading: true}
)

// Collection binds a collection path plus constraints to a list of records.
// It is safe for concurrent use.
type Collection struct {
	src  docstore.Source
	core *core[CollectionResult]
}

// NewCollection returns an unbound collection binding over src. Until the
// first Bind the result is empty and loading.
func NewCollection(src docstore.Source, opts ...Option) *Collection {
	return &Collection{
		src:  src,
		core: newCore("collection", collectionLoading, opts),
	}
}

// Bind points the binding at segments filtered by cs. It is a no-op when
// neither the canonical path nor cs.Key() changed since the last call.
func (c *Collection) Bind(segments []string, cs docstore.Constraints) {
	p, err := docpath.Parse(segments...)
	if err != nil || !p.IsCollection() {
		key := invalidKey(segments)
		c.core.bind(key+"|"+cs.Key(), key, false, collectionIdle, collectionLoading, nil)
		return
	}
	c.BindPath(p, cs)
}

// BindPath is Bind for an already parsed path.
func (c *Collection) BindPath(p docpath.Path, cs docstore.Constraints) {
	if !p.Valid() || !p.IsCollection() {
		key := invalidKey(p.Segments())
		c.core.bind(key+"|"+cs.Key(), key, false, collectionIdle, collectionLoading, nil)
		return
	}
	cs = append(docstore.Constraints(nil), cs...)
	c.core.bind(p.Key()+"|"+cs.Key(), p.Key(), true, collectionIdle, collectionLoading, c.starter(p, cs))
}

func (c *Collection) starter(p docpath.Path, cs docstore.Constraints) starter {
	if c.core.cfg.mode == Once {
		return func(ctx context.Context, gen uint64) (func(), error) {
			go func() {
				if d := c.core.cfg.timeout; d > 0 {
					var cancel context.CancelFunc
					ctx, cancel = context.WithTimeout(ctx, d)
					defer cancel()
				}
				items, err := c.src.Query(ctx, p, cs)
				if err != nil {
					c.core.fail(gen, err, collectionIdle)
					return
				}
				c.core.deliver(gen, collectionDone(items))
			}()
			return nil, nil
		}
	}
	return func(ctx context.Context, gen uint64) (func(), error) {
		unsub, err := c.src.Subscribe(ctx, p, cs, func(items []docstore.Record, err error) {
			if err != nil {
				c.core.fail(gen, err, collectionIdle)
				return
			}
			c.core.deliver(gen, collectionDone(items))
		})
		if err != nil {
			return nil, err
		}
		return func() { unsub() }, nil
	}
}

func collectionDone(items []docstore.Record) CollectionResult {
	if items == nil {
		items = []docstore.Record{}
	}
	return CollectionResult{Items: items, Loading: false}
}

// Result returns the current result. Items keep the order the store
// delivered them in and must be treated as read-only.
func (c *Collection) Result() CollectionResult { return c.core.current() }

// Changed returns a channel closed at the next result change.
func (c *Collection) Changed() <-chan struct{} { return c.core.changedCh() }

// Await blocks until the result is no longer loading or ctx ends.
func (c *Collection) Await(ctx context.Context) (CollectionResult, error) {
	return c.core.await(ctx, func(r CollectionResult) bool { return r.Loading })
}

// Close tears the binding down. Later results are discarded and later Binds
// are ignored.
func (c *Collection) Close() { c.core.close(collectionIdle) }
