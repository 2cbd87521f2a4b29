package binding

import (
	"context"

	"github.com/tbourn/go-fitcircle/internal/docpath"
	"github.com/tbourn/go-fitcircle/internal/docstore"
)

// DocumentResult is the observable state of a Document. Data is nil when no
// document exists at the path, which is distinct from Loading.
type DocumentResult struct {
	Data    docstore.Record `json:"data"`
	Loading bool            `json:"loading"`
}

var (
	documentIdle    = DocumentResult{}
	documentLoading = DocumentResult{Loading: true}
)

// Document binds a document path to at most one record.
// It is safe for concurrent use.
type Document struct {
	src  docstore.Source
	core *core[DocumentResult]
}

// NewDocument returns an unbound document binding over src.
func NewDocument(src docstore.Source, opts ...Option) *Document {
	return &Document{
		src:  src,
		core: newCore("document", documentLoading, opts),
	}
}

// Bind points the binding at segments. A path with collection parity is
// treated like any other invalid path.
func (d *Document) Bind(segments []string) {
	p, err := docpath.Parse(segments...)
	if err != nil {
		key := invalidKey(segments)
		d.core.bind(key, key, false, documentIdle, documentLoading, nil)
		return
	}
	d.BindPath(p)
}

// BindPath is Bind for an already parsed path.
func (d *Document) BindPath(p docpath.Path) {
	if !p.IsDocument() {
		key := invalidKey(p.Segments())
		d.core.bind(key, key, false, documentIdle, documentLoading, nil)
		return
	}
	d.core.bind(p.Key(), p.Key(), true, documentIdle, documentLoading, d.starter(p))
}

func (d *Document) starter(p docpath.Path) starter {
	if d.core.cfg.mode == Once {
		return func(ctx context.Context, gen uint64) (func(), error) {
			go func() {
				if t := d.core.cfg.timeout; t > 0 {
					var cancel context.CancelFunc
					ctx, cancel = context.WithTimeout(ctx, t)
					defer cancel()
				}
				rec, ok, err := d.src.Get(ctx, p)
				if err != nil {
					d.core.fail(gen, err, documentIdle)
					return
				}
				d.core.deliver(gen, documentDone(rec, ok))
			}()
			return nil, nil
		}
	}
	return func(ctx context.Context, gen uint64) (func(), error) {
		unsub, err := d.src.SubscribeDoc(ctx, p, func(rec docstore.Record, ok bool, err error) {
			if err != nil {
				d.core.fail(gen, err, documentIdle)
				return
			}
			d.core.deliver(gen, documentDone(rec, ok))
		})
		if err != nil {
			return nil, err
		}
		return func() { unsub() }, nil
	}
}

func documentDone(rec docstore.Record, ok bool) DocumentResult {
	if !ok {
		rec = nil
	}
	return DocumentResult{Data: rec}
}

// Result returns the current result.
func (d *Document) Result() DocumentResult { return d.core.current() }

// Changed returns a channel closed at the next result change.
func (d *Document) Changed() <-chan struct{} { return d.core.changedCh() }

// Await blocks until the result is no longer loading or ctx ends.
func (d *Document) Await(ctx context.Context) (DocumentResult, error) {
	return d.core.await(ctx, func(r DocumentResult) bool { return r.Loading })
}

// Close tears the binding down.
func (d *Document) Close() { d.core.close(documentIdle) }
