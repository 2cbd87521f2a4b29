package docstore

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-fitcircle/internal/docpath"
)

// Unsubscribe stops a live subscription. It is safe to call more than once
// and from inside a listener.
type Unsubscribe func()

// CollectionListener receives every full snapshot of a collection query, or
// the error that ended the subscription.
type CollectionListener func(items []Record, err error)

// DocumentListener receives every state of a document. exists is false when
// the document is absent.
type DocumentListener func(rec Record, exists bool, err error)

// Source is the read side of the document store.
type Source interface {
	// Get reads one document. A missing document is (nil, false, nil).
	Get(ctx context.Context, p docpath.Path) (Record, bool, error)
	// Query reads a collection once, in server order.
	Query(ctx context.Context, p docpath.Path, cs Constraints) ([]Record, error)
	// Subscribe delivers the full matching set now and after every change
	// until the returned Unsubscribe is called or ctx ends.
	Subscribe(ctx context.Context, p docpath.Path, cs Constraints, fn CollectionListener) (Unsubscribe, error)
	// SubscribeDoc is Subscribe for a single document.
	SubscribeDoc(ctx context.Context, p docpath.Path, fn DocumentListener) (Unsubscribe, error)
}

// Writer is the write side of the document store.
type Writer interface {
	// Set creates or replaces the document at p.
	Set(ctx context.Context, p docpath.Path, body map[string]any) error
	// Add creates a document with a generated id inside collection.
	Add(ctx context.Context, collection docpath.Path, body map[string]any) (string, error)
	// Delete removes the document at p, or returns ErrNotFound.
	Delete(ctx context.Context, p docpath.Path) error
}

// Store is a readable and writable document store.
type Store interface {
	Source
	Writer
}

const tracerName = "github.com/tbourn/go-fitcircle/internal/docstore"

func tracer() trace.Tracer { return otel.Tracer(tracerName) }

// startSpan opens a span tagged with the backend and path.
func startSpan(ctx context.Context, backend, op string, p docpath.Path) (context.Context, trace.Span) {
	return tracer().Start(ctx, "docstore."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("docstore.backend", backend),
			attribute.String("docstore.path", p.Key()),
		),
	)
}

// endSpan records err (if any) and ends the span.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func requireDocument(p docpath.Path) error {
	if !p.IsDocument() {
		return ErrWrongKind
	}
	return nil
}

func requireCollection(p docpath.Path) error {
	if !p.Valid() || !p.IsCollection() {
		return ErrWrongKind
	}
	return nil
}
