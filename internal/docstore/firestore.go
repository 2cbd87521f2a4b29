package docstore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tbourn/go-fitcircle/internal/docpath"
)

const firestoreBackend = "firestore"

// Firestore adapts a Cloud Firestore client to Store. Live subscriptions
// use the client's snapshot iterators; each snapshot is delivered whole.
// Set FIRESTORE_EMULATOR_HOST to target the local emulator.
type Firestore struct {
	client *firestore.Client
	log    zerolog.Logger
}

// NewFirestore wraps client. The caller owns the client and closes it.
func NewFirestore(client *firestore.Client, l ...zerolog.Logger) *Firestore {
	lg := log.Logger
	if len(l) > 0 {
		lg = l[0]
	}
	return &Firestore{
		client: client,
		log:    lg.With().Str("component", "docstore").Str("backend", firestoreBackend).Logger(),
	}
}

// Get implements Source.
func (f *Firestore) Get(ctx context.Context, p docpath.Path) (rec Record, ok bool, err error) {
	if err = requireDocument(p); err != nil {
		return nil, false, err
	}
	ctx, span := startSpan(ctx, firestoreBackend, "get", p)
	defer func() { endSpan(span, err) }()

	snap, err := f.client.Doc(p.Key()).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return fromSnapshot(snap), true, nil
}

// Query implements Source.
func (f *Firestore) Query(ctx context.Context, p docpath.Path, cs Constraints) (out []Record, err error) {
	q, err := f.query(p, cs)
	if err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, firestoreBackend, "query", p)
	defer func() { endSpan(span, err) }()

	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return fromSnapshots(docs), nil
}

// Subscribe implements Source.
func (f *Firestore) Subscribe(ctx context.Context, p docpath.Path, cs Constraints, fn CollectionListener) (Unsubscribe, error) {
	q, err := f.query(p, cs)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	it := q.Snapshots(ctx)

	go func() {
		defer it.Stop()
		for {
			snap, err := it.Next()
			if ctx.Err() != nil || errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				f.log.Warn().Err(err).Str("path", p.Key()).Msg("collection snapshot stream ended")
				fn(nil, err)
				return
			}
			docs, err := snap.Documents.GetAll()
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				fn(nil, err)
				continue
			}
			fn(fromSnapshots(docs), nil)
		}
	}()
	return Unsubscribe(cancel), nil
}

// SubscribeDoc implements Source.
func (f *Firestore) SubscribeDoc(ctx context.Context, p docpath.Path, fn DocumentListener) (Unsubscribe, error) {
	if err := requireDocument(p); err != nil {
		return nil, err
	}
	ref := f.client.Doc(p.Key())
	if ref == nil {
		return nil, ErrWrongKind
	}
	ctx, cancel := context.WithCancel(ctx)
	it := ref.Snapshots(ctx)

	go func() {
		defer it.Stop()
		for {
			snap, err := it.Next()
			if ctx.Err() != nil || errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				f.log.Warn().Err(err).Str("path", p.Key()).Msg("document snapshot stream ended")
				fn(nil, false, err)
				return
			}
			if !snap.Exists() {
				fn(nil, false, nil)
				continue
			}
			fn(fromSnapshot(snap), true, nil)
		}
	}()
	return Unsubscribe(cancel), nil
}

// Set implements Writer.
func (f *Firestore) Set(ctx context.Context, p docpath.Path, body map[string]any) (err error) {
	if err = requireDocument(p); err != nil {
		return err
	}
	ctx, span := startSpan(ctx, firestoreBackend, "set", p)
	defer func() { endSpan(span, err) }()

	_, err = f.client.Doc(p.Key()).Set(ctx, Record(body).Body())
	return err
}

// Add implements Writer. Ids are generated by Firestore.
func (f *Firestore) Add(ctx context.Context, collection docpath.Path, body map[string]any) (id string, err error) {
	if err = requireCollection(collection); err != nil {
		return "", err
	}
	ctx, span := startSpan(ctx, firestoreBackend, "add", collection)
	defer func() { endSpan(span, err) }()

	ref, _, err := f.client.Collection(collection.Key()).Add(ctx, Record(body).Body())
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

// Delete implements Writer.
func (f *Firestore) Delete(ctx context.Context, p docpath.Path) (err error) {
	if err = requireDocument(p); err != nil {
		return err
	}
	ctx, span := startSpan(ctx, firestoreBackend, "delete", p)
	defer func() { endSpan(span, err) }()

	_, err = f.client.Doc(p.Key()).Delete(ctx, firestore.Exists)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}

func (f *Firestore) query(p docpath.Path, cs Constraints) (firestore.Query, error) {
	if err := requireCollection(p); err != nil {
		return firestore.Query{}, err
	}
	if err := cs.Validate(); err != nil {
		return firestore.Query{}, err
	}
	col := f.client.Collection(p.Key())
	if col == nil {
		return firestore.Query{}, ErrWrongKind
	}
	q := col.Query
	for _, c := range cs {
		switch c.Kind {
		case KindWhere:
			q = q.Where(c.Field, string(c.Op), c.Value)
		case KindOrderBy:
			dir := firestore.Asc
			if c.Dir == Desc {
				dir = firestore.Desc
			}
			q = q.OrderBy(c.Field, dir)
		case KindLimit:
			q = q.Limit(c.N)
		}
	}
	return q, nil
}

func fromSnapshot(s *firestore.DocumentSnapshot) Record {
	return NewRecord(s.Ref.ID, s.Data())
}

func fromSnapshots(docs []*firestore.DocumentSnapshot) []Record {
	out := make([]Record, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromSnapshot(d))
	}
	return out
}
