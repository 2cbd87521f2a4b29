package docstore

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-fitcircle/internal/docpath"
	"github.com/tbourn/go-fitcircle/internal/domain"
	"github.com/tbourn/go-fitcircle/internal/repo"
)

const sqlBackend = "sqlite"

// SQLStore is a Store backed by the documents table. Writes made through
// the same SQLStore wake every live subscription on the affected collection
// or document, which then re-reads and re-delivers its full result.
type SQLStore struct {
	db  *gorm.DB
	hub *hub
	log zerolog.Logger
}

// SQLOption configures a SQLStore.
type SQLOption func(*SQLStore)

// WithSQLLogger sets the logger used for subscription diagnostics.
func WithSQLLogger(l zerolog.Logger) SQLOption {
	return func(s *SQLStore) { s.log = l }
}

// NewSQLStore wraps a migrated database handle.
func NewSQLStore(db *gorm.DB, opts ...SQLOption) *SQLStore {
	s := &SQLStore{db: db, hub: newHub(), log: log.Logger}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With().Str("component", "docstore").Str("backend", sqlBackend).Logger()
	return s
}

// DB exposes the underlying handle for stats queries.
func (s *SQLStore) DB() *gorm.DB { return s.db }

// ActiveSubscriptions reports how many live subscriptions are registered.
func (s *SQLStore) ActiveSubscriptions() int { return s.hub.active() }

// Get implements Source.
func (s *SQLStore) Get(ctx context.Context, p docpath.Path) (rec Record, ok bool, err error) {
	ctx, span := startSpan(ctx, sqlBackend, "get", p)
	defer func() { endSpan(span, err) }()

	if err = requireDocument(p); err != nil {
		return nil, false, err
	}
	parent, _ := p.Parent()
	doc, err := repo.GetDocument(ctx, s.db, parent.Key(), p.ID())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	rec, err = decodeDocument(doc)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// Query implements Source.
func (s *SQLStore) Query(ctx context.Context, p docpath.Path, cs Constraints) (out []Record, err error) {
	ctx, span := startSpan(ctx, sqlBackend, "query", p)
	defer func() { endSpan(span, err) }()

	if err = requireCollection(p); err != nil {
		return nil, err
	}
	opts, err := listOptions(cs)
	if err != nil {
		return nil, err
	}
	docs, err := repo.ListDocuments(ctx, s.db, p.Key(), opts)
	if err != nil {
		return nil, err
	}
	out = make([]Record, 0, len(docs))
	for i := range docs {
		rec, err := decodeDocument(&docs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Subscribe implements Source.
func (s *SQLStore) Subscribe(ctx context.Context, p docpath.Path, cs Constraints, fn CollectionListener) (Unsubscribe, error) {
	if err := requireCollection(p); err != nil {
		return nil, err
	}
	if err := cs.Validate(); err != nil {
		return nil, err
	}
	return s.hub.watch(ctx, collectionTopic(p.Key()), func(ctx context.Context) {
		items, err := s.Query(ctx, p, cs)
		if ctx.Err() != nil {
			return
		}
		fn(items, err)
	}), nil
}

// SubscribeDoc implements Source.
func (s *SQLStore) SubscribeDoc(ctx context.Context, p docpath.Path, fn DocumentListener) (Unsubscribe, error) {
	if err := requireDocument(p); err != nil {
		return nil, err
	}
	return s.hub.watch(ctx, documentTopic(p.Key()), func(ctx context.Context) {
		rec, ok, err := s.Get(ctx, p)
		if ctx.Err() != nil {
			return
		}
		fn(rec, ok, err)
	}), nil
}

// Set implements Writer.
func (s *SQLStore) Set(ctx context.Context, p docpath.Path, body map[string]any) (err error) {
	ctx, span := startSpan(ctx, sqlBackend, "set", p)
	defer func() { endSpan(span, err) }()

	if err = requireDocument(p); err != nil {
		return err
	}
	raw, err := json.Marshal(Record(body).Body())
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	parent, _ := p.Parent()
	if _, err = repo.UpsertDocument(ctx, s.db, parent.Key(), p.ID(), raw); err != nil {
		return err
	}
	s.changed(parent, p)
	return nil
}

// Add implements Writer. Ids are random UUIDs.
func (s *SQLStore) Add(ctx context.Context, collection docpath.Path, body map[string]any) (string, error) {
	if err := requireCollection(collection); err != nil {
		return "", err
	}
	id := uuid.NewString()
	p, err := collection.Child(id)
	if err != nil {
		return "", err
	}
	if err := s.Set(ctx, p, body); err != nil {
		return "", err
	}
	return id, nil
}

// Delete implements Writer.
func (s *SQLStore) Delete(ctx context.Context, p docpath.Path) (err error) {
	ctx, span := startSpan(ctx, sqlBackend, "delete", p)
	defer func() { endSpan(span, err) }()

	if err = requireDocument(p); err != nil {
		return err
	}
	parent, _ := p.Parent()
	err = repo.DeleteDocument(ctx, s.db, parent.Key(), p.ID())
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	s.changed(parent, p)
	return nil
}

func (s *SQLStore) changed(collection, doc docpath.Path) {
	s.log.Debug().Str("path", doc.Key()).Msg("document changed")
	s.hub.notify(collectionTopic(collection.Key()), documentTopic(doc.Key()))
}

func decodeDocument(d *domain.Document) (Record, error) {
	var body map[string]any
	if len(d.Body) > 0 {
		if err := json.Unmarshal(d.Body, &body); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", d.Collection, d.DocID, err)
		}
	}
	return NewRecord(d.DocID, body), nil
}

func listOptions(cs Constraints) (repo.ListOptions, error) {
	var opts repo.ListOptions
	if err := cs.Validate(); err != nil {
		return opts, err
	}
	for _, c := range cs {
		switch c.Kind {
		case KindWhere:
			opts.Filters = append(opts.Filters, repo.Filter{Field: c.Field, Op: string(c.Op), Value: c.Value})
		case KindOrderBy:
			opts.Orders = append(opts.Orders, repo.Order{Field: c.Field, Desc: c.Dir == Desc})
		case KindLimit:
			opts.Limit = c.N
		}
	}
	return opts, nil
}
