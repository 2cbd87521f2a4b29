// Package services – DocumentService
//
// DocumentService reads documents and collections the same way a screen does:
// through a one-shot binding, so a read never surfaces a remote error and an
// invalid path never reaches the store. Writes go straight to the store.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-fitcircle/internal/binding"
	"github.com/tbourn/go-fitcircle/internal/docpath"
	"github.com/tbourn/go-fitcircle/internal/docstore"
	"github.com/tbourn/go-fitcircle/internal/repo"
)

// DocumentService reads and writes the remote document store.
type DocumentService struct {
	// Source serves reads and live watches.
	Source docstore.Source
	// Writer serves Put/Add/Delete. Nil makes the service read-only.
	Writer docstore.Writer
	// DB, when set, backs collection statistics (ETag generation). Only the
	// SQL store has one.
	DB *gorm.DB
	// Timeout bounds each one-shot read.
	Timeout time.Duration

	log zerolog.Logger
}

// NewDocumentService wires a service over a full store. db may be nil.
func NewDocumentService(store docstore.Store, db *gorm.DB, timeout time.Duration) *DocumentService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DocumentService{
		Source:  store,
		Writer:  store,
		DB:      db,
		Timeout: timeout,
		log:     log.Logger.With().Str("component", "document_service").Logger(),
	}
}

func (s *DocumentService) bindingOpts(mode binding.Mode) []binding.Option {
	return []binding.Option{
		binding.WithMode(mode),
		binding.WithTimeout(s.Timeout),
		binding.WithLogger(s.log),
	}
}

// ParsePath parses a slash-joined path as it arrives from a URL.
func ParsePath(key string) (docpath.Path, error) {
	p, err := docpath.Split(key)
	if err != nil {
		return docpath.Path{}, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	return p, nil
}

// Collection reads the collection at p once, in server order.
func (s *DocumentService) Collection(ctx context.Context, p docpath.Path, cs docstore.Constraints) ([]docstore.Record, error) {
	if !p.IsCollection() {
		return nil, ErrInvalidPath
	}
	if err := cs.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadConstraint, err)
	}
	c := binding.NewCollection(s.Source, s.bindingOpts(binding.Once)...)
	defer c.Close()
	c.BindPath(p, cs)
	r, err := c.Await(ctx)
	if err != nil {
		return nil, err
	}
	return r.Items, nil
}

// Document reads the document at p once.
func (s *DocumentService) Document(ctx context.Context, p docpath.Path) (docstore.Record, error) {
	if !p.IsDocument() {
		return nil, ErrInvalidPath
	}
	d := binding.NewDocument(s.Source, s.bindingOpts(binding.Once)...)
	defer d.Close()
	d.BindPath(p)
	r, err := d.Await(ctx)
	if err != nil {
		return nil, err
	}
	if r.Data == nil {
		return nil, ErrNotFound
	}
	return r.Data, nil
}

// WatchCollection calls fn with every settled result of a live collection
// binding until ctx ends. fn runs on the calling goroutine.
func (s *DocumentService) WatchCollection(ctx context.Context, p docpath.Path, cs docstore.Constraints, fn func(binding.CollectionResult) error) error {
	if !p.IsCollection() {
		return ErrInvalidPath
	}
	if err := cs.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrBadConstraint, err)
	}
	c := binding.NewCollection(s.Source, s.bindingOpts(binding.Live)...)
	defer c.Close()
	c.BindPath(p, cs)
	return follow(ctx, c.Changed, func() error {
		if r := c.Result(); !r.Loading {
			return fn(r)
		}
		return nil
	})
}

// WatchDocument is WatchCollection for a single document.
func (s *DocumentService) WatchDocument(ctx context.Context, p docpath.Path, fn func(binding.DocumentResult) error) error {
	if !p.IsDocument() {
		return ErrInvalidPath
	}
	d := binding.NewDocument(s.Source, s.bindingOpts(binding.Live)...)
	defer d.Close()
	d.BindPath(p)
	return follow(ctx, d.Changed, func() error {
		if r := d.Result(); !r.Loading {
			return fn(r)
		}
		return nil
	})
}

// follow emits after every change notification. The channel is taken before
// the result is read so no change between the two is lost.
func follow(ctx context.Context, changed func() <-chan struct{}, emit func() error) error {
	for {
		ch := changed()
		if err := emit(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}

// Put creates or replaces the document at p.
func (s *DocumentService) Put(ctx context.Context, p docpath.Path, body map[string]any) error {
	if s.Writer == nil {
		return ErrReadOnly
	}
	if !p.IsDocument() {
		return ErrInvalidPath
	}
	if len(body) == 0 {
		return ErrEmptyBody
	}
	return s.Writer.Set(ctx, p, body)
}

// Add creates a document with a generated id in the collection at p.
func (s *DocumentService) Add(ctx context.Context, p docpath.Path, body map[string]any) (string, error) {
	if s.Writer == nil {
		return "", ErrReadOnly
	}
	if !p.IsCollection() {
		return "", ErrInvalidPath
	}
	if len(body) == 0 {
		return "", ErrEmptyBody
	}
	return s.Writer.Add(ctx, p, body)
}

// Delete removes the document at p.
func (s *DocumentService) Delete(ctx context.Context, p docpath.Path) error {
	if s.Writer == nil {
		return ErrReadOnly
	}
	if !p.IsDocument() {
		return ErrInvalidPath
	}
	err := s.Writer.Delete(ctx, p)
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// CollectionStats reports the document count and latest update of the
// collection at p. ok is false when the backing store keeps no statistics.
func (s *DocumentService) CollectionStats(ctx context.Context, p docpath.Path) (count int64, latest *time.Time, ok bool, err error) {
	if s.DB == nil || !p.IsCollection() {
		return 0, nil, false, nil
	}
	count, latest, err = repo.CollectionStats(ctx, s.DB, p.Key())
	return count, latest, err == nil, err
}
