// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Document
// model, the SQLite rendition of the hierarchical document store.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only
// persistence and query composition.
//
// Documents are stored as JSON bodies; query constraints are translated to
// SQLite JSON1 expressions (json_extract / json_each). Field paths are always
// bound as parameters, never spliced into the SQL text.
//
// Error semantics:
//   - When a document is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - Unknown filter operators return ErrBadFilter.
//   - On DB errors the raw gorm error is propagated.
//
// Functions:
//
//   - UpsertDocument(ctx, db, collection, id, body) -> *domain.Document, error
//   - GetDocument(ctx, db, collection, id) -> *domain.Document, error
//   - ListDocuments(ctx, db, collection, opts) -> []domain.Document, error
//   - DeleteDocument(ctx, db, collection, id) -> error
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-fitcircle/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrBadFilter is returned when a Filter uses an unsupported operator.
var ErrBadFilter = errors.New("repo: unsupported filter operator")

// Filter is a single predicate on a JSON body field.
type Filter struct {
	Field string
	Op    string // ==, !=, <, <=, >, >=, in, array-contains
	Value any
}

// Order sorts by a JSON body field.
type Order struct {
	Field string
	Desc  bool
}

// ListOptions narrows and orders ListDocuments.
type ListOptions struct {
	Filters []Filter
	Orders  []Order
	Limit   int // <= 0 means unlimited
}

var cmpOps = map[string]string{
	"==": "=",
	"!=": "<>",
	"<":  "<",
	"<=": "<=",
	">":  ">",
	">=": ">=",
}

func jsonPath(field string) string { return "$." + field }

// UpsertDocument inserts the document or replaces the body of an existing
// one. CreatedAt of an existing document is preserved so collection order
// stays stable across updates.
func UpsertDocument(ctx context.Context, db *gorm.DB, collection, id string, body []byte) (*domain.Document, error) {
	now := time.Now().UTC()
	doc := &domain.Document{
		Collection: collection,
		DocID:      id,
		Body:       datatypes.JSON(body),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(doc).Error
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDocument fetches a single document or returns ErrNotFound.
func GetDocument(ctx context.Context, db *gorm.DB, collection, id string) (*domain.Document, error) {
	var doc domain.Document
	err := db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListDocuments returns the documents of a collection, filtered, ordered and
// limited per opts. Without explicit orders the result follows insertion
// order; explicit orders are followed by the insertion order as tiebreak.
func ListDocuments(ctx context.Context, db *gorm.DB, collection string, opts ListOptions) ([]domain.Document, error) {
	q := db.WithContext(ctx).Model(&domain.Document{}).Where("collection = ?", collection)

	for _, f := range opts.Filters {
		path := jsonPath(f.Field)
		switch {
		case cmpOps[f.Op] != "":
			q = q.Where(fmt.Sprintf("json_extract(body, ?) %s ?", cmpOps[f.Op]), path, f.Value)
		case f.Op == "in":
			q = q.Where("json_extract(body, ?) IN ?", path, f.Value)
		case f.Op == "array-contains":
			q = q.Where("EXISTS (SELECT 1 FROM json_each(documents.body, ?) WHERE json_each.value = ?)", path, f.Value)
		default:
			return nil, fmt.Errorf("%w: %q", ErrBadFilter, f.Op)
		}
	}

	var (
		parts []string
		vars  []any
	)
	for _, o := range opts.Orders {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts = append(parts, "json_extract(body, ?) "+dir)
		vars = append(vars, jsonPath(o.Field))
	}
	parts = append(parts, "created_at ASC", "doc_id ASC")
	q = q.Order(clause.OrderBy{Expression: clause.Expr{
		SQL:                strings.Join(parts, ", "),
		Vars:               vars,
		WithoutParentheses: true,
	}})

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	var out []domain.Document
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteDocument removes a document; it returns ErrNotFound if nothing was
// deleted.
func DeleteDocument(ctx context.Context, db *gorm.DB, collection, id string) error {
	res := db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		Delete(&domain.Document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
