// Package domain defines the persistence models and shared shapes of the
// fitcircle core. GORM rows (documents, durable key-value entries,
// idempotency records) live next to the application-state snapshot and the
// typed record shapes consumed by live bindings.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Document is one record of the hierarchical document store as persisted by
// the SQLite backend. A document is addressed by the canonical key of its
// parent collection plus its own id; the body is an arbitrary JSON object.
//
// Fields:
//   - Collection: canonical collection path, e.g. "groups/g1/messages".
//   - DocID: document id, unique inside its collection.
//   - Body: JSON object holding the document fields (never the id).
//   - CreatedAt / UpdatedAt: timestamps managed by GORM. CreatedAt gives the
//     default (insertion) order of a collection.
type Document struct {
	Collection string         `json:"collection" gorm:"type:varchar(512);primaryKey;index:idx_docs_coll_created,priority:1"`
	DocID      string         `json:"id"         gorm:"column:doc_id;type:varchar(255);primaryKey"`
	Body       datatypes.JSON `json:"body"       gorm:"type:json;not null"`
	CreatedAt  time.Time      `json:"created_at" gorm:"index:idx_docs_coll_created,priority:2"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// TableName returns the database table name for Document.
func (Document) TableName() string { return "documents" }

// KVEntry is a row of the SQLite-backed durable local storage.
type KVEntry struct {
	Key       string    `gorm:"type:varchar(255);primaryKey"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the database table name for KVEntry.
func (KVEntry) TableName() string { return "kv_entries" }
