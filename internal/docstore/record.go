// Package docstore defines the remote document store the live bindings read
// from, plus two implementations of it.
//
// The store is hierarchical: collections hold documents, documents may hold
// sub-collections, and every location is addressed by a docpath.Path. It
// supports point reads, collection queries narrowed by Constraints, and live
// subscriptions that re-deliver the full matching set after every change.
//
// SQLStore keeps documents in SQLite through GORM and fans change
// notifications out in-process. Firestore adapts a Cloud Firestore client
// (or emulator) to the same contract.
package docstore

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// IDField is the reserved record field carrying the document id.
const IDField = "id"

var (
	// ErrNotFound is returned by writers when the target document is missing.
	ErrNotFound = errors.New("docstore: document not found")
	// ErrWrongKind is returned when a collection path is used where a
	// document path is required, or the other way round.
	ErrWrongKind = errors.New("docstore: path addresses the wrong kind of location")
	// ErrBadConstraint is returned for malformed constraints.
	ErrBadConstraint = errors.New("docstore: invalid constraint")
)

// Record is a document body with its id merged under IDField.
type Record map[string]any

// NewRecord copies body and sets IDField to id; the id always wins over a
// body field of the same name.
func NewRecord(id string, body map[string]any) Record {
	r := make(Record, len(body)+1)
	for k, v := range body {
		r[k] = v
	}
	r[IDField] = id
	return r
}

// ID returns the document id.
func (r Record) ID() string {
	s, _ := r[IDField].(string)
	return s
}

// Body returns the record without IDField, as stored.
func (r Record) Body() map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		if k != IDField {
			out[k] = v
		}
	}
	return out
}

// Kind tells which part of a query a Constraint contributes.
type Kind uint8

// Constraint kinds.
const (
	KindWhere Kind = iota + 1
	KindOrderBy
	KindLimit
)

// Op is a filter operator.
type Op string

// Filter operators.
const (
	OpEq            Op = "=="
	OpNe            Op = "!="
	OpLt            Op = "<"
	OpLte           Op = "<="
	OpGt            Op = ">"
	OpGte           Op = ">="
	OpIn            Op = "in"
	OpArrayContains Op = "array-contains"
)

func (o Op) valid() bool {
	switch o {
	case OpEq, OpNe, OpLt, OpLte, OpGt, OpGte, OpIn, OpArrayContains:
		return true
	}
	return false
}

// Direction is a sort direction.
type Direction uint8

// Sort directions.
const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

var fieldRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Constraint is one filter, ordering or limit applied to a collection query.
type Constraint struct {
	Kind  Kind
	Field string
	Op    Op
	Value any
	Dir   Direction
	N     int
}

// Where filters on field op value.
func Where(field string, op Op, value any) Constraint {
	return Constraint{Kind: KindWhere, Field: field, Op: op, Value: value}
}

// OrderBy sorts on field.
func OrderBy(field string, dir Direction) Constraint {
	return Constraint{Kind: KindOrderBy, Field: field, Dir: dir}
}

// Limit caps the number of results.
func Limit(n int) Constraint {
	return Constraint{Kind: KindLimit, N: n}
}

// Validate reports malformed constraints.
func (c Constraint) Validate() error {
	switch c.Kind {
	case KindWhere:
		if !fieldRe.MatchString(c.Field) {
			return fmt.Errorf("%w: bad field %q", ErrBadConstraint, c.Field)
		}
		if !c.Op.valid() {
			return fmt.Errorf("%w: unknown operator %q", ErrBadConstraint, c.Op)
		}
		if c.Op == OpIn {
			if _, ok := c.Value.([]any); !ok {
				return fmt.Errorf("%w: %q needs a list value", ErrBadConstraint, c.Op)
			}
		}
	case KindOrderBy:
		if !fieldRe.MatchString(c.Field) {
			return fmt.Errorf("%w: bad field %q", ErrBadConstraint, c.Field)
		}
	case KindLimit:
		if c.N <= 0 {
			return fmt.Errorf("%w: limit must be > 0", ErrBadConstraint)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrBadConstraint, c.Kind)
	}
	return nil
}

// Key is the structural identity of c.
func (c Constraint) Key() string {
	switch c.Kind {
	case KindWhere:
		return "where(" + c.Field + "," + string(c.Op) + "," + valueKey(c.Value) + ")"
	case KindOrderBy:
		return "orderBy(" + c.Field + "," + c.Dir.String() + ")"
	case KindLimit:
		return "limit(" + strconv.Itoa(c.N) + ")"
	}
	return "?"
}

func valueKey(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(b)
}

// Constraints is an ordered constraint list.
type Constraints []Constraint

// Key is the structural identity of the list. Two lists with equal keys
// select the same documents in the same order.
func (cs Constraints) Key() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.Key()
	}
	return strings.Join(parts, ";")
}

// Validate checks every constraint.
func (cs Constraints) Validate() error {
	for _, c := range cs {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ParseConstraints parses the text form used by the HTTP API and the CLI:
//
//	where:    field:op:value   (value is JSON when it parses, else a string)
//	orderBy:  field[:asc|:desc]
//	limit:    positive integer, "" for none
//
// Filters come first, then orderings, then the limit.
func ParseConstraints(where, orderBy []string, limit string) (Constraints, error) {
	var cs Constraints
	for _, w := range where {
		parts := strings.SplitN(w, ":", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("%w: where %q must be field:op:value", ErrBadConstraint, w)
		}
		cs = append(cs, Where(strings.TrimSpace(parts[0]), Op(strings.TrimSpace(parts[1])), parseValue(parts[2])))
	}
	for _, o := range orderBy {
		field, dir, _ := strings.Cut(o, ":")
		d := Asc
		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc":
		case "desc":
			d = Desc
		default:
			return nil, fmt.Errorf("%w: order direction %q", ErrBadConstraint, dir)
		}
		cs = append(cs, OrderBy(strings.TrimSpace(field), d))
	}
	if limit = strings.TrimSpace(limit); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return nil, fmt.Errorf("%w: limit %q", ErrBadConstraint, limit)
		}
		cs = append(cs, Limit(n))
	}
	if err := cs.Validate(); err != nil {
		return nil, err
	}
	return cs, nil
}

func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}
