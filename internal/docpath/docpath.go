// Package docpath models addresses into the hierarchical document store.
//
// A Path is an ordered list of segments alternating collection and document
// names: ["groups"] names a collection, ["groups", "g1"] a document inside it,
// ["groups", "g1", "messages"] a sub-collection of that document, and so on.
// An odd number of segments therefore addresses a collection and an even
// number addresses a document.
//
// Segments are trimmed and normalized to Unicode NFC before use so that two
// visually identical paths produced by different input methods share one
// canonical key. The canonical key (segments joined by "/") is the identity
// used by bindings to decide whether a re-subscription is needed.
package docpath

import (
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Separator joins segments in the canonical key.
const Separator = "/"

var (
	// ErrEmpty is returned when a path has no segments.
	ErrEmpty = errors.New("docpath: path has no segments")
	// ErrEmptySegment is returned when any segment is blank.
	ErrEmptySegment = errors.New("docpath: empty path segment")
	// ErrBadSegment is returned when a segment contains the separator.
	ErrBadSegment = errors.New("docpath: segment contains separator")
	// ErrNotCollection is returned when a collection path was required.
	ErrNotCollection = errors.New("docpath: path does not address a collection")
	// ErrNotDocument is returned when a document path was required.
	ErrNotDocument = errors.New("docpath: path does not address a document")
)

// Path is a validated, normalized sequence of segments.
// The zero value is the invalid empty path.
type Path struct {
	segs []string
}

// Parse validates and normalizes segments into a Path.
func Parse(segments ...string) (Path, error) {
	if len(segments) == 0 {
		return Path{}, ErrEmpty
	}
	out := make([]string, len(segments))
	for i, s := range segments {
		s = norm.NFC.String(strings.TrimSpace(s))
		if s == "" {
			return Path{}, ErrEmptySegment
		}
		if strings.Contains(s, Separator) {
			return Path{}, ErrBadSegment
		}
		out[i] = s
	}
	return Path{segs: out}, nil
}

// Split parses a slash-delimited key such as "groups/g1/messages".
// Leading and trailing separators are ignored; an inner empty segment
// ("groups//messages") is an error.
func Split(key string) (Path, error) {
	key = strings.Trim(strings.TrimSpace(key), Separator)
	if key == "" {
		return Path{}, ErrEmpty
	}
	return Parse(strings.Split(key, Separator)...)
}

// MustParse is Parse for static paths; it panics on error.
func MustParse(segments ...string) Path {
	p, err := Parse(segments...)
	if err != nil {
		panic(err)
	}
	return p
}

// Valid reports whether p holds at least one segment.
func (p Path) Valid() bool { return len(p.segs) > 0 }

// Len returns the number of segments.
func (p Path) Len() int { return len(p.segs) }

// Segments returns a copy of the segments.
func (p Path) Segments() []string {
	return append([]string(nil), p.segs...)
}

// Key returns the canonical string form.
func (p Path) Key() string { return strings.Join(p.segs, Separator) }

// String implements fmt.Stringer.
func (p Path) String() string { return p.Key() }

// IsCollection reports whether p addresses a collection.
func (p Path) IsCollection() bool { return len(p.segs)%2 == 1 }

// IsDocument reports whether p addresses a single document.
func (p Path) IsDocument() bool { return len(p.segs) > 0 && len(p.segs)%2 == 0 }

// ID returns the last segment: the document id for document paths or the
// collection name for collection paths.
func (p Path) ID() string {
	if len(p.segs) == 0 {
		return ""
	}
	return p.segs[len(p.segs)-1]
}

// Parent returns the collection containing the document at p.
func (p Path) Parent() (Path, error) {
	if !p.IsDocument() {
		return Path{}, ErrNotDocument
	}
	return Path{segs: p.segs[:len(p.segs)-1:len(p.segs)-1]}, nil
}

// Child returns the document path for id inside the collection p.
func (p Path) Child(id string) (Path, error) {
	if !p.IsCollection() {
		return Path{}, ErrNotCollection
	}
	return Parse(append(p.Segments(), id)...)
}

// Equal reports whether p and q have the same canonical key.
func (p Path) Equal(q Path) bool { return p.Key() == q.Key() }
