// Package localstorage is the durable key-value area the application store
// persists its snapshot into. Absence is reported as (_, false, nil); only
// genuine I/O failures are errors.
package localstorage

import "errors"

// ErrBadKey is returned for keys that cannot be stored.
var ErrBadKey = errors.New("localstorage: invalid key")

// Storage is a string-to-string durable store.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}
