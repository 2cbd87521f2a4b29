package binding

import (
	json "github.com/goccy/go-json"

	"github.com/tbourn/go-fitcircle/internal/docstore"
	"github.com/tbourn/go-fitcircle/internal/domain"
)

// Decode converts a loosely typed record into the shape a call site expects.
// Shapes implementing domain.Defaulter get their defaults applied here, once.
// A nil record decodes to the zero value with defaults applied.
func Decode[T any](r docstore.Record) (T, error) {
	var out T
	if r != nil {
		raw, err := json.Marshal(r)
		if err != nil {
			return out, err
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return out, err
		}
	}
	if d, ok := any(&out).(domain.Defaulter); ok {
		d.ApplyDefaults()
	}
	return out, nil
}

// DecodeAll decodes every record, preserving order.
func DecodeAll[T any](rs []docstore.Record) ([]T, error) {
	out := make([]T, 0, len(rs))
	for _, r := range rs {
		v, err := Decode[T](r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
