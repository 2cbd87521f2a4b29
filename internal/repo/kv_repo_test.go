package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-fitcircle/internal/domain"
)

func TestKV_PutGetOverwriteDelete(t *testing.T) {
	db := newTestDB(t, &domain.KVEntry{})
	ctx := context.Background()

	if _, err := GetKV(ctx, db, "state"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing key: want ErrNotFound, got %v", err)
	}
	if err := PutKV(ctx, db, "state", "v1"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := PutKV(ctx, db, "state", "v2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, err := GetKV(ctx, db, "state")
	if err != nil || v != "v2" {
		t.Fatalf("get = %q, %v", v, err)
	}
	if err := DeleteKV(ctx, db, "state"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := DeleteKV(ctx, db, "state"); err != nil {
		t.Fatalf("delete missing must not fail: %v", err)
	}
	if _, err := GetKV(ctx, db, "state"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("after delete: want ErrNotFound, got %v", err)
	}
}
