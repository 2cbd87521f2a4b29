package docpath

import (
	"errors"
	"testing"
)

func TestParse_Invalid(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want error
	}{
		{"nil", nil, ErrEmpty},
		{"empty middle", []string{"users", "", "profile"}, ErrEmptySegment},
		{"blank", []string{"groups", "   "}, ErrEmptySegment},
		{"separator", []string{"groups/g1"}, ErrBadSegment},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Parse(tc.in...)
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
			if p.Valid() {
				t.Fatalf("invalid input produced valid path %q", p.Key())
			}
		})
	}
}

func TestParse_KeyAndParity(t *testing.T) {
	p, err := Parse(" groups ", "g1", "messages")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := p.Key(); got != "groups/g1/messages" {
		t.Fatalf("key = %q", got)
	}
	if !p.IsCollection() || p.IsDocument() {
		t.Fatalf("3 segments must be a collection")
	}
	d, err := p.Child("m1")
	if err != nil {
		t.Fatalf("Child: %v", err)
	}
	if !d.IsDocument() || d.ID() != "m1" {
		t.Fatalf("child = %q", d.Key())
	}
	parent, err := d.Parent()
	if err != nil || !parent.Equal(p) {
		t.Fatalf("parent = %q err=%v", parent.Key(), err)
	}
	if _, err := p.Parent(); !errors.Is(err, ErrNotDocument) {
		t.Fatalf("Parent of collection: %v", err)
	}
	if _, err := d.Child("x"); !errors.Is(err, ErrNotCollection) {
		t.Fatalf("Child of document: %v", err)
	}
}

func TestParse_NFC(t *testing.T) {
	// "é" precomposed vs. "e" + combining acute accent.
	a := MustParse("users", "caf\u00e9")
	b := MustParse("users", "cafe\u0301")
	if !a.Equal(b) {
		t.Fatalf("NFC forms differ: %q vs %q", a.Key(), b.Key())
	}
}

func TestSplit(t *testing.T) {
	p, err := Split("/groups/g1/")
	if err != nil || p.Key() != "groups/g1" {
		t.Fatalf("Split = %q, %v", p.Key(), err)
	}
	if _, err := Split("groups//messages"); !errors.Is(err, ErrEmptySegment) {
		t.Fatalf("want ErrEmptySegment, got %v", err)
	}
	if _, err := Split("  "); !errors.Is(err, ErrEmpty) {
		t.Fatalf("want ErrEmpty, got %v", err)
	}
}

func TestSegmentsIsCopy(t *testing.T) {
	p := MustParse("a", "b")
	s := p.Segments()
	s[0] = "z"
	if p.Key() != "a/b" {
		t.Fatalf("Segments leaked internal slice")
	}
}
