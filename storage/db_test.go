package storage

import (
	"errors"
	"testing"
)

func TestMemDBRoundTrip(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	if _, err := db.Get([]byte("missing")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	has, err := db.Has([]byte("missing"))
	if err != nil || has {
		t.Fatalf("has on missing key: %v, %v", has, err)
	}

	key := []byte("k")
	value := []byte("v1")
	if err := db.Put(key, value); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Mutating the caller's slice must not affect the stored value.
	value[0] = 'x'
	got, err := db.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "v1" {
		t.Fatalf("stored value mutated: %q", got)
	}

	// Mutating the returned slice must not affect a later read.
	got[0] = 'y'
	got, err = db.Get(key)
	if err != nil || string(got) != "v1" {
		t.Fatalf("returned value aliased store: %q, %v", got, err)
	}

	if err := db.Put(key, []byte("v2")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ = db.Get(key)
	if string(got) != "v2" {
		t.Fatalf("overwrite not visible: %q", got)
	}
}
