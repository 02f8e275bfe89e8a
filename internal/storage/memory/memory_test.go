package memory

import (
	"context"
	"errors"
	"testing"

	"penjualan/internal/storage"
)

func TestGetMissingKey(t *testing.T) {
	s := New()
	_, err := s.Get(context.Background(), "absent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestPutGetDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Put(ctx, storage.KeySettings, []byte(`{"storeName":"Toko Saya"}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.Get(ctx, storage.KeySettings)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"storeName":"Toko Saya"}` {
		t.Fatalf("got %q", got)
	}

	// Overwrite replaces the value.
	if err := s.Put(ctx, storage.KeySettings, []byte(`{}`)); err != nil {
		t.Fatalf("put overwrite: %v", err)
	}
	got, _ = s.Get(ctx, storage.KeySettings)
	if string(got) != `{}` {
		t.Fatalf("after overwrite got %q", got)
	}

	if err := s.Delete(ctx, storage.KeySettings); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, storage.KeySettings); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("after delete err=%v, want ErrNotFound", err)
	}
}

func TestDeleteMissingKeyIsNoop(t *testing.T) {
	s := New()
	if err := s.Delete(context.Background(), "absent", "also-absent"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestValueIsolation(t *testing.T) {
	s := New()
	ctx := context.Background()

	original := []byte("abc")
	if err := s.Put(ctx, "k", original); err != nil {
		t.Fatalf("put: %v", err)
	}
	original[0] = 'x'

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "abc" {
		t.Fatalf("stored value mutated through caller slice: %q", got)
	}

	got[0] = 'y'
	again, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("stored value mutated through returned slice: %q", again)
	}
}
