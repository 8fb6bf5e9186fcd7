package mapping

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestVoid_Sentinels(t *testing.T) {
	ctx := context.Background()
	v := NewVoid()

	if err := v.Put(ctx, "lot-1", "1"); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Выключенный кэш никогда не сообщает о ключе: иначе worker
	// пропускал бы каждый лот.
	has, err := v.Has(ctx, "lot-1")
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if has {
		t.Error("void mapping must never report a key")
	}

	got, err := v.Get(ctx, "lot-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "" {
		t.Errorf("get = %q, want empty", got)
	}

	if err := v.Delete(ctx, "lot-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestLazy_Lifecycle(t *testing.T) {
	ctx := context.Background()
	l := NewLazy()

	if !l.IsEmpty() {
		t.Fatal("fresh lazy mapping must be empty")
	}

	if err := l.Put(ctx, "lot-1", "1"); err != nil {
		t.Fatalf("put: %v", err)
	}
	has, _ := l.Has(ctx, "lot-1")
	if !has {
		t.Error("stored key not found")
	}
	got, _ := l.Get(ctx, "lot-1")
	if got != "1" {
		t.Errorf("get = %q, want %q", got, "1")
	}
	if l.IsEmpty() {
		t.Error("mapping with a key must not be empty")
	}

	if err := l.Delete(ctx, "lot-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	has, _ = l.Has(ctx, "lot-1")
	if has {
		t.Error("deleted key still present")
	}

	l.Put(ctx, "a", "1")
	l.Put(ctx, "b", "1")
	l.Destroy()
	if !l.IsEmpty() {
		t.Error("Destroy must drop all keys")
	}
}

func TestNew_VoidByDefault(t *testing.T) {
	m, err := New(context.Background(), Config{}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m.(*Void); !ok {
		t.Errorf("expected *Void, got %T", m)
	}
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New(context.Background(), Config{Type: "memcached"}, testLogger())
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("err = %v, want ErrConfiguration", err)
	}
}

func TestNewRedis_RequiresHostPort(t *testing.T) {
	_, err := NewRedis(context.Background(), Config{Type: TypeRedis, Port: 6379})
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("missing host: err = %v, want ErrConfiguration", err)
	}

	_, err = NewRedis(context.Background(), Config{Type: TypeRedis, Host: "localhost"})
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("missing port: err = %v, want ErrConfiguration", err)
	}
}

func TestSelfCheck_Lazy(t *testing.T) {
	l := NewLazy()
	if err := SelfCheck(context.Background(), l); err != nil {
		t.Fatalf("self-check: %v", err)
	}
	if !l.IsEmpty() {
		t.Error("self-check must clean up after itself")
	}
}

func TestSelfCheck_Void(t *testing.T) {
	if err := SelfCheck(context.Background(), NewVoid()); err != nil {
		t.Fatalf("self-check on void must pass: %v", err)
	}
}
