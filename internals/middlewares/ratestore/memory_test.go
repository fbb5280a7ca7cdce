package ratestore

import (
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMemory_SetGetDelete(t *testing.T) {
	m := NewMemory(time.Hour)
	defer m.Close()

	if err := m.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := m.Get("k")
	if err != nil || string(got) != "v" {
		t.Fatalf("get = %q, %v; want v", got, err)
	}
	if err := m.Delete("k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := m.Get("k"); got != nil {
		t.Fatalf("expected nil after delete, got %q", got)
	}
}

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory(5 * time.Millisecond)
	defer m.Close()

	_ = m.Set("short", []byte("1"), 10*time.Millisecond)
	_ = m.Set("long", []byte("2"), time.Hour)

	time.Sleep(40 * time.Millisecond)

	if got, _ := m.Get("short"); got != nil {
		t.Fatalf("expected expired key to be gone, got %q", got)
	}
	if got, _ := m.Get("long"); string(got) != "2" {
		t.Fatalf("expected long-lived key, got %q", got)
	}
	if n := m.Len(); n != 1 {
		t.Fatalf("expected sweeper to leave 1 key, got %d", n)
	}
}

func TestMemory_ResetIsolatesInstances(t *testing.T) {
	a := NewMemory(time.Hour)
	b := NewMemory(time.Hour)
	defer a.Close()
	defer b.Close()

	_ = a.Set("ip", []byte("3"), time.Minute)
	if got, _ := b.Get("ip"); got != nil {
		t.Fatalf("stores must not share state, got %q", got)
	}
	_ = a.Reset()
	if got, _ := a.Get("ip"); got != nil {
		t.Fatalf("expected empty store after reset, got %q", got)
	}
}

func TestMemory_CloseIsIdempotent(t *testing.T) {
	m := NewMemory(time.Millisecond)
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
