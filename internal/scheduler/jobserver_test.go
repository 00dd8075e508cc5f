package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestPipeJobServerHandsOutSlotsMinusOne(t *testing.T) {
	js, err := NewPipeJobServer(3)
	if err != nil {
		t.Fatalf("NewPipeJobServer: %v", err)
	}
	defer js.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	tok1, err := js.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire 1: %v", err)
	}
	if _, err := js.Acquire(ctx); err != nil {
		t.Fatalf("Acquire 2: %v", err)
	}

	ctxShort, cancelShort := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelShort()
	if _, err := js.Acquire(ctxShort); err == nil {
		t.Fatal("expected third acquire to block with only 2 tokens seeded")
	}

	if err := js.Release(tok1); err != nil {
		t.Fatalf("Release: %v", err)
	}
	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	if _, err := js.Acquire(ctx2); err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
}

func TestParseJobServerAuth(t *testing.T) {
	auth, ok := ParseJobServerAuth("-j --jobserver-auth=3,4 --other-flag")
	if !ok || auth != "3,4" {
		t.Fatalf("ParseJobServerAuth = %q, %v", auth, ok)
	}

	_, ok = ParseJobServerAuth("-j8")
	if ok {
		t.Fatal("expected no auth token in a bare -j8")
	}
}
